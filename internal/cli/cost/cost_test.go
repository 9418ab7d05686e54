package cost

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/sitebook/internal/cli"
	"github.com/thenoetrevino/sitebook/internal/models"
	"github.com/thenoetrevino/sitebook/internal/testutil"
	clitest "github.com/thenoetrevino/sitebook/internal/testutil/cli"
)

func TestCostLedger(t *testing.T) {
	db, app := clitest.SetupCLITest(t)
	orgID := clitest.CreateTestOrganization(t, db, "Acme")
	clientID, _ := clitest.CreateTestClient(t, db, orgID, "Alice")
	memberID := testutil.CreateTestMember(t, db, orgID, "bob@example.com", models.RoleWorker)
	org := fmt.Sprintf("--org=%d", orgID)
	client := fmt.Sprintf("--client=%d", clientID)

	_, _, err := clitest.ExecuteCLICommand(t, app, CostCmd(), []string{
		"add", org, client, "--title=Lumber", "--amount=800",
	})
	require.NoError(t, err)
	_, _, err = clitest.ExecuteCLICommand(t, app, CostCmd(), []string{
		"add", org, client, "--title=Nails", "--amount=12.5", fmt.Sprintf("--payer=%d", memberID),
	})
	require.NoError(t, err)

	out, _, err := clitest.ExecuteCLICommand(t, app, CostCmd(), []string{"list", org, client, "--json"})
	require.NoError(t, err)
	data := clitest.ParseJSON(t, out)["data"].(map[string]any)
	summary := data["summary"].(map[string]any)
	assert.InDelta(t, 812.5, summary["total"], 0.001)
	assert.InDelta(t, 800, summary["paid_by_client"], 0.001)
	assert.InDelta(t, 12.5, summary["paid_by_team"], 0.001)
	assert.Len(t, data["costs"], 2)

	out, _, err = clitest.ExecuteCLICommand(t, app, CostCmd(), []string{"list", org, client})
	require.NoError(t, err)
	assert.Contains(t, out, "Total:          $812.50")
	assert.Contains(t, out, fmt.Sprintf("member %d", memberID))
}

func TestCostAdd_UnknownPayer(t *testing.T) {
	db, app := clitest.SetupCLITest(t)
	orgID := clitest.CreateTestOrganization(t, db, "Acme")
	clientID, _ := clitest.CreateTestClient(t, db, orgID, "Alice")

	_, _, err := clitest.ExecuteCLICommand(t, app, CostCmd(), []string{
		"add", fmt.Sprintf("--org=%d", orgID), fmt.Sprintf("--client=%d", clientID),
		"--title=Paint", "--amount=40", "--payer=999",
	})
	require.Error(t, err)
	assert.NotEqual(t, cli.ExitSuccess, cli.ExitCode(err))
}
