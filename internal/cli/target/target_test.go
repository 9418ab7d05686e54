package target

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clitest "github.com/thenoetrevino/sitebook/internal/testutil/cli"
)

func TestTargetChecklist(t *testing.T) {
	db, app := clitest.SetupCLITest(t)
	orgID := clitest.CreateTestOrganization(t, db, "Acme")
	clientID, _ := clitest.CreateTestClient(t, db, orgID, "Alice")
	org := fmt.Sprintf("--org=%d", orgID)
	client := fmt.Sprintf("--client=%d", clientID)

	out, _, err := clitest.ExecuteCLICommand(t, app, TargetCmd(), []string{"add", org, client, "Demo old deck", "--quiet"})
	require.NoError(t, err)
	var id int
	_, err = fmt.Sscanf(out, "%d", &id)
	require.NoError(t, err)

	_, _, err = clitest.ExecuteCLICommand(t, app, TargetCmd(), []string{"add", org, client, "Pour footings"})
	require.NoError(t, err)

	out, _, err = clitest.ExecuteCLICommand(t, app, TargetCmd(), []string{"toggle", org, client, fmt.Sprintf("--id=%d", id)})
	require.NoError(t, err)
	assert.Contains(t, out, "marked done")

	out, _, err = clitest.ExecuteCLICommand(t, app, TargetCmd(), []string{"list", org, client})
	require.NoError(t, err)
	assert.Contains(t, out, "[x] Demo old deck")
	assert.Contains(t, out, "[ ] Pour footings")
	assert.Contains(t, out, "1/2 done (50%)")
}
