package contract

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/sitebook/internal/cli"
	"github.com/thenoetrevino/sitebook/internal/models"
	clitest "github.com/thenoetrevino/sitebook/internal/testutil/cli"
)

func TestContractDraftShowSign(t *testing.T) {
	db, app := clitest.SetupCLITest(t)
	orgID := clitest.CreateTestOrganization(t, db, "Acme")
	clientID, _ := clitest.CreateTestClient(t, db, orgID, "Alice")
	org := fmt.Sprintf("--org=%d", orgID)
	client := fmt.Sprintf("--client=%d", clientID)

	out, _, err := clitest.ExecuteCLICommand(t, app, ContractCmd(), []string{
		"draft", org, client, "--term=Deposit due on signing", "--term=Cleanup included", "--price=9000", "--json",
	})
	require.NoError(t, err)
	draft := clitest.ParseJSON(t, out)["data"].(map[string]any)
	assert.Len(t, draft["terms"], 2)
	contractID := int(draft["id"].(float64))

	out, _, err = clitest.ExecuteCLICommand(t, app, ContractCmd(), []string{"show", org, client})
	require.NoError(t, err)
	assert.Contains(t, out, "Deposit")
	assert.Contains(t, out, "Cleanup")
	assert.Contains(t, out, "9,000.00")

	out, _, err = clitest.ExecuteCLICommand(t, app, ContractCmd(), []string{
		"sign", org, fmt.Sprintf("--id=%d", contractID), "--signer=Alice Homeowner",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "signed by Alice Homeowner")

	c, err := app.Clients.GetClient(t.Context(), orgID, clientID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSigned, c.Status)
}

func TestContractShow_MissingContract(t *testing.T) {
	db, app := clitest.SetupCLITest(t)
	orgID := clitest.CreateTestOrganization(t, db, "Acme")
	clientID, _ := clitest.CreateTestClient(t, db, orgID, "Alice")

	_, _, err := clitest.ExecuteCLICommand(t, app, ContractCmd(), []string{
		"show", fmt.Sprintf("--org=%d", orgID), fmt.Sprintf("--client=%d", clientID),
	})
	require.Error(t, err)
	assert.Equal(t, cli.ExitNotFound, cli.ExitCode(err))
}

func TestTermLibrary(t *testing.T) {
	db, app := clitest.SetupCLITest(t)
	orgID := clitest.CreateTestOrganization(t, db, "Acme")
	org := fmt.Sprintf("--org=%d", orgID)

	_, _, err := clitest.ExecuteCLICommand(t, app, ContractCmd(), []string{
		"term", "add", org, "--content=Permits are the owner's responsibility", "--default",
	})
	require.NoError(t, err)

	out, _, err := clitest.ExecuteCLICommand(t, app, ContractCmd(), []string{"term", "list", org})
	require.NoError(t, err)
	assert.Contains(t, out, "* Permits")
}

func TestContractShow_UsesBranding(t *testing.T) {
	db, app := clitest.SetupCLITest(t)
	orgID := clitest.CreateTestOrganization(t, db, "Acme")
	clientID, _ := clitest.CreateTestClient(t, db, orgID, "Alice")
	org := fmt.Sprintf("--org=%d", orgID)
	client := fmt.Sprintf("--client=%d", clientID)

	_, _, err := clitest.ExecuteCLICommand(t, app, ContractCmd(), []string{"draft", org, client, "--term=Deposit"})
	require.NoError(t, err)
	_, err = app.Organizations.SavePadding(t.Context(), orgID, models.Padding{Top: 220, Bottom: 60, Right: 30, Left: 30})
	require.NoError(t, err)

	out, _, err := clitest.ExecuteCLICommand(t, app, ContractCmd(), []string{"show", org, client, "--html"})
	require.NoError(t, err)
	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "padding: 220px 30px 60px 30px")
	assert.Contains(t, out, "Deposit")
}
