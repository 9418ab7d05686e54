package client

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/sitebook/internal/cli"
	clitest "github.com/thenoetrevino/sitebook/internal/testutil/cli"
)

func TestClientCreateAndList(t *testing.T) {
	db, app := clitest.SetupCLITest(t)
	orgID := clitest.CreateTestOrganization(t, db, "Acme Renovations")
	org := fmt.Sprintf("--org=%d", orgID)

	out, _, err := clitest.ExecuteCLICommand(t, app, ClientCmd(),
		[]string{"create", org, "--name=Alice Homeowner", "--price=12000"})
	require.NoError(t, err)
	assert.Contains(t, out, "Client 'Alice Homeowner' created")

	out, _, err = clitest.ExecuteCLICommand(t, app, ClientCmd(), []string{"list", org, "--json"})
	require.NoError(t, err)
	parsed := clitest.ParseJSON(t, out)
	assert.Equal(t, true, parsed["success"])
	clients, ok := parsed["data"].([]any)
	require.True(t, ok)
	require.Len(t, clients, 1)
	assert.Equal(t, "Alice Homeowner", clients[0].(map[string]any)["full_name"])
}

func TestClientCreate_Quiet(t *testing.T) {
	db, app := clitest.SetupCLITest(t)
	orgID := clitest.CreateTestOrganization(t, db, "Acme")

	out, _, err := clitest.ExecuteCLICommand(t, app, ClientCmd(),
		[]string{"create", fmt.Sprintf("--org=%d", orgID), "--name=Bob", "--quiet"})
	require.NoError(t, err)
	assert.Regexp(t, `^\d+\n$`, out)
}

func TestClientShow_NotFound(t *testing.T) {
	db, app := clitest.SetupCLITest(t)
	orgID := clitest.CreateTestOrganization(t, db, "Acme")

	_, _, err := clitest.ExecuteCLICommand(t, app, ClientCmd(),
		[]string{"show", fmt.Sprintf("--org=%d", orgID), "--id=999"})
	require.Error(t, err)
	assert.Equal(t, cli.ExitNotFound, cli.ExitCode(err))
}

func TestClient_OtherOrganizationIsHidden(t *testing.T) {
	db, app := clitest.SetupCLITest(t)
	mine := clitest.CreateTestOrganization(t, db, "Mine")
	theirs := clitest.CreateTestOrganization(t, db, "Theirs")
	clientID, _ := clitest.CreateTestClient(t, db, theirs, "Carol")

	_, _, err := clitest.ExecuteCLICommand(t, app, ClientCmd(),
		[]string{"delete", fmt.Sprintf("--org=%d", mine), fmt.Sprintf("--id=%d", clientID)})
	require.Error(t, err)
	assert.Equal(t, cli.ExitNotFound, cli.ExitCode(err))
}

func TestClient_RequiresOrganization(t *testing.T) {
	t.Setenv(cli.OrganizationEnv, "")
	_, app := clitest.SetupCLITest(t)

	_, _, err := clitest.ExecuteCLICommand(t, app, ClientCmd(), []string{"list"})
	require.Error(t, err)
	assert.Equal(t, cli.ExitUsage, cli.ExitCode(err))
}
