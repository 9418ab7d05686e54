package use

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/sitebook/internal/cli"
	clitest "github.com/thenoetrevino/sitebook/internal/testutil/cli"
)

func TestUseOrg(t *testing.T) {
	db, app := clitest.SetupCLITest(t)
	orgID := clitest.CreateTestOrganization(t, db, "Acme")

	out, stderr, err := clitest.ExecuteCLICommand(t, app, UseCmd(), []string{"org", fmt.Sprintf("%d", orgID)})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("export %s=%d\n", cli.OrganizationEnv, orgID), out)
	assert.Contains(t, stderr, "Acme")
}

func TestUseOrg_Clear(t *testing.T) {
	_, app := clitest.SetupCLITest(t)

	out, _, err := clitest.ExecuteCLICommand(t, app, UseCmd(), []string{"org", "--clear"})
	require.NoError(t, err)
	assert.Equal(t, "unset "+cli.OrganizationEnv+"\n", out)
}

func TestUseOrg_Show(t *testing.T) {
	db, app := clitest.SetupCLITest(t)
	orgID := clitest.CreateTestOrganization(t, db, "Acme")
	t.Setenv(cli.OrganizationEnv, fmt.Sprintf("%d", orgID))

	out, _, err := clitest.ExecuteCLICommand(t, app, UseCmd(), []string{"org", "--show"})
	require.NoError(t, err)
	assert.Contains(t, out, fmt.Sprintf("Current organization: %d (Acme)", orgID))
}

func TestUseOrg_Unknown(t *testing.T) {
	_, app := clitest.SetupCLITest(t)

	out, _, err := clitest.ExecuteCLICommand(t, app, UseCmd(), []string{"org", "42"})
	require.Error(t, err)
	assert.Empty(t, out)
	assert.Equal(t, cli.ExitNotFound, cli.ExitCode(err))
}
