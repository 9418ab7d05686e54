package org

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/sitebook/internal/cli"
	"github.com/thenoetrevino/sitebook/internal/models"
	clitest "github.com/thenoetrevino/sitebook/internal/testutil/cli"
)

func TestOrg(t *testing.T) {
	_, app := clitest.SetupCLITest(t)

	out, _, err := clitest.ExecuteCLICommand(t, app, OrgCmd(), []string{"create", "Acme Renovations", "--quiet"})
	require.NoError(t, err)
	var id int
	_, err = fmt.Sscanf(out, "%d", &id)
	require.NoError(t, err)

	out, _, err = clitest.ExecuteCLICommand(t, app, OrgCmd(), []string{"list"})
	require.NoError(t, err)
	assert.Contains(t, out, "Acme Renovations")

	t.Run("delete asks for confirmation", func(t *testing.T) {
		cmd := OrgCmd()
		cmd.SetIn(strings.NewReader("n\n"))
		out, stderr, err := clitest.ExecuteCLICommand(t, app, cmd, []string{"delete", fmt.Sprintf("--id=%d", id)})
		require.NoError(t, err)
		assert.Contains(t, stderr, "Delete organization 'Acme Renovations'")
		assert.Contains(t, out, "Cancelled")
	})

	t.Run("forced delete", func(t *testing.T) {
		_, _, err := clitest.ExecuteCLICommand(t, app, OrgCmd(), []string{"delete", fmt.Sprintf("--id=%d", id), "--force"})
		require.NoError(t, err)

		_, _, err = clitest.ExecuteCLICommand(t, app, OrgCmd(), []string{"delete", fmt.Sprintf("--id=%d", id), "--force"})
		require.Error(t, err)
		assert.Equal(t, cli.ExitNotFound, cli.ExitCode(err))
	})
}

func TestOrgCreate_EmptyName(t *testing.T) {
	_, app := clitest.SetupCLITest(t)

	_, _, err := clitest.ExecuteCLICommand(t, app, OrgCmd(), []string{"create", "  "})
	require.Error(t, err)
	assert.Equal(t, cli.ExitValidation, cli.ExitCode(err))
}

func TestOrgDelete_ConfirmedOnPipe(t *testing.T) {
	db, app := clitest.SetupCLITest(t)
	id := clitest.CreateTestOrganization(t, db, "Rivals")

	cmd := OrgCmd()
	cmd.SetIn(strings.NewReader("y\n"))
	out, _, err := clitest.ExecuteCLICommand(t, app, cmd, []string{"delete", fmt.Sprintf("--id=%d", id)})
	require.NoError(t, err)
	assert.Contains(t, out, fmt.Sprintf("Organization %d deleted", id))

	_, err = app.Organizations.Get(context.Background(), id)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestConfirmForm(t *testing.T) {
	confirmed := true
	form := confirmForm(&models.Organization{ID: 7, Name: "Rivals"}, &confirmed)
	require.NotNil(t, form)
	assert.True(t, confirmed, "the form starts from the bound value")
}
