package team

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

func TestTeam(t *testing.T) {
	db, app := clitest.SetupCLITest(t)
	orgID := clitest.CreateTestOrganization(t, db, "Acme")
	owner := testutil.CreateTestMember(t, db, orgID, "owner@example.com", models.RoleOwner)
	worker := testutil.CreateTestMember(t, db, orgID, "worker@example.com", models.RoleWorker)
	org := fmt.Sprintf("--org=%d", orgID)

	t.Run("promote worker", func(t *testing.T) {
		_, _, err := clitest.ExecuteCLICommand(t, app, TeamCmd(), []string{"role", org, fmt.Sprintf("--id=%d", worker), "admin"})
		require.NoError(t, err)
		m, err := app.Team.GetMember(t.Context(), orgID, worker)
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, m.Role)
	})

	t.Run("last owner cannot be removed", func(t *testing.T) {
		_, _, err := clitest.ExecuteCLICommand(t, app, TeamCmd(), []string{"remove", org, fmt.Sprintf("--id=%d", owner)})
		require.Error(t, err)
	})

	t.Run("invalid role", func(t *testing.T) {
		_, _, err := clitest.ExecuteCLICommand(t, app, TeamCmd(), []string{"role", org, fmt.Sprintf("--id=%d", worker), "boss"})
		require.Error(t, err)
		assert.Equal(t, cli.ExitValidation, cli.ExitCode(err))
	})

	t.Run("invite defaults to worker", func(t *testing.T) {
		out, _, err := clitest.ExecuteCLICommand(t, app, TeamCmd(), []string{"invite", org, "new@example.com"})
		require.NoError(t, err)
		assert.Contains(t, out, "Invited new@example.com as worker")

		out, _, err = clitest.ExecuteCLICommand(t, app, TeamCmd(), []string{"invites", org})
		require.NoError(t, err)
		assert.Contains(t, out, "new@example.com")
	})

	t.Run("color", func(t *testing.T) {
		_, _, err := clitest.ExecuteCLICommand(t, app, TeamCmd(), []string{"color", org, fmt.Sprintf("--id=%d", worker), "#ff8800"})
		require.NoError(t, err)
		m, err := app.Team.GetMember(t.Context(), orgID, worker)
		require.NoError(t, err)
		assert.Equal(t, "#FF8800", m.Color)
	})
}
