package cli

import (
	"context"
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/sitebook/internal/app"
	"github.com/thenoetrevino/sitebook/internal/storage"
	"github.com/thenoetrevino/sitebook/internal/testutil"
)

func orgCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().Int("org", 0, "")
	return cmd
}

func TestGetOrganizationID(t *testing.T) {
	t.Run("flag wins", func(t *testing.T) {
		t.Setenv(OrganizationEnv, "7")
		cmd := orgCommand()
		require.NoError(t, cmd.Flags().Set("org", "3"))
		id, err := GetOrganizationID(cmd, 9)
		require.NoError(t, err)
		assert.Equal(t, 3, id)
	})

	t.Run("environment before config", func(t *testing.T) {
		t.Setenv(OrganizationEnv, "7")
		id, err := GetOrganizationID(orgCommand(), 9)
		require.NoError(t, err)
		assert.Equal(t, 7, id)
	})

	t.Run("config fallback", func(t *testing.T) {
		t.Setenv(OrganizationEnv, "")
		id, err := GetOrganizationID(orgCommand(), 9)
		require.NoError(t, err)
		assert.Equal(t, 9, id)
	})

	t.Run("nothing selected", func(t *testing.T) {
		t.Setenv(OrganizationEnv, "")
		_, err := GetOrganizationID(orgCommand(), 0)
		assert.ErrorIs(t, err, ErrNoOrganization)
	})

	t.Run("bad environment", func(t *testing.T) {
		t.Setenv(OrganizationEnv, "acme")
		_, err := GetOrganizationID(orgCommand(), 0)
		assert.ErrorIs(t, err, ErrNoOrganization)
	})

	t.Run("bad flag", func(t *testing.T) {
		cmd := orgCommand()
		require.NoError(t, cmd.Flags().Set("org", "0"))
		_, err := GetOrganizationID(cmd, 0)
		assert.ErrorIs(t, err, ErrNoOrganization)
	})
}

func TestGetCLIFromContext_InjectedApp(t *testing.T) {
	t.Setenv(OrganizationEnv, "")
	store := testutil.SetupTestStore(t)
	bucket, err := storage.NewFSBucket(t.TempDir(), "http://localhost/files")
	require.NoError(t, err)
	a, err := app.New(store, app.WithBucket(bucket))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	cmd := orgCommand()
	cmd.SetContext(WithApp(context.Background(), a))

	c, err := GetCLIFromContext(cmd)
	require.NoError(t, err)
	assert.Same(t, a, c.App)
	require.NoError(t, c.Close())

	// the injected app stays usable after Close
	org, err := a.Organizations.Create(context.Background(), "Builders")
	require.NoError(t, err)

	require.NoError(t, cmd.Flags().Set("org", "9999"))
	_, err = c.Organization(cmd)
	assert.Error(t, err)

	require.NoError(t, cmd.Flags().Set("org", fmt.Sprint(org.ID)))
	id, err := c.Organization(cmd)
	require.NoError(t, err)
	assert.Equal(t, org.ID, id)
}
