package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// OrganizationEnv holds the organization selected by `sitebook use org`
const OrganizationEnv = "SITEBOOK_ORG"

// ErrNoOrganization is returned when no organization was selected
var ErrNoOrganization = errors.New("no organization selected")

// GetOrganizationID resolves the organization for a command: the --org flag,
// then $SITEBOOK_ORG, then the cli.organization config value.
func GetOrganizationID(cmd *cobra.Command, configured int) (int, error) {
	if cmd.Flags().Changed("org") {
		id, err := cmd.Flags().GetInt("org")
		if err != nil {
			return 0, fmt.Errorf("failed to parse --org: %w", err)
		}
		if id <= 0 {
			return 0, fmt.Errorf("%w: --org must be greater than 0", ErrNoOrganization)
		}
		return id, nil
	}

	if env := os.Getenv(OrganizationEnv); env != "" {
		id, err := strconv.Atoi(env)
		if err != nil || id <= 0 {
			return 0, fmt.Errorf("%w: invalid %s value %q", ErrNoOrganization, OrganizationEnv, env)
		}
		return id, nil
	}

	if configured > 0 {
		return configured, nil
	}
	return 0, ErrNoOrganization
}

// Organization resolves the organization and checks that it exists
func (c *CLI) Organization(cmd *cobra.Command) (int, error) {
	id, err := GetOrganizationID(cmd, c.Config.CLI.Organization)
	if err != nil {
		return 0, err
	}
	if _, err := c.App.Organizations.Get(cmd.Context(), id); err != nil {
		return 0, err
	}
	return id, nil
}
