// Package use holds all cli commands related to setting contextual information
// e.g., sitebook use ...
package use

import (
	"github.com/spf13/cobra"
)

// UseCmd returns the use parent command
func UseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "use",
		Short: "Manage contextual settings for the current shell",
		Long: `Set and manage contextual information for the current shell session.

The 'use' command sets context that applies to subsequent commands,
so --org does not have to be repeated.

Examples:
  eval $(sitebook use org 3)       # Use organization 3
  eval $(sitebook use org --clear) # Clear organization context
  sitebook use org --show          # Show current organization`,
	}

	cmd.AddCommand(OrgCmd())

	return cmd
}
