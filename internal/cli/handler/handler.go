// Package handler removes the bootstrap and reporting boilerplate shared by
// every sitebook command.
package handler

import (
	"context"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/thenoetrevino/sitebook/internal/cli"
	"go.uber.org/zap"
)

// Env is what a command body works with
type Env struct {
	CLI            *cli.CLI
	Cmd            *cobra.Command
	Args           []string
	OrganizationID int
	Formatter      *cli.OutputFormatter
	Flags          *FlagParser
}

// Interactive reports whether the command may prompt: stdin and stderr are
// terminals and neither --json nor --quiet was given
func (e *Env) Interactive() bool {
	if e.Formatter.JSON || e.Formatter.Quiet {
		return false
	}
	in, ok := e.Cmd.InOrStdin().(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(in.Fd()) && isatty.IsTerminal(os.Stderr.Fd())
}

// Result is a command's output: Data for --json and --quiet, Human for people
type Result struct {
	Data  any
	Human func(w io.Writer) error
}

// Func is a command body
type Func func(ctx context.Context, env *Env) (*Result, error)

// Command wraps fn for commands scoped to the selected organization
func Command(fn Func) func(*cobra.Command, []string) error {
	return run(fn, true)
}

// Global wraps fn for commands that need no organization
func Global(fn Func) func(*cobra.Command, []string) error {
	return run(fn, false)
}

func run(fn Func, scoped bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		formatter := cli.Formatter(cmd.Flags())
		formatter.Out = cmd.OutOrStdout()
		formatter.Err = cmd.ErrOrStderr()

		c, err := cli.GetCLIFromContext(cmd)
		if err != nil {
			return formatter.Fail(err)
		}
		defer func() {
			if err := c.Close(); err != nil {
				c.Logger.Warn("error closing CLI", zap.Error(err))
			}
		}()

		env := &Env{
			CLI:       c,
			Cmd:       cmd,
			Args:      args,
			Formatter: formatter,
			Flags:     NewFlagParser(cmd),
		}
		if scoped {
			env.OrganizationID, err = c.Organization(cmd)
			if err != nil {
				return formatter.Fail(err)
			}
		}

		result, err := fn(ctx, env)
		if err != nil {
			return formatter.Fail(err)
		}
		if result == nil {
			return nil
		}
		human := result.Human
		if human == nil {
			return formatter.Success(result.Data)
		}
		return formatter.Print(result.Data, human)
	}
}

// AddOutputFlags registers the agent friendly output flags
func AddOutputFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output (ID only)")
}

// AddOrgFlag registers the organization selector on a command group
func AddOrgFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().Int("org", 0, "Organization ID (default $"+cli.OrganizationEnv+" or cli.organization)")
}
