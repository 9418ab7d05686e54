// Package blueprint holds all cli commands related to blueprint drawings
//
// e.g., sitebook blueprint ...
package blueprint

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/sitebook/internal/blueprint"
	"github.com/thenoetrevino/sitebook/internal/cli/handler"
)

// BlueprintCmd returns the blueprint parent command
func BlueprintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blueprint",
		Short: "Edit and export drawings over blueprint files",
	}
	handler.AddOrgFlag(cmd)
	cmd.PersistentFlags().Int("client", 0, "Client ID (required)")
	cmd.PersistentFlags().Int("file", 0, "Blueprint file ID (required)")
	_ = cmd.MarkPersistentFlagRequired("client")
	_ = cmd.MarkPersistentFlagRequired("file")

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the drawing's canvas and command history",
		RunE:  handler.Command(runShow),
	}
	handler.AddOutputFlags(show)

	imp := &cobra.Command{
		Use:   "import <drawing.json>",
		Short: "Replace the drawing with a saved document",
		Args:  cobra.ExactArgs(1),
		RunE:  handler.Command(runImport),
	}
	handler.AddOutputFlags(imp)

	undo := &cobra.Command{
		Use:   "undo",
		Short: "Remove the latest drawing command",
		RunE:  handler.Command(edit(func(d *blueprint.Drawing) bool { return d.Undo() })),
	}
	handler.AddOutputFlags(undo)

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Wipe the annotations (undo brings them back)",
		RunE: handler.Command(edit(func(d *blueprint.Drawing) bool {
			before := len(d.Commands())
			d.Clear()
			return len(d.Commands()) != before
		})),
	}
	handler.AddOutputFlags(clearCmd)

	export := &cobra.Command{
		Use:   "export",
		Short: "Render the drawing over the blueprint as PNG",
		Long: `Render the drawing over the blueprint image as a PNG.

Examples:
  sitebook blueprint export --client=4 --file=9 --out=kitchen.png --width=2400`,
		RunE: handler.Command(runExport),
	}
	export.Flags().String("out", "", "Destination PNG path (required, \"-\" for stdout)")
	_ = export.MarkFlagRequired("out")
	export.Flags().Int("width", blueprint.DefaultRenderWidth, "Output width in pixels")

	cmd.AddCommand(show, imp, undo, clearCmd, export)
	return cmd
}

func ids(env *handler.Env) (clientID, fileID int, err error) {
	if clientID, err = env.Flags.ParseID("client"); err != nil {
		return 0, 0, err
	}
	if fileID, err = env.Flags.ParseID("file"); err != nil {
		return 0, 0, err
	}
	return clientID, fileID, nil
}

func summary(d *blueprint.Drawing) func(w io.Writer) error {
	return func(w io.Writer) error {
		fmt.Fprintf(w, "Canvas: %gx%g\n", d.Width, d.Height)
		counts := map[blueprint.Kind]int{}
		for _, c := range d.Visible() {
			counts[c.Kind]++
		}
		fmt.Fprintf(w, "Visible commands: %d (history %d)\n", len(d.Visible()), len(d.Commands()))
		for _, k := range []blueprint.Kind{
			blueprint.KindStroke, blueprint.KindEraser, blueprint.KindLine, blueprint.KindArrow,
			blueprint.KindDoubleArrow, blueprint.KindRect, blueprint.KindEllipse, blueprint.KindText,
		} {
			if counts[k] > 0 {
				fmt.Fprintf(w, "  %-13s %d\n", k, counts[k])
			}
		}
		return nil
	}
}

func runShow(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	clientID, fileID, err := ids(env)
	if err != nil {
		return nil, err
	}
	d, err := env.CLI.App.Blueprints.Load(ctx, env.OrganizationID, clientID, fileID)
	if err != nil {
		return nil, err
	}
	return &handler.Result{Data: d, Human: summary(d)}, nil
}

func runImport(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	clientID, fileID, err := ids(env)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(env.Args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", env.Args[0], err)
	}
	d := &blueprint.Drawing{}
	if err := json.Unmarshal(data, d); err != nil {
		return nil, err
	}
	if err := env.CLI.App.Blueprints.Save(ctx, env.OrganizationID, clientID, fileID, d); err != nil {
		return nil, err
	}
	return &handler.Result{Data: d, Human: summary(d)}, nil
}

// edit loads the drawing, applies fn and saves it when fn changed something
func edit(fn func(d *blueprint.Drawing) bool) handler.Func {
	return func(ctx context.Context, env *handler.Env) (*handler.Result, error) {
		clientID, fileID, err := ids(env)
		if err != nil {
			return nil, err
		}
		d, err := env.CLI.App.Blueprints.Load(ctx, env.OrganizationID, clientID, fileID)
		if err != nil {
			return nil, err
		}
		if !fn(d) {
			return &handler.Result{Data: d, Human: func(w io.Writer) error {
				_, err := fmt.Fprintln(w, "Nothing to change")
				return err
			}}, nil
		}
		if err := env.CLI.App.Blueprints.Save(ctx, env.OrganizationID, clientID, fileID, d); err != nil {
			return nil, err
		}
		return &handler.Result{Data: d, Human: summary(d)}, nil
	}
}

func runExport(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	clientID, fileID, err := ids(env)
	if err != nil {
		return nil, err
	}
	width, _ := env.Cmd.Flags().GetInt("width")
	out, _ := env.Cmd.Flags().GetString("out")

	if out == "-" {
		return nil, env.CLI.App.Blueprints.Export(ctx, env.OrganizationID, clientID, fileID, width, env.Cmd.OutOrStdout())
	}
	dst, err := os.Create(out)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", out, err)
	}
	err = env.CLI.App.Blueprints.Export(ctx, env.OrganizationID, clientID, fileID, width, dst)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(out)
		return nil, err
	}
	return &handler.Result{Data: map[string]any{"path": out, "width": width}, Human: func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ Exported %s\n", out)
		return err
	}}, nil
}
