// Package file holds all cli commands related to project files
//
// e.g., sitebook file ...
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/thenoetrevino/sitebook/internal/cli/handler"
	"github.com/thenoetrevino/sitebook/internal/models"
	"github.com/thenoetrevino/sitebook/internal/storage"
)

// FileCmd returns the file parent command
func FileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "file",
		Short: "Upload and fetch project photos, plans and media",
	}
	handler.AddOrgFlag(cmd)
	cmd.PersistentFlags().Int("client", 0, "Client ID (required)")
	_ = cmd.MarkPersistentFlagRequired("client")

	cmd.AddCommand(UploadCmd())
	cmd.AddCommand(ListCmd())
	cmd.AddCommand(DownloadCmd())
	cmd.AddCommand(DeleteCmd())

	return cmd
}

// UploadCmd returns the file upload subcommand
func UploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Upload a file",
		Long: `Upload a file to a client's project. The category is one of
before, after, blueprint or media.

Examples:
  sitebook file upload --client=4 --category=blueprint ./plans/kitchen.png`,
		Args: cobra.ExactArgs(1),
		RunE: handler.Command(runUpload),
	}
	cmd.Flags().String("category", string(models.CategoryMedia), "File category")
	cmd.Flags().String("name", "", "Stored name (defaults to the file's base name)")
	handler.AddOutputFlags(cmd)
	return cmd
}

func runUpload(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	clientID, err := env.Flags.ParseID("client")
	if err != nil {
		return nil, err
	}
	category, _ := env.Cmd.Flags().GetString("category")
	name, _ := env.Cmd.Flags().GetString("name")
	path := env.Args[0]
	if name == "" {
		name = filepath.Base(path)
	}

	src, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer src.Close()

	f, err := env.CLI.App.Files.Upload(ctx, storage.UploadRequest{
		OrganizationID: env.OrganizationID,
		ClientID:       clientID,
		Category:       models.FileCategory(category),
		Name:           name,
		Body:           src,
	})
	if err != nil {
		return nil, err
	}
	return &handler.Result{Data: f, Human: func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ Uploaded %s (%s, %s, ID: %d)\n", f.Name, f.ContentType, humanize.IBytes(uint64(f.Size)), f.ID)
		return err
	}}, nil
}

// ListCmd returns the file list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a client's files",
		RunE:  handler.Command(runList),
	}
	cmd.Flags().String("category", "", "Only this category")
	handler.AddOutputFlags(cmd)
	return cmd
}

func runList(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	clientID, err := env.Flags.ParseID("client")
	if err != nil {
		return nil, err
	}
	category, _ := env.Cmd.Flags().GetString("category")
	files, err := env.CLI.App.Files.List(ctx, env.OrganizationID, clientID, models.FileCategory(category))
	if err != nil {
		return nil, err
	}
	return &handler.Result{Data: files, Human: func(w io.Writer) error {
		if len(files) == 0 {
			_, err := fmt.Fprintln(w, "No files")
			return err
		}
		for _, f := range files {
			fmt.Fprintf(w, "%4d  %-10s %-32s %10s  %s\n",
				f.ID, f.Category, f.Name, humanize.IBytes(uint64(f.Size)), humanize.Time(f.UploadedAt))
		}
		return nil
	}}, nil
}

// DownloadCmd returns the file download subcommand
func DownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Write a file's contents to disk or stdout",
		RunE:  handler.Command(runDownload),
	}
	cmd.Flags().Int("id", 0, "File ID (required)")
	_ = cmd.MarkFlagRequired("id")
	cmd.Flags().String("out", "", "Destination path (\"-\" for stdout, defaults to the stored name)")
	return cmd
}

func runDownload(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	clientID, err := env.Flags.ParseID("client")
	if err != nil {
		return nil, err
	}
	id, err := env.Flags.ParseID("id")
	if err != nil {
		return nil, err
	}
	rc, f, err := env.CLI.App.Files.Open(ctx, env.OrganizationID, clientID, id)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	out, _ := env.Cmd.Flags().GetString("out")
	if out == "-" {
		_, err := io.Copy(env.Cmd.OutOrStdout(), rc)
		return nil, err
	}
	if out == "" {
		out = f.Name
	}
	n, err := writeFile(out, rc)
	if err != nil {
		return nil, err
	}
	return &handler.Result{Data: f, Human: func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ Wrote %s (%s)\n", out, humanize.IBytes(uint64(n)))
		return err
	}}, nil
}

func writeFile(path string, r io.Reader) (int64, error) {
	dst, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}
	n, err := io.Copy(dst, r)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// DeleteCmd returns the file delete subcommand
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a file",
		RunE:  handler.Command(runDelete),
	}
	cmd.Flags().Int("id", 0, "File ID (required)")
	_ = cmd.MarkFlagRequired("id")
	handler.AddOutputFlags(cmd)
	return cmd
}

func runDelete(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	clientID, err := env.Flags.ParseID("client")
	if err != nil {
		return nil, err
	}
	id, err := env.Flags.ParseID("id")
	if err != nil {
		return nil, err
	}
	if err := env.CLI.App.Files.Delete(ctx, env.OrganizationID, clientID, id); err != nil {
		return nil, err
	}
	return &handler.Result{Data: map[string]int{"id": id}, Human: func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ File %d deleted\n", id)
		return err
	}}, nil
}
