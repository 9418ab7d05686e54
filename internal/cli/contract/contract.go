// Package contract holds all cli commands related to contracts and the term library
//
// e.g., sitebook contract ...
package contract

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/thenoetrevino/sitebook/internal/cli/handler"
	"github.com/thenoetrevino/sitebook/internal/cli/styles"
	contractservice "github.com/thenoetrevino/sitebook/internal/services/contract"
	"github.com/thenoetrevino/sitebook/internal/user"
)

// ContractCmd returns the contract parent command
func ContractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contract",
		Short: "Draft and sign client contracts",
	}
	handler.AddOrgFlag(cmd)

	cmd.AddCommand(ShowCmd())
	cmd.AddCommand(DraftCmd())
	cmd.AddCommand(SignCmd())
	cmd.AddCommand(TermCmd())

	return cmd
}

// ShowCmd returns the contract show subcommand
func ShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Render a client's contract",
		RunE:  handler.Command(runShow),
	}
	cmd.Flags().Int("client", 0, "Client ID (required)")
	_ = cmd.MarkFlagRequired("client")
	cmd.Flags().Int("width", 80, "Word wrap width")
	cmd.Flags().Bool("html", false, "Print a printable HTML page with the organization's letterhead")
	handler.AddOutputFlags(cmd)
	return cmd
}

func runShow(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	clientID, err := env.Flags.ParseID("client")
	if err != nil {
		return nil, err
	}
	doc, err := env.CLI.App.Contracts.Document(ctx, env.OrganizationID, clientID)
	if err != nil {
		return nil, err
	}
	if asHTML, _ := env.Cmd.Flags().GetBool("html"); asHTML {
		page, err := doc.HTML()
		if err != nil {
			return nil, err
		}
		return &handler.Result{Data: doc.Contract, Human: func(w io.Writer) error {
			_, err := w.Write(page)
			return err
		}}, nil
	}
	width, _ := env.Cmd.Flags().GetInt("width")
	return &handler.Result{Data: doc.Contract, Human: func(w io.Writer) error {
		_, err := fmt.Fprintln(w, render(doc.Markdown(), width, env.Cmd.OutOrStdout()))
		return err
	}}, nil
}

// render styles markdown for out. Plain output is used when out is not a terminal.
func render(md string, width int, out io.Writer) string {
	style := glamour.WithStandardStyle("notty")
	if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		style = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return md
	}
	rendered, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(rendered)
}

// DraftCmd returns the contract draft subcommand
func DraftCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Save a contract draft",
		Long: `Save the draft contract of a client. Without --term the default terms
of the organization's library are used.

Examples:
  sitebook contract draft --client=4 --term="50% deposit" --term="Cleanup included" --price=9000`,
		RunE: handler.Command(runDraft),
	}
	cmd.Flags().Int("client", 0, "Client ID (required)")
	_ = cmd.MarkFlagRequired("client")
	cmd.Flags().StringArray("term", nil, "Contract term (repeatable)")
	cmd.Flags().Float64("price", 0, "Contract price (defaults to the project price)")
	cmd.Flags().String("notes", "", "Free form notes")
	handler.AddOutputFlags(cmd)
	return cmd
}

func runDraft(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	clientID, err := env.Flags.ParseID("client")
	if err != nil {
		return nil, err
	}
	var terms []string
	if env.Cmd.Flags().Changed("term") {
		terms, _ = env.Cmd.Flags().GetStringArray("term")
	}
	notes, _ := env.Cmd.Flags().GetString("notes")
	k, err := env.CLI.App.Contracts.SaveDraft(ctx, contractservice.SaveDraftRequest{
		OrganizationID: env.OrganizationID,
		ClientID:       clientID,
		Terms:          terms,
		Price:          env.Flags.Float64IfChanged("price"),
		Notes:          notes,
	})
	if err != nil {
		return nil, err
	}
	return &handler.Result{Data: k, Human: func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ Draft saved (contract %d, %d terms, %s)\n", k.ID, len(k.Terms), styles.Money(k.Price))
		return err
	}}, nil
}

// SignCmd returns the contract sign subcommand
func SignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Record a client's signature",
		RunE:  handler.Command(runSign),
	}
	cmd.Flags().Int("id", 0, "Contract ID (required)")
	_ = cmd.MarkFlagRequired("id")
	cmd.Flags().String("signer", "", "Name of the signer (defaults to cli.actor)")
	handler.AddOutputFlags(cmd)
	return cmd
}

func runSign(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	id, err := env.Flags.ParseID("id")
	if err != nil {
		return nil, err
	}
	signer, _ := env.Cmd.Flags().GetString("signer")
	if signer == "" {
		signer = user.Actor(env.CLI.Config.CLI.Actor)
	}
	k, err := env.CLI.App.Contracts.Sign(ctx, env.OrganizationID, id, signer)
	if err != nil {
		return nil, err
	}
	return &handler.Result{Data: k, Human: func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ Contract %d signed by %s\n", k.ID, k.SignerName)
		return err
	}}, nil
}

// TermCmd returns the term library subcommand group
func TermCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "term",
		Short: "Manage the reusable term library",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Add a term to the library",
		RunE:  handler.Command(runTermAdd),
	}
	add.Flags().String("content", "", "Term text (required)")
	_ = add.MarkFlagRequired("content")
	add.Flags().Bool("default", false, "Include in new drafts by default")
	handler.AddOutputFlags(add)

	list := &cobra.Command{
		Use:   "list",
		Short: "List library terms",
		RunE:  handler.Command(runTermList),
	}
	handler.AddOutputFlags(list)

	del := &cobra.Command{
		Use:   "delete",
		Short: "Delete a library term",
		RunE:  handler.Command(runTermDelete),
	}
	del.Flags().Int("id", 0, "Term ID (required)")
	_ = del.MarkFlagRequired("id")
	handler.AddOutputFlags(del)

	cmd.AddCommand(add, list, del)
	return cmd
}

func runTermAdd(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	content, err := env.Flags.ParseString("content")
	if err != nil {
		return nil, err
	}
	isDefault, _ := env.Cmd.Flags().GetBool("default")
	term, err := env.CLI.App.Contracts.AddTerm(ctx, env.OrganizationID, content, isDefault)
	if err != nil {
		return nil, err
	}
	return &handler.Result{Data: term, Human: func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ Term %d added\n", term.ID)
		return err
	}}, nil
}

func runTermList(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	terms, err := env.CLI.App.Contracts.ListTerms(ctx, env.OrganizationID)
	if err != nil {
		return nil, err
	}
	return &handler.Result{Data: terms, Human: func(w io.Writer) error {
		if len(terms) == 0 {
			_, err := fmt.Fprintln(w, "No terms in the library")
			return err
		}
		for _, t := range terms {
			mark := " "
			if t.IsDefault {
				mark = "*"
			}
			if _, err := fmt.Fprintf(w, "%4d %s %s\n", t.ID, mark, t.Content); err != nil {
				return err
			}
		}
		return nil
	}}, nil
}

func runTermDelete(ctx context.Context, env *handler.Env) (*handler.Result, error) {
	id, err := env.Flags.ParseID("id")
	if err != nil {
		return nil, err
	}
	if err := env.CLI.App.Contracts.DeleteTerm(ctx, env.OrganizationID, id); err != nil {
		return nil, err
	}
	return &handler.Result{Data: map[string]int{"id": id}, Human: func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ Term %d deleted\n", id)
		return err
	}}, nil
}
