package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nao1215/seoaudit/internal/auditor"
	"github.com/nao1215/seoaudit/internal/config"
	"github.com/nao1215/seoaudit/internal/database"
	"github.com/nao1215/seoaudit/internal/report"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [domain]",
		Short: "Show stored audit results",
		Long: `History lists the audits stored in the local database.

Without arguments it lists every audited domain. With a domain it shows
the audits of that domain, newest first.

Examples:
  # List audited domains
  seoaudit history

  # Show the audits of a domain
  seoaudit history example.com

  # Show the pages crawled by one audit
  seoaudit history --pages 3f6c2a4e-0b1d-4c52-9a39-2d7e5f0c8b11

  # Output the audits of a domain as JSON
  seoaudit history --json example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().StringP("pages", "P", "",
		"Show the pages crawled by the audit with this ID")
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	auditID, err := cmd.Flags().GetString("pages")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	// Validate before opening the database.
	var domain string
	if len(args) == 1 {
		if domain, err = auditor.NormalizeDomain(args[0]); err != nil {
			return err
		}
	}

	db, err := openHistoryDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	switch {
	case auditID != "":
		return listAuditPages(ctx, db, out, auditID, jsonOutput)
	case domain != "":
		return listAuditHistory(ctx, db, out, domain, jsonOutput)
	default:
		return listAuditedDomains(ctx, db, out, jsonOutput)
	}
}

// openHistoryDB opens the existing history database in the XDG data directory.
func openHistoryDB() (*database.AuditDB, error) {
	db, err := database.Open(config.XDGDataDir(), database.Options{EnableWAL: true})
	if errors.Is(err, database.ErrDatabaseNotFound) {
		return nil, errors.New("no audit history found (run 'seoaudit audit <domain>' first)")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// listAuditedDomains lists all domains that have audits in the database.
func listAuditedDomains(ctx context.Context, db *database.AuditDB, out io.Writer, jsonOutput bool) error {
	domains, err := db.ListDomains(ctx)
	if err != nil {
		return fmt.Errorf("failed to list domains: %w", err)
	}

	if jsonOutput {
		_, err := report.NewJSONWriter(out, report.WithPrettyPrint()).WriteValue(map[string]any{"domains": domains})
		return err
	}

	if len(domains) == 0 {
		fmt.Fprintln(out, "No audited domains found in the database.")
		fmt.Fprintln(out, "\nUse 'seoaudit audit <domain>' to audit a site.")
		return nil
	}

	fmt.Fprintf(out, "Audited domains (%d):\n\n", len(domains))
	for _, d := range domains {
		fmt.Fprintf(out, "  • %s\n", d)
	}
	fmt.Fprintln(out, "\nUse 'seoaudit history <domain>' to see the audits of a domain.")

	return nil
}

// listAuditHistory lists the audits of one domain.
func listAuditHistory(ctx context.Context, db *database.AuditDB, out io.Writer, domain string, jsonOutput bool) error {
	history, err := db.AuditHistory(ctx, domain)
	if err != nil {
		return fmt.Errorf("failed to get audit history: %w", err)
	}

	if jsonOutput {
		_, err := report.NewJSONWriter(out, report.WithPrettyPrint()).WriteValue(map[string]any{
			"domain": domain,
			"audits": history,
		})
		return err
	}

	if len(history) == 0 {
		fmt.Fprintf(out, "No audit history found for %s\n", domain)
		fmt.Fprintln(out, "\nUse 'seoaudit audit' to audit this site.")
		return nil
	}

	if _, err := report.NewTableWriter(out).WriteHistory(domain, history); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nUse 'seoaudit compare <domain>' to compare the latest two audits.")
	fmt.Fprintln(out, "Use 'seoaudit history --pages <id>' to see the pages of an audit.")

	return nil
}

// listAuditPages lists the pages crawled by one audit.
func listAuditPages(ctx context.Context, db *database.AuditDB, out io.Writer, auditID string, jsonOutput bool) error {
	result, err := db.AuditByID(ctx, auditID)
	if err != nil {
		return fmt.Errorf("failed to get audit %s: %w", auditID, err)
	}

	pages, err := db.AuditPages(ctx, auditID)
	if err != nil {
		return fmt.Errorf("failed to get pages of audit %s: %w", auditID, err)
	}

	if jsonOutput {
		_, err := report.NewJSONWriter(out, report.WithPrettyPrint()).WriteValue(map[string]any{
			"id":     auditID,
			"domain": result.Domain,
			"pages":  pages,
		})
		return err
	}

	if len(pages) == 0 {
		fmt.Fprintf(out, "No page records stored for audit %s\n", auditID)
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(fmt.Sprintf("Pages of %s (%s)", result.Domain, result.StartedAt.Format("2006-01-02 15:04")))
	t.AppendHeader(table.Row{"URL", "Status", "Time", "Title", "Issues"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMax: 60},
		{Number: 4, WidthMax: 40},
	})

	for _, p := range pages {
		status := "-"
		if p.StatusCode > 0 {
			status = strconv.Itoa(p.StatusCode)
		}
		t.AppendRow(table.Row{p.URL, status, fmt.Sprintf("%dms", p.ElapsedMS), p.Title, p.IssueCount})
	}
	t.AppendFooter(table.Row{"", "", "", "Pages", len(pages)})
	t.Render()

	return nil
}
