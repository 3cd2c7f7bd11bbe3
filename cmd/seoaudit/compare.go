package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/seoaudit/internal/auditor"
	"github.com/nao1215/seoaudit/internal/database"
	"github.com/nao1215/seoaudit/internal/model"
	"github.com/nao1215/seoaudit/internal/report"
	"github.com/spf13/cobra"
)

// NewCompareCmd creates the compare command.
// This command compares audit results stored in the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [domain]",
		Short: "Compare audit results with earlier audits",
		Long: `Compare displays differences between two stored audits of a domain.

It shows:
- New issues (issue type and page) that appeared since the earlier audit
- Resolved issues that are no longer present
- Changes in the number of issues per severity

The comparison requires at least two audits of the domain in the database.
Use 'seoaudit audit' to run audits and 'seoaudit history' to list them.

Examples:
  # Compare the latest two audits
  seoaudit compare example.com

  # Compare the latest audit with a specific audit
  seoaudit compare --with 3f6c2a4e-0b1d-4c52-9a39-2d7e5f0c8b11 example.com

  # Compare the latest audit with the first audit since a date
  seoaudit compare --since 2026-01-01 example.com

  # Output the comparison as Markdown
  seoaudit compare --markdown example.com`,
		Args: cobra.ExactArgs(1),
		RunE: runCompareCmd,
	}

	cmd.Flags().StringP("with", "w", "",
		"Compare with the audit with this ID (see 'seoaudit history <domain>')")
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first audit on or after this date (format: YYYY-MM-DD)")
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// compareOptions selects the audits to compare and the output format.
type compareOptions struct {
	withID string
	since  string
	format report.ComparisonFormat
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	// Validate before opening the database to avoid creating it needlessly.
	domain, err := auditor.NormalizeDomain(args[0])
	if err != nil {
		return err
	}

	opts, err := compareOptionsFromFlags(cmd)
	if err != nil {
		return err
	}

	db, err := openHistoryDB()
	if err != nil {
		return err
	}
	defer db.Close()

	return runComparison(context.Background(), db, cmd.OutOrStdout(), domain, opts)
}

// compareOptionsFromFlags reads and validates the compare flags.
func compareOptionsFromFlags(cmd *cobra.Command) (compareOptions, error) {
	var opts compareOptions

	withID, err := cmd.Flags().GetString("with")
	if err != nil {
		return opts, err
	}
	since, err := cmd.Flags().GetString("since")
	if err != nil {
		return opts, err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return opts, err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return opts, err
	}

	if withID != "" && since != "" {
		return opts, errors.New("--with and --since cannot be used together")
	}
	if jsonOutput && markdownOutput {
		return opts, errors.New("--json and --markdown cannot be used together")
	}

	opts.withID = withID
	opts.since = since
	opts.format = report.ComparisonText
	switch {
	case jsonOutput:
		opts.format = report.ComparisonJSON
	case markdownOutput:
		opts.format = report.ComparisonMarkdown
	}
	return opts, nil
}

// runComparison compares the latest audit of domain with an earlier one.
func runComparison(ctx context.Context, db *database.AuditDB, out io.Writer, domain string, opts compareOptions) error {
	previous, current, err := selectAudits(ctx, db, domain, opts)
	if err != nil {
		return err
	}

	comparison := model.Compare(previous, current)
	_, err = report.NewComparisonWriter(out, opts.format).Write(comparison)
	return err
}

// selectAudits returns the previous and current audit to compare.
// The current audit is always the latest one.
func selectAudits(ctx context.Context, db *database.AuditDB, domain string, opts compareOptions) (*model.AuditResult, *model.AuditResult, error) {
	recent, err := db.RecentAudits(ctx, domain, 2)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get audits: %w", err)
	}
	if len(recent) == 0 {
		return nil, nil, fmt.Errorf("no audit history found for %s", domain)
	}
	current := recent[0]

	switch {
	case opts.withID != "":
		previous, err := db.AuditByID(ctx, opts.withID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get audit %s: %w", opts.withID, err)
		}
		if !strings.EqualFold(previous.Domain, current.Domain) {
			return nil, nil, fmt.Errorf("audit %s belongs to %s, not %s", opts.withID, previous.Domain, domain)
		}
		if previous.ID == current.ID {
			return nil, nil, fmt.Errorf("audit %s is the latest audit; choose an earlier one", opts.withID)
		}
		return previous, current, nil

	case opts.since != "":
		previous, err := firstAuditSince(ctx, db, domain, opts.since)
		if err != nil {
			return nil, nil, err
		}
		if previous.ID == current.ID {
			return nil, nil, fmt.Errorf("only one audit found since %s; at least 2 audits are required for comparison", opts.since)
		}
		return previous, current, nil

	default:
		if len(recent) < 2 {
			return nil, nil, fmt.Errorf("at least 2 audits are required for comparison (found %d)", len(recent))
		}
		return recent[1], current, nil
	}
}

// firstAuditSince returns the oldest audit of domain started on or after date.
func firstAuditSince(ctx context.Context, db *database.AuditDB, domain, date string) (*model.AuditResult, error) {
	since, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return nil, fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
	}

	history, err := db.AuditHistory(ctx, domain)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit history: %w", err)
	}

	// History is sorted newest first.
	for i := len(history) - 1; i >= 0; i-- {
		if !history[i].StartedAt.Before(since) {
			return db.AuditByID(ctx, history[i].ID)
		}
	}
	return nil, fmt.Errorf("no audits found since %s", date)
}
