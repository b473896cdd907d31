// Package debugcmd exposes the matcher, the renewal lookup and the window
// selector on their own.
package debugcmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/pdcheck/internal/app"
	"github.com/lehigh-university-libraries/pdcheck/internal/copyright"
	"github.com/lehigh-university-libraries/pdcheck/internal/corpus"
)

// Matcher finds the best registration entry.
type Matcher interface {
	FindBestRegistrationMatch(ctx context.Context, author, title string, yearGuess *int) (*copyright.MatchReport, error)
}

// Renewals looks up renewals.
type Renewals interface {
	Renewed(ctx context.Context, regNum string, regYear int) (bool, error)
}

// NewMatchCmd creates the debug match command
func NewMatchCmd() *cobra.Command {
	var author, title, year string
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "match",
		Short:   "Show the best registration match for an author and title",
		Example: `  pdcheck debug match --author "A.A. Milne" --title "Now We Are Six" --year 1927`,
		RunE: func(cmd *cobra.Command, args []string) error {
			y, err := parseOptionalYear(year)
			if err != nil {
				return err
			}
			a, err := app.Load(cmd)
			if err != nil {
				return err
			}
			return executeMatch(cmd.Context(), cmd.OutOrStdout(), a.Engine, author, title, y, asJSON)
		},
	}

	cmd.Flags().StringVar(&author, "author", "", "Author to search for")
	cmd.Flags().StringVar(&title, "title", "", "Title to search for")
	cmd.Flags().StringVar(&year, "year", "", "Publication year guess (blank searches every year)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	_ = cmd.MarkFlagRequired("author")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

// NewRenewalCmd creates the debug renewal command
func NewRenewalCmd() *cobra.Command {
	var regNum string
	var year int

	cmd := &cobra.Command{
		Use:     "renewal",
		Short:   "Check whether a registration number was renewed",
		Example: `  pdcheck debug renewal --regnum A1010229 --year 1927`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.Load(cmd)
			if err != nil {
				return err
			}
			return executeRenewal(cmd.Context(), cmd.OutOrStdout(), a.Engine, a.Renewals, regNum, year)
		},
	}

	cmd.Flags().StringVar(&regNum, "regnum", "", "Registration number, e.g. A1010229")
	cmd.Flags().IntVar(&year, "year", 0, "Registration year")
	_ = cmd.MarkFlagRequired("regnum")
	_ = cmd.MarkFlagRequired("year")

	return cmd
}

// NewWindowCmd creates the debug window command
func NewWindowCmd() *cobra.Command {
	var domain, year string

	cmd := &cobra.Command{
		Use:   "window",
		Short: "List the corpus files a query would scan",
		Example: `  pdcheck debug window --domain registration --year 1927
  pdcheck debug window --domain renewal --year 1927`,
		RunE: func(cmd *cobra.Command, args []string) error {
			y, err := parseOptionalYear(year)
			if err != nil {
				return err
			}
			a, err := app.Load(cmd)
			if err != nil {
				return err
			}
			fsys := a.Registrations
			if corpus.Domain(domain) == corpus.Renewal {
				fsys = a.Renewals
			}
			return executeWindow(cmd.OutOrStdout(), fsys, corpus.Domain(domain), y)
		},
	}

	cmd.Flags().StringVar(&domain, "domain", string(corpus.Registration), "registration or renewal")
	cmd.Flags().StringVar(&year, "year", "", "Publication year (registration) or registration year (renewal)")

	return cmd
}

func executeMatch(ctx context.Context, w io.Writer, m Matcher, author, title string, year *int, asJSON bool) error {
	report, err := m.FindBestRegistrationMatch(ctx, author, title, year)
	if err != nil {
		return err
	}

	if asJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	fmt.Fprintf(w, "Window:              %s\n", report.Window)
	fmt.Fprintf(w, "Containers scanned:  %d\n", report.Stats.Containers)
	fmt.Fprintf(w, "Entries scored:      %d (skipped %d)\n", report.Stats.Scored, report.Stats.SkippedEntries)
	fmt.Fprintf(w, "Best match:          %s\n", orNone(report.MatchedDisplayText))
	fmt.Fprintf(w, "Container:           %s\n", orNone(report.Container))
	fmt.Fprintf(w, "Author score:        %d\n", report.AuthorScore)
	fmt.Fprintf(w, "Title score:         %d\n", report.TitleScore)
	fmt.Fprintf(w, "Confidence score:    %d\n", report.ConfidenceScore)
	fmt.Fprintf(w, "Accepted:            %t\n", report.Accepted)
	if report.Accepted {
		fmt.Fprintf(w, "Registration year:   %s\n", yearText(report.MatchedYear))
		fmt.Fprintf(w, "Registration number: %s\n", *report.RegistrationNumber)
	}
	return nil
}

func executeRenewal(ctx context.Context, w io.Writer, r Renewals, fsys fs.FS, regNum string, year int) error {
	window, containers, err := corpus.Select(fsys, corpus.Renewal, &year)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Window:     %s (%d files)\n", window, len(containers))

	renewed, err := r.Renewed(ctx, regNum, year)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Renewed:    %t\n", renewed)
	return nil
}

func executeWindow(w io.Writer, fsys fs.FS, domain corpus.Domain, year *int) error {
	window, containers, err := corpus.Select(fsys, domain, year)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Window: %s\n", window)
	fmt.Fprintf(w, "Files:  %d\n", len(containers))
	for _, c := range containers {
		fmt.Fprintf(w, "  %s\n", c)
	}
	return nil
}

func parseOptionalYear(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("invalid year %q", s)
	}
	return &y, nil
}

func yearText(y *int) string {
	if y == nil {
		return "none (no date on record)"
	}
	return strconv.Itoa(*y)
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
