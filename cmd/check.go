package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/pdcheck/internal/app"
	"github.com/lehigh-university-libraries/pdcheck/internal/books"
	"github.com/lehigh-university-libraries/pdcheck/internal/copyright"
	"github.com/lehigh-university-libraries/pdcheck/internal/textnorm"
)

type checkOptions struct {
	author  string
	title   string
	year    string
	yearSet bool
	yes     bool
}

func newCheckCmd() *cobra.Command {
	var opts checkOptions

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check the status of a single book",
		Long: `Check the public domain status of one book.

Anything not given as a flag is prompted for. Leave the year blank when it is
unknown; pdcheck then has to search every registration year and asks first.`,
		Example: `  # Prompt for everything
  pdcheck check

  # No prompts
  pdcheck check --author "A.A. Milne" --title "Now We Are Six" --year 1927`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.yearSet = cmd.Flags().Changed("year")

			a, err := app.Load(cmd)
			if err != nil {
				return err
			}
			return runCheck(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), a.Engine, opts)
		},
	}

	cmd.Flags().StringVar(&opts.author, "author", "", "Author name")
	cmd.Flags().StringVar(&opts.title, "title", "", "Book title")
	cmd.Flags().StringVar(&opts.year, "year", "", "Publication year (blank if unknown)")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Scan every registration year without asking when no year is given")

	return cmd
}

func runCheck(ctx context.Context, in io.Reader, out io.Writer, engine *copyright.Engine, opts checkOptions) error {
	reader := bufio.NewReader(in)

	author := opts.author
	if author == "" {
		author = prompt(reader, out, "Author: ")
	}
	title := opts.title
	if title == "" {
		title = prompt(reader, out, "Title: ")
	}
	yearText := opts.year
	if !opts.yearSet && yearText == "" {
		yearText = prompt(reader, out, "Year (blank if unknown): ")
	}
	year, err := books.ParseYear(yearText)
	if err != nil {
		return err
	}

	if year == nil && hasText(author) && hasText(title) && !engine.AllowsFullScan() {
		if !opts.yes && !confirm(reader, out, "No year given. Search every registration year? This can take a long time. [y/N]: ") {
			return fmt.Errorf("search cancelled: %w", copyright.ErrFullScanNotAllowed)
		}
		engine = engine.WithFullScan()
	}

	d, err := engine.Determine(ctx, copyright.Query{Author: author, Title: title, Year: year})
	if err != nil {
		return err
	}

	if m := d.Match; m != nil {
		fmt.Fprintf(out, "Best overall match: %s (score %d)\n", orNone(m.MatchedDisplayText), m.ConfidenceScore)
		fmt.Fprintf(out, "Registration year: %s\n", optionalYear(m.MatchedYear))
		number := "none"
		if m.RegistrationNumber != nil {
			number = *m.RegistrationNumber
		}
		fmt.Fprintf(out, "Registration number: %s\n", number)
	}
	fmt.Fprintf(out, "Status: %s\n", d.Status)
	return nil
}

func prompt(reader *bufio.Reader, out io.Writer, label string) string {
	fmt.Fprint(out, label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func confirm(reader *bufio.Reader, out io.Writer, label string) bool {
	answer := strings.ToLower(prompt(reader, out, label))
	return answer == "y" || answer == "yes"
}

func hasText(s string) bool {
	_, ok := textnorm.Normalize(s)
	return ok
}

func optionalYear(y *int) string {
	if y == nil {
		return "none"
	}
	return strconv.Itoa(*y)
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
