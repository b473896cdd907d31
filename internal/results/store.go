package results

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is an output format for batch results.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatText Format = "text"
)

// FormatFromPath picks a format from a file extension, defaulting to YAML.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".csv":
		return FormatCSV
	default:
		return FormatYAML
	}
}

// Save writes b to path in the format implied by its extension.
func Save(b *Batch, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create results file: %w", err)
	}
	defer file.Close()

	if err := Write(file, b, FormatFromPath(path)); err != nil {
		return err
	}
	return file.Close()
}

// Write encodes b to w.
func Write(w io.Writer, b *Batch, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(b); err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(b); err != nil {
			return fmt.Errorf("failed to encode results: %w", err)
		}
		return nil
	case FormatCSV:
		return WriteCSV(w, b.Results)
	case FormatText:
		return WriteText(w, b)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// Load reads a batch saved as YAML or JSON.
func Load(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open results file: %w", err)
	}

	var b Batch
	switch FormatFromPath(path) {
	case FormatJSON:
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("failed to decode results: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("failed to decode results: %w", err)
		}
	default:
		return nil, fmt.Errorf("cannot load results from %s; use a .yaml or .json file", path)
	}

	if b.Summary == nil {
		b.Summary = Summarize(b.Results)
	}
	return &b, nil
}

var csvHeader = []string{
	"id", "author", "title", "year", "status", "category", "expected_status", "agrees",
	"score", "registration_number", "registration_year", "renewed", "matched_text", "duration_ms", "error",
}

// WriteCSV writes one line per row.
func WriteCSV(w io.Writer, rows []Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range rows {
		agrees := ""
		if r.Agrees != nil {
			agrees = strconv.FormatBool(*r.Agrees)
		}
		renewed := ""
		if r.RenewalChecked {
			renewed = strconv.FormatBool(r.Renewed)
		}
		record := []string{
			r.ID,
			r.Author,
			r.Title,
			optionalInt(r.Year),
			string(r.Status),
			string(r.Category),
			r.ExpectedStatus,
			agrees,
			strconv.Itoa(r.Score),
			r.RegistrationNumber,
			optionalInt(r.RegistrationYear),
			renewed,
			r.MatchedText,
			strconv.FormatInt(r.DurationMS, 10),
			r.Error,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteText renders a human readable report.
func WriteText(w io.Writer, b *Batch) error {
	fmt.Fprintln(w, "========================================")
	fmt.Fprintln(w, "Public Domain Batch Report")
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Input:     %s\n", b.Config.Input)
	fmt.Fprintf(w, "Timestamp: %s\n", b.Config.Timestamp)
	fmt.Fprintln(w)

	summary := b.Summary
	if summary == nil {
		summary = Summarize(b.Results)
	}
	PrintSummary(w, summary)

	fmt.Fprintln(w, "\nDetailed Results:")
	fmt.Fprintln(w, "========================================")
	for i, r := range b.Results {
		fmt.Fprintf(w, "\n[%d] %s: %s by %s (%s)\n", i+1, r.ID, r.Title, r.Author, yearText(r.Year))
		if r.Error != "" {
			fmt.Fprintf(w, "  Error: %s\n", r.Error)
			continue
		}
		fmt.Fprintf(w, "  Status: %s\n", r.Status)
		if r.MatchedText != "" {
			fmt.Fprintf(w, "  Best match: %s (score %d)\n", truncate(r.MatchedText, 80), r.Score)
		}
		if r.RegistrationNumber != "" {
			fmt.Fprintf(w, "  Registration: %s, %s\n", r.RegistrationNumber, yearText(r.RegistrationYear))
		}
		if r.Agrees != nil && !*r.Agrees {
			fmt.Fprintf(w, "  Expected: %s\n", r.ExpectedStatus)
		}
	}
	return nil
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func yearText(v *int) string {
	if v == nil {
		return "no year"
	}
	return strconv.Itoa(*v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
