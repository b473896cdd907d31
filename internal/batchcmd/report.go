package batchcmd

import (
	"fmt"
	"io"

	"github.com/lehigh-university-libraries/pdcheck/internal/results"
)

func executeReport(w io.Writer, resultsPath, format string) error {
	batch, err := results.Load(resultsPath)
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}

	switch f := results.Format(format); f {
	case results.FormatText, results.FormatJSON, results.FormatCSV, results.FormatYAML:
		return results.Write(w, batch, f)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
