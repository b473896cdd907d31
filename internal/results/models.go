// Package results holds batch status results and their summaries.
package results

import (
	"github.com/lehigh-university-libraries/pdcheck/internal/status"
)

// RunConfig records how a batch was produced.
type RunConfig struct {
	Input           string `json:"input" yaml:"input"`
	RegistrationDir string `json:"registration_dir" yaml:"registration_dir"`
	RenewalDir      string `json:"renewal_dir" yaml:"renewal_dir"`
	Concurrency     int    `json:"concurrency" yaml:"concurrency"`
	AllowFullScan   bool   `json:"allow_full_scan" yaml:"allow_full_scan"`
	Timestamp       string `json:"timestamp" yaml:"timestamp"`
}

// Row is the outcome for one book.
type Row struct {
	ID                 string          `json:"id" yaml:"id"`
	Author             string          `json:"author" yaml:"author"`
	Title              string          `json:"title" yaml:"title"`
	Year               *int            `json:"year,omitempty" yaml:"year,omitempty"`
	Status             status.Status   `json:"status,omitempty" yaml:"status,omitempty"`
	Category           status.Category `json:"category,omitempty" yaml:"category,omitempty"`
	ExpectedStatus     string          `json:"expected_status,omitempty" yaml:"expected_status,omitempty"`
	Agrees             *bool           `json:"agrees,omitempty" yaml:"agrees,omitempty"`
	Score              int             `json:"score" yaml:"score"`
	MatchedText        string          `json:"matched_text,omitempty" yaml:"matched_text,omitempty"`
	RegistrationNumber string          `json:"registration_number,omitempty" yaml:"registration_number,omitempty"`
	RegistrationYear   *int            `json:"registration_year,omitempty" yaml:"registration_year,omitempty"`
	RenewalChecked     bool            `json:"renewal_checked" yaml:"renewal_checked"`
	Renewed            bool            `json:"renewed" yaml:"renewed"`
	DurationMS         int64           `json:"duration_ms" yaml:"duration_ms"`
	Error              string          `json:"error,omitempty" yaml:"error,omitempty"`
}

// Batch is a complete batch run.
type Batch struct {
	Config  RunConfig `json:"config" yaml:"config"`
	Summary *Summary  `json:"summary" yaml:"summary"`
	Results []Row     `json:"results" yaml:"results"`
}
