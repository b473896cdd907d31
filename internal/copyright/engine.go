// Package copyright determines the public domain status of a published work
// from the registration and renewal corpora.
package copyright

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"time"

	"github.com/lehigh-university-libraries/pdcheck/internal/corpus"
	"github.com/lehigh-university-libraries/pdcheck/internal/fuzzy"
	"github.com/lehigh-university-libraries/pdcheck/internal/registration"
	"github.com/lehigh-university-libraries/pdcheck/internal/renewal"
	"github.com/lehigh-university-libraries/pdcheck/internal/status"
	"github.com/lehigh-university-libraries/pdcheck/internal/textnorm"
)

// ErrFullScanNotAllowed is returned for a query without a year when the engine
// was not configured to scan the whole registration corpus.
var ErrFullScanNotAllowed = errors.New("no publication year given and full registration scan is not allowed")

// Config holds everything an Engine needs.
type Config struct {
	Registrations fs.FS
	Renewals      fs.FS
	// RenewalEncoding is the WHATWG label of the renewal containers; empty
	// means UTF-8.
	RenewalEncoding string
	Scorer          fuzzy.Scorer
	// Now supplies the current year for the public domain cutoff.
	Now           func() time.Time
	Logger        *slog.Logger
	Progress      corpus.ProgressFunc
	AllowFullScan bool
}

// Engine answers status queries. It holds no per-query state and is safe for
// concurrent use.
type Engine struct {
	cfg      Config
	matcher  *registration.Matcher
	renewals *renewal.Finder
	logger   *slog.Logger
}

// New validates cfg and builds an Engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Registrations == nil {
		return nil, fmt.Errorf("registration corpus is required")
	}
	if cfg.Renewals == nil {
		return nil, fmt.Errorf("renewal corpus is required")
	}
	if err := renewal.ValidateEncoding(cfg.RenewalEncoding); err != nil {
		return nil, err
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Engine{
		cfg: cfg,
		matcher: registration.NewMatcher(cfg.Registrations, registration.Options{
			Scorer:   cfg.Scorer,
			Logger:   cfg.Logger,
			Progress: cfg.Progress,
		}),
		renewals: renewal.NewFinder(cfg.Renewals, renewal.Options{
			Encoding: cfg.RenewalEncoding,
			Logger:   cfg.Logger,
			Progress: cfg.Progress,
		}),
		logger: cfg.Logger,
	}, nil
}

// WithFullScan returns a copy of e that may scan the whole registration
// corpus. The interactive check uses it once the user has confirmed.
func (e *Engine) WithFullScan() *Engine {
	cfg := e.cfg
	cfg.AllowFullScan = true
	clone := *e
	clone.cfg = cfg
	return &clone
}

// AllowsFullScan reports whether queries without a year are permitted.
func (e *Engine) AllowsFullScan() bool {
	return e.cfg.AllowFullScan
}

// Query is a raw author, title and optional publication year.
type Query struct {
	Author string `json:"author" yaml:"author"`
	Title  string `json:"title" yaml:"title"`
	Year   *int   `json:"year,omitempty" yaml:"year,omitempty"`
}

// MatchReport describes the best registration entry found for a query. The
// year and registration number are only set when the match was accepted; the
// score and text always describe the best entry seen.
type MatchReport struct {
	Accepted           bool               `json:"accepted" yaml:"accepted"`
	MatchedYear        *int               `json:"matched_year,omitempty" yaml:"matched_year,omitempty"`
	RegistrationNumber *string            `json:"registration_number,omitempty" yaml:"registration_number,omitempty"`
	ConfidenceScore    int                `json:"confidence_score" yaml:"confidence_score"`
	MatchedDisplayText string             `json:"matched_text,omitempty" yaml:"matched_text,omitempty"`
	AuthorScore        int                `json:"author_score" yaml:"author_score"`
	TitleScore         int                `json:"title_score" yaml:"title_score"`
	Container          string             `json:"container,omitempty" yaml:"container,omitempty"`
	Window             string             `json:"window" yaml:"window"`
	Stats              registration.Stats `json:"stats" yaml:"stats"`
}

// Determination is a status together with the evidence behind it.
type Determination struct {
	Query            Query           `json:"query" yaml:"query"`
	Status           status.Status   `json:"status" yaml:"status"`
	Category         status.Category `json:"category" yaml:"category"`
	PublicDomainYear int             `json:"public_domain_year" yaml:"public_domain_year"`
	Match            *MatchReport    `json:"match,omitempty" yaml:"match,omitempty"`
	RenewalChecked   bool            `json:"renewal_checked" yaml:"renewal_checked"`
	Renewed          bool            `json:"renewed" yaml:"renewed"`
}

// DetermineStatus returns only the status for author, title and year.
func (e *Engine) DetermineStatus(ctx context.Context, author, title string, year *int) (status.Status, error) {
	d, err := e.Determine(ctx, Query{Author: author, Title: title, Year: year})
	if err != nil {
		return "", err
	}
	return d.Status, nil
}

// Determine runs the full pipeline for q. Empty author or title text yields
// status.NoInput without touching either corpus.
func (e *Engine) Determine(ctx context.Context, q Query) (*Determination, error) {
	currentYear := e.cfg.Now().Year()
	d := &Determination{
		Query:            q,
		PublicDomainYear: status.PublicDomainYear(currentYear),
	}

	nq, ok := normalizeQuery(q)
	if !ok {
		d.Status = status.NoInput
		d.Category = d.Status.Category()
		return d, nil
	}
	d.Query = Query{Author: nq.Author, Title: nq.Title, Year: nq.Year}

	e.logger.Info("Searching records",
		"year", yearLabel(nq.Year),
		"title", nq.Title,
		"author", nq.Author)

	report, err := e.match(ctx, nq)
	if err != nil {
		return nil, err
	}
	d.Match = report

	e.logger.Info("Best match",
		"text", report.MatchedDisplayText,
		"score", report.ConfidenceScore,
		"accepted", report.Accepted,
		"registration_year", yearLabel(report.MatchedYear),
		"registration_number", valueOr(report.RegistrationNumber, ""))

	ev := status.Evidence{
		Matched:   report.Accepted,
		MatchYear: report.MatchedYear,
		QueryYear: nq.Year,
	}
	if report.RegistrationNumber != nil {
		ev.RegistrationNumber = *report.RegistrationNumber
	}

	decision, err := status.Decide(ctx, ev, currentYear, e.renewals)
	if err != nil {
		return nil, fmt.Errorf("renewal lookup failed: %w", err)
	}
	d.Status = decision.Status
	d.Category = decision.Status.Category()
	d.RenewalChecked = decision.RenewalChecked
	d.Renewed = decision.Renewed
	return d, nil
}

// FindBestRegistrationMatch exposes the registration search on its own.
// Empty author or title text returns an empty report without a scan.
func (e *Engine) FindBestRegistrationMatch(ctx context.Context, author, title string, yearGuess *int) (*MatchReport, error) {
	nq, ok := normalizeQuery(Query{Author: author, Title: title, Year: yearGuess})
	if !ok {
		return &MatchReport{Window: corpus.RegistrationWindow(yearGuess).String()}, nil
	}
	return e.match(ctx, nq)
}

// Renewed looks a registration number up in the renewal corpus directly.
func (e *Engine) Renewed(ctx context.Context, regNum string, regYear int) (bool, error) {
	return e.renewals.Renewed(ctx, regNum, regYear)
}

func (e *Engine) match(ctx context.Context, q registration.Query) (*MatchReport, error) {
	if q.Year == nil && !e.cfg.AllowFullScan {
		return nil, ErrFullScanNotAllowed
	}

	result, err := e.matcher.Match(ctx, q)
	if err != nil {
		return nil, err
	}

	report := &MatchReport{
		Accepted:        result.Accepted(),
		ConfidenceScore: result.Score(),
		Window:          result.Window.String(),
		Stats:           result.Stats,
	}
	if best := result.Best; best != nil {
		report.MatchedDisplayText = best.MatchedText()
		report.AuthorScore = best.AuthorScore
		report.TitleScore = best.TitleScore
		report.Container = best.Container
	}
	if report.Accepted {
		regNum := result.Best.Entry.RegistrationNumber
		report.RegistrationNumber = &regNum
		if year, ok := result.Best.Entry.Year(); ok {
			report.MatchedYear = &year
		}
	}
	return report, nil
}

func normalizeQuery(q Query) (registration.Query, bool) {
	author, ok := textnorm.Normalize(q.Author)
	if !ok {
		return registration.Query{}, false
	}
	title, ok := textnorm.Normalize(q.Title)
	if !ok {
		return registration.Query{}, false
	}
	return registration.Query{Author: author, Title: title, Year: q.Year}, true
}

func yearLabel(year *int) string {
	if year == nil {
		return "all years"
	}
	return strconv.Itoa(*year)
}

func valueOr[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
