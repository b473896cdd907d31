// Package registration finds the registration entry that best matches a
// queried author and title.
//
// Every entry in the search window is scored; the scan never stops early,
// because a better entry may appear later. The running best is kept by folding
// candidates through Best.Consider, which only replaces the current best on a
// strictly higher combined score, so the first entry seen wins ties.
package registration

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/lehigh-university-libraries/pdcheck/internal/corpus"
	"github.com/lehigh-university-libraries/pdcheck/internal/fuzzy"
	"github.com/lehigh-university-libraries/pdcheck/internal/textnorm"
)

// AcceptThreshold is the lowest combined score treated as a match. It was
// tuned by hand against a few hundred books and is roughly a 95% match on
// both author and title.
const AcceptThreshold = 9000

// MaxCombinedScore is a perfect author score times a perfect title score.
const MaxCombinedScore = 100 * 100

// ErrUnparsableContainer marks a registration container that is not valid XML.
// Losing a whole container silently would hide a year of candidates, so the
// scan aborts instead.
var ErrUnparsableContainer = errors.New("unparsable registration container")

// Query is a normalized author and title with an optional publication year.
type Query struct {
	Author string
	Title  string
	Year   *int
}

// Candidate is one scored entry.
type Candidate struct {
	AuthorScore   int
	TitleScore    int
	CombinedScore int
	MatchedAuthor string
	MatchedTitle  string
	Container     string
	Entry         Entry
}

// MatchedText is the best-matching author name followed by the entry title.
func (c Candidate) MatchedText() string {
	return c.MatchedAuthor + " " + c.MatchedTitle
}

// Best is the running best candidate of a scan. The zero value holds nothing.
type Best struct {
	candidate *Candidate
}

// Consider returns the better of b and c. Ties keep b.
func (b Best) Consider(c Candidate) Best {
	if c.CombinedScore > b.Score() {
		return Best{candidate: &c}
	}
	return b
}

// Score is the combined score of the current best, or 0.
func (b Best) Score() int {
	if b.candidate == nil {
		return 0
	}
	return b.candidate.CombinedScore
}

// Candidate returns the current best, if any.
func (b Best) Candidate() (Candidate, bool) {
	if b.candidate == nil {
		return Candidate{}, false
	}
	return *b.candidate, true
}

// Stats counts what a scan looked at.
type Stats struct {
	Containers     int `json:"containers" yaml:"containers"`
	Entries        int `json:"entries" yaml:"entries"`
	Scored         int `json:"scored" yaml:"scored"`
	SkippedEntries int `json:"skipped_entries" yaml:"skipped_entries"`
}

// Result is the outcome of a full window scan.
type Result struct {
	Window corpus.Window
	Best   *Candidate
	Stats  Stats
}

// Accepted reports whether the best candidate clears AcceptThreshold.
func (r *Result) Accepted() bool {
	return r.Best != nil && r.Best.CombinedScore >= AcceptThreshold
}

// Score is the best combined score seen, accepted or not.
func (r *Result) Score() int {
	if r.Best == nil {
		return 0
	}
	return r.Best.CombinedScore
}

// Options configure a Matcher.
type Options struct {
	Scorer   fuzzy.Scorer
	Logger   *slog.Logger
	Progress corpus.ProgressFunc
}

// Matcher scans a registration corpus.
type Matcher struct {
	fsys     fs.FS
	scorer   fuzzy.Scorer
	logger   *slog.Logger
	progress corpus.ProgressFunc
}

// NewMatcher creates a matcher over the registration corpus rooted at fsys.
func NewMatcher(fsys fs.FS, opts Options) *Matcher {
	m := &Matcher{
		fsys:     fsys,
		scorer:   opts.Scorer,
		logger:   opts.Logger,
		progress: opts.Progress,
	}
	if m.scorer == nil {
		m.scorer = fuzzy.TokenSet
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

// Match scans every container in the query's window and returns the best
// candidate found. Cancellation is checked between containers; a cancelled
// scan returns the context error and no result.
func (m *Matcher) Match(ctx context.Context, q Query) (*Result, error) {
	window, containers, err := corpus.Select(m.fsys, corpus.Registration, q.Year)
	if err != nil {
		return nil, err
	}
	m.logger.Debug("registration window selected",
		"window", window.String(),
		"containers", len(containers))

	var stats Stats
	best := Best{}
	for i, container := range containers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		best, err = m.scanContainer(container, q, best, &stats)
		if err != nil {
			return nil, err
		}
		stats.Containers++
		if m.progress != nil {
			m.progress(corpus.Progress{
				Domain:    corpus.Registration,
				Container: container,
				Done:      i + 1,
				Total:     len(containers),
			})
		}
	}

	result := &Result{Window: window, Stats: stats}
	if c, ok := best.Candidate(); ok {
		result.Best = &c
	}
	return result, nil
}

func (m *Matcher) scanContainer(path string, q Query, best Best, stats *Stats) (Best, error) {
	f, err := m.fsys.Open(path)
	if err != nil {
		return best, fmt.Errorf("failed to open registration container %s: %w", path, err)
	}
	defer f.Close()

	before := stats.Scored
	for entry, err := range Entries(f) {
		if err != nil {
			return best, fmt.Errorf("%w: %s: %v", ErrUnparsableContainer, path, err)
		}
		stats.Entries++
		c, ok := ScoreEntry(m.scorer, entry, q)
		if !ok {
			stats.SkippedEntries++
			continue
		}
		c.Container = path
		stats.Scored++
		best = best.Consider(c)
	}
	if stats.Scored == before {
		m.logger.Debug("container contributed no candidates", "container", path)
	}
	return best, nil
}

// ScoreEntry scores entry against q. It reports false for entries that cannot
// be used: no registration number, no title text, or no author text.
func ScoreEntry(scorer fuzzy.Scorer, entry Entry, q Query) (Candidate, bool) {
	if entry.RegistrationNumber == "" || entry.Title == nil {
		return Candidate{}, false
	}
	title, ok := textnorm.Normalize(*entry.Title)
	if !ok {
		return Candidate{}, false
	}

	c := Candidate{Entry: entry, MatchedTitle: title}
	usableAuthors := 0
	for _, raw := range entry.Authors {
		author, ok := textnorm.Normalize(raw)
		if !ok {
			continue
		}
		usableAuthors++
		if score := scorer.Score(author, q.Author); score > c.AuthorScore {
			c.AuthorScore = score
			c.MatchedAuthor = author
		}
	}
	if usableAuthors == 0 {
		return Candidate{}, false
	}

	c.TitleScore = scorer.Score(title, q.Title)
	c.CombinedScore = c.AuthorScore * c.TitleScore
	return c, true
}
