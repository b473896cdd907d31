// Package corpus selects which record containers a query has to scan.
//
// The registration corpus holds one directory per year of XML containers
// (<year>/*.xml); the renewal corpus is a flat directory of TSV containers whose
// names start with the year they cover (<year>*.tsv). Window bounds depend
// only on the domain and the anchor year, never on what is on disk.
package corpus

import (
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// Domain names a corpus.
type Domain string

const (
	Registration Domain = "registration"
	Renewal      Domain = "renewal"
)

// Registration filings cluster at or after the nominal publication year with
// a long tail; filings before it are rare.
const (
	RegistrationLowOffset  = -2
	RegistrationHighOffset = 7
)

// Renewal was possible 28 years after registration. Early filings were
// common, late ones were not.
const (
	RenewalTermYears  = 28
	RenewalLowOffset  = -3
	RenewalHighOffset = 1
)

// Window is an inclusive range of corpus years. An unbounded window covers the
// whole corpus.
type Window struct {
	Low       int
	High      int
	Unbounded bool
}

// RegistrationWindow returns [anchor-2, anchor+7], or the unbounded window
// when anchor is nil.
func RegistrationWindow(anchor *int) Window {
	if anchor == nil {
		return Window{Unbounded: true}
	}
	return Window{
		Low:  *anchor + RegistrationLowOffset,
		High: *anchor + RegistrationHighOffset,
	}
}

// RenewalWindow returns [regYear+25, regYear+29].
func RenewalWindow(regYear int) Window {
	base := regYear + RenewalTermYears
	return Window{
		Low:  base + RenewalLowOffset,
		High: base + RenewalHighOffset,
	}
}

// Years lists the window's years in ascending order. Unbounded windows have none.
func (w Window) Years() []int {
	if w.Unbounded || w.High < w.Low {
		return nil
	}
	years := make([]int, 0, w.High-w.Low+1)
	for y := w.Low; y <= w.High; y++ {
		years = append(years, y)
	}
	return years
}

// Contains reports whether year falls inside the window.
func (w Window) Contains(year int) bool {
	return w.Unbounded || (year >= w.Low && year <= w.High)
}

func (w Window) String() string {
	if w.Unbounded {
		return "all years"
	}
	return fmt.Sprintf("%d-%d", w.Low, w.High)
}

// Select resolves the window for domain and anchor against fsys. The renewal
// domain requires an anchor (the registration year).
func Select(fsys fs.FS, domain Domain, anchor *int) (Window, []string, error) {
	switch domain {
	case Registration:
		w := RegistrationWindow(anchor)
		containers, err := RegistrationContainers(fsys, w)
		return w, containers, err
	case Renewal:
		if anchor == nil {
			return Window{}, nil, fmt.Errorf("renewal window requires a registration year")
		}
		w := RenewalWindow(*anchor)
		containers, err := RenewalContainers(fsys, w)
		return w, containers, err
	default:
		return Window{}, nil, fmt.Errorf("unknown corpus domain: %q", domain)
	}
}

// RegistrationContainers lists the XML containers inside w. Years are visited in
// ascending order and containers within a year in lexical order. An unbounded
// window walks the whole tree, which is far slower than a windowed scan.
func RegistrationContainers(fsys fs.FS, w Window) ([]string, error) {
	if w.Unbounded {
		return walkMatching(fsys, ".xml")
	}
	var containers []string
	for _, year := range w.Years() {
		matches, err := fs.Glob(fsys, fmt.Sprintf("%d/*.xml", year))
		if err != nil {
			return nil, fmt.Errorf("failed to list registration containers for %d: %w", year, err)
		}
		containers = append(containers, regularFiles(fsys, matches)...)
	}
	return containers, nil
}

// RenewalContainers lists the TSV containers inside w, year by year.
func RenewalContainers(fsys fs.FS, w Window) ([]string, error) {
	if w.Unbounded {
		return walkMatching(fsys, ".tsv")
	}
	var containers []string
	for _, year := range w.Years() {
		matches, err := fs.Glob(fsys, fmt.Sprintf("%d*.tsv", year))
		if err != nil {
			return nil, fmt.Errorf("failed to list renewal containers for %d: %w", year, err)
		}
		containers = append(containers, regularFiles(fsys, matches)...)
	}
	return containers, nil
}

func walkMatching(fsys fs.FS, ext string) ([]string, error) {
	var containers []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path.Base(p), ext) {
			containers = append(containers, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk corpus: %w", err)
	}
	return containers, nil
}

// regularFiles drops directories that happen to match a container pattern.
func regularFiles(fsys fs.FS, matches []string) []string {
	out := matches[:0]
	for _, m := range matches {
		info, err := fs.Stat(fsys, m)
		if err != nil || info.IsDir() {
			continue
		}
		out = append(out, m)
	}
	return out
}
