// Package renewal searches the renewal corpus for a registration number.
//
// The search is a literal substring match on each line: a number that appears
// inside a longer token still counts as renewed. This can produce false
// positives (A1234 inside A12345) and is kept as-is to stay comparable with
// earlier runs.
package renewal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/pdcheck/internal/corpus"
	"golang.org/x/text/encoding/htmlindex"
)

// maxLineSize bounds a single renewal record line.
const maxLineSize = 1024 * 1024

// Options configure a Finder.
type Options struct {
	// Encoding is a WHATWG label for containers not stored as UTF-8
	// (e.g. "windows-1252"). Empty means UTF-8.
	Encoding string
	Logger   *slog.Logger
	Progress corpus.ProgressFunc
}

// Finder looks up renewals in a renewal corpus.
type Finder struct {
	fsys     fs.FS
	encoding string
	logger   *slog.Logger
	progress corpus.ProgressFunc
}

// NewFinder creates a Finder over the renewal corpus rooted at fsys.
func NewFinder(fsys fs.FS, opts Options) *Finder {
	f := &Finder{
		fsys:     fsys,
		encoding: opts.Encoding,
		logger:   opts.Logger,
		progress: opts.Progress,
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// Renewed reports whether regNum appears in any renewal container of the
// window for regYear. It stops at the first hit.
func (f *Finder) Renewed(ctx context.Context, regNum string, regYear int) (bool, error) {
	regNum = strings.TrimSpace(regNum)
	if regNum == "" {
		return false, fmt.Errorf("registration number is required")
	}

	window, containers, err := corpus.Select(f.fsys, corpus.Renewal, &regYear)
	if err != nil {
		return false, err
	}
	f.logger.Debug("renewal window selected",
		"registration_number", regNum,
		"window", window.String(),
		"containers", len(containers))

	for i, container := range containers {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		found, err := f.searchContainer(container, regNum)
		if err != nil {
			return false, err
		}
		if f.progress != nil {
			f.progress(corpus.Progress{
				Domain:    corpus.Renewal,
				Container: container,
				Done:      i + 1,
				Total:     len(containers),
			})
		}
		if found {
			f.logger.Debug("renewal record found", "registration_number", regNum, "container", container)
			return true, nil
		}
	}
	return false, nil
}

func (f *Finder) searchContainer(path, regNum string) (bool, error) {
	file, err := f.fsys.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to open renewal container %s: %w", path, err)
	}
	defer file.Close()

	reader, err := f.decode(file)
	if err != nil {
		return false, err
	}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		if strings.Contains(scanner.Text(), regNum) {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("failed to read renewal container %s: %w", path, err)
	}
	return false, nil
}

func (f *Finder) decode(r io.Reader) (io.Reader, error) {
	if isUTF8(f.encoding) {
		return r, nil
	}
	enc, err := htmlindex.Get(f.encoding)
	if err != nil {
		return nil, fmt.Errorf("unsupported renewal encoding %q: %w", f.encoding, err)
	}
	return enc.NewDecoder().Reader(r), nil
}

// ValidateEncoding reports whether label names a supported encoding.
func ValidateEncoding(label string) error {
	if isUTF8(label) {
		return nil
	}
	if _, err := htmlindex.Get(label); err != nil {
		return fmt.Errorf("unsupported encoding %q: %w", label, err)
	}
	return nil
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}
