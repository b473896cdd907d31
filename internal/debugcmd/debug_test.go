package debugcmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/lehigh-university-libraries/pdcheck/internal/copyright"
	"github.com/lehigh-university-libraries/pdcheck/internal/corpus"
)

type fakeMatcher struct {
	report *copyright.MatchReport
}

func (f fakeMatcher) FindBestRegistrationMatch(context.Context, string, string, *int) (*copyright.MatchReport, error) {
	return f.report, nil
}

type fakeRenewals bool

func (f fakeRenewals) Renewed(context.Context, string, int) (bool, error) {
	return bool(f), nil
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func TestExecuteMatch(t *testing.T) {
	report := &copyright.MatchReport{
		Accepted:           true,
		ConfidenceScore:    10000,
		MatchedDisplayText: "MILNE, A. A. Now we are six",
		MatchedYear:        intPtr(1927),
		RegistrationNumber: strPtr("A1010229"),
		Window:             "1925-1934",
	}

	t.Run("text", func(t *testing.T) {
		var out bytes.Buffer
		if err := executeMatch(context.Background(), &out, fakeMatcher{report}, "A.A. Milne", "Now We Are Six", intPtr(1927), false); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		for _, want := range []string{"1925-1934", "MILNE, A. A. Now we are six", "Registration number: A1010229", "Registration year:   1927"} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("Expected %q in output:\n%s", want, out.String())
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		var out bytes.Buffer
		if err := executeMatch(context.Background(), &out, fakeMatcher{report}, "A.A. Milne", "Now We Are Six", intPtr(1927), true); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !strings.Contains(out.String(), `"registration_number": "A1010229"`) {
			t.Errorf("Expected JSON report, got:\n%s", out.String())
		}
	})

	t.Run("rejected", func(t *testing.T) {
		var out bytes.Buffer
		rejected := &copyright.MatchReport{ConfidenceScore: 4200, Window: "1925-1934"}
		if err := executeMatch(context.Background(), &out, fakeMatcher{rejected}, "x", "y", intPtr(1927), false); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if strings.Contains(out.String(), "Registration number") {
			t.Errorf("Expected no registration details for a rejected match:\n%s", out.String())
		}
		if !strings.Contains(out.String(), "Best match:          none") {
			t.Errorf("Expected empty best match to print none:\n%s", out.String())
		}
	})
}

func TestExecuteRenewal(t *testing.T) {
	fsys := fstest.MapFS{
		"1953-from-db.tsv": {Data: []byte("x\n")},
		"1955-from-db.tsv": {Data: []byte("y\n")},
		"1990-from-db.tsv": {Data: []byte("z\n")},
	}
	var out bytes.Buffer
	if err := executeRenewal(context.Background(), &out, fakeRenewals(true), fsys, "A1010229", 1927); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "1952-1956 (2 files)") || !strings.Contains(out.String(), "Renewed:    true") {
		t.Errorf("Unexpected output:\n%s", out.String())
	}
}

func TestExecuteWindow(t *testing.T) {
	fsys := fstest.MapFS{
		"1926/b.xml": {Data: []byte("<a/>")},
		"1926/a.xml": {Data: []byte("<a/>")},
		"1940/a.xml": {Data: []byte("<a/>")},
	}

	var out bytes.Buffer
	if err := executeWindow(&out, fsys, corpus.Registration, intPtr(1927)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := "Window: 1925-1934\nFiles:  2\n  1926/a.xml\n  1926/b.xml\n"
	if out.String() != want {
		t.Errorf("Expected:\n%s\nGot:\n%s", want, out.String())
	}

	if err := executeWindow(&bytes.Buffer{}, fsys, corpus.Domain("index"), nil); err == nil {
		t.Errorf("Expected error for unknown domain")
	}
	if err := executeWindow(&bytes.Buffer{}, fsys, corpus.Renewal, nil); err == nil {
		t.Errorf("Expected renewal window to require a year")
	}
}

func TestParseOptionalYear(t *testing.T) {
	if y, err := parseOptionalYear(""); err != nil || y != nil {
		t.Errorf("Expected blank to mean no year, got %v, %v", y, err)
	}
	if y, err := parseOptionalYear("1927"); err != nil || y == nil || *y != 1927 {
		t.Errorf("Expected 1927, got %v, %v", y, err)
	}
	if _, err := parseOptionalYear("soon"); err == nil {
		t.Errorf("Expected error for non-numeric year")
	}
}
