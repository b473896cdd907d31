package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/lehigh-university-libraries/pdcheck/internal/copyright"
)

const milneEntries = `<copyrightEntries>
  <copyrightEntry id="e1" regnum="A1010229">
    <author><authorName>MILNE, A. A.</authorName></author>
    <title>Now we are six</title>
    <regDate date="1927-10-14"/>
  </copyrightEntry>
</copyrightEntries>
`

func testEngine(t *testing.T) *copyright.Engine {
	t.Helper()
	e, err := copyright.New(copyright.Config{
		Registrations: fstest.MapFS{"1927/0001.xml": {Data: []byte(milneEntries)}},
		Renewals:      fstest.MapFS{"1955-from-db.tsv": {Data: []byte("R145102\tA1010229\n")}},
		Now:           func() time.Time { return time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC) },
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return e
}

func TestRunCheckPrompts(t *testing.T) {
	in := strings.NewReader("A.A. Milne\nNow We Are Six\n1927\n")
	var out bytes.Buffer

	if err := runCheck(context.Background(), in, &out, testEngine(t), checkOptions{}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, want := range []string{
		"Author: ",
		"Year (blank if unknown): ",
		"Best overall match: MILNE, A. A. Now we are six (score 10000)",
		"Registration year: 1927",
		"Registration number: A1010229",
		"Status: copyrighted (renewed)",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Expected %q in output:\n%s", want, out.String())
		}
	}
}

func TestRunCheckFlags(t *testing.T) {
	var out bytes.Buffer
	opts := checkOptions{author: "A.A. Milne", title: "Now We Are Six", year: "1927", yearSet: true}
	if err := runCheck(context.Background(), strings.NewReader(""), &out, testEngine(t), opts); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if strings.Contains(out.String(), "Author: ") {
		t.Errorf("Expected no prompts when flags are given:\n%s", out.String())
	}
	if !strings.HasSuffix(out.String(), "Status: copyrighted (renewed)\n") {
		t.Errorf("Unexpected output:\n%s", out.String())
	}
}

func TestRunCheckFullScanConfirmation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		yes     bool
		wantErr bool
	}{
		{"declined", "n\n", false, true},
		{"confirmed", "y\n", false, false},
		{"pre-confirmed", "", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			opts := checkOptions{author: "A.A. Milne", title: "Now We Are Six", yearSet: true, yes: tt.yes}
			err := runCheck(context.Background(), strings.NewReader(tt.input), &out, testEngine(t), opts)
			if tt.wantErr {
				if !errors.Is(err, copyright.ErrFullScanNotAllowed) {
					t.Errorf("Expected ErrFullScanNotAllowed, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !strings.Contains(out.String(), "Status: copyrighted (renewed)") {
				t.Errorf("Expected full scan to find the renewed registration:\n%s", out.String())
			}
		})
	}
}

func TestRunCheckNoInput(t *testing.T) {
	var out bytes.Buffer
	if err := runCheck(context.Background(), strings.NewReader("\n\n\n"), &out, testEngine(t), checkOptions{}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Status: no input") {
		t.Errorf("Expected no input status:\n%s", out.String())
	}
	if strings.Contains(out.String(), "Search every registration year") {
		t.Errorf("Expected no full scan prompt for empty input")
	}
}

func TestRunCheckBadYear(t *testing.T) {
	opts := checkOptions{author: "a", title: "b", year: "nineteen", yearSet: true}
	if err := runCheck(context.Background(), strings.NewReader(""), &bytes.Buffer{}, testEngine(t), opts); err == nil {
		t.Errorf("Expected error for invalid year")
	}
}
