package registration

import (
	"strings"
	"testing"
)

const sampleContainer = `<?xml version="1.0" encoding="UTF-8"?>
<copyrightEntries>
  <copyrightEntry id="e1" regnum="A1010229">
    <author><authorName>MILNE, A. A.</authorName></author>
    <author><authorName>SHEPARD, E. H.</authorName></author>
    <title>Now we are six</title>
    <regDate date="1927-10-14">Oct. 14, 1927</regDate>
  </copyrightEntry>
  <copyrightEntry id="e2">
    <author><authorName>GILBRETH, FRANK BUNKER.</authorName></author>
    <title>Cheaper by the dozen</title>
  </copyrightEntry>
  <copyrightEntry id="e3" regnum="A869349">
    <author><authorName></authorName>Emma Earlenbaugh Davis</author>
    <title>Untitled verses</title>
    <copyDate date="1925">1925</copyDate>
  </copyrightEntry>
  <section>
    <copyrightEntry id="nested" regnum="A1">
      <title>Not a direct child</title>
    </copyrightEntry>
  </section>
</copyrightEntries>
`

func collect(t *testing.T, doc string) ([]Entry, error) {
	t.Helper()
	var entries []Entry
	for e, err := range Entries(strings.NewReader(doc)) {
		if err != nil {
			return entries, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func TestEntries(t *testing.T) {
	entries, err := collect(t, sampleContainer)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 direct entries, got %d", len(entries))
	}

	first := entries[0]
	if first.ID != "e1" || first.RegistrationNumber != "A1010229" {
		t.Errorf("Expected e1/A1010229, got %s/%s", first.ID, first.RegistrationNumber)
	}
	if len(first.Authors) != 2 || first.Authors[0] != "MILNE, A. A." {
		t.Errorf("Expected two authors led by MILNE, got %v", first.Authors)
	}
	if first.Title == nil || *first.Title != "Now we are six" {
		t.Errorf("Expected title 'Now we are six', got %v", first.Title)
	}
	if year, ok := first.Year(); !ok || year != 1927 {
		t.Errorf("Expected year 1927, got %d (%v)", year, ok)
	}
	if first.RegistrationDate.Month != 10 || first.RegistrationDate.Day != 14 {
		t.Errorf("Expected Oct 14, got %+v", *first.RegistrationDate)
	}

	if entries[1].RegistrationNumber != "" {
		t.Errorf("Expected missing regnum, got %q", entries[1].RegistrationNumber)
	}
	if _, ok := entries[1].Year(); ok {
		t.Errorf("Expected no year for entry without dates")
	}

	third := entries[2]
	if len(third.Authors) != 1 || third.Authors[0] != "" {
		t.Errorf("Expected one empty author name, got %q", third.Authors)
	}
	if year, ok := third.Year(); !ok || year != 1925 {
		t.Errorf("Expected copy date fallback 1925, got %d (%v)", year, ok)
	}
}

func TestEntriesMalformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty document", ""},
		{"unclosed root", `<copyrightEntries><copyrightEntry regnum="A1"><title>x</title></copyrightEntry>`},
		{"broken entry", `<copyrightEntries><copyrightEntry regnum="A1"><title>x</copyrightEntry></copyrightEntries>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := collect(t, tt.doc); err == nil {
				t.Errorf("Expected an error for %s", tt.name)
			}
		})
	}
}

func TestEntriesStopsEarly(t *testing.T) {
	count := 0
	for _, err := range Entries(strings.NewReader(sampleContainer)) {
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		count++
		break
	}
	if count != 1 {
		t.Errorf("Expected iteration to stop after 1 entry, got %d", count)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in     string
		want   Date
		wantOK bool
	}{
		{"1927-10-14", Date{1927, 10, 14}, true},
		{"1927", Date{Year: 1927}, true},
		{" 1931-02 ", Date{Year: 1931, Month: 2}, true},
		{"", Date{}, false},
		{"Oct. 14, 1927", Date{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseDate(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseDate(%q): expected %+v/%v, got %+v/%v", tt.in, tt.want, tt.wantOK, got, ok)
		}
	}
}

func TestEntryYearIgnoresMalformedRegDate(t *testing.T) {
	doc := `<r><copyrightEntry regnum="A2"><title>t</title><regDate>no attribute</regDate><copyDate date="1930-01-01"/></copyrightEntry></r>`
	entries, err := collect(t, doc)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if year, ok := entries[0].Year(); !ok || year != 1930 {
		t.Errorf("Expected fallback to copy date 1930, got %d (%v)", year, ok)
	}
}
