package books

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestNewLoader(t *testing.T) {
	path := "./books.csv"
	loader := NewLoader(path)

	if loader.path != path {
		t.Errorf("Expected path %s, got %s", path, loader.path)
	}
}

func TestLoadCSV(t *testing.T) {
	path := writeFile(t, "books.csv", "\ufeffTitle,Author,Year,Expected_Status\n"+
		"Now We Are Six,A.A. Milne,1927,copyrighted (renewed)\n"+
		"\"Cheaper by the Dozen\",\"Gilbreth, Frank\",,\n")

	records, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.Author != "A.A. Milne" || first.Title != "Now We Are Six" {
		t.Errorf("Unexpected first record %+v", first)
	}
	if first.Year == nil || *first.Year != 1927 {
		t.Errorf("Expected year 1927, got %v", first.Year)
	}
	if first.ExpectedStatus != "copyrighted (renewed)" {
		t.Errorf("Expected status column to be read, got %q", first.ExpectedStatus)
	}
	if first.ID != "row-1" {
		t.Errorf("Expected generated id row-1, got %q", first.ID)
	}

	second := records[1]
	if second.Author != "Gilbreth, Frank" {
		t.Errorf("Expected quoted author, got %q", second.Author)
	}
	if second.Year != nil {
		t.Errorf("Expected blank year to be absent, got %d", *second.Year)
	}
}

func TestLoadCSVErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing title column", "author,year\nMilne,1927\n"},
		{"bad year", "author,title,year\nMilne,Six,nineteen\n"},
		{"empty file", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "books.csv", tt.content)
			if _, err := NewLoader(path).Load(); err == nil {
				t.Errorf("Expected error")
			}
		})
	}
}

func TestLoadJSONL(t *testing.T) {
	path := writeFile(t, "books.jsonl", `{"id":"b1","author":"A.A. Milne","title":"Now We Are Six","year":1927}

{"id":"b2","author":"Hugh Lofting","title":"Doctor Dolittle","year":"1920"}
{"id":"b3","author":"Anon","title":"Unknown"}
`)

	records, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}

	expectedYears := []*int{intPtr(1927), intPtr(1920), nil}
	for i, want := range expectedYears {
		got := records[i].Year
		switch {
		case want == nil && got != nil:
			t.Errorf("Record %d: expected no year, got %d", i, *got)
		case want != nil && (got == nil || *got != *want):
			t.Errorf("Record %d: expected year %d, got %v", i, *want, got)
		}
	}
	if records[1].ID != "b2" {
		t.Errorf("Expected id b2, got %q", records[1].ID)
	}
}

func TestLoadJSONLInvalid(t *testing.T) {
	path := writeFile(t, "books.jsonl", "{\"author\": \"Milne\",\n")
	if _, err := NewLoader(path).Load(); err == nil {
		t.Errorf("Expected error for malformed JSON")
	}
}

func TestLoadParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.parquet")
	year := int64(1927)
	rows := []parquetBook{
		{ID: "p1", Author: "A.A. Milne", Title: "Now We Are Six", Year: &year},
		{Author: "Anon", Title: "Unknown"},
	}
	if err := parquet.WriteFile(path, rows); err != nil {
		t.Fatalf("Failed to write parquet: %v", err)
	}

	records, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].Year == nil || *records[0].Year != 1927 {
		t.Errorf("Expected year 1927, got %v", records[0].Year)
	}
	if records[1].Year != nil {
		t.Errorf("Expected absent year, got %d", *records[1].Year)
	}
	if records[1].ID != "row-2" {
		t.Errorf("Expected generated id row-2, got %q", records[1].ID)
	}
}

func TestLoadSample(t *testing.T) {
	path := writeFile(t, "books.csv", "author,title\nA,One\nB,Two\nC,Three\n")
	records, err := NewLoader(path).LoadSample(2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("Expected 2 records, got %d", len(records))
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := NewLoader("books.xlsx").Load(); err == nil {
		t.Errorf("Expected error for unsupported format")
	}
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		input   string
		want    *int
		wantErr bool
	}{
		{"1927", intPtr(1927), false},
		{" 1850 ", intPtr(1850), false},
		{"", nil, false},
		{"   ", nil, false},
		{"c1927", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseYear(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error=%v, got %v", tt.wantErr, err)
			}
			if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func intPtr(v int) *int { return &v }
