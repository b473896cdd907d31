// Package books loads book lists for batch status checks.
package books

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Loader reads a book list from a CSV, JSONL or Parquet file.
type Loader struct {
	path string
}

// NewLoader creates a new book list loader
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads every book in the list.
func (l *Loader) Load() ([]Book, error) {
	return l.LoadSample(0)
}

// LoadSample reads at most limit books. A limit of 0 reads everything.
func (l *Loader) LoadSample(limit int) ([]Book, error) {
	ext := strings.ToLower(filepath.Ext(l.path))

	var (
		records []Book
		err     error
	)
	switch ext {
	case ".csv":
		records, err = l.loadCSV(limit)
	case ".jsonl", ".json":
		records, err = l.loadJSONL(limit)
	case ".parquet":
		records, err = l.loadParquet(limit)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .csv, .jsonl, .parquet)", ext)
	}
	if err != nil {
		return nil, err
	}

	for i := range records {
		if records[i].ID == "" {
			records[i].ID = fmt.Sprintf("row-%d", i+1)
		}
	}
	return records, nil
}

func (l *Loader) loadCSV(limit int) ([]Book, error) {
	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open book list: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, required := range []string{"author", "title"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("CSV header is missing the %q column", required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []Book
	line := 1
	for limit == 0 || len(records) < limit {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV at line %d: %w", line, err)
		}

		year, err := ParseYear(field(row, "year"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, Book{
			ID:             field(row, "id"),
			Author:         field(row, "author"),
			Title:          field(row, "title"),
			Year:           year,
			ExpectedStatus: strings.TrimSpace(field(row, "expected_status")),
		})
	}

	slog.Debug("Finished reading CSV book list", "path", l.path, "total_records", len(records))
	return records, nil
}

func (l *Loader) loadJSONL(limit int) ([]Book, error) {
	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open book list: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	const maxCapacity = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxCapacity)

	var records []Book
	lineNum := 0
	for scanner.Scan() && (limit == 0 || len(records) < limit) {
		lineNum++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var row jsonBook
		if err := json.Unmarshal(line, &row); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		year, err := yearFromJSON(row.Year)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		records = append(records, Book{
			ID:             row.ID,
			Author:         row.Author,
			Title:          row.Title,
			Year:           year,
			ExpectedStatus: row.ExpectedStatus,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading book list: %w", err)
	}

	slog.Debug("Finished reading JSONL book list", "path", l.path, "total_records", len(records), "total_lines", lineNum)
	return records, nil
}

func (l *Loader) loadParquet(limit int) ([]Book, error) {
	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}
	slog.Debug("Parquet file opened", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[parquetBook](pf)
	defer reader.Close()

	var records []Book
	rows := make([]parquetBook, 128)
	for limit == 0 || len(records) < limit {
		n, err := reader.Read(rows)
		for _, row := range rows[:n] {
			if limit != 0 && len(records) >= limit {
				break
			}
			records = append(records, row.book())
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	slog.Debug("Finished reading Parquet book list", "path", l.path, "total_records", len(records))
	return records, nil
}
