package books

import (
	"fmt"
	"strconv"
	"strings"
)

// Book is one row of a book list.
type Book struct {
	ID     string `json:"id" yaml:"id"`
	Author string `json:"author" yaml:"author"`
	Title  string `json:"title" yaml:"title"`
	Year   *int   `json:"year,omitempty" yaml:"year,omitempty"`
	// ExpectedStatus is an optional known verdict used to measure agreement.
	ExpectedStatus string `json:"expected_status,omitempty" yaml:"expected_status,omitempty"`
}

// jsonBook is the JSONL row shape. Year may be a number or a string.
type jsonBook struct {
	ID             string `json:"id"`
	Author         string `json:"author"`
	Title          string `json:"title"`
	Year           any    `json:"year"`
	ExpectedStatus string `json:"expected_status"`
}

// parquetBook is the Parquet row shape.
type parquetBook struct {
	ID             string `parquet:"id,optional"`
	Author         string `parquet:"author"`
	Title          string `parquet:"title"`
	Year           *int64 `parquet:"year,optional"`
	ExpectedStatus string `parquet:"expected_status,optional"`
}

func (p parquetBook) book() Book {
	b := Book{
		ID:             p.ID,
		Author:         p.Author,
		Title:          p.Title,
		ExpectedStatus: p.ExpectedStatus,
	}
	if p.Year != nil {
		year := int(*p.Year)
		b.Year = &year
	}
	return b
}

// ParseYear reads a publication year. Blank text means no year.
func ParseYear(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	year, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("invalid year %q", s)
	}
	return &year, nil
}

func yearFromJSON(v any) (*int, error) {
	switch y := v.(type) {
	case nil:
		return nil, nil
	case float64:
		if y != float64(int(y)) {
			return nil, fmt.Errorf("invalid year %v", y)
		}
		year := int(y)
		return &year, nil
	case string:
		return ParseYear(y)
	default:
		return nil, fmt.Errorf("invalid year %v", v)
	}
}
