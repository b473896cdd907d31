package registration

import (
	"encoding/xml"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// Date is a registration or copy date. Month and Day are zero when the source
// only carries a year.
type Date struct {
	Year  int
	Month int
	Day   int
}

// ParseDate reads an ISO-style date such as "1927-10-14" or "1927".
func ParseDate(s string) (Date, bool) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return Date{}, false
	}
	d := Date{Year: year}
	if len(parts) > 1 {
		d.Month, _ = strconv.Atoi(parts[1])
	}
	if len(parts) > 2 {
		d.Day, _ = strconv.Atoi(parts[2])
	}
	return d, true
}

// Entry is one copyrightEntry from a registration container.
type Entry struct {
	ID                 string
	RegistrationNumber string
	Authors            []string
	Title              *string
	RegistrationDate   *Date
	CopyDate           *Date
}

// Year returns the registration year, falling back to the copy date.
func (e Entry) Year() (int, bool) {
	if e.RegistrationDate != nil {
		return e.RegistrationDate.Year, true
	}
	if e.CopyDate != nil {
		return e.CopyDate.Year, true
	}
	return 0, false
}

type xmlEntry struct {
	ID        string    `xml:"id,attr"`
	RegNum    string    `xml:"regnum,attr"`
	Authors   []string  `xml:"author>authorName"`
	Titles    []string  `xml:"title"`
	RegDates  []xmlDate `xml:"regDate"`
	CopyDates []xmlDate `xml:"copyDate"`
}

type xmlDate struct {
	Date string `xml:"date,attr"`
}

func (x xmlEntry) entry() Entry {
	e := Entry{
		ID:                 x.ID,
		RegistrationNumber: strings.TrimSpace(x.RegNum),
		Authors:            x.Authors,
	}
	if len(x.Titles) > 0 {
		title := x.Titles[0]
		e.Title = &title
	}
	e.RegistrationDate = firstDate(x.RegDates)
	e.CopyDate = firstDate(x.CopyDates)
	return e
}

// firstDate only looks at the first element; a first element with a missing or
// malformed date attribute means the field is absent.
func firstDate(dates []xmlDate) *Date {
	if len(dates) == 0 {
		return nil
	}
	d, ok := ParseDate(dates[0].Date)
	if !ok {
		return nil
	}
	return &d
}

// Entries yields the copyrightEntry children of the document root in document
// order. A syntax error ends the sequence with a non-nil error; callers must
// treat it as fatal for the container.
func Entries(r io.Reader) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		dec := xml.NewDecoder(r)
		dec.CharsetReader = charsetReader

		depth := 0
		sawRoot := false
		for {
			tok, err := dec.Token()
			if err == io.EOF {
				if !sawRoot {
					yield(Entry{}, fmt.Errorf("no root element"))
				}
				return
			}
			if err != nil {
				yield(Entry{}, err)
				return
			}

			switch t := tok.(type) {
			case xml.StartElement:
				sawRoot = true
				if depth == 1 && t.Name.Local == "copyrightEntry" {
					var raw xmlEntry
					if err := dec.DecodeElement(&raw, &t); err != nil {
						yield(Entry{}, err)
						return
					}
					if !yield(raw.entry(), nil) {
						return
					}
					continue
				}
				depth++
			case xml.EndElement:
				depth--
			}
		}
	}
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	return enc.NewDecoder().Reader(input), nil
}
