package models

import (
	"time"

	"github.com/lehigh-university-libraries/pdcheck/internal/copyright"
)

// LookupRequest is the body of POST /api/lookups.
type LookupRequest struct {
	Author string `json:"author"`
	Title  string `json:"title"`
	Year   *int   `json:"year,omitempty"`
}

// Lookup is one status determination made through the API.
type Lookup struct {
	ID            string                   `json:"id"`
	Request       LookupRequest            `json:"request"`
	Determination *copyright.Determination `json:"determination,omitempty"`
	Error         string                   `json:"error,omitempty"`
	DurationMS    int64                    `json:"duration_ms"`
	CreatedAt     time.Time                `json:"created_at"`
}
