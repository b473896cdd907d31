package results

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/lehigh-university-libraries/pdcheck/internal/status"
)

// Summary aggregates a batch.
type Summary struct {
	TotalRecords   int                     `json:"total_records" yaml:"total_records"`
	Succeeded      int                     `json:"succeeded" yaml:"succeeded"`
	Failed         int                     `json:"failed" yaml:"failed"`
	StatusCounts   map[status.Status]int   `json:"status_counts" yaml:"status_counts"`
	CategoryCounts map[status.Category]int `json:"category_counts" yaml:"category_counts"`
	// Compared counts rows that carried an expected status.
	Compared        int     `json:"compared" yaml:"compared"`
	Agreed          int     `json:"agreed" yaml:"agreed"`
	AgreementRate   float64 `json:"agreement_rate" yaml:"agreement_rate"`
	AverageScore    float64 `json:"average_score" yaml:"average_score"`
	MedianScore     float64 `json:"median_score" yaml:"median_score"`
	MinScore        int     `json:"min_score" yaml:"min_score"`
	MaxScore        int     `json:"max_score" yaml:"max_score"`
	AverageDuration int64   `json:"average_duration_ms" yaml:"average_duration_ms"`
	TotalDuration   int64   `json:"total_duration_ms" yaml:"total_duration_ms"`
}

// Agreement compares got with an expected status label. It returns nil when
// there is nothing to compare.
func Agreement(got status.Status, expected string) *bool {
	expected = strings.TrimSpace(expected)
	if expected == "" || got == "" {
		return nil
	}
	agrees := strings.EqualFold(expected, string(got))
	return &agrees
}

// Summarize computes the summary of rows. Scores only count rows that searched
// the registration corpus.
func Summarize(rows []Row) *Summary {
	summary := &Summary{
		TotalRecords:   len(rows),
		StatusCounts:   make(map[status.Status]int),
		CategoryCounts: make(map[status.Category]int),
	}

	var scores []int
	for _, row := range rows {
		summary.TotalDuration += row.DurationMS

		if row.Error != "" {
			summary.Failed++
			continue
		}
		summary.Succeeded++
		summary.StatusCounts[row.Status]++
		summary.CategoryCounts[row.Status.Category()]++

		if row.Agrees != nil {
			summary.Compared++
			if *row.Agrees {
				summary.Agreed++
			}
		}
		if row.Status != status.NoInput {
			scores = append(scores, row.Score)
		}
	}

	if summary.Compared > 0 {
		summary.AgreementRate = float64(summary.Agreed) / float64(summary.Compared)
	}
	if len(rows) > 0 {
		summary.AverageDuration = summary.TotalDuration / int64(len(rows))
	}

	if len(scores) > 0 {
		var total int
		for _, score := range scores {
			total += score
		}
		summary.AverageScore = float64(total) / float64(len(scores))

		slices.Sort(scores)
		mid := len(scores) / 2
		if len(scores)%2 == 0 {
			summary.MedianScore = float64(scores[mid-1]+scores[mid]) / 2
		} else {
			summary.MedianScore = float64(scores[mid])
		}
		summary.MinScore = scores[0]
		summary.MaxScore = scores[len(scores)-1]
	}

	return summary
}

// PrintSummary writes the summary as tables.
func PrintSummary(w io.Writer, s *Summary) {
	overview := table.NewWriter()
	overview.SetOutputMirror(w)
	overview.SetStyle(table.StyleRounded)
	overview.SetTitle("Batch Summary")
	overview.AppendRows([]table.Row{
		{"Total records", s.TotalRecords},
		{"Succeeded", s.Succeeded},
		{"Failed", s.Failed},
		{"Average score", fmt.Sprintf("%.0f", s.AverageScore)},
		{"Median score", fmt.Sprintf("%.0f", s.MedianScore)},
		{"Min / max score", fmt.Sprintf("%d / %d", s.MinScore, s.MaxScore)},
		{"Average time", fmt.Sprintf("%dms", s.AverageDuration)},
	})
	if s.Compared > 0 {
		overview.AppendRow(table.Row{"Agreement", fmt.Sprintf("%d/%d (%.1f%%)", s.Agreed, s.Compared, s.AgreementRate*100)})
	}
	overview.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	overview.Render()

	statuses := table.NewWriter()
	statuses.SetOutputMirror(w)
	statuses.SetStyle(table.StyleRounded)
	statuses.AppendHeader(table.Row{"Status", "Category", "Count"})
	for _, st := range status.All {
		count, ok := s.StatusCounts[st]
		if !ok {
			continue
		}
		statuses.AppendRow(table.Row{string(st), string(st.Category()), count})
	}
	statuses.SetColumnConfigs([]table.ColumnConfig{{Number: 3, Align: text.AlignRight}})
	statuses.Render()
}
