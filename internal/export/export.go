// Package export renders bills for download. JSON exports are indented
// snapshots of the decorated bill view; the CSV export is a two-column
// field/value table for a single bill.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/peachstatelabs/gabills/internal/classify"
	"github.com/peachstatelabs/gabills/internal/models"
	"github.com/peachstatelabs/gabills/internal/processing"
)

// BillView is the decorated shape shared by exports and API responses:
// the raw bill plus everything the pipeline derives from it.
type BillView struct {
	DocNumber     string               `json:"doc_number"`
	Caption       string               `json:"caption"`
	Sponsors      []string             `json:"sponsors"`
	Committees    []string             `json:"committees"`
	DetailURL     string               `json:"detail_url,omitempty"`
	StatusHistory []models.StatusEvent `json:"status_history"`
	Summary       string               `json:"summary,omitempty"`
	Issue         string               `json:"issue,omitempty"`
	Tags          []string             `json:"tags"`
	LatestStatus  string               `json:"latest_status"`
}

// View decorates a bill with its derived fields. Sponsor names come out
// normalized to display form.
func View(bill models.Bill) BillView {
	return BillView{
		DocNumber:     bill.DocNumber,
		Caption:       bill.Caption,
		Sponsors:      processing.SponsorNames(bill),
		Committees:    bill.Committees,
		DetailURL:     bill.DetailURL,
		StatusHistory: bill.StatusHistory,
		Summary:       bill.SummaryText(),
		Issue:         classify.Issue(bill),
		Tags:          classify.Tags(bill),
		LatestStatus:  bill.LatestStatus(),
	}
}

// Views decorates a slice of bills.
func Views(bills []models.Bill) []BillView {
	out := make([]BillView, len(bills))
	for i, b := range bills {
		out[i] = View(b)
	}
	return out
}

// JSON renders any export payload with two-space indentation and a
// trailing newline, matching the download format clients expect.
func JSON(payload any) ([]byte, error) {
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	return append(raw, '\n'), nil
}

// Collection wraps a bill list export with its generation time and count.
type Collection struct {
	ExportedAt time.Time  `json:"exported_at"`
	Count      int        `json:"count"`
	Bills      []BillView `json:"bills"`
}

// NewCollection builds a timestamped list export.
func NewCollection(bills []models.Bill, now time.Time) Collection {
	return Collection{
		ExportedAt: now.UTC(),
		Count:      len(bills),
		Bills:      Views(bills),
	}
}

// CSV renders a single bill as a two-column field/value table.
// Multi-value fields join with "; ".
func CSV(bill models.Bill) ([]byte, error) {
	view := View(bill)
	rows := [][]string{
		{"Field", "Value"},
		{"Bill Number", view.DocNumber},
		{"Caption", view.Caption},
		{"Sponsors", strings.Join(view.Sponsors, "; ")},
		{"Committees", strings.Join(view.Committees, "; ")},
		{"Latest Status", view.LatestStatus},
		{"Summary", view.Summary},
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename builds a per-bill download name like "HB_123.json".
func Filename(docNumber, ext string) string {
	return strings.ReplaceAll(docNumber, " ", "_") + "." + ext
}
