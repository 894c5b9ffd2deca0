package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// StatusEvent is a single entry in a bill's status history. The stored
// order is not guaranteed to be chronological.
type StatusEvent struct {
	Date   string `json:"date"`
	Status string `json:"status"`
}

// StringList accepts both a JSON string and a JSON array of strings, the
// two shapes the scraped dataset uses for sponsors and committees.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*l = StringList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

// Bill is one legislative proposal, identified by its doc number. Bills are
// immutable value objects for the life of a loaded dataset.
type Bill struct {
	DocNumber          string        `json:"doc_number"`
	Caption            string        `json:"caption"`
	Sponsors           StringList    `json:"sponsors"`
	Committees         StringList    `json:"committees,omitempty"`
	DetailURL          string        `json:"detail_url,omitempty"`
	StatusHistory      []StatusEvent `json:"status_history"`
	FirstReaderSummary string        `json:"first_reader_summary,omitempty"`
	Summary            string        `json:"summary,omitempty"`
}

// Type returns the alphabetic prefix of the doc number ("HB", "SB").
func (b Bill) Type() string {
	for i, r := range b.DocNumber {
		if r < 'A' || r > 'Z' {
			return b.DocNumber[:i]
		}
	}
	return b.DocNumber
}

// Number returns the numeric suffix of the doc number, 0 when absent.
func (b Bill) Number() int {
	s := b.DocNumber
	start := -1
	for i, r := range s {
		if r >= '0' && r <= '9' {
			start = i
			break
		}
	}
	if start < 0 {
		return 0
	}
	end := start
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[start:end])
	if err != nil {
		return 0
	}
	return n
}

// SummaryText returns the first reader summary, falling back to the plain
// summary field when absent.
func (b Bill) SummaryText() string {
	if b.FirstReaderSummary != "" {
		return b.FirstReaderSummary
	}
	return b.Summary
}

// LatestStatus returns the status of the chronologically latest history
// entry. The stored history may be out of order, so a copy is sorted by
// parsed date first; entries with unparseable dates sort to the epoch.
// Returns "Unknown" for an empty history.
func (b Bill) LatestStatus() string {
	if len(b.StatusHistory) == 0 {
		return "Unknown"
	}
	latest := b.StatusHistory[0]
	latestAt := ParseDate(latest.Date)
	for _, ev := range b.StatusHistory[1:] {
		// >= keeps the later array entry on equal dates, matching a
		// stable ascending sort that takes the last element.
		if at := ParseDate(ev.Date); !at.Before(latestAt) {
			latest = ev
			latestAt = at
		}
	}
	return latest.Status
}

// LastActionDate returns the date of the last history entry as stored,
// without re-sorting. Date filtering and date sorting key off this raw
// value; LatestStatus deliberately does not. Epoch when history is empty
// or the date is unparseable.
func (b Bill) LastActionDate() time.Time {
	if len(b.StatusHistory) == 0 {
		return time.Unix(0, 0).UTC()
	}
	return ParseDate(b.StatusHistory[len(b.StatusHistory)-1].Date)
}

// FirstRecordedStatus returns the status of the first history entry as
// stored, or "" when the history is empty. The similarity scorer's status
// bonus compares this value, not LatestStatus.
func (b Bill) FirstRecordedStatus() string {
	if len(b.StatusHistory) == 0 {
		return ""
	}
	return b.StatusHistory[0].Status
}

// SearchText concatenates doc number, caption, sponsors and committees in
// lowercase for the free-text filter.
func (b Bill) SearchText() string {
	parts := []string{b.DocNumber, b.Caption, strings.Join(b.Sponsors, " "), strings.Join(b.Committees, " ")}
	return strings.ToLower(strings.Join(parts, " "))
}

// ClassifierText concatenates caption, sponsors, committees and the first
// reader summary in lowercase, the text the issue classifier and tag
// generator match keywords against.
func (b Bill) ClassifierText() string {
	parts := []string{b.Caption, strings.Join(b.Sponsors, " "), strings.Join(b.Committees, " "), b.FirstReaderSummary}
	return strings.ToLower(strings.Join(parts, " "))
}

// ParseDate parses a status-history date. Unparseable or empty input maps
// to the epoch rather than an error; the pipeline never rejects a bill for
// a bad date.
func ParseDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Unix(0, 0).UTC()
	}
	for _, f := range []string{"2006-01-02", time.RFC3339} {
		if ts, err := time.Parse(f, raw); err == nil {
			return ts.UTC()
		}
	}
	return time.Unix(0, 0).UTC()
}
