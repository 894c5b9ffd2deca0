// Package dataset loads the scraped bill collection into memory. The
// collection is immutable once loaded; every listing is recomputed from
// the full slice.
package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peachstatelabs/gabills/internal/classify"
	"github.com/peachstatelabs/gabills/internal/models"
)

// Load reads bills from a local file path or an http(s) URL. A parse
// failure returns an error and no bills; the caller never sees a partial
// collection.
func Load(ctx context.Context, source string) ([]models.Bill, error) {
	var raw []byte
	var err error
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		raw, err = Download(ctx, source)
	} else {
		raw, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Parse decodes a dataset document. Optional fields on individual bills
// degrade to empty equivalents rather than failing; only malformed JSON
// is an error.
func Parse(raw []byte) ([]models.Bill, error) {
	var bills []models.Bill
	if err := json.Unmarshal(raw, &bills); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	return bills, nil
}

// Download fetches the dataset from an upstream URL. One shot, no retry;
// the fetcher layers its own backoff on top.
func Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build dataset request: %w", err)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch dataset: unexpected status %s", res.Status)
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read dataset body: %w", err)
	}
	return raw, nil
}

// WriteFile atomically replaces the dataset file: the new content lands
// under a temp name first and is renamed into place only once fully
// written, so readers never observe a truncated dataset.
func WriteFile(path string, raw []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp dataset: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp dataset: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace dataset: %w", err)
	}
	return nil
}

// Stats summarizes a collection for the dashboard cards.
type Stats struct {
	Total       int            `json:"total"`
	HouseBills  int            `json:"house_bills"`
	SenateBills int            `json:"senate_bills"`
	ByIssue     map[string]int `json:"by_issue"`
	LastAction  string         `json:"last_action,omitempty"`
}

// Summarize computes collection stats in one pass.
func Summarize(bills []models.Bill) Stats {
	stats := Stats{Total: len(bills), ByIssue: make(map[string]int)}
	var latest time.Time
	for _, b := range bills {
		switch b.Type() {
		case "HB":
			stats.HouseBills++
		case "SB":
			stats.SenateBills++
		}
		if issue := classify.Issue(b); issue != "" {
			stats.ByIssue[issue]++
		}
		if at := b.LastActionDate(); at.After(latest) {
			latest = at
		}
	}
	if !latest.IsZero() && latest.Unix() != 0 {
		stats.LastAction = latest.Format("2006-01-02")
	}
	return stats
}

// ByDocNumber indexes a collection by its stable key.
func ByDocNumber(bills []models.Bill) map[string]models.Bill {
	index := make(map[string]models.Bill, len(bills))
	for _, b := range bills {
		index[b.DocNumber] = b
	}
	return index
}
