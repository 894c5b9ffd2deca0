// Package pipeline implements the synchronous filter/sort/paginate chain
// that every bill listing is recomputed through. All transformations are
// pure functions over the in-memory collection.
package pipeline

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/peachstatelabs/gabills/internal/classify"
	"github.com/peachstatelabs/gabills/internal/models"
)

// DefaultPageSize is the fixed listing page size.
const DefaultPageSize = 20

// Sort modes. DateDesc is the default listing order.
const (
	SortDateDesc = "date-desc"
	SortDateAsc  = "date-asc"
	SortBillAsc  = "bill-asc"
	SortBillDesc = "bill-desc"
)

// FilterState captures every independent filter plus the sort mode and
// page, the full shareable view state. The zero value matches no filters,
// page 1, date-desc.
type FilterState struct {
	Search        string
	Type          string
	Issues        []string
	Sponsor       string
	Status        string
	SummarySearch string
	DateFrom      string
	DateTo        string
	SortBy        string
	Page          int
}

// Encode reflects the filter state into URL query values. Defaults are
// omitted so an empty state encodes to an empty query, and Decode(Encode(f))
// reproduces f for every supported field.
func (f FilterState) Encode() url.Values {
	v := url.Values{}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("search", f.Search)
	set("type", f.Type)
	if len(f.Issues) > 0 {
		v.Set("issues", strings.Join(f.Issues, ","))
	}
	set("sponsor", f.Sponsor)
	set("status", f.Status)
	set("summarySearch", f.SummarySearch)
	set("dateFrom", f.DateFrom)
	set("dateTo", f.DateTo)
	if f.SortBy != "" && f.SortBy != SortDateDesc {
		v.Set("sortBy", f.SortBy)
	}
	if f.Page > 1 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	return v
}

// Decode parses a filter state out of URL query values.
func Decode(v url.Values) FilterState {
	f := FilterState{
		Search:        v.Get("search"),
		Type:          v.Get("type"),
		Sponsor:       v.Get("sponsor"),
		Status:        v.Get("status"),
		SummarySearch: v.Get("summarySearch"),
		DateFrom:      v.Get("dateFrom"),
		DateTo:        v.Get("dateTo"),
		SortBy:        SortDateDesc,
		Page:          1,
	}
	if raw := v.Get("issues"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				f.Issues = append(f.Issues, part)
			}
		}
	}
	switch v.Get("sortBy") {
	case SortDateAsc, SortBillAsc, SortBillDesc:
		f.SortBy = v.Get("sortBy")
	}
	if page, err := strconv.Atoi(v.Get("page")); err == nil && page > 1 {
		f.Page = page
	}
	return f
}

// Apply narrows bills through the AND predicate chain in a fixed order:
// search, type, issues, sponsor, status, summary search, date range. Each
// empty field is skipped. The input slice is not modified.
func Apply(bills []models.Bill, f FilterState) []models.Bill {
	result := make([]models.Bill, len(bills))
	copy(result, bills)

	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		result = keep(result, func(b models.Bill) bool {
			return strings.Contains(b.SearchText(), needle)
		})
	}

	if f.Type != "" {
		result = keep(result, func(b models.Bill) bool {
			return strings.HasPrefix(b.DocNumber, f.Type)
		})
	}

	if len(f.Issues) > 0 {
		wanted := make(map[string]struct{}, len(f.Issues))
		for _, issue := range f.Issues {
			wanted[issue] = struct{}{}
		}
		result = keep(result, func(b models.Bill) bool {
			issue := classify.Issue(b)
			if issue == "" {
				return false
			}
			_, ok := wanted[issue]
			return ok
		})
	}

	if f.Sponsor != "" {
		needle := strings.ToLower(f.Sponsor)
		result = keep(result, func(b models.Bill) bool {
			return strings.Contains(strings.ToLower(strings.Join(b.Sponsors, " ")), needle)
		})
	}

	if f.Status != "" {
		needle := strings.ToLower(f.Status)
		result = keep(result, func(b models.Bill) bool {
			return strings.Contains(strings.ToLower(b.LatestStatus()), needle)
		})
	}

	if f.SummarySearch != "" {
		needle := strings.ToLower(f.SummarySearch)
		result = keep(result, func(b models.Bill) bool {
			return strings.Contains(strings.ToLower(b.SummaryText()), needle)
		})
	}

	if f.DateFrom != "" || f.DateTo != "" {
		from, to := parseBound(f.DateFrom), parseBound(f.DateTo)
		result = keep(result, func(b models.Bill) bool {
			// Bills without history are excluded from any date-bounded
			// view. The bound is checked against the raw last history
			// entry, not the re-sorted latest; see Bill.LastActionDate.
			if len(b.StatusHistory) == 0 {
				return false
			}
			at := b.LastActionDate()
			if from != nil && at.Before(*from) {
				return false
			}
			if to != nil && at.After(*to) {
				return false
			}
			return true
		})
	}

	return result
}

func keep(bills []models.Bill, pred func(models.Bill) bool) []models.Bill {
	out := bills[:0]
	for _, b := range bills {
		if pred(b) {
			out = append(out, b)
		}
	}
	return out
}

func parseBound(raw string) *time.Time {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	ts := models.ParseDate(raw)
	return &ts
}
