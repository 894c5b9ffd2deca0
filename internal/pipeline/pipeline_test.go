package pipeline_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/peachstatelabs/gabills/internal/models"
	"github.com/peachstatelabs/gabills/internal/pipeline"
)

func bill(doc, caption string, events ...models.StatusEvent) models.Bill {
	return models.Bill{DocNumber: doc, Caption: caption, StatusHistory: events}
}

func docNumbers(bills []models.Bill) []string {
	out := make([]string, len(bills))
	for i, b := range bills {
		out[i] = b.DocNumber
	}
	return out
}

func TestApplySearchMatchesAnyTextField(t *testing.T) {
	bills := []models.Bill{
		{DocNumber: "HB 1", Caption: "Peanut farming grants", Sponsors: models.StringList{"SMITH, JOHN"}},
		{DocNumber: "SB 2", Caption: "Road funding", Committees: models.StringList{"Transportation"}},
	}

	got := pipeline.Apply(bills, pipeline.FilterState{Search: "peanut"})
	require.Equal(t, []string{"HB 1"}, docNumbers(got))

	got = pipeline.Apply(bills, pipeline.FilterState{Search: "SMITH"})
	require.Equal(t, []string{"HB 1"}, docNumbers(got))

	got = pipeline.Apply(bills, pipeline.FilterState{Search: "transport"})
	require.Equal(t, []string{"SB 2"}, docNumbers(got))
}

func TestApplyTypePrefix(t *testing.T) {
	bills := []models.Bill{bill("HB 123", "a"), bill("SB 10", "b"), bill("HB 7", "c")}
	got := pipeline.Apply(bills, pipeline.FilterState{Type: "HB"})
	require.Equal(t, []string{"HB 123", "HB 7"}, docNumbers(got))
}

func TestApplyIssues(t *testing.T) {
	bills := []models.Bill{
		bill("HB 1", "Firearm storage requirements"),
		bill("HB 2", "School curriculum standards"),
		bill("HB 3", "Proclaiming Peach Day"),
	}
	got := pipeline.Apply(bills, pipeline.FilterState{Issues: []string{"education", "taxes"}})
	require.Equal(t, []string{"HB 2"}, docNumbers(got))

	// Unclassified bills never match an issue filter.
	got = pipeline.Apply(bills, pipeline.FilterState{Issues: []string{"healthcare"}})
	require.Empty(t, got)
}

func TestApplyStatusUsesResortedLatest(t *testing.T) {
	b := bill("HB 1", "a",
		models.StatusEvent{Date: "2024-03-01", Status: "Signed by Governor"},
		models.StatusEvent{Date: "2024-01-05", Status: "Introduced"},
	)
	// Latest by date is "Signed by Governor" even though it is stored first.
	got := pipeline.Apply([]models.Bill{b}, pipeline.FilterState{Status: "signed"})
	require.Len(t, got, 1)

	got = pipeline.Apply([]models.Bill{b}, pipeline.FilterState{Status: "introduced"})
	require.Empty(t, got)
}

func TestApplyDateRangeUsesRawLastEntry(t *testing.T) {
	b := bill("HB 1", "a",
		models.StatusEvent{Date: "2024-03-01", Status: "Signed"},
		models.StatusEvent{Date: "2024-01-05", Status: "Introduced"},
	)
	// Raw last entry is 2024-01-05, so a February window excludes the bill
	// even though its chronologically latest action is in March.
	got := pipeline.Apply([]models.Bill{b}, pipeline.FilterState{DateFrom: "2024-02-01"})
	require.Empty(t, got)

	got = pipeline.Apply([]models.Bill{b}, pipeline.FilterState{DateFrom: "2024-01-01", DateTo: "2024-01-31"})
	require.Len(t, got, 1)

	// No history means no date-bounded view membership.
	got = pipeline.Apply([]models.Bill{bill("HB 2", "b")}, pipeline.FilterState{DateTo: "2030-01-01"})
	require.Empty(t, got)
}

func TestApplySummarySearchFallback(t *testing.T) {
	bills := []models.Bill{
		{DocNumber: "HB 1", Caption: "a", FirstReaderSummary: "Creates a grant program"},
		{DocNumber: "HB 2", Caption: "b", Summary: "Revises grant eligibility"},
		{DocNumber: "HB 3", Caption: "c"},
	}
	got := pipeline.Apply(bills, pipeline.FilterState{SummarySearch: "grant"})
	require.Equal(t, []string{"HB 1", "HB 2"}, docNumbers(got))
}

func TestApplyFiltersAreANDed(t *testing.T) {
	bills := []models.Bill{
		{DocNumber: "HB 1", Caption: "School funding", Sponsors: models.StringList{"SMITH, JOHN"}},
		{DocNumber: "SB 2", Caption: "School safety", Sponsors: models.StringList{"SMITH, JOHN"}},
	}
	got := pipeline.Apply(bills, pipeline.FilterState{Type: "HB", Sponsor: "smith"})
	require.Equal(t, []string{"HB 1"}, docNumbers(got))
}

func TestSortBillAscNumericTieBreak(t *testing.T) {
	bills := []models.Bill{bill("HB 200", "a"), bill("SB 3", "b"), bill("HB 2", "c")}
	pipeline.Sort(bills, pipeline.SortBillAsc)
	require.Equal(t, []string{"HB 2", "HB 200", "SB 3"}, docNumbers(bills))
}

func TestSortBillDescReversedPrefixBlocks(t *testing.T) {
	bills := []models.Bill{bill("HB 200", "a"), bill("SB 3", "b"), bill("HB 2", "c")}
	pipeline.Sort(bills, pipeline.SortBillDesc)
	require.Equal(t, []string{"SB 3", "HB 200", "HB 2"}, docNumbers(bills))

	mixed := []models.Bill{bill("HB2", "a"), bill("SB3", "b")}
	pipeline.Sort(mixed, pipeline.SortBillDesc)
	require.Equal(t, []string{"SB3", "HB2"}, docNumbers(mixed))
}

func TestSortByDate(t *testing.T) {
	bills := []models.Bill{
		bill("HB 1", "a", models.StatusEvent{Date: "2024-02-01", Status: "x"}),
		bill("HB 2", "b", models.StatusEvent{Date: "2024-03-01", Status: "x"}),
		bill("HB 3", "c"), // no history, epoch
	}
	pipeline.Sort(bills, pipeline.SortDateDesc)
	require.Equal(t, []string{"HB 2", "HB 1", "HB 3"}, docNumbers(bills))

	pipeline.Sort(bills, pipeline.SortDateAsc)
	require.Equal(t, []string{"HB 3", "HB 1", "HB 2"}, docNumbers(bills))
}

func TestSortIsStable(t *testing.T) {
	bills := []models.Bill{
		bill("HB 5", "first", models.StatusEvent{Date: "2024-01-01", Status: "x"}),
		bill("HB 6", "second", models.StatusEvent{Date: "2024-01-01", Status: "x"}),
	}
	pipeline.Sort(bills, pipeline.SortDateDesc)
	require.Equal(t, []string{"HB 5", "HB 6"}, docNumbers(bills))
}

func TestPaginate(t *testing.T) {
	bills := make([]models.Bill, 45)
	for i := range bills {
		bills[i] = bill("HB 1", "x")
	}

	require.Len(t, pipeline.Paginate(bills, 1, 20), 20)
	require.Len(t, pipeline.Paginate(bills, 2, 20), 20)
	require.Len(t, pipeline.Paginate(bills, 3, 20), 5)
	require.Empty(t, pipeline.Paginate(bills, 4, 20))
	require.Empty(t, pipeline.Paginate(bills, 0, 20))
	require.Equal(t, 3, pipeline.TotalPages(45, 20))
	require.Equal(t, 0, pipeline.TotalPages(0, 20))
}

func TestFilterStateQueryRoundTrip(t *testing.T) {
	states := []pipeline.FilterState{
		{SortBy: pipeline.SortDateDesc, Page: 1},
		{
			Search:        "gun storage",
			Type:          "SB",
			Issues:        []string{"gun-control", "education"},
			Sponsor:       "smith",
			Status:        "signed",
			SummarySearch: "grant",
			DateFrom:      "2024-01-01",
			DateTo:        "2024-06-30",
			SortBy:        pipeline.SortBillDesc,
			Page:          3,
		},
	}

	for _, state := range states {
		decoded := pipeline.Decode(state.Encode())
		require.Equal(t, state, decoded)
	}
}

func TestDecodeDefaults(t *testing.T) {
	f := pipeline.Decode(url.Values{})
	require.Equal(t, pipeline.SortDateDesc, f.SortBy)
	require.Equal(t, 1, f.Page)
	require.Empty(t, f.Issues)

	f = pipeline.Decode(url.Values{"sortBy": {"bogus"}, "page": {"-3"}})
	require.Equal(t, pipeline.SortDateDesc, f.SortBy)
	require.Equal(t, 1, f.Page)
}
