package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/peachstatelabs/gabills/internal/models"
)

func TestStringListAcceptsStringAndArray(t *testing.T) {
	var b models.Bill
	raw := `{"doc_number":"HB1","caption":"x","sponsors":"SMITH, JOHN","committees":["Rules","Ways and Means"]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &b))
	require.Equal(t, models.StringList{"SMITH, JOHN"}, b.Sponsors)
	require.Equal(t, models.StringList{"Rules", "Ways and Means"}, b.Committees)

	var c models.Bill
	require.NoError(t, json.Unmarshal([]byte(`{"doc_number":"SB2","caption":"y","sponsors":null}`), &c))
	require.Empty(t, c.Sponsors)
}

func TestLatestStatusSortsUnorderedHistory(t *testing.T) {
	b := models.Bill{StatusHistory: []models.StatusEvent{
		{Date: "2024-02-10", Status: "Senate Read"},
		{Date: "2024-03-01", Status: "Signed by Governor"},
		{Date: "2024-01-05", Status: "Introduced"},
	}}
	require.Equal(t, "Signed by Governor", b.LatestStatus())
}

func TestLatestStatusEmptyHistory(t *testing.T) {
	require.Equal(t, "Unknown", models.Bill{}.LatestStatus())
	require.Equal(t, "Unknown", models.Bill{StatusHistory: []models.StatusEvent{}}.LatestStatus())
}

func TestLatestStatusInvalidDatesTreatedAsEpoch(t *testing.T) {
	b := models.Bill{StatusHistory: []models.StatusEvent{
		{Date: "not-a-date", Status: "Broken"},
		{Date: "2024-01-05", Status: "Introduced"},
	}}
	require.Equal(t, "Introduced", b.LatestStatus())
}

func TestLastActionDateUsesStoredOrder(t *testing.T) {
	b := models.Bill{StatusHistory: []models.StatusEvent{
		{Date: "2024-03-01", Status: "Signed"},
		{Date: "2024-01-05", Status: "Introduced"},
	}}
	// Raw last array element, even though an earlier entry is newer.
	require.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), b.LastActionDate())

	empty := models.Bill{}
	require.Equal(t, time.Unix(0, 0).UTC(), empty.LastActionDate())
}

func TestFirstRecordedStatus(t *testing.T) {
	b := models.Bill{StatusHistory: []models.StatusEvent{
		{Date: "2024-01-05", Status: "Introduced"},
		{Date: "2024-03-01", Status: "Signed"},
	}}
	require.Equal(t, "Introduced", b.FirstRecordedStatus())
	require.Equal(t, "", models.Bill{}.FirstRecordedStatus())
}

func TestTypeAndNumber(t *testing.T) {
	require.Equal(t, "HB", models.Bill{DocNumber: "HB 123"}.Type())
	require.Equal(t, "SB", models.Bill{DocNumber: "SB9"}.Type())
	require.Equal(t, 123, models.Bill{DocNumber: "HB 123"}.Number())
	require.Equal(t, 9, models.Bill{DocNumber: "SB9"}.Number())
	require.Equal(t, 0, models.Bill{DocNumber: "HB"}.Number())
}

func TestSummaryTextFallback(t *testing.T) {
	b := models.Bill{FirstReaderSummary: "first", Summary: "second"}
	require.Equal(t, "first", b.SummaryText())
	require.Equal(t, "second", models.Bill{Summary: "second"}.SummaryText())
}
