package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var repToday = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func TestEvaluateTravelRepDecisionChain(t *testing.T) {
	tests := []struct {
		name          string
		travelDate    string
		confirmStatus string
		repName       string
		docsSentDate  string
		want          TravelRepState
		wantDays      int
	}{
		{"empty date", "", "confirm", "", "", TravelRepNoDate, 0},
		{"zero date sentinel", "0000-00-00", "confirm", "", "", TravelRepNoDate, 0},
		{"unparseable date", "not-a-date", "confirm", "", "", TravelRepNoDate, 0},
		{"past date", "2024-12-31", "confirm", "", "", TravelRepPastDate, -1},
		{"not confirmed", "2025-03-01", "", "", "", TravelRepNotConfirmed, 59},
		{"not confirmed beats assigned rep", "2025-03-01", "pending", "John Smith", "2025-01-01", TravelRepNotConfirmed, 59},
		{"same day is urgent", "2025-01-01", "confirm", "", "", TravelRepNeedsUrgent, 0},
		{"44 days is urgent", "2025-02-14", "confirm", "", "", TravelRepNeedsUrgent, 44},
		{"45 days is normal window", "2025-02-15", "confirm", "", "", TravelRepNormalWindow, 45},
		{"75 days is normal window", "2025-03-17", "confirm", "", "", TravelRepNormalWindow, 75},
		{"76 days is too early", "2025-03-18", "confirm", "", "", TravelRepTooEarly, 76},
		{"assigned without docs", "2025-02-14", "confirm", "John Smith", "", TravelRepAssignedNoDocs, 44},
		{"assigned docs zero sentinel", "2025-02-14", "confirm", "John Smith", "0000-00-00", TravelRepAssignedNoDocs, 44},
		{"complete", "2025-02-14", "confirm", "John Smith", "2025-01-02", TravelRepComplete, 44},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EvaluateTravelRep(tt.travelDate, tt.confirmStatus, tt.repName, tt.docsSentDate, repToday)
			assert.Equal(t, tt.want, result.State)
			if result.HasDays {
				assert.Equal(t, tt.wantDays, result.DaysRemaining)
			}
		})
	}
}

func TestEvaluateTravelRepBlankSentinelEquivalence(t *testing.T) {
	// Empty string and the zero-date sentinel must classify identically.
	for _, blank := range []string{"", "0000-00-00", "  "} {
		result := EvaluateTravelRep(blank, "confirm", "John Smith", "2025-01-01", repToday)
		assert.Equal(t, TravelRepNoDate, result.State, "travel date %q", blank)

		result = EvaluateTravelRep("2025-02-14", "confirm", blank, "2025-01-01", repToday)
		assert.Equal(t, TravelRepNeedsUrgent, result.State, "rep name %q", blank)
	}
}

func TestEvaluateTravelRepCarriesRepFields(t *testing.T) {
	result := EvaluateTravelRep("2025-02-14", "confirm", "John Smith", "2025-01-02", repToday)
	assert.Equal(t, "John Smith", result.RepName)
	assert.Equal(t, "2025-01-02", result.DocsSentDate)

	result = EvaluateTravelRep("2025-02-14", "confirm", "John Smith", "", repToday)
	assert.Equal(t, "John Smith", result.RepName)
	assert.Empty(t, result.DocsSentDate)
}
