package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDecision(t *testing.T) {
	assert.Equal(t, DecisionAffirmed, ParseDecision("Affirmed"))
	assert.Equal(t, DecisionReversed, ParseDecision("Reversed"))
	assert.Equal(t, DecisionRemanded, ParseDecision("Remanded"))
	assert.Equal(t, DecisionUnknown, ParseDecision("affirmed"), "matching is exact")
	assert.Equal(t, DecisionUnknown, ParseDecision(""))
	assert.Equal(t, DecisionUnknown, ParseDecision("Dismissed"))
}

func TestParseCitationStatus(t *testing.T) {
	assert.Equal(t, CitationValid, ParseCitationStatus("VALID"))
	assert.Equal(t, CitationInvalid, ParseCitationStatus("INVALID"))
	assert.Equal(t, CitationNeedsReview, ParseCitationStatus("NEEDS_REVIEW"))
	assert.Equal(t, CitationNeedsReview, ParseCitationStatus(""))
	assert.Equal(t, CitationNeedsReview, ParseCitationStatus("MAYBE"))
}

func TestHistoryEntryKey(t *testing.T) {
	a := HistoryEntry{Query: "q", Timestamp: "2024-01-01T00:00:00Z"}
	b := HistoryEntry{Query: "q", Timestamp: "2024-01-02T00:00:00Z"}
	c := HistoryEntry{Query: "q2", Timestamp: "2024-01-01T00:00:00Z"}

	assert.Equal(t, a.Key(), HistoryEntry{Query: "q", Timestamp: "2024-01-01T00:00:00Z"}.Key())
	assert.NotEqual(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
}
