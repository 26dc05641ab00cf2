package record

// DecisionType classifies how a court disposed of a case. It is used for
// display grouping only; no logic branches on it beyond presentation.
type DecisionType string

const (
	DecisionAffirmed DecisionType = "Affirmed"
	DecisionReversed DecisionType = "Reversed"
	DecisionRemanded DecisionType = "Remanded"
	DecisionUnknown  DecisionType = "Unknown"
)

// ParseDecision maps a backend-supplied decision string onto a DecisionType.
// Anything unrecognized collapses to DecisionUnknown.
func ParseDecision(s string) DecisionType {
	switch DecisionType(s) {
	case DecisionAffirmed, DecisionReversed, DecisionRemanded:
		return DecisionType(s)
	default:
		return DecisionUnknown
	}
}

// CitationStatus is the verification verdict for a single citation.
type CitationStatus string

const (
	CitationValid       CitationStatus = "VALID"
	CitationInvalid     CitationStatus = "INVALID"
	CitationNeedsReview CitationStatus = "NEEDS_REVIEW"
)

// ParseCitationStatus maps a backend status string onto a CitationStatus.
// Absent or unrecognized values default to NEEDS_REVIEW so that no other
// value ever reaches the presentation layer.
func ParseCitationStatus(s string) CitationStatus {
	switch CitationStatus(s) {
	case CitationValid, CitationInvalid, CitationNeedsReview:
		return CitationStatus(s)
	default:
		return CitationNeedsReview
	}
}

// Precedent is a lightweight reference to a related case.
type Precedent struct {
	Title string `json:"title"`
	Court string `json:"court"`
	Date  string `json:"date"`
	ID    string `json:"id"`
}

// CaseRecord is the reconciled shape for one legal case. Every field has a
// defined fallback, so rendering code never sees a missing value. The
// normalize package is the only writer.
type CaseRecord struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Court string `json:"court"`

	// DecisionDate keeps the backend-supplied format verbatim. It is only
	// displayed or compared lexicographically, never reparsed.
	DecisionDate string       `json:"decision_date"`
	Decision     DecisionType `json:"decision"`

	CitationCount     int         `json:"citation_count"`
	Citations         []string    `json:"citations,omitempty"`
	RelatedPrecedents []Precedent `json:"related_precedents,omitempty"`

	// Summary is the case summary as free text. When the backend sent a
	// structured summary object, SummaryFields carries its key/value pairs
	// and Summary holds a flattened rendering of them.
	Summary       string            `json:"summary,omitempty"`
	SummaryFields map[string]string `json:"summary_fields,omitempty"`
}

// CitationAnalysis is the verification verdict for a single citation.
// Issues and Recommendations are empty when the backend omitted them or sent
// its "nothing to report" sentinels.
type CitationAnalysis struct {
	CitationText    string         `json:"citation"`
	Status          CitationStatus `json:"status"`
	ConfidenceLevel string         `json:"confidence_level,omitempty"`
	Issues          string         `json:"issues,omitempty"`
	Recommendations string         `json:"recommendations,omitempty"`
}

// VerificationSummary aggregates citation verdict counts.
type VerificationSummary struct {
	Valid                 int     `json:"valid"`
	Invalid               int     `json:"invalid"`
	NeedsReview           int     `json:"needs_review"`
	FormatComplianceScore float64 `json:"format_compliance_score"`
}

// AnalysisResult is one normalized backend response: the case list plus the
// commentary sections the agent pipeline collates around it.
type AnalysisResult struct {
	Cases []CaseRecord `json:"cases"`

	// CitationAnalyses is nil when no structured verification data could be
	// recovered; RawVerification then holds the opaque text for display.
	CitationAnalyses []CitationAnalysis   `json:"citation_analyses,omitempty"`
	Verification     *VerificationSummary `json:"verification,omitempty"`
	RawVerification  string               `json:"raw_verification,omitempty"`

	Summary    string   `json:"summary,omitempty"`
	Issues     []string `json:"issues,omitempty"`
	Arguments  string   `json:"arguments,omitempty"`
	Analytics  string   `json:"analytics,omitempty"`
	Confidence float64  `json:"confidence,omitempty"`

	TotalResults    int   `json:"total_results"`
	ExecutionTimeMS int64 `json:"execution_time_ms,omitempty"`
}

// HistoryEntry is one past query execution owned by the session. The client
// only reads it; it is never mutated or deleted here.
type HistoryEntry struct {
	Query     string `json:"query"`
	Timestamp string `json:"timestamp"`
	ResultRef string `json:"result_ref,omitempty"`
}

// Key is the cache lookup key for this entry.
func (e HistoryEntry) Key() string {
	return e.Query + "\x00" + e.Timestamp
}
