// Package normalize reconciles the structurally inconsistent payloads
// returned by the VeritasAI agent pipeline into the canonical record model.
// Different agent versions emit different field names for the same data, and
// citation verification arrives either pre-parsed or as free text with JSON
// buried inside it. All of that variance is absorbed here; nothing downstream
// ever sees a raw payload.
package normalize

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"veritas-console/internal/record"
)

// Sentinels the citation agent emits when it has nothing to report. They are
// treated as absent rather than displayed.
const (
	noIssues          = "None"
	noRecommendations = "None needed."
)

// accessor attempts to read one candidate location for a canonical field.
type accessor func(m map[string]interface{}) (string, bool)

// fieldChain is an ordered list of accessors for one canonical field,
// applied first-match-wins. The order is fixed per field and must not be
// reshuffled: agent versions emit different subsets of these locations and
// the earlier ones are the more authoritative.
type fieldChain []accessor

// resolve walks the chain and returns the first populated value, or the
// fallback when no accessor matches.
func (c fieldChain) resolve(m map[string]interface{}, fallback string) string {
	for _, get := range c {
		if v, ok := get(m); ok && v != "" {
			return v
		}
	}
	return fallback
}

// field reads a top-level field coerced to string.
func field(name string) accessor {
	return func(m map[string]interface{}) (string, bool) {
		return toString(m[name])
	}
}

// summaryField reads a key out of a structured summary object, when the
// summary is an object rather than plain text.
func summaryField(name string) accessor {
	return func(m map[string]interface{}) (string, bool) {
		summary, ok := m["summary"].(map[string]interface{})
		if !ok {
			return "", false
		}
		return toString(summary[name])
	}
}

// firstPrecedentDate reads the date of the first related precedent. Some
// agent versions omit the top-level date but still carry it there.
func firstPrecedentDate() accessor {
	return func(m map[string]interface{}) (string, bool) {
		precedents, ok := m["related_precedents"].([]interface{})
		if !ok || len(precedents) == 0 {
			return "", false
		}
		first, ok := precedents[0].(map[string]interface{})
		if !ok {
			return "", false
		}
		return toString(first["date"])
	}
}

// Resolution chains for the ambiguous case fields. Kept as package data so
// each chain is unit-testable on its own.
var (
	caseIDChain    = fieldChain{field("case_id"), field("id")}
	caseTitleChain = fieldChain{field("title"), field("case_name"), summaryField("case")}
	caseCourtChain = fieldChain{field("court"), summaryField("court")}
	caseDateChain  = fieldChain{field("date"), firstPrecedentDate()}
	decisionChain  = fieldChain{field("decision"), summaryField("decision")}
)

// Fallback literals for fields with no populated candidate.
const (
	unknownTitle = "Unknown Case"
	unknownCourt = "Unknown Court"
)

// Normalize converts a raw backend response into an AnalysisResult. It never
// fails: a payload that does not parse at all yields an empty result, and
// individually malformed sections degrade to their documented defaults.
func Normalize(raw []byte) *record.AnalysisResult {
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return &record.AnalysisResult{Cases: []record.CaseRecord{}}
	}
	return NormalizePayload(payload)
}

// NormalizePayload normalizes an already-decoded backend response.
func NormalizePayload(payload map[string]interface{}) *record.AnalysisResult {
	res := &record.AnalysisResult{
		Cases: NormalizeCases(payload["cases"]),
	}

	if s, ok := toString(payload["summary"]); ok {
		res.Summary = s
	} else if obj, ok := payload["summary"].(map[string]interface{}); ok {
		res.Summary = flattenSummary(obj)
	}
	res.Issues = toStringSlice(payload["issues"])
	res.Arguments, _ = toString(payload["arguments"])
	res.Analytics, _ = toString(payload["analytics"])
	res.Confidence, _ = toFloat(payload["confidence"])

	if n, ok := toInt(payload["total_results"]); ok {
		res.TotalResults = n
	} else {
		res.TotalResults = len(res.Cases)
	}
	if n, ok := toInt(payload["execution_time_ms"]); ok {
		res.ExecutionTimeMS = int64(n)
	}

	res.CitationAnalyses, res.Verification, res.RawVerification = normalizeVerification(payload["citations"])
	return res
}

// NormalizeCases converts the backend case list into canonical records.
// Entries that are not objects are skipped; everything else normalizes, with
// a generated ordinal ID when the backend omitted one.
func NormalizeCases(v interface{}) []record.CaseRecord {
	items, ok := v.([]interface{})
	if !ok {
		return []record.CaseRecord{}
	}

	cases := make([]record.CaseRecord, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		cases = append(cases, normalizeCase(m, i))
	}
	return cases
}

// normalizeCase reconciles one raw case object. ordinal is the zero-based
// input position, used only for the generated fallback ID.
func normalizeCase(m map[string]interface{}, ordinal int) record.CaseRecord {
	c := record.CaseRecord{
		ID:           caseIDChain.resolve(m, fmt.Sprintf("case-%d", ordinal+1)),
		Title:        caseTitleChain.resolve(m, unknownTitle),
		Court:        caseCourtChain.resolve(m, unknownCourt),
		DecisionDate: caseDateChain.resolve(m, ""),
		Decision:     record.ParseDecision(decisionChain.resolve(m, "")),
	}

	if n, ok := toInt(m["citations_count"]); ok && n >= 0 {
		c.CitationCount = n
	}
	c.Citations = toStringSlice(m["legal_citations"])
	c.RelatedPrecedents = normalizePrecedents(m["related_precedents"])

	if s, ok := toString(m["summary"]); ok {
		c.Summary = s
	} else if obj, ok := m["summary"].(map[string]interface{}); ok {
		c.SummaryFields = summaryFields(obj)
		c.Summary = flattenSummary(obj)
	}
	return c
}

func normalizePrecedents(v interface{}) []record.Precedent {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}

	var precedents []record.Precedent
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		p := record.Precedent{}
		p.Title, _ = toString(m["title"])
		p.Court, _ = toString(m["court"])
		p.Date, _ = toString(m["date"])
		p.ID, _ = toString(m["id"])
		precedents = append(precedents, p)
	}
	return precedents
}

// normalizeVerification reconciles the citation verification section. A
// pre-parsed object wins; otherwise the raw text field goes through the
// embedded-JSON extractor; otherwise analyses are nil and the raw text is
// kept for opaque display.
func normalizeVerification(v interface{}) ([]record.CitationAnalysis, *record.VerificationSummary, string) {
	m, ok := v.(map[string]interface{})
	if !ok {
		// Some agent versions put the whole verification report in a string.
		if text, ok := toString(v); ok {
			return analysesFromText(text)
		}
		return nil, nil, ""
	}

	rawText, _ := toString(m["raw_result"])
	if rawText == "" {
		rawText, _ = toString(m["verification_details"])
	}

	if parsed, ok := m["parsed_data"].(map[string]interface{}); ok {
		analyses, summary := analysesFromObject(parsed)
		if analyses != nil {
			return analyses, summary, rawText
		}
	}
	if rawText != "" {
		return analysesFromText(rawText)
	}
	// The verification object itself may already be the parsed report.
	analyses, summary := analysesFromObject(m)
	return analyses, summary, rawText
}

func analysesFromText(text string) ([]record.CitationAnalysis, *record.VerificationSummary, string) {
	obj, ok := ExtractObject(text)
	if !ok {
		return nil, nil, text
	}
	analyses, summary := analysesFromObject(obj)
	if analyses == nil {
		return nil, nil, text
	}
	return analyses, summary, text
}

// analysesFromObject reads a parsed verification report of the agreed shape
// (overall_verification_summary + individual_citation_analysis). A nil
// analyses slice means the object was not a verification report.
func analysesFromObject(obj map[string]interface{}) ([]record.CitationAnalysis, *record.VerificationSummary) {
	items, ok := obj["individual_citation_analysis"].([]interface{})
	if !ok {
		return nil, nil
	}

	analyses := make([]record.CitationAnalysis, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		text, _ := toString(m["citation"])
		if text == "" {
			continue
		}
		status, _ := toString(m["status"])
		a := record.CitationAnalysis{
			CitationText: text,
			Status:       record.ParseCitationStatus(status),
		}
		a.ConfidenceLevel, _ = toString(m["confidence_level"])
		if issues, ok := toString(m["issues"]); ok && issues != noIssues {
			a.Issues = issues
		}
		if rec, ok := toString(m["recommendations"]); ok && rec != noRecommendations {
			a.Recommendations = rec
		}
		analyses = append(analyses, a)
	}

	var summary *record.VerificationSummary
	if s, ok := obj["overall_verification_summary"].(map[string]interface{}); ok {
		summary = &record.VerificationSummary{}
		summary.Valid, _ = toInt(s["valid"])
		summary.Invalid, _ = toInt(s["invalid"])
		summary.NeedsReview, _ = toInt(s["needs_review"])
		summary.FormatComplianceScore, _ = toFloat(s["format_compliance_score"])
	}
	return analyses, summary
}

// summaryFields coerces a structured summary object into flat key/value
// pairs. Nested entity lists become comma-joined strings.
func summaryFields(obj map[string]interface{}) map[string]string {
	fields := make(map[string]string, len(obj))
	for k, v := range obj {
		if s, ok := toString(v); ok {
			fields[k] = s
			continue
		}
		if entities, ok := v.(map[string]interface{}); ok {
			for typ, vals := range entities {
				fields[typ] = joinStrings(toStringSlice(vals))
			}
		}
	}
	return fields
}

// flattenSummary renders a structured summary object as display text with a
// deterministic key order.
func flattenSummary(obj map[string]interface{}) string {
	fields := summaryFields(obj)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := ""
	for _, k := range keys {
		if out != "" {
			out += "\n"
		}
		out += k + ": " + fields[k]
	}
	return out
}

func joinStrings(values []string) string {
	out := ""
	for i, v := range values {
		if i > 0 {
			out += ", "
		}
		out += v
	}
	return out
}

// toString coerces scalar JSON values to a display string.
func toString(v interface{}) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(s), true
	default:
		return "", false
	}
}

// toInt coerces numeric JSON values (and numeric strings) to int.
func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case string:
		parsed, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// toFloat coerces numeric JSON values to float64.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func toStringSlice(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := toString(item); ok {
			out = append(out, s)
		}
	}
	return out
}
