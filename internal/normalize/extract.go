package normalize

import (
	"encoding/json"
	"strings"
)

const (
	jsonFenceOpen = "```json"
	fenceClose    = "```"
)

// ExtractObject locates and parses a JSON object embedded in free text.
// Agent output often wraps its JSON in explanatory prose, so extraction is
// tried in a fixed priority order:
//
//  1. the interior of a ```json fenced block
//  2. the substring from the first '{' to the last '}'
//
// A fenced block, when present, is authoritative: if its interior does not
// parse, extraction is abandoned rather than falling through and capturing
// surrounding prose. Failure is reported as (nil, false), never an error or
// panic, and a parse either consumes the whole candidate or nothing.
func ExtractObject(text string) (map[string]interface{}, bool) {
	if body, found := fencedBlock(text); found {
		return parseObject(body)
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	return parseObject(text[start : end+1])
}

// fencedBlock returns the interior of the first ```json fenced block.
func fencedBlock(text string) (string, bool) {
	open := strings.Index(text, jsonFenceOpen)
	if open < 0 {
		return "", false
	}
	body := text[open+len(jsonFenceOpen):]
	end := strings.Index(body, fenceClose)
	if end < 0 {
		return "", false
	}
	return body[:end], true
}

// parseObject parses a candidate substring as a single JSON object.
func parseObject(candidate string) (map[string]interface{}, bool) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(candidate)), &obj); err != nil {
		return nil, false
	}
	return obj, true
}
