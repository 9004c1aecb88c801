package llm

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

var fenceMarker = regexp.MustCompile("```(?:json)?")

// ExtractJSON recovers a JSON object from a free-text model response. The
// reasoning model is not contract-bound to emit strict JSON, so extraction
// works through a fallback chain:
//
//  1. strip markdown code-fence markers
//  2. take the span from the first '{' to the last '}', collapse literal
//     newlines inside it (models often break string values across lines),
//     and parse it strictly
//  3. repair the cleaned text with jsonrepair and parse the result,
//     tolerating single quotes, trailing commas, and similar near-JSON
//
// Returns nil when no object can be recovered. Never panics.
func ExtractJSON(raw string) map[string]interface{} {
	cleaned := strings.TrimSpace(fenceMarker.ReplaceAllString(raw, ""))

	if span, ok := braceSpan(cleaned); ok {
		flattened := strings.NewReplacer("\n", " ", "\r", "").Replace(span)
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(flattened), &obj); err == nil {
			return obj
		}
	}

	repaired, err := jsonrepair.JSONRepair(cleaned)
	if err != nil {
		return nil
	}
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(repaired), &obj); err != nil {
		return nil
	}
	return obj
}

// braceSpan returns the greedy leftmost-to-rightmost {...} span of text.
func braceSpan(text string) (string, bool) {
	start := strings.Index(text, "{")
	if start < 0 {
		return "", false
	}
	end := strings.LastIndex(text, "}")
	if end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// TruncateRaw shortens an unparseable raw response for inclusion in a
// fallback reason, marking elided content with an ellipsis.
func TruncateRaw(raw string) string {
	if len(raw) > 200 {
		return raw[:200] + "..."
	}
	return raw
}

// StringField reads a string value out of a generic extracted object,
// falling back to def when the key is missing or not a string.
func StringField(obj map[string]interface{}, key, def string) string {
	if v, ok := obj[key].(string); ok {
		return v
	}
	return def
}
