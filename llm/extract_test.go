package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONFencedRoundTrip(t *testing.T) {
	obj := ExtractJSON("```json\n{\"a\": 1}\n```")
	require.NotNil(t, obj)
	assert.Equal(t, float64(1), obj["a"])
}

func TestExtractJSONBareFence(t *testing.T) {
	obj := ExtractJSON("```\n{\"Violates\": \"NO\"}\n```")
	require.NotNil(t, obj)
	assert.Equal(t, "NO", obj["Violates"])
}

func TestExtractJSONEmbeddedNewlines(t *testing.T) {
	raw := "{\"Reason\": \"first line\nsecond line\"}"
	obj := ExtractJSON(raw)
	require.NotNil(t, obj)
	assert.Equal(t, "first line second line", obj["Reason"])
}

func TestExtractJSONSurroundingProse(t *testing.T) {
	raw := "Sure, here is the analysis you asked for:\n{\"Violates\": \"YES\", \"Reason\": \"conflicts with the act\"}\nLet me know if you need more."
	obj := ExtractJSON(raw)
	require.NotNil(t, obj)
	assert.Equal(t, "YES", obj["Violates"])
}

func TestExtractJSONPlainProseReturnsNil(t *testing.T) {
	assert.Nil(t, ExtractJSON("I cannot comply with this request."))
}

func TestExtractJSONEmptyInput(t *testing.T) {
	assert.Nil(t, ExtractJSON(""))
	assert.Nil(t, ExtractJSON("   \n  "))
}

func TestExtractJSONRepairsNearJSON(t *testing.T) {
	// Single quotes and a trailing comma, the two most common model slips.
	obj := ExtractJSON("{'Violates': 'NO', 'Reason': 'fine',}")
	require.NotNil(t, obj)
	assert.Equal(t, "NO", obj["Violates"])
	assert.Equal(t, "fine", obj["Reason"])
}

func TestExtractJSONNestedObject(t *testing.T) {
	obj := ExtractJSON("{\"good_clauses\": [{\"clause\": \"c\", \"reason\": \"r\"}]}")
	require.NotNil(t, obj)
	list, ok := obj["good_clauses"].([]interface{})
	require.True(t, ok)
	assert.Len(t, list, 1)
}

func TestTruncateRaw(t *testing.T) {
	short := "short response"
	assert.Equal(t, short, TruncateRaw(short))

	long := strings.Repeat("x", 250)
	truncated := TruncateRaw(long)
	assert.Len(t, truncated, 203)
	assert.True(t, strings.HasSuffix(truncated, "..."))
}

func TestStringField(t *testing.T) {
	obj := map[string]interface{}{"name": "value", "count": float64(3)}
	assert.Equal(t, "value", StringField(obj, "name", "def"))
	assert.Equal(t, "def", StringField(obj, "missing", "def"))
	assert.Equal(t, "def", StringField(obj, "count", "def"))
}
