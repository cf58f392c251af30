package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDNonEmptyAndUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := NewID()
		assert.NotEmpty(t, id)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestNormalizeRecordDefaults(t *testing.T) {
	r := NormalizeRecord(map[string]any{})

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "", r.Date)
	assert.Equal(t, "", r.Title)
	assert.Equal(t, []string{}, r.Tags)
	assert.Equal(t, "", r.Body)
	assert.Positive(t, r.CreatedAt)
	assert.Positive(t, r.UpdatedAt)
}

func TestNormalizeRecordGeneratesDistinctIDs(t *testing.T) {
	a := NormalizeRecord(map[string]any{})
	b := NormalizeRecord(map[string]any{})
	assert.NotEqual(t, a.ID, b.ID)
}

func TestNormalizeRecordCoercion(t *testing.T) {
	r := NormalizeRecord(map[string]any{
		"id":        float64(42),
		"date":      "2024-03-01",
		"title":     "정리",
		"tags":      []any{" 휴가 ", float64(7), "", "회의"},
		"body":      nil,
		"createdAt": float64(1700000000000),
		"updatedAt": "1700000000001",
	})

	assert.Equal(t, "42", r.ID)
	assert.Equal(t, "2024-03-01", r.Date)
	assert.Equal(t, []string{"휴가", "7", "회의"}, r.Tags)
	assert.Equal(t, "", r.Body)
	assert.Equal(t, int64(1700000000000), r.CreatedAt)
	assert.Equal(t, int64(1700000000001), r.UpdatedAt)
}

func TestNormalizeRecordNonArrayTags(t *testing.T) {
	r := NormalizeRecord(map[string]any{"id": "a", "tags": "not-a-list"})
	assert.Equal(t, []string{}, r.Tags)
}

func TestNormalizeRecordNotAnObject(t *testing.T) {
	r := NormalizeRecord("garbage")
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, []string{}, r.Tags)
}

func TestNormalizeRecordIdempotent(t *testing.T) {
	first := NormalizeRecord(map[string]any{
		"id":    "stable",
		"date":  "2024-01-02",
		"title": "t",
		"tags":  []any{"a", "b"},
		"body":  "b",
	})

	raw, err := json.Marshal(first)
	require.NoError(t, err)
	var decoded any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, first, NormalizeRecord(decoded))
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, ParseTags(" a , b ,, c "))
	assert.Equal(t, []string{}, ParseTags(""))
	assert.Equal(t, []string{}, ParseTags(" , ,"))
}

func TestParseTagsCapped(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "x,"
	}
	assert.Len(t, ParseTags(long), 20)
}

func TestNormalizeEnd(t *testing.T) {
	assert.Equal(t, "2024-01-01T10:30", NormalizeEnd("2024-01-01T10:00", ""))
	assert.Equal(t, "2024-01-01T11:00", NormalizeEnd("2024-01-01T10:00", "2024-01-01T11:00"))
	assert.Equal(t, "", NormalizeEnd("not-a-time", ""))
	assert.Equal(t, "2024-01-02T00:15", NormalizeEnd("2024-01-01T23:45", ""))
}

func TestNormalizeEventDefaults(t *testing.T) {
	e := NormalizeEvent(map[string]any{"start": "2024-01-01T10:00"})

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "2024-01-01T10:00", e.Start)
	assert.Equal(t, "2024-01-01T10:30", e.End)
	assert.Equal(t, "", e.Memo)
}

func TestNormalizeEventEndBeforeStart(t *testing.T) {
	e := NormalizeEvent(map[string]any{
		"id":    "e1",
		"start": "2024-01-01T10:00",
		"end":   "2024-01-01T09:00",
	})
	assert.Equal(t, "2024-01-01T10:30", e.End)
}

func TestNormalizeEventIdempotent(t *testing.T) {
	first := NormalizeEvent(map[string]any{
		"id":    "e2",
		"title": "회의",
		"start": "2024-05-01T09:00",
		"end":   "2024-05-01T10:00",
		"memo":  "m",
	})

	raw, err := json.Marshal(first)
	require.NoError(t, err)
	var decoded any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, first, NormalizeEvent(decoded))
}
