package domain

import (
	"math"
	"strconv"
	"strings"
)

// Domain keys name the two shared documents the site publishes. They double as
// draft-store keys and as the basename of the exported merged file.
const (
	ArchiveKey  = "archive-records"
	CalendarKey = "work-calendar-events"
)

// Keyed is anything addressable by its stable record id.
type Keyed interface {
	Key() string
}

const maxTags = 20

// ParseTags splits comma-separated tag input into clean tag values.
func ParseTags(text string) []string {
	tags := []string{}
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tags = append(tags, part)
		if len(tags) == maxTags {
			break
		}
	}
	return tags
}

// asString coerces a decoded JSON value to a string. The shared documents are
// hand-edited, so ids and dates occasionally arrive as bare numbers.
func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		if s == math.Trunc(s) && math.Abs(s) < 1e15 {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}

// asMillis coerces a decoded JSON value to an epoch-millisecond timestamp,
// falling back when the value is missing or not a number.
func asMillis(v any, fallback int64) int64 {
	switch n := v.(type) {
	case float64:
		if n > 0 {
			return int64(n)
		}
	case string:
		if i, err := strconv.ParseInt(n, 10, 64); err == nil && i > 0 {
			return i
		}
	}
	return fallback
}

func asTags(v any) []string {
	tags := []string{}
	arr, ok := v.([]any)
	if !ok {
		return tags
	}
	for _, el := range arr {
		t := strings.TrimSpace(asString(el))
		if t == "" {
			continue
		}
		tags = append(tags, t)
	}
	return tags
}
