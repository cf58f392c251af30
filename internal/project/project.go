// Package project derives read-only presentations of a record collection.
// Nothing here mutates its input.
package project

import (
	"slices"
	"strings"

	"github.com/haey/sitedata/internal/domain"
)

// Order is a sort direction over the domain's date-like string field.
// Comparison is plain string comparison, so values must be in a
// lexicographically sortable layout (the site uses ISO 8601 throughout).
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// ParseOrder maps user input to an order, defaulting to descending
// (newest first).
func ParseOrder(s string) Order {
	if Order(s) == OrderAsc {
		return OrderAsc
	}
	return OrderDesc
}

// TagCount is one tag-cloud entry.
type TagCount struct {
	Tag   string
	Count int
}

// TagCounts aggregates tag occurrences across the collection. Tags repeated
// within one record count once per occurrence. Entries come back sorted by
// count descending; equal counts are ordered alphabetically.
func TagCounts(records []domain.Record) []TagCount {
	counts := map[string]int{}
	for _, r := range records {
		for _, t := range r.Tags {
			counts[t]++
		}
	}

	out := make([]TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, TagCount{Tag: tag, Count: n})
	}
	slices.SortFunc(out, func(a, b TagCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Tag, b.Tag)
	})
	return out
}

// FilterByTag keeps records whose tag list contains tag exactly. An empty
// tag keeps everything. An empty result is a valid outcome, not an error.
func FilterByTag(records []domain.Record, tag string) []domain.Record {
	if tag == "" {
		return slices.Clone(records)
	}
	out := []domain.Record{}
	for _, r := range records {
		if slices.Contains(r.Tags, tag) {
			out = append(out, r)
		}
	}
	return out
}

// SortRecordsByDate returns the records ordered by their date field.
func SortRecordsByDate(records []domain.Record, order Order) []domain.Record {
	return sortBy(records, func(r domain.Record) string { return r.Date }, order)
}

// SortEventsByStart returns the events ordered by their start field.
func SortEventsByStart(events []domain.Event, order Order) []domain.Event {
	return sortBy(events, func(e domain.Event) string { return e.Start }, order)
}

func sortBy[T any](in []T, key func(T) string, order Order) []T {
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b T) int {
		c := strings.Compare(key(a), key(b))
		if order == OrderDesc {
			return -c
		}
		return c
	})
	return out
}
