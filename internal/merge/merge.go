// Package merge reconciles the shared collection with the device-local draft.
package merge

import "github.com/haey/sitedata/internal/domain"

// View selects which side of the shared/draft pair a projection reads.
type View string

const (
	ViewShared View = "shared"
	ViewDraft  View = "draft"
	ViewMerged View = "merged"
)

// ParseView maps user input to a view mode, defaulting to merged.
func ParseView(s string) View {
	switch View(s) {
	case ViewShared, ViewDraft:
		return View(s)
	default:
		return ViewMerged
	}
}

// Merge unions shared and draft by record id, draft winning on collision.
// Output keeps insertion order: shared records in place (replaced by their
// draft version when ids collide), draft-only records appended. A duplicate
// id later in either input replaces the earlier occurrence.
func Merge[T domain.Keyed](shared, draft []T) []T {
	out := make([]T, 0, len(shared)+len(draft))
	index := make(map[string]int, len(shared)+len(draft))

	insert := func(r T) {
		if i, ok := index[r.Key()]; ok {
			out[i] = r
			return
		}
		index[r.Key()] = len(out)
		out = append(out, r)
	}

	for _, r := range shared {
		insert(r)
	}
	for _, r := range draft {
		insert(r)
	}
	return out
}

// Select resolves a view mode against the shared/draft pair.
func Select[T domain.Keyed](view View, shared, draft []T) []T {
	switch view {
	case ViewShared:
		return shared
	case ViewDraft:
		return draft
	default:
		return Merge(shared, draft)
	}
}
