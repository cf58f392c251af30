// Package bridge converts between in-memory collections and the JSON
// documents that cross the system boundary: the exported merged file the
// editor republishes by hand, and the uploaded file that restores a draft.
package bridge

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/haey/sitedata/internal/domain"
	"github.com/haey/sitedata/internal/merge"
	"github.com/haey/sitedata/internal/project"
)

// ErrNotArray marks an imported document that parsed but was not a JSON array.
var ErrNotArray = errors.New("imported document is not a JSON array")

// ImportError is the failure of a draft import. Import is all-or-nothing:
// when it fails the existing draft is left untouched.
type ImportError struct {
	Err error
}

func (e *ImportError) Error() string { return fmt.Sprintf("import: %v", e.Err) }

func (e *ImportError) Unwrap() error { return e.Err }

// Filename is the fixed export filename convention for a domain key.
func Filename(key string) string {
	return key + ".merged.json"
}

// ExportRecords produces the merged archive document: shared and draft
// merged, sorted by date ascending, pretty-printed. The output is meant to
// replace the canonical shared file verbatim.
func ExportRecords(shared, draft []domain.Record) ([]byte, error) {
	merged := project.SortRecordsByDate(merge.Merge(shared, draft), project.OrderAsc)
	return marshalDocument(merged)
}

// ExportEvents produces the merged calendar document, sorted by start.
func ExportEvents(shared, draft []domain.Event) ([]byte, error) {
	merged := project.SortEventsByStart(merge.Merge(shared, draft), project.OrderAsc)
	return marshalDocument(merged)
}

// ImportRecords parses an uploaded archive document into a draft collection.
// Every element passes through the normalizer; the caller replaces the whole
// draft with the result.
func ImportRecords(data []byte) ([]domain.Record, error) {
	elems, err := importArray(data)
	if err != nil {
		return nil, err
	}
	records := make([]domain.Record, len(elems))
	for i, el := range elems {
		records[i] = domain.NormalizeRecord(el)
	}
	return records, nil
}

// ImportEvents parses an uploaded calendar document into a draft collection.
func ImportEvents(data []byte) ([]domain.Event, error) {
	elems, err := importArray(data)
	if err != nil {
		return nil, err
	}
	events := make([]domain.Event, len(elems))
	for i, el := range elems {
		events[i] = domain.NormalizeEvent(el)
	}
	return events, nil
}

func importArray(data []byte) ([]any, error) {
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, &ImportError{Err: fmt.Errorf("parse: %w", err)}
	}
	arr, ok := payload.([]any)
	if !ok {
		return nil, &ImportError{Err: ErrNotArray}
	}
	return arr, nil
}

func marshalDocument(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return append(data, '\n'), nil
}
