// Package app holds the per-tool application state the original kept in
// ambient globals: the last-loaded shared collection, the device-local draft,
// and the current selection (filter, sort, view). It is UI-free; cmd wires it
// to the terminal.
package app

import (
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/haey/sitedata/internal/bridge"
	"github.com/haey/sitedata/internal/domain"
	"github.com/haey/sitedata/internal/loader"
	"github.com/haey/sitedata/internal/merge"
	"github.com/haey/sitedata/internal/project"
	"github.com/haey/sitedata/internal/store"
)

// Archive is the archive tool: tag-indexed records over the shared archive
// document plus the local draft overlay.
type Archive struct {
	mu     sync.Mutex
	shared []domain.Record

	loader *loader.Client
	store  *store.Store
	log    *zap.SugaredLogger
	url    string

	// Selection state for projections.
	Filter string
	Sort   project.Order
	View   merge.View
}

// NewArchive creates the archive tool. The shared collection starts empty
// until Reload succeeds; the tool works draft-only without it.
func NewArchive(l *loader.Client, s *store.Store, log *zap.SugaredLogger, url string) *Archive {
	return &Archive{
		shared: []domain.Record{},
		loader: l,
		store:  s,
		log:    log,
		url:    url,
		Sort:   project.OrderDesc,
		View:   merge.ViewMerged,
	}
}

// Reload replaces the shared collection from the canonical document.
// Failure falls back to an empty shared collection and is reported, leaving
// the tool usable in draft-only mode. Overlapping reloads are serialized.
func (a *Archive) Reload() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	records, err := a.loader.LoadRecords(a.url)
	if err != nil {
		a.log.Warnw("shared archive load failed", "url", a.url, "error", err)
		a.shared = []domain.Record{}
		return err
	}
	a.shared = records
	return nil
}

// Shared returns the last-loaded shared collection.
func (a *Archive) Shared() []domain.Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.shared)
}

// Draft returns the device-local draft collection.
func (a *Archive) Draft() []domain.Record {
	return store.Draft[domain.Record](a.store, domain.ArchiveKey)
}

// Records is the current projection: view mode, then tag filter, then date
// sort. An empty result is a valid outcome.
func (a *Archive) Records() []domain.Record {
	source := merge.Select(a.View, a.Shared(), a.Draft())
	return project.SortRecordsByDate(project.FilterByTag(source, a.Filter), a.Sort)
}

// TagCloud aggregates tag counts over the current view mode.
func (a *Archive) TagCloud() []project.TagCount {
	return project.TagCounts(merge.Select(a.View, a.Shared(), a.Draft()))
}

// RecordInput is the editable surface of one archive record.
type RecordInput struct {
	ID    string // empty creates a new record
	Date  string
	Title string
	Tags  []string
	Body  string
}

// Save writes a record into the draft. An empty id creates a new record; a
// known draft id updates it in place; an id that only exists in the shared
// collection gets a draft overlay that shadows it on merge.
func (a *Archive) Save(in RecordInput) (domain.Record, error) {
	now := time.Now().UnixMilli()
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	draft := a.Draft()
	var rec domain.Record

	idx := -1
	if in.ID != "" {
		idx = slices.IndexFunc(draft, func(r domain.Record) bool { return r.ID == in.ID })
	}
	if idx >= 0 {
		rec = draft[idx]
		rec.Date, rec.Title, rec.Tags, rec.Body = in.Date, in.Title, tags, in.Body
		rec.UpdatedAt = now
		draft[idx] = rec
	} else {
		rec = domain.Record{
			ID:        in.ID,
			Date:      in.Date,
			Title:     in.Title,
			Tags:      tags,
			Body:      in.Body,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if rec.ID == "" {
			rec.ID = domain.NewID()
		}
		draft = append(draft, rec)
	}

	return rec, store.SaveDraft(a.store, domain.ArchiveKey, draft)
}

// Delete removes a record from the draft. The shared document is never
// touched; a shared record re-appears on merge once its draft overlay is gone.
func (a *Archive) Delete(id string) (bool, error) {
	draft := a.Draft()
	next := slices.DeleteFunc(draft, func(r domain.Record) bool { return r.ID == id })
	if len(next) == len(draft) {
		return false, nil
	}
	return true, store.SaveDraft(a.store, domain.ArchiveKey, next)
}

// ClearDraft discards every local edit on this device.
func (a *Archive) ClearDraft() error {
	return a.store.Clear(domain.ArchiveKey)
}

// Export writes the merged document into dir under the fixed filename and
// returns the written path. The file is meant to replace the canonical
// shared document by hand.
func (a *Archive) Export(dir string) (string, error) {
	data, err := bridge.ExportRecords(a.Shared(), a.Draft())
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, bridge.Filename(domain.ArchiveKey))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	a.log.Infow("exported merged archive", "path", path)
	return path, nil
}

// Import replaces the entire draft with the given document. All-or-nothing:
// a malformed document leaves the draft untouched.
func (a *Archive) Import(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	records, err := bridge.ImportRecords(data)
	if err != nil {
		return 0, err
	}
	if err := store.SaveDraft(a.store, domain.ArchiveKey, records); err != nil {
		return 0, err
	}
	return len(records), nil
}
