package app

import (
	"os"
	"path/filepath"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/haey/sitedata/internal/bridge"
	"github.com/haey/sitedata/internal/domain"
	"github.com/haey/sitedata/internal/loader"
	"github.com/haey/sitedata/internal/merge"
	"github.com/haey/sitedata/internal/project"
	"github.com/haey/sitedata/internal/store"
)

// Calendar is the work-calendar tool: events over the shared calendar
// document plus the local draft overlay.
type Calendar struct {
	mu     sync.Mutex
	shared []domain.Event

	loader *loader.Client
	store  *store.Store
	log    *zap.SugaredLogger
	url    string

	Sort project.Order
	View merge.View
}

// NewCalendar creates the calendar tool.
func NewCalendar(l *loader.Client, s *store.Store, log *zap.SugaredLogger, url string) *Calendar {
	return &Calendar{
		shared: []domain.Event{},
		loader: l,
		store:  s,
		log:    log,
		url:    url,
		Sort:   project.OrderAsc,
		View:   merge.ViewMerged,
	}
}

// Reload replaces the shared collection from the canonical document, falling
// back to empty on failure. Overlapping reloads are serialized.
func (c *Calendar) Reload() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	events, err := c.loader.LoadEvents(c.url)
	if err != nil {
		c.log.Warnw("shared calendar load failed", "url", c.url, "error", err)
		c.shared = []domain.Event{}
		return err
	}
	c.shared = events
	return nil
}

// Shared returns the last-loaded shared collection.
func (c *Calendar) Shared() []domain.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.shared)
}

// Draft returns the device-local draft collection.
func (c *Calendar) Draft() []domain.Event {
	return store.Draft[domain.Event](c.store, domain.CalendarKey)
}

// Events is the current projection: view mode, then start-time sort.
func (c *Calendar) Events() []domain.Event {
	source := merge.Select(c.View, c.Shared(), c.Draft())
	return project.SortEventsByStart(source, c.Sort)
}

// EventInput is the editable surface of one calendar event.
type EventInput struct {
	ID    string // empty creates a new event
	Title string
	Start string
	End   string // empty defaults to start + 30 minutes
	Memo  string
}

// Save writes an event into the draft, replacing any draft event with the
// same id. A shared id gets a draft overlay that shadows it on merge. An end
// earlier than the start is dropped and re-derived, as on load.
func (c *Calendar) Save(in EventInput) (domain.Event, error) {
	end := in.End
	if end != "" && end < in.Start {
		end = ""
	}
	ev := domain.Event{
		ID:    in.ID,
		Title: in.Title,
		Start: in.Start,
		End:   domain.NormalizeEnd(in.Start, end),
		Memo:  in.Memo,
	}
	if ev.ID == "" {
		ev.ID = domain.NewID()
	}

	draft := slices.DeleteFunc(c.Draft(), func(e domain.Event) bool { return e.ID == ev.ID })
	draft = append(draft, ev)

	return ev, store.SaveDraft(c.store, domain.CalendarKey, draft)
}

// Delete removes an event from the draft. The shared document is never touched.
func (c *Calendar) Delete(id string) (bool, error) {
	draft := c.Draft()
	next := slices.DeleteFunc(draft, func(e domain.Event) bool { return e.ID == id })
	if len(next) == len(draft) {
		return false, nil
	}
	return true, store.SaveDraft(c.store, domain.CalendarKey, next)
}

// ClearDraft discards every local edit on this device.
func (c *Calendar) ClearDraft() error {
	return c.store.Clear(domain.CalendarKey)
}

// Export writes the merged calendar document into dir and returns the path.
func (c *Calendar) Export(dir string) (string, error) {
	data, err := bridge.ExportEvents(c.Shared(), c.Draft())
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, bridge.Filename(domain.CalendarKey))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	c.log.Infow("exported merged calendar", "path", path)
	return path, nil
}

// Import replaces the entire draft with the given document, all-or-nothing.
func (c *Calendar) Import(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	events, err := bridge.ImportEvents(data)
	if err != nil {
		return 0, err
	}
	if err := store.SaveDraft(c.store, domain.CalendarKey, events); err != nil {
		return 0, err
	}
	return len(events), nil
}
