package app

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/haey/sitedata/internal/bridge"
	"github.com/haey/sitedata/internal/loader"
	"github.com/haey/sitedata/internal/merge"
	"github.com/haey/sitedata/internal/project"
	"github.com/haey/sitedata/internal/store"
)

// sharedServer serves whatever body the test puts in payload.
func sharedServer(t *testing.T, payload *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if *payload == "" {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(*payload))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newArchive(t *testing.T, url string) *Archive {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "drafts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	log := zap.NewNop().Sugar()
	return NewArchive(loader.New(log), s, log, url)
}

func TestArchiveReloadAndMerge(t *testing.T) {
	payload := `[
		{"id":"s1","date":"2024-01-01","title":"shared one","tags":["회의"]},
		{"id":"s2","date":"2024-02-01","title":"shared two","tags":["휴가"]}
	]`
	srv := sharedServer(t, &payload)
	a := newArchive(t, srv.URL+"/archive.json")

	require.NoError(t, a.Reload())
	assert.Len(t, a.Shared(), 2)

	// edit a shared record: the draft overlay wins on merge
	_, err := a.Save(RecordInput{ID: "s1", Date: "2024-01-01", Title: "edited", Tags: []string{"회의"}})
	require.NoError(t, err)

	a.Sort = project.OrderAsc
	records := a.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "edited", records[0].Title)
}

func TestArchiveLoadFailureFallsBackToDraftOnly(t *testing.T) {
	payload := ""
	srv := sharedServer(t, &payload)
	a := newArchive(t, srv.URL+"/archive.json")

	_, err := a.Save(RecordInput{Title: "local only", Tags: []string{"draft"}})
	require.NoError(t, err)

	err = a.Reload()
	var le *loader.LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, http.StatusServiceUnavailable, le.Status)

	// shared fell back to empty; the tool keeps working on the draft
	assert.Empty(t, a.Shared())
	records := a.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "local only", records[0].Title)
}

func TestArchiveSaveNewGeneratesID(t *testing.T) {
	payload := `[]`
	srv := sharedServer(t, &payload)
	a := newArchive(t, srv.URL+"/archive.json")

	rec, err := a.Save(RecordInput{Date: "2024-05-01", Title: "new"})
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, []string{}, rec.Tags)
	assert.Positive(t, rec.CreatedAt)
	assert.Len(t, a.Draft(), 1)
}

func TestArchiveSaveUpdatesDraftInPlace(t *testing.T) {
	payload := `[]`
	srv := sharedServer(t, &payload)
	a := newArchive(t, srv.URL+"/archive.json")

	rec, err := a.Save(RecordInput{Title: "v1"})
	require.NoError(t, err)
	updated, err := a.Save(RecordInput{ID: rec.ID, Title: "v2"})
	require.NoError(t, err)

	assert.Equal(t, rec.ID, updated.ID)
	assert.Equal(t, rec.CreatedAt, updated.CreatedAt)

	draft := a.Draft()
	require.Len(t, draft, 1)
	assert.Equal(t, "v2", draft[0].Title)
}

func TestArchiveDelete(t *testing.T) {
	payload := `[]`
	srv := sharedServer(t, &payload)
	a := newArchive(t, srv.URL+"/archive.json")

	rec, err := a.Save(RecordInput{Title: "gone soon"})
	require.NoError(t, err)

	removed, err := a.Delete(rec.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, a.Draft())

	removed, err = a.Delete("missing")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestArchiveViewsAndFilter(t *testing.T) {
	payload := `[{"id":"s1","date":"2024-01-01","title":"shared","tags":["a"]}]`
	srv := sharedServer(t, &payload)
	a := newArchive(t, srv.URL+"/archive.json")
	require.NoError(t, a.Reload())

	_, err := a.Save(RecordInput{Title: "draft", Tags: []string{"b"}})
	require.NoError(t, err)

	a.View = merge.ViewShared
	assert.Len(t, a.Records(), 1)
	a.View = merge.ViewDraft
	assert.Len(t, a.Records(), 1)
	a.View = merge.ViewMerged
	assert.Len(t, a.Records(), 2)

	a.Filter = "a"
	require.Len(t, a.Records(), 1)
	assert.Equal(t, "shared", a.Records()[0].Title)

	a.Filter = "nope"
	assert.Empty(t, a.Records())

	cloud := a.TagCloud()
	assert.Equal(t, []project.TagCount{{Tag: "a", Count: 1}, {Tag: "b", Count: 1}}, cloud)
}

func TestArchiveExportImportRoundTrip(t *testing.T) {
	payload := `[{"id":"s1","date":"2024-01-02","title":"shared","tags":[],"createdAt":1,"updatedAt":1}]`
	srv := sharedServer(t, &payload)
	a := newArchive(t, srv.URL+"/archive.json")
	require.NoError(t, a.Reload())

	_, err := a.Save(RecordInput{ID: "s1", Date: "2024-01-02", Title: "edited"})
	require.NoError(t, err)

	dir := t.TempDir()
	path, err := a.Export(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "archive-records.merged.json"), path)

	// import replaces the draft with the merged document
	require.NoError(t, a.ClearDraft())
	n, err := a.Import(path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	draft := a.Draft()
	require.Len(t, draft, 1)
	assert.Equal(t, "edited", draft[0].Title)
}

func TestArchiveImportMalformedLeavesDraft(t *testing.T) {
	payload := `[]`
	srv := sharedServer(t, &payload)
	a := newArchive(t, srv.URL+"/archive.json")

	_, err := a.Save(RecordInput{Title: "keep me"})
	require.NoError(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"not":"an array"}`), 0o644))

	_, err = a.Import(bad)
	var ie *bridge.ImportError
	require.ErrorAs(t, err, &ie)

	require.Len(t, a.Draft(), 1)
	assert.Equal(t, "keep me", a.Draft()[0].Title)
}
