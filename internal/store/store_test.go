package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haey/sitedata/internal/domain"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "drafts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDraftAbsentKeyIsEmpty(t *testing.T) {
	s := testStore(t)
	assert.Equal(t, []domain.Record{}, Draft[domain.Record](s, domain.ArchiveKey))
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s := testStore(t)

	recs := []domain.Record{
		{ID: "a", Date: "2024-01-01", Title: "t", Tags: []string{"x"}, CreatedAt: 1, UpdatedAt: 2},
	}
	require.NoError(t, SaveDraft(s, domain.ArchiveKey, recs))

	assert.Equal(t, recs, Draft[domain.Record](s, domain.ArchiveKey))
}

func TestSaveOverwritesWholesale(t *testing.T) {
	s := testStore(t)

	require.NoError(t, SaveDraft(s, domain.ArchiveKey, []domain.Record{{ID: "a"}, {ID: "b"}}))
	require.NoError(t, SaveDraft(s, domain.ArchiveKey, []domain.Record{{ID: "c"}}))

	got := Draft[domain.Record](s, domain.ArchiveKey)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].ID)
}

func TestDomainsAreIndependent(t *testing.T) {
	s := testStore(t)

	require.NoError(t, SaveDraft(s, domain.ArchiveKey, []domain.Record{{ID: "r"}}))
	require.NoError(t, SaveDraft(s, domain.CalendarKey, []domain.Event{{ID: "e"}}))

	assert.Len(t, Draft[domain.Record](s, domain.ArchiveKey), 1)
	assert.Len(t, Draft[domain.Event](s, domain.CalendarKey), 1)

	require.NoError(t, s.Clear(domain.ArchiveKey))
	assert.Empty(t, Draft[domain.Record](s, domain.ArchiveKey))
	assert.Len(t, Draft[domain.Event](s, domain.CalendarKey), 1)
}

func TestCorruptPayloadIsEmptyNotError(t *testing.T) {
	s := testStore(t)

	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO drafts (key, payload, updated_at) VALUES (?, ?, ?)",
		domain.ArchiveKey, "{not json", time.Now(),
	)
	require.NoError(t, err)

	assert.Equal(t, []domain.Record{}, Draft[domain.Record](s, domain.ArchiveKey))

	// next save overwrites the corruption
	require.NoError(t, SaveDraft(s, domain.ArchiveKey, []domain.Record{{ID: "a"}}))
	assert.Len(t, Draft[domain.Record](s, domain.ArchiveKey), 1)
}

func TestClearEqualsEmptySave(t *testing.T) {
	s := testStore(t)

	require.NoError(t, SaveDraft(s, domain.ArchiveKey, []domain.Record{{ID: "a"}}))
	require.NoError(t, s.Clear(domain.ArchiveKey))

	assert.Equal(t, []domain.Record{}, Draft[domain.Record](s, domain.ArchiveKey))
}

func TestSaveNilStoresEmptyArray(t *testing.T) {
	s := testStore(t)

	require.NoError(t, SaveDraft[domain.Record](s, domain.ArchiveKey, nil))
	assert.Equal(t, []domain.Record{}, Draft[domain.Record](s, domain.ArchiveKey))
}
