package domain

import "time"

// Record is one archive entry: a dated, tagged note in the shared archive document.
type Record struct {
	ID        string   `json:"id"`
	Date      string   `json:"date"`
	Title     string   `json:"title"`
	Tags      []string `json:"tags"`
	Body      string   `json:"body"`
	CreatedAt int64    `json:"createdAt"`
	UpdatedAt int64    `json:"updatedAt"`
}

func (r Record) Key() string { return r.ID }

// NormalizeRecord coerces an arbitrary decoded JSON value into a canonical
// Record. It never fails: the shared document is hand-edited and may be
// partial or malformed, so every field gets a best-effort value. Missing ids
// are generated, missing timestamps default to now. Idempotent apart from
// those generated defaults.
func NormalizeRecord(v any) Record {
	m, _ := v.(map[string]any)
	now := time.Now().UnixMilli()

	r := Record{
		ID:        asString(m["id"]),
		Date:      asString(m["date"]),
		Title:     asString(m["title"]),
		Tags:      asTags(m["tags"]),
		Body:      asString(m["body"]),
		CreatedAt: asMillis(m["createdAt"], now),
		UpdatedAt: asMillis(m["updatedAt"], now),
	}
	if r.ID == "" {
		r.ID = NewID()
	}
	return r
}
