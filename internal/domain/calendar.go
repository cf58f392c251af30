package domain

import "time"

// DateTimeLayout is the minute-resolution layout used by calendar start/end
// values. It sorts lexicographically in chronological order.
const DateTimeLayout = "2006-01-02T15:04"

// Event is one work-calendar entry in the shared calendar document.
type Event struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Start string `json:"start"`
	End   string `json:"end"`
	Memo  string `json:"memo"`
}

func (e Event) Key() string { return e.ID }

// NormalizeEvent coerces an arbitrary decoded JSON value into a canonical
// Event. Missing ids are generated; a missing or out-of-order end is derived
// from the start. Never fails.
func NormalizeEvent(v any) Event {
	m, _ := v.(map[string]any)

	e := Event{
		ID:    asString(m["id"]),
		Title: asString(m["title"]),
		Start: asString(m["start"]),
		End:   asString(m["end"]),
		Memo:  asString(m["memo"]),
	}
	if e.ID == "" {
		e.ID = NewID()
	}
	if e.End != "" && e.End < e.Start {
		e.End = ""
	}
	e.End = NormalizeEnd(e.Start, e.End)
	return e
}

// NormalizeEnd returns end unchanged when present, otherwise start plus 30
// minutes. An unparsable start yields an empty end.
func NormalizeEnd(start, end string) string {
	if end != "" {
		return end
	}
	s, err := time.ParseInLocation(DateTimeLayout, start, time.Local)
	if err != nil {
		return ""
	}
	return s.Add(30 * time.Minute).Format(DateTimeLayout)
}
