// Package loader fetches the site's canonical shared documents. The documents
// are republished out-of-band (direct repository commits), so every request
// defeats static-asset caching with a uniquifying query parameter.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/haey/sitedata/internal/domain"
)

// ErrNotArray marks a shared document that parsed but was not a JSON array.
var ErrNotArray = errors.New("shared document is not a JSON array")

// LoadError is the failure of a shared-document fetch. Status is set when the
// transport-level response was not successful; Err carries parse and shape
// failures otherwise.
type LoadError struct {
	URL    string
	Status int
	Err    error
}

func (e *LoadError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("load %s: HTTP %d", e.URL, e.Status)
	}
	return fmt.Sprintf("load %s: %v", e.URL, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Client loads shared documents. Read-only: it never touches the draft store.
type Client struct {
	http *http.Client
	log  *zap.SugaredLogger
}

// New creates a loader Client.
func New(log *zap.SugaredLogger) *Client {
	return &Client{
		http: &http.Client{Timeout: 30 * time.Second},
		log:  log,
	}
}

// LoadRecords fetches the archive document and normalizes every element.
func (c *Client) LoadRecords(rawURL string) ([]domain.Record, error) {
	elems, err := c.loadArray(rawURL)
	if err != nil {
		return nil, err
	}
	records := make([]domain.Record, len(elems))
	for i, el := range elems {
		records[i] = domain.NormalizeRecord(el)
	}
	return records, nil
}

// LoadEvents fetches the calendar document and normalizes every element.
func (c *Client) LoadEvents(rawURL string) ([]domain.Event, error) {
	elems, err := c.loadArray(rawURL)
	if err != nil {
		return nil, err
	}
	events := make([]domain.Event, len(elems))
	for i, el := range elems {
		events[i] = domain.NormalizeEvent(el)
	}
	return events, nil
}

func (c *Client) loadArray(rawURL string) ([]any, error) {
	busted, err := cacheBusted(rawURL)
	if err != nil {
		return nil, &LoadError{URL: rawURL, Err: fmt.Errorf("invalid URL: %w", err)}
	}

	c.log.Debugw("loading shared document", "url", busted)

	req, err := http.NewRequest(http.MethodGet, busted, nil)
	if err != nil {
		return nil, &LoadError{URL: rawURL, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &LoadError{URL: rawURL, Err: fmt.Errorf("fetch: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &LoadError{URL: rawURL, Status: resp.StatusCode}
	}

	// Hand-maintained data files stay tiny; 10MB is already generous.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		return nil, &LoadError{URL: rawURL, Err: fmt.Errorf("read body: %w", err)}
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &LoadError{URL: rawURL, Err: fmt.Errorf("parse: %w", err)}
	}

	arr, ok := payload.([]any)
	if !ok {
		return nil, &LoadError{URL: rawURL, Err: ErrNotArray}
	}
	return arr, nil
}

// cacheBusted appends a request-time query parameter so static hosts cannot
// serve a stale copy of the document.
func cacheBusted(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("v", strconv.FormatInt(time.Now().UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
