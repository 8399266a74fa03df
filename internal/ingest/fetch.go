package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/joeblew999/plat-style/internal/style"
)

// DefaultMaxBytes caps the size of a fetched document.
const DefaultMaxBytes = 32 << 20

// Fetcher downloads JSON documents over HTTP.
type Fetcher struct {
	Client   *http.Client
	MaxBytes int64
}

// NewFetcher returns a fetcher using client, or a client with a 30s timeout
// when nil.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{Client: client, MaxBytes: DefaultMaxBytes}
}

// FetchJSON GETs rawURL and returns the body when it is well-formed JSON.
// Transport errors, non-2xx statuses and non-JSON bodies are
// KindFetchFailure.
func (f *Fetcher) FetchJSON(ctx context.Context, rawURL string) ([]byte, error) {
	const op = "fetch"

	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, style.Errorf(style.KindFetchFailure, op, "%q is not an http(s) URL", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, style.Wrap(style.KindFetchFailure, op, err)
	}
	req.Header.Set("Accept", "application/json, application/geo+json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, style.Wrap(style.KindFetchFailure, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, style.Errorf(style.KindFetchFailure, op, "GET %s: %s", u.Redacted(), resp.Status)
	}

	limit := f.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, style.Wrap(style.KindFetchFailure, op, err)
	}
	if int64(len(body)) > limit {
		return nil, style.Errorf(style.KindFetchFailure, op, "GET %s: body exceeds %d bytes", u.Redacted(), limit)
	}
	if !json.Valid(body) {
		return nil, style.Wrap(style.KindFetchFailure, op, fmt.Errorf("GET %s: response is not JSON", u.Redacted()))
	}
	return body, nil
}
