// Package secondary talks to the fallback cloud store: a PostgREST
// style tabular interface addressed by physical table name, plus a
// websocket realtime stream for change notifications. Table names come
// from the Resolver, never from callers directly.
package secondary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	syncerrors "github.com/medirec/collection-sync/internal/errors"
	"github.com/medirec/collection-sync/internal/record"
)

const (
	// httpClientTimeout is the timeout for the default HTTP client used
	// when no custom client is provided.
	httpClientTimeout = 30 * time.Second

	// maxResponseBytes caps response body reads from the store.
	maxResponseBytes = 8 * 1024 * 1024

	// restPrefix is the path prefix of the store's tabular REST interface.
	restPrefix = "/rest/v1/"
)

// Client is a thin client for the secondary store's tabular interface.
//
// Upsert and DeleteByIDs report success as a boolean instead of an
// error: the façade has already committed the caller-visible write to
// the local cache, and a failed propagation must not undo it. Failures
// are logged here and retried implicitly by the next diff push.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *slog.Logger
}

// NewClient creates a secondary store client. If httpClient is nil, a
// client with a 30-second timeout is created.
func NewClient(baseURL, apiKey string, logger *slog.Logger, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: httpClientTimeout}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		logger:     logger,
	}
}

func (c *Client) newRequest(ctx context.Context, method, table, query string, body io.Reader) (*http.Request, error) {
	endpoint := c.baseURL + restPrefix + url.PathEscape(table)
	if query != "" {
		endpoint += "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// Probe reports whether a table exists, using a zero-row read so the
// check is cheap regardless of table size. Any error counts as "does
// not exist"; the resolver moves on to the next candidate.
func (c *Client) Probe(ctx context.Context, table string) bool {
	req, err := c.newRequest(ctx, http.MethodGet, table, "select=%2A&limit=0", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	return resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices
}

// FetchAll returns every row of a table. A non-nil error means the
// table is unreachable or absent, which is distinct from an existing
// but empty table (empty slice, nil error); the façade uses the
// distinction to decide whether the secondary store is usable for a key.
func (c *Client) FetchAll(ctx context.Context, table string) ([]record.Record, error) {
	req, err := c.newRequest(ctx, http.MethodGet, table, "select=%2A", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		wrapped := fmt.Errorf("fetching %s: %w", table, err)
		return nil, &syncerrors.UnavailableError{Err: wrapped}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		wrapped := fmt.Errorf("reading %s response: %w", table, err)
		return nil, &syncerrors.UnavailableError{Err: wrapped}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		wrapped := fmt.Errorf("fetching %s: status %d", table, resp.StatusCode)
		return nil, &syncerrors.UnavailableError{Err: wrapped}
	}

	var rows []record.Record
	if err := json.Unmarshal(body, &rows); err != nil {
		wrapped := fmt.Errorf("decoding %s rows: %w", table, err)
		return nil, &syncerrors.UnavailableError{Err: wrapped}
	}

	if rows == nil {
		rows = []record.Record{}
	}

	return rows, nil
}

// Upsert writes records in one bulk operation keyed on conflictKey
// (defaults to "id"). Zero records is a no-op. Returns false on
// failure; the error is logged, not propagated, so the façade can keep
// its optimistic cache write.
func (c *Client) Upsert(ctx context.Context, table string, records []record.Record, conflictKey string) bool {
	if len(records) == 0 {
		return true
	}

	if conflictKey == "" {
		conflictKey = record.IDField
	}

	payload, err := json.Marshal(records)
	if err != nil {
		c.logger.Warn("secondary upsert: marshalling records",
			slog.String("table", table),
			slog.String("error", err.Error()),
		)

		return false
	}

	query := "on_conflict=" + url.QueryEscape(conflictKey)

	req, err := c.newRequest(ctx, http.MethodPost, table, query, bytes.NewReader(payload))
	if err != nil {
		c.logger.Warn("secondary upsert: building request",
			slog.String("table", table),
			slog.String("error", err.Error()),
		)

		return false
	}

	req.Header.Set("Prefer", "resolution=merge-duplicates,return=minimal")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("secondary upsert failed",
			slog.String("table", table),
			slog.Int("records", len(records)),
			slog.String("error", err.Error()),
		)

		return false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.Warn("secondary upsert rejected",
			slog.String("table", table),
			slog.Int("records", len(records)),
			slog.Int("status", resp.StatusCode),
			slog.String("body", sanitizeBody(body)),
		)

		return false
	}

	return true
}

// DeleteByIDs removes rows whose id is in ids. An empty list is a
// no-op. Returns false on failure, logged rather than propagated.
func (c *Client) DeleteByIDs(ctx context.Context, table string, ids []string) bool {
	if len(ids) == 0 {
		return true
	}

	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = `"` + strings.ReplaceAll(id, `"`, `\"`) + `"`
	}

	query := record.IDField + "=in.(" + url.QueryEscape(strings.Join(quoted, ",")) + ")"

	req, err := c.newRequest(ctx, http.MethodDelete, table, query, nil)
	if err != nil {
		c.logger.Warn("secondary delete: building request",
			slog.String("table", table),
			slog.String("error", err.Error()),
		)

		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("secondary delete failed",
			slog.String("table", table),
			slog.Int("ids", len(ids)),
			slog.String("error", err.Error()),
		)

		return false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.Warn("secondary delete rejected",
			slog.String("table", table),
			slog.Int("ids", len(ids)),
			slog.Int("status", resp.StatusCode),
			slog.String("body", sanitizeBody(body)),
		)

		return false
	}

	return true
}

// sanitizeBody truncates a response body for log output.
func sanitizeBody(body []byte) string {
	const maxLen = 256
	if len(body) > maxLen {
		body = body[:maxLen]
	}

	return strings.ToValidUTF8(string(body), "?")
}
