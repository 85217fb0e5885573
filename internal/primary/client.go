// Package primary talks to the authoritative backend API: one JSON
// document per collection key plus item-level sub-resources. Any
// failure here is a single signal for the façade to fall back; the
// client never retries.
package primary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	syncerrors "github.com/medirec/collection-sync/internal/errors"
)

const (
	// maxRedirects is the maximum number of HTTP redirects to follow
	// before giving up, matching the default net/http limit.
	maxRedirects = 10

	// httpClientTimeout is the timeout for the default HTTP client used
	// when no custom client is provided.
	httpClientTimeout = 30 * time.Second

	// maxAPIResponseBytes caps response body reads to prevent a
	// misbehaving server from consuming unbounded memory.
	maxAPIResponseBytes = 8 * 1024 * 1024
)

// envelope is the wire wrapper on every API response.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

// Client talks to the primary backend API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// sameHostRedirectPolicy follows redirects only when the target host
// matches the original request host. This prevents the bearer token
// from leaking to third-party domains.
func sameHostRedirectPolicy(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return errors.New("stopped after 10 redirects")
	}

	if len(via) > 0 {
		origHost := via[0].URL.Host
		if req.URL.Host != origHost {
			return fmt.Errorf("redirect to different host blocked: %s -> %s", origHost, req.URL.Host)
		}
	}

	return nil
}

// NewClient creates an API client for the given base URL and bearer
// token. If httpClient is nil, a client with a 30-second timeout and
// same-host redirect policy is created.
func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:       httpClientTimeout,
			CheckRedirect: sameHostRedirectPolicy,
		}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      token,
	}
}

// sanitizeResponseBody truncates and sanitizes a response body for
// inclusion in error messages. Limits to 256 bytes and replaces
// non-printable characters to prevent log injection.
func sanitizeResponseBody(body []byte) string {
	const maxLen = 256
	if len(body) > maxLen {
		body = body[:maxLen]
	}
	// Ensure valid UTF-8 and replace control characters.
	var clean []byte

	for len(body) > 0 {
		r, size := utf8.DecodeRune(body)
		if r == utf8.RuneError && size <= 1 {
			clean = append(clean, '?')
			body = body[1:]

			continue
		}

		if r < 0x20 && r != '\n' && r != '\r' && r != '\t' {
			clean = append(clean, '?')
		} else {
			clean = append(clean, body[:size]...)
		}

		body = body[size:]
	}

	return string(clean)
}

// do sends a request and returns the envelope data. Transport errors,
// server errors, and envelope-level errors come back wrapped as
// UnavailableError; 404 and 409 map to the caller-facing sentinels.
func (c *Client) do(ctx context.Context, method, endpoint string, body any) (json.RawMessage, error) {
	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshalling request body: %w", err)
		}

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network errors (timeouts, connection refused, DNS failures)
		// mean the primary is unavailable.
		wrapped := fmt.Errorf("sending request to %s: %w", endpoint, err)
		return nil, &syncerrors.UnavailableError{Err: wrapped}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxAPIResponseBytes))
	if err != nil {
		wrapped := fmt.Errorf("reading response from %s: %w", endpoint, err)
		return nil, &syncerrors.UnavailableError{Err: wrapped}
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, syncerrors.ErrNotFound)
	case http.StatusConflict:
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, syncerrors.ErrConflict)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		err := fmt.Errorf("API %s returned status %d: %s", endpoint, resp.StatusCode, sanitizeResponseBody(respBody))
		return nil, &syncerrors.UnavailableError{Err: err}
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		wrapped := fmt.Errorf("decoding response from %s: %w", endpoint, err)
		return nil, &syncerrors.UnavailableError{Err: wrapped}
	}

	if env.Error != "" {
		err := fmt.Errorf("API %s: %s", endpoint, env.Error)
		return nil, &syncerrors.UnavailableError{Err: err}
	}

	return env.Data, nil
}

func collectionPath(key string) string {
	return "/collections/" + url.PathEscape(key)
}

func itemPath(key, id string) string {
	return collectionPath(key) + "/" + url.PathEscape(id)
}

// FetchDocument returns the full JSON value stored for a collection key.
func (c *Client) FetchDocument(ctx context.Context, key string) (json.RawMessage, error) {
	data, err := c.do(ctx, http.MethodGet, collectionPath(key), nil)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", key, err)
	}

	return data, nil
}

// PutDocument replaces the full JSON value for a collection key and
// returns the server's canonical form (the server may normalize or
// dedupe on write).
func (c *Client) PutDocument(ctx context.Context, key string, value json.RawMessage) (json.RawMessage, error) {
	data, err := c.do(ctx, http.MethodPut, collectionPath(key), value)
	if err != nil {
		return nil, fmt.Errorf("putting %s: %w", key, err)
	}

	return data, nil
}

// FetchItem returns a single item of an array collection by id.
func (c *Client) FetchItem(ctx context.Context, key, id string) (json.RawMessage, error) {
	data, err := c.do(ctx, http.MethodGet, itemPath(key, id), nil)
	if err != nil {
		return nil, fmt.Errorf("fetching %s/%s: %w", key, id, err)
	}

	return data, nil
}

// PostItem creates a new item in an array collection. A duplicate id is
// rejected by the server with a conflict, never merged silently.
func (c *Client) PostItem(ctx context.Context, key string, item any) (json.RawMessage, error) {
	data, err := c.do(ctx, http.MethodPost, collectionPath(key), item)
	if err != nil {
		return nil, fmt.Errorf("creating item in %s: %w", key, err)
	}

	return data, nil
}

// PutItem replaces a single item by id.
func (c *Client) PutItem(ctx context.Context, key, id string, item any) (json.RawMessage, error) {
	data, err := c.do(ctx, http.MethodPut, itemPath(key, id), item)
	if err != nil {
		return nil, fmt.Errorf("updating %s/%s: %w", key, id, err)
	}

	return data, nil
}

// DeleteItem removes a single item by id.
func (c *Client) DeleteItem(ctx context.Context, key, id string) error {
	if _, err := c.do(ctx, http.MethodDelete, itemPath(key, id), nil); err != nil {
		return fmt.Errorf("deleting %s/%s: %w", key, id, err)
	}

	return nil
}

// Bootstrap seeds default values for the well-known collection keys and
// returns the resulting snapshot map.
func (c *Client) Bootstrap(ctx context.Context) (map[string]json.RawMessage, error) {
	data, err := c.do(ctx, http.MethodGet, "/collections/bootstrap", nil)
	if err != nil {
		return nil, fmt.Errorf("bootstrapping: %w", err)
	}

	snapshots := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &snapshots); err != nil {
		wrapped := fmt.Errorf("decoding bootstrap snapshot: %w", err)
		return nil, &syncerrors.UnavailableError{Err: wrapped}
	}

	return snapshots, nil
}
