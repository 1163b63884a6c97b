package sagapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNilClient is returned by every method invoked on a nil *Client.
var ErrNilClient = errors.New("client is nil")

// Fetcher defines the read side of the sag tracking API.
// It is implemented by *Client and can be faked in tests.
type Fetcher interface {
	FetchStatus(ctx context.Context) (*StatusResponse, error)
	FetchLive(ctx context.Context) (*LiveSample, error)
	FetchEvents(ctx context.Context) ([]Event, error)
	FetchConfig(ctx context.Context) (Configuration, error)
}

// Writer defines the mutating side of the sag tracking API.
type Writer interface {
	PostEvent(ctx context.Context, payload EventPayload) (*Event, error)
	PostResetSag(ctx context.Context, at time.Time) (*Event, error)
	PostComment(ctx context.Context, eventTS int64, text string) (*Event, error)
	SaveConfig(ctx context.Context, cfg Configuration) (Configuration, error)
}

// API combines Fetcher and Writer.
type API interface {
	Fetcher
	Writer
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// StatusError reports a response with an HTTP status of 400 or above.
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Code)
}

// Client talks to the sag tracking HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultAPIBind   = "127.0.0.1:8000"
	defaultUserAgent = "sagtrack/0.1"
	defaultTimeout   = 3 * time.Second
)

// NewClient builds a Client for the given host:port (or URL). A non-positive
// timeout selects the default of three seconds.
func NewClient(apiBind string, timeout time.Duration) (*Client, error) {
	base, err := parseBaseURL(apiBind)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: timeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the resolved API root.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL.String()
}

// FetchStatus retrieves the backend status.
func (c *Client) FetchStatus(ctx context.Context) (*StatusResponse, error) {
	if c == nil {
		return nil, ErrNilClient
	}
	var payload StatusResponse
	if err := c.do(ctx, http.MethodGet, "/api/status", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// FetchLive returns the first sample of /api/live, or nil when the list is empty.
func (c *Client) FetchLive(ctx context.Context) (*LiveSample, error) {
	if c == nil {
		return nil, ErrNilClient
	}
	var payload LiveResponse
	if err := c.do(ctx, http.MethodGet, "/api/live", nil, &payload); err != nil {
		return nil, err
	}
	if len(payload.Live) == 0 {
		return nil, nil
	}
	sample := payload.Live[0]
	return &sample, nil
}

// FetchEvents retrieves the event log, newest first.
func (c *Client) FetchEvents(ctx context.Context) ([]Event, error) {
	if c == nil {
		return nil, ErrNilClient
	}
	var payload EventsResponse
	if err := c.do(ctx, http.MethodGet, "/api/events", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Events, nil
}

// PostEvent records a new settings event.
func (c *Client) PostEvent(ctx context.Context, payload EventPayload) (*Event, error) {
	if c == nil {
		return nil, ErrNilClient
	}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/api/event", payload, &raw); err != nil {
		return nil, err
	}
	return decodeEventReply(raw)
}

// PostResetSag records a sag reset marker event stamped with at.
func (c *Client) PostResetSag(ctx context.Context, at time.Time) (*Event, error) {
	if c == nil {
		return nil, ErrNilClient
	}
	body := ResetSagPayload{Type: EventTypeResetSag, TS: at.Unix()}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/api/event", body, &raw); err != nil {
		return nil, err
	}
	return decodeEventReply(raw)
}

// PostComment appends a comment to the event identified by eventTS and
// returns the updated event.
func (c *Client) PostComment(ctx context.Context, eventTS int64, text string) (*Event, error) {
	if c == nil {
		return nil, ErrNilClient
	}
	body := CommentRequest{EventTS: eventTS, Comment: text}
	var resp EventResponse
	if err := c.do(ctx, http.MethodPost, "/api/event/comment", body, &resp); err != nil {
		return nil, err
	}
	if resp.Event == nil {
		return nil, fmt.Errorf("decode response: missing event")
	}
	return resp.Event, nil
}

// FetchConfig retrieves the persisted configuration.
func (c *Client) FetchConfig(ctx context.Context) (Configuration, error) {
	if c == nil {
		return Configuration{}, ErrNilClient
	}
	var payload ConfigEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/config", nil, &payload); err != nil {
		return Configuration{}, err
	}
	return payload.Config, nil
}

// SaveConfig posts the whole configuration and returns what the server stored.
func (c *Client) SaveConfig(ctx context.Context, cfg Configuration) (Configuration, error) {
	if c == nil {
		return Configuration{}, ErrNilClient
	}
	var payload ConfigEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/config", ConfigEnvelope{Config: cfg}, &payload); err != nil {
		return Configuration{}, err
	}
	return payload.Config, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	reqURL := c.baseURL.ResolveReference(rel)

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	var req *http.Request
	var err error
	if reader != nil {
		req, err = http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	}
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return &StatusError{Path: rel.String(), Code: resp.StatusCode}
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeEventReply accepts both the wrapped {"event": {...}} reply and a bare
// event object. A bare acknowledgement without an event yields nil.
func decodeEventReply(raw json.RawMessage) (*Event, error) {
	var wrapped EventResponse
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if wrapped.Event != nil {
		return wrapped.Event, nil
	}
	var bare Event
	if err := json.Unmarshal(raw, &bare); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if bare.TS == 0 {
		return nil, nil
	}
	return &bare, nil
}

func parseBaseURL(apiBind string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBind)
	if trimmed == "" {
		trimmed = defaultAPIBind
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_bind %q: %w", apiBind, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
