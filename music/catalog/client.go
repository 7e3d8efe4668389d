// Package catalog talks to the remote music catalog service: keyword search,
// quality-specific download and an operator-facing health probe.
//
// The client performs no retries. A failed call surfaces immediately so the
// conversation layer can reset the user's flow cleanly.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/soundfetch/tunebot/core/logger"
)

const (
	defaultDialTimeout     = 5 * time.Second
	defaultTLSHandshake    = 5 * time.Second
	defaultIdleConnTimeout = 30 * time.Second

	searchTimeout = 15 * time.Second
	// Downloads are prepared server-side and can take a while.
	downloadTimeout = 120 * time.Second
	healthTimeout   = 5 * time.Second

	maxSearchLimit = 100
)

// Config declares client construction parameters.
type Config struct {
	BaseURL string
	// DefaultLimit is used when Search is called with limit <= 0.
	DefaultLimit int
	// Client overrides the HTTP client, primarily for tests.
	Client *http.Client
}

// Client is a thin wrapper over the catalog HTTP API.
type Client struct {
	baseURL      string
	defaultLimit int
	http         *http.Client
}

// New constructs a Client for the given catalog endpoint.
func New(cfg Config) *Client {
	httpClient := cfg.Client
	if httpClient == nil {
		// Timeouts are enforced per operation via context deadlines, so the
		// client itself carries none.
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				DialContext:         (&net.Dialer{Timeout: defaultDialTimeout}).DialContext,
				ForceAttemptHTTP2:   true,
				MaxIdleConns:        10,
				IdleConnTimeout:     defaultIdleConnTimeout,
				TLSHandshakeTimeout: defaultTLSHandshake,
			},
		}
	}
	limit := cfg.DefaultLimit
	if limit <= 0 {
		limit = 10
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		defaultLimit: limit,
		http:         httpClient,
	}
}

// Search queries the catalog by keyword. An empty result is a success, not
// an error. limit <= 0 falls back to the configured default; values above
// the service maximum are clamped.
func (c *Client) Search(ctx context.Context, keyword string, limit int) (*SearchResult, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, ErrEmptyKeyword
	}
	if limit <= 0 {
		limit = c.defaultLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	q := url.Values{}
	q.Set("keywords", keyword)
	q.Set("limit", strconv.Itoa(limit))

	ctx, cancel := withDefaultTimeout(ctx, searchTimeout)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, &Error{Kind: KindUnreachable, Op: "search", Err: err}
	}

	var decoded searchResponse
	if err := c.do(req, "search", &decoded); err != nil {
		return nil, err
	}
	if !decoded.Success {
		return nil, &Error{Kind: KindRemote, Op: "search", Message: decoded.Message}
	}

	tracks := make([]Track, 0, len(decoded.Data))
	for _, w := range decoded.Data {
		tracks = append(tracks, w.toTrack())
	}

	logger.Debug(ctx, "catalog", "search.done",
		slog.String("status", "ok"),
		slog.String("keyword", logger.SanitizeLimit(keyword, 64)),
		slog.Int("tracks", len(tracks)),
		slog.Duration("duration", logger.Took(start)),
	)
	return &SearchResult{Tracks: tracks}, nil
}

// Download asks the service to fetch the track in the given quality and
// return the resolved file metadata. The service may substitute a lower tier;
// the Outcome reports whatever tier it actually used.
func (c *Client) Download(ctx context.Context, trackID, qualityCode string) (*Outcome, error) {
	form := url.Values{}
	form.Set("id", trackID)
	form.Set("quality", qualityCode)
	form.Set("format", "json")

	ctx, cancel := withDefaultTimeout(ctx, downloadTimeout)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/download", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &Error{Kind: KindUnreachable, Op: "download", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var decoded downloadResponse
	if err := c.do(req, "download", &decoded); err != nil {
		return nil, err
	}
	if !decoded.Success {
		return nil, &Error{Kind: KindRemote, Op: "download", Message: decoded.Message}
	}

	out := &Outcome{
		Title:       decoded.Data.Name,
		Artist:      decoded.Data.Artist,
		Album:       decoded.Data.Album,
		QualityName: decoded.Data.QualityName,
		FilePath:    decoded.Data.FilePath,
		FileSize:    decoded.Data.FileSizeFormatted,
		CoverURL:    decoded.Data.PicURL,
	}

	logger.Debug(ctx, "catalog", "download.done",
		slog.String("status", "ok"),
		slog.String("track_id", trackID),
		slog.String("quality", qualityCode),
		slog.Duration("duration", logger.Took(start)),
	)
	return out, nil
}

// Health probes service availability. Used by the operator-facing
// connectivity test only, never by the conversational flow.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := withDefaultTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return &Error{Kind: KindUnreachable, Op: "health", Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindUnreachable, Op: "health", Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return &Error{Kind: KindRemote, Op: "health", Message: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}
	return nil
}

// withDefaultTimeout applies d unless the caller already set a deadline.
func withDefaultTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// do executes the request and decodes a JSON body into out.
// Non-200 responses with a JSON error body become KindRemote errors so the
// service's own message reaches the user.
func (c *Client) do(req *http.Request, op string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn(req.Context(), "catalog", op+".unreachable",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return &Error{Kind: KindUnreachable, Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindUnreachable, Op: op, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		var remote struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &remote) == nil && remote.Message != "" {
			return &Error{Kind: KindRemote, Op: op, Message: remote.Message}
		}
		return &Error{Kind: KindRemote, Op: op, Message: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Kind: KindUnreachable, Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
