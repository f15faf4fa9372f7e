package figma

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/figbridge/figbridge/internal/logx"
	"github.com/figbridge/figbridge/internal/metrics"
)

const (
	// DefaultBaseURL is the public Figma REST API root.
	DefaultBaseURL = "https://api.figma.com/v1"

	defaultTimeout     = 30 * time.Second
	defaultMaxAttempts = 3
	defaultCeiling     = 10 * time.Second
	baseDelay          = 2 * time.Second
)

// Config carries the knobs for a Client. Zero values select defaults.
type Config struct {
	BaseURL        string
	Token          string
	HTTPClient     *http.Client
	MaxAttempts    int
	BackoffCeiling time.Duration
	Timeout        time.Duration
}

// Client talks to the Figma REST API on behalf of a single access token.
// A fresh Client is built per tool invocation so credentials never outlive
// the call chain that supplied them.
type Client struct {
	baseURL        string
	token          string
	httpClient     *http.Client
	maxAttempts    int
	backoffCeiling time.Duration

	// sleep suspends between retries; swapped out by tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New builds a Client for the given config.
func New(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	ceiling := cfg.BackoffCeiling
	if ceiling <= 0 {
		ceiling = defaultCeiling
	}
	return &Client{
		baseURL:        strings.TrimRight(base, "/"),
		token:          cfg.Token,
		httpClient:     hc,
		maxAttempts:    attempts,
		backoffCeiling: ceiling,
		sleep:          sleepCtx,
	}
}

// FileNodes fetches the document subtrees for the given node ids.
func (c *Client) FileNodes(ctx context.Context, fileKey string, nodeIDs []string) (*NodesResponse, error) {
	q := url.Values{"ids": {strings.Join(nodeIDs, ",")}}
	raw, err := c.fetch(ctx, "file_nodes", "/files/"+fileKey+"/nodes", q)
	if err != nil {
		return nil, err
	}
	var out NodesResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode nodes response: %w", err)
	}
	out.Raw = raw
	return &out, nil
}

// Images renders the given nodes to PNG at 2x scale and returns their URLs.
func (c *Client) Images(ctx context.Context, fileKey string, nodeIDs []string) (*ImagesResponse, error) {
	q := url.Values{
		"ids":    {strings.Join(nodeIDs, ",")},
		"format": {"png"},
		"scale":  {"2"},
	}
	raw, err := c.fetch(ctx, "images", "/images/"+fileKey, q)
	if err != nil {
		return nil, err
	}
	var out ImagesResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode images response: %w", err)
	}
	return &out, nil
}

// LocalVariables fetches the file's variable collections.
func (c *Client) LocalVariables(ctx context.Context, fileKey string) (*VariablesResponse, error) {
	raw, err := c.fetch(ctx, "variables", "/files/"+fileKey+"/variables/local", nil)
	if err != nil {
		return nil, err
	}
	var out VariablesResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode variables response: %w", err)
	}
	out.Raw = raw
	return &out, nil
}

// Me fetches the identity behind the client's token.
func (c *Client) Me(ctx context.Context) (*User, error) {
	raw, err := c.fetch(ctx, "me", "/me", nil)
	if err != nil {
		return nil, err
	}
	var out User
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode user response: %w", err)
	}
	out.Raw = raw
	return &out, nil
}

// fetch performs one authenticated GET with retry on 429 and a single retry
// on transport timeout. Any other non-2xx fails immediately, classified by
// status code. Total attempts are capped so a rate-limited upstream cannot
// stall a request beyond attempts*(timeout+ceiling).
func (c *Client) fetch(ctx context.Context, endpoint, path string, query url.Values) (json.RawMessage, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	timeoutRetried := false
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("build request for %s: %w", path, err)
		}
		req.Header.Set("X-Figma-Token", c.token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !isTimeout(err) {
				metrics.RecordUpstreamRequest(endpoint, "transport_error")
				return nil, fmt.Errorf("GET %s: %w", path, err)
			}
			metrics.RecordUpstreamRequest(endpoint, "timeout")
			if timeoutRetried || attempt == c.maxAttempts-1 {
				return nil, fmt.Errorf("GET %s: %w", path, ErrTimeout)
			}
			timeoutRetried = true
			metrics.RecordUpstreamRetry(endpoint)
			logx.Log.Warn().Str("path", path).Int("attempt", attempt+1).Msg("figma request timed out; retrying")
			if err := c.sleep(ctx, c.retryDelay(attempt, "")); err != nil {
				return nil, err
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("GET %s: read body: %w", path, readErr)
		}
		metrics.RecordUpstreamRequest(endpoint, strconv.Itoa(resp.StatusCode))

		if resp.StatusCode == http.StatusTooManyRequests {
			if attempt == c.maxAttempts-1 {
				return nil, &APIError{StatusCode: resp.StatusCode, Path: path, Message: "retries exhausted"}
			}
			delay := c.retryDelay(attempt, resp.Header.Get("Retry-After"))
			metrics.RecordUpstreamRetry(endpoint)
			logx.Log.Warn().Str("path", path).Dur("delay", delay).Int("attempt", attempt+1).Msg("figma rate limited; backing off")
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, newAPIError(resp.StatusCode, path, body)
		}
		return body, nil
	}
	return nil, &APIError{StatusCode: http.StatusTooManyRequests, Path: path, Message: "retries exhausted"}
}

// retryDelay picks the wait before the next attempt: the upstream's
// Retry-After when given, otherwise exponential backoff, always clamped to
// the ceiling.
func (c *Client) retryDelay(attempt int, retryAfter string) time.Duration {
	delay := baseDelay * (1 << attempt)
	if retryAfter != "" {
		if secs, err := strconv.Atoi(strings.TrimSpace(retryAfter)); err == nil && secs >= 0 {
			delay = time.Duration(secs) * time.Second
		}
	}
	if delay > c.backoffCeiling {
		delay = c.backoffCeiling
	}
	return delay
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
