package ats

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"ats-sync/internal/pkg/flags"
	"ats-sync/internal/pkg/logger"
)

const (
	DefaultRequestTimeout = 15 * time.Second
	DefaultUploadTimeout  = 60 * time.Second

	maxResponseBytes = 4 << 20
	maxErrorBody     = 4096
)

type Options struct {
	RequestTimeout time.Duration
	UploadTimeout  time.Duration
	Logger         *zap.SugaredLogger
}

// Client is the authenticated request layer for the External ATS. Every call
// checks the integration flag first and carries a bearer token.
type Client struct {
	baseURL string
	tokens  TokenProvider
	flags   flags.Flags
	http    *http.Client
	upload  *http.Client
	logger  *zap.SugaredLogger
}

// NewClient accepts an empty base URL so a disabled integration can boot
// without settings; the token provider reports it on first use.
func NewClient(baseURL string, tokens TokenProvider, ff flags.Flags, opts Options) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if tokens == nil {
		return nil, fmt.Errorf("%w: token provider", ErrConfiguration)
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.UploadTimeout <= 0 {
		opts.UploadTimeout = DefaultUploadTimeout
	}
	return &Client{
		baseURL: baseURL,
		tokens:  tokens,
		flags:   ff,
		http:    &http.Client{Timeout: opts.RequestTimeout},
		upload:  &http.Client{Timeout: opts.UploadTimeout},
		logger:  logger.OrNop(opts.Logger),
	}, nil
}

func (c *Client) Enabled() bool {
	return c != nil && c.flags != nil && c.flags.IntegrationEnabled()
}

type request struct {
	op          string
	method      string
	path        string
	body        []byte
	contentType string
	upload      bool
}

func (c *Client) postJSON(ctx context.Context, op, path string, in any) ([]byte, error) {
	return c.sendJSON(ctx, op, http.MethodPost, path, in)
}

func (c *Client) sendJSON(ctx context.Context, op, method, path string, in any) ([]byte, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("ats %s: encode: %w", op, err)
	}
	return c.do(ctx, request{op: op, method: method, path: path, body: b, contentType: "application/json"})
}

// do sends the request, refreshing the token and retrying once on 401.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}

	tok, err := c.tokens.Get(ctx)
	if err != nil {
		return nil, err
	}

	body, status, err := c.roundTrip(ctx, r, tok)
	if status == http.StatusUnauthorized {
		c.logger.Infow("ats token rejected, refreshing", "op", r.op)
		tok, err = c.tokens.ForceRefresh(ctx)
		if err != nil {
			return nil, err
		}
		body, _, err = c.roundTrip(ctx, r, tok)
	}
	return body, err
}

func (c *Client) roundTrip(ctx context.Context, r request, token string) ([]byte, int, error) {
	endpoint := c.baseURL + r.path

	var rdr io.Reader
	if r.body != nil {
		rdr = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, rdr)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	hc := c.http
	if r.upload {
		hc = c.upload
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.logger.Warnw("ats request failed", "op", r.op, "endpoint", endpoint, "error", err)
		return nil, 0, &RemoteError{Op: r.op, Err: err}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, &RemoteError{Op: r.op, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyStr := truncate(strings.TrimSpace(string(b)))
		c.logger.Warnw("ats request rejected",
			"op", r.op, "endpoint", endpoint, "status", resp.StatusCode, "body", bodyStr, "latency", time.Since(start))
		return nil, resp.StatusCode, &RemoteError{Op: r.op, StatusCode: resp.StatusCode, Body: bodyStr}
	}

	c.logger.Debugw("ats request", "op", r.op, "status", resp.StatusCode, "latency", time.Since(start))
	return b, resp.StatusCode, nil
}

// decodeList accepts either a bare JSON array or an envelope holding the
// array under "data" or "results".
func decodeList[T any](op string, body []byte) ([]T, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return []T{}, nil
	}

	if body[0] == '[' {
		var out []T
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, &RemoteError{Op: op, Err: fmt.Errorf("decode list: %w", err)}
		}
		return out, nil
	}

	var env struct {
		Data    []T `json:"data"`
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &RemoteError{Op: op, Err: fmt.Errorf("decode list: %w", err)}
	}
	if env.Data != nil {
		return env.Data, nil
	}
	if env.Results != nil {
		return env.Results, nil
	}
	return []T{}, nil
}

// decodeID extracts the id of a freshly created record. The API answers with
// a bare number, a bare string, or an object naming the id in one of a few
// keys depending on the endpoint.
func decodeID(op string, body []byte, keys ...string) (string, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return "", &RemoteError{Op: op, Err: ErrNoID}
	}

	if body[0] != '{' {
		var s FlexString
		if err := json.Unmarshal(body, &s); err == nil && s != "" {
			return s.String(), nil
		}
		return "", &RemoteError{Op: op, Body: truncate(string(body)), Err: ErrNoID}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return "", &RemoteError{Op: op, Err: fmt.Errorf("decode id: %w", err)}
	}
	lowered := make(map[string]json.RawMessage, len(obj))
	for k, v := range obj {
		lowered[strings.ToLower(k)] = v
	}
	for _, k := range append(keys, "id", "result") {
		raw, ok := lowered[strings.ToLower(k)]
		if !ok {
			continue
		}
		var s FlexString
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s.String(), nil
		}
	}
	return "", &RemoteError{Op: op, Body: truncate(string(body)), Err: ErrNoID}
}

func truncate(s string) string {
	if len(s) <= maxErrorBody {
		return s
	}
	return s[:maxErrorBody]
}

// IsRemote reports whether err came from a failed remote call.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}
