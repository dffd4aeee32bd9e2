package ats

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"ats-sync/internal/pkg/logger"
)

const DefaultTokenTTL = time.Hour

// TokenProvider hands out bearer tokens for the External ATS.
type TokenProvider interface {
	Get(ctx context.Context) (string, error)
	ForceRefresh(ctx context.Context) (string, error)
}

type Credentials struct {
	ClientID string
	Username string
	Password string
}

func (c Credentials) validate() error {
	var missing []string
	if strings.TrimSpace(c.ClientID) == "" {
		missing = append(missing, "client id")
	}
	if strings.TrimSpace(c.Username) == "" {
		missing = append(missing, "username")
	}
	if c.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrConfiguration, strings.Join(missing, ", "))
	}
	return nil
}

// CachedTokenProvider keeps a single token and refetches it once the assumed
// TTL has elapsed. The remote token endpoint does not report an expiry.
// Concurrent refreshes may both hit the endpoint; the call is idempotent.
type CachedTokenProvider struct {
	baseURL string
	creds   Credentials
	ttl     time.Duration
	client  *http.Client
	logger  *zap.SugaredLogger
	now     func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func NewCachedTokenProvider(baseURL string, creds Credentials, ttl time.Duration, client *http.Client, log *zap.SugaredLogger) *CachedTokenProvider {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultRequestTimeout}
	}
	return &CachedTokenProvider{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		creds:   creds,
		ttl:     ttl,
		client:  client,
		logger:  logger.OrNop(log),
		now:     time.Now,
	}
}

func (p *CachedTokenProvider) Get(ctx context.Context) (string, error) {
	p.mu.Lock()
	tok, exp := p.token, p.expiresAt
	p.mu.Unlock()

	if tok != "" && p.now().Before(exp) {
		return tok, nil
	}
	return p.ForceRefresh(ctx)
}

func (p *CachedTokenProvider) ForceRefresh(ctx context.Context) (string, error) {
	if p.baseURL == "" {
		return "", fmt.Errorf("%w: base url", ErrConfiguration)
	}
	if err := p.creds.validate(); err != nil {
		return "", err
	}

	tok, err := p.authenticate(ctx)
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	p.token = tok
	p.expiresAt = p.now().Add(p.ttl)
	p.mu.Unlock()

	p.logger.Debugw("ats token refreshed", "expires_in", p.ttl)
	return tok, nil
}

type authenticateResponse struct {
	Token string `json:"token"`
}

func (p *CachedTokenProvider) authenticate(ctx context.Context) (string, error) {
	q := url.Values{}
	q.Set("clientid", p.creds.ClientID)
	q.Set("username", p.creds.Username)
	q.Set("password", p.creds.Password)
	endpoint := p.baseURL + "/authenticate?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &RemoteError{Op: "authenticate", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &RemoteError{Op: "authenticate", StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &RemoteError{Op: "authenticate", StatusCode: resp.StatusCode, Body: truncate(string(body))}
	}

	var out authenticateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &RemoteError{Op: "authenticate", StatusCode: resp.StatusCode, Err: ErrNoToken}
	}
	tok := strings.TrimSpace(out.Token)
	if tok == "" {
		return "", &RemoteError{Op: "authenticate", StatusCode: resp.StatusCode, Err: ErrNoToken}
	}
	return tok, nil
}

var _ TokenProvider = (*CachedTokenProvider)(nil)
