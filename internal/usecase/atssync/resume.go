package atssync

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"ats-sync/internal/infrastructure/ats"
)

// ResumeFetcher downloads the file behind a candidate's resume link.
type ResumeFetcher interface {
	Fetch(ctx context.Context, link string) (content []byte, fileName string, err error)
}

type HTTPResumeFetcher struct {
	client *http.Client
}

func NewHTTPResumeFetcher(timeout time.Duration) *HTTPResumeFetcher {
	if timeout <= 0 {
		timeout = ats.DefaultUploadTimeout
	}
	return &HTTPResumeFetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch reads at most one byte past the document limit so oversized files
// are caught by upload validation rather than silently truncated.
func (f *HTTPResumeFetcher) Fetch(ctx context.Context, link string) ([]byte, string, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, "", fmt.Errorf("invalid resume link %q", link)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download resume: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("download resume: status=%d", resp.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, ats.MaxDocumentBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("download resume: %w", err)
	}

	name := path.Base(u.Path)
	if name == "." || name == "/" {
		name = ""
	}
	return b, name, nil
}
