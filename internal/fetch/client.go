package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

const (
	defaultTimeout  = 60 * time.Second
	defaultMaxBytes = 64 << 20
	maxRedirects    = 10
)

// HTTPError reports a non-2xx response from the archive host.
type HTTPError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %s", e.URL, e.Status)
}

// NewHTTPClient creates an HTTP client with a bounded timeout. Redirects are
// followed across hosts since archive downloads usually bounce to a CDN.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return errors.New("too many redirects")
			}
			return nil
		},
	}
}

// download performs a single GET and returns the body, rejecting bodies
// larger than maxBytes.
func download(ctx context.Context, client *http.Client, archiveURL string, maxBytes int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveURL, http.NoBody)
	if err != nil {
		return nil, ferrors.NetworkError("failed to build archive request").
			WithCause(err).
			WithContext("url", archiveURL).
			Build()
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, ferrors.NetworkError("failed to download archive").
			WithCause(err).
			WithContext("url", archiveURL).
			Build()
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, ferrors.NetworkError("archive download failed").
			WithCause(&HTTPError{URL: archiveURL, StatusCode: resp.StatusCode, Status: resp.Status}).
			WithContext("url", archiveURL).
			WithContext("status", resp.StatusCode).
			Build()
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, ferrors.NetworkError("failed to read archive body").
			WithCause(err).
			WithContext("url", archiveURL).
			Build()
	}
	if int64(len(body)) > maxBytes {
		return nil, ferrors.NetworkError("archive exceeds size limit").
			WithContext("url", archiveURL).
			WithContext("max_bytes", maxBytes).
			Build()
	}
	return body, nil
}
