package source

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"mortgage-triage-go/internal/logger"
)

const maxTranscriptBytes = 4 << 20

// HTTPReader downloads transcripts over HTTP, retrying transport errors and
// 5xx responses with exponential backoff.
type HTTPReader struct {
	Client     *http.Client
	MaxElapsed time.Duration
	Log        *logger.Logger
}

func NewHTTPReader(timeout time.Duration, log *logger.Logger) *HTTPReader {
	if log == nil {
		log = logger.Nop()
	}
	return &HTTPReader{
		Client:     &http.Client{Timeout: timeout},
		MaxElapsed: timeout,
		Log:        log.Component("source.http"),
	}
}

// Read fetches url. A 404 is reported as fs.ErrNotExist; other 4xx
// responses fail without retry.
func (h *HTTPReader) Read(ctx context.Context, url string) (string, error) {
	bo := backoff.NewExponentialBackOff()
	if h.MaxElapsed > 0 {
		bo.MaxElapsedTime = h.MaxElapsed
	}

	var body string
	attempt := 0
	op := func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := h.client().Do(req)
		if err != nil {
			h.Log.WithField("url", url).WithField("attempt", attempt).WithError(err).Warn("download failed, retrying")
			return err
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(io.LimitReader(resp.Body, maxTranscriptBytes))
		if err != nil {
			return err
		}
		switch {
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(&fs.PathError{Op: "get", Path: url, Err: fs.ErrNotExist})
		case resp.StatusCode >= 500:
			h.Log.WithField("url", url).WithField("status", resp.StatusCode).Warn("server error, retrying")
			return fmt.Errorf("download %s: server error %d: %s", url, resp.StatusCode, string(b))
		case resp.StatusCode >= 300:
			return backoff.Permanent(fmt.Errorf("download %s: status %d: %s", url, resp.StatusCode, string(b)))
		}
		body = string(b)
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return "", err
	}
	return body, nil
}

func (h *HTTPReader) client() *http.Client {
	if h.Client != nil {
		return h.Client
	}
	return http.DefaultClient
}
