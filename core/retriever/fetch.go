package retriever

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
)

const maxPageSize = 4 << 20

type page struct {
	Status int
	Header http.Header
	Body   []byte
	// final url after redirects
	URL string
}

// pageFetcher loads landing pages and api responses, retrying network errors and 5xx.
type pageFetcher struct {
	client    *http.Client
	userAgent string
	retry     int
	interval  time.Duration
}

func (f *pageFetcher) get(ctx context.Context, url string, header http.Header, strategy string) (*page, error) {
	logger := log.FromContext(ctx)
	var result *page
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(newFailure(ReasonUnsupported, strategy, err))
		}
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		if f.userAgent != "" && req.Header.Get("User-Agent") == "" {
			req.Header.Set("User-Agent", f.userAgent)
		}
		resp, err := f.client.Do(req)
		if err != nil {
			tf := transportFailure(strategy, err)
			if tf.Reason == ReasonCancelled {
				return backoff.Permanent(tf)
			}
			return tf
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
		if err != nil {
			return transportFailure(strategy, err)
		}
		if resp.StatusCode >= 500 {
			sf := newFailure(ReasonHTTPStatus, strategy, fmt.Errorf("unexpected status %s", resp.Status))
			sf.Status = resp.StatusCode
			return sf
		}
		result = &page{
			Status: resp.StatusCode,
			Header: resp.Header,
			Body:   body,
			URL:    resp.Request.URL.String(),
		}
		return nil
	}

	interval := f.interval
	if interval <= 0 {
		interval = time.Second
	}
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = interval
	var b backoff.BackOff = eb
	if f.retry >= 0 {
		b = backoff.WithMaxRetries(b, uint64(f.retry))
	}
	err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), func(err error, d time.Duration) {
		logger.Debug("page fetch failed, retrying", "url", url, "err", err, "after", d)
	})
	if err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Err
		}
		return nil, AsFailure(err)
	}
	return result, nil
}

// ok rejects non 2xx pages that are not redirects.
func (p *page) ok(strategy string) error {
	if p.Status >= 200 && p.Status < 400 {
		return nil
	}
	f := newFailure(ReasonHTTPStatus, strategy, fmt.Errorf("unexpected status %d", p.Status))
	f.Status = p.Status
	return f
}
