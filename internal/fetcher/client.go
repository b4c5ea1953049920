package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// FetchError reports a remote source that could not be fetched or parsed.
// It disables only the view that depends on the source.
type FetchError struct {
	Source string
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("failed to fetch %s from %s: HTTP %d: %v", e.Source, e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("failed to fetch %s from %s: %v", e.Source, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client fetches the choropleth inputs. It never retries.
type Client struct {
	http      *http.Client
	userAgent string
	log       logrus.FieldLogger
}

// NewClient returns a client whose requests time out after timeout.
func NewClient(timeout time.Duration, userAgent string, log logrus.FieldLogger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: userAgent,
		log:       log,
	}
}

func (c *Client) get(ctx context.Context, source, url, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Source: source, URL: url, Err: err}
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", accept)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Source: source, URL: url, Err: errors.Wrap(err, "HTTP GET failed")}
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, &FetchError{Source: source, URL: url, Err: errors.Wrap(err, "read body failed")}
	}
	if resp.StatusCode != http.StatusOK {
		snip := body
		if len(snip) > 200 {
			snip = snip[:200]
		}
		return nil, &FetchError{Source: source, URL: url, Status: resp.StatusCode, Err: errors.New(string(snip))}
	}

	c.log.WithFields(logrus.Fields{
		"source":  source,
		"bytes":   len(body),
		"elapsed": time.Since(start).String(),
	}).Debug("fetched remote source")
	return body, nil
}
