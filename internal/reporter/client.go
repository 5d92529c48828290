// Package reporter fetches per-template call statistics from the reporting portal.
package reporter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"kpi-sync-go/internal/logger"
	"kpi-sync-go/internal/types"
)

// ListName is the summary list on a rendered template report.
const ListName = "normal-list1-dummy-0"

const dateLayout = "2006/01/02"

type Client struct {
	baseURL    string
	operatorID string
	maxRetries int
	httpClient *http.Client
	newBackOff func() backoff.BackOff
	log        *logrus.Entry
}

type Option func(*Client)

// WithBackOff replaces the retry policy; maxRetries still caps the attempts.
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(c *Client) { c.newBackOff = fn }
}

func NewClient(baseURL, operatorID string, maxRetries int, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		operatorID: operatorID,
		maxRetries: maxRetries,
		httpClient: &http.Client{Timeout: 12 * time.Second},
		newBackOff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.MaxElapsedTime = 30 * time.Second
			return bo
		},
		log: logger.New().WithField("component", "reporter"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchTemplate renders template for day and returns its counters.
func (c *Client) FetchTemplate(ctx context.Context, template string, day time.Time) (types.TemplateCounters, error) {
	log := c.log.WithField("template", template)
	body, err := c.get(ctx, c.reportURL(template, day))
	if err != nil {
		log.WithError(err).Error("report fetch failed")
		return types.TemplateCounters{}, fmt.Errorf("fetch %s: %w", template, err)
	}
	t, err := ParseTable(bytes.NewReader(body), ListName)
	if err != nil {
		return types.TemplateCounters{}, fmt.Errorf("%s: %w", template, err)
	}
	counters, err := t.Counters()
	if err != nil {
		return types.TemplateCounters{}, fmt.Errorf("%s: %w", template, err)
	}
	log.WithFields(logrus.Fields{
		"rows":        len(t.Rows),
		"total_calls": counters.TotalCalls,
	}).Info("report parsed")
	return counters, nil
}

// FetchGroups fetches the template of every group. Templates are fetched one
// after another since the portal serves one report per operator session.
func (c *Client) FetchGroups(ctx context.Context, groups []types.Group, day time.Time) (types.RawData, error) {
	d := types.NewRawData()
	for _, g := range groups {
		key := types.TemplateKey(g)
		counters, err := c.FetchTemplate(ctx, key, day)
		if err != nil {
			return types.RawData{}, err
		}
		d.Templates[key] = counters
	}
	return d, nil
}

func (c *Client) reportURL(template string, day time.Time) string {
	q := url.Values{}
	q.Set("operator", c.operatorID)
	q.Set("template", template)
	q.Set("from", day.Format(dateLayout))
	q.Set("to", day.Format(dateLayout))
	return c.baseURL + "/report?" + q.Encode()
}

// get retries network errors and 5xx responses; 4xx responses fail at once.
func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("server error: %d", resp.StatusCode)
		}
		if resp.StatusCode >= 300 {
			return backoff.Permanent(fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(b)))
		}
		body = b
		return nil
	}
	notify := func(err error, wait time.Duration) {
		c.log.WithError(err).WithField("retry_in", wait.String()).Warn("report request failed, retrying")
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), uint64(c.maxRetries)), ctx)
	if err := backoff.RetryNotify(operation, bo, notify); err != nil {
		return nil, err
	}
	return body, nil
}
