package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const userAgent = "tayobell/1.0"

// Fetcher returns the raw arrival feed for a single station.
type Fetcher interface {
	Fetch(ctx context.Context, stationID string) ([]byte, error)
}

// FetchError is returned when the upstream feed could not be read.
type FetchError struct {
	StationID string
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching arrivals for station %s: %v", e.StationID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream responded with status %d", e.StatusCode)
}

type Client struct {
	BaseURL    string
	ServiceKey string

	MaxRetries    int
	RetryInterval time.Duration

	HTTPClient *http.Client
	Limiter    *rate.Limiter
}

func NewClient(baseURL string, serviceKey string, timeout time.Duration, requestsPerSecond float64, maxRetries int) *Client {
	return &Client{
		BaseURL:       baseURL,
		ServiceKey:    serviceKey,
		MaxRetries:    maxRetries,
		RetryInterval: 200 * time.Millisecond,
		HTTPClient:    &http.Client{Timeout: timeout},
		Limiter:       rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

func (c *Client) Fetch(ctx context.Context, stationID string) ([]byte, error) {
	requestURL, err := c.requestURL(stationID)
	if err != nil {
		return nil, &FetchError{StationID: stationID, Err: err}
	}

	var body []byte
	operation := func() error {
		// Retries draw from the same token bucket as first attempts
		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= http.StatusInternalServerError:
			return &StatusError{StatusCode: resp.StatusCode}
		case resp.StatusCode >= http.StatusBadRequest:
			return backoff.Permanent(&StatusError{StatusCode: resp.StatusCode})
		}

		body, err = io.ReadAll(resp.Body)
		return err
	}

	retryBackOff := backoff.NewExponentialBackOff()
	retryBackOff.InitialInterval = c.RetryInterval

	b := backoff.WithContext(backoff.WithMaxRetries(retryBackOff, uint64(c.MaxRetries)), ctx)
	err = backoff.RetryNotify(operation, b, func(err error, wait time.Duration) {
		log.Debug().Err(err).Str("station", stationID).Dur("wait", wait).Msg("Retrying arrival feed fetch")
	})
	if err != nil {
		return nil, &FetchError{StationID: stationID, Err: err}
	}

	return body, nil
}

func (c *Client) requestURL(stationID string) (string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", err
	}

	query := url.Values{}
	query.Set("stId", stationID)

	// Service keys are issued pre-encoded so they are appended verbatim
	u.RawQuery = fmt.Sprintf("serviceKey=%s&%s", c.ServiceKey, query.Encode())

	return u.String(), nil
}
