// Package openmeteo fetches hourly air-quality readings from the
// Open-Meteo air-quality API.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/urbanair/air-quality-etl/internal/domain"
)

// hourlyParams is the fixed pollutant list requested for every city.
const hourlyParams = "pm10,pm2_5,carbon_monoxide,nitrogen_dioxide,sulphur_dioxide,ozone,uv_index"

// Client calls the air-quality endpoint with bounded retry. One failed
// city never affects another; the extractor decides what to do when all
// attempts for a city are exhausted.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retries    int
	retryWait  time.Duration
	clock      clockwork.Clock
	logger     *slog.Logger
}

// NewClient creates an air-quality API client. retries is the total
// number of attempts per city; retryWait is the fixed delay between them.
func NewClient(baseURL string, timeout, retryWait time.Duration, retries int, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		retries:    retries,
		retryWait:  retryWait,
		clock:      clockwork.NewRealClock(),
		logger:     logger,
	}
}

// SetClock swaps the time source used for retry delays. Tests inject a
// fake clock to make retry timing deterministic.
func (c *Client) SetClock(clk clockwork.Clock) {
	c.clock = clk
}

// FetchCity requests the hourly pollutant series for one city and returns
// the response body verbatim. Any transport or HTTP-status failure is
// retried up to the configured bound with a fixed inter-attempt delay;
// the last error is returned once attempts are exhausted.
func (c *Client) FetchCity(ctx context.Context, city domain.City) ([]byte, error) {
	reqURL := c.requestURL(city)

	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		body, err := c.doRequest(ctx, reqURL)
		if err == nil {
			c.logger.Info("fetched city data", "city", city.Name, "attempt", attempt, "bytes", len(body))
			c.warnIfEmptyHourly(city.Name, body)
			return body, nil
		}

		lastErr = err
		c.logger.Warn("fetch attempt failed",
			"city", city.Name,
			"attempt", attempt,
			"retries", c.retries,
			"error", err,
		)

		if attempt < c.retries {
			if !c.sleep(ctx) {
				return nil, ctx.Err()
			}
		}
	}

	return nil, fmt.Errorf("fetch %s after %d attempts: %w", city.Name, c.retries, lastErr)
}

func (c *Client) requestURL(city domain.City) string {
	params := url.Values{
		"latitude":  {strconv.FormatFloat(city.Lat, 'f', -1, 64)},
		"longitude": {strconv.FormatFloat(city.Lon, 'f', -1, 64)},
		"hourly":    {hourlyParams},
	}
	return c.baseURL + "?" + params.Encode()
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("air-quality request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("air-quality API error: status %d: %s", resp.StatusCode, body)
	}

	return body, nil
}

// warnIfEmptyHourly flags responses whose hourly block carries no data.
// The raw file is still written so the gap is visible in the staging area.
func (c *Client) warnIfEmptyHourly(city string, body []byte) {
	var payload domain.RawPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return
	}
	if payload.Hourly.Empty() {
		c.logger.Warn("empty hourly block in response", "city", city)
	}
}

func (c *Client) sleep(ctx context.Context) bool {
	timer := c.clock.NewTimer(c.retryWait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
