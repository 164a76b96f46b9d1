package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"assistant-ai/internal/contextutil"
)

const fetchTimeout = 10 * time.Second

// Report is the part of a weather observation the answer template uses.
type Report struct {
	Temp        float64         `json:"temp"`
	FeelsLike   float64         `json:"feels_like"`
	Humidity    float64         `json:"humidity"`
	Description string          `json:"description"`
	WindSpeed   float64         `json:"wind_speed"`
	Raw         json.RawMessage `json:"raw,omitempty"`
}

type currentWeather struct {
	Main struct {
		Temp      *float64 `json:"temp"`
		FeelsLike float64  `json:"feels_like"`
		Humidity  float64  `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// OpenWeatherClient fetches current conditions from the OpenWeather API.
type OpenWeatherClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

// NewOpenWeatherClient creates a client that makes at most perMinute requests per minute.
func NewOpenWeatherClient(baseURL, apiKey string, perMinute int) *OpenWeatherClient {
	if perMinute <= 0 {
		perMinute = 60
	}
	return &OpenWeatherClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: fetchTimeout},
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60), min(perMinute, 5)),
	}
}

// Fetch returns current metric conditions for city, optionally qualified by state.
func (c *OpenWeatherClient) Fetch(ctx context.Context, city, state string) (*Report, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if city == "" {
		return nil, fmt.Errorf("city is required")
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("weather API key is not configured")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	q := city
	if state != "" {
		q = city + "," + state
	}
	params := url.Values{}
	params.Set("q", q)
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/data/2.5/weather?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		logger.WarnContext(ctx, "weather API returned an error", "status", resp.StatusCode, "location", q)
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var cw currentWeather
	if err := json.Unmarshal(raw, &cw); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if cw.Main.Temp == nil {
		return nil, fmt.Errorf("response has no temperature")
	}

	report := &Report{
		Temp:      *cw.Main.Temp,
		FeelsLike: cw.Main.FeelsLike,
		Humidity:  cw.Main.Humidity,
		WindSpeed: cw.Wind.Speed,
		Raw:       raw,
	}
	if len(cw.Weather) > 0 {
		report.Description = cw.Weather[0].Description
	}
	return report, nil
}
