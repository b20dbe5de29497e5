// Package weather reads current conditions from the OpenWeatherMap API.
// Callers always get a displayable result: any upstream problem degrades to
// a placeholder instead of an error.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"timesaver/backend/internal/config"
	"timesaver/backend/internal/observability"
)

var ErrUnavailable = errors.New("weather unavailable")

const placeholderDescription = "unavailable"

type Weather struct {
	City        string   `json:"city"`
	Temp        *float64 `json:"temp"`
	Description string   `json:"description"`
	Icon        *string  `json:"icon"`
}

// Placeholder is what the widget shows when the upstream call fails.
func Placeholder(city string) Weather {
	return Weather{City: city, Description: placeholderDescription}
}

type Client struct {
	cfg    config.WeatherConfig
	http   *http.Client
	logger *zap.Logger
}

func NewClient(cfg config.WeatherConfig, logger *zap.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger.Named("weather"),
	}
}

// Current returns the weather for city, or for the configured default city
// when city is blank.
func (c *Client) Current(ctx context.Context, city string) Weather {
	city = strings.TrimSpace(city)
	if city == "" {
		city = c.cfg.City
	}

	w, err := c.fetch(ctx, city)
	if err != nil {
		observability.RecordExternalFailure("weather")
		c.logger.Warn("weather fetch failed", zap.String("city", city), zap.Error(err))
		return Placeholder(city)
	}
	return w
}

type owmResponse struct {
	Main *struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
}

func (c *Client) fetch(ctx context.Context, city string) (Weather, error) {
	if c.cfg.APIKey == "" {
		return Weather{}, fmt.Errorf("%w: api key not configured", ErrUnavailable)
	}

	endpoint, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return Weather{}, fmt.Errorf("%w: base url: %v", ErrUnavailable, err)
	}
	query := endpoint.Query()
	query.Set("q", city)
	query.Set("units", "metric")
	query.Set("lang", c.cfg.Lang)
	query.Set("appid", c.cfg.APIKey)
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return Weather{}, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Weather{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Weather{}, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload owmResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Weather{}, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	if payload.Main == nil || payload.Main.Temp == nil || len(payload.Weather) == 0 {
		return Weather{}, fmt.Errorf("%w: incomplete payload", ErrUnavailable)
	}

	icon := payload.Weather[0].Icon
	return Weather{
		City:        city,
		Temp:        payload.Main.Temp,
		Description: payload.Weather[0].Description,
		Icon:        &icon,
	}, nil
}
