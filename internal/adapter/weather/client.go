// Package weather implements the monitoring loop's WeatherFetcher against
// the bureau observation API used by the ingestion stack.
package weather

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/flood-risk-engine/internal/domain"
)

// observationTimeLayout is the bureau's compact local timestamp,
// e.g. "20240426153000".
const observationTimeLayout = "20060102150405"

// Client fetches rainfall observations over HTTP and converts them into
// rainfall events.
type Client struct {
	url        string
	token      string
	httpClient *http.Client
	location   *time.Location
	lat        float64
	lon        float64
	logger     *slog.Logger
}

// NewClient creates a weather client. timezone names the station's local
// zone for timestamp conversion (observations arrive in local time).
func NewClient(url, token, timezone string, timeout time.Duration, lat, lon float64, logger *slog.Logger) (*Client, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load weather timezone %q: %w", timezone, err)
	}
	return &Client{
		url:        url,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		location:   loc,
		lat:        lat,
		lon:        lon,
		logger:     logger,
	}, nil
}

// FetchLatest retrieves the current observation batch for the configured
// coordinates and derives a realtime rainfall event. A response with no
// observations yields an empty event and no error.
func (c *Client) FetchLatest(ctx context.Context) (domain.RainfallEvent, error) {
	payload, err := json.Marshal(map[string]float64{"lat": c.lat, "lon": c.lon})
	if err != nil {
		return domain.RainfallEvent{}, fmt.Errorf("encode weather request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return domain.RainfallEvent{}, fmt.Errorf("create weather request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.RainfallEvent{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.RainfallEvent{}, fmt.Errorf("weather API error: status %d: %s", resp.StatusCode, body)
	}

	var wr response
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return domain.RainfallEvent{}, fmt.Errorf("decode weather response: %w", err)
	}

	return c.toEvent(wr)
}

// toEvent converts an observation batch into a rainfall event. Observations
// carry a 30-minute rain trace in mm, so intensity in mm/hr is twice the
// trace. Out-of-order batches are sorted; duplicate timestamps are dropped
// to keep the series strictly increasing.
func (c *Client) toEvent(wr response) (domain.RainfallEvent, error) {
	obs := wr.Data.Observations
	if len(obs) == 0 {
		return domain.RainfallEvent{}, nil
	}

	sort.Slice(obs, func(i, j int) bool {
		return obs[i].LocalDateTimeFull < obs[j].LocalDateTimeFull
	})

	rain := make([]float64, 0, len(obs))
	timestamps := make([]time.Time, 0, len(obs))
	for _, o := range obs {
		ts, err := time.ParseInLocation(observationTimeLayout, o.LocalDateTimeFull, c.location)
		if err != nil {
			c.logger.Warn("dropping observation with bad timestamp",
				"timestamp", o.LocalDateTimeFull, "error", err)
			continue
		}
		utc := ts.UTC()
		if len(timestamps) > 0 && !utc.After(timestamps[len(timestamps)-1]) {
			continue
		}
		rain = append(rain, 2*parseRainTrace(o.RainTrace))
		timestamps = append(timestamps, utc)
	}
	if len(rain) == 0 {
		return domain.RainfallEvent{}, nil
	}

	station := wr.Data.StationInfo
	name := fmt.Sprintf("%s realtime observation", station.Name)
	source := fmt.Sprintf("weather API - %s (%s)", station.Name, station.StationID)

	event, err := domain.NewRainfallEvent(name, domain.EventRealtime, rain, timestamps, source)
	if err != nil {
		return domain.RainfallEvent{}, fmt.Errorf("derive rainfall event: %w", err)
	}
	return event, nil
}

// parseRainTrace reads the bureau's rain trace field. Blank and sentinel
// values ("-") mean no measurable rain.
func parseRainTrace(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// Weather API response types.

type response struct {
	Data struct {
		Observations []observation `json:"observations"`
		StationInfo  stationInfo   `json:"station_info"`
	} `json:"data"`
}

type observation struct {
	LocalDateTimeFull string `json:"local_date_time_full"`
	RainTrace         string `json:"rain_trace"`
}

type stationInfo struct {
	Name      string `json:"name"`
	StationID string `json:"station_id"`
}
