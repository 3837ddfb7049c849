package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"shorewatch/internal/types"
)

// knotsToMetersPerSecond converts CO-OPS wind speeds (reported in knots on
// the english unit system) to m/s to match NDBC buoy readings.
const knotsToMetersPerSecond = 0.514444

// EnvironmentalClient fetches ocean condition data from two NOAA services:
// NDBC realtime buoy observation files (fixed-width text) and the CO-OPS
// data API (JSON) for water levels, tide predictions, and shore winds.
// Both are free, unauthenticated, and occasionally stale or gappy; every
// field in the returned readings is therefore optional.
type EnvironmentalClient struct {
	base         *BaseClient
	ndbcBaseURL  string
	coopsBaseURL string
	nowFn        func() time.Time
}

// EnvironmentalClientConfig configures an EnvironmentalClient.
type EnvironmentalClientConfig struct {
	NDBCBaseURL  string
	COOPSBaseURL string
	Timeout      time.Duration
}

// NewEnvironmentalClient creates a NOAA data client with its own circuit
// breaker, shared across both NOAA services.
func NewEnvironmentalClient(cfg EnvironmentalClientConfig, opts ...BaseClientOption) *EnvironmentalClient {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	return &EnvironmentalClient{
		base:         NewBaseClient(httpClient, "noaa", "shorewatch/1.0", opts...),
		ndbcBaseURL:  cfg.NDBCBaseURL,
		coopsBaseURL: cfg.COOPSBaseURL,
		nowFn:        time.Now,
	}
}

// FetchEnvironmental fetches buoy and tide data for one zone concurrently. A reading
// that fails to fetch comes back nil inside the snapshot; FetchEnvironmental returns
// an error only when both sources failed, since a half-populated snapshot is
// still useful to the dashboard.
func (c *EnvironmentalClient) FetchEnvironmental(ctx context.Context, zone types.ZoneConfig) (*types.EnvironmentalData, error) {
	var (
		buoy    *types.BuoyReading
		tide    *types.TideReading
		wind    *coopsWind
		buoyErr error
		tideErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		buoy, buoyErr = c.FetchBuoy(gctx, zone.BuoyStationID)
		return nil // failures are captured, not propagated
	})
	g.Go(func() error {
		tide, tideErr = c.FetchTide(gctx, zone.TideStationID)
		return nil
	})
	g.Go(func() error {
		// Shore wind from the tide station; waverider buoys often carry no
		// anemometer. Best effort only.
		wind, _ = c.fetchWind(gctx, zone.TideStationID)
		return nil
	})
	_ = g.Wait()

	if buoyErr != nil && tideErr != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamEnvironmental,
			fmt.Sprintf("all environmental sources failed for zone %s", zone.ID), buoyErr)
	}

	if buoy != nil && buoy.WindSpeed == nil && wind != nil {
		buoy.WindSpeed = &wind.speedMS
		if buoy.WindDirection == nil && wind.direction != nil {
			buoy.WindDirection = wind.direction
		}
	}

	return &types.EnvironmentalData{Buoy: buoy, Tide: tide}, nil
}

// FetchBuoy retrieves and parses the latest observation row from an NDBC
// realtime2 station file.
func (c *EnvironmentalClient) FetchBuoy(ctx context.Context, stationID string) (*types.BuoyReading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/%s.txt", c.ndbcBaseURL, stationID), nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected,
			"failed to build NDBC request", err)
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, types.NewAppError(types.ErrCodeUpstreamEnvironmental,
			fmt.Sprintf("NDBC station %s returned %d", stationID, resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamEnvironmental,
			"failed to read NDBC response", err)
	}

	reading, err := parseNDBCRealtime(stationID, string(body))
	if err != nil {
		return nil, err
	}
	reading.FetchedAt = c.nowFn()
	return reading, nil
}

// parseNDBCRealtime extracts the most recent observation from an NDBC
// realtime2 text file. The format is whitespace-separated columns with two
// leading '#' header lines; the first data row is the newest observation.
//
// Column layout (standard meteorological file):
//
//	YY MM DD hh mm WDIR WSPD GST WVHT DPD APD MWD PRES ATMP WTMP DEWP VIS PTDY TIDE
//	 0  1  2  3  4    5    6   7    8   9  10  11   12   13   14   ...
//
// Missing values appear as "MM" or as sentinel numbers (99.0, 999.0, 9999.0).
func parseNDBCRealtime(stationID, raw string) (*types.BuoyReading, error) {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 15 {
			continue
		}
		return &types.BuoyReading{
			StationID:     stationID,
			WindDirection: parseNDBCValue(fields[5]),
			WindSpeed:     parseNDBCValue(fields[6]),
			WaveHeight:    parseNDBCValue(fields[8]),
			WavePeriod:    parseNDBCValue(fields[9]),
			AirTemp:       parseNDBCValue(fields[13]),
			WaterTemp:     parseNDBCValue(fields[14]),
		}, nil
	}
	return nil, types.NewAppError(types.ErrCodeUpstreamEnvironmental,
		fmt.Sprintf("NDBC station %s file contained no data rows", stationID), nil)
}

// parseNDBCValue parses one NDBC field, returning nil for the file format's
// missing-value markers.
func parseNDBCValue(field string) *float64 {
	if field == "MM" {
		return nil
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return nil
	}
	// Sentinel values the format uses for "not measured".
	if v == 99.0 || v == 999.0 || v == 9999.0 {
		return nil
	}
	return &v
}

// CO-OPS data API response shapes. All numeric values arrive as strings.
type coopsWaterLevelResponse struct {
	Data []struct {
		Time  string `json:"t"`
		Value string `json:"v"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type coopsPredictionsResponse struct {
	Predictions []struct {
		Time  string `json:"t"`
		Value string `json:"v"`
		Type  string `json:"type"` // "H" or "L"
	} `json:"predictions"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// FetchTide retrieves the latest water level and today's high/low predictions
// from a CO-OPS station. The two products are fetched concurrently; either
// may be absent in the result. The error return fires only when both fail.
func (c *EnvironmentalClient) FetchTide(ctx context.Context, stationID string) (*types.TideReading, error) {
	var (
		level       *float64
		predictions []types.TidePrediction
		levelErr    error
		predErr     error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		level, levelErr = c.fetchWaterLevel(gctx, stationID)
		return nil
	})
	g.Go(func() error {
		predictions, predErr = c.fetchTidePredictions(gctx, stationID)
		return nil
	})
	_ = g.Wait()

	if levelErr != nil && predErr != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamEnvironmental,
			fmt.Sprintf("CO-OPS station %s unavailable", stationID), levelErr)
	}

	now := c.nowFn()
	return &types.TideReading{
		StationID:    stationID,
		CurrentLevel: level,
		Predictions:  predictions,
		State:        deriveTideState(now, predictions),
		FetchedAt:    now,
	}, nil
}

func (c *EnvironmentalClient) fetchWaterLevel(ctx context.Context, stationID string) (*float64, error) {
	params := url.Values{
		"product":     {"water_level"},
		"date":        {"latest"},
		"station":     {stationID},
		"datum":       {"MLLW"},
		"units":       {"english"},
		"time_zone":   {"gmt"},
		"format":      {"json"},
		"application": {"shorewatch"},
	}

	var out coopsWaterLevelResponse
	if err := c.coopsGet(ctx, params, &out); err != nil {
		return nil, err
	}
	if out.Error != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamEnvironmental,
			fmt.Sprintf("CO-OPS water_level error: %s", out.Error.Message), nil)
	}
	if len(out.Data) == 0 {
		return nil, types.NewAppError(types.ErrCodeUpstreamEnvironmental,
			"CO-OPS water_level returned no observations", nil)
	}

	v, err := strconv.ParseFloat(out.Data[len(out.Data)-1].Value, 64)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamEnvironmental,
			"CO-OPS water_level value not numeric", err)
	}
	return &v, nil
}

func (c *EnvironmentalClient) fetchTidePredictions(ctx context.Context, stationID string) ([]types.TidePrediction, error) {
	params := url.Values{
		"product":     {"predictions"},
		"date":        {"today"},
		"interval":    {"hilo"},
		"station":     {stationID},
		"datum":       {"MLLW"},
		"units":       {"english"},
		"time_zone":   {"gmt"},
		"format":      {"json"},
		"application": {"shorewatch"},
	}

	var out coopsPredictionsResponse
	if err := c.coopsGet(ctx, params, &out); err != nil {
		return nil, err
	}
	if out.Error != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamEnvironmental,
			fmt.Sprintf("CO-OPS predictions error: %s", out.Error.Message), nil)
	}

	predictions := make([]types.TidePrediction, 0, len(out.Predictions))
	for _, p := range out.Predictions {
		t, err := time.Parse("2006-01-02 15:04", p.Time)
		if err != nil {
			continue
		}
		v, err := strconv.ParseFloat(p.Value, 64)
		if err != nil {
			continue
		}
		predictions = append(predictions, types.TidePrediction{
			Time:  t,
			Level: v,
			High:  p.Type == "H",
		})
	}
	return predictions, nil
}

type coopsWindResponse struct {
	Data []struct {
		Time      string `json:"t"`
		Speed     string `json:"s"` // knots
		Direction string `json:"d"` // degrees
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// coopsWind is a parsed shore wind observation, converted to m/s.
type coopsWind struct {
	speedMS   float64
	direction *float64
}

// fetchWind retrieves the latest shore wind observation from a CO-OPS
// station, converting knots to m/s so readings are comparable with NDBC.
func (c *EnvironmentalClient) fetchWind(ctx context.Context, stationID string) (*coopsWind, error) {
	params := url.Values{
		"product":     {"wind"},
		"date":        {"latest"},
		"station":     {stationID},
		"units":       {"english"},
		"time_zone":   {"gmt"},
		"format":      {"json"},
		"application": {"shorewatch"},
	}

	var out coopsWindResponse
	if err := c.coopsGet(ctx, params, &out); err != nil {
		return nil, err
	}
	if out.Error != nil || len(out.Data) == 0 {
		return nil, types.NewAppError(types.ErrCodeUpstreamEnvironmental,
			"CO-OPS wind returned no observations", nil)
	}

	latest := out.Data[len(out.Data)-1]
	knots, err := strconv.ParseFloat(latest.Speed, 64)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamEnvironmental,
			"CO-OPS wind speed not numeric", err)
	}

	wind := &coopsWind{speedMS: knots * knotsToMetersPerSecond}
	if dir, err := strconv.ParseFloat(latest.Direction, 64); err == nil {
		wind.direction = &dir
	}
	return wind, nil
}

func (c *EnvironmentalClient) coopsGet(ctx context.Context, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.coopsBaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected,
			"failed to build CO-OPS request", err)
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.NewAppError(types.ErrCodeUpstreamEnvironmental,
			fmt.Sprintf("CO-OPS returned %d", resp.StatusCode), nil)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return types.NewAppError(types.ErrCodeUpstreamEnvironmental,
			"failed to decode CO-OPS response", err)
	}
	return nil
}

// deriveTideState infers rising or falling from the next upcoming prediction:
// an approaching high tide means the water is rising now, an approaching low
// means it is falling. With no future predictions the state is unknown.
func deriveTideState(now time.Time, predictions []types.TidePrediction) types.TideState {
	for _, p := range predictions {
		if p.Time.After(now) {
			if p.High {
				return types.TideRising
			}
			return types.TideFalling
		}
	}
	return types.TideUnknown
}
