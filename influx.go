package main

import (
	"context"
	"fmt"
	"time"

	_ "github.com/influxdata/influxdb1-client" // this is important because of the bug in go mod
	influxclient "github.com/influxdata/influxdb1-client/v2"

	"github.com/pridkett/aqiforecast/forecast"
)

// influxPoints builds one point per day with a defined AQI and one per
// forecast point.
func influxPoints(config tomlConfigInflux, res *pipelineResult) ([]*influxclient.Point, error) {
	var points []*influxclient.Point

	for _, day := range res.Days {
		if !day.AQI.Valid {
			continue
		}
		status := statusFor(day)
		values := map[string]interface{}{}
		for _, f := range taggedFields(status, "influx", INFLUX_TAG_LABELS) {
			values[f.Name] = f.Value
		}
		tags := map[string]string{
			"dominant": status.Dominant,
			"category": status.Category,
		}
		point, err := influxclient.NewPoint(config.Measurement, tags, values, day.Date)
		if err != nil {
			return nil, fmt.Errorf("error creating new point: %w", err)
		}
		points = append(points, point)
	}

	for _, p := range res.Forecast {
		values := map[string]interface{}{
			"yhat":       p.Value,
			"yhat_lower": p.Lower,
			"yhat_upper": p.Upper,
		}
		tags := map[string]string{"kind": string(p.Kind)}
		if p.Kind == forecast.KindForecast {
			tags["method"] = res.Model.Method()
		}
		point, err := influxclient.NewPoint(config.ForecastMeasurement, tags, values, p.Date)
		if err != nil {
			return nil, fmt.Errorf("error creating new point: %w", err)
		}
		points = append(points, point)
	}

	return points, nil
}

func publishInflux(ctx context.Context, config tomlConfigInflux, res *pipelineResult) error {
	httpConfig := influxclient.HTTPConfig{
		Addr:    fmt.Sprintf("http://%s:%d", config.Hostname, config.Port),
		Timeout: 30 * time.Second,
	}
	if config.Username != "" && config.Password != "" {
		httpConfig.Username = config.Username
		httpConfig.Password = config.Password
	}

	c, err := influxclient.NewHTTPClient(httpConfig)
	if err != nil {
		return fmt.Errorf("error creating InfluxDB Client: %w", err)
	}
	defer c.Close()

	bp, err := influxclient.NewBatchPoints(influxclient.BatchPointsConfig{
		Database:  config.Database,
		Precision: "s",
	})
	if err != nil {
		return fmt.Errorf("error creating batchpoints: %w", err)
	}

	points, err := influxPoints(config, res)
	if err != nil {
		return err
	}
	bp.AddPoints(points)

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.Write(bp); err != nil {
		return fmt.Errorf("writing to InfluxDB: %w", err)
	}
	logger.Infof("%d records published to InfluxDB", len(points))
	return nil
}
