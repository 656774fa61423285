package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/go-co-op/gocron"
	"github.com/withmandala/go-log"
	"golang.org/x/sync/errgroup"

	"github.com/pridkett/aqiforecast/aqi"
	"github.com/pridkett/aqiforecast/dataset"
	"github.com/pridkett/aqiforecast/forecast"
)

// set up a global logger...
// see: https://stackoverflow.com/a/43827612/57626
var logger = log.New(os.Stderr)

// result of one pass over the input table
type pipelineResult struct {
	Days     []aqi.DailyAQI
	Skipped  int
	Model    *forecast.Model
	Forecast []forecast.Point
}

func main() {
	logger = log.New(os.Stderr).WithColor()

	configFile := flag.String("config", "", "Filename with configuration")
	startDate := flag.String("start", "", "First day of the forecast window (YYYY-MM-DD)")
	endDate := flag.String("end", "", "Last day of the forecast window (YYYY-MM-DD)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	once := flag.Bool("once", false, "Run once even when a schedule is configured")
	flag.Parse()

	if *configFile == "" {
		logger.Fatal("Must specify configuration file with -config FILENAME")
	}

	config, err := loadConfig(*configFile)
	if err != nil {
		logger.Fatalf("Unable to load configuration: %v", err)
	}
	if *startDate != "" {
		config.Forecast.Start = *startDate
	}
	if *endDate != "" {
		config.Forecast.End = *endDate
	}
	if *debug || config.Debug {
		logger = logger.WithDebug()
	}

	start, end, err := config.check()
	if err != nil {
		logger.Fatal(err)
	}

	var client mqtt.Client
	if config.Mqtt != (tomlConfigMQTT{}) {
		client, err = mqttConnect(config.Mqtt)
		if err != nil {
			logger.Fatalf("Unable to connect to MQTT: %v", err)
		}
		defer client.Disconnect(250)
	} else {
		logger.Info("No MQTT configuration found - not publishing to MQTT broker")
		if config.Hass.Discovery {
			logger.Fatal("Hass configuration found but no MQTT configuration found - please configure MQTT broker")
		}
	}

	job := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := runOnce(ctx, config, client, start, end); err != nil {
			logger.Errorf("Pipeline failed: %v", err)
		}
	}

	if config.Schedule.Cron == "" || *once {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := runOnce(ctx, config, client, start, end); err != nil {
			logger.Fatal(err)
		}
		return
	}

	scheduler := gocron.NewScheduler(time.Local)
	scheduler.SingletonModeAll()
	if _, err := scheduler.Cron(config.Schedule.Cron).StartImmediately().Do(job); err != nil {
		logger.Fatalf("Invalid schedule %q: %v", config.Schedule.Cron, err)
	}
	logger.Infof("Running on schedule %q", config.Schedule.Cron)
	scheduler.StartAsync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	scheduler.Stop()
}

func runOnce(ctx context.Context, config tomlConfig, client mqtt.Client, start, end time.Time) error {
	res, err := runPipeline(config, start, end)
	if err != nil {
		return err
	}
	return publish(ctx, config, client, res)
}

// runPipeline loads the input table, computes the AQI series and forecasts
// it over [start, end].
func runPipeline(config tomlConfig, start, end time.Time) (*pipelineResult, error) {
	opts := dataset.DefaultCSVOptions()
	if config.Input.DateColumn != "" {
		opts.DateColumn = config.Input.DateColumn
	}
	if config.Input.DateFormat != "" {
		opts.DateFormat = config.Input.DateFormat
	}

	readings, err := dataset.LoadCSV(config.Input.Path, opts)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", config.Input.Path, err)
	}
	logger.Infof("Loaded %d readings from %s", len(readings), config.Input.Path)

	days := aqi.Aggregate(readings)
	defined, skipped := aqi.Defined(days)
	if skipped > 0 {
		logger.Warnf("%d of %d days have no defined AQI - excluded from the forecast", skipped, len(days))
	}

	observations := make([]forecast.Observation, len(defined))
	for i, d := range defined {
		observations[i] = forecast.Observation{Date: d.Date, Value: d.AQI.Value}
	}

	fc := forecast.DefaultConfig()
	if config.Forecast.Horizon > 0 {
		fc.Horizon = config.Forecast.Horizon
	}
	if config.Forecast.Period > 0 {
		fc.Period = config.Forecast.Period
	}
	if config.Forecast.Alpha > 0 {
		fc.Alpha = config.Forecast.Alpha
	}
	if config.Forecast.Beta > 0 {
		fc.Beta = config.Forecast.Beta
	}
	if config.Forecast.Gamma > 0 {
		fc.Gamma = config.Forecast.Gamma
	}
	if config.Forecast.Confidence > 0 {
		fc.Confidence = config.Forecast.Confidence
	}

	model, err := forecast.Fit(observations, fc)
	if err != nil {
		return nil, err
	}
	logger.Debugf("Fitted %s model, residual std error %.3f", model.Method(), model.StdErr())

	points, err := model.Predict(start, end)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		logger.Warnf("No forecast points between %s and %s (history ends %s)",
			start.Format(dateLayout), end.Format(dateLayout), model.LastDate().Format(dateLayout))
	}

	return &pipelineResult{
		Days:     days,
		Skipped:  skipped,
		Model:    model,
		Forecast: points,
	}, nil
}

// publish writes the results to every configured sink concurrently.
func publish(ctx context.Context, config tomlConfig, client mqtt.Client, res *pipelineResult) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return writeFile(config.Output.ForecastPath, func(f *os.File) error {
			return dataset.WriteForecast(f, res.Forecast)
		})
	})

	if config.Output.AQIPath != "" {
		g.Go(func() error {
			return writeFile(config.Output.AQIPath, func(f *os.File) error {
				return dataset.WriteAQI(f, res.Days)
			})
		})
	}

	if config.Influx.Hostname != "" {
		g.Go(func() error {
			return publishInflux(ctx, config.Influx, res)
		})
	}

	if client != nil {
		status, ok := latestStatus(res)
		if !ok {
			logger.Warnf("No day with a defined AQI - skipping MQTT")
		} else {
			g.Go(func() error {
				if err := publishMQTT(client, config.Mqtt, status); err != nil {
					return err
				}
				if config.Hass.Discovery {
					return publishHass(client, config.Hass, status, config.Hass.ObjectId)
				}
				return nil
			})
		}
	}

	return g.Wait()
}

func writeFile(path string, write func(f *os.File) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Infof("Wrote %s", path)
	return nil
}
