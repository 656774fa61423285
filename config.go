package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/naoina/toml"
)

const dateLayout = "2006-01-02"

// Input settings for the daily pollutant table
type tomlConfigInput struct {
	Path       string `validate:"required"`
	DateColumn string
	DateFormat string
}

type tomlConfigForecast struct {
	Start      string  `validate:"required,datetime=2006-01-02"`
	End        string  `validate:"required,datetime=2006-01-02"`
	Horizon    int     `validate:"gte=0"`
	Period     int     `validate:"gte=0"`
	Alpha      float64 `validate:"gte=0,lte=1"`
	Beta       float64 `validate:"gte=0,lte=1"`
	Gamma      float64 `validate:"gte=0,lte=1"`
	Confidence float64 `validate:"gte=0"`
}

type tomlConfigOutput struct {
	ForecastPath string `validate:"required"`
	AQIPath      string
}

// MQTT settings for overall configuration
type tomlConfigMQTT struct {
	BrokerHost     string `validate:"required_with=BrokerPort"`
	BrokerPort     int    `validate:"omitempty,min=1,max=65535"`
	BrokerUsername string
	BrokerPassword string
	ClientId       string
	TopicPrefix    string
	Topic          string
}

type tomlConfigHass struct {
	Discovery       bool
	DiscoveryPrefix string
	ObjectId        string
	DeviceModel     string
	DeviceName      string
	Manufacturer    string
}

type tomlConfigInflux struct {
	Hostname            string `validate:"required_with=Database"`
	Port                int    `validate:"omitempty,min=1,max=65535"`
	Database            string `validate:"required_with=Hostname"`
	Username            string
	Password            string
	Measurement         string
	ForecastMeasurement string
}

type tomlConfigSchedule struct {
	Cron string `validate:"omitempty,cron"`
}

type tomlConfig struct {
	Debug    bool
	Input    tomlConfigInput
	Forecast tomlConfigForecast
	Output   tomlConfigOutput
	Mqtt     tomlConfigMQTT
	Hass     tomlConfigHass
	Influx   tomlConfigInflux
	Schedule tomlConfigSchedule
}

var configValidator = validator.New()

// loadConfig decodes the TOML file at path and applies environment overrides.
// A .env file in the working directory is loaded first if present.
func loadConfig(path string) (tomlConfig, error) {
	var config tomlConfig

	if err := godotenv.Load(); err != nil {
		logger.Debugf("No .env file loaded: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return config, err
	}
	defer f.Close()
	if err := toml.NewDecoder(f).Decode(&config); err != nil {
		return config, fmt.Errorf("decoding %s: %w", path, err)
	}

	config.applyEnv()
	config.applyDefaults()
	return config, nil
}

func (c *tomlConfig) applyEnv() {
	if v := os.Getenv("AQI_INFLUX_PASSWORD"); v != "" {
		c.Influx.Password = v
	}
	if v := os.Getenv("AQI_MQTT_PASSWORD"); v != "" {
		c.Mqtt.BrokerPassword = v
	}
	if v := os.Getenv("AQI_FORECAST_START"); v != "" {
		c.Forecast.Start = v
	}
	if v := os.Getenv("AQI_FORECAST_END"); v != "" {
		c.Forecast.End = v
	}
}

func (c *tomlConfig) applyDefaults() {
	if c.Output.ForecastPath == "" {
		c.Output.ForecastPath = "forecasted_AQI.csv"
	}
	if c.Mqtt.TopicPrefix == "" {
		c.Mqtt.TopicPrefix = "aqiforecast"
	}
	if c.Mqtt.Topic == "" {
		c.Mqtt.Topic = "daily"
	}
	if c.Influx.Port == 0 && c.Influx.Hostname != "" {
		c.Influx.Port = 8086
	}
	if c.Influx.Measurement == "" {
		c.Influx.Measurement = "aqi"
	}
	if c.Influx.ForecastMeasurement == "" {
		c.Influx.ForecastMeasurement = "aqi_forecast"
	}
	if c.Hass.DiscoveryPrefix == "" {
		c.Hass.DiscoveryPrefix = "homeassistant"
	}
	if c.Hass.DeviceName == "" {
		c.Hass.DeviceName = "aqiforecast"
	}
}

// check validates the configuration and returns the parsed forecast window.
func (c *tomlConfig) check() (time.Time, time.Time, error) {
	if err := configValidator.Struct(c); err != nil {
		return time.Time{}, time.Time{}, describeValidation(err)
	}
	start, _ := time.Parse(dateLayout, c.Forecast.Start)
	end, _ := time.Parse(dateLayout, c.Forecast.End)
	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("forecast start %s is after end %s", c.Forecast.Start, c.Forecast.End)
	}
	return start, end, nil
}

func describeValidation(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", strings.TrimPrefix(fe.Namespace(), "tomlConfig."), fe.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, ", "))
}
