package main

import (
	"reflect"
	"strings"

	"github.com/pridkett/aqiforecast/aqi"
	"github.com/pridkett/aqiforecast/forecast"
)

// Daily AQI as published to MQTT, Home Assistant and InfluxDB. Nil pointers
// are sub-indices that could not be computed and are not published.
type aqiStatus struct {
	Date         string   `mqtt:"date" hass:"-" influx:"-"`
	AQI          float64  `mqtt:"aqi" hass:"aqi,-,aqi" influx:"aqi"`
	Category     string   `mqtt:"category" hass:"category" influx:"-"`
	Dominant     string   `mqtt:"dominant" hass:"dominant" influx:"-"`
	PM25         *float64 `mqtt:"pm25_sub_index" hass:"pm25_sub_index" influx:"pm25_sub_index"`
	PM10         *float64 `mqtt:"pm10_sub_index" hass:"pm10_sub_index" influx:"pm10_sub_index"`
	Ozone        *float64 `mqtt:"ozone_sub_index" hass:"ozone_sub_index" influx:"ozone_sub_index"`
	NO2          *float64 `mqtt:"no2_sub_index" hass:"no2_sub_index" influx:"no2_sub_index"`
	SO2          *float64 `mqtt:"so2_sub_index" hass:"so2_sub_index" influx:"so2_sub_index"`
	CO           *float64 `mqtt:"co_sub_index" hass:"co_sub_index" influx:"co_sub_index"`
	Forecast     *float64 `mqtt:"forecast" hass:"forecast,-,aqi" influx:"-"`
	ForecastDate string   `mqtt:"forecast_date" hass:"-" influx:"-"`
}

var MQTT_TAG_LABELS = []string{"name"}
var INFLUX_TAG_LABELS = []string{"name"}

func levelPtr(l aqi.Level) *float64 {
	if !l.Valid {
		return nil
	}
	v := l.Value
	return &v
}

// statusFor converts a day with a defined AQI.
func statusFor(day aqi.DailyAQI) *aqiStatus {
	return &aqiStatus{
		Date:     day.Date.Format(dateLayout),
		AQI:      day.AQI.Value,
		Category: aqi.Category(day.AQI.Value),
		Dominant: day.Dominant.String(),
		PM25:     levelPtr(day.SubIndices[aqi.PM25]),
		PM10:     levelPtr(day.SubIndices[aqi.PM10]),
		Ozone:    levelPtr(day.SubIndices[aqi.Ozone]),
		NO2:      levelPtr(day.SubIndices[aqi.NO2]),
		SO2:      levelPtr(day.SubIndices[aqi.SO2]),
		CO:       levelPtr(day.SubIndices[aqi.CO]),
	}
}

// latestStatus returns the most recent day with a defined AQI together with
// the first forecast after it.
func latestStatus(res *pipelineResult) (*aqiStatus, bool) {
	var latest *aqi.DailyAQI
	for i := range res.Days {
		d := &res.Days[i]
		if !d.AQI.Valid {
			continue
		}
		if latest == nil || d.Date.After(latest.Date) {
			latest = d
		}
	}
	if latest == nil {
		return nil, false
	}

	status := statusFor(*latest)
	for _, p := range res.Forecast {
		if p.Kind == forecast.KindForecast && p.Date.After(latest.Date) {
			v := p.Value
			status.Forecast = &v
			status.ForecastDate = p.Date.Format(dateLayout)
			break
		}
	}
	return status, true
}

func getFieldTags(field reflect.StructField, lookupKey string, defaultLabels []string) map[string]string {
	tags := make(map[string]string)
	labellessTagsValid := true

	if tag, ok := field.Tag.Lookup(lookupKey); ok {
		tagParts := strings.Split(tag, ",")
		for i, tag := range tagParts {
			splitTag := strings.Split(tag, ":")
			if len(splitTag) == 1 {
				if labellessTagsValid {
					if i < len(defaultLabels) {
						tags[defaultLabels[i]] = splitTag[0]
					} else {
						logger.Errorf("Invalid tag - too many labelless tags: %s", tag)
					}
				} else {
					logger.Errorf("Invalid tag - labelless tags not allowed after labeled tag: %s", tag)
				}
			} else if len(splitTag) == 2 {
				labellessTagsValid = false
				tags[splitTag[0]] = splitTag[1]
			} else {
				logger.Errorf("Invalid tag - too many parts: %s", tag)
			}
		}
	}
	return tags
}

// taggedField is one published value of a status struct.
type taggedField struct {
	Field string            // Go field name
	Name  string            // name from the struct tag
	Tags  map[string]string // every label parsed from the struct tag
	Value interface{}
}

// taggedFields walks the struct pointed to by status and returns the fields
// to publish under lookupKey. Fields tagged "-" and nil pointers are skipped.
func taggedFields(status interface{}, lookupKey string, defaultLabels []string) []taggedField {
	v := reflect.ValueOf(status).Elem()
	typeOfStatus := v.Type()

	var fields []taggedField
	for i := 0; i < v.NumField(); i++ {
		field := typeOfStatus.Field(i)
		name := field.Name

		tags := getFieldTags(field, lookupKey, defaultLabels)
		if tagName, ok := tags["name"]; ok {
			if tagName == "-" {
				logger.Debugf("Ignoring field %s for %s", field.Name, lookupKey)
				continue
			}
			name = tagName
		}

		fv := v.Field(i)
		if fv.Kind() == reflect.Ptr {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}
		fields = append(fields, taggedField{Field: field.Name, Name: name, Tags: tags, Value: fv.Interface()})
	}
	return fields
}
