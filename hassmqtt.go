package main

import (
	"encoding/json"
	"fmt"
	"strings"
)

const version = "0.2.0"

// Types for Home Assistant MQTT Discovery
type hassMqttConfigDevice struct {
	Identifiers  []string `json:"identifiers"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model"`
	Name         string   `json:"name"`
	SWVersion    string   `json:"sw_version"`
}

type hassMqttConfig struct {
	AvailabilityTopic string               `json:"availability_topic"`
	ConfigTopic       string               `json:"-"`
	Device            hassMqttConfigDevice `json:"device"`
	DeviceClass       string               `json:"device_class,omitempty"`
	Name              string               `json:"name"`
	Qos               int                  `json:"qos"`
	StateTopic        string               `json:"state_topic"`
	UniqueId          string               `json:"unique_id"`
	Icon              string               `json:"icon,omitempty"`
	UnitOfMeasurement string               `json:"unit_of_measurement,omitempty"`
}

var HASS_TAG_LABELS = []string{"name", "unit", "class"}

// hassTopic is the discovery base topic for one sensor.
func hassTopic(config tomlConfigHass, sensor string) string {
	return fmt.Sprintf("%s/%s/%s/%s", config.DiscoveryPrefix, "sensor", config.DeviceName, sensor)
}

func publishHass(client publisher, config tomlConfigHass, status *aqiStatus, identifier string) error {
	if identifier == "" {
		identifier = config.DeviceName
	}

	for _, f := range taggedFields(status, "hass", HASS_TAG_LABELS) {
		topic := hassTopic(config, f.Name)

		icon := ""
		if f.Field == "AQI" || f.Field == "Forecast" {
			icon = "mdi:air-filter"
		}

		// send the availabilty message
		if err := wait(client.Publish(topic+"/availability", 0, false, "online")); err != nil {
			return err
		}

		// send the state message
		if err := wait(client.Publish(topic+"/state", 0, false, fmt.Sprintf("%v", f.Value))); err != nil {
			return err
		}

		// send the config message
		hassConfig := hassMqttConfig{
			AvailabilityTopic: topic + "/availability",
			ConfigTopic:       topic + "/config",
			Device: hassMqttConfigDevice{
				Identifiers:  []string{identifier},
				Manufacturer: config.Manufacturer,
				Model:        config.DeviceModel,
				Name:         config.DeviceName,
				SWVersion:    version,
			},
			Name:       strings.ReplaceAll(f.Name, "_", " "),
			Qos:        0,
			StateTopic: topic + "/state",
			UniqueId:   fmt.Sprintf("%s_%s", identifier, f.Name),
			Icon:       icon,
		}
		if unit := f.Tags["unit"]; unit != "-" {
			hassConfig.UnitOfMeasurement = unit
		}
		if class := f.Tags["class"]; class != "-" {
			hassConfig.DeviceClass = class
		}

		configPayload, err := json.Marshal(hassConfig)
		if err != nil {
			logger.Errorf("Error marshalling hassConfig to JSON: %v", err)
			continue
		}
		if err := wait(client.Publish(hassConfig.ConfigTopic, 0, true, configPayload)); err != nil {
			return err
		}
	}
	logger.Infof("Home Assistant discovery published for %s", identifier)
	return nil
}
