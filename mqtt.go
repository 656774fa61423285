package main

import (
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// publisher is the part of mqtt.Client used for publishing.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	r := client.OptionsReader()
	logger.Infof("Connected to MQTT at %s", r.Servers())
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	logger.Errorf("MQTT Connection lost: %v", err)
}

func mqttConnect(config tomlConfigMQTT) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()

	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", config.BrokerHost, config.BrokerPort))
	if config.BrokerPassword != "" && config.BrokerUsername != "" {
		opts.SetUsername(config.BrokerUsername)
		opts.SetPassword(config.BrokerPassword)
	}
	opts.SetClientID(config.ClientId)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return client, nil
}

func publishMQTT(client publisher, config tomlConfigMQTT, status *aqiStatus) error {
	for _, f := range taggedFields(status, "mqtt", MQTT_TAG_LABELS) {
		topic := fmt.Sprintf("%s/%s/%s", config.TopicPrefix, config.Topic, f.Name)
		logger.Debugf("field[%s] = [%v]", f.Field, f.Value)
		logger.Debugf("topic = %s", topic)
		if err := wait(client.Publish(topic, 0, false, fmt.Sprintf("%v", f.Value))); err != nil {
			return fmt.Errorf("publishing %s: %w", topic, err)
		}
	}
	logger.Infof("AQI for %s published to MQTT", status.Date)
	return nil
}

func wait(token mqtt.Token) error {
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}
