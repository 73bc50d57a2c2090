// Package mqtt wires the paho client to the ingestion pipeline: subscribe on
// every (re)connect, deliver each message to the handler, and keep retrying
// the initial connect with exponential backoff.
package mqtt

import (
	"context"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/iotlab/mqtt-exporter/internal/config"
	"github.com/iotlab/mqtt-exporter/internal/handler"
)

func BuildClient(cfg *config.Config, pipeline *handler.Pipeline) mqtt.Client {
	h := func(_ mqtt.Client, msg mqtt.Message) {
		pipeline.Ingest(context.Background(), msg.Topic(), msg.Payload())
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBrokerURL).
		SetClientID(cfg.MQTTClientID).
		SetOrderMatters(false).
		SetCleanSession(false).
		SetKeepAlive(time.Duration(cfg.MQTTKeepAliveSec) * time.Second).
		SetPingTimeout(10 * time.Second).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	if cfg.MQTTUsername != "" && cfg.MQTTPassword != "" {
		opts.SetUsername(cfg.MQTTUsername)
		opts.SetPassword(cfg.MQTTPassword)
	}

	opts.OnConnect = func(c mqtt.Client) {
		cfg.Logger.Info("connected to broker", "broker", cfg.MQTTBrokerURL)
		if token := c.Subscribe(cfg.MQTTTopic, cfg.MQTTQoS, h); token.Wait() && token.Error() != nil {
			cfg.Logger.Error("mqtt subscribe error", "error", token.Error())
		} else {
			cfg.Logger.Info("listening", "topic", cfg.MQTTTopic, "qos", cfg.MQTTQoS)
		}
	}
	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		cfg.Logger.Warn("mqtt connection lost", "error", err)
	}

	return mqtt.NewClient(opts)
}

// ConnectWithBackoff retries the initial connect until success or cancel.
func ConnectWithBackoff(ctx context.Context, cfg *config.Config, client mqtt.Client, start, max time.Duration) {
	backoff := start
	for {
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			cfg.Logger.Warn("mqtt connect error", "error", token.Error(), "retry_in", backoff.String())
			select {
			case <-time.After(backoff):
				if backoff < max {
					backoff *= 2
				}
			case <-ctx.Done():
				cfg.Logger.Info("context cancelled before mqtt connect")
				return
			}
			continue
		}
		break
	}
}
