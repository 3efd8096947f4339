// gpsd2mqtt bridges a gpsd daemon to an MQTT broker: every TPV report
// is published as one JSON message, suitable for fleet trackers or
// home-automation consumers.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"gpsdclient/feed"
	"gpsdclient/gpsd"
	"gpsdclient/internal/config"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./gpsd2mqtt.yaml", "Path to YAML config")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}
	log := cfg.Logger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	clientID := cfg.MQTT.ClientID
	if clientID == "" {
		// Brokers disconnect clients with duplicate ids; make ours
		// unique per process.
		clientID = "gpsd2mqtt-" + uuid.NewString()[:8]
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTT.Broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Error("mqtt connect failed", "broker", cfg.MQTT.Broker, "err", token.Error())
		os.Exit(1)
	}
	defer client.Disconnect(250)
	log.Info("connected to mqtt broker", "broker", cfg.MQTT.Broker, "client_id", clientID)

	svc, err := feed.New(feed.Config{
		Addr:           cfg.GPSD.Addr,
		DialTimeout:    cfg.GPSD.DialTimeout,
		ReconnectDelay: cfg.GPSD.ReconnectDelay,
		MaxBackoff:     cfg.GPSD.MaxBackoff,
		Logger:         log,
	})
	if err != nil {
		log.Error("feed init failed", "err", err)
		os.Exit(1)
	}

	onReport := func(r gpsd.DataReport) {
		tpv, ok := r.(gpsd.TPV)
		if !ok {
			return
		}
		payload, err := gpsd.Marshal(tpv)
		if err != nil {
			log.Warn("tpv marshal failed", "err", err)
			return
		}
		token := client.Publish(cfg.MQTT.Topic, byte(cfg.MQTT.QoS), cfg.MQTT.Retain, payload)
		token.Wait()
		if token.Error() != nil {
			log.Warn("publish failed", "topic", cfg.MQTT.Topic, "err", token.Error())
		}
	}

	if err := svc.Start(ctx, onReport); err != nil {
		log.Error("feed start failed", "err", err)
		os.Exit(1)
	}
	defer svc.Close()

	log.Info("gpsd2mqtt running", "gpsd", cfg.GPSD.Addr, "topic", cfg.MQTT.Topic)
	<-ctx.Done()
	log.Info("gpsd2mqtt stopping")
}
