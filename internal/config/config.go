package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	GPSD GPSDConfig `yaml:"gpsd"`
	MQTT MQTTConfig `yaml:"mqtt"`
	Web  WebConfig  `yaml:"web"`
	Log  LogConfig  `yaml:"log"`
}

type GPSDConfig struct {
	Addr           string        `yaml:"addr"`
	DialTimeout    time.Duration `yaml:"dial_timeout"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
}

// UnmarshalYAML accepts durations in time.ParseDuration form ("250ms",
// "10s"); the yaml package only handles integer nanoseconds natively.
func (g *GPSDConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Addr           string `yaml:"addr"`
		DialTimeout    string `yaml:"dial_timeout"`
		ReconnectDelay string `yaml:"reconnect_delay"`
		MaxBackoff     string `yaml:"max_backoff"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	g.Addr = raw.Addr
	for _, f := range []struct {
		name string
		in   string
		out  *time.Duration
	}{
		{"dial_timeout", raw.DialTimeout, &g.DialTimeout},
		{"reconnect_delay", raw.ReconnectDelay, &g.ReconnectDelay},
		{"max_backoff", raw.MaxBackoff, &g.MaxBackoff},
	} {
		if f.in == "" {
			continue
		}
		d, err := time.ParseDuration(f.in)
		if err != nil {
			return fmt.Errorf("gpsd.%s: %w", f.name, err)
		}
		*f.out = d
	}
	return nil
}

type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
	QoS      int    `yaml:"qos"`
	Retain   bool   `yaml:"retain"`
}

type WebConfig struct {
	Listen string `yaml:"listen"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is "text" or "json".
	Format string `yaml:"format"`
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	if cfg.GPSD.Addr == "" {
		cfg.GPSD.Addr = "127.0.0.1:2947"
	}
	if cfg.GPSD.DialTimeout <= 0 {
		cfg.GPSD.DialTimeout = 2 * time.Second
	}
	if cfg.GPSD.ReconnectDelay <= 0 {
		cfg.GPSD.ReconnectDelay = 250 * time.Millisecond
	}
	if cfg.GPSD.MaxBackoff <= 0 {
		cfg.GPSD.MaxBackoff = 10 * time.Second
	}

	if cfg.MQTT.Broker == "" {
		cfg.MQTT.Broker = "tcp://127.0.0.1:1883"
	}
	if cfg.MQTT.Topic == "" {
		cfg.MQTT.Topic = "gpsd/fix"
	}
	if cfg.MQTT.QoS < 0 || cfg.MQTT.QoS > 2 {
		return Config{}, fmt.Errorf("mqtt.qos must be 0, 1 or 2")
	}

	if cfg.Web.Listen == "" {
		cfg.Web.Listen = ":8080"
	}

	switch cfg.Log.Level {
	case "":
		cfg.Log.Level = "info"
	case "debug", "info", "warn", "error":
	default:
		return Config{}, fmt.Errorf("log.level must be debug, info, warn or error")
	}
	switch cfg.Log.Format {
	case "":
		cfg.Log.Format = "text"
	case "text", "json":
	default:
		return Config{}, fmt.Errorf("log.format must be text or json")
	}

	return cfg, nil
}

// Logger builds a slog.Logger from the log section.
func (c Config) Logger() *slog.Logger {
	var level slog.Level
	switch c.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
