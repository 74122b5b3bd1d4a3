package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gymhub/gymclient/internal/flagx"
)

// Duration unmarshals from either a string like "5s" or integer nanoseconds.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
	return nil
}

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent keys
// leave the corresponding Config field untouched.
type JsonConfig struct {
	BaseURL              string    `json:"base_url"`
	DatabasePath         string    `json:"database_path"`
	ChatEndpoint         string    `json:"chat_endpoint"`
	SubscribeDestination string    `json:"subscribe_destination"`
	PublishDestination   string    `json:"publish_destination"`
	NotifyPath           string    `json:"notify_path"`
	NotifyEvent          string    `json:"notify_event"`
	ReconnectDelay       *Duration `json:"reconnect_delay"`
	LogLevel             string    `json:"log_level"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Without the flag nothing is loaded. Read and unmarshal
// errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	overlay(&cfg.BaseURL, jc.BaseURL)
	overlay(&cfg.DatabasePath, jc.DatabasePath)
	overlay(&cfg.ChatEndpoint, jc.ChatEndpoint)
	overlay(&cfg.SubscribeDestination, jc.SubscribeDestination)
	overlay(&cfg.PublishDestination, jc.PublishDestination)
	overlay(&cfg.NotifyPath, jc.NotifyPath)
	overlay(&cfg.NotifyEvent, jc.NotifyEvent)
	overlay(&cfg.LogLevel, jc.LogLevel)
	if jc.ReconnectDelay != nil {
		cfg.ReconnectDelay = jc.ReconnectDelay.Duration
	}
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
