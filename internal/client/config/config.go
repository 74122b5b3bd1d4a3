package config

import "time"

// Config holds runtime settings for the gym client.
//
// Fields:
//   - BaseURL: root of the REST API; the chat and notification endpoints
//     are resolved against it.
//   - DatabasePath: local SQLite file holding the token pair.
//   - ChatEndpoint: WebSocket handshake path of the STOMP broker.
//   - SubscribeDestination / PublishDestination: STOMP destinations for
//     the shared broadcast topic and outbound messages.
//   - NotifyPath / NotifyEvent: server-push stream path and event name.
//   - ReconnectDelay: fixed pause between chat reconnect attempts.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	BaseURL              string
	DatabasePath         string
	ChatEndpoint         string
	SubscribeDestination string
	PublishDestination   string
	NotifyPath           string
	NotifyEvent          string
	ReconnectDelay       time.Duration
	LogLevel             string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://localhost:8080"
	c.DatabasePath = "gymclient.db"
	c.ChatEndpoint = "/ws"
	c.SubscribeDestination = "/topic/public"
	c.PublishDestination = "/app/chat.sendMessage"
	c.NotifyPath = "/notify/subscribe"
	c.NotifyEvent = "notification"
	c.ReconnectDelay = 5 * time.Second
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
