package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/gymhub/gymclient/internal/flagx"
)

const (
	envBaseURL        = "GYM_BASE_URL"
	envDatabasePath   = "GYM_DB_PATH"
	envChatEndpoint   = "GYM_CHAT_ENDPOINT"
	envSubscribeDest  = "GYM_SUBSCRIBE_DESTINATION"
	envPublishDest    = "GYM_PUBLISH_DESTINATION"
	envNotifyPath     = "GYM_NOTIFY_PATH"
	envNotifyEvent    = "GYM_NOTIFY_EVENT"
	envReconnectDelay = "GYM_RECONNECT_DELAY"
	envLogLevel       = "GYM_LOG_LEVEL"
)

// parseEnv overlays Config with GYM_* environment variables. A dotenv file
// named by -e or -env is loaded first and must exist; otherwise ./.env is
// loaded when present. Variables already set in the process win over the
// file. An unparsable GYM_RECONNECT_DELAY panics.
func parseEnv(cfg *Config) {
	if path := flagx.EnvFileFlags(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	overlay(&cfg.BaseURL, os.Getenv(envBaseURL))
	overlay(&cfg.DatabasePath, os.Getenv(envDatabasePath))
	overlay(&cfg.ChatEndpoint, os.Getenv(envChatEndpoint))
	overlay(&cfg.SubscribeDestination, os.Getenv(envSubscribeDest))
	overlay(&cfg.PublishDestination, os.Getenv(envPublishDest))
	overlay(&cfg.NotifyPath, os.Getenv(envNotifyPath))
	overlay(&cfg.NotifyEvent, os.Getenv(envNotifyEvent))
	overlay(&cfg.LogLevel, os.Getenv(envLogLevel))

	if v := os.Getenv(envReconnectDelay); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		cfg.ReconnectDelay = d
	}
}
