// Package config loads runtime configuration for the gym client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment variables GYM_*, optionally seeded from a dotenv file
//     (-e or -env, else ./.env when present; see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the API
//	-d string   local token database path
//	-r int      chat reconnect delay (seconds)
//	-l string   log level
//
// # JSON schema
//
// Durations may be strings like "5s" or integer nanoseconds:
//
//	{
//	  "base_url": "https://api.example.com",
//	  "database_path": "gymclient.db",
//	  "chat_endpoint": "/ws",
//	  "subscribe_destination": "/topic/public",
//	  "publish_destination": "/app/chat.sendMessage",
//	  "notify_path": "/notify/subscribe",
//	  "notify_event": "notification",
//	  "reconnect_delay": "5s",
//	  "log_level": "info"
//	}
package config
