package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Backend
		Catalog
		Session
		Introspect
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	// Backend is the account and shelf provider the gateway fronts.
	Backend struct {
		BaseURL string
		Timeout time.Duration
	}
	// Catalog is the public book catalog used for browsing and search.
	Catalog struct {
		BaseURL string
		Timeout time.Duration
	}
	// Session controls where and how the session triple is persisted.
	Session struct {
		DatabasePath  string
		EncryptionKey string // Base64, 32 bytes decoded. Overrides everything else.
		Passphrase    string // Derives the key when no explicit key is set.
		KeyFilePath   string
	}
	// Introspect controls the periodic token validity check.
	Introspect struct {
		Enabled  bool
		Schedule string // Cron format or @every interval
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8288)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("backend_base_url", "http://localhost:8080")
	v.SetDefault("backend_timeout", "10s")
	v.SetDefault("catalog_base_url", "https://openlibrary.org")
	v.SetDefault("catalog_timeout", "10s")
	v.SetDefault("session_database_path", DefaultDatabasePath)
	v.SetDefault("session_encryption_key", "")
	v.SetDefault("session_passphrase", "")
	v.SetDefault("session_key_file_path", "")
	v.SetDefault("introspect_enabled", true)
	v.SetDefault("introspect_schedule", "@every 5m")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Backend: Backend{
			BaseURL: v.GetString("BACKEND_BASE_URL"),
			Timeout: v.GetDuration("BACKEND_TIMEOUT"),
		},
		Catalog: Catalog{
			BaseURL: v.GetString("CATALOG_BASE_URL"),
			Timeout: v.GetDuration("CATALOG_TIMEOUT"),
		},
		Session: Session{
			DatabasePath:  v.GetString("SESSION_DATABASE_PATH"),
			EncryptionKey: v.GetString("SESSION_ENCRYPTION_KEY"),
			Passphrase:    v.GetString("SESSION_PASSPHRASE"),
			KeyFilePath:   v.GetString("SESSION_KEY_FILE_PATH"),
		},
		Introspect: Introspect{
			Enabled:  v.GetBool("INTROSPECT_ENABLED"),
			Schedule: v.GetString("INTROSPECT_SCHEDULE"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}
