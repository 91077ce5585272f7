package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // No authentication required (default)
	AuthModeLocal AuthMode = "local" // Local user database with sessions
)

type (
	Config struct {
		HTTP
		Global
		Database
		DAM
		Storage
		Languages
		Cleanup
		Tasks
		Auth
	}

	HTTP struct {
		Port int32
		Host string
		// BaseURL is this host as the picker reaches it, used when
		// rendering callback and file URLs.
		BaseURL string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}

	Database struct {
		Path string
	}

	// DAM describes the remote asset management server.
	DAM struct {
		// ServerURL is the picker application URL. Its origin is the only
		// target outgoing window messages are addressed to.
		ServerURL string
		// Extensions the picker may deliver, lowercase, without dots.
		Extensions []string
	}

	Storage struct {
		// Dir is the root directory for stored binaries.
		Dir string
		// Subdir below Dir that imported binaries go into. May be empty.
		Subdir string
	}

	// Languages carries the host language set and its mapping to DAM
	// language codes. A host language mapped to "none" gets no translation.
	Languages struct {
		Current string
		Enabled []string
		// Mapping is "host:dam" pairs, e.g. "en:en-US,de:de-DE,fr:none".
		Mapping map[string]string
	}

	Cleanup struct {
		Enabled  bool
		Schedule string // Cron format: "30 3 * * *" = daily at 03:30
		// TokenTTL is how long picker tokens and their imported-record
		// lists are kept.
		TokenTTL time.Duration
	}

	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}

	Auth struct {
		Mode            AuthMode
		SessionLifetime time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("base_url", "http://localhost:8188")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// DAM defaults
	v.SetDefault("dam_server_url", "")
	v.SetDefault("dam_extensions", "jpg,jpeg,png,gif,tif,tiff")

	// Storage defaults
	v.SetDefault("storage_dir", "./files")
	v.SetDefault("storage_subdir", DefaultStorageSubdir)

	// Language defaults: single English host, identity-ish mapping
	v.SetDefault("language_current", "en")
	v.SetDefault("language_enabled", "en")
	v.SetDefault("language_mapping", "en:en-US")

	// Cleanup defaults
	v.SetDefault("cleanup_enabled", true)
	v.SetDefault("cleanup_schedule", "30 3 * * *") // Daily at 03:30
	v.SetDefault("cleanup_token_ttl", "720h")      // 30 days

	// Auth defaults
	v.SetDefault("auth_mode", "none")
	v.SetDefault("auth_session_lifetime", "24h")
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_secure_cookies", true)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	return &Config{
		HTTP: HTTP{
			Port:    v.GetInt32("PORT"),
			Host:    v.GetString("HOST"),
			BaseURL: strings.TrimRight(v.GetString("BASE_URL"), "/"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		DAM: DAM{
			ServerURL:  v.GetString("DAM_SERVER_URL"),
			Extensions: splitList(v.GetString("DAM_EXTENSIONS")),
		},
		Storage: Storage{
			Dir:    v.GetString("STORAGE_DIR"),
			Subdir: v.GetString("STORAGE_SUBDIR"),
		},
		Languages: Languages{
			Current: v.GetString("LANGUAGE_CURRENT"),
			Enabled: splitList(v.GetString("LANGUAGE_ENABLED")),
			Mapping: parseMapping(v.GetString("LANGUAGE_MAPPING")),
		},
		Cleanup: Cleanup{
			Enabled:  v.GetBool("CLEANUP_ENABLED"),
			Schedule: v.GetString("CLEANUP_SCHEDULE"),
			TokenTTL: v.GetDuration("CLEANUP_TOKEN_TTL"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Auth: Auth{
			Mode:            AuthMode(v.GetString("AUTH_MODE")),
			SessionLifetime: v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:      v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:   v.GetBool("AUTH_SECURE_COOKIES"),
		},
	}
}

// splitList parses a comma-separated value, trimming blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseMapping parses "host:dam" pairs. Malformed pairs are skipped.
func parseMapping(s string) map[string]string {
	mapping := make(map[string]string)
	for _, pair := range splitList(s) {
		host, dam, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		host = strings.TrimSpace(host)
		dam = strings.TrimSpace(dam)
		if host == "" || dam == "" {
			continue
		}
		mapping[host] = dam
	}
	return mapping
}
