package config

import (
	"log"
	"os"

	"github.com/cresszm/cress/pkg/cache"
	"github.com/cresszm/cress/pkg/logger"
	"github.com/cresszm/cress/pkg/notification"
	"github.com/cresszm/cress/pkg/util"
)

type Config struct {
	DBDriver          string `env:"DB_DRIVER"`
	DSN               string `env:"DSN"`
	Addr              string `env:"ADDR"`
	Mode              string `env:"MODE"`
	APIPrefix         string `env:"API_PREFIX"`
	AuthPrefix        string `env:"AUTH_PREFIX"`
	SessionSecret     string `env:"SESSION_SECRET"`
	SessionExpireDays int    `env:"SESSION_EXPIRE_DAYS"`
	Log               logger.LogConfig
	Mail              notification.MailConfig
	Cache             cache.Config

	// Object storage for APK builds and attachments.
	StorageDriver string `env:"STORAGE_DRIVER"` // local|minio
	StoragePath   string `env:"STORAGE_PATH"`

	// Optional GeoLite2 city database for audit-row locations.
	GeoIPPath string `env:"GEOIP_PATH"`

	// Requests per window for token issuance and SOS creation, in
	// ulule/limiter format, e.g. "10-M".
	TokenRate string `env:"TOKEN_RATE"`
	AlertRate string `env:"ALERT_RATE"`

	APKMaxSizeMB int `env:"APK_MAX_SIZE_MB"`

	ActivityLogRetentionDays int    `env:"ACTIVITY_LOG_RETENTION_DAYS"`
	RetentionSchedule        string `env:"RETENTION_SCHEDULE"`
}

var GlobalConfig *Config

func Load() error {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	if err := util.LoadEnv(env); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	GlobalConfig = &Config{
		DBDriver:          util.GetEnv("DB_DRIVER"),
		DSN:               util.GetEnv("DSN"),
		Addr:              util.GetEnvDefault("ADDR", ":8080"),
		Mode:              util.GetEnv("MODE"),
		APIPrefix:         util.GetEnvDefault("API_PREFIX", "/api"),
		AuthPrefix:        util.GetEnvDefault("AUTH_PREFIX", "/auth"),
		SessionSecret:     util.GetEnvDefault("SESSION_SECRET", "cress-session-secret"),
		SessionExpireDays: int(util.GetIntEnv("SESSION_EXPIRE_DAYS")),
		Log: logger.LogConfig{
			Level:      util.GetEnv("LOG_LEVEL"),
			Filename:   util.GetEnv("LOG_FILENAME"),
			MaxSize:    int(util.GetIntEnv("LOG_MAX_SIZE")),
			MaxAge:     int(util.GetIntEnv("LOG_MAX_AGE")),
			MaxBackups: int(util.GetIntEnv("LOG_MAX_BACKUPS")),
		},
		Mail: notification.MailConfig{
			Host:     util.GetEnv("MAIL_HOST"),
			Port:     util.GetIntEnv("MAIL_PORT"),
			Username: util.GetEnv("MAIL_USERNAME"),
			Password: util.GetEnv("MAIL_PASSWORD"),
			From:     util.GetEnv("MAIL_FROM"),
		},
		Cache: cache.Config{
			Type: util.GetEnvDefault("CACHE_TYPE", "local"),
			Redis: cache.RedisConfig{
				Addr:     util.GetEnvDefault("REDIS_ADDR", "localhost:6379"),
				Password: util.GetEnv("REDIS_PASSWORD"),
				DB:       int(util.GetIntEnv("REDIS_DB")),
			},
			Local: cache.LocalConfig{
				MaxSize: int(util.GetIntEnv("LOCAL_CACHE_MAX_SIZE")),
			},
		},
		StorageDriver:            util.GetEnvDefault("STORAGE_DRIVER", "local"),
		StoragePath:              util.GetEnvDefault("STORAGE_PATH", "storage"),
		GeoIPPath:                util.GetEnv("GEOIP_PATH"),
		TokenRate:                util.GetEnvDefault("TOKEN_RATE", "10-M"),
		AlertRate:                util.GetEnvDefault("ALERT_RATE", "30-M"),
		APKMaxSizeMB:             int(util.GetIntEnv("APK_MAX_SIZE_MB")),
		ActivityLogRetentionDays: int(util.GetIntEnv("ACTIVITY_LOG_RETENTION_DAYS")),
		RetentionSchedule:        util.GetEnvDefault("RETENTION_SCHEDULE", "0 3 * * *"),
	}
	if GlobalConfig.APKMaxSizeMB <= 0 {
		GlobalConfig.APKMaxSizeMB = 100
	}
	if GlobalConfig.SessionExpireDays <= 0 {
		GlobalConfig.SessionExpireDays = 7
	}
	return nil
}
