package config

import (
	"os"
	"strconv"
)

// Config holds env-sourced configuration. Secrets (APIKey, SMTPPassword) are
// only ever read from here, never from the settings table.
type Config struct {
	APIKey          string
	MySQLDSN        string
	RedisURL        string
	UpstreamBaseURL string
	Port            string
	PollInterval    int
	LogLevel        string
	Timezone        string

	SMTPHost          string
	SMTPPort          int
	SMTPUser          string
	SMTPPassword      string
	SMTPFrom          string
	NotificationEmail string
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		if def == "" {
			return ""
		}
		return def
	}
	return v
}

func Load() Config {
	pi, _ := strconv.Atoi(getenv("POLL_INTERVAL_MINUTES", "5"))
	sp, _ := strconv.Atoi(getenv("SMTP_PORT", "587"))
	return Config{
		APIKey:          getenv("API_KEY", "change-me"),
		MySQLDSN:        getenv("MYSQL_DSN", "loadlogger:loadlogger@tcp(localhost:3306)/loadlogger"),
		RedisURL:        getenv("REDIS_URL", ""),
		UpstreamBaseURL: getenv("UPSTREAM_BASE_URL", "https://familyload.kamopower.com/api"),
		Port:            getenv("PORT", "8080"),
		PollInterval:    pi,
		LogLevel:        getenv("LOG_LEVEL", "INFO"),
		Timezone:        getenv("TZ_NAME", "America/Chicago"),

		SMTPHost:          getenv("SMTP_HOST", ""),
		SMTPPort:          sp,
		SMTPUser:          getenv("SMTP_USER", ""),
		SMTPPassword:      getenv("SMTP_PASSWORD", ""),
		SMTPFrom:          getenv("SMTP_FROM", ""),
		NotificationEmail: getenv("NOTIFICATION_EMAIL", ""),
	}
}
