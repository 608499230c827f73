package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	DatabaseURL          string
	JWTSecret            string
	JWTIssuer            string
	AccessTTLSeconds     int64
	RefreshTTLSeconds    int64
	PublicBaseURL        string
	StorageBackend       string
	MediaStoragePath     string
	S3Bucket             string
	S3Region             string
	S3Endpoint           string
	S3AccessKeyID        string
	S3SecretAccessKey    string
	S3PublicURL          string
	DailyUploadLimit     int
	MaxUploadBytes       int64
	AvatarMaxBytes       int64
	MetricsDiskPath      string
	MetricsSampleSeconds int
	CorsOrigins          []string
	WebDir               string
	SMTPHost             string
	SMTPPort             int
	SMTPUser             string
	SMTPPassword         string
	MailFrom             string
}

func Load() Config {
	return Config{
		DatabaseURL:          mustEnv("DATABASE_URL"),
		JWTSecret:            mustEnv("JWT_SECRET"),
		JWTIssuer:            envOr("JWT_ISSUER", "shodoshare"),
		AccessTTLSeconds:     int64(envOrInt("ACCESS_TTL_SECONDS", 14400)),
		RefreshTTLSeconds:    int64(envOrInt("REFRESH_TTL_SECONDS", 1209600)),
		PublicBaseURL:        envOr("PUBLIC_BASE_URL", "http://localhost:8080"),
		StorageBackend:       strings.ToLower(envOr("STORAGE_BACKEND", "local")),
		MediaStoragePath:     envOr("MEDIA_STORAGE_PATH", "storage/media"),
		S3Bucket:             envOr("S3_BUCKET", "artworks"),
		S3Region:             envOr("S3_REGION", "auto"),
		S3Endpoint:           envOr("S3_ENDPOINT", ""),
		S3AccessKeyID:        envOr("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey:    envOr("S3_SECRET_ACCESS_KEY", ""),
		S3PublicURL:          envOr("S3_PUBLIC_URL", ""),
		DailyUploadLimit:     envOrInt("DAILY_UPLOAD_LIMIT", 3),
		MaxUploadBytes:       int64(envOrInt("MAX_UPLOAD_BYTES", 5<<20)),
		AvatarMaxBytes:       int64(envOrInt("AVATAR_MAX_BYTES", 2<<20)),
		MetricsDiskPath:      envOr("METRICS_DISK_PATH", "storage/media"),
		MetricsSampleSeconds: atLeast(envOrInt("METRICS_SAMPLE_INTERVAL", 5), 1),
		CorsOrigins:          parseCSV(envOr("CORS_ORIGINS", "")),
		WebDir:               envOr("WEB_DIR", "web"),
		SMTPHost:             envOr("SMTP_HOST", ""),
		SMTPPort:             envOrInt("SMTP_PORT", 587),
		SMTPUser:             envOr("SMTP_USER", ""),
		SMTPPassword:         envOr("SMTP_PASSWORD", ""),
		MailFrom:             envOr("MAIL_FROM", "noreply@shodoshare.jp"),
	}
}

func mustEnv(key string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		panic("missing env var: " + key)
	}
	return value
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func atLeast(value, min int) int {
	if value < min {
		return min
	}
	return value
}

func parseCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if value != "" {
			items = append(items, value)
		}
	}
	return items
}
