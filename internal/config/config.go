package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

const DefaultMaxPayloadBytes = 2 * 1024 * 1024

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	HTTPAddr       string
	TrustedProxies []string

	AdminKey        string
	LogSalt         string
	PublicBaseURL   string
	BrandName       string
	MaxPayloadBytes int64

	OTLPEndpoint string

	Blob      BlobConfig
	RateLimit RateLimitConfig
	Index     IndexConfig
}

type BlobConfig struct {
	Driver      string
	FSRoot      string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3PathStyle bool
	S3KeyPrefix string
}

type RateLimitConfig struct {
	Enabled       bool
	Backend       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
	PolicyFile    string
}

type IndexConfig struct {
	RebuildInterval time.Duration
	RebuildTimeout  time.Duration
}

var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewPolicyHolder),
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:         getenv("APP_SERVICE", "greenleaf"),
		AppVersion:      getenv("APP_VERSION", "0.1.0"),
		Environment:     getenv("ENVIRONMENT", "development"),
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		TrustedProxies:  parseList(getenv("TRUSTED_PROXIES", "")),
		AdminKey:        strings.TrimSpace(getenv("ADMIN_KEY", "")),
		LogSalt:         getenv("LOG_SALT", ""),
		PublicBaseURL:   strings.TrimRight(getenv("PUBLIC_BASE_URL", "https://booking.greenleafassurance.com"), "/"),
		BrandName:       getenv("BRAND_NAME", "Greenleaf Assurance"),
		MaxPayloadBytes: getenvInt64("MAX_PAYLOAD_BYTES", DefaultMaxPayloadBytes),
		OTLPEndpoint:    getenv("OTLP_ENDPOINT", "localhost:4317"),
		Blob: BlobConfig{
			Driver:      strings.ToLower(getenv("BLOB_DRIVER", "fs")),
			FSRoot:      getenv("BLOB_FS_ROOT", "./blobdata"),
			S3Bucket:    strings.TrimSpace(getenv("BLOB_S3_BUCKET", "")),
			S3Region:    getenv("BLOB_S3_REGION", "us-east-1"),
			S3Endpoint:  strings.TrimSpace(getenv("BLOB_S3_ENDPOINT", "")),
			S3PathStyle: getenvBool("BLOB_S3_PATH_STYLE", false),
			S3KeyPrefix: strings.TrimSpace(getenv("BLOB_S3_PREFIX", "")),
		},
		RateLimit: RateLimitConfig{
			Enabled:       getenvBool("RATE_LIMIT_ENABLED", true),
			Backend:       strings.ToLower(getenv("RATE_LIMIT_BACKEND", "memory")),
			RedisAddr:     strings.TrimSpace(getenv("RATE_LIMIT_REDIS_ADDR", "")),
			RedisPassword: getenv("RATE_LIMIT_REDIS_PASSWORD", ""),
			RedisDB:       int(getenvInt64("RATE_LIMIT_REDIS_DB", 0)),
			KeyPrefix:     getenv("RATE_LIMIT_KEY_PREFIX", "greenleaf:rl"),
			PolicyFile:    strings.TrimSpace(getenv("RATE_LIMIT_POLICY_FILE", "")),
		},
		Index: IndexConfig{
			RebuildInterval: getenvDuration("INDEX_REBUILD_INTERVAL", 0),
			RebuildTimeout:  getenvDuration("INDEX_REBUILD_TIMEOUT", 2*time.Minute),
		},
	}
	if cfg.MaxPayloadBytes <= 0 {
		cfg.MaxPayloadBytes = DefaultMaxPayloadBytes
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}

func parseList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
