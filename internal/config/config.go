package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	Storage   StorageConfig   `yaml:"storage"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Realtime  RealtimeConfig  `yaml:"realtime"`
	Jobs      JobsConfig      `yaml:"jobs"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	BasePath        string        `yaml:"base_path"`
	Env             string        `yaml:"env"`
	LogLevel        string        `yaml:"log_level"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

// AuthConfig configures the identity verifier. PrivilegedUID is the
// bootstrap subject that is treated as admin even without the role column set.
type AuthConfig struct {
	JWTSecret     string `yaml:"jwt_secret"`
	Issuer        string `yaml:"issuer"`
	Audience      string `yaml:"audience"`
	ServiceURL    string `yaml:"service_url"`
	PrivilegedUID string `yaml:"privileged_uid"`
}

type StorageConfig struct {
	AccountID      string `yaml:"account_id"`
	Endpoint       string `yaml:"endpoint"`
	Region         string `yaml:"region"`
	Bucket         string `yaml:"bucket"`
	AccessKey      string `yaml:"access_key"`
	SecretKey      string `yaml:"secret_key"`
	PublicURL      string `yaml:"public_url"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

type RateLimitConfig struct {
	APIPerMinute       int `yaml:"api_per_minute"`
	UploadsPer15Minute int `yaml:"uploads_per_15_minutes"`
}

// RealtimeConfig tunes the websocket endpoint. HandshakeTimeout bounds the
// credential check; zero leaves it to the request context.
type RealtimeConfig struct {
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	SendBuffer       int           `yaml:"send_buffer"`
	WriteWait        time.Duration `yaml:"write_wait"`
	PongWait         time.Duration `yaml:"pong_wait"`
	MaxMessageSize   int64         `yaml:"max_message_size"`
}

type JobsConfig struct {
	StatusCleanupSpec string `yaml:"status_cleanup_spec"`
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "dev" || c.Server.Env == "development"
}

// StorageEndpoint returns the S3 compatible endpoint, deriving the R2 one from
// the account id when no explicit endpoint is configured.
func (c StorageConfig) StorageEndpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	if c.AccountID != "" {
		return "https://" + c.AccountID + ".r2.cloudflarestorage.com"
	}
	return ""
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            4000,
			BasePath:        "/api",
			Env:             "dev",
			LogLevel:        "debug",
			CORSOrigins:     []string{"http://localhost:3000"},
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    100,
			MaxIdleConns:    10,
			ConnMaxLifetime: time.Hour,
		},
		Storage: StorageConfig{
			Region:         "auto",
			MaxUploadBytes: 50 * 1024 * 1024,
		},
		RateLimit: RateLimitConfig{
			APIPerMinute:       100,
			UploadsPer15Minute: 10,
		},
		Realtime: RealtimeConfig{
			HandshakeTimeout: 5 * time.Second,
			SendBuffer:       256,
			WriteWait:        10 * time.Second,
			PongWait:         60 * time.Second,
			MaxMessageSize:   64 * 1024,
		},
		Jobs: JobsConfig{
			StatusCleanupSpec: "@every 1h",
		},
	}

	// Load from yaml file if exists
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	// Override with environment variables
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if env := os.Getenv("ENV"); env != "" {
		cfg.Server.Env = env
	}
	if env := os.Getenv("NODE_ENV"); env != "" {
		cfg.Server.Env = env
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.Server.LogLevel = logLevel
	}
	if origins := os.Getenv("FRONTEND_URL"); origins != "" {
		cfg.Server.CORSOrigins = splitList(origins)
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cfg.Redis.URL = redisURL
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if authURL := os.Getenv("AUTH_SERVICE_URL"); authURL != "" {
		cfg.Auth.ServiceURL = authURL
	}
	if uid := os.Getenv("PRIVILEGED_UID"); uid != "" {
		cfg.Auth.PrivilegedUID = uid
	}
	if accountID := os.Getenv("R2_ACCOUNT_ID"); accountID != "" {
		cfg.Storage.AccountID = accountID
	}
	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		cfg.Storage.Endpoint = endpoint
	}
	if region := os.Getenv("S3_REGION"); region != "" {
		cfg.Storage.Region = region
	}
	if bucket := os.Getenv("R2_BUCKET_NAME"); bucket != "" {
		cfg.Storage.Bucket = bucket
	}
	if accessKey := os.Getenv("R2_ACCESS_KEY_ID"); accessKey != "" {
		cfg.Storage.AccessKey = accessKey
	}
	if secretKey := os.Getenv("R2_SECRET_ACCESS_KEY"); secretKey != "" {
		cfg.Storage.SecretKey = secretKey
	}
	if publicURL := os.Getenv("R2_PUBLIC_URL"); publicURL != "" {
		cfg.Storage.PublicURL = strings.TrimSuffix(publicURL, "/")
	}
	if timeout := os.Getenv("WS_HANDSHAKE_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			cfg.Realtime.HandshakeTimeout = d
		}
	}
	if spec := os.Getenv("STATUS_CLEANUP_CRON"); spec != "" {
		cfg.Jobs.StatusCleanupSpec = spec
	}

	return cfg, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
