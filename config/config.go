package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	LiveKit   LiveKitConfig
	Bucket    BucketConfig
	Recording RecordingConfig
	Summary   SummaryConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// JWTConfig holds JWT signing and validation settings.
type JWTConfig struct {
	Secret      string
	ExpireHours int
}

// LiveKitConfig holds egress provider connection settings.
type LiveKitConfig struct {
	URL            string
	APIKey         string
	APISecret      string
	RequestTimeout int // seconds, bound on every egress API call
	VerifySSL      bool
}

// BucketConfig holds the object storage credentials handed to the egress
// worker and used to verify inbound storage events.
type BucketConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Name            string
	ForcePathStyle  bool

	PresignExpireMinutes int
}

// RecordingConfig holds recording output and storage-event settings.
type RecordingConfig struct {
	OutputFolder        string
	AllowedContentTypes []string
	EnableStorageAuth   bool
	StorageEventToken   string
}

// SummaryConfig holds the downstream summarization service settings.
type SummaryConfig struct {
	Endpoint       string
	APIToken       string
	TimeoutSeconds int
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env

	readTimeout, _ := strconv.Atoi(getEnv("READ_TIMEOUT_SEC", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("WRITE_TIMEOUT_SEC", "30"))
	jwtExpire, _ := strconv.Atoi(getEnv("JWT_EXPIRE_HOURS", "24"))

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        readTimeout,
			WriteTimeout:       writeTimeout,
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "conferly"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 10),
			MinConns: getEnvInt("DB_MIN_CONNS", 2),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireHours: jwtExpire,
		},
		LiveKit: LiveKitConfig{
			URL:            getEnv("LIVEKIT_URL", "http://localhost:7880"),
			APIKey:         getEnv("LIVEKIT_API_KEY", ""),
			APISecret:      getEnv("LIVEKIT_API_SECRET", ""),
			RequestTimeout: getEnvInt("LIVEKIT_REQUEST_TIMEOUT_SEC", 30),
			VerifySSL:      getEnvBool("RECORDING_VERIFY_SSL", true),
		},
		Bucket: BucketConfig{
			Endpoint:             getEnv("AWS_S3_ENDPOINT_URL", ""),
			AccessKeyID:          getEnv("AWS_S3_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_S3_SECRET_ACCESS_KEY", ""),
			Region:               getEnv("AWS_S3_REGION_NAME", "us-east-1"),
			Name:                 getEnv("AWS_STORAGE_BUCKET_NAME", "recordings-bucket"),
			ForcePathStyle:       getEnvBool("AWS_S3_FORCE_PATH_STYLE", true),
			PresignExpireMinutes: getEnvInt("AWS_PRESIGN_EXPIRE_MINUTES", 15),
		},
		Recording: RecordingConfig{
			OutputFolder:        getEnv("RECORDING_OUTPUT_FOLDER", "recordings"),
			AllowedContentTypes: splitTrim(getEnv("RECORDING_ALLOWED_CONTENT_TYPES", "audio/ogg,video/mp4"), ","),
			EnableStorageAuth:   getEnvBool("RECORDING_ENABLE_STORAGE_EVENT_AUTH", true),
			StorageEventToken:   getEnv("RECORDING_STORAGE_EVENT_TOKEN", ""),
		},
		Summary: SummaryConfig{
			Endpoint:       getEnv("SUMMARY_SERVICE_ENDPOINT", ""),
			APIToken:       getEnv("SUMMARY_SERVICE_API_TOKEN", ""),
			TimeoutSeconds: getEnvInt("SUMMARY_SERVICE_TIMEOUT_SEC", 30),
		},
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(s, sep) {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}
