package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// DBConfig holds database configuration
type DBConfig struct {
	Driver          string
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	Path            string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// GetDSN returns the connection string for the configured driver
func (c *DBConfig) GetDSN() string {
	if c.Driver == "sqlite" {
		return c.Path
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Env             string
	ShutdownTimeout time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	SigningKey      string
	ExpirationHours int
	CookieName      string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Prefix string
}

// GeocoderConfig holds the address resolution provider settings
type GeocoderConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// BlobConfig holds image storage configuration
type BlobConfig struct {
	Driver       string
	LocalDir     string
	MediaURL     string
	S3Bucket     string
	S3Region     string
	S3Endpoint   string
	S3PathStyle  bool
	S3PublicURL  string
	S3KeyPrefix  string
	AccessKey    string
	SecretKey    string
	SessionToken string
}

// EntryConfig holds settings for the staff data entry pages
type EntryConfig struct {
	PageLength int
}

// Config holds all configuration
type Config struct {
	ServiceName string
	DB          DBConfig
	Server      ServerConfig
	JWT         JWTConfig
	Log         LogConfig
	Metrics     MetricsConfig
	Geocoder    GeocoderConfig
	Blob        BlobConfig
	Entry       EntryConfig
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Not returning error as .env file is optional
		fmt.Printf("Warning: .env file not found, using environment variables\n")
	}

	config := &Config{
		ServiceName: serviceName,
		DB: DBConfig{
			Driver:          getEnv("DB_DRIVER", "postgres"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "password"),
			DBName:          getEnv("DB_NAME", "whats_fresh"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			Path:            getEnv("DB_PATH", "whats_fresh.db"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
			LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Warn),
		},
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Env:             getEnv("APP_ENV", "development"),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		JWT: JWTConfig{
			SigningKey:      getEnv("JWT_SIGNING_KEY", "defaultsecretkey"),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 12),
			CookieName:      getEnv("JWT_COOKIE_NAME", "entry_token"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", strings.ReplaceAll(serviceName, "-", "_")),
		},
		Geocoder: GeocoderConfig{
			URL:     getEnv("GEOCODER_URL", "https://maps.googleapis.com/maps/api/geocode/json"),
			APIKey:  getEnv("GEOCODER_API_KEY", ""),
			Timeout: getEnvAsDuration("GEOCODER_TIMEOUT", 10*time.Second),
		},
		Blob: BlobConfig{
			Driver:       getEnv("BLOB_DRIVER", "local"),
			LocalDir:     getEnv("BLOB_LOCAL_DIR", "media"),
			MediaURL:     getEnv("BLOB_MEDIA_URL", "/media/"),
			S3Bucket:     getEnv("BLOB_S3_BUCKET", ""),
			S3Region:     getEnv("BLOB_S3_REGION", "us-east-1"),
			S3Endpoint:   getEnv("BLOB_S3_ENDPOINT", ""),
			S3PathStyle:  getEnvAsBool("BLOB_S3_PATH_STYLE", false),
			S3PublicURL:  getEnv("BLOB_S3_PUBLIC_URL", ""),
			S3KeyPrefix:  getEnv("BLOB_S3_KEY_PREFIX", "images/"),
			AccessKey:    getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretKey:    getEnv("AWS_SECRET_ACCESS_KEY", ""),
			SessionToken: getEnv("AWS_SESSION_TOKEN", ""),
		},
		Entry: EntryConfig{
			PageLength: getEnvAsInt("PAGE_LENGTH", 20),
		},
	}

	if config.Entry.PageLength <= 0 {
		return nil, fmt.Errorf("PAGE_LENGTH must be positive, got %d", config.Entry.PageLength)
	}
	switch config.DB.Driver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", config.DB.Driver)
	}
	switch config.Blob.Driver {
	case "local":
	case "s3":
		if config.Blob.S3Bucket == "" {
			return nil, fmt.Errorf("BLOB_S3_BUCKET required for s3 blob driver")
		}
	default:
		return nil, fmt.Errorf("unsupported BLOB_DRIVER %q", config.Blob.Driver)
	}

	return config, nil
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// LogConfig returns the configuration as a zap logger-friendly format
func (c *Config) LogConfig() []zap.Field {
	return []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Server.Env),
		zap.String("db_driver", c.DB.Driver),
		zap.String("db_host", c.DB.Host),
		zap.String("db_port", c.DB.Port),
		zap.String("db_user", c.DB.User),
		zap.String("db_name", c.DB.DBName),
		zap.String("server_port", c.Server.Port),
		zap.String("blob_driver", c.Blob.Driver),
		zap.Bool("geocoder_key_set", c.Geocoder.APIKey != ""),
		zap.Int("page_length", c.Entry.PageLength),
	}
}

// Helper function to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as integers
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as durations
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as log levels
func getEnvAsLogLevel(key string, defaultValue logger.LogLevel) logger.LogLevel {
	valueStr := getEnv(key, "")
	switch valueStr {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return defaultValue
	}
}
