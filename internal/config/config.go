package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported document store drivers
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port            string `yaml:"port" env:"SERVER_PORT"`
		Mode            string `yaml:"mode" env:"SERVER_MODE"`
		StoragePath     string `yaml:"storage_path" env:"SERVER_STORAGE_PATH"`
		PublicBaseURL   string `yaml:"public_base_url" env:"SERVER_PUBLIC_BASE_URL"`
		ShutdownTimeout string `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	} `yaml:"server"`

	Database struct {
		Driver          string `yaml:"driver" env:"DB_DRIVER"`
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
		MongoURI        string `yaml:"mongo_uri" env:"DB_MONGO_URI"`
		MongoDatabase   string `yaml:"mongo_database" env:"DB_MONGO_DATABASE"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB"`
		PoolSize int    `yaml:"pool_size" env:"REDIS_POOL_SIZE"`
	} `yaml:"redis"`

	Kafka struct {
		Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS"`
		Topic   string   `yaml:"topic" env:"KAFKA_TOPIC"`
	} `yaml:"kafka"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		GuestTokenExpiration  string `yaml:"guest_token_expiration" env:"JWT_GUEST_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Ingestion struct {
		SessionTTL     string  `yaml:"session_ttl" env:"INGESTION_SESSION_TTL"`
		SpeakerRatio   float64 `yaml:"speaker_ratio" env:"INGESTION_SPEAKER_RATIO"`
		VolunteerRatio float64 `yaml:"volunteer_ratio" env:"INGESTION_VOLUNTEER_RATIO"`
		LinkedURLBase  string  `yaml:"linked_url_base" env:"INGESTION_LINKED_URL_BASE"`
		MaxUploadBytes int64   `yaml:"max_upload_bytes" env:"INGESTION_MAX_UPLOAD_BYTES"`
	} `yaml:"ingestion"`

	Email struct {
		Host      string `yaml:"host" env:"SMTP_HOST"`
		Port      int    `yaml:"port" env:"SMTP_PORT"`
		Username  string `yaml:"username" env:"SMTP_USERNAME"`
		Password  string `yaml:"password" env:"SMTP_PASSWORD"`
		FromName  string `yaml:"from_name" env:"SMTP_FROM_NAME"`
		FromEmail string `yaml:"from_email" env:"SMTP_FROM_EMAIL"`
		UseTLS    bool   `yaml:"use_tls" env:"SMTP_USE_TLS"`
	} `yaml:"email"`

	Seed struct {
		AdminEmail    string `yaml:"admin_email" env:"SEED_ADMIN_EMAIL"`
		AdminPassword string `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD"`
	} `yaml:"seed"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	// A missing file is fine, defaults and env still apply
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.StoragePath = "uploads"
	config.Server.PublicBaseURL = "http://localhost:8080"
	config.Server.ShutdownTimeout = "15s"

	config.Database.Driver = DriverPostgres
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "alumnidesk"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"
	config.Database.MongoURI = "mongodb://localhost:27017"
	config.Database.MongoDatabase = "alumnidesk"

	config.Redis.PoolSize = 10

	config.Kafka.Topic = "alumnidesk.events"

	config.JWT.AccessTokenExpiration = "8h"
	config.JWT.GuestTokenExpiration = "1h"
	config.JWT.Issuer = "alumnidesk"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Ingestion.SessionTTL = "2h"
	config.Ingestion.SpeakerRatio = 0.05
	config.Ingestion.VolunteerRatio = 0.10
	config.Ingestion.LinkedURLBase = "https://yourapp.com/alumni"
	config.Ingestion.MaxUploadBytes = 20 << 20

	config.Email.Port = 587
	config.Email.FromName = "Alumni Relations"
	config.Email.UseTLS = true
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case DriverPostgres:
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
			return fmt.Errorf("invalid connection max lifetime: %w", err)
		}
	case DriverMongo:
		if config.Database.MongoURI == "" {
			return fmt.Errorf("mongo uri is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	durations := map[string]string{
		"JWT access token expiration": config.JWT.AccessTokenExpiration,
		"JWT guest token expiration":  config.JWT.GuestTokenExpiration,
		"ingestion session ttl":       config.Ingestion.SessionTTL,
		"server shutdown timeout":     config.Server.ShutdownTimeout,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	if config.Ingestion.SpeakerRatio < 0 || config.Ingestion.SpeakerRatio > 1 {
		return fmt.Errorf("ingestion speaker ratio must be between 0 and 1")
	}
	if config.Ingestion.VolunteerRatio < 0 || config.Ingestion.VolunteerRatio > 1 {
		return fmt.Errorf("ingestion volunteer ratio must be between 0 and 1")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
