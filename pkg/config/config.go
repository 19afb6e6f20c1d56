package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Tracing   TracingConfig
	Sentry    SentryConfig
	Storage   StorageConfig
	Secrets   SecretsConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port           string
	Environment    string
	ServiceName    string
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int    // per-request handler timeout in seconds
	CORSOrigins    string // Comma-separated list of allowed origins
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	DBName        string
	SSLMode       string
	MaxConns      int
	MinConns      int
	RunMigrations bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	CacheTTL int // catalog cache TTL in seconds
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret     string
	Expiration int // in hours
}

// RateLimitConfig holds rate limiting configuration for credential endpoints
type RateLimitConfig struct {
	Enabled       bool
	WindowSeconds int
	Limit         int
	RedisPrefix   string
}

// TracingConfig holds OpenTelemetry configuration
type TracingConfig struct {
	Enabled      bool
	OTLPEndpoint string
	SampleRatio  float64
}

// SentryConfig holds error reporting configuration
type SentryConfig struct {
	DSN string
}

// StorageConfig holds object storage settings for pokemon images.
// An empty Provider disables image uploads.
type StorageConfig struct {
	Provider       string
	Bucket         string
	Region         string
	Endpoint       string // S3-compatible endpoint such as MinIO
	AccessKey      string
	SecretKey      string
	BaseURL        string // public URL prefix, defaults to the bucket URL
	MaxImageSizeMB int
}

// SecretsConfig points sensitive settings at an external secret store.
// References use the form [provider://]path[@version][#key].
type SecretsConfig struct {
	Provider            string // vault, aws, gcp or kubernetes; empty disables
	JWTSecretRef        string
	DatabasePasswordRef string
	StorageSecretRef    string
	CacheTTL            int // in seconds

	VaultAddress   string
	VaultToken     string
	VaultNamespace string
	VaultMount     string
	AWSRegion      string
	AWSEndpoint    string
	GCPProjectID   string
	GCPCredentials string // path to a credentials file
	KubernetesPath string
}

// Enabled reports whether image storage is configured
func (c *StorageConfig) Enabled() bool {
	return c.Provider != "" && c.Bucket != ""
}

// ClientConfig holds settings for the terminal client
type ClientConfig struct {
	APIURL                  string
	Timeout                 int // in seconds
	RetryAttempts           int
	BreakerFailureThreshold int
	BreakerTimeout          int // in seconds
	TokenFile               string
}

// LoadClient loads the terminal client configuration. No server secrets are needed.
func LoadClient() *ClientConfig {
	_ = godotenv.Load()

	return &ClientConfig{
		APIURL:                  getEnv("POKEDEX_API_URL", "http://localhost:3000/api"),
		Timeout:                 getEnvAsInt("POKEDEX_TIMEOUT", 10),
		RetryAttempts:           getEnvAsInt("POKEDEX_RETRY_ATTEMPTS", 3),
		BreakerFailureThreshold: getEnvAsInt("POKEDEX_BREAKER_FAILURES", 5),
		BreakerTimeout:          getEnvAsInt("POKEDEX_BREAKER_TIMEOUT", 30),
		TokenFile:               getEnv("POKEDEX_TOKEN_FILE", ""),
	}
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "3000"),
			Environment:    getEnv("ENVIRONMENT", "development"),
			ServiceName:    serviceName,
			ReadTimeout:    getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout:   getEnvAsInt("WRITE_TIMEOUT", 10),
			RequestTimeout: getEnvAsInt("REQUEST_TIMEOUT", 15),
			CORSOrigins:    getEnv("CORS_ORIGINS", "http://localhost:4200"),
		},
		Database: DatabaseConfig{
			Host:          getEnv("DB_HOST", "localhost"),
			Port:          getEnv("DB_PORT", "5432"),
			User:          getEnv("DB_USER", "postgres"),
			Password:      getEnv("DB_PASSWORD", "postgres"),
			DBName:        getEnv("DB_NAME", "pokedex"),
			SSLMode:       getEnv("DB_SSLMODE", "disable"),
			MaxConns:      getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:      getEnvAsInt("DB_MIN_CONNS", 5),
			RunMigrations: getEnvAsBool("DB_RUN_MIGRATIONS", true),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			CacheTTL: getEnvAsInt("REDIS_CACHE_TTL", 300),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", ""),
			Expiration: getEnvAsInt("JWT_EXPIRATION", 24),
		},
		RateLimit: RateLimitConfig{
			Enabled:       getEnvAsBool("RATE_LIMIT_ENABLED", true),
			WindowSeconds: getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60),
			Limit:         getEnvAsInt("RATE_LIMIT_AUTH_LIMIT", 10),
			RedisPrefix:   getEnv("RATE_LIMIT_PREFIX", "rl"),
		},
		Tracing: TracingConfig{
			Enabled:      getEnvAsBool("TRACING_ENABLED", false),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			SampleRatio:  getEnvAsFloat("TRACING_SAMPLE_RATIO", 1.0),
		},
		Sentry: SentryConfig{
			DSN: getEnv("SENTRY_DSN", ""),
		},
		Storage: StorageConfig{
			Provider:       getEnv("STORAGE_PROVIDER", ""),
			Bucket:         getEnv("STORAGE_BUCKET", ""),
			Region:         getEnv("STORAGE_REGION", "us-east-1"),
			Endpoint:       getEnv("STORAGE_ENDPOINT", ""),
			AccessKey:      getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey:      getEnv("STORAGE_SECRET_KEY", ""),
			BaseURL:        getEnv("STORAGE_BASE_URL", ""),
			MaxImageSizeMB: getEnvAsInt("STORAGE_MAX_IMAGE_MB", 5),
		},
		Secrets: SecretsConfig{
			Provider:            getEnv("SECRETS_PROVIDER", ""),
			JWTSecretRef:        getEnv("SECRETS_JWT_REF", ""),
			DatabasePasswordRef: getEnv("SECRETS_DB_PASSWORD_REF", ""),
			StorageSecretRef:    getEnv("SECRETS_STORAGE_KEY_REF", ""),
			CacheTTL:            getEnvAsInt("SECRETS_CACHE_TTL", 300),
			VaultAddress:        getEnv("VAULT_ADDR", ""),
			VaultToken:          getEnv("VAULT_TOKEN", ""),
			VaultNamespace:      getEnv("VAULT_NAMESPACE", ""),
			VaultMount:          getEnv("VAULT_MOUNT", "secret"),
			AWSRegion:           getEnv("AWS_REGION", ""),
			AWSEndpoint:         getEnv("SECRETS_AWS_ENDPOINT", ""),
			GCPProjectID:        getEnv("GCP_PROJECT_ID", ""),
			GCPCredentials:      getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
			KubernetesPath:      getEnv("SECRETS_K8S_PATH", "/var/run/secrets/pokedex"),
		},
	}

	// The JWT secret may still arrive from the secret store
	if cfg.JWT.Secret == "" && (cfg.Secrets.Provider == "" || cfg.Secrets.JWTSecretRef == "") {
		return nil, fmt.Errorf("JWT_SECRET is not defined in environment variables")
	}

	return cfg, nil
}

// Validate checks settings that can only be judged once secrets are resolved
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is empty")
	}
	if c.Storage.Enabled() && c.Storage.AccessKey != "" && c.Storage.SecretKey == "" {
		return fmt.Errorf("storage access key is set without a secret key")
	}
	return nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// URL returns the database connection string in URL form, as expected by migrate
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"pgx5://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// AllowedOrigins splits CORSOrigins into a list
func (c *ServerConfig) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}
