package config

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL        string
	Port               string
	GoEnv              string
	JWTSecret          string
	JWTIssuer          string
	JWTAudience        string
	JWTExpiry          time.Duration
	CORSOrigins        []string
	TrustedProxies     []string
	UploadDir          string
	PublicBaseURL      string
	AWSRegion          string
	AWSS3Bucket        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	BrevoAPIKey        string
	MailFromEmail      string
	MailFromName       string
	RedisURL           string
	LogLevel           string
	SeedAdminName      string
	SeedAdminEmail     string
	SeedAdminPassword  string

	envFile string
}

var appConfig *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Environment-specific file wins, then .env; neither is required because
	// deployed environments set variables directly.
	envFile := fmt.Sprintf(".env.%s", env)
	loaded := envFile
	if err := godotenv.Load(envFile); err != nil {
		loaded = ".env"
		if err := godotenv.Load(); err != nil {
			loaded = ""
		}
	}

	expiry, err := time.ParseDuration(getEnv("JWT_EXPIRY", "168h"))
	if err != nil {
		return nil, fmt.Errorf("JWT_EXPIRY is not a valid duration: %w", err)
	}

	config := &Config{
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		Port:               getEnv("PORT", "8080"),
		GoEnv:              getEnv("GO_ENV", "development"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTIssuer:          getEnv("JWT_ISSUER", "sparesx-api"),
		JWTAudience:        getEnv("JWT_AUDIENCE", "sparesx-web"),
		JWTExpiry:          expiry,
		CORSOrigins:        splitList(getEnv("CORS_ORIGINS", "*")),
		TrustedProxies:     splitList(getEnv("TRUSTED_PROXIES", "")),
		UploadDir:          getEnv("UPLOAD_DIR", "./uploads"),
		PublicBaseURL:      strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),
		AWSRegion:          getEnv("AWS_REGION", "ap-south-1"),
		AWSS3Bucket:        getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		BrevoAPIKey:        getEnv("BREVO_API_KEY", ""),
		MailFromEmail:      getEnv("MAIL_FROM_EMAIL", ""),
		MailFromName:       getEnv("MAIL_FROM_NAME", "SparesX"),
		RedisURL:           getEnv("REDIS_URL", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		SeedAdminName:      getEnv("SEED_ADMIN_NAME", "SparesX Admin"),
		SeedAdminEmail:     getEnv("SEED_ADMIN_EMAIL", ""),
		SeedAdminPassword:  getEnv("SEED_ADMIN_PASSWORD", ""),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	config.envFile = loaded
	appConfig = config
	return config, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.JWTExpiry <= 0 {
		return fmt.Errorf("JWT_EXPIRY must be positive")
	}
	for _, proxy := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(proxy); err != nil && net.ParseIP(proxy) == nil {
			return fmt.Errorf("TRUSTED_PROXIES entry %q is not an IP or CIDR", proxy)
		}
	}
	return nil
}

// EnvFile reports which dotenv file was loaded, empty when none was found
func (c *Config) EnvFile() string {
	return c.envFile
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// UsesS3 reports whether uploads go to object storage instead of the local filesystem
func (c *Config) UsesS3() bool {
	return c.AWSS3Bucket != ""
}

// GetConfig returns the configuration loaded by Load or installed by SetConfig
func GetConfig() *Config {
	return appConfig
}

// SetConfig sets the configuration instance (primarily for testing)
func SetConfig(cfg *Config) {
	appConfig = cfg
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
