package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"golang.org/x/crypto/bcrypt"
)

const (
	DriverCouchDB = "couchdb"
	DriverMemory  = "memory"

	// DevJWTSecret is the fallback secret. Production refuses to start with it.
	DevJWTSecret = "dev-secret-change-in-production"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	Env             string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

func (s ServerConfig) IsProduction() bool {
	return s.Env == "production"
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// URL is the CouchDB server address with credentials, without the database name.
func (d DatabaseConfig) URL() string {
	u := url.URL{
		Scheme: "http",
		Host:   net.JoinHostPort(d.Host, d.Port),
	}
	if d.User != "" {
		u.User = url.UserPassword(d.User, d.Password)
	}
	return u.String()
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type SecurityConfig struct {
	BcryptCost int
}

type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
	Enabled           bool
}

type CORSConfig struct {
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	godotenv.Load()

	jwtExp, err := tokenExpiration()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8000"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Env:             getEnv("ENV", "development"),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", DriverCouchDB),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5984"),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "password"),
			Name:     getEnv("DB_NAME", "notes_app"),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", DevJWTSecret),
			Expiration: jwtExp,
		},
		Security: SecurityConfig{
			BcryptCost: getEnvAsInt("BCRYPT_COST", 12),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_REQUESTS_PER_MINUTE", 120),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 30),
			Enabled:           getEnvAsBool("RATE_LIMIT_ENABLED", true),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// tokenExpiration prefers JWT_EXPIRATION and falls back to ACCESS_TOKEN_EXPIRE_MINUTES.
func tokenExpiration() (time.Duration, error) {
	if raw := getEnv("JWT_EXPIRATION", ""); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid JWT_EXPIRATION: %w", err)
		}
		return d, nil
	}
	if raw := getEnv("ACCESS_TOKEN_EXPIRE_MINUTES", ""); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid ACCESS_TOKEN_EXPIRE_MINUTES: %w", err)
		}
		return time.Duration(minutes) * time.Minute, nil
	}
	return 30 * time.Minute, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var err error

	if c.JWT.Secret == "" {
		err = multierr.Append(err, errors.New("JWT_SECRET must not be empty"))
	} else if c.Server.IsProduction() && c.JWT.Secret == DevJWTSecret {
		err = multierr.Append(err, errors.New("JWT_SECRET must be changed in production"))
	}
	if c.JWT.Expiration <= 0 {
		err = multierr.Append(err, fmt.Errorf("token expiration must be positive, got %s", c.JWT.Expiration))
	}

	switch c.Database.Driver {
	case DriverCouchDB:
		if c.Database.Name == "" {
			err = multierr.Append(err, errors.New("DB_NAME must not be empty"))
		}
	case DriverMemory:
	default:
		err = multierr.Append(err, fmt.Errorf("unknown DB_DRIVER %q", c.Database.Driver))
	}

	if c.Security.BcryptCost < bcrypt.MinCost || c.Security.BcryptCost > bcrypt.MaxCost {
		err = multierr.Append(err, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}

	if _, perr := zapcore.ParseLevel(c.Logging.Level); perr != nil {
		err = multierr.Append(err, fmt.Errorf("invalid LOG_LEVEL %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		err = multierr.Append(err, fmt.Errorf("invalid LOG_FORMAT %q", c.Logging.Format))
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerMinute <= 0 || c.RateLimit.Burst <= 0) {
		err = multierr.Append(err, errors.New("rate limit and burst must be positive"))
	}

	return err
}

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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
