package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config holds everything cmd/api needs to wire the service
type Config struct {
	Env      string
	Port     string
	LogLevel string

	DatabaseDriver string // postgres or sqlite
	DatabaseDSN    string

	JWTSecret   []byte
	CORSOrigins []string

	// ActionConfigFile optionally overrides the embedded action-config seed
	ActionConfigFile string

	TodoBaseURL string
	TodoToken   string
	TodoTimeout time.Duration
	AppBaseURL  string

	NotifyQueueSize      int
	OverdueCheckInterval time.Duration
}

// Load parses flags, loads the env file and reads the environment.
// Flag values win over environment values.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("asset-hub", pflag.ContinueOnError)
	envFile := fs.String("env-file", "configs/.env", "path to the dotenv file")
	port := fs.String("port", "", "HTTP listen port (overrides PORT)")
	actionConfig := fs.String("action-config", "", "YAML file with action-config seed (overrides ACTION_CONFIG_FILE)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// A missing env file is fine; the process environment still applies.
	_ = godotenv.Load(*envFile)

	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		Port:                 getEnv("PORT", "8080"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		DatabaseDriver:       strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DatabaseDSN:          databaseDSN(),
		CORSOrigins:          splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")),
		ActionConfigFile:     os.Getenv("ACTION_CONFIG_FILE"),
		TodoBaseURL:          strings.TrimRight(os.Getenv("TODO_BASE_URL"), "/"),
		TodoToken:            os.Getenv("TODO_TOKEN"),
		AppBaseURL:           strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:5173"), "/"),
		NotifyQueueSize:      getEnvInt("NOTIFY_QUEUE_SIZE", 256),
		TodoTimeout:          getEnvDuration("TODO_TIMEOUT", 5*time.Second),
		OverdueCheckInterval: getEnvDuration("OVERDUE_CHECK_INTERVAL", 0),
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *actionConfig != "" {
		cfg.ActionConfigFile = *actionConfig
	}

	if cfg.DatabaseDriver != "postgres" && cfg.DatabaseDriver != "sqlite" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DatabaseDriver)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // development fallback only
	}
	cfg.JWTSecret = []byte(secret)

	return cfg, nil
}

// IsProduction reports whether the service runs in release mode
func (c *Config) IsProduction() bool {
	return c.Env == "production" || os.Getenv("GIN_MODE") == "release"
}

func databaseDSN() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbUser := getEnv("DB_USER", "postgres")
	dbPassword := getEnv("DB_PASSWORD", "postgres")
	dbName := getEnv("DB_NAME", "postgres")
	dbSslMode := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
