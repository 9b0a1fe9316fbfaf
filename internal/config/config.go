package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// ErrInvalidEnv is returned for an environment variable that is set but cannot be parsed.
var ErrInvalidEnv = errors.New("invalid environment variable")

type Config struct {
	// EnvFile is the dotenv file loaded before anything else (default ".env").
	// Its variables are also inherited by every collector script.
	EnvFile string

	// ScriptDir is the working directory of the collector scripts.
	ScriptDir string `validate:"required"`
	// Python is the interpreter used for script tasks.
	Python string `validate:"required"`
	// TasksFile optionally overrides the built-in task groups (YAML).
	TasksFile string

	DBHost string `validate:"required"`
	DBPort string `validate:"required,numeric"`
	DBName string `validate:"required"`
	DBUser string `validate:"required"`
	DBPass string

	// DBMaxOpenConns is the maximum number of open connections to the database (default 4).
	DBMaxOpenConns int
	// DBMaxIdleConns is the maximum number of idle connections (default 2).
	DBMaxIdleConns int

	// RecordRuns stores every task attempt in task_runs. Set via RECORD_RUNS=true.
	RecordRuns bool

	// LogFormat is "text" (default) or "json" for structured logging.
	LogFormat string `validate:"oneof=text json"`
	LogLevel  string

	// MetricsTextfile, when set, receives the prometheus metrics after every
	// one-shot command (node_exporter textfile collector format).
	MetricsTextfile string

	// ServeAddr is the listen address of the serve command's HTTP API.
	ServeAddr string `validate:"hostname_port"`
	// APIRatePerMinute limits serve API requests per client IP (default 120).
	APIRatePerMinute int
}

// Load reads the dotenv file named by DISPATCH_ENV_FILE (default ".env"), if it
// exists, then builds the config from the environment. Variables already set in
// the environment win over the file.
func Load() (Config, error) {
	envFile := getEnv("DISPATCH_ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
	}
	cfg, err := FromEnv()
	if err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	cfg.EnvFile = envFile
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values that would otherwise only fail once a task or
// the database is reached.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// FromEnv builds the config from the current environment only. Every variable
// that is set but cannot be parsed is reported, joined into one error.
func FromEnv() (Config, error) {
	var errs []error
	envInt := func(key string, fallback int) int {
		n, err := getEnvInt(key, fallback)
		if err != nil {
			errs = append(errs, err)
		}
		return n
	}
	envBool := func(key string, fallback bool) bool {
		b, err := getEnvBool(key, fallback)
		if err != nil {
			errs = append(errs, err)
		}
		return b
	}

	cfg := Config{
		ScriptDir: getEnv("SCRIPT_DIR", "/grafana_python/instance_principal_v"),
		Python:    getEnv("PYTHON_BIN", "python3"),
		TasksFile: getEnv("TASKS_FILE", ""),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBPort: getEnv("DB_PORT", "5432"),
		DBName: getEnv("DB_NAME", "grafana"),
		DBUser: getEnv("DB_USER", "grafana"),
		DBPass: getEnv("DB_PASS", ""),

		DBMaxOpenConns: envInt("DB_MAX_OPEN_CONNS", 4),
		DBMaxIdleConns: envInt("DB_MAX_IDLE_CONNS", 2),

		RecordRuns: envBool("RECORD_RUNS", false),

		LogFormat: getEnv("LOG_FORMAT", "text"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),

		MetricsTextfile: getEnv("METRICS_TEXTFILE", ""),

		ServeAddr:        getEnv("SERVE_ADDR", "127.0.0.1:9310"),
		APIRatePerMinute: envInt("API_RATE_PER_MINUTE", 120),
	}
	return cfg, errors.Join(errs...)
}

// DatabaseURL returns the postgres URL used for both the pool and migrations.
func (c Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPass),
		Host:     net.JoinHostPort(c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback, fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidEnv, key, v)
	}
	return b, nil
}

func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback, fmt.Errorf("%w: %s=%q is not a positive integer", ErrInvalidEnv, key, v)
	}
	return n, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
