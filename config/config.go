package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/warp/payroll-engine/payroll"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Log       LogConfig
	Reporting ReportingConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port        int
	CORSOrigins []string
}

// DatabaseConfig selects and locates the store.
type DatabaseConfig struct {
	Driver string
	Path   string // SQLite file, or ":memory:"
	DSN    string // PostgreSQL connection string
}

type LogConfig struct {
	Level string
}

// ReportingConfig holds the period-close job settings. An empty CronSchedule
// disables the job; an empty ExportDir skips writing CSVs.
type ReportingConfig struct {
	CronSchedule string
	Period       payroll.PeriodKind
	ExportDir    string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance. It does not validate; flags may still
// override values before Validate is called.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// A missing .env is fine; configuration may come from the environment.
		_ = godotenv.Load()
	}

	port, err := strconv.Atoi(getenvWithDefault("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("APP_PORT must be a number: %w", err)
	}

	period, err := payroll.ParsePeriodKind(getenvWithDefault("REPORT_PERIOD", string(payroll.PeriodBiweekly)))
	if err != nil {
		return nil, fmt.Errorf("REPORT_PERIOD: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        port,
			CORSOrigins: splitList(getenvWithDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:8080")),
		},
		Database: DatabaseConfig{
			Driver: getenvWithDefault("DB_DRIVER", DriverSQLite),
			Path:   getenvWithDefault("DB_PATH", "payroll.db"),
			DSN:    os.Getenv("DATABASE_URL"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Reporting: ReportingConfig{
			CronSchedule: lookupWithDefault("REPORT_CRON", "0 6 * * 1"),
			Period:       period,
			ExportDir:    os.Getenv("EXPORT_DIR"),
		},
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("APP_PORT out of range: %d", c.Server.Port)
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("DB_PATH must be provided for the sqlite driver")
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return errors.New("DATABASE_URL must be provided for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q (want %s or %s)", c.Database.Driver, DriverSQLite, DriverPostgres)
	}

	if c.Reporting.Period == payroll.PeriodCustom {
		return errors.New("REPORT_PERIOD must be week or biweekly")
	}

	if c.Reporting.CronSchedule != "" {
		if _, err := cron.ParseStandard(c.Reporting.CronSchedule); err != nil {
			return fmt.Errorf("REPORT_CRON: %w", err)
		}
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// lookupWithDefault distinguishes an unset variable from one set to empty.
func lookupWithDefault(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
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
