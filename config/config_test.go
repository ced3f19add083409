package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/payroll"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_PORT", "DB_DRIVER", "DB_PATH", "DATABASE_URL", "LOG_LEVEL",
		"CORS_ORIGINS", "REPORT_CRON", "REPORT_PERIOD", "EXPORT_DIR",
	} {
		if value, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, value) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:8080"}, cfg.Server.CORSOrigins)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "payroll.db", cfg.Database.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "0 6 * * 1", cfg.Reporting.CronSchedule)
	assert.Equal(t, payroll.PeriodBiweekly, cfg.Reporting.Period)
	assert.Empty(t, cfg.Reporting.ExportDir)
}

func TestLoad_FromEnvFile(t *testing.T) {
	clearEnv(t)

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "APP_PORT=9090\nDB_DRIVER=postgres\nDATABASE_URL=postgres://localhost/payroll\n" +
		"CORS_ORIGINS= https://a.example , https://b.example\nREPORT_CRON=\nREPORT_PERIOD=week\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	cfg, err := Load(envFile)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/payroll", cfg.Database.DSN)
	assert.Empty(t, cfg.Reporting.CronSchedule, "explicitly empty disables the job")
	assert.Equal(t, payroll.PeriodWeek, cfg.Reporting.Period)
}

func TestLoad_BadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_PORT", "eighty")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("REPORT_PERIOD", "monthly")
	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriod)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:    ServerConfig{Port: 8080},
			Database:  DatabaseConfig{Driver: DriverSQLite, Path: ":memory:"},
			Reporting: ReportingConfig{CronSchedule: "0 6 * * 1", Period: payroll.PeriodWeek},
		}
	}
	require.NoError(t, valid().Validate())

	tests := map[string]func(c *Config){
		"port":          func(c *Config) { c.Server.Port = 0 },
		"driver":        func(c *Config) { c.Database.Driver = "mysql" },
		"sqlite path":   func(c *Config) { c.Database.Path = "" },
		"postgres dsn":  func(c *Config) { c.Database.Driver = DriverPostgres },
		"cron":          func(c *Config) { c.Reporting.CronSchedule = "every monday" },
		"custom period": func(c *Config) { c.Reporting.Period = payroll.PeriodCustom },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}

	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())
}
