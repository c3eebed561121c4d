package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "sales-order-service", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "sales", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.True(t, cfg.Database.AutoMigrate)
		assert.False(t, cfg.Database.Seed)
		assert.True(t, cfg.Metrics.Enabled)
		assert.Equal(t, "/metrics", cfg.Metrics.Path)
		assert.True(t, cfg.Event.ProcessorEnabled)
		assert.Equal(t, 4, cfg.Event.Workers)
		assert.Equal(t, 5*time.Second, cfg.Event.PollInterval)
		assert.False(t, cfg.AMQP.Enabled)
		assert.Equal(t, "sales.events", cfg.AMQP.Exchange)
		assert.Equal(t, "sales-order-service", cfg.Telemetry.ServiceName)
	})

	t.Run("loads values from environment variables with HEXA prefix", func(t *testing.T) {
		t.Setenv("HEXA_APP_NAME", "test-app")
		t.Setenv("HEXA_APP_PORT", "9000")
		t.Setenv("HEXA_DATABASE_DRIVER", "sqlite")
		t.Setenv("HEXA_DATABASE_DBNAME", ":memory:")
		t.Setenv("HEXA_DATABASE_SEED", "true")
		t.Setenv("HEXA_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("HEXA_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("HEXA_EVENT_PROCESSOR_ENABLED", "false")
		t.Setenv("HEXA_EVENT_POLL_INTERVAL", "250ms")
		t.Setenv("HEXA_AMQP_ENABLED", "true")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, ":memory:", cfg.Database.DBName)
		assert.True(t, cfg.Database.Seed)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.False(t, cfg.Event.ProcessorEnabled)
		assert.Equal(t, 250*time.Millisecond, cfg.Event.PollInterval)
		assert.True(t, cfg.AMQP.Enabled)
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		t.Setenv("HEXA_DATABASE_DRIVER", "oracle")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		t.Setenv("HEXA_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("HEXA_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		t.Setenv("HEXA_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})

	t.Run("validates sampling ratio", func(t *testing.T) {
		t.Setenv("HEXA_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})

	t.Run("jwt enabled requires a secret", func(t *testing.T) {
		t.Setenv("HEXA_JWT_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret is required")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		t.Setenv("HEXA_APP_ENV", "production")
		t.Setenv("HEXA_DATABASE_PASSWORD", "secure-password")
	}

	t.Run("passes validation with valid production config", func(t *testing.T) {
		setValidProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.IsProduction())
	})

	t.Run("requires database.password for postgres", func(t *testing.T) {
		t.Setenv("HEXA_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires long jwt secret when jwt is enabled", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("HEXA_JWT_ENABLED", "true")
		t.Setenv("HEXA_JWT_SECRET", "short-secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 32 characters")
	})

	t.Run("rejects wildcard CORS", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("HEXA_HTTP_CORS_ALLOW_ORIGINS", "*")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cors_allow_origins")
	})

	t.Run("rejects full SQL logging", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("HEXA_TELEMETRY_DB_LOG_FULL_SQL", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db_log_full_sql")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid postgres DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Driver:   "postgres",
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "/testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Driver:   "postgres",
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})

	t.Run("sqlite memory database is shared", func(t *testing.T) {
		cfg := DatabaseConfig{Driver: "sqlite", DBName: ":memory:"}
		assert.Equal(t, "file::memory:?cache=shared", cfg.DSN())
	})

	t.Run("sqlite file", func(t *testing.T) {
		cfg := DatabaseConfig{Driver: "sqlite", DBName: "sales.db"}
		assert.Equal(t, "sales.db", cfg.DSN())
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", cfg.Addr())
}
