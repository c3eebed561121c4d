package persistence

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/hexasamples/backend/internal/infrastructure/config"
	applogger "github.com/hexasamples/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// mockedPostgres wraps a sqlmock connection in a postgres Database
func mockedPostgres(t *testing.T) (*Database, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return &Database{DB: db}, mock
}

func TestOpenDatabase_SQLite(t *testing.T) {
	db, err := OpenDatabase(&config.DatabaseConfig{Driver: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.Equal(t, "sqlite", db.Dialect())
	require.NoError(t, db.Ping())

	sqlDB, err := db.SQLDB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections, "in-memory sqlite is pinned to one connection")
}

func TestOpenDatabase_GormLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := applogger.NewGormLogger(zap.New(core), gormlogger.Info)

	db, err := OpenDatabase(&config.DatabaseConfig{Driver: "sqlite", DBName: ":memory:"}, WithGormLogger(gl))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.DB.Exec("SELECT 1").Error)
	assert.NotZero(t, logs.FilterMessage("sql statement").Len())
}

func TestOpenDatabase_UnsupportedDriver(t *testing.T) {
	_, err := OpenDatabase(&config.DatabaseConfig{Driver: "oracle"})
	assert.ErrorContains(t, err, `unsupported database driver "oracle"`)
}

func TestDatabase_PingAndClose(t *testing.T) {
	db, mock := mockedPostgres(t)
	assert.Equal(t, "postgres", db.Dialect())

	mock.ExpectPing()
	mock.ExpectClose()

	require.NoError(t, db.Ping())
	require.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_PingFailure(t *testing.T) {
	db, mock := mockedPostgres(t)
	mock.ExpectPing().WillReturnError(assert.AnError)

	assert.ErrorIs(t, db.Ping(), assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
