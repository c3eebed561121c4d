package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestNewDBTracing_Defaults(t *testing.T) {
	tr := NewDBTracing(config.TelemetryConfig{}, zap.NewNop())
	assert.Equal(t, defaultSlowQueryThreshold, tr.slowQuery)
	assert.False(t, tr.logFullSQL)
}

func TestDBTracing_Annotate(t *testing.T) {
	recorder := setupRecorder(t)
	tr := NewDBTracing(config.TelemetryConfig{DBSlowQueryThresh: time.Millisecond}, zap.NewNop())

	ctx, span := otel.Tracer("test").Start(context.Background(), "query")
	db := &gorm.DB{
		Config: &gorm.Config{},
		Statement: &gorm.Statement{
			DB:      &gorm.DB{RowsAffected: 3},
			Context: context.WithValue(ctx, queryStartKey{}, time.Now().Add(-time.Second)),
			Table:   "sales_orders",
		},
		Error: errors.New("deadlock detected"),
	}
	tr.annotate(db)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	attrs := attrMap(spans[0])
	assert.Equal(t, int64(3), attrs["db.rows_affected"].AsInt64())
	assert.Equal(t, "sales_orders", attrs["db.sql.table"].AsString())
	assert.True(t, attrs["db.slow_query"].AsBool())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	require.NotEmpty(t, spans[0].Events())
}

func TestDBTracing_AnnotateIgnoresNotFound(t *testing.T) {
	recorder := setupRecorder(t)
	tr := NewDBTracing(config.TelemetryConfig{DBSlowQueryThresh: time.Hour}, zap.NewNop())

	ctx, span := otel.Tracer("test").Start(context.Background(), "query")
	tr.annotate(&gorm.DB{
		Config:    &gorm.Config{},
		Statement: &gorm.Statement{DB: &gorm.DB{}, Context: ctx},
		Error:     gorm.ErrRecordNotFound,
	})
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
	_, slow := attrMap(spans[0])["db.slow_query"]
	assert.False(t, slow)
}

func TestDBTracing_Register(t *testing.T) {
	recorder := setupRecorder(t)

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	require.NoError(t, NewDBTracing(config.TelemetryConfig{}, zap.NewNop()).Register(db, "sqlite"))

	var n int
	require.NoError(t, db.WithContext(context.Background()).Raw("SELECT 1").Scan(&n).Error)
	assert.Equal(t, 1, n)
	assert.NotEmpty(t, recorder.Ended())
}
