package event

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/domain/shared"
	"github.com/hexasamples/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupPublisherMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

// setupSQLiteDB opens a private in-memory database with the outbox table
func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.OutboxEntryModel{}))
	return db
}

func TestOutboxPublisher_PublishWithTx(t *testing.T) {
	db, mock := setupPublisherMockDB(t)
	serializer := NewEventSerializer()
	RegisterEvent[testEvent](serializer, "TestEvent")
	publisher := NewOutboxPublisher(serializer)
	ctx := context.Background()

	event := newTestEvent("TestEvent")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "outbox_events"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := db.Transaction(func(tx *gorm.DB) error {
		return publisher.PublishWithTx(ctx, tx, event)
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxPublisher_RollbackDiscardsEntries(t *testing.T) {
	db := setupSQLiteDB(t)
	serializer := NewEventSerializer()
	RegisterEvent[testEvent](serializer, "TestEvent")
	publisher := NewOutboxPublisher(serializer)
	ctx := context.Background()

	boom := errors.New("aggregate save failed")
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := publisher.Recorder(tx).Record(ctx, newTestEvent("TestEvent"), newTestEvent("TestEvent")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&models.OutboxEntryModel{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestOutboxPublisher_Recorder_CommitsEntries(t *testing.T) {
	db := setupSQLiteDB(t)
	serializer := NewEventSerializer()
	RegisterEvent[testEvent](serializer, "TestEvent")
	publisher := NewOutboxPublisher(serializer).WithMaxRetries(3)
	ctx := context.Background()

	event := newTestEvent("TestEvent")
	err := db.Transaction(func(tx *gorm.DB) error {
		return publisher.Recorder(tx).Record(ctx, event)
	})
	require.NoError(t, err)

	pending, err := NewGormOutboxRepository(db).FindPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, event.EventID(), pending[0].EventID)
	assert.Equal(t, 3, pending[0].MaxRetries)
	assert.Equal(t, shared.OutboxStatusPending, pending[0].Status)
}

func TestOutboxPublisher_UnregisteredEvent(t *testing.T) {
	db, _ := setupPublisherMockDB(t)
	publisher := NewOutboxPublisher(NewEventSerializer())

	err := publisher.PublishWithTx(context.Background(), db, newTestEvent("NobodyKnowsMe"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestOutboxPublisher_NoEvents(t *testing.T) {
	db, mock := setupPublisherMockDB(t)
	publisher := NewOutboxPublisher(NewEventSerializer())

	require.NoError(t, publisher.PublishWithTx(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
