package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"realtime/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// Failure paths that an in-memory database cannot produce: the connection
// drops mid-call and the repository must surface a typed error, never a
// partial result.

func TestMessageRepository_CreateFailureIsTransient(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMessageRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "messages"`)).
		WillReturnError(errors.New("connection reset by peer"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Message{
		SenderID:    "a",
		RecipientID: "b",
		Text:        "hello",
	})
	require.Error(t, err)

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeTransientIO, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetConversationFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMessageRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "messages"`)).
		WillReturnError(errors.New("connection reset by peer"))

	_, err := repo.GetConversation(context.Background(), "a", "b")
	require.Error(t, err)

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeInternal, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
