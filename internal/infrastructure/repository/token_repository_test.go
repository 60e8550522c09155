package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tokenColumns = []string{"user_id", "access_token", "expires_on", "created_at", "updated_at"}

func TestTokenRepository_FindByUserID(t *testing.T) {
	db, mock := newMockDatabase(t)
	repo := NewTokenRepository(db)

	expiresOn := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	created := expiresOn.Add(-time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("FROM ms_tokens")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(tokenColumns).AddRow("u1", "at-1", expiresOn, created, created))

	token, err := repo.FindByUserID(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, "at-1", token.AccessToken)
	assert.True(t, token.ExpiresOn.Equal(expiresOn))
}

func TestTokenRepository_FindByUserID_NotFound(t *testing.T) {
	db, mock := newMockDatabase(t)
	repo := NewTokenRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM ms_tokens")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(tokenColumns))

	token, err := repo.FindByUserID(context.Background(), "ghost")
	assert.NoError(t, err)
	assert.Nil(t, token)
}

func TestTokenRepository_FindByUserID_QueryError(t *testing.T) {
	db, mock := newMockDatabase(t)
	repo := NewTokenRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM ms_tokens")).
		WithArgs("u1").
		WillReturnError(errors.New("connection reset"))

	token, err := repo.FindByUserID(context.Background(), "u1")
	require.Error(t, err)
	assert.Nil(t, token)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestTokenRepository_SaveUpserts(t *testing.T) {
	db, mock := newMockDatabase(t)
	repo := NewTokenRepository(db)

	expiresOn := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT(user_id) DO UPDATE SET")).
		WithArgs("u1", "at-1", expiresOn, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Save(context.Background(), "u1", "at-1", expiresOn))
}

func TestTokenRepository_SaveError(t *testing.T) {
	db, mock := newMockDatabase(t)
	repo := NewTokenRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ms_tokens")).
		WillReturnError(errors.New("read-only transaction"))

	err := repo.Save(context.Background(), "u1", "at-1", time.Now())
	assert.ErrorContains(t, err, "failed to save ms token")
}

func TestTokenRepository_DeleteByUserID(t *testing.T) {
	db, mock := newMockDatabase(t)
	repo := NewTokenRepository(db)

	// deleting a missing row is still a success
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM ms_tokens WHERE user_id = $1")).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.DeleteByUserID(context.Background(), "u1"))
}
