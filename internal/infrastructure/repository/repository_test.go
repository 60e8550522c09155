package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"teams-meeting-bridge/internal/infrastructure/database"
)

func newMockDatabase(t *testing.T) (*database.Database, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	return &database.Database{DB: db}, mock
}
