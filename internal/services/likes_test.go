package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleLikeInsertsWhenNoRowExists(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, "sqlmock")

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("artwork-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec("DELETE FROM likes").
		WithArgs("user-1", "artwork-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO likes").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT count").
		WithArgs("artwork-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectCommit()

	liked, count, err := ToggleLike(db, "user-1", "artwork-1")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleLikeRemovesExistingRow(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, "sqlmock")

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("artwork-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec("DELETE FROM likes").
		WithArgs("user-1", "artwork-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT count").
		WithArgs("artwork-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectCommit()

	liked, count, err := ToggleLike(db, "user-1", "artwork-1")
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 0, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleLikeMissingArtwork(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, "sqlmock")

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("artwork-gone").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	_, _, err = ToggleLike(db, "user-1", "artwork-gone")
	var serr ServiceError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 404, serr.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
