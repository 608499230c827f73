package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumeAuthTokenRedeemsInOneStatement(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, "sqlmock")

	// Validation and consumption are one conditional UPDATE; there is no
	// separate SELECT a concurrent redeemer could race against.
	mock.ExpectQuery(`UPDATE auth_tokens\s+SET consumed_at = now\(\)`).
		WithArgs(hashToken("raw-token"), TokenPurposeRecovery).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("user-1"))

	userID, err := ConsumeAuthToken(db, "raw-token", TokenPurposeRecovery)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeAuthTokenRejectsSecondRedemption(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, "sqlmock")

	// An already-consumed token matches no row, which surfaces as the
	// invalid-link error.
	mock.ExpectQuery(`UPDATE auth_tokens\s+SET consumed_at = now\(\)`).
		WithArgs(hashToken("raw-token"), TokenPurposeConfirm).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	_, err = ConsumeAuthToken(db, "raw-token", TokenPurposeConfirm)
	var serr ServiceError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 400, serr.Status)
	assert.Equal(t, "リンクが無効か、有効期限が切れています。", serr.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}
