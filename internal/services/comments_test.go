package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCommentRejectsWhitespaceOnly(t *testing.T) {
	// Rejected before any query runs, so no database is needed.
	for _, content := range []string{"", "   ", "\n\t  "} {
		_, err := CreateComment(nil, "user-1", "artwork-1", content)
		var serr ServiceError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, 400, serr.Status)
		assert.Equal(t, "コメントを入力してください。", serr.Message)
	}
}

func TestCreateCommentMissingArtwork(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, "sqlmock")

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("artwork-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err = CreateComment(db, "user-1", "artwork-1", "すばらしい筆致ですね")
	var serr ServiceError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 404, serr.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCommentTrimsAndInserts(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, "sqlmock")

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("artwork-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec("INSERT INTO comments").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT c.id, c.content").
		WillReturnRows(sqlmock.NewRows([]string{"id", "content", "created_at", "user_id", "username", "avatar_url"}).
			AddRow("comment-1", "すばらしい筆致ですね", time.Now().UTC(), "user-1", "hana", nil))

	comment, err := CreateComment(db, "user-1", "artwork-1", "  すばらしい筆致ですね  ")
	require.NoError(t, err)
	assert.Equal(t, "すばらしい筆致ですね", comment.Content)
	assert.Equal(t, "hana", comment.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}
