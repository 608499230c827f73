package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"shodoshare-backend-go/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadArtworkRejectedAtDailyLimit(t *testing.T) {
	server, mock := adminTestServer(t)
	server.Config = config.Config{DailyUploadLimit: 3, MaxUploadBytes: 5 << 20}

	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	req := httptest.NewRequest(http.MethodPost, "/api/artworks", nil)
	rec := httptest.NewRecorder()
	server.UploadArtwork(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "1日の投稿制限")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDailyQuotaReportsUsage(t *testing.T) {
	server, mock := adminTestServer(t)
	server.Config = config.Config{DailyUploadLimit: 3}

	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	req := httptest.NewRequest(http.MethodGet, "/api/artworks/daily-quota", nil)
	rec := httptest.NewRecorder()
	server.DailyQuota(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"used":2,"limit":3}`, rec.Body.String())
}
