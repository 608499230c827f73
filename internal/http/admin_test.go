package httpapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminTestServer(t *testing.T) (*Server, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return &Server{DB: sqlx.NewDb(mockDB, "sqlmock")}, mock
}

func TestAdminDeleteCategoryBlockedWhileReferenced(t *testing.T) {
	server, mock := adminTestServer(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count").
		WithArgs("cat-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectRollback()

	router := chi.NewRouter()
	router.Delete("/categories/{categoryId}", server.AdminDeleteCategory)

	req := httptest.NewRequest(http.MethodDelete, "/categories/cat-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "4件の作品")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminDeleteCategoryRemovesUnreferenced(t *testing.T) {
	server, mock := adminTestServer(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count").
		WithArgs("cat-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("DELETE FROM categories").
		WithArgs("cat-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router := chi.NewRouter()
	router.Delete("/categories/{categoryId}", server.AdminDeleteCategory)

	req := httptest.NewRequest(http.MethodDelete, "/categories/cat-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminCreateCategoryInserts(t *testing.T) {
	server, mock := adminTestServer(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("調和体").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	// Insert matches the categories DDL: id, name, description.
	mock.ExpectExec(`INSERT INTO categories \(id, name, description\) VALUES \(\$1,\$2,\$3\)`).
		WithArgs(sqlmock.AnyArg(), "調和体", nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	router := chi.NewRouter()
	router.Post("/categories", server.AdminCreateCategory)

	req := httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(`{"name":"調和体"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "調和体")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminCreateCategoryFailsClosedOnLookupError(t *testing.T) {
	server, mock := adminTestServer(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("調和体").
		WillReturnError(errors.New("connection refused"))

	router := chi.NewRouter()
	router.Post("/categories", server.AdminCreateCategory)

	req := httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(`{"name":"調和体"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminCreateCategoryRejectsDuplicateName(t *testing.T) {
	server, mock := adminTestServer(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("楷書").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	router := chi.NewRouter()
	router.Post("/categories", server.AdminCreateCategory)

	req := httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(`{"name":"楷書"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "既に存在します")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminCreateThemeValidatesMonth(t *testing.T) {
	server, _ := adminTestServer(t)

	router := chi.NewRouter()
	router.Post("/themes", server.AdminCreateTheme)

	body := `{"title":"年賀","description":"","month":13,"year":2026}`
	req := httptest.NewRequest(http.MethodPost, "/themes", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "1から12")
}

func TestAdminCreateThemeRequiresTitle(t *testing.T) {
	server, _ := adminTestServer(t)

	router := chi.NewRouter()
	router.Post("/themes", server.AdminCreateTheme)

	body := `{"title":"  ","description":"","month":4,"year":2026}`
	req := httptest.NewRequest(http.MethodPost, "/themes", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
