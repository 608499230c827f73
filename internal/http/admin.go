package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"shodoshare-backend-go/internal/models"
	"shodoshare-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type AdminStatsResponse struct {
	Users    int `json:"users"`
	Artworks int `json:"artworks"`
	Comments int `json:"comments"`
	Likes    int `json:"likes"`
}

type AdminUserDTO struct {
	ID          string     `json:"id" db:"id"`
	Email       string     `json:"email" db:"email"`
	Username    string     `json:"username" db:"username"`
	Role        string     `json:"role" db:"role"`
	Status      string     `json:"status" db:"status"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
}

type AdminUserUpdateRequest struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type CategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type ThemeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Month       int    `json:"month"`
	Year        int    `json:"year"`
}

func (s *Server) AdminStats(w http.ResponseWriter, r *http.Request) {
	stats := AdminStatsResponse{}
	err := s.DB.Get(&stats.Users, `SELECT count(*) FROM users`)
	if err == nil {
		err = s.DB.Get(&stats.Artworks, `SELECT count(*) FROM artworks`)
	}
	if err == nil {
		err = s.DB.Get(&stats.Comments, `SELECT count(*) FROM comments`)
	}
	if err == nil {
		err = s.DB.Get(&stats.Likes, `SELECT count(*) FROM likes`)
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

func (s *Server) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	page := parseInt(r.URL.Query().Get("page"), 1)
	pageSize := parseInt(r.URL.Query().Get("pageSize"), 20)
	if pageSize > 100 {
		pageSize = 100
	}
	search := strings.TrimSpace(r.URL.Query().Get("q"))

	where := ""
	countArgs := []interface{}{}
	if search != "" {
		where = "WHERE email ILIKE $1 OR username ILIKE $1"
		countArgs = append(countArgs, "%"+search+"%")
	}
	var total int
	if err := s.DB.Get(&total, "SELECT count(*) FROM users "+where, countArgs...); err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}

	args := append([]interface{}{}, countArgs...)
	args = append(args, pageSize, (page-1)*pageSize)
	query := fmt.Sprintf(`
SELECT id, email, username, role, status, created_at, last_login_at
FROM users
%s
ORDER BY created_at DESC
LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	users := []AdminUserDTO{}
	if err := s.DB.Select(&users, query, args...); err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items":    users,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

func (s *Server) AdminUpdateUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	var req AdminUserUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "リクエストの形式が正しくありません。")
		return
	}
	username := strings.TrimSpace(req.Username)
	role := strings.TrimSpace(req.Role)
	if username == "" {
		WriteError(w, http.StatusBadRequest, "ユーザー名は必須です。")
		return
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		WriteError(w, http.StatusBadRequest, "ロールの指定が正しくありません。")
		return
	}
	result, err := s.DB.Exec(`
UPDATE users SET username = $1, role = $2, updated_at = $3 WHERE id = $4
`, username, role, time.Now().UTC(), userID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		WriteError(w, http.StatusNotFound, "ユーザーが見つかりません。")
		return
	}
	user := AdminUserDTO{}
	if err := s.DB.Get(&user, `
SELECT id, email, username, role, status, created_at, last_login_at
FROM users WHERE id = $1
`, userID); err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

func (s *Server) AdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == CurrentUserID(r) {
		WriteError(w, http.StatusBadRequest, "自分自身のアカウントは削除できません。")
		return
	}
	if err := services.DeleteUser(r.Context(), s.DB, s.Store, userID); err != nil {
		if !mapServiceError(w, err) {
			WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) AdminListCategories(w http.ResponseWriter, r *http.Request) {
	rows := []struct {
		ID           string  `db:"id"`
		Name         string  `db:"name"`
		Description  *string `db:"description"`
		ArtworkCount int     `db:"artwork_count"`
	}{}
	err := s.DB.Select(&rows, `
SELECT c.id, c.name, c.description,
       (SELECT count(*) FROM artworks a WHERE a.category_id = c.id) AS artwork_count
FROM categories c
ORDER BY c.name
`)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	type item struct {
		CategoryDTO
		ArtworkCount int `json:"artworkCount"`
	}
	items := make([]item, 0, len(rows))
	for _, row := range rows {
		items = append(items, item{
			CategoryDTO:  CategoryDTO{ID: row.ID, Name: row.Name, Description: row.Description},
			ArtworkCount: row.ArtworkCount,
		})
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (s *Server) AdminCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "リクエストの形式が正しくありません。")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		WriteError(w, http.StatusBadRequest, "カテゴリー名は必須です。")
		return
	}
	var exists bool
	if err := s.DB.Get(&exists, `SELECT EXISTS(SELECT 1 FROM categories WHERE name = $1)`, name); err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	if exists {
		WriteError(w, http.StatusBadRequest, "同じ名前のカテゴリーが既に存在します。")
		return
	}
	id := uuid.NewString()
	_, err := s.DB.Exec(`
INSERT INTO categories (id, name, description) VALUES ($1,$2,$3)
`, id, name, req.Description)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	WriteJSON(w, http.StatusCreated, CategoryDTO{ID: id, Name: name, Description: req.Description})
}

func (s *Server) AdminUpdateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "categoryId")
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "リクエストの形式が正しくありません。")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		WriteError(w, http.StatusBadRequest, "カテゴリー名は必須です。")
		return
	}
	result, err := s.DB.Exec(`
UPDATE categories SET name = $1, description = $2 WHERE id = $3
`, name, req.Description, categoryID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		WriteError(w, http.StatusNotFound, "カテゴリーが見つかりません。")
		return
	}
	WriteJSON(w, http.StatusOK, CategoryDTO{ID: categoryID, Name: name, Description: req.Description})
}

// AdminDeleteCategory refuses to delete while artworks still reference the
// category. The count check and the delete run in one transaction so a
// concurrent upload cannot slip between them.
func (s *Server) AdminDeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "categoryId")
	tx, err := s.DB.Beginx()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	defer tx.Rollback()

	var count int
	if err := tx.Get(&count, `SELECT count(*) FROM artworks WHERE category_id = $1`, categoryID); err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	if count > 0 {
		WriteError(w, http.StatusConflict, fmt.Sprintf("このカテゴリーには%d件の作品が関連付けられています。先に作品を移動または削除してください。", count))
		return
	}
	result, err := tx.Exec(`DELETE FROM categories WHERE id = $1`, categoryID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		WriteError(w, http.StatusNotFound, "カテゴリーが見つかりません。")
		return
	}
	if err := tx.Commit(); err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) AdminListThemes(w http.ResponseWriter, r *http.Request) {
	themes, err := services.ListThemes(s.DB)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	items := make([]ThemeDTO, 0, len(themes))
	for _, theme := range themes {
		items = append(items, themeDTO(theme))
	}
	WriteJSON(w, http.StatusOK, map[string][]ThemeDTO{"items": items})
}

func validateThemeRequest(req ThemeRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return services.ErrBadRequest("テーマ名は必須です。")
	}
	if req.Month < 1 || req.Month > 12 {
		return services.ErrBadRequest("月は1から12の間で指定してください。")
	}
	if req.Year < 2000 || req.Year > 2200 {
		return services.ErrBadRequest("年の指定が正しくありません。")
	}
	return nil
}

func (s *Server) AdminCreateTheme(w http.ResponseWriter, r *http.Request) {
	var req ThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "リクエストの形式が正しくありません。")
		return
	}
	if err := validateThemeRequest(req); err != nil {
		mapServiceError(w, err)
		return
	}
	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := s.DB.Exec(`
INSERT INTO themes (id, title, description, month, year, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, id, strings.TrimSpace(req.Title), req.Description, req.Month, req.Year, now)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	WriteJSON(w, http.StatusCreated, ThemeDTO{
		ID:          id,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Month:       req.Month,
		Year:        req.Year,
		CreatedAt:   now,
	})
}

func (s *Server) AdminUpdateTheme(w http.ResponseWriter, r *http.Request) {
	themeID := chi.URLParam(r, "themeId")
	var req ThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "リクエストの形式が正しくありません。")
		return
	}
	if err := validateThemeRequest(req); err != nil {
		mapServiceError(w, err)
		return
	}
	result, err := s.DB.Exec(`
UPDATE themes SET title = $1, description = $2, month = $3, year = $4 WHERE id = $5
`, strings.TrimSpace(req.Title), req.Description, req.Month, req.Year, themeID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		WriteError(w, http.StatusNotFound, "テーマが見つかりません。")
		return
	}
	theme := models.Theme{}
	if err := s.DB.Get(&theme, `
SELECT id, title, description, month, year, created_at FROM themes WHERE id = $1
`, themeID); err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	WriteJSON(w, http.StatusOK, themeDTO(theme))
}

// AdminDeleteTheme leaves tagged artworks in place; the foreign key sets
// their theme reference to NULL.
func (s *Server) AdminDeleteTheme(w http.ResponseWriter, r *http.Request) {
	themeID := chi.URLParam(r, "themeId")
	result, err := s.DB.Exec(`DELETE FROM themes WHERE id = $1`, themeID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		WriteError(w, http.StatusNotFound, "テーマが見つかりません。")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
