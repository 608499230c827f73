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

const defaultPageSize = 12

type artworkFilter struct {
	UserID     string
	CategoryID string
	ThemeID    string
}

type artworkRow struct {
	ID            string    `db:"id"`
	Title         string    `db:"title"`
	Description   *string   `db:"description"`
	ImageURL      string    `db:"image_url"`
	CreatedAt     time.Time `db:"created_at"`
	UserID        string    `db:"user_id"`
	Username      string    `db:"username"`
	AvatarURL     *string   `db:"avatar_url"`
	UserRole      string    `db:"user_role"`
	UserCreatedAt time.Time `db:"user_created_at"`
	CategoryID    string    `db:"category_id"`
	CategoryName  string    `db:"category_name"`
	ThemeID       *string   `db:"theme_id"`
	ThemeTitle    *string   `db:"theme_title"`
	ThemeMonth    *int      `db:"theme_month"`
	ThemeYear     *int      `db:"theme_year"`
	LikesCount    int       `db:"likes_count"`
	CommentsCount int       `db:"comments_count"`
	ViewerLiked   bool      `db:"viewer_liked"`
}

func (row artworkRow) toDTO() ArtworkDTO {
	dto := ArtworkDTO{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		ImageURL:    row.ImageURL,
		CreatedAt:   row.CreatedAt,
		User: UserDTO{
			ID:        row.UserID,
			Username:  row.Username,
			AvatarURL: row.AvatarURL,
			Role:      row.UserRole,
			CreatedAt: row.UserCreatedAt,
		},
		Category: CategoryDTO{
			ID:   row.CategoryID,
			Name: row.CategoryName,
		},
		LikesCount:    row.LikesCount,
		CommentsCount: row.CommentsCount,
		UserHasLiked:  row.ViewerLiked,
	}
	if row.ThemeID != nil && row.ThemeTitle != nil {
		dto.Theme = &ThemeDTO{
			ID:    *row.ThemeID,
			Title: *row.ThemeTitle,
		}
		if row.ThemeMonth != nil {
			dto.Theme.Month = *row.ThemeMonth
		}
		if row.ThemeYear != nil {
			dto.Theme.Year = *row.ThemeYear
		}
	}
	return dto
}

const artworkSelect = `
SELECT a.id, a.title, a.description, a.image_url, a.created_at,
       u.id AS user_id, u.username, u.avatar_url, u.role AS user_role, u.created_at AS user_created_at,
       c.id AS category_id, c.name AS category_name,
       t.id AS theme_id, t.title AS theme_title, t.month AS theme_month, t.year AS theme_year,
       (SELECT count(*) FROM likes l WHERE l.artwork_id = a.id) AS likes_count,
       (SELECT count(*) FROM comments cm WHERE cm.artwork_id = a.id) AS comments_count,
       EXISTS(SELECT 1 FROM likes l WHERE l.artwork_id = a.id AND l.user_id = $1) AS viewer_liked
FROM artworks a
JOIN users u ON u.id = a.user_id
JOIN categories c ON c.id = a.category_id
LEFT JOIN themes t ON t.id = a.theme_id
`

// listArtworks backs every artwork listing: the public gallery, the
// category and theme filters, and the signed-in user's own page. The
// viewer id (empty for anonymous requests) drives the userHasLiked flag.
func (s *Server) listArtworks(w http.ResponseWriter, r *http.Request, filter artworkFilter) {
	viewerID := CurrentUserID(r)
	if viewerID == "" {
		// Never matches any likes row.
		viewerID = uuid.Nil.String()
	}
	type condition struct {
		column string
		value  string
	}
	conditions := []condition{}
	if filter.UserID != "" {
		conditions = append(conditions, condition{"a.user_id", filter.UserID})
	}
	if filter.CategoryID != "" {
		conditions = append(conditions, condition{"a.category_id", filter.CategoryID})
	}
	if filter.ThemeID != "" {
		conditions = append(conditions, condition{"a.theme_id", filter.ThemeID})
	}

	// The count query numbers its placeholders from $1; the page query
	// reserves $1 for the viewer id used by the viewer_liked subselect.
	countParts := []string{}
	countArgs := []interface{}{}
	args := []interface{}{viewerID}
	whereParts := []string{}
	for _, cond := range conditions {
		countArgs = append(countArgs, cond.value)
		countParts = append(countParts, fmt.Sprintf("%s = $%d", cond.column, len(countArgs)))
		args = append(args, cond.value)
		whereParts = append(whereParts, fmt.Sprintf("%s = $%d", cond.column, len(args)))
	}
	countWhere := ""
	where := ""
	if len(conditions) > 0 {
		countWhere = "WHERE " + strings.Join(countParts, " AND ")
		where = "WHERE " + strings.Join(whereParts, " AND ")
	}

	var total int
	if err := s.DB.Get(&total, "SELECT count(*) FROM artworks a "+countWhere, countArgs...); err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}

	page := parseInt(r.URL.Query().Get("page"), 1)
	pageSize := parseInt(r.URL.Query().Get("limit"), defaultPageSize)
	if pageSize > 100 {
		pageSize = 100
	}
	args = append(args, pageSize, (page-1)*pageSize)
	query := artworkSelect + where + fmt.Sprintf(`
ORDER BY a.created_at DESC
LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows := []artworkRow{}
	if err := s.DB.Select(&rows, query, args...); err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	items := make([]ArtworkDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDTO())
	}
	WriteJSON(w, http.StatusOK, ArtworkListResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

func (s *Server) fetchArtwork(artworkID, viewerID string) (*ArtworkDTO, error) {
	if viewerID == "" {
		viewerID = uuid.Nil.String()
	}
	row := artworkRow{}
	if err := s.DB.Get(&row, artworkSelect+"WHERE a.id = $2", viewerID, artworkID); err != nil {
		return nil, err
	}
	dto := row.toDTO()
	return &dto, nil
}

func (s *Server) PublicArtworks(w http.ResponseWriter, r *http.Request) {
	s.listArtworks(w, r, artworkFilter{
		CategoryID: strings.TrimSpace(r.URL.Query().Get("category")),
		ThemeID:    strings.TrimSpace(r.URL.Query().Get("theme")),
		UserID:     strings.TrimSpace(r.URL.Query().Get("user")),
	})
}

func (s *Server) PublicArtworkDetail(w http.ResponseWriter, r *http.Request) {
	dto, err := s.fetchArtwork(chi.URLParam(r, "artworkId"), CurrentUserID(r))
	if err != nil {
		WriteError(w, http.StatusNotFound, "作品が見つかりません。")
		return
	}
	WriteJSON(w, http.StatusOK, dto)
}

func (s *Server) PublicCategories(w http.ResponseWriter, r *http.Request) {
	categories := []models.Category{}
	err := s.DB.Select(&categories, `SELECT id, name, description FROM categories ORDER BY name`)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	items := make([]CategoryDTO, 0, len(categories))
	for _, category := range categories {
		items = append(items, CategoryDTO{ID: category.ID, Name: category.Name, Description: category.Description})
	}
	WriteJSON(w, http.StatusOK, map[string][]CategoryDTO{"items": items})
}

func themeDTO(theme models.Theme) ThemeDTO {
	return ThemeDTO{
		ID:          theme.ID,
		Title:       theme.Title,
		Description: theme.Description,
		Month:       theme.Month,
		Year:        theme.Year,
		CreatedAt:   theme.CreatedAt,
	}
}

// PublicThemes returns the newest theme as current and everything older
// as past, both in (year, month) descending order.
func (s *Server) PublicThemes(w http.ResponseWriter, r *http.Request) {
	themes, err := services.ListThemes(s.DB)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	current, past := services.SplitCurrent(themes)
	response := struct {
		Current *ThemeDTO  `json:"current"`
		Past    []ThemeDTO `json:"past"`
	}{Past: make([]ThemeDTO, 0, len(past))}
	if current != nil {
		dto := themeDTO(*current)
		response.Current = &dto
	}
	for _, theme := range past {
		response.Past = append(response.Past, themeDTO(theme))
	}
	WriteJSON(w, http.StatusOK, response)
}

func (s *Server) PublicCurrentTheme(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	theme, err := services.CurrentTheme(s.DB, int(now.Month()), now.Year())
	if err != nil {
		WriteJSON(w, http.StatusOK, map[string]*ThemeDTO{"theme": nil})
		return
	}
	dto := themeDTO(*theme)
	WriteJSON(w, http.StatusOK, map[string]*ThemeDTO{"theme": &dto})
}

// PublicThemeDetail returns the theme with every artwork tagged to it, the
// shape the theme page renders in one request.
func (s *Server) PublicThemeDetail(w http.ResponseWriter, r *http.Request) {
	themeID := chi.URLParam(r, "themeId")
	theme := models.Theme{}
	err := s.DB.Get(&theme, `
SELECT id, title, description, month, year, created_at
FROM themes
WHERE id = $1
`, themeID)
	if err != nil {
		WriteError(w, http.StatusNotFound, "テーマが見つかりません。")
		return
	}
	viewerID := CurrentUserID(r)
	if viewerID == "" {
		viewerID = uuid.Nil.String()
	}
	rows := []artworkRow{}
	if err := s.DB.Select(&rows, artworkSelect+`WHERE a.theme_id = $2
ORDER BY a.created_at DESC`, viewerID, themeID); err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	artworks := make([]ArtworkDTO, 0, len(rows))
	for _, row := range rows {
		artworks = append(artworks, row.toDTO())
	}
	WriteJSON(w, http.StatusOK, struct {
		ThemeDTO
		Artworks []ArtworkDTO `json:"artworks"`
	}{ThemeDTO: themeDTO(theme), Artworks: artworks})
}

type ContactRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	InquiryType string `json:"inquiryType"`
	Message     string `json:"message"`
}

func (s *Server) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "リクエストの形式が正しくありません。")
		return
	}
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	message := strings.TrimSpace(req.Message)
	if name == "" || email == "" || message == "" {
		WriteError(w, http.StatusBadRequest, "お名前、メールアドレス、お問い合わせ内容は必須です。")
		return
	}
	inquiryType := strings.TrimSpace(req.InquiryType)
	if inquiryType == "" {
		inquiryType = "other"
	}
	var userID *string
	if id := CurrentUserID(r); id != "" {
		userID = &id
	}
	_, err := s.DB.Exec(`
INSERT INTO contacts (id, name, email, inquiry_type, message, user_id, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6,'open',$7)
`, uuid.NewString(), name, email, inquiryType, message, userID, time.Now().UTC())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]string{"status": "received"})
}
