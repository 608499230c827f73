package httpapi

import (
	"time"

	"github.com/jmoiron/sqlx"
)

type UserDTO struct {
	ID        string    `json:"id"`
	Email     string    `json:"email,omitempty"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatarUrl,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type CategoryDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type ThemeDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Month       int       `json:"month"`
	Year        int       `json:"year"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ArtworkDTO struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Description   *string      `json:"description,omitempty"`
	ImageURL      string       `json:"imageUrl"`
	CreatedAt     time.Time    `json:"createdAt"`
	User          UserDTO      `json:"user"`
	Category      CategoryDTO  `json:"category"`
	Theme         *ThemeDTO    `json:"theme,omitempty"`
	LikesCount    int          `json:"likesCount"`
	CommentsCount int          `json:"commentsCount"`
	UserHasLiked  bool         `json:"userHasLiked"`
}

type ArtworkListResponse struct {
	Items    []ArtworkDTO `json:"items"`
	Total    int          `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"pageSize"`
}

func buildUserDTO(db *sqlx.DB, userID string) (*UserDTO, error) {
	row := struct {
		ID        string    `db:"id"`
		Email     string    `db:"email"`
		Username  string    `db:"username"`
		AvatarURL *string   `db:"avatar_url"`
		Role      string    `db:"role"`
		CreatedAt time.Time `db:"created_at"`
	}{}
	if err := db.Get(&row, `
SELECT id, email, username, avatar_url, role, created_at
FROM users
WHERE id = $1
`, userID); err != nil {
		return nil, err
	}
	return &UserDTO{
		ID:        row.ID,
		Email:     row.Email,
		Username:  row.Username,
		AvatarURL: row.AvatarURL,
		Role:      row.Role,
		CreatedAt: row.CreatedAt,
	}, nil
}
