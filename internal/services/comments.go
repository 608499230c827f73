package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type CommentWithAuthor struct {
	ID        string    `db:"id" json:"id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UserID    string    `db:"user_id" json:"userId"`
	Username  string    `db:"username" json:"username"`
	AvatarURL *string   `db:"avatar_url" json:"avatarUrl"`
}

// CreateComment appends an immutable comment. Whitespace-only content is
// rejected before anything reaches the database.
func CreateComment(db *sqlx.DB, userID, artworkID, content string) (*CommentWithAuthor, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrBadRequest("コメントを入力してください。")
	}
	var artworkExists bool
	if err := db.Get(&artworkExists, `SELECT EXISTS(SELECT 1 FROM artworks WHERE id = $1)`, artworkID); err != nil {
		return nil, err
	}
	if !artworkExists {
		return nil, ErrNotFound("作品が見つかりません。")
	}
	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := db.Exec(`
INSERT INTO comments (id, user_id, artwork_id, content, created_at)
VALUES ($1,$2,$3,$4,$5)
`, id, userID, artworkID, content, now)
	if err != nil {
		return nil, err
	}
	row := CommentWithAuthor{}
	if err := db.Get(&row, `
SELECT c.id, c.content, c.created_at, c.user_id, u.username, u.avatar_url
FROM comments c
JOIN users u ON u.id = c.user_id
WHERE c.id = $1
`, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// ListComments returns an artwork's comments newest first, each with its
// author embedded. The list is always fetched in full; clients replace
// rather than merge.
func ListComments(db *sqlx.DB, artworkID string) ([]CommentWithAuthor, error) {
	rows := []CommentWithAuthor{}
	err := db.Select(&rows, `
SELECT c.id, c.content, c.created_at, c.user_id, u.username, u.avatar_url
FROM comments c
JOIN users u ON u.id = c.user_id
WHERE c.artwork_id = $1
ORDER BY c.created_at DESC
`, artworkID)
	return rows, err
}
