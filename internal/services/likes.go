package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ToggleLike flips the like relationship for one (user, artwork) pair inside
// a transaction. The unique constraint on likes(user_id, artwork_id) absorbs
// the double-click race: a concurrent duplicate insert turns into a no-op
// instead of a second row. The returned count is authoritative, so clients
// can reconcile their optimistic state.
func ToggleLike(db *sqlx.DB, userID, artworkID string) (liked bool, count int, err error) {
	tx, err := db.Beginx()
	if err != nil {
		return false, 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var artworkExists bool
	if err = tx.Get(&artworkExists, `SELECT EXISTS(SELECT 1 FROM artworks WHERE id = $1)`, artworkID); err != nil {
		return false, 0, err
	}
	if !artworkExists {
		err = ErrNotFound("作品が見つかりません。")
		return false, 0, err
	}

	result, err := tx.Exec(`DELETE FROM likes WHERE user_id = $1 AND artwork_id = $2`, userID, artworkID)
	if err != nil {
		return false, 0, err
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return false, 0, err
	}
	if deleted == 0 {
		_, err = tx.Exec(`
INSERT INTO likes (id, user_id, artwork_id, created_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (user_id, artwork_id) DO NOTHING
`, uuid.NewString(), userID, artworkID, time.Now().UTC())
		if err != nil {
			return false, 0, err
		}
		liked = true
	}

	if err = tx.Get(&count, `SELECT count(*) FROM likes WHERE artwork_id = $1`, artworkID); err != nil {
		return false, 0, err
	}
	if err = tx.Commit(); err != nil {
		return false, 0, err
	}
	return liked, count, nil
}
