package services

import (
	"context"
	"log"
	"time"

	"github.com/jmoiron/sqlx"

	"shodoshare-backend-go/internal/storage"
)

func SetLastLogin(db *sqlx.DB, userID string) error {
	_, err := db.Exec(`UPDATE users SET last_login_at = $1 WHERE id = $2`, time.Now().UTC(), userID)
	return err
}

// DeleteUser removes the user's stored objects best-effort, then the user
// row; artworks, likes and comments go with it via cascade.
func DeleteUser(ctx context.Context, db *sqlx.DB, store storage.Store, userID string) error {
	keys := []string{}
	if err := db.Select(&keys, `SELECT storage_key FROM artworks WHERE user_id = $1`, userID); err != nil {
		return err
	}
	var avatarKey *string
	_ = db.Get(&avatarKey, `SELECT avatar_storage_key FROM users WHERE id = $1`, userID)
	if avatarKey != nil && *avatarKey != "" {
		keys = append(keys, *avatarKey)
	}
	for _, key := range keys {
		if err := store.Delete(ctx, key); err != nil {
			log.Printf("object delete failed for %s: %v", key, err)
		}
	}
	_, err := db.Exec(`DELETE FROM users WHERE id = $1`, userID)
	return err
}
