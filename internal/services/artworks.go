package services

import (
	"context"
	"io"
	"log"
	"strings"
	"time"

	"shodoshare-backend-go/internal/models"
	"shodoshare-backend-go/internal/storage"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
}

// ValidateImageUpload enforces the upload preconditions: a non-empty file of
// an allowed type within the size cap.
func ValidateImageUpload(contentType string, size, maxBytes int64) error {
	if size <= 0 {
		return ErrBadRequest("画像は必須です。")
	}
	if size > maxBytes {
		return ErrBadRequest("ファイルサイズは5MB以下にしてください。")
	}
	if _, ok := imageExtensions[normalizeContentType(contentType)]; !ok {
		return ErrBadRequest("JPG、PNG、GIF形式の画像のみアップロードできます。")
	}
	return nil
}

func normalizeContentType(contentType string) string {
	value := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(value, ";"); idx >= 0 {
		value = strings.TrimSpace(value[:idx])
	}
	return value
}

// StartOfDayUTC is the daily-quota boundary. The day is defined by the
// server clock in UTC, not the client clock, so the limit cannot be reset by
// adjusting a device's timezone.
func StartOfDayUTC(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func CountDailyUploads(db *sqlx.DB, userID string, now time.Time) (int, error) {
	var count int
	err := db.Get(&count, `
SELECT count(*) FROM artworks
WHERE user_id = $1 AND created_at >= $2
`, userID, StartOfDayUTC(now))
	return count, err
}

type ArtworkInput struct {
	UserID      string
	Title       string
	Description *string
	CategoryID  string
	ThemeID     *string
	ContentType string
}

// UploadKey builds the object key for a new artwork image. Keys are
// uuid-based, so collisions are not a concern even under concurrent uploads
// by the same user.
func UploadKey(userID, contentType string) string {
	ext := imageExtensions[normalizeContentType(contentType)]
	return "uploads/" + userID + "/" + uuid.NewString() + "." + ext
}

// CreateArtwork runs the two-system write: the object goes to storage first,
// then the row referencing its URL is inserted. If the insert fails, the
// stored object is removed so no orphan remains.
func CreateArtwork(ctx context.Context, db *sqlx.DB, store storage.Store, in ArtworkInput, body io.Reader) (*models.Artwork, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrBadRequest("作品タイトルは必須です。")
	}
	if strings.TrimSpace(in.CategoryID) == "" {
		return nil, ErrBadRequest("カテゴリーは必須です。")
	}
	var categoryExists bool
	if err := db.Get(&categoryExists, `SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`, in.CategoryID); err != nil {
		return nil, err
	}
	if !categoryExists {
		return nil, ErrBadRequest("選択されたカテゴリーが見つかりません。")
	}

	key := UploadKey(in.UserID, in.ContentType)
	url, err := store.Put(ctx, key, in.ContentType, body)
	if err != nil {
		if err == storage.ErrEmptyObject {
			return nil, ErrBadRequest("画像は必須です。")
		}
		return nil, err
	}

	artwork := &models.Artwork{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		Title:       title,
		Description: in.Description,
		ImageURL:    url,
		StorageKey:  key,
		CategoryID:  in.CategoryID,
		ThemeID:     in.ThemeID,
		CreatedAt:   time.Now().UTC(),
	}
	_, err = db.Exec(`
INSERT INTO artworks (id, user_id, title, description, image_url, storage_key, category_id, theme_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`, artwork.ID, artwork.UserID, artwork.Title, artwork.Description, artwork.ImageURL, artwork.StorageKey, artwork.CategoryID, artwork.ThemeID, artwork.CreatedAt)
	if err != nil {
		if delErr := store.Delete(ctx, key); delErr != nil {
			log.Printf("compensating delete failed for %s: %v", key, delErr)
		}
		return nil, err
	}
	return artwork, nil
}

// DeleteArtwork removes the row first, then the stored object best-effort.
func DeleteArtwork(ctx context.Context, db *sqlx.DB, store storage.Store, artworkID string) error {
	var key string
	if err := db.Get(&key, `SELECT storage_key FROM artworks WHERE id = $1`, artworkID); err != nil {
		return ErrNotFound("作品が見つかりません。")
	}
	if _, err := db.Exec(`DELETE FROM artworks WHERE id = $1`, artworkID); err != nil {
		return err
	}
	if err := store.Delete(ctx, key); err != nil {
		log.Printf("object delete failed for %s: %v", key, err)
	}
	return nil
}

// StorageErrorMessage maps known storage failure patterns to the messages
// the upload form shows; everything else gets the generic one.
func StorageErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "nosuchbucket") || strings.Contains(msg, "bucket not found"):
		return "保存先のバケットが見つかりません。管理者にお問い合わせください。"
	case strings.Contains(msg, "access denied") || strings.Contains(msg, "unauthorized") || strings.Contains(msg, "403"):
		return "アップロードする権限がありません。ログインし直してください。"
	case strings.Contains(msg, "row-level security") || strings.Contains(msg, "permission denied"):
		return "アップロードする権限がありません。ログインし直してください。"
	default:
		return "アップロード中にエラーが発生しました。もう一度お試しください。"
	}
}
