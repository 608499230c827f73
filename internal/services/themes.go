package services

import (
	"github.com/jmoiron/sqlx"

	"shodoshare-backend-go/internal/models"
)

// ListThemes returns all themes newest first by (year, month).
func ListThemes(db *sqlx.DB) ([]models.Theme, error) {
	themes := []models.Theme{}
	err := db.Select(&themes, `
SELECT id, title, description, month, year, created_at
FROM themes
ORDER BY year DESC, month DESC
`)
	return themes, err
}

// SplitCurrent separates the head of a (year, month)-descending theme list
// from the past themes. "Current" is a query-time convention: the newest
// theme is shown as current whether or not its month has arrived.
func SplitCurrent(themes []models.Theme) (*models.Theme, []models.Theme) {
	if len(themes) == 0 {
		return nil, nil
	}
	current := themes[0]
	past := themes[1:]
	return &current, past
}

// CurrentTheme returns the theme matching the given month and year, the one
// the upload form offers to tag new artworks with.
func CurrentTheme(db *sqlx.DB, month, year int) (*models.Theme, error) {
	theme := models.Theme{}
	err := db.Get(&theme, `
SELECT id, title, description, month, year, created_at
FROM themes
WHERE month = $1 AND year = $2
ORDER BY created_at DESC
LIMIT 1
`, month, year)
	if err != nil {
		return nil, err
	}
	return &theme, nil
}
