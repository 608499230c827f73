package services

import (
	"testing"

	"shodoshare-backend-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCurrent(t *testing.T) {
	// Already (year, month) descending, as ListThemes returns them.
	themes := []models.Theme{
		{ID: "b", Title: "春風", Month: 2, Year: 2023},
		{ID: "a", Title: "初日の出", Month: 1, Year: 2023},
	}

	current, past := SplitCurrent(themes)
	require.NotNil(t, current)
	assert.Equal(t, "b", current.ID)
	require.Len(t, past, 1)
	assert.Equal(t, "a", past[0].ID)
}

func TestSplitCurrentSingleTheme(t *testing.T) {
	current, past := SplitCurrent([]models.Theme{{ID: "only", Month: 6, Year: 2024}})
	require.NotNil(t, current)
	assert.Equal(t, "only", current.ID)
	assert.Empty(t, past)
}

func TestSplitCurrentEmpty(t *testing.T) {
	current, past := SplitCurrent(nil)
	assert.Nil(t, current)
	assert.Nil(t, past)
}
