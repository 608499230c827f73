package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateImageUpload(t *testing.T) {
	maxBytes := int64(5 << 20)

	assert.NoError(t, ValidateImageUpload("image/jpeg", 1024, maxBytes))
	assert.NoError(t, ValidateImageUpload("image/png", maxBytes, maxBytes))
	assert.NoError(t, ValidateImageUpload("IMAGE/GIF; charset=binary", 1024, maxBytes))

	assert.Error(t, ValidateImageUpload("image/jpeg", 0, maxBytes))
	assert.Error(t, ValidateImageUpload("image/jpeg", maxBytes+1, maxBytes))
	assert.Error(t, ValidateImageUpload("image/webp", 1024, maxBytes))
	assert.Error(t, ValidateImageUpload("application/pdf", 1024, maxBytes))
	assert.Error(t, ValidateImageUpload("", 1024, maxBytes))
}

func TestValidateImageUploadErrorStatus(t *testing.T) {
	err := ValidateImageUpload("image/webp", 1024, 5<<20)
	var serr ServiceError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 400, serr.Status)
}

func TestStartOfDayUTC(t *testing.T) {
	jst := time.FixedZone("JST", 9*3600)
	// 08:30 JST is 23:30 UTC the previous day; the quota day follows the
	// server clock in UTC.
	now := time.Date(2025, 3, 15, 8, 30, 0, 0, jst)
	start := StartOfDayUTC(now)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), start)

	noon := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), StartOfDayUTC(noon))
}

func TestUploadKeyShape(t *testing.T) {
	key := UploadKey("user-abc", "image/png")
	assert.True(t, strings.HasPrefix(key, "uploads/user-abc/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	other := UploadKey("user-abc", "image/png")
	assert.NotEqual(t, key, other)
}

func TestStorageErrorMessage(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{errors.New("api error NoSuchBucket: the specified bucket does not exist"), "保存先のバケットが見つかりません。管理者にお問い合わせください。"},
		{errors.New("Access Denied"), "アップロードする権限がありません。ログインし直してください。"},
		{errors.New("new row violates row-level security policy"), "アップロードする権限がありません。ログインし直してください。"},
		{errors.New("connection reset by peer"), "アップロード中にエラーが発生しました。もう一度お試しください。"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StorageErrorMessage(tc.err))
	}
	assert.Equal(t, "", StorageErrorMessage(nil))
}
