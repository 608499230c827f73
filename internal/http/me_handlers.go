package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"shodoshare-backend-go/internal/services"

	"github.com/google/uuid"
)

type ProfileUpdateRequest struct {
	Username string `json:"username"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type DeleteAccountRequest struct {
	ConfirmEmail string `json:"confirmEmail"`
}

func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	userDTO, err := buildUserDTO(s.DB, CurrentUserID(r))
	if err != nil {
		WriteError(w, http.StatusNotFound, "ユーザーが見つかりません。")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]*UserDTO{"user": userDTO})
}

func (s *Server) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := CurrentUserID(r)
	var req ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "リクエストの形式が正しくありません。")
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		WriteError(w, http.StatusBadRequest, "ユーザー名は必須です。")
		return
	}
	_, err := s.DB.Exec(`UPDATE users SET username = $1, updated_at = $2 WHERE id = $3`, username, time.Now().UTC(), userID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	userDTO, err := buildUserDTO(s.DB, userID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]*UserDTO{"user": userDTO})
}

func (s *Server) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID := CurrentUserID(r)
	r.Body = http.MaxBytesReader(w, r.Body, s.Config.AvatarMaxBytes+(1<<20))
	if err := r.ParseMultipartForm(s.Config.AvatarMaxBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "画像は必須です。")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "画像は必須です。")
		return
	}
	defer file.Close()
	contentType := header.Header.Get("Content-Type")
	if err := services.ValidateImageUpload(contentType, header.Size, s.Config.AvatarMaxBytes); err != nil {
		if !mapServiceError(w, err) {
			WriteError(w, http.StatusBadRequest, "画像のアップロードに失敗しました。")
		}
		return
	}

	key := "avatars/" + userID + "/" + uuid.NewString()
	url, err := s.Store.Put(r.Context(), key, contentType, file)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, services.StorageErrorMessage(err))
		return
	}
	var previousKey *string
	_ = s.DB.Get(&previousKey, `SELECT avatar_storage_key FROM users WHERE id = $1`, userID)
	_, err = s.DB.Exec(`
UPDATE users SET avatar_url = $1, avatar_storage_key = $2, updated_at = $3 WHERE id = $4
`, url, key, time.Now().UTC(), userID)
	if err != nil {
		_ = s.Store.Delete(r.Context(), key)
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	if previousKey != nil && *previousKey != "" && *previousKey != key {
		_ = s.Store.Delete(r.Context(), *previousKey)
	}
	WriteJSON(w, http.StatusOK, map[string]string{"avatarUrl": url})
}

func (s *Server) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := CurrentUserID(r)
	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "リクエストの形式が正しくありません。")
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		WriteError(w, http.StatusBadRequest, "パスワードが一致しません。")
		return
	}
	if len(req.NewPassword) < 8 {
		WriteError(w, http.StatusBadRequest, "パスワードは8文字以上にしてください。")
		return
	}
	row := struct {
		PasswordHash string `db:"password_hash"`
	}{}
	if err := s.DB.Get(&row, `SELECT password_hash FROM users WHERE id = $1`, userID); err != nil {
		WriteError(w, http.StatusNotFound, "ユーザーが見つかりません。")
		return
	}
	if !s.Tokens.VerifyPassword(req.CurrentPassword, row.PasswordHash) {
		WriteError(w, http.StatusUnauthorized, "現在のパスワードが正しくありません。")
		return
	}
	hash, err := s.Tokens.HashPassword(req.NewPassword)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	_, err = s.DB.Exec(`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`, hash, time.Now().UTC(), userID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) MyArtworks(w http.ResponseWriter, r *http.Request) {
	s.listArtworks(w, r, artworkFilter{UserID: CurrentUserID(r)})
}

// DeleteAccount requires the account's email typed back as confirmation,
// then removes stored objects and the user row; owned artworks, likes and
// comments cascade with it.
func (s *Server) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID := CurrentUserID(r)
	var req DeleteAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "リクエストの形式が正しくありません。")
		return
	}
	var email string
	if err := s.DB.Get(&email, `SELECT email FROM users WHERE id = $1`, userID); err != nil {
		WriteError(w, http.StatusNotFound, "ユーザーが見つかりません。")
		return
	}
	if !strings.EqualFold(strings.TrimSpace(req.ConfirmEmail), email) {
		WriteError(w, http.StatusBadRequest, "メールアドレスが一致しません。")
		return
	}
	if err := services.DeleteUser(r.Context(), s.DB, s.Store, userID); err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
