package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"shodoshare-backend-go/internal/models"
	"shodoshare-backend-go/internal/services"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	ConfirmPassword *string `json:"confirmPassword"`
	Username        string  `json:"username"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	ExpiresAt    int64    `json:"expiresAt"`
	User         *UserDTO `json:"user"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ConfirmRequest struct {
	Token string `json:"token"`
	Type  string `json:"type"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "リクエストの形式が正しくありません。")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)
	if email == "" || strings.TrimSpace(req.Password) == "" || username == "" {
		WriteError(w, http.StatusBadRequest, "メールアドレス、パスワード、ユーザー名は必須です。")
		return
	}
	if req.ConfirmPassword != nil && req.Password != *req.ConfirmPassword {
		WriteError(w, http.StatusBadRequest, "パスワードが一致しません。")
		return
	}
	if len(req.Password) < 8 {
		WriteError(w, http.StatusBadRequest, "パスワードは8文字以上にしてください。")
		return
	}
	var exists bool
	if err := s.DB.Get(&exists, `SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = $1)`, email); err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	if exists {
		WriteError(w, http.StatusBadRequest, "このメールアドレスは既に登録されています。")
		return
	}
	hash, err := s.Tokens.HashPassword(req.Password)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	userID := uuid.NewString()
	now := time.Now().UTC()
	_, err = s.DB.Exec(`
INSERT INTO users (id, email, username, password_hash, role, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,'ACTIVE',$6,$6)
`, userID, email, username, hash, models.RoleUser, now)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	token, err := services.IssueAuthToken(s.DB, userID, services.TokenPurposeConfirm)
	if err == nil {
		subject, body := services.ConfirmMail(s.Config.PublicBaseURL, token)
		if err := s.Mailer.Send(email, subject, body); err != nil {
			log.Printf("confirmation mail: %v", err)
		}
	}
	WriteJSON(w, http.StatusOK, map[string]string{"userId": userID, "email": email})
}

func (s *Server) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "リクエストの形式が正しくありません。")
		return
	}
	if req.Type != services.TokenPurposeConfirm {
		WriteError(w, http.StatusBadRequest, "リンクが無効です。")
		return
	}
	userID, err := services.ConsumeAuthToken(s.DB, req.Token, services.TokenPurposeConfirm)
	if err != nil {
		if !mapServiceError(w, err) {
			WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		}
		return
	}
	_, _ = s.DB.Exec(`UPDATE users SET email_confirmed_at = $1, updated_at = $1 WHERE id = $2`, time.Now().UTC(), userID)
	WriteJSON(w, http.StatusOK, map[string]string{"status": "confirmed"})
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "リクエストの形式が正しくありません。")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || strings.TrimSpace(req.Password) == "" {
		WriteError(w, http.StatusBadRequest, "メールアドレスまたはパスワードが正しくありません。")
		return
	}
	row := struct {
		ID           string `db:"id"`
		PasswordHash string `db:"password_hash"`
		Role         string `db:"role"`
		Status       string `db:"status"`
	}{}
	if err := s.DB.Get(&row, `SELECT id, password_hash, role, status FROM users WHERE lower(email) = $1`, email); err != nil {
		WriteError(w, http.StatusUnauthorized, "メールアドレスまたはパスワードが正しくありません。")
		return
	}
	if row.Status != "ACTIVE" {
		WriteError(w, http.StatusForbidden, "このアカウントは利用できません。")
		return
	}
	if !s.Tokens.VerifyPassword(req.Password, row.PasswordHash) {
		WriteError(w, http.StatusUnauthorized, "メールアドレスまたはパスワードが正しくありません。")
		return
	}
	s.issueSession(w, r, row.ID, email, row.Role)
}

func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusUnauthorized, "セッションの更新に失敗しました。")
		return
	}
	token, claims, err := s.Tokens.ParseToken(req.RefreshToken)
	if err != nil || !token.Valid || claims["typ"] != "refresh" {
		WriteError(w, http.StatusUnauthorized, "セッションの更新に失敗しました。")
		return
	}
	userID, _ := claims["sub"].(string)
	if userID == "" {
		WriteError(w, http.StatusUnauthorized, "セッションの更新に失敗しました。")
		return
	}
	row := struct {
		Email string `db:"email"`
		Role  string `db:"role"`
	}{}
	if err := s.DB.Get(&row, `SELECT email, role FROM users WHERE id = $1`, userID); err != nil {
		WriteError(w, http.StatusUnauthorized, "セッションの更新に失敗しました。")
		return
	}
	s.issueSession(w, r, userID, row.Email, row.Role)
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "リクエストの形式が正しくありません。")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	var userID string
	if err := s.DB.Get(&userID, `SELECT id FROM users WHERE lower(email) = $1`, email); err == nil {
		token, err := services.IssueAuthToken(s.DB, userID, services.TokenPurposeRecovery)
		if err == nil {
			subject, body := services.RecoveryMail(s.Config.PublicBaseURL, token)
			if err := s.Mailer.Send(email, subject, body); err != nil {
				log.Printf("recovery mail: %v", err)
			}
		}
	}
	// Same response whether the address exists or not.
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
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
	userID, err := services.ConsumeAuthToken(s.DB, req.Token, services.TokenPurposeRecovery)
	if err != nil {
		if !mapServiceError(w, err) {
			WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		}
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

func (s *Server) issueSession(w http.ResponseWriter, r *http.Request, userID, email, role string) {
	access, exp, err := s.Tokens.CreateAccessToken(userID, email, role)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	refresh, err := s.Tokens.CreateRefreshToken(userID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	_ = services.SetLastLogin(s.DB, userID)
	userDTO, err := buildUserDTO(s.DB, userID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    access,
		Path:     "/",
		MaxAge:   int(s.Config.AccessTTLSeconds),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
	WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    exp,
		User:         userDTO,
	})
}
