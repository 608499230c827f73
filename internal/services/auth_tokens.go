package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	TokenPurposeConfirm  = "confirm"
	TokenPurposeRecovery = "recovery"

	confirmTokenTTL  = 24 * time.Hour
	recoveryTokenTTL = time.Hour
)

// IssueAuthToken creates a one-time token for email confirmation or password
// recovery. Only the SHA-256 of the token is stored; the raw value goes into
// the mailed link.
func IssueAuthToken(db *sqlx.DB, userID, purpose string) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	token := hex.EncodeToString(raw)
	ttl := confirmTokenTTL
	if purpose == TokenPurposeRecovery {
		ttl = recoveryTokenTTL
	}
	now := time.Now().UTC()
	_, err := db.Exec(`
INSERT INTO auth_tokens (id, user_id, token_hash, purpose, expires_at, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, uuid.NewString(), userID, hashToken(token), purpose, now.Add(ttl), now)
	if err != nil {
		return "", err
	}
	return token, nil
}

// ConsumeAuthToken validates a raw token of the given purpose and marks it
// used. Returns the owning user id. Validation and consumption are a single
// conditional UPDATE, so concurrent requests cannot both redeem one token.
func ConsumeAuthToken(db *sqlx.DB, rawToken, purpose string) (string, error) {
	var userID string
	err := db.Get(&userID, `
UPDATE auth_tokens
SET consumed_at = now()
WHERE token_hash = $1 AND purpose = $2 AND consumed_at IS NULL AND expires_at > now()
RETURNING user_id
`, hashToken(rawToken), purpose)
	if err != nil {
		return "", ErrBadRequest("リンクが無効か、有効期限が切れています。")
	}
	return userID, nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
