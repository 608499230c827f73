package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID               string     `db:"id"`
	Email            string     `db:"email"`
	Username         string     `db:"username"`
	PasswordHash     string     `db:"password_hash"`
	AvatarURL        *string    `db:"avatar_url"`
	AvatarStorageKey *string    `db:"avatar_storage_key"`
	Role             string     `db:"role"`
	Status           string     `db:"status"`
	EmailConfirmedAt *time.Time `db:"email_confirmed_at"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
	LastLoginAt      *time.Time `db:"last_login_at"`
}

type Artwork struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	Title       string    `db:"title"`
	Description *string   `db:"description"`
	ImageURL    string    `db:"image_url"`
	StorageKey  string    `db:"storage_key"`
	CategoryID  string    `db:"category_id"`
	ThemeID     *string   `db:"theme_id"`
	CreatedAt   time.Time `db:"created_at"`
}

type Category struct {
	ID          string  `db:"id"`
	Name        string  `db:"name"`
	Description *string `db:"description"`
}

type Theme struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Month       int       `db:"month"`
	Year        int       `db:"year"`
	CreatedAt   time.Time `db:"created_at"`
}

type Like struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	ArtworkID string    `db:"artwork_id"`
	CreatedAt time.Time `db:"created_at"`
}

type Comment struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	ArtworkID string    `db:"artwork_id"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

type Contact struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Email       string    `db:"email"`
	InquiryType string    `db:"inquiry_type"`
	Message     string    `db:"message"`
	UserID      *string   `db:"user_id"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
}

type AuthToken struct {
	ID         string     `db:"id"`
	UserID     string     `db:"user_id"`
	TokenHash  string     `db:"token_hash"`
	Purpose    string     `db:"purpose"`
	ExpiresAt  time.Time  `db:"expires_at"`
	ConsumedAt *time.Time `db:"consumed_at"`
	CreatedAt  time.Time  `db:"created_at"`
}

type ServerMetricSample struct {
	ID                string    `db:"id"`
	CapturedAt        time.Time `db:"captured_at"`
	HeapUsedBytes     int64     `db:"heap_used_bytes"`
	HeapMaxBytes      int64     `db:"heap_max_bytes"`
	SystemMemoryTotal int64     `db:"system_memory_total_bytes"`
	SystemMemoryUsed  int64     `db:"system_memory_used_bytes"`
	DiskTotalBytes    int64     `db:"disk_total_bytes"`
	DiskUsedBytes     int64     `db:"disk_used_bytes"`
	ProcessCpuLoad    float64   `db:"process_cpu_load"`
	SystemCpuLoad     float64   `db:"system_cpu_load"`
}
