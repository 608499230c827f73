package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"shodoshare-backend-go/internal/models"
	"shodoshare-backend-go/internal/services"
	"shodoshare-backend-go/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type DailyQuotaResponse struct {
	Used  int `json:"used"`
	Limit int `json:"limit"`
}

type LikeResponse struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likesCount"`
}

type CommentRequest struct {
	Content string `json:"content"`
}

func (s *Server) DailyQuota(w http.ResponseWriter, r *http.Request) {
	used, err := services.CountDailyUploads(s.DB, CurrentUserID(r), time.Now())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	WriteJSON(w, http.StatusOK, DailyQuotaResponse{Used: used, Limit: s.Config.DailyUploadLimit})
}

func (s *Server) UploadArtwork(w http.ResponseWriter, r *http.Request) {
	userID := CurrentUserID(r)

	used, err := services.CountDailyUploads(s.DB, userID, time.Now())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	if used >= s.Config.DailyUploadLimit {
		WriteError(w, http.StatusTooManyRequests, "1日の投稿制限（3枚）に達しました。明日また投稿してください。")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.Config.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(s.Config.MaxUploadBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "ファイルサイズは5MB以下にしてください。")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "画像は必須です。")
		return
	}
	defer file.Close()
	contentType := header.Header.Get("Content-Type")
	if err := services.ValidateImageUpload(contentType, header.Size, s.Config.MaxUploadBytes); err != nil {
		if !mapServiceError(w, err) {
			WriteError(w, http.StatusBadRequest, "画像のアップロードに失敗しました。")
		}
		return
	}

	var description *string
	if value := strings.TrimSpace(r.FormValue("description")); value != "" {
		description = &value
	}
	var themeID *string
	if value := strings.TrimSpace(r.FormValue("themeId")); value != "" {
		themeID = &value
	}
	artwork, err := services.CreateArtwork(r.Context(), s.DB, s.Store, services.ArtworkInput{
		UserID:      userID,
		Title:       r.FormValue("title"),
		Description: description,
		CategoryID:  strings.TrimSpace(r.FormValue("categoryId")),
		ThemeID:     themeID,
		ContentType: contentType,
	}, file)
	if err != nil {
		if mapServiceError(w, err) {
			return
		}
		WriteError(w, http.StatusInternalServerError, services.StorageErrorMessage(err))
		return
	}
	dto, err := s.fetchArtwork(artwork.ID, userID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	WriteJSON(w, http.StatusCreated, dto)
}

// DeleteArtwork is allowed for the owner or an admin.
func (s *Server) DeleteArtwork(w http.ResponseWriter, r *http.Request) {
	artworkID := chi.URLParam(r, "artworkId")
	var ownerID string
	if err := s.DB.Get(&ownerID, `SELECT user_id FROM artworks WHERE id = $1`, artworkID); err != nil {
		WriteError(w, http.StatusNotFound, "作品が見つかりません。")
		return
	}
	if ownerID != CurrentUserID(r) && !strings.EqualFold(CurrentRole(r), models.RoleAdmin) {
		WriteError(w, http.StatusForbidden, "この操作を行う権限がありません。")
		return
	}
	if err := services.DeleteArtwork(r.Context(), s.DB, s.Store, artworkID); err != nil {
		if !mapServiceError(w, err) {
			WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ToggleLike(w http.ResponseWriter, r *http.Request) {
	artworkID := chi.URLParam(r, "artworkId")
	liked, count, err := services.ToggleLike(s.DB, CurrentUserID(r), artworkID)
	if err != nil {
		if !mapServiceError(w, err) {
			WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		}
		return
	}
	WriteJSON(w, http.StatusOK, LikeResponse{Liked: liked, LikesCount: count})
}

func (s *Server) PostComment(w http.ResponseWriter, r *http.Request) {
	artworkID := chi.URLParam(r, "artworkId")
	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "リクエストの形式が正しくありません。")
		return
	}
	comment, err := services.CreateComment(s.DB, CurrentUserID(r), artworkID, req.Content)
	if err != nil {
		if !mapServiceError(w, err) {
			WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		}
		return
	}
	s.Hub.Broadcast(artworkID, services.CommentEvent{Type: "INSERT", ArtworkID: artworkID})
	WriteJSON(w, http.StatusCreated, comment)
}

func (s *Server) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := services.ListComments(s.DB, chi.URLParam(r, "artworkId"))
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"items": comments})
}

// CommentSocket subscribes one connection to an artwork's comment change
// feed; events only signal that a refetch is needed.
func (s *Server) CommentSocket(w http.ResponseWriter, r *http.Request) {
	artworkID := chi.URLParam(r, "artworkId")
	var exists bool
	if err := s.DB.Get(&exists, `SELECT EXISTS(SELECT 1 FROM artworks WHERE id = $1)`, artworkID); err != nil || !exists {
		WriteError(w, http.StatusNotFound, "作品が見つかりません。")
		return
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.Hub.Subscribe(artworkID, conn)
	defer func() {
		s.Hub.Unsubscribe(artworkID, conn)
		_ = conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// MediaContent serves disk-backend objects; with the S3 backend clients go
// straight to the bucket's public URL and this route is never linked.
func (s *Server) MediaContent(w http.ResponseWriter, r *http.Request) {
	disk, ok := s.Store.(*storage.DiskStore)
	if !ok {
		WriteError(w, http.StatusNotFound, "メディアが見つかりません。")
		return
	}
	key := chi.URLParam(r, "*")
	path, err := disk.Path(key)
	if err != nil {
		WriteError(w, http.StatusNotFound, "メディアが見つかりません。")
		return
	}
	http.ServeFile(w, r, path)
}
