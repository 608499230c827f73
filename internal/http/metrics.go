package httpapi

import (
	"net/http"
	"strings"

	"shodoshare-backend-go/internal/models"
	"shodoshare-backend-go/internal/services"

	"github.com/gorilla/websocket"
)

func (s *Server) MetricsHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseInt(r.URL.Query().Get("limit"), 60)
	if limit > 720 {
		limit = 720
	}
	samples, err := services.LatestMetrics(s.DB, limit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "サーバーエラーが発生しました。")
		return
	}
	WriteJSON(w, http.StatusOK, map[string][]services.MetricSample{"items": samples})
}

// MetricsSocket streams live samples to the admin dashboard. Browsers cannot
// set headers on websocket requests, so the token also comes via query param.
func (s *Server) MetricsSocket(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		tokenStr = bearerOrCookieToken(r)
	}
	_, _, role, ok := resolveSession(s.Tokens, tokenStr)
	if !ok || !strings.EqualFold(role, models.RoleAdmin) {
		WriteError(w, http.StatusUnauthorized, "ログインが必要です。")
		return
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.Hub.Subscribe(services.MetricsTopic, conn)
	defer func() {
		s.Hub.Unsubscribe(services.MetricsTopic, conn)
		_ = conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
