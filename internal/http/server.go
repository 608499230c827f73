package httpapi

import (
	"net/http"
	"time"

	"shodoshare-backend-go/internal/config"
	"shodoshare-backend-go/internal/services"
	"shodoshare-backend-go/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	DB     *sqlx.DB
	Config config.Config
	Tokens services.TokenService
	Store  storage.Store
	Hub    *services.Hub
	Mailer services.Mailer
}

func NewServer(db *sqlx.DB, cfg config.Config, store storage.Store, hub *services.Hub, mailer services.Mailer) *Server {
	tokens := services.TokenService{
		Secret:     []byte(cfg.JWTSecret),
		Issuer:     cfg.JWTIssuer,
		AccessTTL:  time.Duration(cfg.AccessTTLSeconds) * time.Second,
		RefreshTTL: time.Duration(cfg.RefreshTTLSeconds) * time.Second,
	}
	return &Server{
		DB:     db,
		Config: cfg,
		Tokens: tokens,
		Store:  store,
		Hub:    hub,
		Mailer: mailer,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger)
	if len(s.Config.CorsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.Config.CorsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(auth chi.Router) {
			auth.Use(httprate.LimitByIP(10, time.Minute))
			auth.Post("/register", s.Register)
			auth.Post("/confirm", s.ConfirmEmail)
			auth.Post("/login", s.Login)
			auth.Post("/refresh", s.Refresh)
			auth.Post("/logout", s.Logout)
			auth.Post("/password/forgot", s.ForgotPassword)
			auth.Post("/password/reset", s.ResetPassword)
		})

		api.Route("/me", func(me chi.Router) {
			me.Use(WithAuth(s.Tokens))
			me.Get("/", s.Me)
			me.Put("/profile", s.UpdateProfile)
			me.Post("/avatar", s.UploadAvatar)
			me.Put("/password", s.ChangePassword)
			me.Get("/artworks", s.MyArtworks)
			me.Delete("/", s.DeleteAccount)
		})

		api.Route("/artworks", func(art chi.Router) {
			art.Group(func(auth chi.Router) {
				auth.Use(WithAuth(s.Tokens))
				auth.Post("/", s.UploadArtwork)
				auth.Get("/daily-quota", s.DailyQuota)
				auth.Delete("/{artworkId}", s.DeleteArtwork)
				auth.Post("/{artworkId}/like", s.ToggleLike)
				auth.Post("/{artworkId}/comments", s.PostComment)
			})
			art.Get("/{artworkId}/comments", s.ListComments)
		})

		api.Route("/public", func(pub chi.Router) {
			pub.Use(WithOptionalAuth(s.Tokens))
			pub.Get("/artworks", s.PublicArtworks)
			pub.Get("/artworks/{artworkId}", s.PublicArtworkDetail)
			pub.Get("/categories", s.PublicCategories)
			pub.Get("/themes", s.PublicThemes)
			pub.Get("/themes/current", s.PublicCurrentTheme)
			pub.Get("/themes/{themeId}", s.PublicThemeDetail)
			pub.With(httprate.LimitByIP(5, time.Minute)).Post("/contact", s.SubmitContact)
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(WithAuth(s.Tokens))
			admin.Use(RequireRole("admin"))
			admin.Get("/stats", s.AdminStats)
			admin.Get("/metrics/history", s.MetricsHistory)
			admin.Route("/users", func(users chi.Router) {
				users.Get("/", s.AdminListUsers)
				users.Put("/{userId}", s.AdminUpdateUser)
				users.Delete("/{userId}", s.AdminDeleteUser)
			})
			admin.Route("/categories", func(categories chi.Router) {
				categories.Get("/", s.AdminListCategories)
				categories.Post("/", s.AdminCreateCategory)
				categories.Put("/{categoryId}", s.AdminUpdateCategory)
				categories.Delete("/{categoryId}", s.AdminDeleteCategory)
			})
			admin.Route("/themes", func(themes chi.Router) {
				themes.Get("/", s.AdminListThemes)
				themes.Post("/", s.AdminCreateTheme)
				themes.Put("/{themeId}", s.AdminUpdateTheme)
				themes.Delete("/{themeId}", s.AdminDeleteTheme)
			})
		})
	})

	r.Get("/ws/artworks/{artworkId}/comments", s.CommentSocket)
	r.Get("/ws/metrics", s.MetricsSocket)
	r.Get("/media/assets/*", s.MediaContent)

	r.Group(func(pages chi.Router) {
		pages.Use(PageGuard(s.Tokens))
		pages.Handle("/*", s.pageHandler())
	})

	return r
}

func (s *Server) pageHandler() http.Handler {
	if s.Config.WebDir == "" {
		return http.NotFoundHandler()
	}
	return http.FileServer(http.Dir(s.Config.WebDir))
}
