// Package httpapi exposes the chat server over HTTP: the pages and JSON
// endpoints used by the chat widget and the admin pages.
package httpapi

import (
	"chat-collect/auth"
	"chat-collect/services"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Version is shown by the /version page.
const Version = "1.0"

type Config struct {
	// WebContext is the path prefix of every route, without slashes.
	WebContext        string
	AdminUser         string
	AdminPasswordHash string
	// Location is the timezone of the dates shown on the admin page.
	Location *time.Location
	// Store, when set, is mounted at /admin/store.
	Store http.Handler
}

// Prefix returns the path every route lives under, "" for the root.
func (c Config) Prefix() string {
	context := strings.Trim(c.WebContext, "/")
	if context == "" {
		return ""
	}
	return "/" + context
}

type Server struct {
	log      *slog.Logger
	cfg      Config
	service  services.IChatService
	sessions auth.Sessions
	pages    *pages
}

// NewRouter builds the handler of the whole server.
func NewRouter(log *slog.Logger, cfg Config, service services.IChatService, sessions auth.Sessions) http.Handler {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	s := &Server{
		log:      log,
		cfg:      cfg,
		service:  service,
		sessions: sessions,
		pages:    newPages(cfg.Location, cfg.Prefix()),
	}

	root := chi.NewRouter()
	root.Use(middleware.RequestID)
	root.Use(middleware.RealIP)
	root.Use(requestLogger(log))
	root.Use(middleware.Recoverer)

	app := chi.NewRouter()
	app.Get("/version", s.version)
	app.Get("/index", s.index)
	app.Get("/static/*", s.static)
	app.With(sessions.Ensure).Post("/join", s.join)
	app.Group(func(r chi.Router) {
		r.Use(sessions.Require)
		r.Get("/chatroom", s.poll)
		r.Post("/post", s.post)
		r.Get("/leave", s.leave)
	})
	app.Route("/admin", func(r chi.Router) {
		r.Use(auth.AdminOnly(cfg.AdminUser, cfg.AdminPasswordHash, log))
		r.Get("/", s.adminPage)
		r.Get("/chatrooms", s.adminChatrooms)
		r.Get("/chatrooms/{id}", s.adminTranscript)
		r.Get("/stats", s.adminStats)
		r.Get("/search", s.adminSearch)
		if cfg.Store != nil {
			r.Handle("/store", cfg.Store)
		}
	})

	prefix := cfg.Prefix()
	if prefix == "" {
		prefix = "/"
	}
	root.Mount(prefix, app)
	return root
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("Request served",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
