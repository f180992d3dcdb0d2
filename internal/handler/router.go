package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/amaralkaff/lsa-backend/internal/metrics"
	"github.com/amaralkaff/lsa-backend/internal/middleware"
	"github.com/amaralkaff/lsa-backend/internal/service"
)

// Dependencies holds everything the router wires into handlers.
type Dependencies struct {
	Auth     *service.AuthService
	Programs *service.ProgramService
	Blogs    *service.BlogService
	Gallery  *service.GalleryService
	Partners *service.PartnerService
	Metrics  *metrics.Metrics

	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int

	// UploadMaxBytes bounds a single image. Multipart bodies may exceed it
	// by the size of the text fields.
	UploadMaxBytes int64

	// StaticDir and StaticPath serve disk uploads. Empty StaticDir disables it.
	StaticDir  string
	StaticPath string

	// Ready reports whether backing stores are reachable. Nil means always ready.
	Ready func(ctx context.Context) error
}

// NewRouter builds the HTTP router. The auth rate limit keys on the socket
// address, so forwarded-for headers cannot pick a fresh bucket.
func NewRouter(d Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Instrument(d.Metrics))
	r.Use(chimw.Recoverer)
	r.Use(corsHandler(d.AllowedOrigins))

	r.Get("/health", handleHealth(d.Ready))
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	if d.StaticDir != "" {
		mountStatic(r, d.StaticPath, d.StaticDir)
	}

	maxBody := d.UploadMaxBytes + 1<<20
	authenticate := middleware.Authenticate(d.Auth, d.Metrics)
	requireActive := middleware.RequireActive(d.Metrics)

	authHandler := NewAuthHandler(d.Auth, d.Metrics)
	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(d.RateLimitRPS, d.RateLimitBurst, d.Metrics))
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
		})
		r.With(authenticate).Get("/me", authHandler.HandleMe)
	})

	programs := NewProgramHandler(d.Programs, maxBody)
	r.Route("/programs", func(r chi.Router) {
		r.Get("/", programs.HandleList)
		r.Get("/{id}", programs.HandleGet)
		r.With(authenticate, requireActive).Post("/", programs.HandleCreate)
		r.With(authenticate, requireActive).Delete("/{id}", programs.HandleDelete)
	})

	blogs := NewBlogHandler(d.Blogs, maxBody)
	r.Route("/blogs", func(r chi.Router) {
		r.Get("/", blogs.HandleList)
		r.Get("/{id}", blogs.HandleGet)
		r.With(authenticate, requireActive).Post("/", blogs.HandleCreate)
		r.With(authenticate, requireActive).Delete("/{id}", blogs.HandleDelete)
	})

	gallery := NewGalleryHandler(d.Gallery, maxBody)
	r.Route("/gallery", func(r chi.Router) {
		r.Get("/", gallery.HandleList)
		r.Get("/{id}", gallery.HandleGet)
		r.With(authenticate, requireActive).Post("/", gallery.HandleCreate)
		r.With(authenticate, requireActive).Delete("/{id}", gallery.HandleDelete)
	})

	partners := NewPartnerHandler(d.Partners, maxBody)
	r.Route("/partners", func(r chi.Router) {
		r.Get("/", partners.HandleList)
		r.Get("/{id}", partners.HandleGet)
		r.With(authenticate, requireActive).Post("/", partners.HandleCreate)
		r.With(authenticate, requireActive).Delete("/{id}", partners.HandleDelete)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	wildcard := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}
	}
	if wildcard {
		origins = []string{"*"}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: !wildcard,
		MaxAge:           300,
	})
}

func handleHealth(ready func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ready(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("unavailable"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

// mountStatic serves uploaded files without directory listings.
func mountStatic(r chi.Router, prefix, dir string) {
	prefix = "/" + strings.Trim(prefix, "/")
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	r.Get(prefix+"/*", func(w http.ResponseWriter, req *http.Request) {
		if strings.HasSuffix(req.URL.Path, "/") {
			writeError(w, req, http.StatusNotFound, "Not found")
			return
		}
		fs.ServeHTTP(w, req)
	})
}
