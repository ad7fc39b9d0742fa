// Package httpapi exposes the forum as a JSON API under /api/v1.
package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/VitaminP8/forum/internal/auth"
	"github.com/VitaminP8/forum/internal/comment"
	"github.com/VitaminP8/forum/internal/logging"
	"github.com/VitaminP8/forum/internal/post"
	"github.com/VitaminP8/forum/internal/user"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const defaultKeepAlive = 25 * time.Second

type Handler struct {
	users    *user.Service
	tokens   auth.Resolver
	posts    *post.Service
	comments *comment.Service
	log      logging.Logger

	corsOrigins []string
	// keepAlive is the interval of comment lines on idle event streams.
	keepAlive time.Duration

	closing   chan struct{}
	closeOnce sync.Once
}

type Options struct {
	CORSOrigins []string
	KeepAlive   time.Duration
}

func NewHandler(users *user.Service, tokens auth.Resolver, posts *post.Service, comments *comment.Service, log logging.Logger, opts Options) *Handler {
	if opts.KeepAlive <= 0 {
		opts.KeepAlive = defaultKeepAlive
	}
	return &Handler{
		users:       users,
		tokens:      tokens,
		posts:       posts,
		comments:    comments,
		log:         log.With("component", "http"),
		corsOrigins: opts.CORSOrigins,
		keepAlive:   opts.KeepAlive,
		closing:     make(chan struct{}),
	}
}

// Shutdown ends open event streams so that a graceful server shutdown does not
// wait for their clients. Regular requests are unaffected.
func (h *Handler) Shutdown() {
	h.closeOnce.Do(func() { close(h.closing) })
}

// Routes builds the router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, message{"Not Found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, message{"Method Not Allowed"})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(h.tokens, h.writeError))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.register)
			r.Post("/login", h.login)
			r.With(h.requireUser).Post("/logout", h.logout)
			r.With(h.requireUser).Get("/me", h.me)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", h.listPosts)
			r.With(h.requireUser).Post("/", h.createPost)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.showPost)
				r.With(h.requireUser).Put("/", h.updatePost)
				r.With(h.requireUser).Delete("/", h.deletePost)

				r.Get("/comments", h.listComments)
				r.With(h.requireUser).Post("/comments", h.createComment)
				r.Get("/comments/stream", h.streamComments)
			})
		})

		r.Route("/comments/{id}", func(r chi.Router) {
			r.Use(h.requireUser)
			r.Put("/", h.updateComment)
			r.Delete("/", h.deleteComment)
		})
	})

	return r
}
