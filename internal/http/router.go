// Package http собирает публичный REST-роутер блог-платформы.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-blog-platform/internal/http/handlers"
	"github.com/pribylovaa/go-blog-platform/internal/http/middleware"
	"github.com/pribylovaa/go-blog-platform/internal/service"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	Env      string // влияет на детализацию ответов при панике.
	BasePath string // например, "/api"; если пустой — роуты регистрируются на корне.
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc *service.Service, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(opts.Env),    // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
		middleware.Metrics(),            // счётчики/гистограммы Prometheus
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	h := handlers.New(svc)

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h, svc)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h, svc)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
// Приватные роуты собраны в группы с middleware.Authenticate.
func registerRoutes(r chi.Router, h *handlers.Handlers, svc *service.Service) {
	auth := middleware.Authenticate(svc)

	// auth
	r.Post("/auth/signup", h.Signup)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/refresh-token", h.RefreshToken)
	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Post("/auth/logout", h.Logout)
		r.Get("/auth/profile", h.Profile)
		r.Patch("/auth/profile", h.UpdateProfile)
	})

	// blogs
	r.Get("/blogs", h.ListBlogs)
	r.Get("/blogs/{blogId}", h.BlogByID)
	r.Get("/blogs/{blogId}/comments", h.ListComments)
	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Post("/blogs", h.CreateBlog)
		r.Get("/blogs/user/my-blogs", h.MyBlogs)
		r.Patch("/blogs/{blogId}", h.UpdateBlog)
		r.Delete("/blogs/{blogId}", h.DeleteBlog)
		r.Post("/blogs/{blogId}/like", h.ToggleBlogLike)

		// comments
		r.Post("/blogs/{blogId}/comments", h.CreateComment)
		r.Patch("/blogs/{blogId}/comments/{commentId}", h.UpdateComment)
		r.Delete("/blogs/{blogId}/comments/{commentId}", h.DeleteComment)
		r.Post("/blogs/{blogId}/comments/{commentId}/like", h.ToggleCommentLike)
	})
}
