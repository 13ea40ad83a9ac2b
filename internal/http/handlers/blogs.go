package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-blog-platform/internal/http/httperr"
	"github.com/pribylovaa/go-blog-platform/internal/models"
	"github.com/pribylovaa/go-blog-platform/internal/service"
)

type createBlogRequest struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Summary       string   `json:"summary"`
	FeaturedImage string   `json:"featuredImage"`
	Tags          []string `json:"tags"`
	Category      string   `json:"category"`
	Status        string   `json:"status"`
}

type updateBlogRequest struct {
	Title         *string  `json:"title"`
	Content       *string  `json:"content"`
	Summary       *string  `json:"summary"`
	FeaturedImage *string  `json:"featuredImage"`
	Tags          []string `json:"tags"`
	Category      *string  `json:"category"`
	Status        *string  `json:"status"`
}

// ListBlogs — GET /blogs. Публичный список опубликованных блогов
// с фильтрами, поиском, сортировкой и пагинацией.
func (h *Handlers) ListBlogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := models.ListBlogsParams{
		Search:    q.Get("search"),
		Category:  q.Get("category"),
		Tag:       q.Get("tag"),
		AuthorID:  q.Get("author"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}
	params.Page = queryInt64(q.Get("page"), 1)
	params.Limit = queryInt64(q.Get("limit"), 10)

	page, err := h.svc.ListBlogs(r.Context(), params)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, toBlogPageResponse(page))
}

// BlogByID — GET /blogs/{blogId}. Чтение увеличивает счётчик просмотров.
func (h *Handlers) BlogByID(w http.ResponseWriter, r *http.Request) {
	blog, err := h.svc.BlogByID(r.Context(), chi.URLParam(r, "blogId"))
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, toBlogResponse(blog))
}

// CreateBlog — POST /blogs (требует аутентификации).
func (h *Handlers) CreateBlog(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var in createBlogRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, errBadBody())
		return
	}

	blog, err := h.svc.CreateBlog(r.Context(), principal.UserID, service.CreateBlogInput{
		Title:         in.Title,
		Content:       in.Content,
		Summary:       in.Summary,
		FeaturedImage: in.FeaturedImage,
		Tags:          in.Tags,
		Category:      in.Category,
		Status:        in.Status,
	})
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, toBlogResponse(blog))
}

// UpdateBlog — PATCH /blogs/{blogId} (только автор).
func (h *Handlers) UpdateBlog(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var in updateBlogRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, errBadBody())
		return
	}

	blog, err := h.svc.UpdateBlog(r.Context(), principal.UserID, chi.URLParam(r, "blogId"), service.UpdateBlogInput{
		Title:         in.Title,
		Content:       in.Content,
		Summary:       in.Summary,
		FeaturedImage: in.FeaturedImage,
		Tags:          in.Tags,
		Category:      in.Category,
		Status:        in.Status,
	})
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, toBlogResponse(blog))
}

// DeleteBlog — DELETE /blogs/{blogId} (только автор).
// Вместе с блогом удаляются все его комментарии.
func (h *Handlers) DeleteBlog(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteBlog(r.Context(), principal.UserID, chi.URLParam(r, "blogId")); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "blog deleted")
}

// ToggleBlogLike — POST /blogs/{blogId}/like (требует аутентификации).
func (h *Handlers) ToggleBlogLike(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	res, err := h.svc.ToggleBlogLike(r.Context(), principal.UserID, chi.URLParam(r, "blogId"))
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, likeResponse{Liked: res.Liked, LikesCount: res.LikesCount})
}

// MyBlogs — GET /blogs/user/my-blogs (требует аутентификации).
// Возвращает все блоги автора, включая черновики.
func (h *Handlers) MyBlogs(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	blogs, err := h.svc.MyBlogs(r.Context(), principal.UserID)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, toBlogListResponse(blogs))
}

// queryInt64 парсит числовой query-параметр; пустое или невалидное
// значение заменяется дефолтом (границы нормализует сервисный слой).
func queryInt64(raw string, def int64) int64 {
	if raw == "" {
		return def
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def
	}

	return v
}
