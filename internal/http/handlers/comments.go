package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-blog-platform/internal/http/httperr"
	"github.com/pribylovaa/go-blog-platform/internal/service"
)

type createCommentRequest struct {
	Content  string `json:"content"`
	ParentID string `json:"parentComment"`
}

type updateCommentRequest struct {
	Content string `json:"content"`
}

// ListComments — GET /blogs/{blogId}/comments. Публичный список корневых
// комментариев блога вместе с их ответами.
func (h *Handlers) ListComments(w http.ResponseWriter, r *http.Request) {
	threads, err := h.svc.ListComments(r.Context(), chi.URLParam(r, "blogId"))
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, toCommentThreadsResponse(threads))
}

// CreateComment — POST /blogs/{blogId}/comments (требует аутентификации).
// parentComment опционален; ответ на ответ прикрепляется к корню ветки.
func (h *Handlers) CreateComment(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var in createCommentRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, errBadBody())
		return
	}

	comment, err := h.svc.CreateComment(r.Context(), principal.UserID, chi.URLParam(r, "blogId"), service.CreateCommentInput{
		Content:  in.Content,
		ParentID: in.ParentID,
	})
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, toCommentResponse(comment))
}

// UpdateComment — PATCH /blogs/{blogId}/comments/{commentId} (только автор).
func (h *Handlers) UpdateComment(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var in updateCommentRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, errBadBody())
		return
	}

	comment, err := h.svc.UpdateComment(r.Context(), principal.UserID,
		chi.URLParam(r, "blogId"), chi.URLParam(r, "commentId"), in.Content)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, toCommentResponse(comment))
}

// DeleteComment — DELETE /blogs/{blogId}/comments/{commentId} (только автор).
// Вместе с корневым комментарием удаляются все его ответы.
func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	err := h.svc.DeleteComment(r.Context(), principal.UserID,
		chi.URLParam(r, "blogId"), chi.URLParam(r, "commentId"))
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "comment deleted")
}

// ToggleCommentLike — POST /blogs/{blogId}/comments/{commentId}/like.
func (h *Handlers) ToggleCommentLike(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	res, err := h.svc.ToggleCommentLike(r.Context(), principal.UserID,
		chi.URLParam(r, "blogId"), chi.URLParam(r, "commentId"))
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, likeResponse{Liked: res.Liked, LikesCount: res.LikesCount})
}
