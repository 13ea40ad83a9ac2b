package handlers

import (
	"net/http"

	"github.com/pribylovaa/go-blog-platform/internal/http/httperr"
	"github.com/pribylovaa/go-blog-platform/internal/http/middleware"
	"github.com/pribylovaa/go-blog-platform/internal/models"
	"github.com/pribylovaa/go-blog-platform/internal/service"
)

type signupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type updateProfileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// Signup — POST /auth/signup.
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var in signupRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, errBadBody())
		return
	}

	user, tokens, err := h.svc.Signup(r.Context(), service.SignupInput{
		Name:            in.Name,
		Email:           in.Email,
		Password:        in.Password,
		ConfirmPassword: in.ConfirmPassword,
	})
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, toAuthResponse(user, tokens))
}

// Login — POST /auth/login.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, errBadBody())
		return
	}

	user, tokens, err := h.svc.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, toAuthResponse(user, tokens))
}

// RefreshToken — POST /auth/refresh-token.
// Выдаёт новую пару токенов; предыдущий refresh-токен перестаёт действовать.
func (h *Handlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var in refreshRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, errBadBody())
		return
	}
	if in.RefreshToken == "" {
		httperr.WriteError(w, r, service.ErrInvalidToken)
		return
	}

	tokens, err := h.svc.Rotate(r.Context(), in.RefreshToken)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, tokensEnvelope{
		Tokens: tokensResponse{
			AccessToken:  tokens.AccessToken,
			RefreshToken: tokens.RefreshToken,
		},
	})
}

// Logout — POST /auth/logout (требует аутентификации).
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	if err := h.svc.Logout(r.Context(), principal.UserID); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "logged out")
}

// Profile — GET /auth/profile (требует аутентификации).
func (h *Handlers) Profile(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	user, err := h.svc.Profile(r.Context(), principal.UserID)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, toUserResponse(user))
}

// UpdateProfile — PATCH /auth/profile (требует аутентификации).
// Отсутствующее в теле поле остаётся без изменений.
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var in updateProfileRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, errBadBody())
		return
	}

	user, err := h.svc.UpdateProfile(r.Context(), principal.UserID, service.UpdateProfileInput{
		Name:  in.Name,
		Email: in.Email,
	})
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, toUserResponse(user))
}

// principal достаёт Principal из контекста. Отсутствие означает, что роут
// по ошибке не обёрнут в middleware.Authenticate — отвечаем как на 401.
func (h *Handlers) principal(w http.ResponseWriter, r *http.Request) (*models.Principal, bool) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		httperr.WriteError(w, r, service.ErrInvalidToken)
		return nil, false
	}

	return p, true
}
