package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pribylovaa/go-blog-platform/internal/config"
	"github.com/pribylovaa/go-blog-platform/internal/models"
	"github.com/pribylovaa/go-blog-platform/internal/service"
	"github.com/pribylovaa/go-blog-platform/internal/storage"
	"github.com/pribylovaa/go-blog-platform/mocks"
)

func testAuthCfg() config.AuthConfig {
	return config.AuthConfig{
		AccessSecret:    "router-access-secret",
		RefreshSecret:   "router-refresh-secret",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		Issuer:          "blog-service",
		Audience:        []string{"blog-web"},
	}
}

func newTestRouter(t *testing.T) (http.Handler, *mocks.MockStorage) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	st := mocks.NewMockStorage(ctrl)
	svc := service.New(st, testAuthCfg())

	return NewRouter(svc, Options{Env: "prod"}), st
}

func doJSON(t *testing.T, h http.Handler, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env
}

// signup прогоняет регистрацию через API и возвращает пользователя
// (каким его видит хранилище) и access-токен из ответа.
func signup(t *testing.T, h http.Handler, st *mocks.MockStorage) (*models.User, string) {
	t.Helper()

	var saved *models.User

	st.EXPECT().UserByEmail(gomock.Any(), "ada@example.com").Return(nil, storage.ErrNotFound)
	st.EXPECT().SaveUser(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, u *models.User) error {
			u.ID = primitive.NewObjectID()
			saved = u
			return nil
		})
	st.EXPECT().SetRefreshTokenHash(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	rr := doJSON(t, h, http.MethodPost, "/auth/signup", "", map[string]string{
		"name":            "Ada",
		"email":           "ada@example.com",
		"password":        "secret1",
		"confirmPassword": "secret1",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	env := decodeEnvelope(t, rr)
	require.True(t, env.Success)

	var data struct {
		User struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
		Tokens struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
		} `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Tokens.AccessToken)
	require.NotEmpty(t, data.Tokens.RefreshToken)
	require.Equal(t, saved.ID.Hex(), data.User.ID)

	return saved, data.Tokens.AccessToken
}

func TestSignup_Endpoint(t *testing.T) {
	h, st := newTestRouter(t)

	user, _ := signup(t, h, st)
	require.Equal(t, "ada@example.com", user.Email)
	require.True(t, user.IsActive)
}

// Пароль и хэш refresh-токена никогда не попадают в JSON ответа.
func TestSignup_NoSecretsInResponse(t *testing.T) {
	h, st := newTestRouter(t)

	st.EXPECT().UserByEmail(gomock.Any(), "ada@example.com").Return(nil, storage.ErrNotFound)
	st.EXPECT().SaveUser(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, u *models.User) error {
			u.ID = primitive.NewObjectID()
			return nil
		})
	st.EXPECT().SetRefreshTokenHash(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	rr := doJSON(t, h, http.MethodPost, "/auth/signup", "", map[string]string{
		"name":            "Ada",
		"email":           "ada@example.com",
		"password":        "secret1",
		"confirmPassword": "secret1",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	require.NotContains(t, rr.Body.String(), "password")
	require.NotContains(t, rr.Body.String(), "secret1")
}

func TestSignup_UnknownFieldRejected(t *testing.T) {
	h, _ := newTestRouter(t)

	rr := doJSON(t, h, http.MethodPost, "/auth/signup", "", map[string]string{
		"name":     "Ada",
		"email":    "ada@example.com",
		"password": "secret1",
		"isAdmin":  "true",
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.False(t, decodeEnvelope(t, rr).Success)
}

func TestLogin_WrongPassword401(t *testing.T) {
	h, st := newTestRouter(t)

	user := &models.User{
		ID:       primitive.NewObjectID(),
		Email:    "ada@example.com",
		IsActive: true,
		// Хэш от другого пароля.
		PasswordHash: "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5B0cn1N/6aJZxScLFIsMQN1mHfUMu",
	}
	st.EXPECT().UserByEmail(gomock.Any(), "ada@example.com").Return(user, nil)

	rr := doJSON(t, h, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "wrong-pass",
	})
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestProtectedRoute_NoToken401(t *testing.T) {
	h, _ := newTestRouter(t)

	rr := doJSON(t, h, http.MethodPost, "/blogs", "", map[string]any{"title": "x"})
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestProfile_Get(t *testing.T) {
	h, st := newTestRouter(t)

	user, token := signup(t, h, st)

	st.EXPECT().UserByID(gomock.Any(), user.ID).Return(user, nil).Times(2)

	rr := doJSON(t, h, http.MethodGet, "/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	env := decodeEnvelope(t, rr)
	var got struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.Equal(t, user.ID.Hex(), got.ID)
	require.Equal(t, "Ada", got.Name)
}

func TestCreateBlog_Endpoint(t *testing.T) {
	h, st := newTestRouter(t)

	user, token := signup(t, h, st)

	st.EXPECT().UserByID(gomock.Any(), user.ID).Return(user, nil)
	st.EXPECT().SaveBlog(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, b *models.Blog) error {
			b.ID = primitive.NewObjectID()
			return nil
		})

	rr := doJSON(t, h, http.MethodPost, "/blogs", token, map[string]any{
		"title":   "Go concurrency patterns",
		"content": "A long enough body about goroutines.",
		"summary": "Goroutines and channels.",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	env := decodeEnvelope(t, rr)
	var got struct {
		Author   string `json:"author"`
		Category string `json:"category"`
		Status   string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.Equal(t, user.ID.Hex(), got.Author)
	require.Equal(t, "Other", got.Category)
	require.Equal(t, "published", got.Status)
}

func TestUpdateBlog_NonAuthor403(t *testing.T) {
	h, st := newTestRouter(t)

	user, token := signup(t, h, st)
	blogID := primitive.NewObjectID()

	st.EXPECT().UserByID(gomock.Any(), user.ID).Return(user, nil)
	st.EXPECT().BlogByID(gomock.Any(), blogID).
		Return(&models.Blog{ID: blogID, AuthorID: primitive.NewObjectID()}, nil)

	rr := doJSON(t, h, http.MethodPatch, "/blogs/"+blogID.Hex(), token, map[string]any{
		"title": "Hijacked title",
	})
	require.Equal(t, http.StatusForbidden, rr.Code)
}

func TestGetBlog_NotFound404(t *testing.T) {
	h, st := newTestRouter(t)

	blogID := primitive.NewObjectID()
	st.EXPECT().BlogByIDWithView(gomock.Any(), blogID).Return(nil, storage.ErrNotFound)

	rr := doJSON(t, h, http.MethodGet, "/blogs/"+blogID.Hex(), "", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListBlogs_Endpoint(t *testing.T) {
	h, st := newTestRouter(t)

	st.EXPECT().ListBlogs(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p models.ListBlogsParams) (*models.BlogPage, error) {
			require.EqualValues(t, 2, p.Page)
			require.EqualValues(t, 5, p.Limit)
			require.Equal(t, "Technology", p.Category)
			return &models.BlogPage{
				Blogs: []models.Blog{{ID: primitive.NewObjectID(), Category: "Technology"}},
				Page:  2, Limit: 5, Total: 6, Pages: 2,
			}, nil
		})

	rr := doJSON(t, h, http.MethodGet, "/blogs?page=2&limit=5&category=Technology", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	env := decodeEnvelope(t, rr)
	var got struct {
		Blogs      []json.RawMessage `json:"blogs"`
		Pagination struct {
			Page  int64 `json:"page"`
			Pages int64 `json:"pages"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.Len(t, got.Blogs, 1)
	require.EqualValues(t, 2, got.Pagination.Page)
	require.EqualValues(t, 2, got.Pagination.Pages)
}

func TestToggleBlogLike_Endpoint(t *testing.T) {
	h, st := newTestRouter(t)

	user, token := signup(t, h, st)
	blogID := primitive.NewObjectID()

	st.EXPECT().UserByID(gomock.Any(), user.ID).Return(user, nil)
	st.EXPECT().ToggleBlogLike(gomock.Any(), blogID, user.ID).
		Return(&models.LikeResult{Liked: true, LikesCount: 1}, nil)

	rr := doJSON(t, h, http.MethodPost, "/blogs/"+blogID.Hex()+"/like", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	env := decodeEnvelope(t, rr)
	var got struct {
		Liked      bool  `json:"liked"`
		LikesCount int64 `json:"likesCount"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.True(t, got.Liked)
	require.EqualValues(t, 1, got.LikesCount)
}

func TestCreateComment_Endpoint(t *testing.T) {
	h, st := newTestRouter(t)

	user, token := signup(t, h, st)
	blogID := primitive.NewObjectID()

	st.EXPECT().UserByID(gomock.Any(), user.ID).Return(user, nil)
	st.EXPECT().BlogByID(gomock.Any(), blogID).Return(&models.Blog{ID: blogID}, nil)
	st.EXPECT().SaveComment(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, c *models.Comment) error {
			c.ID = primitive.NewObjectID()
			return nil
		})

	rr := doJSON(t, h, http.MethodPost, "/blogs/"+blogID.Hex()+"/comments", token, map[string]string{
		"content": "great read",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	env := decodeEnvelope(t, rr)
	var got struct {
		Content string `json:"content"`
		Blog    string `json:"blog"`
		Author  string `json:"author"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.Equal(t, "great read", got.Content)
	require.Equal(t, blogID.Hex(), got.Blog)
	require.Equal(t, user.ID.Hex(), got.Author)
}

func TestListComments_Endpoint(t *testing.T) {
	h, st := newTestRouter(t)

	blogID := primitive.NewObjectID()
	root := models.Comment{ID: primitive.NewObjectID(), BlogID: blogID, Content: "root"}
	reply := models.Comment{ID: primitive.NewObjectID(), BlogID: blogID, ParentID: root.ID, Content: "reply"}

	st.EXPECT().ListTopLevelComments(gomock.Any(), blogID).
		Return([]models.CommentThread{{Comment: root, Replies: []models.Comment{reply}}}, nil)

	rr := doJSON(t, h, http.MethodGet, "/blogs/"+blogID.Hex()+"/comments", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	env := decodeEnvelope(t, rr)
	var got []struct {
		Content string `json:"content"`
		Replies []struct {
			Content       string `json:"content"`
			ParentComment string `json:"parentComment"`
		} `json:"replies"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.Len(t, got, 1)
	require.Equal(t, "root", got[0].Content)
	require.Len(t, got[0].Replies, 1)
	require.Equal(t, root.ID.Hex(), got[0].Replies[0].ParentComment)
}

func TestRefreshToken_Endpoint(t *testing.T) {
	h, st := newTestRouter(t)

	var user *models.User

	st.EXPECT().UserByEmail(gomock.Any(), "ada@example.com").Return(nil, storage.ErrNotFound)
	st.EXPECT().SaveUser(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, u *models.User) error {
			u.ID = primitive.NewObjectID()
			user = u
			return nil
		})
	// Хэш из signup и из последующей ротации оседает на пользователе.
	st.EXPECT().SetRefreshTokenHash(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ primitive.ObjectID, hash string) error {
			user.RefreshTokenHash = hash
			return nil
		}).Times(2)

	rr := doJSON(t, h, http.MethodPost, "/auth/signup", "", map[string]string{
		"name":            "Ada",
		"email":           "ada@example.com",
		"password":        "secret1",
		"confirmPassword": "secret1",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	env := decodeEnvelope(t, rr)
	var data struct {
		Tokens struct {
			RefreshToken string `json:"refreshToken"`
		} `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))

	st.EXPECT().UserByID(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ primitive.ObjectID) (*models.User, error) {
			return user, nil
		})

	rr = doJSON(t, h, http.MethodPost, "/auth/refresh-token", "", map[string]string{
		"refreshToken": data.Tokens.RefreshToken,
	})
	require.Equal(t, http.StatusOK, rr.Code)

	// Та же вложенность data.tokens, что у signup/login.
	env = decodeEnvelope(t, rr)
	var rotated struct {
		Tokens struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
		} `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &rotated))
	require.NotEmpty(t, rotated.Tokens.AccessToken)
	require.NotEqual(t, data.Tokens.RefreshToken, rotated.Tokens.RefreshToken)
}

func TestLogout_Endpoint(t *testing.T) {
	h, st := newTestRouter(t)

	user, token := signup(t, h, st)

	st.EXPECT().UserByID(gomock.Any(), user.ID).Return(user, nil)
	st.EXPECT().SetRefreshTokenHash(gomock.Any(), user.ID, "").Return(nil)

	rr := doJSON(t, h, http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, decodeEnvelope(t, rr).Success)
}
