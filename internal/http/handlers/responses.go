package handlers

import (
	"time"

	"github.com/pribylovaa/go-blog-platform/internal/models"
)

// userResponse — публичное представление пользователя.
// PasswordHash и RefreshTokenHash наружу не отдаются никогда.
type userResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type tokensResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type authResponse struct {
	User   userResponse   `json:"user"`
	Tokens tokensResponse `json:"tokens"`
}

// tokensEnvelope — ответ ротации: та же вложенность tokens, что у
// signup/login, но без пользователя.
type tokensEnvelope struct {
	Tokens tokensResponse `json:"tokens"`
}

type blogResponse struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	Summary       string     `json:"summary"`
	FeaturedImage string     `json:"featuredImage,omitempty"`
	Author        string     `json:"author"`
	Tags          []string   `json:"tags"`
	Category      string     `json:"category"`
	Status        string     `json:"status"`
	Views         int64      `json:"views"`
	LikesCount    int64      `json:"likesCount"`
	PublishedAt   *time.Time `json:"publishedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type paginationResponse struct {
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

type blogPageResponse struct {
	Blogs      []blogResponse     `json:"blogs"`
	Pagination paginationResponse `json:"pagination"`
}

type likeResponse struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likesCount"`
}

type commentResponse struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	Blog       string    `json:"blog"`
	Author     string    `json:"author"`
	ParentID   string    `json:"parentComment,omitempty"`
	LikesCount int64     `json:"likesCount"`
	IsEdited   bool      `json:"isEdited"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type commentThreadResponse struct {
	commentResponse
	Replies []commentResponse `json:"replies"`
}

func toUserResponse(u *models.User) userResponse {
	out := userResponse{
		ID:        u.ID.Hex(),
		Name:      u.Name,
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if !u.LastLoginAt.IsZero() {
		t := u.LastLoginAt
		out.LastLoginAt = &t
	}

	return out
}

func toAuthResponse(u *models.User, tp *models.TokenPair) authResponse {
	return authResponse{
		User: toUserResponse(u),
		Tokens: tokensResponse{
			AccessToken:  tp.AccessToken,
			RefreshToken: tp.RefreshToken,
		},
	}
}

func toBlogResponse(b *models.Blog) blogResponse {
	out := blogResponse{
		ID:            b.ID.Hex(),
		Title:         b.Title,
		Content:       b.Content,
		Summary:       b.Summary,
		FeaturedImage: b.FeaturedImage,
		Author:        b.AuthorID.Hex(),
		Tags:          b.Tags,
		Category:      b.Category,
		Status:        b.Status,
		Views:         b.Views,
		LikesCount:    b.LikesCount,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if !b.PublishedAt.IsZero() {
		t := b.PublishedAt
		out.PublishedAt = &t
	}

	return out
}

func toBlogListResponse(blogs []models.Blog) []blogResponse {
	out := make([]blogResponse, 0, len(blogs))
	for i := range blogs {
		out = append(out, toBlogResponse(&blogs[i]))
	}

	return out
}

func toBlogPageResponse(page *models.BlogPage) blogPageResponse {
	return blogPageResponse{
		Blogs: toBlogListResponse(page.Blogs),
		Pagination: paginationResponse{
			Page:  page.Page,
			Limit: page.Limit,
			Total: page.Total,
			Pages: page.Pages,
		},
	}
}

func toCommentResponse(c *models.Comment) commentResponse {
	out := commentResponse{
		ID:         c.ID.Hex(),
		Content:    c.Content,
		Blog:       c.BlogID.Hex(),
		Author:     c.AuthorID.Hex(),
		LikesCount: c.LikesCount,
		IsEdited:   c.IsEdited,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	if !c.ParentID.IsZero() {
		out.ParentID = c.ParentID.Hex()
	}

	return out
}

func toCommentThreadsResponse(threads []models.CommentThread) []commentThreadResponse {
	out := make([]commentThreadResponse, 0, len(threads))
	for i := range threads {
		th := commentThreadResponse{
			commentResponse: toCommentResponse(&threads[i].Comment),
			Replies:         make([]commentResponse, 0, len(threads[i].Replies)),
		}
		for j := range threads[i].Replies {
			th.Replies = append(th.Replies, toCommentResponse(&threads[i].Replies[j]))
		}
		out = append(out, th)
	}

	return out
}
