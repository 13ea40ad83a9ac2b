package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pribylovaa/go-blog-platform/internal/models"
	"github.com/pribylovaa/go-blog-platform/internal/storage"
	"github.com/pribylovaa/go-blog-platform/pkg/log"
)

// Пределы полей блога (совпадают с ограничениями схемы хранилища).
const (
	titleMinLen   = 3
	titleMaxLen   = 200
	contentMinLen = 10
	summaryMaxLen = 500
	commentMaxLen = 1000
)

// CreateBlogInput — данные создания блога.
type CreateBlogInput struct {
	Title         string
	Content       string
	Summary       string
	FeaturedImage string
	Tags          []string
	Category      string
	Status        string
}

// UpdateBlogInput — частичное обновление блога: nil-поле не трогается.
type UpdateBlogInput struct {
	Title         *string
	Content       *string
	Summary       *string
	FeaturedImage *string
	Tags          []string
	Category      *string
	Status        *string
}

// CreateBlog создаёт блог от имени принципала.
// Статус по умолчанию — published; publishedAt проставляется хранилищем,
// если блог создаётся сразу опубликованным.
func (s *Service) CreateBlog(ctx context.Context, authorID primitive.ObjectID, in CreateBlogInput) (*models.Blog, error) {
	const op = "service.blogs.CreateBlog"

	title := strings.TrimSpace(in.Title)
	if n := utf8.RuneCountInString(title); n < titleMinLen || n > titleMaxLen {
		return nil, fmt.Errorf("%s: title length: %w", op, ErrInvalidArgument)
	}

	if utf8.RuneCountInString(in.Content) < contentMinLen {
		return nil, fmt.Errorf("%s: content length: %w", op, ErrInvalidArgument)
	}

	summary := strings.TrimSpace(in.Summary)
	if summary == "" || utf8.RuneCountInString(summary) > summaryMaxLen {
		return nil, fmt.Errorf("%s: summary length: %w", op, ErrInvalidArgument)
	}

	category := in.Category
	if category == "" {
		category = "Other"
	}
	if !models.ValidCategory(category) {
		return nil, fmt.Errorf("%s: category: %w", op, ErrInvalidArgument)
	}

	status := in.Status
	if status == "" {
		status = models.StatusPublished
	}
	if status != models.StatusDraft && status != models.StatusPublished {
		return nil, fmt.Errorf("%s: status: %w", op, ErrInvalidArgument)
	}

	blog := &models.Blog{
		Title:         title,
		Content:       in.Content,
		Summary:       summary,
		FeaturedImage: strings.TrimSpace(in.FeaturedImage),
		AuthorID:      authorID,
		Tags:          normalizeTags(in.Tags),
		Category:      category,
		Status:        status,
	}

	if err := s.storage.SaveBlog(ctx, blog); err != nil {
		log.From(ctx).Error("save_blog_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return blog, nil
}

// ListBlogs возвращает страницу опубликованных блогов.
func (s *Service) ListBlogs(ctx context.Context, p models.ListBlogsParams) (*models.BlogPage, error) {
	const op = "service.blogs.ListBlogs"

	if p.SortBy != "" {
		switch p.SortBy {
		case "createdAt", "updatedAt", "views", "likesCount":
		default:
			return nil, fmt.Errorf("%s: sortBy: %w", op, ErrInvalidArgument)
		}
	}

	if p.SortOrder != "" && p.SortOrder != "asc" && p.SortOrder != "desc" {
		return nil, fmt.Errorf("%s: sortOrder: %w", op, ErrInvalidArgument)
	}

	if p.AuthorID != "" {
		if _, err := primitive.ObjectIDFromHex(p.AuthorID); err != nil {
			return nil, fmt.Errorf("%s: author: %w", op, ErrInvalidArgument)
		}
	}

	if p.Category != "" && !models.ValidCategory(p.Category) {
		return nil, fmt.Errorf("%s: category: %w", op, ErrInvalidArgument)
	}

	page, err := s.storage.ListBlogs(ctx, p)
	if err != nil {
		log.From(ctx).Error("list_blogs_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return page, nil
}

// BlogByID возвращает блог по id, инкрементируя счётчик просмотров:
// просмотр — побочный эффект самого чтения.
func (s *Service) BlogByID(ctx context.Context, blogID string) (*models.Blog, error) {
	const op = "service.blogs.BlogByID"

	oid, err := parseID(blogID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	blog, err := s.storage.BlogByIDWithView(ctx, oid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return blog, nil
}

// MyBlogs возвращает все блоги принципала, включая черновики.
func (s *Service) MyBlogs(ctx context.Context, authorID primitive.ObjectID) ([]models.Blog, error) {
	const op = "service.blogs.MyBlogs"

	blogs, err := s.storage.BlogsByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return blogs, nil
}

// UpdateBlog применяет частичное обновление блога.
//
// Авторизация: сравнивается hex-представление сохранённого автора и
// принципала — проверка выполняется заново на каждый вызов, до любых
// изменений полей.
func (s *Service) UpdateBlog(ctx context.Context, principalID primitive.ObjectID, blogID string, in UpdateBlogInput) (*models.Blog, error) {
	const op = "service.blogs.UpdateBlog"

	oid, err := parseID(blogID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	blog, err := s.storage.BlogByID(ctx, oid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if blog.AuthorID.Hex() != principalID.Hex() {
		log.From(ctx).Warn("update_blog_forbidden",
			slog.String("op", op),
			slog.String("blog_id", blogID),
			slog.String("user_id", principalID.Hex()),
		)
		return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	upd, err := validateBlogUpdate(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := s.storage.UpdateBlog(ctx, oid, upd)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}

// DeleteBlog каскадно удаляет блог вместе со всеми его комментариями.
// Только автор; каскад выполняется хранилищем в одной транзакции.
func (s *Service) DeleteBlog(ctx context.Context, principalID primitive.ObjectID, blogID string) error {
	const op = "service.blogs.DeleteBlog"

	oid, err := parseID(blogID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	blog, err := s.storage.BlogByID(ctx, oid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if blog.AuthorID.Hex() != principalID.Hex() {
		return fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	if err := s.storage.DeleteBlogCascade(ctx, oid); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("blog_deleted",
		slog.String("op", op),
		slog.String("blog_id", blogID),
	)

	return nil
}

// ToggleBlogLike переключает лайк принципала на блоге.
// Liked == true, если лайк был только что поставлен.
func (s *Service) ToggleBlogLike(ctx context.Context, principalID primitive.ObjectID, blogID string) (*models.LikeResult, error) {
	const op = "service.blogs.ToggleBlogLike"

	oid, err := parseID(blogID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	res, err := s.storage.ToggleBlogLike(ctx, oid, principalID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return res, nil
}

// validateBlogUpdate проверяет заполненные поля и конвертирует вход
// в модель частичного обновления для хранилища.
func validateBlogUpdate(in UpdateBlogInput) (models.BlogUpdate, error) {
	var upd models.BlogUpdate

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if n := utf8.RuneCountInString(title); n < titleMinLen || n > titleMaxLen {
			return upd, fmt.Errorf("title length: %w", ErrInvalidArgument)
		}
		upd.Title = &title
	}

	if in.Content != nil {
		if utf8.RuneCountInString(*in.Content) < contentMinLen {
			return upd, fmt.Errorf("content length: %w", ErrInvalidArgument)
		}
		upd.Content = in.Content
	}

	if in.Summary != nil {
		summary := strings.TrimSpace(*in.Summary)
		if summary == "" || utf8.RuneCountInString(summary) > summaryMaxLen {
			return upd, fmt.Errorf("summary length: %w", ErrInvalidArgument)
		}
		upd.Summary = &summary
	}

	if in.FeaturedImage != nil {
		img := strings.TrimSpace(*in.FeaturedImage)
		upd.FeaturedImage = &img
	}

	if in.Tags != nil {
		upd.Tags = normalizeTags(in.Tags)
	}

	if in.Category != nil {
		if !models.ValidCategory(*in.Category) {
			return upd, fmt.Errorf("category: %w", ErrInvalidArgument)
		}
		upd.Category = in.Category
	}

	if in.Status != nil {
		if *in.Status != models.StatusDraft && *in.Status != models.StatusPublished {
			return upd, fmt.Errorf("status: %w", ErrInvalidArgument)
		}
		upd.Status = in.Status
	}

	return upd, nil
}

// normalizeTags обрезает пробелы и выкидывает пустые теги, сохраняя порядок.
func normalizeTags(tags []string) []string {
	if tags == nil {
		return nil
	}

	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}

	return out
}

// parseID разбирает 24-символьный hex-идентификатор.
// Некорректный формат трактуется как «нет такой сущности».
func parseID(id string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(strings.TrimSpace(id))
}
