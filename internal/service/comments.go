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

// CreateCommentInput — создание комментария.
// ParentID непустой — это ответ; дерево сплющивается до глубины 2:
// ответ на ответ прикрепляется к корню ветки.
type CreateCommentInput struct {
	Content  string
	ParentID string
}

// ListComments возвращает корневые комментарии блога с их ответами.
func (s *Service) ListComments(ctx context.Context, blogID string) ([]models.CommentThread, error) {
	const op = "service.comments.ListComments"

	oid, err := parseID(blogID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	threads, err := s.storage.ListTopLevelComments(ctx, oid)
	if err != nil {
		log.From(ctx).Error("list_comments_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return threads, nil
}

// CreateComment создаёт комментарий к блогу от имени принципала.
//
// Если указан ParentID и родитель найден, id нового комментария
// дописывается к списку replies корня ветки. Если родитель не найден,
// комментарий всё равно создаётся, но остаётся вне веток — он доступен
// по прямому id, но не появляется ни в одном списке replies. Это
// осознанно сохранённое поведение, помеченное как вопрос к продукту.
func (s *Service) CreateComment(ctx context.Context, authorID primitive.ObjectID, blogID string, in CreateCommentInput) (*models.Comment, error) {
	const op = "service.comments.CreateComment"

	lg := log.From(ctx)

	content := strings.TrimSpace(in.Content)
	if n := utf8.RuneCountInString(content); n < 1 || n > commentMaxLen {
		return nil, fmt.Errorf("%s: content length: %w", op, ErrInvalidArgument)
	}

	blogOID, err := parseID(blogID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	if _, err := s.storage.BlogByID(ctx, blogOID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	comment := &models.Comment{
		Content:  content,
		BlogID:   blogOID,
		AuthorID: authorID,
	}

	// Корень ветки, к которому надо прикрепить ответ (NilObjectID — корень).
	var attachTo primitive.ObjectID

	if strings.TrimSpace(in.ParentID) != "" {
		parentOID, perr := parseID(in.ParentID)
		if perr != nil {
			return nil, fmt.Errorf("%s: parent id: %w", op, ErrInvalidArgument)
		}

		comment.ParentID = parentOID

		parent, perr := s.storage.CommentByID(ctx, parentOID)
		switch {
		case perr == nil:
			// Ответ на ответ прикрепляется к корню ветки родителя.
			if !parent.ParentID.IsZero() {
				comment.ParentID = parent.ParentID
			}
			attachTo = comment.ParentID
		case errors.Is(perr, storage.ErrNotFound):
			// Родителя нет: комментарий создаётся осиротевшим.
			lg.Warn("comment_parent_missing",
				slog.String("op", op),
				slog.String("parent_id", in.ParentID),
			)
		default:
			return nil, fmt.Errorf("%s: %w", op, perr)
		}
	}

	if err := s.storage.SaveComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !attachTo.IsZero() {
		if aerr := s.storage.AppendReply(ctx, attachTo, comment.ID); aerr != nil {
			// Родитель исчез между проверкой и записью: ответ остаётся
			// осиротевшим, как и при изначально отсутствующем родителе.
			lg.Warn("append_reply_failed",
				slog.String("op", op),
				slog.String("parent_id", attachTo.Hex()),
				slog.String("err", aerr.Error()),
			)
		}
	}

	return comment, nil
}

// UpdateComment меняет текст собственного комментария.
// isEdited выставляется при первой правке и не сбрасывается.
func (s *Service) UpdateComment(ctx context.Context, principalID primitive.ObjectID, blogID, commentID, content string) (*models.Comment, error) {
	const op = "service.comments.UpdateComment"

	trimmed := strings.TrimSpace(content)
	if n := utf8.RuneCountInString(trimmed); n < 1 || n > commentMaxLen {
		return nil, fmt.Errorf("%s: content length: %w", op, ErrInvalidArgument)
	}

	comment, err := s.loadCommentForBlog(ctx, op, blogID, commentID)
	if err != nil {
		return nil, err
	}

	if comment.AuthorID.Hex() != principalID.Hex() {
		return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	updated, err := s.storage.UpdateCommentContent(ctx, comment.ID, trimmed)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}

// DeleteComment удаляет собственный комментарий вместе со всеми его
// ответами (каскад в одной транзакции на стороне хранилища).
func (s *Service) DeleteComment(ctx context.Context, principalID primitive.ObjectID, blogID, commentID string) error {
	const op = "service.comments.DeleteComment"

	comment, err := s.loadCommentForBlog(ctx, op, blogID, commentID)
	if err != nil {
		return err
	}

	if comment.AuthorID.Hex() != principalID.Hex() {
		return fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	if err := s.storage.DeleteCommentCascade(ctx, comment.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ToggleCommentLike переключает лайк принципала на комментарии блога.
func (s *Service) ToggleCommentLike(ctx context.Context, principalID primitive.ObjectID, blogID, commentID string) (*models.LikeResult, error) {
	const op = "service.comments.ToggleCommentLike"

	blogOID, err := parseID(blogID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	commentOID, err := parseID(commentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	res, err := s.storage.ToggleCommentLike(ctx, commentOID, blogOID, principalID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return res, nil
}

// loadCommentForBlog загружает комментарий, принадлежащий блогу.
// Некорректные id и чужой блог неотличимы от отсутствия комментария.
func (s *Service) loadCommentForBlog(ctx context.Context, op, blogID, commentID string) (*models.Comment, error) {
	blogOID, err := parseID(blogID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	commentOID, err := parseID(commentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	comment, err := s.storage.CommentByIDForBlog(ctx, commentOID, blogOID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return comment, nil
}
