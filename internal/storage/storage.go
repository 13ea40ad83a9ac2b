package storage

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pribylovaa/go-blog-platform/internal/models"
)

var (
	// ErrNotFound — сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — конфликт уникальности (занятый e-mail).
	ErrAlreadyExists = errors.New("already exists")
)

// Storage описывает операции блог-платформы над документным хранилищем.
// Реализация обязана быть потокобезопасной: сервисный слой вызывает её
// конкурентно из обработчиков запросов.
type Storage interface {
	// SaveUser сохраняет нового пользователя.
	// При конфликте уникальности e-mail — ErrAlreadyExists.
	SaveUser(ctx context.Context, user *models.User) error

	// UserByID возвращает пользователя по идентификатору или ErrNotFound.
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)

	// UserByEmail возвращает пользователя по нормализованному e-mail или ErrNotFound.
	UserByEmail(ctx context.Context, email string) (*models.User, error)

	// UpdateUserProfile обновляет имя и e-mail.
	// При занятом другим пользователем e-mail — ErrAlreadyExists.
	UpdateUserProfile(ctx context.Context, id primitive.ObjectID, name, email string) (*models.User, error)

	// SetRefreshTokenHash перезаписывает единственный хранимый хэш
	// refresh-токена пользователя. Пустая строка очищает поле (logout).
	SetRefreshTokenHash(ctx context.Context, id primitive.ObjectID, hash string) error

	// TouchLastLogin фиксирует время последнего входа.
	TouchLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error

	// SaveBlog сохраняет новый блог и проставляет сгенерированный ID.
	SaveBlog(ctx context.Context, blog *models.Blog) error

	// BlogByID возвращает блог по идентификатору или ErrNotFound.
	BlogByID(ctx context.Context, id primitive.ObjectID) (*models.Blog, error)

	// BlogByIDWithView атомарно инкрементирует счётчик просмотров
	// и возвращает блог уже с новым значением. ErrNotFound, если блога нет.
	BlogByIDWithView(ctx context.Context, id primitive.ObjectID) (*models.Blog, error)

	// UpdateBlog применяет частичное обновление. publishedAt выставляется
	// ровно один раз: при переходе в status=published и только если поле
	// ещё не было проставлено (set-once гарантируется фильтром обновления).
	UpdateBlog(ctx context.Context, id primitive.ObjectID, upd models.BlogUpdate) (*models.Blog, error)

	// ListBlogs возвращает страницу опубликованных блогов по фильтрам.
	ListBlogs(ctx context.Context, p models.ListBlogsParams) (*models.BlogPage, error)

	// BlogsByAuthor возвращает все блоги автора (включая черновики),
	// новые первыми.
	BlogsByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]models.Blog, error)

	// ToggleBlogLike атомарно переключает лайк пользователя и пересчитывает
	// likes_count в той же операции. ErrNotFound, если блога нет.
	ToggleBlogLike(ctx context.Context, blogID, userID primitive.ObjectID) (*models.LikeResult, error)

	// DeleteBlogCascade в одной транзакции удаляет блог и все его
	// комментарии (включая ответы). ErrNotFound, если блога нет.
	DeleteBlogCascade(ctx context.Context, blogID primitive.ObjectID) error

	// SaveComment сохраняет новый комментарий и проставляет сгенерированный ID.
	SaveComment(ctx context.Context, comment *models.Comment) error

	// CommentByID возвращает комментарий или ErrNotFound.
	CommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)

	// CommentByIDForBlog возвращает комментарий, принадлежащий конкретному
	// блогу, или ErrNotFound.
	CommentByIDForBlog(ctx context.Context, commentID, blogID primitive.ObjectID) (*models.Comment, error)

	// AppendReply дописывает id ответа в конец списка replies корневого
	// комментария. ErrNotFound, если корня нет.
	AppendReply(ctx context.Context, parentID, replyID primitive.ObjectID) error

	// UpdateCommentContent меняет текст комментария и выставляет is_edited.
	UpdateCommentContent(ctx context.Context, id primitive.ObjectID, content string) (*models.Comment, error)

	// ListTopLevelComments возвращает корневые комментарии блога (новые
	// первыми) вместе с их ответами в порядке вставки в replies.
	ListTopLevelComments(ctx context.Context, blogID primitive.ObjectID) ([]models.CommentThread, error)

	// ToggleCommentLike — как ToggleBlogLike, но для комментария блога.
	ToggleCommentLike(ctx context.Context, commentID, blogID, userID primitive.ObjectID) (*models.LikeResult, error)

	// DeleteCommentCascade в одной транзакции удаляет комментарий, все его
	// ответы и вычищает ссылку из родительского списка replies.
	DeleteCommentCascade(ctx context.Context, commentID primitive.ObjectID) error

	// Close закрывает соединения хранилища.
	Close()
}
