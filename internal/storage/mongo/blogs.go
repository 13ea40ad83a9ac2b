package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pribylovaa/go-blog-platform/internal/models"
	"github.com/pribylovaa/go-blog-platform/internal/storage"
)

// sortFields — допустимые поля сортировки выдачи (API-имя -> поле документа).
var sortFields = map[string]string{
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
	"views":      "views",
	"likesCount": "likes_count",
}

// SaveBlog сохраняет новый блог.
// Если блог создаётся сразу опубликованным, publishedAt проставляется здесь.
func (m *Mongo) SaveBlog(ctx context.Context, blog *models.Blog) error {
	const op = "storage/mongo/SaveBlog"

	now := time.Now().UTC().Truncate(time.Millisecond)
	blog.CreatedAt = now
	blog.UpdatedAt = now

	if blog.Status == models.StatusPublished && blog.PublishedAt.IsZero() {
		blog.PublishedAt = now
	}

	res, err := m.blogs.InsertOne(ctx, blog)
	if err != nil {
		return fmt.Errorf("%s: insert: %w", op, err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("%s: inserted id type", op)
	}

	blog.ID = oid
	return nil
}

// BlogByID возвращает блог без побочных эффектов.
func (m *Mongo) BlogByID(ctx context.Context, id primitive.ObjectID) (*models.Blog, error) {
	const op = "storage/mongo/BlogByID"

	var out models.Blog
	if err := m.blogs.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&out); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

// BlogByIDWithView атомарно инкрементирует счётчик просмотров в рамках
// самого чтения ($inc вместо load-then-save) и возвращает документ уже
// с новым значением.
func (m *Mongo) BlogByIDWithView(ctx context.Context, id primitive.ObjectID) (*models.Blog, error) {
	const op = "storage/mongo/BlogByIDWithView"

	update := bson.D{{Key: "$inc", Value: bson.D{{Key: "views", Value: 1}}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var out models.Blog
	err := m.blogs.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, update, opts).Decode(&out)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

// UpdateBlog применяет частичное обновление (nil-поля не трогаются).
//
// publishedAt выставляется отдельным условным обновлением с фильтром
// «поле ещё не существует»: ровно один переход draft->published записывает
// дату, повторные публикации и любые последующие правки её не меняют —
// set-once держится и при конкурентных запросах.
func (m *Mongo) UpdateBlog(ctx context.Context, id primitive.ObjectID, upd models.BlogUpdate) (*models.Blog, error) {
	const op = "storage/mongo/UpdateBlog"

	set := bson.D{{Key: "updated_at", Value: time.Now().UTC().Truncate(time.Millisecond)}}

	if upd.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *upd.Title})
	}
	if upd.Content != nil {
		set = append(set, bson.E{Key: "content", Value: *upd.Content})
	}
	if upd.Summary != nil {
		set = append(set, bson.E{Key: "summary", Value: *upd.Summary})
	}
	if upd.FeaturedImage != nil {
		set = append(set, bson.E{Key: "featured_image", Value: *upd.FeaturedImage})
	}
	if upd.Tags != nil {
		set = append(set, bson.E{Key: "tags", Value: upd.Tags})
	}
	if upd.Category != nil {
		set = append(set, bson.E{Key: "category", Value: *upd.Category})
	}
	if upd.Status != nil {
		set = append(set, bson.E{Key: "status", Value: *upd.Status})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var out models.Blog
	err := m.blogs.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, bson.D{{Key: "$set", Value: set}}, opts).Decode(&out)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if upd.Status != nil && *upd.Status == models.StatusPublished && out.PublishedAt.IsZero() {
		publishedAt := time.Now().UTC().Truncate(time.Millisecond)

		res, err := m.blogs.UpdateOne(ctx,
			bson.D{
				{Key: "_id", Value: id},
				{Key: "published_at", Value: bson.D{{Key: "$exists", Value: false}}},
			},
			bson.D{{Key: "$set", Value: bson.D{{Key: "published_at", Value: publishedAt}}}},
		)
		if err != nil {
			return nil, fmt.Errorf("%s: set published_at: %w", op, err)
		}

		if res.ModifiedCount > 0 {
			out.PublishedAt = publishedAt
		}
	}

	return &out, nil
}

// ListBlogs возвращает страницу опубликованных блогов.
// Поиск — через текстовый индекс ($text), фильтры по category/tag/author,
// сортировка только по whitelisted-полям.
func (m *Mongo) ListBlogs(ctx context.Context, p models.ListBlogsParams) (*models.BlogPage, error) {
	const op = "storage/mongo/ListBlogs"

	filter := bson.D{{Key: "status", Value: models.StatusPublished}}

	if p.Category != "" {
		filter = append(filter, bson.E{Key: "category", Value: p.Category})
	}

	if p.Tag != "" {
		filter = append(filter, bson.E{Key: "tags", Value: p.Tag})
	}

	if p.AuthorID != "" {
		authorOID, err := primitive.ObjectIDFromHex(p.AuthorID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		filter = append(filter, bson.E{Key: "author", Value: authorOID})
	}

	if p.Search != "" {
		filter = append(filter, bson.E{Key: "$text", Value: bson.D{{Key: "$search", Value: p.Search}}})
	}

	sortField, ok := sortFields[p.SortBy]
	if !ok {
		sortField = "created_at"
	}

	order := -1
	if p.SortOrder == "asc" {
		order = 1
	}

	page := p.Page
	if page < 1 {
		page = 1
	}

	limit := p.Limit
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	total, err := m.blogs.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: count: %w", op, err)
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: order}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cur, err := m.blogs.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}
	defer cur.Close(ctx)

	var items []models.Blog
	for cur.Next(ctx) {
		var b models.Blog
		if err := cur.Decode(&b); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}
		items = append(items, b)
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: cursor: %w", op, err)
	}

	pages := total / limit
	if total%limit != 0 {
		pages++
	}

	return &models.BlogPage{
		Blogs: items,
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: pages,
	}, nil
}

// BlogsByAuthor возвращает все блоги автора (включая черновики), новые первыми.
func (m *Mongo) BlogsByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]models.Blog, error) {
	const op = "storage/mongo/BlogsByAuthor"

	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cur, err := m.blogs.Find(ctx, bson.D{{Key: "author", Value: authorID}}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}
	defer cur.Close(ctx)

	var items []models.Blog
	for cur.Next(ctx) {
		var b models.Blog
		if err := cur.Decode(&b); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}
		items = append(items, b)
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: cursor: %w", op, err)
	}

	return items, nil
}

// ToggleBlogLike атомарно переключает лайк пользователя.
func (m *Mongo) ToggleBlogLike(ctx context.Context, blogID, userID primitive.ObjectID) (*models.LikeResult, error) {
	const op = "storage/mongo/ToggleBlogLike"

	liked, count, err := toggleLikeOn(ctx, m.blogs, bson.D{{Key: "_id", Value: blogID}}, userID, op)
	if err != nil {
		return nil, err
	}

	return &models.LikeResult{Liked: liked, LikesCount: count}, nil
}

// DeleteBlogCascade удаляет блог и все его комментарии (корни и ответы)
// в одной транзакции: частичный сбой не оставляет осиротевших комментариев.
func (m *Mongo) DeleteBlogCascade(ctx context.Context, blogID primitive.ObjectID) error {
	const op = "storage/mongo/DeleteBlogCascade"

	err := m.withTxn(ctx, func(sc mongodriver.SessionContext) error {
		if _, err := m.comments.DeleteMany(sc, bson.D{{Key: "blog", Value: blogID}}); err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}

		res, err := m.blogs.DeleteOne(sc, bson.D{{Key: "_id", Value: blogID}})
		if err != nil {
			return fmt.Errorf("delete blog: %w", err)
		}

		if res.DeletedCount == 0 {
			return storage.ErrNotFound
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
