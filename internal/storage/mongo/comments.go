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

// SaveComment сохраняет новый комментарий (корневой или ответ).
func (m *Mongo) SaveComment(ctx context.Context, comment *models.Comment) error {
	const op = "storage/mongo/SaveComment"

	now := time.Now().UTC().Truncate(time.Millisecond)
	comment.CreatedAt = now
	comment.UpdatedAt = now

	res, err := m.comments.InsertOne(ctx, comment)
	if err != nil {
		return fmt.Errorf("%s: insert: %w", op, err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("%s: inserted id type", op)
	}

	comment.ID = oid
	return nil
}

// CommentByID возвращает комментарий по идентификатору.
func (m *Mongo) CommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	const op = "storage/mongo/CommentByID"

	var out models.Comment
	if err := m.comments.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&out); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

// CommentByIDForBlog возвращает комментарий, принадлежащий конкретному блогу.
// Комментарий чужого блога неотличим от отсутствующего.
func (m *Mongo) CommentByIDForBlog(ctx context.Context, commentID, blogID primitive.ObjectID) (*models.Comment, error) {
	const op = "storage/mongo/CommentByIDForBlog"

	filter := bson.D{
		{Key: "_id", Value: commentID},
		{Key: "blog", Value: blogID},
	}

	var out models.Comment
	if err := m.comments.FindOne(ctx, filter).Decode(&out); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

// AppendReply дописывает id ответа в конец списка replies корня.
// $push сохраняет порядок вставки — других гарантий порядка у ответов нет.
func (m *Mongo) AppendReply(ctx context.Context, parentID, replyID primitive.ObjectID) error {
	const op = "storage/mongo/AppendReply"

	update := bson.D{
		{Key: "$push", Value: bson.D{{Key: "replies", Value: replyID}}},
		{Key: "$set", Value: bson.D{{Key: "updated_at", Value: time.Now().UTC().Truncate(time.Millisecond)}}},
	}

	res, err := m.comments.UpdateByID(ctx, parentID, update)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// UpdateCommentContent меняет текст комментария.
// is_edited выставляется вместе с текстом и обратно не сбрасывается.
func (m *Mongo) UpdateCommentContent(ctx context.Context, id primitive.ObjectID, content string) (*models.Comment, error) {
	const op = "storage/mongo/UpdateCommentContent"

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "content", Value: content},
		{Key: "is_edited", Value: true},
		{Key: "updated_at", Value: time.Now().UTC().Truncate(time.Millisecond)},
	}}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var out models.Comment
	err := m.comments.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, update, opts).Decode(&out)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

// ListTopLevelComments возвращает корневые комментарии блога (новые первыми)
// вместе с ответами. Ответы подтягиваются одним запросом по всем replies
// страницы и раскладываются в порядке вставки в списки.
func (m *Mongo) ListTopLevelComments(ctx context.Context, blogID primitive.ObjectID) ([]models.CommentThread, error) {
	const op = "storage/mongo/ListTopLevelComments"

	filter := bson.D{
		{Key: "blog", Value: blogID},
		{Key: "parent_comment", Value: bson.D{{Key: "$exists", Value: false}}},
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cur, err := m.comments.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}
	defer cur.Close(ctx)

	var roots []models.Comment
	var replyIDs []primitive.ObjectID
	for cur.Next(ctx) {
		var c models.Comment
		if err := cur.Decode(&c); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}

		roots = append(roots, c)
		replyIDs = append(replyIDs, c.ReplyIDs...)
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: cursor: %w", op, err)
	}

	replies := make(map[primitive.ObjectID]models.Comment, len(replyIDs))
	if len(replyIDs) > 0 {
		rcur, err := m.comments.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: replyIDs}}}})
		if err != nil {
			return nil, fmt.Errorf("%s: find replies: %w", op, err)
		}
		defer rcur.Close(ctx)

		for rcur.Next(ctx) {
			var c models.Comment
			if err := rcur.Decode(&c); err != nil {
				return nil, fmt.Errorf("%s: decode reply: %w", op, err)
			}
			replies[c.ID] = c
		}

		if err := rcur.Err(); err != nil {
			return nil, fmt.Errorf("%s: replies cursor: %w", op, err)
		}
	}

	threads := make([]models.CommentThread, 0, len(roots))
	for _, root := range roots {
		thread := models.CommentThread{Comment: root}
		for _, rid := range root.ReplyIDs {
			// Висячие id (ответ уже удалён) просто пропускаются.
			if r, ok := replies[rid]; ok {
				thread.Replies = append(thread.Replies, r)
			}
		}
		threads = append(threads, thread)
	}

	return threads, nil
}

// ToggleCommentLike атомарно переключает лайк на комментарии блога.
func (m *Mongo) ToggleCommentLike(ctx context.Context, commentID, blogID, userID primitive.ObjectID) (*models.LikeResult, error) {
	const op = "storage/mongo/ToggleCommentLike"

	filter := bson.D{
		{Key: "_id", Value: commentID},
		{Key: "blog", Value: blogID},
	}

	liked, count, err := toggleLikeOn(ctx, m.comments, filter, userID, op)
	if err != nil {
		return nil, err
	}

	return &models.LikeResult{Liked: liked, LikesCount: count}, nil
}

// DeleteCommentCascade удаляет комментарий и все его ответы в одной
// транзакции; у ответа дополнительно вычищается ссылка из родительского
// списка replies.
func (m *Mongo) DeleteCommentCascade(ctx context.Context, commentID primitive.ObjectID) error {
	const op = "storage/mongo/DeleteCommentCascade"

	err := m.withTxn(ctx, func(sc mongodriver.SessionContext) error {
		var comment models.Comment
		if err := m.comments.FindOne(sc, bson.D{{Key: "_id", Value: commentID}}).Decode(&comment); err != nil {
			if errors.Is(err, mongodriver.ErrNoDocuments) {
				return storage.ErrNotFound
			}

			return fmt.Errorf("find: %w", err)
		}

		if len(comment.ReplyIDs) > 0 {
			filter := bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: comment.ReplyIDs}}}}
			if _, err := m.comments.DeleteMany(sc, filter); err != nil {
				return fmt.Errorf("delete replies: %w", err)
			}
		}

		if !comment.ParentID.IsZero() {
			_, err := m.comments.UpdateByID(sc, comment.ParentID,
				bson.D{{Key: "$pull", Value: bson.D{{Key: "replies", Value: commentID}}}})
			if err != nil {
				return fmt.Errorf("pull from parent: %w", err)
			}
		}

		if _, err := m.comments.DeleteOne(sc, bson.D{{Key: "_id", Value: commentID}}); err != nil {
			return fmt.Errorf("delete comment: %w", err)
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
