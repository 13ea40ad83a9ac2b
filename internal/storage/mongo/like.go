package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pribylovaa/go-blog-platform/internal/storage"
)

// likeTogglePipeline — update-пайплайн, который в одной атомарной операции:
//  1. убирает uid из likes, если он там есть, иначе добавляет;
//  2. пересчитывает likes_count как размер получившегося массива.
//
// Load-then-save здесь не используется: два конкурентных переключения не
// могут потерять обновления друг друга, и likes_count не расходится с
// массивом.
func likeTogglePipeline(uid primitive.ObjectID) bson.A {
	likesOrEmpty := bson.D{{Key: "$ifNull", Value: bson.A{"$likes", bson.A{}}}}

	return bson.A{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "likes", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$in", Value: bson.A{uid, likesOrEmpty}}},
				bson.D{{Key: "$setDifference", Value: bson.A{likesOrEmpty, bson.A{uid}}}},
				bson.D{{Key: "$concatArrays", Value: bson.A{likesOrEmpty, bson.A{uid}}}},
			}}}},
		}}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "likes_count", Value: bson.D{{Key: "$size", Value: "$likes"}}},
			{Key: "updated_at", Value: "$$NOW"},
		}}},
	}
}

// toggleLikeOn выполняет переключение на документе, подошедшем под filter,
// и по возвращённому состоянию определяет, был ли лайк поставлен или снят.
func toggleLikeOn(ctx context.Context, coll *mongodriver.Collection, filter bson.D, uid primitive.ObjectID, op string) (bool, int64, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var out struct {
		Likes      []primitive.ObjectID `bson:"likes"`
		LikesCount int64                `bson:"likes_count"`
	}

	err := coll.FindOneAndUpdate(ctx, filter, likeTogglePipeline(uid), opts).Decode(&out)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return false, 0, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return false, 0, fmt.Errorf("%s: %w", op, err)
	}

	liked := false
	for _, id := range out.Likes {
		if id == uid {
			liked = true
			break
		}
	}

	return liked, out.LikesCount, nil
}
