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

// SaveUser сохраняет нового пользователя.
// Конфликт уникального индекса по e-mail — storage.ErrAlreadyExists.
func (m *Mongo) SaveUser(ctx context.Context, user *models.User) error {
	const op = "storage/mongo/SaveUser"

	now := time.Now().UTC().Truncate(time.Millisecond)
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := m.users.InsertOne(ctx, user)
	if err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: insert: %w", op, err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("%s: inserted id type", op)
	}

	user.ID = oid
	return nil
}

// UserByID возвращает пользователя по идентификатору.
func (m *Mongo) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	const op = "storage/mongo/UserByID"

	var out models.User
	if err := m.users.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&out); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

// UserByEmail возвращает пользователя по e-mail (хранится нормализованным).
func (m *Mongo) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage/mongo/UserByEmail"

	var out models.User
	if err := m.users.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&out); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

// UpdateUserProfile обновляет имя и e-mail пользователя.
// Уникальность e-mail обеспечивается индексом, гонка между проверкой на
// сервисном слое и записью схлопывается в storage.ErrAlreadyExists.
func (m *Mongo) UpdateUserProfile(ctx context.Context, id primitive.ObjectID, name, email string) (*models.User, error) {
	const op = "storage/mongo/UpdateUserProfile"

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: name},
		{Key: "email", Value: email},
		{Key: "updated_at", Value: time.Now().UTC().Truncate(time.Millisecond)},
	}}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var out models.User
	err := m.users.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, update, opts).Decode(&out)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		if mongodriver.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

// SetRefreshTokenHash перезаписывает хэш действующего refresh-токена.
// Перезапись — единственный механизм инвалидации: logout пишет пустую
// строку, ротация — новый хэш, и предыдущий токен перестаёт проходить
// проверку точного совпадения.
func (m *Mongo) SetRefreshTokenHash(ctx context.Context, id primitive.ObjectID, hash string) error {
	const op = "storage/mongo/SetRefreshTokenHash"

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "refresh_token", Value: hash},
		{Key: "updated_at", Value: time.Now().UTC().Truncate(time.Millisecond)},
	}}}

	res, err := m.users.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// TouchLastLogin фиксирует время последнего входа.
func (m *Mongo) TouchLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	const op = "storage/mongo/TouchLastLogin"

	res, err := m.users.UpdateByID(ctx, id, bson.D{{Key: "$set", Value: bson.D{
		{Key: "last_login", Value: at.UTC().Truncate(time.Millisecond)},
	}}})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
