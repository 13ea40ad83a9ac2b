package mongo

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection    = "users"
	blogsCollection    = "blogs"
	commentsCollection = "comments"
	defaultDBName      = "blog"
)

// Mongo — адаптер документного хранилища блог-платформы.
type Mongo struct {
	client   *mongodriver.Client
	db       *mongodriver.Database
	users    *mongodriver.Collection
	blogs    *mongodriver.Collection
	comments *mongodriver.Collection
}

// New подключается к MongoDB, проверяет соединение и обеспечивает индексацию.
func New(ctx context.Context, databaseURL string) (*Mongo, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("mongo: empty database url")
	}

	cli, err := mongodriver.Connect(ctx, options.Client().ApplyURI(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := cli.Database(databaseFromURI(databaseURL))

	m := &Mongo{
		client:   cli,
		db:       db,
		users:    db.Collection(usersCollection),
		blogs:    db.Collection(blogsCollection),
		comments: db.Collection(commentsCollection),
	}

	if err := m.ensureIndexes(ctx); err != nil {
		m.Close()
		return nil, err
	}

	return m, nil
}

// Close закрывает соединение с MongoDB.
func (m *Mongo) Close() {
	_ = m.client.Disconnect(context.Background())
}

// ensureIndexes создаёт индексы:
//   - users: уникальность e-mail;
//   - blogs: текстовый поиск по title/content/summary/tags, выборка
//     опубликованных по дате, выборка по автору;
//   - comments: корни блога по дате, поиск ответов по родителю.
func (m *Mongo) ensureIndexes(ctx context.Context) error {
	userModels := []mongodriver.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_email").SetUnique(true),
		},
	}

	blogModels := []mongodriver.IndexModel{
		{
			Keys: bson.D{
				{Key: "title", Value: "text"},
				{Key: "content", Value: "text"},
				{Key: "summary", Value: "text"},
				{Key: "tags", Value: "text"},
			},
			Options: options.Index().SetName("text_search"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("status_created_desc"),
		},
		{
			Keys:    bson.D{{Key: "author", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("author_created_desc"),
		},
	}

	commentModels := []mongodriver.IndexModel{
		{
			Keys: bson.D{
				{Key: "blog", Value: 1},
				{Key: "parent_comment", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("blog_parent_created_desc"),
		},
		{
			Keys:    bson.D{{Key: "parent_comment", Value: 1}},
			Options: options.Index().SetName("parent"),
		},
	}

	if _, err := m.users.Indexes().CreateMany(ctx, userModels); err != nil {
		return fmt.Errorf("mongo ensure user indexes: %w", err)
	}

	if _, err := m.blogs.Indexes().CreateMany(ctx, blogModels); err != nil {
		return fmt.Errorf("mongo ensure blog indexes: %w", err)
	}

	if _, err := m.comments.Indexes().CreateMany(ctx, commentModels); err != nil {
		return fmt.Errorf("mongo ensure comment indexes: %w", err)
	}

	return nil
}

// withTxn выполняет fn внутри одной транзакции (multi-document).
// Требует replica set; каскадные удаления не должны оставлять сирот
// при частичном сбое.
func (m *Mongo) withTxn(ctx context.Context, fn func(sc mongodriver.SessionContext) error) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("mongo start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongodriver.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})

	return err
}

// databaseFromURI извлекает имя базы данных из URI-пути mongodb.
// Если оно отсутствует — возвращает значение по умолчанию.
func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}
	return defaultDBName
}
