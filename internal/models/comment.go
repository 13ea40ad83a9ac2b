package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment — комментарий к блогу (корневой или ответ).
//
// Важно:
//   - BlogID и AuthorID неизменяемы после создания;
//   - ParentID == NilObjectID означает корневой комментарий;
//   - ReplyIDs заполняется только у корневых комментариев: дерево
//     сплющено до глубины 2 — ответ на ответ прикрепляется к корню ветки;
//   - LikesCount == len(Likes) после любой мутации;
//   - IsEdited выставляется при первом изменении содержимого и
//     больше не сбрасывается.
type Comment struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty"`
	Content    string               `bson:"content"`
	BlogID     primitive.ObjectID   `bson:"blog"`
	AuthorID   primitive.ObjectID   `bson:"author"`
	ParentID   primitive.ObjectID   `bson:"parent_comment,omitempty"`
	ReplyIDs   []primitive.ObjectID `bson:"replies,omitempty"`
	Likes      []primitive.ObjectID `bson:"likes,omitempty"`
	LikesCount int64                `bson:"likes_count"`
	IsEdited   bool                 `bson:"is_edited"`
	CreatedAt  time.Time            `bson:"created_at"`
	UpdatedAt  time.Time            `bson:"updated_at"`
}

// CommentThread — корневой комментарий вместе с его ответами.
// Порядок ответов — порядок вставки в replies; иных гарантий нет.
type CommentThread struct {
	Comment
	Replies []Comment
}
