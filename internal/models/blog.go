package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Статусы публикации.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Категории — фиксированный небольшой набор.
var Categories = []string{
	"Technology", "Lifestyle", "Travel", "Food",
	"Health", "Business", "Education", "Other",
}

// ValidCategory сообщает, входит ли категория в допустимый набор.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}

	return false
}

// Blog — запись блога.
//
// Инварианты:
//   - AuthorID неизменяем после создания; право на mutate/delete есть
//     только у автора;
//   - LikesCount == len(Likes) после любой мутации (likes_count
//     пересчитывается в том же атомарном update, что и сам массив);
//   - Views монотонно растёт ($inc при каждом чтении по id);
//   - PublishedAt выставляется ровно один раз — при первом переходе
//     в status=published — и больше не перезаписывается.
type Blog struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty"`
	Title         string               `bson:"title"`
	Content       string               `bson:"content"`
	Summary       string               `bson:"summary"`
	FeaturedImage string               `bson:"featured_image,omitempty"`
	AuthorID      primitive.ObjectID   `bson:"author"`
	Tags          []string             `bson:"tags,omitempty"`
	Category      string               `bson:"category"`
	Status        string               `bson:"status"`
	Views         int64                `bson:"views"`
	Likes         []primitive.ObjectID `bson:"likes,omitempty"`
	LikesCount    int64                `bson:"likes_count"`
	PublishedAt   time.Time            `bson:"published_at,omitempty"`
	CreatedAt     time.Time            `bson:"created_at"`
	UpdatedAt     time.Time            `bson:"updated_at"`
}

// BlogUpdate — частичное обновление блога: nil-поле означает «не трогать».
type BlogUpdate struct {
	Title         *string
	Content       *string
	Summary       *string
	FeaturedImage *string
	Tags          []string
	Category      *string
	Status        *string
}

// ListBlogsParams — параметры выборки опубликованных блогов.
// SortBy ограничен полями {created_at, updated_at, views, likes_count},
// проверка — на сервисном слое.
type ListBlogsParams struct {
	Page      int64
	Limit     int64
	Search    string
	Category  string
	Tag       string
	AuthorID  string
	SortBy    string
	SortOrder string
}

// BlogPage — страница выдачи со счётчиками для пагинации.
type BlogPage struct {
	Blogs []Blog
	Page  int64
	Limit int64
	Total int64
	Pages int64
}

// LikeResult — результат переключения лайка.
// Liked == true, если лайк был только что поставлен (а не снят).
type LikeResult struct {
	Liked      bool
	LikesCount int64
}
