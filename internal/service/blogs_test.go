package service

import (
	"context"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pribylovaa/go-blog-platform/internal/models"
	"github.com/pribylovaa/go-blog-platform/internal/storage"
)

func validBlogInput() CreateBlogInput {
	return CreateBlogInput{
		Title:   "Go concurrency patterns",
		Content: "A long enough body about goroutines and channels.",
		Summary: "Channels, goroutines and friends.",
		Tags:    []string{" go ", "", "concurrency"},
	}
}

func TestCreateBlog_Defaults(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	author := primitive.NewObjectID()

	st.EXPECT().SaveBlog(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, b *models.Blog) error {
			b.ID = primitive.NewObjectID()
			return nil
		})

	blog, err := svc.CreateBlog(context.Background(), author, validBlogInput())
	require.NoError(t, err)
	require.Equal(t, author, blog.AuthorID)
	require.Equal(t, "Other", blog.Category)
	require.Equal(t, models.StatusPublished, blog.Status)
	require.Equal(t, []string{"go", "concurrency"}, blog.Tags)
}

func TestCreateBlog_Draft(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	in := validBlogInput()
	in.Status = models.StatusDraft
	in.Category = "Technology"

	st.EXPECT().SaveBlog(gomock.Any(), gomock.Any()).Return(nil)

	blog, err := svc.CreateBlog(context.Background(), primitive.NewObjectID(), in)
	require.NoError(t, err)
	require.Equal(t, models.StatusDraft, blog.Status)
	require.Equal(t, "Technology", blog.Category)
}

func TestCreateBlog_Validation(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	author := primitive.NewObjectID()

	cases := []struct {
		name   string
		mutate func(*CreateBlogInput)
	}{
		{"short title", func(in *CreateBlogInput) { in.Title = "ab" }},
		{"long title", func(in *CreateBlogInput) { in.Title = strings.Repeat("a", 201) }},
		{"short content", func(in *CreateBlogInput) { in.Content = "tiny" }},
		{"empty summary", func(in *CreateBlogInput) { in.Summary = "   " }},
		{"long summary", func(in *CreateBlogInput) { in.Summary = strings.Repeat("s", 501) }},
		{"bad category", func(in *CreateBlogInput) { in.Category = "Gardening" }},
		{"bad status", func(in *CreateBlogInput) { in.Status = "archived" }},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			in := validBlogInput()
			tc.mutate(&in)

			_, err := svc.CreateBlog(context.Background(), author, in)
			require.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestListBlogs_BadParams(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	cases := []struct {
		name string
		p    models.ListBlogsParams
	}{
		{"sortBy", models.ListBlogsParams{SortBy: "password"}},
		{"sortOrder", models.ListBlogsParams{SortOrder: "sideways"}},
		{"author", models.ListBlogsParams{AuthorID: "not-hex"}},
		{"category", models.ListBlogsParams{Category: "Gardening"}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := svc.ListBlogs(context.Background(), tc.p)
			require.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestListBlogs_PassThrough(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	params := models.ListBlogsParams{Page: 2, Limit: 5, SortBy: "views", SortOrder: "desc"}
	want := &models.BlogPage{Page: 2, Limit: 5, Total: 12, Pages: 3}

	st.EXPECT().ListBlogs(gomock.Any(), params).Return(want, nil)

	got, err := svc.ListBlogs(context.Background(), params)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

// Чтение по id — это и есть просмотр: сервис идёт через вариант
// чтения с инкрементом счётчика.
func TestBlogByID_CountsView(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	id := primitive.NewObjectID()
	st.EXPECT().BlogByIDWithView(gomock.Any(), id).
		Return(&models.Blog{ID: id, Views: 7}, nil)

	blog, err := svc.BlogByID(context.Background(), id.Hex())
	require.NoError(t, err)
	require.EqualValues(t, 7, blog.Views)
}

func TestBlogByID_MalformedID(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	_, err := svc.BlogByID(context.Background(), "definitely-not-hex")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateBlog_NonAuthorForbidden(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	blogID := primitive.NewObjectID()
	author := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	st.EXPECT().BlogByID(gomock.Any(), blogID).
		Return(&models.Blog{ID: blogID, AuthorID: author}, nil)

	title := "New title"
	_, err := svc.UpdateBlog(context.Background(), stranger, blogID.Hex(), UpdateBlogInput{Title: &title})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateBlog_OK(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	blogID := primitive.NewObjectID()
	author := primitive.NewObjectID()
	title := "  Updated title  "

	st.EXPECT().BlogByID(gomock.Any(), blogID).
		Return(&models.Blog{ID: blogID, AuthorID: author}, nil)
	st.EXPECT().UpdateBlog(gomock.Any(), blogID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ primitive.ObjectID, upd models.BlogUpdate) (*models.Blog, error) {
			require.NotNil(t, upd.Title)
			require.Equal(t, "Updated title", *upd.Title)
			return &models.Blog{ID: blogID, AuthorID: author, Title: *upd.Title}, nil
		})

	blog, err := svc.UpdateBlog(context.Background(), author, blogID.Hex(), UpdateBlogInput{Title: &title})
	require.NoError(t, err)
	require.Equal(t, "Updated title", blog.Title)
}

func TestDeleteBlog_NonAuthorForbidden(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	blogID := primitive.NewObjectID()

	st.EXPECT().BlogByID(gomock.Any(), blogID).
		Return(&models.Blog{ID: blogID, AuthorID: primitive.NewObjectID()}, nil)

	err := svc.DeleteBlog(context.Background(), primitive.NewObjectID(), blogID.Hex())
	require.ErrorIs(t, err, ErrForbidden)
}

func TestDeleteBlog_Cascade(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	blogID := primitive.NewObjectID()
	author := primitive.NewObjectID()

	st.EXPECT().BlogByID(gomock.Any(), blogID).
		Return(&models.Blog{ID: blogID, AuthorID: author}, nil)
	st.EXPECT().DeleteBlogCascade(gomock.Any(), blogID).Return(nil)

	require.NoError(t, svc.DeleteBlog(context.Background(), author, blogID.Hex()))
}

func TestToggleBlogLike_PassThrough(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	blogID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	st.EXPECT().ToggleBlogLike(gomock.Any(), blogID, userID).
		Return(&models.LikeResult{Liked: true, LikesCount: 4}, nil)

	res, err := svc.ToggleBlogLike(context.Background(), userID, blogID.Hex())
	require.NoError(t, err)
	require.True(t, res.Liked)
	require.EqualValues(t, 4, res.LikesCount)
}

func TestToggleBlogLike_MissingBlog(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	blogID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	st.EXPECT().ToggleBlogLike(gomock.Any(), blogID, userID).Return(nil, storage.ErrNotFound)

	_, err := svc.ToggleBlogLike(context.Background(), userID, blogID.Hex())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMyBlogs_PassThrough(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	author := primitive.NewObjectID()
	want := []models.Blog{
		{ID: primitive.NewObjectID(), AuthorID: author, Status: models.StatusDraft},
		{ID: primitive.NewObjectID(), AuthorID: author, Status: models.StatusPublished},
	}

	st.EXPECT().BlogsByAuthor(gomock.Any(), author).Return(want, nil)

	got, err := svc.MyBlogs(context.Background(), author)
	require.NoError(t, err)
	require.Equal(t, want, got)
}
