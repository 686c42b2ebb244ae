package repositories

import (
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"newsroom/domain"
	apperrors "newsroom/errors"
)

func newTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newPostRepo(t *testing.T) *PostRepository {
	t.Helper()
	repository, err := NewPostRepository(newTestDB(t), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repository.Close() })
	return repository
}

func pendingPost(authorID int64, title string) domain.Post {
	now := time.Now().UTC()
	return domain.Post{
		Title:     title,
		Body:      "some body",
		Status:    domain.StatusPending,
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func Test_Create_Assigns_Sequential_Ids(t *testing.T) {
	req := require.New(t)
	repository := newPostRepo(t)

	first, err := repository.Create(pendingPost(1, "first"))
	req.NoError(err)
	second, err := repository.Create(pendingPost(1, "second"))
	req.NoError(err)

	req.Equal(int64(1), first.ID)
	req.Equal(int64(2), second.ID)
}

func Test_Get_Roundtrips_The_Post(t *testing.T) {
	req := require.New(t)
	repository := newPostRepo(t)

	created, err := repository.Create(domain.Post{
		Title:     "with images",
		Body:      "body",
		Images:    []string{"a.png", "b.png"},
		Status:    domain.StatusPending,
		AuthorID:  42,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	})
	req.NoError(err)

	fetched, err := repository.Get(created.ID)
	req.NoError(err)
	req.Equal(created.Title, fetched.Title)
	req.Equal(created.Images, fetched.Images)
	req.Equal(created.AuthorID, fetched.AuthorID)
	req.Equal(domain.StatusPending, fetched.Status)
}

func Test_Get_Unknown_Id_Is_NotFound(t *testing.T) {
	req := require.New(t)
	repository := newPostRepo(t)

	_, err := repository.Get(999)
	req.ErrorIs(err, apperrors.ErrNotFound)
}

func Test_Get_Hides_Soft_Deleted_Posts(t *testing.T) {
	req := require.New(t)
	repository := newPostRepo(t)

	created, err := repository.Create(pendingPost(1, "to delete"))
	req.NoError(err)

	now := time.Now().UTC()
	created.DeletedAt = &now
	req.NoError(repository.Update(created))

	_, err = repository.Get(created.ID)
	req.ErrorIs(err, apperrors.ErrNotFound)
}

func Test_Update_Unknown_Id_Is_NotFound(t *testing.T) {
	req := require.New(t)
	repository := newPostRepo(t)

	post := pendingPost(1, "ghost")
	post.ID = 123
	req.ErrorIs(repository.Update(post), apperrors.ErrNotFound)
}

func Test_ListApproved_Filters_And_Counts(t *testing.T) {
	req := require.New(t)
	repository := newPostRepo(t)

	for i := 0; i < 3; i++ {
		post := pendingPost(1, "approved")
		post.Status = domain.StatusApproved
		_, err := repository.Create(post)
		req.NoError(err)
	}
	_, err := repository.Create(pendingPost(1, "still pending"))
	req.NoError(err)

	deleted := pendingPost(1, "approved then deleted")
	deleted.Status = domain.StatusApproved
	created, err := repository.Create(deleted)
	req.NoError(err)
	now := time.Now().UTC()
	created.DeletedAt = &now
	req.NoError(repository.Update(created))

	page, total, err := repository.ListApproved(10, 0)
	req.NoError(err)
	req.Equal(3, total)
	req.Len(page, 3)
	for _, post := range page {
		req.Equal(domain.StatusApproved, post.Status)
		req.False(post.Deleted())
	}
}

func Test_ListApproved_Pages_Newest_First(t *testing.T) {
	req := require.New(t)
	repository := newPostRepo(t)

	for _, title := range []string{"one", "two", "three"} {
		post := pendingPost(1, title)
		post.Status = domain.StatusApproved
		_, err := repository.Create(post)
		req.NoError(err)
	}

	page, total, err := repository.ListApproved(2, 0)
	req.NoError(err)
	req.Equal(3, total)
	req.Len(page, 2)
	req.Equal("three", page[0].Title)
	req.Equal("two", page[1].Title)

	rest, _, err := repository.ListApproved(2, 2)
	req.NoError(err)
	req.Len(rest, 1)
	req.Equal("one", rest[0].Title)
}
