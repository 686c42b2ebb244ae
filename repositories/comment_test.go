package repositories

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"newsroom/domain"
)

func newCommentRepo(t *testing.T, limit *int) *CommentRepository {
	t.Helper()
	repository, err := NewCommentRepository(newTestDB(t), slog.Default(), limit)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repository.Close() })
	return repository
}

func Test_Create_And_List_Newest_First(t *testing.T) {
	req := require.New(t)
	repository := newCommentRepo(t, nil)

	at := time.Now().UTC()
	for i, content := range []string{"oldest", "middle", "newest"} {
		_, err := repository.Create(domain.Comment{
			PostID:    7,
			AuthorID:  1,
			Content:   content,
			CreatedAt: at.Add(time.Duration(i) * time.Minute),
		})
		req.NoError(err)
	}

	comments, _, err := repository.ListByPost(7, nil)
	req.NoError(err)
	req.Len(comments, 3)
	req.Equal("newest", comments[0].Content)
	req.Equal("middle", comments[1].Content)
	req.Equal("oldest", comments[2].Content)
}

func Test_Comments_Are_Scoped_To_Their_Post(t *testing.T) {
	req := require.New(t)
	repository := newCommentRepo(t, nil)

	at := time.Now().UTC()
	_, err := repository.Create(domain.Comment{PostID: 7, AuthorID: 1, Content: "on seven", CreatedAt: at})
	req.NoError(err)
	_, err = repository.Create(domain.Comment{PostID: 8, AuthorID: 1, Content: "on eight", CreatedAt: at})
	req.NoError(err)

	comments, _, err := repository.ListByPost(7, nil)
	req.NoError(err)
	req.Len(comments, 1)
	req.Equal("on seven", comments[0].Content)
}

func Test_Cursor_Pagination_Walks_The_Whole_History(t *testing.T) {
	req := require.New(t)
	limit := 2
	repository := newCommentRepo(t, &limit)

	at := time.Now().UTC()
	for i := 0; i < 5; i++ {
		_, err := repository.Create(domain.Comment{
			PostID:    7,
			AuthorID:  1,
			Content:   fmt.Sprintf("comment %d", i),
			CreatedAt: at.Add(time.Duration(i) * time.Second),
		})
		req.NoError(err)
	}

	var all []domain.Comment
	var cursor *string
	for {
		page, next, err := repository.ListByPost(7, cursor)
		req.NoError(err)
		if len(page) == 0 {
			// An exhausted scan must hand back a nil cursor.
			req.Nil(next)
			break
		}
		req.LessOrEqual(len(page), limit)
		req.NotNil(next)
		all = append(all, page...)
		cursor = next
	}

	req.Len(all, 5)
	req.Equal("comment 4", all[0].Content)
	req.Equal("comment 0", all[4].Content)
}

func Test_List_On_Empty_Post_Returns_Nothing(t *testing.T) {
	req := require.New(t)
	repository := newCommentRepo(t, nil)

	comments, cursor, err := repository.ListByPost(7, nil)
	req.NoError(err)
	req.Empty(comments)
	req.Nil(cursor)
}
