//go:generate go run go.uber.org/mock/mockgen -source=comment.go -destination=../mocks/mock_comment_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"newsroom/domain"
)

type ICommentRepository interface {
	Create(comment domain.Comment) (domain.Comment, error)
	// ListByPost pages newest-first; cursor is the opaque key suffix of the
	// last comment returned by the previous page, nil for the first page.
	ListByPost(postID int64, cursor *string) ([]domain.Comment, *string, error)
}

type CommentRepository struct {
	db            *badger.DB
	seq           *badger.Sequence
	log           *slog.Logger
	limitComments *int
}

func NewCommentRepository(db *badger.DB, log *slog.Logger, limitComments *int) (*CommentRepository, error) {
	seq, err := db.GetSequence([]byte("seq:comment"), 100)
	if err != nil {
		return nil, fmt.Errorf("comment id sequence: %w", err)
	}
	return &CommentRepository{db: db, seq: seq, log: log, limitComments: limitComments}, nil
}

func (r *CommentRepository) Close() error {
	return r.seq.Release()
}

type diskComment struct {
	ID        int64  `json:"id"`
	PostID    int64  `json:"post_id"`
	AuthorID  int64  `json:"author_id"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
}

// Create persists a comment under "comment:{post_id}:{timestamp_padded}:{uuid}".
// The 19-digit zero padding makes prefix scans chronological; the uuid is a
// collision disconnector for two comments in the same nanosecond.
func (r *CommentRepository) Create(comment domain.Comment) (domain.Comment, error) {
	id, err := r.seq.Next()
	if err != nil {
		return domain.Comment{}, fmt.Errorf("next comment id: %w", err)
	}
	comment.ID = int64(id) + 1

	key := fmt.Sprintf("comment:%d:%019d:%s",
		comment.PostID,
		comment.CreatedAt.UnixNano(),
		uuid.NewString(),
	)
	bytes, err := json.Marshal(fromComment(comment))
	if err != nil {
		return domain.Comment{}, err
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
	if err != nil {
		return domain.Comment{}, err
	}
	return comment, nil
}

// ListByPost scans the post's comment prefix in reverse, so the padded
// timestamp in the key yields newest-first order without any sorting.
// It stops once the configured page limit is reached and hands back the
// last key suffix as the cursor for the next page.
func (r *CommentRepository) ListByPost(postID int64, cursor *string) ([]domain.Comment, *string, error) {
	var comments []domain.Comment
	var lastKey string

	err := r.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("comment:%d:", postID)
		prefix := []byte(prefixStr)
		prefixLen := len(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Seek past the newest possible timestamp, then walk backwards.
			seekKey = append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		default:
			seekKey = append(append([]byte{}, prefix...), []byte(*cursor)...)
		}

		it.Seek(seekKey)

		// A cursor points at an already-delivered comment; skip it.
		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if r.limitComments != nil && len(comments) == *r.limitComments {
				r.log.Debug(fmt.Sprintf("Comment page limit of %d reached", *r.limitComments))
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[prefixLen:])
			var disk diskComment
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &disk)
			})
			if err != nil {
				return err
			}
			comments = append(comments, toComment(disk))
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	// An empty scan means the history is exhausted; a nil cursor tells the
	// client to stop paging.
	if len(comments) == 0 {
		return nil, nil, nil
	}
	return comments, &lastKey, nil
}

func fromComment(comment domain.Comment) diskComment {
	return diskComment{
		ID:        comment.ID,
		PostID:    comment.PostID,
		AuthorID:  comment.AuthorID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt.UnixNano(),
	}
}

func toComment(disk diskComment) domain.Comment {
	return domain.Comment{
		ID:        disk.ID,
		PostID:    disk.PostID,
		AuthorID:  disk.AuthorID,
		Content:   disk.Content,
		CreatedAt: time.Unix(0, disk.CreatedAt).UTC(),
	}
}
