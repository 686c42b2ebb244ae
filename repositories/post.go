//go:generate go run go.uber.org/mock/mockgen -source=post.go -destination=../mocks/mock_post_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"newsroom/domain"
	apperrors "newsroom/errors"
)

type IPostRepository interface {
	Create(post domain.Post) (domain.Post, error)
	// Get excludes soft-deleted posts: they surface as ErrNotFound.
	Get(id int64) (domain.Post, error)
	Update(post domain.Post) error
	ListApproved(limit, offset int) ([]domain.Post, int, error)
}

type PostRepository struct {
	db  *badger.DB
	seq *badger.Sequence
	log *slog.Logger
}

func NewPostRepository(db *badger.DB, log *slog.Logger) (*PostRepository, error) {
	seq, err := db.GetSequence([]byte("seq:post"), 100)
	if err != nil {
		return nil, fmt.Errorf("post id sequence: %w", err)
	}
	return &PostRepository{db: db, seq: seq, log: log}, nil
}

// Close releases the unused tail of the id sequence.
func (r *PostRepository) Close() error {
	return r.seq.Release()
}

// diskPost is the stored representation; timestamps are UnixNano UTC.
type diskPost struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Images    []string `json:"images,omitempty"`
	Status    string   `json:"status"`
	AuthorID  int64    `json:"author_id"`
	CreatedAt int64    `json:"created_at"`
	UpdatedAt int64    `json:"updated_at"`
	DeletedAt *int64   `json:"deleted_at,omitempty"`
}

// postKey pads the id to 19 digits so lexicographical iteration order
// matches insertion order.
func postKey(id int64) []byte {
	return []byte(fmt.Sprintf("post:%019d", id))
}

// Create assigns the next sequence id and persists the post.
func (r *PostRepository) Create(post domain.Post) (domain.Post, error) {
	id, err := r.seq.Next()
	if err != nil {
		return domain.Post{}, fmt.Errorf("next post id: %w", err)
	}
	// Sequences start at 0; ids are 1-based on the wire.
	post.ID = int64(id) + 1

	bytes, err := json.Marshal(fromPost(post))
	if err != nil {
		return domain.Post{}, err
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(postKey(post.ID), bytes)
	})
	if err != nil {
		return domain.Post{}, err
	}
	return post, nil
}

func (r *PostRepository) Get(id int64) (domain.Post, error) {
	var disk diskPost
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(postKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &disk)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Post{}, apperrors.ErrNotFound
	}
	if err != nil {
		return domain.Post{}, err
	}
	if disk.DeletedAt != nil {
		return domain.Post{}, apperrors.ErrNotFound
	}
	return toPost(disk), nil
}

// Update overwrites an existing post. The caller owns the read-check-write
// cycle; a missing key is still reported.
func (r *PostRepository) Update(post domain.Post) error {
	bytes, err := json.Marshal(fromPost(post))
	if err != nil {
		return err
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(postKey(post.ID)); err != nil {
			return err
		}
		return txn.Set(postKey(post.ID), bytes)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return apperrors.ErrNotFound
	}
	return err
}

// ListApproved walks the post keyspace newest-first and keeps only
// approved, non-deleted posts. The returned total counts every match,
// not just the requested page.
func (r *PostRepository) ListApproved(limit, offset int) ([]domain.Post, int, error) {
	var page []domain.Post
	total := 0

	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte("post:")
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Reverse iteration: seek past the largest possible id.
		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			var disk diskPost
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &disk)
			})
			if err != nil {
				return err
			}
			if disk.Status != string(domain.StatusApproved) || disk.DeletedAt != nil {
				continue
			}
			if total >= offset && len(page) < limit {
				page = append(page, toPost(disk))
			}
			total++
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return page, total, nil
}

func fromPost(post domain.Post) diskPost {
	disk := diskPost{
		ID:        post.ID,
		Title:     post.Title,
		Body:      post.Body,
		Images:    post.Images,
		Status:    string(post.Status),
		AuthorID:  post.AuthorID,
		CreatedAt: post.CreatedAt.UnixNano(),
		UpdatedAt: post.UpdatedAt.UnixNano(),
	}
	if post.DeletedAt != nil {
		nano := post.DeletedAt.UnixNano()
		disk.DeletedAt = &nano
	}
	return disk
}

func toPost(disk diskPost) domain.Post {
	post := domain.Post{
		ID:        disk.ID,
		Title:     disk.Title,
		Body:      disk.Body,
		Images:    disk.Images,
		Status:    domain.PostStatus(disk.Status),
		AuthorID:  disk.AuthorID,
		CreatedAt: time.Unix(0, disk.CreatedAt).UTC(),
		UpdatedAt: time.Unix(0, disk.UpdatedAt).UTC(),
	}
	if disk.DeletedAt != nil {
		deleted := time.Unix(0, *disk.DeletedAt).UTC()
		post.DeletedAt = &deleted
	}
	return post
}
