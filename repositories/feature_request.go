//go:generate go run go.uber.org/mock/mockgen -source=feature_request.go -destination=../mocks/mock_feature_request_repository.go -package=mocks
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

// FeatureRequestFilter narrows a listing. A zero AuthorID means every
// author; an empty Status means every status.
type FeatureRequestFilter struct {
	AuthorID int64
	Status   domain.FeatureRequestStatus
	Limit    int
	Offset   int
}

type IFeatureRequestRepository interface {
	Create(fr domain.FeatureRequest) (domain.FeatureRequest, error)
	Get(id int64) (domain.FeatureRequest, error)
	Update(fr domain.FeatureRequest) error
	List(filter FeatureRequestFilter) ([]domain.FeatureRequest, int, error)
}

type FeatureRequestRepository struct {
	db  *badger.DB
	seq *badger.Sequence
	log *slog.Logger
}

func NewFeatureRequestRepository(db *badger.DB, log *slog.Logger) (*FeatureRequestRepository, error) {
	seq, err := db.GetSequence([]byte("seq:featreq"), 100)
	if err != nil {
		return nil, fmt.Errorf("feature request id sequence: %w", err)
	}
	return &FeatureRequestRepository{db: db, seq: seq, log: log}, nil
}

func (r *FeatureRequestRepository) Close() error {
	return r.seq.Release()
}

type diskFeatureRequest struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	AuthorID    int64  `json:"author_id"`
	Priority    int    `json:"priority"`
	Rating      int    `json:"rating"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

func featureRequestKey(id int64) []byte {
	return []byte(fmt.Sprintf("featreq:%019d", id))
}

func (r *FeatureRequestRepository) Create(fr domain.FeatureRequest) (domain.FeatureRequest, error) {
	id, err := r.seq.Next()
	if err != nil {
		return domain.FeatureRequest{}, fmt.Errorf("next feature request id: %w", err)
	}
	fr.ID = int64(id) + 1

	bytes, err := json.Marshal(fromFeatureRequest(fr))
	if err != nil {
		return domain.FeatureRequest{}, err
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(featureRequestKey(fr.ID), bytes)
	})
	if err != nil {
		return domain.FeatureRequest{}, err
	}
	return fr, nil
}

func (r *FeatureRequestRepository) Get(id int64) (domain.FeatureRequest, error) {
	var disk diskFeatureRequest
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(featureRequestKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &disk)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.FeatureRequest{}, apperrors.ErrNotFound
	}
	if err != nil {
		return domain.FeatureRequest{}, err
	}
	return toFeatureRequest(disk), nil
}

func (r *FeatureRequestRepository) Update(fr domain.FeatureRequest) error {
	bytes, err := json.Marshal(fromFeatureRequest(fr))
	if err != nil {
		return err
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(featureRequestKey(fr.ID)); err != nil {
			return err
		}
		return txn.Set(featureRequestKey(fr.ID), bytes)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return apperrors.ErrNotFound
	}
	return err
}

// List walks the keyspace newest-first and applies the filter. The
// returned total counts every match, not just the requested page.
func (r *FeatureRequestRepository) List(filter FeatureRequestFilter) ([]domain.FeatureRequest, int, error) {
	var page []domain.FeatureRequest
	total := 0

	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte("featreq:")
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			var disk diskFeatureRequest
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &disk)
			})
			if err != nil {
				return err
			}
			if filter.AuthorID != 0 && disk.AuthorID != filter.AuthorID {
				continue
			}
			if filter.Status != "" && disk.Status != string(filter.Status) {
				continue
			}
			if total >= filter.Offset && len(page) < filter.Limit {
				page = append(page, toFeatureRequest(disk))
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

func fromFeatureRequest(fr domain.FeatureRequest) diskFeatureRequest {
	return diskFeatureRequest{
		ID:          fr.ID,
		Title:       fr.Title,
		Description: fr.Description,
		Status:      string(fr.Status),
		AuthorID:    fr.AuthorID,
		Priority:    fr.Priority,
		Rating:      fr.Rating,
		CreatedAt:   fr.CreatedAt.UnixNano(),
		UpdatedAt:   fr.UpdatedAt.UnixNano(),
	}
}

func toFeatureRequest(disk diskFeatureRequest) domain.FeatureRequest {
	return domain.FeatureRequest{
		ID:          disk.ID,
		Title:       disk.Title,
		Description: disk.Description,
		Status:      domain.FeatureRequestStatus(disk.Status),
		AuthorID:    disk.AuthorID,
		Priority:    disk.Priority,
		Rating:      disk.Rating,
		CreatedAt:   time.Unix(0, disk.CreatedAt).UTC(),
		UpdatedAt:   time.Unix(0, disk.UpdatedAt).UTC(),
	}
}
