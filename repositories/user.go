//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
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

type IUserRepository interface {
	Create(email, username, passwordHash string, role domain.Role) (User, error)
	GetByEmail(email string) (User, error)
	GetByID(id int64) (User, error)
	SetRole(id int64, role domain.Role) error
	List() ([]User, error)
}

// User is the repository-layer representation of an account.
type User struct {
	ID           int64
	Email        string
	Username     string
	PasswordHash string
	Role         domain.Role
	Active       bool
	CreatedAt    time.Time
}

type UserRepository struct {
	db  *badger.DB
	seq *badger.Sequence
	log *slog.Logger
}

func NewUserRepository(db *badger.DB, log *slog.Logger) (*UserRepository, error) {
	seq, err := db.GetSequence([]byte("seq:user"), 10)
	if err != nil {
		return nil, fmt.Errorf("user id sequence: %w", err)
	}
	return &UserRepository{db: db, seq: seq, log: log}, nil
}

func (r *UserRepository) Close() error {
	return r.seq.Release()
}

type diskUser struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	Role         string `json:"role"`
	Active       bool   `json:"active"`
	CreatedAt    int64  `json:"created_at"`
}

func userKey(id int64) []byte {
	return []byte(fmt.Sprintf("user:%019d", id))
}

func emailKey(email string) []byte {
	return []byte("user_email:" + email)
}

// Create persists the account and a unique email index entry in one
// transaction. A taken email surfaces as ErrUserAlreadyExists.
func (r *UserRepository) Create(email, username, passwordHash string, role domain.Role) (User, error) {
	id, err := r.seq.Next()
	if err != nil {
		return User{}, fmt.Errorf("next user id: %w", err)
	}
	user := User{
		ID:           int64(id) + 1,
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	bytes, err := json.Marshal(fromUser(user))
	if err != nil {
		return User{}, err
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(emailKey(email)); err == nil {
			return apperrors.ErrUserAlreadyExists
		}
		if err := txn.Set(emailKey(email), userKey(user.ID)); err != nil {
			return err
		}
		return txn.Set(userKey(user.ID), bytes)
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// GetByEmail resolves the email index, then loads the account record.
func (r *UserRepository) GetByEmail(email string) (User, error) {
	var disk diskUser
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailKey(email))
		if err != nil {
			return err
		}
		var key []byte
		if err := item.Value(func(val []byte) error {
			key = append([]byte{}, val...)
			return nil
		}); err != nil {
			return err
		}
		record, err := txn.Get(key)
		if err != nil {
			return err
		}
		return record.Value(func(val []byte) error {
			return json.Unmarshal(val, &disk)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return User{}, apperrors.ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return toUser(disk)
}

func (r *UserRepository) GetByID(id int64) (User, error) {
	var disk diskUser
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &disk)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return User{}, apperrors.ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return toUser(disk)
}

// SetRole rewrites the stored role. Used by role management and seeding.
func (r *UserRepository) SetRole(id int64, role domain.Role) error {
	return r.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return apperrors.ErrNotFound
		}
		if err != nil {
			return err
		}
		var disk diskUser
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &disk)
		}); err != nil {
			return err
		}
		disk.Role = string(role)
		bytes, err := json.Marshal(disk)
		if err != nil {
			return err
		}
		return txn.Set(userKey(id), bytes)
	})
}

// List walks the account keyspace in id order. The email index lives
// under a different prefix and is not touched.
func (r *UserRepository) List() ([]User, error) {
	var users []User
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte("user:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var disk diskUser
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &disk)
			})
			if err != nil {
				return err
			}
			user, err := toUser(disk)
			if err != nil {
				return err
			}
			users = append(users, user)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

func fromUser(user User) diskUser {
	return diskUser{
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		Role:         string(user.Role),
		Active:       user.Active,
		CreatedAt:    user.CreatedAt.UnixNano(),
	}
}

func toUser(disk diskUser) (User, error) {
	role, err := domain.ParseRole(disk.Role)
	if err != nil {
		return User{}, err
	}
	return User{
		ID:           disk.ID,
		Email:        disk.Email,
		Username:     disk.Username,
		PasswordHash: disk.PasswordHash,
		Role:         role,
		Active:       disk.Active,
		CreatedAt:    time.Unix(0, disk.CreatedAt).UTC(),
	}, nil
}
