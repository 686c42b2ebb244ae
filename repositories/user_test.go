package repositories

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"newsroom/domain"
	apperrors "newsroom/errors"
)

func newUserRepo(t *testing.T) *UserRepository {
	t.Helper()
	repository, err := NewUserRepository(newTestDB(t), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repository.Close() })
	return repository
}

func Test_Create_And_Fetch_By_Email_And_Id(t *testing.T) {
	req := require.New(t)
	repository := newUserRepo(t)

	created, err := repository.Create("alice@example.com", "alice", "hash", domain.RoleUser)
	req.NoError(err)
	req.Equal(int64(1), created.ID)
	req.True(created.Active)

	byEmail, err := repository.GetByEmail("alice@example.com")
	req.NoError(err)
	req.Equal(created.ID, byEmail.ID)
	req.Equal("alice", byEmail.Username)

	byID, err := repository.GetByID(created.ID)
	req.NoError(err)
	req.Equal("alice@example.com", byID.Email)
}

func Test_Duplicate_Email_Is_Rejected(t *testing.T) {
	req := require.New(t)
	repository := newUserRepo(t)

	_, err := repository.Create("alice@example.com", "alice", "hash", domain.RoleUser)
	req.NoError(err)

	_, err = repository.Create("alice@example.com", "impostor", "hash", domain.RoleUser)
	req.ErrorIs(err, apperrors.ErrUserAlreadyExists)
}

func Test_Unknown_User_Is_NotFound(t *testing.T) {
	req := require.New(t)
	repository := newUserRepo(t)

	_, err := repository.GetByEmail("nobody@example.com")
	req.ErrorIs(err, apperrors.ErrNotFound)

	_, err = repository.GetByID(404)
	req.ErrorIs(err, apperrors.ErrNotFound)
}

func Test_SetRole_Promotes_The_User(t *testing.T) {
	req := require.New(t)
	repository := newUserRepo(t)

	created, err := repository.Create("alice@example.com", "alice", "hash", domain.RoleUser)
	req.NoError(err)

	req.NoError(repository.SetRole(created.ID, domain.RoleApprover))

	fetched, err := repository.GetByID(created.ID)
	req.NoError(err)
	req.Equal(domain.RoleApprover, fetched.Role)

	req.ErrorIs(repository.SetRole(404, domain.RoleAdmin), apperrors.ErrNotFound)
}

func Test_List_Returns_Accounts_Without_Index_Entries(t *testing.T) {
	req := require.New(t)
	repository := newUserRepo(t)

	_, err := repository.Create("alice@example.com", "alice", "hash", domain.RoleUser)
	req.NoError(err)
	_, err = repository.Create("bob@example.com", "bob", "hash", domain.RoleAdmin)
	req.NoError(err)

	users, err := repository.List()
	req.NoError(err)
	req.Len(users, 2)
	req.Equal("alice@example.com", users[0].Email)
	req.Equal("bob@example.com", users[1].Email)
	req.Equal(domain.RoleAdmin, users[1].Role)
}
