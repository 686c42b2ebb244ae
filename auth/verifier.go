package auth

import (
	"newsroom/domain"
	"newsroom/errors"
	"newsroom/repositories"
)

// Identity is the authenticated principal attached to a connection or
// request after token verification.
type Identity struct {
	ActorID  int64
	Role     domain.Role
	Email    string
	Username string
}

func (i Identity) Actor() domain.Actor {
	return domain.Actor{ID: i.ActorID, Username: i.Username, Role: i.Role}
}

// Verifier resolves bearer tokens into identities. The stored account is
// authoritative for role and active flag; the token only names the user.
type Verifier struct {
	users  repositories.IUserRepository
	secret []byte
}

func NewVerifier(users repositories.IUserRepository, secret []byte) *Verifier {
	return &Verifier{users: users, secret: secret}
}

// Verify validates the token and loads the account behind it. Every
// failure mode collapses into ErrUnauthenticated so callers leak nothing
// about which check failed.
func (v *Verifier) Verify(tokenString string) (Identity, error) {
	claims, err := ValidateToken(v.secret, tokenString)
	if err != nil {
		return Identity{}, errors.ErrUnauthenticated
	}

	user, err := v.users.GetByID(claims.UserID)
	if err != nil {
		return Identity{}, errors.ErrUnauthenticated
	}
	if !user.Active {
		return Identity{}, errors.ErrUnauthenticated
	}

	return Identity{
		ActorID:  user.ID,
		Role:     user.Role,
		Email:    user.Email,
		Username: user.Username,
	}, nil
}
