package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"newsroom/domain"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "MySuperS3cret!Passw0rd"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("WrongPassword1!", hash)
	req.NoError(err)
	req.False(match)
}

func TestCompareRejectsMalformedHash(t *testing.T) {
	req := require.New(t)

	_, err := ComparePassword("whatever", "not-an-argon2-hash")
	req.Error(err)
}

func TestRegistrationValidation(t *testing.T) {
	req := require.New(t)
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{"Valid request", RegisterRequest{"test@example.com", "alice", "ComplexPass123!!"}, false},
		{"Invalid email", RegisterRequest{"notanemail", "alice", "ComplexPass123!!"}, true},
		{"Username too short", RegisterRequest{"test@example.com", "al", "ComplexPass123!!"}, true},
		{"Password too short", RegisterRequest{"test@example.com", "alice", "Short1!"}, true},
		{"Missing digit", RegisterRequest{"test@example.com", "alice", "NoDigitPassword!"}, true},
		{"Missing special char", RegisterRequest{"test@example.com", "alice", "NoSpecialChar123"}, true},
		{"Missing uppercase", RegisterRequest{"test@example.com", "alice", "nouppercase123!!"}, true},
		{"Password too long (edge case)", RegisterRequest{"test@example.com", "alice", strings.Repeat("a", 73)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegister(tt.req)
			if tt.wantErr {
				req.Error(err)
			} else {
				req.NoError(err)
			}
		})
	}
}

func TestTokenRoundtrip(t *testing.T) {
	req := require.New(t)
	secret := []byte("test-secret")

	token, err := GenerateToken(secret, 42, domain.RoleApprover, time.Hour)
	req.NoError(err)

	claims, err := ValidateToken(secret, token)
	req.NoError(err)
	req.Equal(int64(42), claims.UserID)
	req.Equal(string(domain.RoleApprover), claims.Role)
	req.Equal("newsroom", claims.Issuer)
}

func TestTokenRejectedWithWrongSecret(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken([]byte("right-secret"), 42, domain.RoleUser, time.Hour)
	req.NoError(err)

	_, err = ValidateToken([]byte("wrong-secret"), token)
	req.Error(err)
}

func TestExpiredTokenRejected(t *testing.T) {
	req := require.New(t)
	secret := []byte("test-secret")

	token, err := GenerateToken(secret, 42, domain.RoleUser, -time.Minute)
	req.NoError(err)

	_, err = ValidateToken(secret, token)
	req.Error(err)
}
