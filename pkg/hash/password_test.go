package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHash(t *testing.T) {
	hasher := NewBcrypt(bcrypt.MinCost)

	for _, password := range []string{"abc123", "SecurePass123!", strings.Repeat("a", MaxPasswordBytes)} {
		digest, err := hasher.Hash(password)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(digest, "$2a$04$"), digest)
		assert.NotContains(t, digest, password)
	}

	_, err := hasher.Hash(strings.Repeat("a", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestBcryptHashIsSalted(t *testing.T) {
	hasher := NewBcrypt(bcrypt.MinCost)

	first, err := hasher.Hash("SamePassword123!")
	require.NoError(t, err)
	second, err := hasher.Hash("SamePassword123!")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestNewBcryptCost(t *testing.T) {
	for _, cost := range []int{0, bcrypt.MaxCost + 1} {
		assert.Equal(t, DefaultCost, NewBcrypt(cost).cost)
	}
	assert.Equal(t, bcrypt.MinCost, NewBcrypt(bcrypt.MinCost).cost)
}

func TestBcryptCompare(t *testing.T) {
	hasher := NewBcrypt(bcrypt.MinCost)
	password := "MySecurePassword123!"
	digest, err := hasher.Hash(password)
	require.NoError(t, err)

	tests := []struct {
		name     string
		digest   string
		password string
		want     bool
	}{
		{name: "correct password", digest: digest, password: password, want: true},
		{name: "wrong password", digest: digest, password: "WrongPassword"},
		{name: "empty password", digest: digest, password: ""},
		{name: "case sensitive", digest: digest, password: strings.ToUpper(password)},
		{name: "garbage digest", digest: "not-a-bcrypt-hash", password: password},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hasher.Compare(tt.digest, tt.password))
		})
	}
}

func BenchmarkBcryptCompare(b *testing.B) {
	hasher := NewBcrypt(DefaultCost)
	digest, err := hasher.Hash("BenchmarkPassword123!")
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		hasher.Compare(digest, "BenchmarkPassword123!")
	}
}
