package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"notes-server/internal/domain"
	"notes-server/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityResolver_Resolve(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	active, err := f.auth.Register(ctx, "active@example.com", "secret1", nil)
	require.NoError(t, err)
	inactive, err := f.auth.Register(ctx, "inactive@example.com", "secret1", nil)
	require.NoError(t, err)
	require.NoError(t, f.users.SetActive(inactive.ID, false))

	mustSign := func(subject string, ttl time.Duration, secret string) string {
		token, err := jwt.GenerateToken(subject, ttl, secret)
		require.NoError(t, err)
		return token
	}

	tests := []struct {
		name    string
		token   string
		wantID  string
		wantErr error
	}{
		{name: "valid token", token: mustSign(active.ID, time.Hour, testSecret), wantID: active.ID},
		{name: "garbage", token: "invalid.token.format", wantErr: domain.ErrInvalidToken},
		{name: "empty", token: "", wantErr: domain.ErrInvalidToken},
		{name: "wrong secret", token: mustSign(active.ID, time.Hour, "other-secret"), wantErr: domain.ErrInvalidToken},
		{name: "expired", token: mustSign(active.ID, -time.Hour, testSecret), wantErr: domain.ErrInvalidToken},
		{name: "missing subject", token: mustSign("", time.Hour, testSecret), wantErr: domain.ErrInvalidToken},
		{name: "malformed subject", token: mustSign("not-a-uuid", time.Hour, testSecret), wantErr: domain.ErrInvalidToken},
		{name: "unknown user", token: mustSign(uuid.NewString(), time.Hour, testSecret), wantErr: domain.ErrInvalidToken},
		{name: "inactive user", token: mustSign(inactive.ID, time.Hour, testSecret), wantErr: domain.ErrInactiveAccount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := f.resolver.Resolve(ctx, tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, user.ID)
		})
	}
}

func TestIdentityResolver_ConcurrentResolve(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	user, err := f.auth.Register(ctx, "many@example.com", "secret1", nil)
	require.NoError(t, err)
	token, err := f.signer.Sign(user.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resolved, err := f.resolver.Resolve(ctx, token)
			if assert.NoError(t, err) {
				assert.Equal(t, user.ID, resolved.ID)
			}
		}()
	}
	wg.Wait()
}
