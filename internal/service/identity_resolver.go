package service

import (
	"context"
	"errors"
	"fmt"

	"notes-server/internal/domain"
	"notes-server/internal/repository"
	"notes-server/pkg/jwt"

	"github.com/google/uuid"
)

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*jwt.Claims, error)
}

// IdentityResolver maps a bearer token to a live, active user. It holds no
// state of its own and is safe for concurrent use.
type IdentityResolver struct {
	userRepo repository.UserRepository
	verifier TokenVerifier
}

func NewIdentityResolver(userRepo repository.UserRepository, verifier TokenVerifier) *IdentityResolver {
	return &IdentityResolver{
		userRepo: userRepo,
		verifier: verifier,
	}
}

// Resolve returns domain.ErrInvalidToken for bad, expired or subjectless
// tokens and for subjects that no longer exist, and domain.ErrInactiveAccount
// for disabled users.
func (r *IdentityResolver) Resolve(ctx context.Context, token string) (*domain.User, error) {
	claims, err := r.verifier.Verify(token)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := r.userRepo.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !user.IsActive {
		return nil, domain.ErrInactiveAccount
	}

	return user, nil
}
