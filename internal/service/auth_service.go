package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notes-server/internal/domain"
	"notes-server/internal/repository"
	"notes-server/pkg/hash"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const tokenTypeBearer = "bearer"

// TokenIssuer signs access tokens for a subject.
type TokenIssuer interface {
	Sign(subject string) (string, error)
	TTL() time.Duration
}

type AuthService struct {
	userRepo repository.UserRepository
	hasher   hash.Hasher
	tokens   TokenIssuer
	validate *validator.Validate
	now      func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, hasher hash.Hasher, tokens TokenIssuer) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Register creates an active user. The existence check only short-circuits
// the common case; the repository's uniqueness constraint decides races, and
// both paths report domain.ErrEmailTaken.
func (s *AuthService) Register(ctx context.Context, email, password string, fullName *string) (*domain.User, error) {
	if err := s.validateSignUp(email, password); err != nil {
		return nil, err
	}

	emailExists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if emailExists {
		return nil, domain.ErrEmailTaken
	}

	hashedPassword, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hashedPassword,
		FullName:     fullName,
		CreatedAt:    s.now().UTC(),
		IsActive:     true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate never tells an unknown email from a wrong password.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !s.hasher.Compare(user.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}

	return user, nil
}

func (s *AuthService) IssueToken(user *domain.User) (*domain.AuthResponse, error) {
	accessToken, err := s.tokens.Sign(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &domain.AuthResponse{
		AccessToken: accessToken,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
		User:        user.Public(),
	}, nil
}

func (s *AuthService) validateSignUp(email, password string) error {
	fields := make(map[string]string)

	if err := s.validate.Var(email, "required,email"); err != nil {
		fields["email"] = "must be a valid email address"
	}
	if len(password) < domain.MinPasswordLength {
		fields["password"] = fmt.Sprintf("must be at least %d characters", domain.MinPasswordLength)
	} else if len(password) > hash.MaxPasswordBytes {
		fields["password"] = fmt.Sprintf("must be at most %d bytes", hash.MaxPasswordBytes)
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}
