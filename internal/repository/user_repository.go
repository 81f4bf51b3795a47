package repository

import (
	"context"
	"errors"
	"fmt"

	"notes-server/internal/domain"
)

type UserRepository interface {
	// Create stores a new user. It fails with domain.ErrEmailTaken when the
	// email is already claimed, including when a concurrent insert wins.
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

type userRepository struct {
	store *Store
}

func NewUserRepository(store *Store) UserRepository {
	return &userRepository{store: store}
}

// Create writes the email claim before the user. CouchDB rejects a second
// document with the same id, so the claim is the uniqueness constraint.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	db := r.store.DB()

	claimID := emailDocID(user.Email)
	claim := &emailClaimDoc{
		DocID:     claimID,
		Type:      typeEmailClaim,
		UserID:    user.ID,
		CreatedAt: formatTime(user.CreatedAt),
	}

	claimRev, err := db.Put(ctx, claimID, claim)
	if err != nil {
		if isConflict(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("failed to claim email: %w", err)
	}

	if _, err := db.Put(ctx, userDocID(user.ID), newUserDoc(user)); err != nil {
		if _, delErr := db.Delete(ctx, claimID, claimRev); delErr != nil {
			return fmt.Errorf("failed to create user: %w (releasing email claim: %v)", err, delErr)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	claim, err := r.findClaim(ctx, email)
	if err != nil {
		return nil, err
	}

	return r.FindByID(ctx, claim.UserID)
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	db := r.store.DB()

	var doc userDoc
	if err := db.Get(ctx, userDocID(id)).ScanDoc(&doc); err != nil {
		if isNotFound(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	if doc.Type != typeUser {
		return nil, domain.ErrUserNotFound
	}

	return doc.toDomain()
}

func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.findClaim(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *userRepository) findClaim(ctx context.Context, email string) (*emailClaimDoc, error) {
	db := r.store.DB()

	var claim emailClaimDoc
	if err := db.Get(ctx, emailDocID(email)).ScanDoc(&claim); err != nil {
		if isNotFound(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}

	return &claim, nil
}
