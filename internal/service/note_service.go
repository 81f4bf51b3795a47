package service

import (
	"context"
	"fmt"
	"time"

	"notes-server/internal/domain"
	"notes-server/internal/repository"

	"github.com/google/uuid"
)

type NoteService struct {
	repo repository.NoteRepository
	now  func() time.Time
}

func NewNoteService(repo repository.NoteRepository) *NoteService {
	return &NoteService{
		repo: repo,
		now:  time.Now,
	}
}

func (s *NoteService) Create(ctx context.Context, userID string, req *domain.CreateNoteRequest) (*domain.Note, error) {
	now := s.now().UTC()

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	note := &domain.Note{
		ID:         uuid.New().String(),
		UserID:     userID,
		Title:      req.Title,
		Content:    req.Content,
		Tags:       append([]string{}, tags...),
		IsFavorite: req.IsFavorite,
		CreatedAt:  now,
		UpdatedAt:  now,
		Version:    1,
	}

	if err := s.repo.Create(ctx, note); err != nil {
		return nil, err
	}

	return note, nil
}

// List returns one page of the user's notes. Searches report the page
// length as the total, since counting matches is not cheap.
func (s *NoteService) List(ctx context.Context, userID string, page domain.Page, search string) (*domain.NoteList, error) {
	if err := ValidatePage(page); err != nil {
		return nil, err
	}

	var (
		notes []*domain.Note
		total int
		err   error
	)

	if search != "" {
		notes, err = s.repo.Search(ctx, userID, search, page)
		if err != nil {
			return nil, err
		}
		total = len(notes)
	} else {
		notes, err = s.repo.List(ctx, userID, page)
		if err != nil {
			return nil, err
		}
		total, err = s.repo.Count(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	if notes == nil {
		notes = []*domain.Note{}
	}

	return &domain.NoteList{
		Notes:   notes,
		Total:   total,
		Page:    page.Number(),
		PerPage: page.Limit,
	}, nil
}

func (s *NoteService) GetByID(ctx context.Context, userID, noteID string) (*domain.Note, error) {
	if err := validateNoteID(noteID); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, noteID, userID)
}

// Update applies a partial update. A version in the request makes it
// conditional; without one the write always lands, so callers that need
// strict concurrency control must send the version they last read.
func (s *NoteService) Update(ctx context.Context, userID, noteID string, req *domain.UpdateNoteRequest) (*domain.Note, error) {
	if err := validateNoteID(noteID); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, noteID, userID, req.Patch(), req.Version)
}

func (s *NoteService) Delete(ctx context.Context, userID, noteID string) error {
	if err := validateNoteID(noteID); err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, noteID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNoteNotFound
	}
	return nil
}

func ValidatePage(page domain.Page) error {
	if page.Offset < 0 {
		return domain.NewValidationError("skip", "must be greater than or equal to 0")
	}
	if page.Limit < 1 || page.Limit > domain.MaxPageLimit {
		return domain.NewValidationError("limit", fmt.Sprintf("must be between 1 and %d", domain.MaxPageLimit))
	}
	return nil
}

// validateNoteID accepts only the canonical form that ids are stored in.
func validateNoteID(noteID string) error {
	id, err := uuid.Parse(noteID)
	if err != nil || id.String() != noteID {
		return &domain.ValidationError{
			Fields: map[string]string{"note_id": "invalid note ID format"},
			Err:    domain.ErrInvalidID,
		}
	}
	return nil
}
