package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"notes-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

// maxWriteAttempts bounds how often a write is retried after losing a
// revision race.
const maxWriteAttempts = 8

type NoteRepository interface {
	Create(ctx context.Context, note *domain.Note) error
	// FindByID returns domain.ErrNoteNotFound when the note is missing or
	// belongs to another owner.
	FindByID(ctx context.Context, noteID, ownerID string) (*domain.Note, error)
	// List returns the owner's notes, newest first.
	List(ctx context.Context, ownerID string, page domain.Page) ([]*domain.Note, error)
	Count(ctx context.Context, ownerID string) (int, error)
	// Search matches query case-insensitively against title, content and tags.
	Search(ctx context.Context, ownerID, query string, page domain.Page) ([]*domain.Note, error)
	// Update applies patch and bumps the version in one atomic write. With a
	// non-nil expectedVersion the write only happens if the stored version
	// still equals it, otherwise domain.ErrVersionConflict is returned.
	Update(ctx context.Context, noteID, ownerID string, patch domain.NotePatch, expectedVersion *int64) (*domain.Note, error)
	// Delete reports whether a note existed and was removed.
	Delete(ctx context.Context, noteID, ownerID string) (bool, error)
}

type noteRepository struct {
	store *Store
	now   func() time.Time
}

func NewNoteRepository(store *Store) NoteRepository {
	return &noteRepository{
		store: store,
		now:   time.Now,
	}
}

func (r *noteRepository) Create(ctx context.Context, note *domain.Note) error {
	db := r.store.DB()

	docID := noteDocID(note.ID)
	if _, err := db.Put(ctx, docID, newNoteDoc(note)); err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	return nil
}

func (r *noteRepository) FindByID(ctx context.Context, noteID, ownerID string) (*domain.Note, error) {
	doc, err := r.fetchOwned(ctx, noteID, ownerID)
	if err != nil {
		return nil, err
	}
	return doc.toDomain()
}

func (r *noteRepository) List(ctx context.Context, ownerID string, page domain.Page) ([]*domain.Note, error) {
	selector := map[string]interface{}{
		"type":    typeNote,
		"user_id": ownerID,
	}
	return r.find(ctx, selector, page)
}

func (r *noteRepository) Count(ctx context.Context, ownerID string) (int, error) {
	db := r.store.DB()

	rows := db.Query(ctx, notesDesignID, countView, kivik.Params(map[string]interface{}{
		"key":    ownerID,
		"reduce": true,
		"group":  true,
	}))
	defer rows.Close()

	count := 0
	if rows.Next() {
		if err := rows.ScanValue(&count); err != nil {
			return 0, fmt.Errorf("failed to scan note count: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to count notes: %w", err)
	}

	return count, nil
}

func (r *noteRepository) Search(ctx context.Context, ownerID, query string, page domain.Page) ([]*domain.Note, error) {
	pattern := "(?i)" + regexp.QuoteMeta(query)
	match := map[string]interface{}{"$regex": pattern}

	selector := map[string]interface{}{
		"type":    typeNote,
		"user_id": ownerID,
		"$or": []interface{}{
			map[string]interface{}{"title": match},
			map[string]interface{}{"content": match},
			map[string]interface{}{"tags": map[string]interface{}{"$elemMatch": match}},
		},
	}
	return r.find(ctx, selector, page)
}

// Update reads the current revision, checks ownership and version, then
// writes with that revision. CouchDB accepts the write only if the revision
// is still current, which makes the match-and-increment a single atomic
// step. A lost race is retried with a fresh read, so a concurrent delete
// surfaces as not found and a concurrent update as a version conflict.
func (r *noteRepository) Update(ctx context.Context, noteID, ownerID string, patch domain.NotePatch, expectedVersion *int64) (*domain.Note, error) {
	db := r.store.DB()
	docID := noteDocID(noteID)

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		current, err := r.fetchOwned(ctx, noteID, ownerID)
		if err != nil {
			return nil, err
		}

		if expectedVersion != nil && current.Version != *expectedVersion {
			return nil, domain.ErrVersionConflict
		}

		note, err := current.toDomain()
		if err != nil {
			return nil, err
		}
		patch.Apply(note, r.now().UTC())

		next := newNoteDoc(note)
		next.Rev = current.Rev

		if _, err := db.Put(ctx, docID, next); err != nil {
			if isConflict(err) {
				continue
			}
			return nil, fmt.Errorf("failed to update note: %w", err)
		}

		return note, nil
	}

	if expectedVersion != nil {
		return nil, domain.ErrVersionConflict
	}
	return nil, domain.ErrWriteContention
}

func (r *noteRepository) Delete(ctx context.Context, noteID, ownerID string) (bool, error) {
	db := r.store.DB()
	docID := noteDocID(noteID)

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		current, err := r.fetchOwned(ctx, noteID, ownerID)
		if errors.Is(err, domain.ErrNoteNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}

		if _, err := db.Delete(ctx, docID, current.Rev); err != nil {
			if isConflict(err) {
				continue
			}
			if isNotFound(err) {
				return false, nil
			}
			return false, fmt.Errorf("failed to delete note: %w", err)
		}

		return true, nil
	}

	return false, domain.ErrWriteContention
}

func (r *noteRepository) fetchOwned(ctx context.Context, noteID, ownerID string) (*noteDoc, error) {
	db := r.store.DB()

	var doc noteDoc
	if err := db.Get(ctx, noteDocID(noteID)).ScanDoc(&doc); err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to find note: %w", err)
	}

	if doc.Type != typeNote || doc.UserID != ownerID {
		return nil, domain.ErrNoteNotFound
	}

	return &doc, nil
}

func (r *noteRepository) find(ctx context.Context, selector map[string]interface{}, page domain.Page) ([]*domain.Note, error) {
	db := r.store.DB()

	query := map[string]interface{}{
		"selector": selector,
		"sort": []interface{}{
			map[string]string{"type": "desc"},
			map[string]string{"user_id": "desc"},
			map[string]string{"created_at": "desc"},
			map[string]string{"id": "desc"},
		},
		"use_index": []string{noteIndexDDoc, noteIndexName},
		"skip":      page.Offset,
		"limit":     page.Limit,
	}

	rows := db.Find(ctx, query)
	defer rows.Close()

	notes := make([]*domain.Note, 0, page.Limit)
	for rows.Next() {
		var doc noteDoc
		if err := rows.ScanDoc(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		note, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	return notes, nil
}
