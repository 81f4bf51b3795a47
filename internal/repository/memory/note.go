package memory

import (
	"context"
	"strings"

	"notes-server/internal/domain"
)

func (r *NoteRepository) Create(_ context.Context, note *domain.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notes[note.ID] = copyNote(note)
	return nil
}

func (r *NoteRepository) FindByID(_ context.Context, noteID, ownerID string) (*domain.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	note := r.lookup(noteID, ownerID)
	if note == nil {
		return nil, domain.ErrNoteNotFound
	}
	return copyNote(note), nil
}

func (r *NoteRepository) List(_ context.Context, ownerID string, page domain.Page) ([]*domain.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return paginate(r.owned(ownerID, nil), page), nil
}

func (r *NoteRepository) Count(_ context.Context, ownerID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.owned(ownerID, nil)), nil
}

func (r *NoteRepository) Search(_ context.Context, ownerID, query string, page domain.Page) ([]*domain.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(query)
	return paginate(r.owned(ownerID, func(n *domain.Note) bool { return matches(n, needle) }), page), nil
}

// Update matches on (id, owner) and, when expectedVersion is set, on the
// version too. A note that exists for this owner but fails the version
// predicate is a conflict; anything else that fails to match is not found.
func (r *NoteRepository) Update(_ context.Context, noteID, ownerID string, patch domain.NotePatch, expectedVersion *int64) (*domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	note := r.lookup(noteID, ownerID)
	if note == nil {
		return nil, domain.ErrNoteNotFound
	}
	if expectedVersion != nil && note.Version != *expectedVersion {
		return nil, domain.ErrVersionConflict
	}

	patch.Apply(note, r.now().UTC())
	return copyNote(note), nil
}

func (r *NoteRepository) Delete(_ context.Context, noteID, ownerID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lookup(noteID, ownerID) == nil {
		return false, nil
	}
	delete(r.notes, noteID)
	return true, nil
}

func (r *NoteRepository) lookup(noteID, ownerID string) *domain.Note {
	note, ok := r.notes[noteID]
	if !ok || note.UserID != ownerID {
		return nil
	}
	return note
}

func (r *NoteRepository) owned(ownerID string, keep func(*domain.Note) bool) []*domain.Note {
	var notes []*domain.Note
	for _, n := range r.notes {
		if n.UserID != ownerID {
			continue
		}
		if keep != nil && !keep(n) {
			continue
		}
		notes = append(notes, n)
	}
	newestFirst(notes)
	return notes
}
