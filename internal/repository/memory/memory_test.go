package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"notes-server/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedNote(t *testing.T, repo *NoteRepository, ownerID, title string, createdAt time.Time) *domain.Note {
	t.Helper()
	note := &domain.Note{
		ID:        uuid.NewString(),
		UserID:    ownerID,
		Title:     title,
		Content:   "content of " + title,
		Tags:      []string{},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
		Version:   1,
	}
	require.NoError(t, repo.Create(context.Background(), note))
	return note
}

func ptr[T any](v T) *T {
	return &v
}

func TestUserRepository_EmailUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	first := &domain.User{ID: uuid.NewString(), Email: "a@example.com", IsActive: true}
	require.NoError(t, repo.Create(ctx, first))

	second := &domain.User{ID: uuid.NewString(), Email: "a@example.com", IsActive: true}
	assert.ErrorIs(t, repo.Create(ctx, second), domain.ErrEmailTaken)

	// Case-sensitive as stored.
	third := &domain.User{ID: uuid.NewString(), Email: "A@example.com", IsActive: true}
	assert.NoError(t, repo.Create(ctx, third))

	found, err := repo.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)

	_, err = repo.FindByID(ctx, second.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_SetActive(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	user := &domain.User{ID: uuid.NewString(), Email: "b@example.com", IsActive: true}
	require.NoError(t, repo.Create(ctx, user))
	require.NoError(t, repo.SetActive(user.ID, false))

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)

	assert.ErrorIs(t, repo.SetActive("missing", false), domain.ErrUserNotFound)
}

func TestNoteRepository_UpdateVersioning(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository()
	owner := uuid.NewString()
	note := seedNote(t, repo, owner, "A", time.Now().UTC())

	updated, err := repo.Update(ctx, note.ID, owner, domain.NotePatch{Title: ptr("B")}, ptr(int64(1)))
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, "B", updated.Title)
	assert.Equal(t, note.Content, updated.Content)
	assert.True(t, updated.UpdatedAt.After(note.UpdatedAt))

	_, err = repo.Update(ctx, note.ID, owner, domain.NotePatch{Title: ptr("C")}, ptr(int64(1)))
	assert.ErrorIs(t, err, domain.ErrVersionConflict)

	stored, err := repo.FindByID(ctx, note.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "B", stored.Title)
	assert.Equal(t, int64(2), stored.Version)

	unconditional, err := repo.Update(ctx, note.ID, owner, domain.NotePatch{}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), unconditional.Version)
}

func TestNoteRepository_OwnershipScoping(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository()
	owner := uuid.NewString()
	intruder := uuid.NewString()
	note := seedNote(t, repo, owner, "private", time.Now().UTC())

	_, err := repo.FindByID(ctx, note.ID, intruder)
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)

	_, err = repo.Update(ctx, note.ID, intruder, domain.NotePatch{Title: ptr("x")}, ptr(int64(1)))
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)

	deleted, err := repo.Delete(ctx, note.ID, intruder)
	require.NoError(t, err)
	assert.False(t, deleted)

	stored, err := repo.FindByID(ctx, note.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)
}

func TestNoteRepository_DeleteIsTerminal(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository()
	owner := uuid.NewString()
	note := seedNote(t, repo, owner, "gone", time.Now().UTC())

	deleted, err := repo.Delete(ctx, note.ID, owner)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = repo.FindByID(ctx, note.ID, owner)
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)

	_, err = repo.Update(ctx, note.ID, owner, domain.NotePatch{}, ptr(int64(1)))
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)

	deleted, err = repo.Delete(ctx, note.ID, owner)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestNoteRepository_ListPagination(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository()
	owner := uuid.NewString()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 7; i++ {
		seedNote(t, repo, owner, fmt.Sprintf("note-%d", i), base.Add(time.Duration(i)*time.Minute))
	}
	seedNote(t, repo, uuid.NewString(), "someone else", base.Add(time.Hour))

	count, err := repo.Count(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 7, count)

	var titles []string
	for offset := 0; offset < 9; offset += 3 {
		page, err := repo.List(ctx, owner, domain.Page{Offset: offset, Limit: 3})
		require.NoError(t, err)
		for _, n := range page {
			titles = append(titles, n.Title)
		}
	}

	assert.Equal(t, []string{"note-6", "note-5", "note-4", "note-3", "note-2", "note-1", "note-0"}, titles)
}

func TestNoteRepository_Search(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository()
	owner := uuid.NewString()
	now := time.Now().UTC()

	byTitle := seedNote(t, repo, owner, "FOOd list", now)
	byContent := seedNote(t, repo, owner, "misc", now.Add(time.Second))
	_, err := repo.Update(ctx, byContent.ID, owner, domain.NotePatch{Content: ptr("has a Foo inside")}, nil)
	require.NoError(t, err)
	byTag := seedNote(t, repo, owner, "tagged", now.Add(2*time.Second))
	_, err = repo.Update(ctx, byTag.ID, owner, domain.NotePatch{Tags: &[]string{"work", "foobar"}}, nil)
	require.NoError(t, err)
	seedNote(t, repo, owner, "unrelated", now.Add(3*time.Second))
	seedNote(t, repo, uuid.NewString(), "foo from another user", now)

	found, err := repo.Search(ctx, owner, "foo", domain.Page{Offset: 0, Limit: 50})
	require.NoError(t, err)

	ids := make([]string, 0, len(found))
	for _, n := range found {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{byTag.ID, byContent.ID, byTitle.ID}, ids)
}

func TestNoteRepository_ConcurrentConditionalUpdates(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository()
	owner := uuid.NewString()
	note := seedNote(t, repo, owner, "race", time.Now().UTC())

	const writers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Update(ctx, note.ID, owner, domain.NotePatch{Title: ptr(fmt.Sprintf("w%d", i))}, ptr(int64(1)))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, domain.ErrVersionConflict):
				conflicts++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, writers-1, conflicts)

	stored, err := repo.FindByID(ctx, note.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.Version)
}

func TestNoteRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository()
	owner := uuid.NewString()
	note := seedNote(t, repo, owner, "copy", time.Now().UTC())

	got, err := repo.FindByID(ctx, note.ID, owner)
	require.NoError(t, err)
	got.Title = "mutated"
	got.Tags = append(got.Tags, "leak")

	again, err := repo.FindByID(ctx, note.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "copy", again.Title)
	assert.Empty(t, again.Tags)
}
