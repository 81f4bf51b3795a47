// Package memory implements the repositories on process memory. Every store
// is isolated, which makes it the backend for tests and for running the
// server without CouchDB.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"notes-server/internal/domain"
	"notes-server/internal/repository"
)

var (
	_ repository.UserRepository = (*UserRepository)(nil)
	_ repository.NoteRepository = (*NoteRepository)(nil)
)

type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*domain.User
	byEmail map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

type NoteRepository struct {
	mu    sync.RWMutex
	notes map[string]*domain.Note
	now   func() time.Time
}

func NewNoteRepository() *NoteRepository {
	return &NoteRepository{
		notes: make(map[string]*domain.Note),
		now:   time.Now,
	}
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	if u.FullName != nil {
		name := *u.FullName
		c.FullName = &name
	}
	return &c
}

func copyNote(n *domain.Note) *domain.Note {
	c := *n
	c.Tags = append([]string{}, n.Tags...)
	return &c
}

func newestFirst(notes []*domain.Note) {
	sort.Slice(notes, func(i, j int) bool {
		if notes[i].CreatedAt.Equal(notes[j].CreatedAt) {
			return notes[i].ID > notes[j].ID
		}
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})
}

func paginate(notes []*domain.Note, page domain.Page) []*domain.Note {
	if page.Offset >= len(notes) {
		return []*domain.Note{}
	}
	end := len(notes)
	if page.Limit > 0 && page.Offset+page.Limit < end {
		end = page.Offset + page.Limit
	}
	out := make([]*domain.Note, 0, end-page.Offset)
	for _, n := range notes[page.Offset:end] {
		out = append(out, copyNote(n))
	}
	return out
}

func matches(n *domain.Note, needle string) bool {
	if strings.Contains(strings.ToLower(n.Title), needle) ||
		strings.Contains(strings.ToLower(n.Content), needle) {
		return true
	}
	for _, tag := range n.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}
