package domain

import "time"

const (
	MaxTitleLength = 200

	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

type Note struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Tags       []string  `json:"tags"`
	IsFavorite bool      `json:"is_favorite"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Version    int64     `json:"version"`
}

type CreateNoteRequest struct {
	Title      string   `json:"title" validate:"required,max=200"`
	Content    string   `json:"content"`
	Tags       []string `json:"tags"`
	IsFavorite bool     `json:"is_favorite"`
}

// UpdateNoteRequest is a partial update. Nil fields are left untouched.
// Version, when present, turns the update into a compare-and-swap.
type UpdateNoteRequest struct {
	Title      *string  `json:"title" validate:"omitempty,max=200"`
	Content    *string  `json:"content"`
	Tags       []string `json:"tags"`
	IsFavorite *bool    `json:"is_favorite"`
	Version    *int64   `json:"version" validate:"omitempty,min=1"`
}

func (r *UpdateNoteRequest) Patch() NotePatch {
	p := NotePatch{
		Title:      r.Title,
		Content:    r.Content,
		IsFavorite: r.IsFavorite,
	}
	if r.Tags != nil {
		tags := append([]string{}, r.Tags...)
		p.Tags = &tags
	}
	return p
}

// NotePatch holds the fields an update changes.
type NotePatch struct {
	Title      *string
	Content    *string
	Tags       *[]string
	IsFavorite *bool
}

func (p NotePatch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.Tags == nil && p.IsFavorite == nil
}

// Apply writes the patch onto n, refreshes UpdatedAt and bumps the version.
func (p NotePatch) Apply(n *Note, now time.Time) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Tags != nil {
		n.Tags = append([]string{}, (*p.Tags)...)
	}
	if p.IsFavorite != nil {
		n.IsFavorite = *p.IsFavorite
	}
	n.UpdatedAt = now
	n.Version++
}

type Page struct {
	Offset int
	Limit  int
}

func (p Page) Number() int {
	if p.Limit <= 0 {
		return 1
	}
	return p.Offset/p.Limit + 1
}

type NoteList struct {
	Notes   []*Note `json:"notes"`
	Total   int     `json:"total"`
	Page    int     `json:"page"`
	PerPage int     `json:"per_page"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
