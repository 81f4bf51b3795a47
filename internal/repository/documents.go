package repository

import (
	"encoding/base64"
	"fmt"
	"time"

	"notes-server/internal/domain"
)

const (
	typeUser       = "user"
	typeEmailClaim = "email_claim"
	typeNote       = "note"
)

// sortableTime has a fixed width, so Mango orders these strings by time.
const sortableTime = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(sortableTime)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(sortableTime, s)
}

func userDocID(id string) string {
	return fmt.Sprintf("user:%s", id)
}

// Emails are encoded so any address is a safe document id.
func emailDocID(email string) string {
	return fmt.Sprintf("email:%s", base64.RawURLEncoding.EncodeToString([]byte(email)))
}

func noteDocID(id string) string {
	return fmt.Sprintf("note:%s", id)
}

type userDoc struct {
	DocID        string  `json:"_id,omitempty"`
	Rev          string  `json:"_rev,omitempty"`
	Type         string  `json:"type"`
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	PasswordHash string  `json:"password_hash"`
	FullName     *string `json:"full_name"`
	CreatedAt    string  `json:"created_at"`
	IsActive     bool    `json:"is_active"`
}

func newUserDoc(u *domain.User) *userDoc {
	return &userDoc{
		DocID:        userDocID(u.ID),
		Type:         typeUser,
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FullName:     u.FullName,
		CreatedAt:    formatTime(u.CreatedAt),
		IsActive:     u.IsActive,
	}
}

func (d *userDoc) toDomain() (*domain.User, error) {
	createdAt, err := parseTime(d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at on user %s: %w", d.ID, err)
	}
	return &domain.User{
		ID:           d.ID,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		FullName:     d.FullName,
		CreatedAt:    createdAt,
		IsActive:     d.IsActive,
	}, nil
}

type emailClaimDoc struct {
	DocID     string `json:"_id,omitempty"`
	Rev       string `json:"_rev,omitempty"`
	Type      string `json:"type"`
	UserID    string `json:"user_id"`
	CreatedAt string `json:"created_at"`
}

type noteDoc struct {
	DocID      string   `json:"_id,omitempty"`
	Rev        string   `json:"_rev,omitempty"`
	Type       string   `json:"type"`
	ID         string   `json:"id"`
	UserID     string   `json:"user_id"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Tags       []string `json:"tags"`
	IsFavorite bool     `json:"is_favorite"`
	CreatedAt  string   `json:"created_at"`
	UpdatedAt  string   `json:"updated_at"`
	Version    int64    `json:"version"`
}

func newNoteDoc(n *domain.Note) *noteDoc {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return &noteDoc{
		DocID:      noteDocID(n.ID),
		Type:       typeNote,
		ID:         n.ID,
		UserID:     n.UserID,
		Title:      n.Title,
		Content:    n.Content,
		Tags:       tags,
		IsFavorite: n.IsFavorite,
		CreatedAt:  formatTime(n.CreatedAt),
		UpdatedAt:  formatTime(n.UpdatedAt),
		Version:    n.Version,
	}
}

func (d *noteDoc) toDomain() (*domain.Note, error) {
	createdAt, err := parseTime(d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at on note %s: %w", d.ID, err)
	}
	updatedAt, err := parseTime(d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid updated_at on note %s: %w", d.ID, err)
	}
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return &domain.Note{
		ID:         d.ID,
		UserID:     d.UserID,
		Title:      d.Title,
		Content:    d.Content,
		Tags:       tags,
		IsFavorite: d.IsFavorite,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
		Version:    d.Version,
	}, nil
}
