package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-kivik/kivik/v4"
	_ "github.com/go-kivik/kivik/v4/couchdb"
)

const (
	noteIndexDDoc = "notes-idx"
	noteIndexName = "by-owner-created"

	notesDesignID = "_design/notes"
	countView     = "_view/by_owner"
)

// Store owns the CouchDB client shared by every repository. It is built once
// at startup and closed at shutdown.
type Store struct {
	client *kivik.Client
	dbName string
}

func NewStore(client *kivik.Client, dbName string) *Store {
	return &Store{client: client, dbName: dbName}
}

func OpenCouch(ctx context.Context, url, dbName string) (*Store, error) {
	client, err := kivik.New("couch", url)
	if err != nil {
		return nil, fmt.Errorf("failed to create CouchDB client: %w", err)
	}

	up, err := client.Ping(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reach CouchDB: %w", err)
	}
	if !up {
		return nil, errors.New("CouchDB is not ready")
	}

	return NewStore(client, dbName), nil
}

func (s *Store) DB() *kivik.DB {
	return s.client.DB(s.dbName)
}

func (s *Store) Name() string {
	return s.dbName
}

// Setup creates the database, the Mango index used for owner-scoped listing
// and the view that counts notes per owner. It is safe to run repeatedly.
func (s *Store) Setup(ctx context.Context) error {
	exists, err := s.client.DBExists(ctx, s.dbName)
	if err != nil {
		return fmt.Errorf("failed to check database existence: %w", err)
	}
	if !exists {
		if err := s.client.CreateDB(ctx, s.dbName); err != nil && kivik.HTTPStatus(err) != http.StatusPreconditionFailed {
			return fmt.Errorf("failed to create database: %w", err)
		}
	}

	db := s.DB()

	index := map[string]interface{}{
		"fields": []string{"type", "user_id", "created_at", "id"},
	}
	if err := db.CreateIndex(ctx, noteIndexDDoc, noteIndexName, index); err != nil {
		return fmt.Errorf("failed to create note index: %w", err)
	}

	design := map[string]interface{}{
		"language": "javascript",
		"views": map[string]interface{}{
			"by_owner": map[string]interface{}{
				"map":    "function (doc) { if (doc.type === 'note') { emit(doc.user_id, null); } }",
				"reduce": "_count",
			},
		},
	}
	if _, err := db.Put(ctx, notesDesignID, design); err != nil && kivik.HTTPStatus(err) != http.StatusConflict {
		return fmt.Errorf("failed to create notes design document: %w", err)
	}

	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func isNotFound(err error) bool {
	return kivik.HTTPStatus(err) == http.StatusNotFound
}

func isConflict(err error) bool {
	return kivik.HTTPStatus(err) == http.StatusConflict
}
