package asset

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inamate/animlib/internal/db"
)

var ErrNotFound = errors.New("asset not found")

// Asset is the metadata of one stored file. File is the name scene
// scripts use to reference it.
type Asset struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	File        string    `json:"file"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Store interface {
	Create(ctx context.Context, a *Asset) error
	Get(ctx context.Context, id string) (*Asset, error)
}

// PGStore keeps asset metadata in the assets table; the bytes live on disk.
type PGStore struct {
	db db.DBTX
}

func NewPGStore(conn db.DBTX) *PGStore {
	return &PGStore{db: conn}
}

func (s *PGStore) Create(ctx context.Context, a *Asset) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO assets (id, owner_id, filename, content_type, size)
		 VALUES ($1, $2, $3, $4, $5) RETURNING created_at`,
		a.ID, a.OwnerID, a.Name, a.ContentType, a.Size).Scan(&a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert asset: %w", err)
	}
	return nil
}

func (s *PGStore) Get(ctx context.Context, id string) (*Asset, error) {
	a := Asset{ID: id}
	err := s.db.QueryRow(ctx,
		`SELECT owner_id, filename, content_type, size, created_at FROM assets WHERE id = $1`, id).
		Scan(&a.OwnerID, &a.Name, &a.ContentType, &a.Size, &a.CreatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select asset: %w", err)
	}
	a.File = a.ID + extension(a.ContentType)
	return &a, nil
}
