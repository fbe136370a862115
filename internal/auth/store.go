package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inamate/animlib/internal/db"
)

var ErrUserNotFound = errors.New("user not found")

type UserRecord struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	CreatedAt    time.Time
}

type UserStore interface {
	CreateUser(ctx context.Context, u UserRecord) (*UserRecord, error)
	UserByEmail(ctx context.Context, email string) (*UserRecord, error)
	UserByID(ctx context.Context, id string) (*UserRecord, error)
}

// PGUserStore keeps users in the users table.
type PGUserStore struct {
	db db.DBTX
}

func NewPGUserStore(conn db.DBTX) *PGUserStore {
	return &PGUserStore{db: conn}
}

const userColumns = `id, email, password, display_name, created_at`

func (s *PGUserStore) CreateUser(ctx context.Context, u UserRecord) (*UserRecord, error) {
	row := s.db.QueryRow(ctx,
		`INSERT INTO users (id, email, password, display_name) VALUES ($1, $2, $3, $4) RETURNING `+userColumns,
		u.ID, u.Email, u.PasswordHash, u.DisplayName)
	out, err := scanUser(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return out, nil
}

func (s *PGUserStore) UserByEmail(ctx context.Context, email string) (*UserRecord, error) {
	return s.one(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (s *PGUserStore) UserByID(ctx context.Context, id string) (*UserRecord, error) {
	return s.one(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *PGUserStore) one(ctx context.Context, query string, arg string) (*UserRecord, error) {
	u, err := scanUser(s.db.QueryRow(ctx, query, arg))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*UserRecord, error) {
	var u UserRecord
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
