package job

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/inamate/animlib/internal/db"
)

// Store persists jobs. Implementations return ErrNotFound for unknown ids.
type Store interface {
	Create(ctx context.Context, j *Job) error
	Get(ctx context.Context, id string) (*Job, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Job, error)
	ListByStatus(ctx context.Context, status Status) ([]Job, error)
	SetStatus(ctx context.Context, id string, status Status, errMsg string) error
	// Transition moves a job from one status to another and reports
	// whether the job was still in the from status.
	Transition(ctx context.Context, id string, from, to Status) (bool, error)
	SetProgress(ctx context.Context, id string, done, total int) error
}

// PGStore keeps jobs in the render_jobs table.
type PGStore struct {
	db db.DBTX
}

func NewPGStore(conn db.DBTX) *PGStore {
	return &PGStore{db: conn}
}

const jobColumns = `id, owner_id, status, format, scene, frames_done, frames_total, error, created_at, updated_at`

func (s *PGStore) Create(ctx context.Context, j *Job) error {
	row := s.db.QueryRow(ctx,
		`INSERT INTO render_jobs (id, owner_id, status, format, scene, frames_total)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at`,
		j.ID, j.OwnerID, j.Status, j.Format, []byte(j.Scene), j.FramesTotal)
	if err := row.Scan(&j.CreatedAt, &j.UpdatedAt); err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (s *PGStore) Get(ctx context.Context, id string) (*Job, error) {
	j, err := scanJob(s.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM render_jobs WHERE id = $1`, id))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select job: %w", err)
	}
	return j, nil
}

func (s *PGStore) ListByOwner(ctx context.Context, ownerID string) ([]Job, error) {
	return s.list(ctx, `SELECT `+jobColumns+` FROM render_jobs WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
}

func (s *PGStore) ListByStatus(ctx context.Context, status Status) ([]Job, error) {
	return s.list(ctx, `SELECT `+jobColumns+` FROM render_jobs WHERE status = $1 ORDER BY created_at`, status)
}

func (s *PGStore) list(ctx context.Context, query string, arg any) ([]Job, error) {
	rows, err := s.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	jobs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Job, error) {
		j, err := scanJob(row)
		if err != nil {
			return Job{}, err
		}
		return *j, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan jobs: %w", err)
	}
	return jobs, nil
}

func (s *PGStore) SetStatus(ctx context.Context, id string, status Status, errMsg string) error {
	return s.update(ctx,
		`UPDATE render_jobs SET status = $2, error = $3, updated_at = now() WHERE id = $1`,
		id, status, errMsg)
}

func (s *PGStore) Transition(ctx context.Context, id string, from, to Status) (bool, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE render_jobs SET status = $3, error = '', updated_at = now() WHERE id = $1 AND status = $2`,
		id, from, to)
	if err != nil {
		return false, fmt.Errorf("update job status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) SetProgress(ctx context.Context, id string, done, total int) error {
	return s.update(ctx,
		`UPDATE render_jobs SET frames_done = $2, frames_total = $3, updated_at = now() WHERE id = $1`,
		id, done, total)
}

func (s *PGStore) update(ctx context.Context, query string, args ...any) error {
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (*Job, error) {
	var (
		j     Job
		scene []byte
	)
	err := row.Scan(&j.ID, &j.OwnerID, &j.Status, &j.Format, &scene,
		&j.FramesDone, &j.FramesTotal, &j.Error, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	j.Scene = scene
	return &j, nil
}
