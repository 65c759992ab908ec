// internal/storage/storage.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/watit-thammarat/imagini/internal/models"
)

// ErrNotFound is returned when no record matches the lookup.
var ErrNotFound = errors.New("image not found")

type Storage struct {
	pool *pgxpool.Pool
}

// NewStorage connects, verifies the connection and applies migrations.
// The caller must not serve traffic if this fails.
func NewStorage(ctx context.Context, dsn string) (*Storage, error) {
	const op = "storage.NewStorage"

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db := stdlib.OpenDBFromPool(pool)
	if err := runMigrations(db); err != nil {
		db.Close()
		pool.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := db.Close(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
}

// Insert stores a new record. The id is assigned here, date_created by the
// database. A duplicate name surfaces as a unique-violation PgError.
func (s *Storage) Insert(ctx context.Context, name string, data []byte) (*models.Image, error) {
	const op = "storage.Insert"

	img := models.Image{
		ID:   uuid.New(),
		Name: name,
		Size: int64(len(data)),
		Data: data,
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO images (id, name, size, data) VALUES ($1, $2, $3, $4)
		 RETURNING date_created`,
		img.ID, img.Name, img.Size, img.Data).Scan(&img.DateCreated)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &img, nil
}

func (s *Storage) GetByName(ctx context.Context, name string) (*models.Image, error) {
	const op = "storage.GetByName"

	var img models.Image
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, size, data, date_created, date_used
		 FROM images WHERE name = $1`,
		name).Scan(&img.ID, &img.Name, &img.Size, &img.Data, &img.DateCreated, &img.DateUsed)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &img, nil
}

// TouchUsed marks the record as used now. Issued fire-and-forget on download.
func (s *Storage) TouchUsed(ctx context.Context, id uuid.UUID) error {
	const op = "storage.TouchUsed"

	_, err := s.pool.Exec(ctx, `UPDATE images SET date_used = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteByID removes a record. Deleting an already-removed record is not an
// error; concurrent deletes race benignly.
func (s *Storage) DeleteByID(ctx context.Context, id uuid.UUID) error {
	const op = "storage.DeleteByID"

	_, err := s.pool.Exec(ctx, `DELETE FROM images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Stats returns the aggregate over all records. Uptime is filled by the caller.
func (s *Storage) Stats(ctx context.Context) (*models.Stats, error) {
	const op = "storage.Stats"

	var st models.Stats
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(size), 0)::bigint, MAX(date_used) FROM images`).
		Scan(&st.Total, &st.Size, &st.LastUsed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &st, nil
}

// PurgeExpired deletes records never used and created before now-createdTTL,
// plus records last used before now-usedTTL. Returns the number removed.
func (s *Storage) PurgeExpired(ctx context.Context, createdTTL, usedTTL time.Duration) (int64, error) {
	const op = "storage.PurgeExpired"

	now := time.Now().UTC()
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM images
		 WHERE (date_used IS NULL AND date_created < $1) OR (date_used < $2)`,
		now.Add(-createdTTL), now.Add(-usedTTL))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return tag.RowsAffected(), nil
}

// ErrorCode extracts the Postgres error code ("23505" for a duplicate name)
// for the upload error payload. Non-Postgres failures map to "unknown".
func ErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return "unknown"
}
