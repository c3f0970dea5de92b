package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ryanekas417-dev/botenak2/pkg/mediagate"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements mediagate.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) mediagate.Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) mediagate.Repository {
	return &Repository{db: pool}
}

// handlePostgresError maps low-level driver errors into the domain taxonomy
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return mediagate.ErrDuplicateCode
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// Record operations

func (r *Repository) PutRecord(ctx context.Context, record *mediagate.MediaRecord) error {
	query := `
		INSERT INTO media_record (code, payload_ref, kind, title, backup_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		record.Code, record.PayloadRef, string(record.Kind),
		record.Title, record.BackupRef, record.CreatedAt)

	if err != nil {
		return r.handlePostgresError("put record", err)
	}

	return nil
}

func (r *Repository) GetRecord(ctx context.Context, code string) (*mediagate.MediaRecord, error) {
	query := `
        SELECT code, payload_ref, kind, title, backup_ref, created_at
        FROM media_record WHERE code = $1`

	var record mediagate.MediaRecord
	var kind string
	err := r.db.QueryRow(ctx, query, code).Scan(
		&record.Code, &record.PayloadRef, &kind,
		&record.Title, &record.BackupRef, &record.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, mediagate.ErrRecordNotFound
		}
		return nil, r.handlePostgresError("get record", err)
	}

	record.Kind = mediagate.MediaKind(kind)
	return &record, nil
}

// Settings operations

func (r *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	query := `SELECT value FROM setting WHERE key = $1`

	var value string
	err := r.db.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", mediagate.ErrSettingNotFound
		}
		return "", r.handlePostgresError("get setting", err)
	}

	return value, nil
}

func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	// Last-write-wins; serialization of concurrent writes is delegated to
	// the storage engine.
	query := `
		INSERT INTO setting (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	_, err := r.db.Exec(ctx, query, key, value)
	if err != nil {
		return r.handlePostgresError("set setting", err)
	}

	return nil
}
