package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"hireline/internal/posting/models"
	id "hireline/pkg/domain"
	"hireline/pkg/platform/sentinel"
	txcontext "hireline/pkg/platform/tx"
)

// Store implements posting persistence on PostgreSQL.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Store) Create(ctx context.Context, posting *models.Posting) error {
	query := `
		INSERT INTO postings (
			id, title, description, area, location, status,
			created_by, created_at, updated_at, opened_at, closed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(posting.ID),
		posting.Title,
		posting.Description,
		posting.Area,
		posting.Location,
		string(posting.Status),
		uuid.UUID(posting.CreatedBy),
		posting.CreatedAt,
		posting.UpdatedAt,
		posting.OpenedAt,
		posting.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("insert posting: %w", err)
	}
	return nil
}

const selectColumns = `
	id, title, description, area, location, status,
	created_by, created_at, updated_at, opened_at, closed_at
`

func (s *Store) Get(ctx context.Context, postingID id.PostingID) (*models.Posting, error) {
	query := `SELECT ` + selectColumns + ` FROM postings WHERE id = $1`
	return scanPosting(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(postingID)))
}

func (s *Store) List(ctx context.Context) ([]*models.Posting, error) {
	query := `SELECT ` + selectColumns + ` FROM postings ORDER BY created_at, id`
	rows, err := s.execer(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query postings: %w", err)
	}
	defer rows.Close()

	var out []*models.Posting
	for rows.Next() {
		posting, err := scanPosting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, posting)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate postings: %w", err)
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, posting *models.Posting) error {
	query := `
		UPDATE postings
		SET title = $2, description = $3, area = $4, location = $5,
			status = $6, updated_at = $7, opened_at = $8, closed_at = $9
		WHERE id = $1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(posting.ID),
		posting.Title,
		posting.Description,
		posting.Area,
		posting.Location,
		string(posting.Status),
		posting.UpdatedAt,
		posting.OpenedAt,
		posting.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("update posting: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update posting: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPosting(row rowScanner) (*models.Posting, error) {
	var (
		rawID     uuid.UUID
		createdBy uuid.UUID
		status    string
		posting   models.Posting
	)
	err := row.Scan(
		&rawID,
		&posting.Title,
		&posting.Description,
		&posting.Area,
		&posting.Location,
		&status,
		&createdBy,
		&posting.CreatedAt,
		&posting.UpdatedAt,
		&posting.OpenedAt,
		&posting.ClosedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan posting: %w", err)
	}
	posting.ID = id.PostingID(rawID)
	posting.CreatedBy = id.AccountID(createdBy)
	posting.Status = models.Status(status)
	return &posting, nil
}
