package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"hireline/internal/candidate/models"
	id "hireline/pkg/domain"
	"hireline/pkg/platform/sentinel"
	txcontext "hireline/pkg/platform/tx"
)

// Store implements candidate persistence on PostgreSQL.
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

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func (s *Store) Create(ctx context.Context, candidate *models.Candidate) error {
	query := `
		INSERT INTO candidates (
			id, national_id, given_names, paternal_surname, maternal_surname,
			email, phone, source, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(candidate.ID),
		candidate.NationalID,
		candidate.GivenNames,
		candidate.PaternalSurname,
		candidate.MaternalSurname,
		candidate.Email,
		candidate.Phone,
		candidate.Source,
		candidate.CreatedAt,
		candidate.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert candidate: %w", err)
	}
	return nil
}

const selectColumns = `
	id, national_id, given_names, paternal_surname, maternal_surname,
	email, phone, source, created_at, updated_at
`

func (s *Store) Get(ctx context.Context, candidateID id.CandidateID) (*models.Candidate, error) {
	query := `SELECT ` + selectColumns + ` FROM candidates WHERE id = $1`
	row := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(candidateID))
	return scanCandidate(row)
}

func (s *Store) GetByNationalID(ctx context.Context, nationalID string) (*models.Candidate, error) {
	query := `SELECT ` + selectColumns + ` FROM candidates WHERE national_id = $1`
	row := s.execer(ctx).QueryRowContext(ctx, query, nationalID)
	return scanCandidate(row)
}

func (s *Store) List(ctx context.Context) ([]*models.Candidate, error) {
	query := `SELECT ` + selectColumns + ` FROM candidates ORDER BY created_at, id`
	rows, err := s.execer(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var out []*models.Candidate
	for rows.Next() {
		candidate, err := scanCandidateRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, candidate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, candidate *models.Candidate) error {
	query := `
		UPDATE candidates
		SET national_id = $2, given_names = $3, paternal_surname = $4,
			maternal_surname = $5, email = $6, phone = $7, updated_at = $8
		WHERE id = $1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(candidate.ID),
		candidate.NationalID,
		candidate.GivenNames,
		candidate.PaternalSurname,
		candidate.MaternalSurname,
		candidate.Email,
		candidate.Phone,
		candidate.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update candidate: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update candidate: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row *sql.Row) (*models.Candidate, error) {
	candidate, err := scanCandidateRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return candidate, err
}

func scanCandidateRow(row rowScanner) (*models.Candidate, error) {
	var (
		rawID     uuid.UUID
		candidate models.Candidate
	)
	err := row.Scan(
		&rawID,
		&candidate.NationalID,
		&candidate.GivenNames,
		&candidate.PaternalSurname,
		&candidate.MaternalSurname,
		&candidate.Email,
		&candidate.Phone,
		&candidate.Source,
		&candidate.CreatedAt,
		&candidate.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan candidate: %w", err)
	}
	candidate.ID = id.CandidateID(rawID)
	return &candidate, nil
}
