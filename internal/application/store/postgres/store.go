package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"hireline/internal/application/models"
	id "hireline/pkg/domain"
	"hireline/pkg/platform/sentinel"
	txcontext "hireline/pkg/platform/tx"
)

// Store implements application persistence on PostgreSQL. The movement
// history lives in a JSONB column; the board never queries inside it.
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

func (s *Store) Create(ctx context.Context, application *models.Application) error {
	history, err := json.Marshal(application.History)
	if err != nil {
		return fmt.Errorf("marshal application history: %w", err)
	}

	query := `
		INSERT INTO applications (
			id, candidate_id, posting_id, stage, history, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(application.ID),
		uuid.UUID(application.CandidateID),
		uuid.UUID(application.PostingID),
		string(application.Stage),
		history,
		application.CreatedAt,
		application.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

const selectColumns = `
	id, candidate_id, posting_id, stage, history, created_at, updated_at
`

func (s *Store) Get(ctx context.Context, applicationID id.ApplicationID) (*models.Application, error) {
	query := `SELECT ` + selectColumns + ` FROM applications WHERE id = $1`
	return scanApplication(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(applicationID)))
}

func (s *Store) GetByCandidateAndPosting(ctx context.Context, candidateID id.CandidateID, postingID id.PostingID) (*models.Application, error) {
	query := `SELECT ` + selectColumns + ` FROM applications WHERE candidate_id = $1 AND posting_id = $2`
	return scanApplication(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(candidateID), uuid.UUID(postingID)))
}

func (s *Store) ListByPosting(ctx context.Context, postingID id.PostingID) ([]*models.Application, error) {
	query := `SELECT ` + selectColumns + ` FROM applications WHERE posting_id = $1 ORDER BY created_at, id`
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(postingID))
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}
	defer rows.Close()

	var out []*models.Application
	for rows.Next() {
		application, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, application)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, application *models.Application) error {
	history, err := json.Marshal(application.History)
	if err != nil {
		return fmt.Errorf("marshal application history: %w", err)
	}

	query := `
		UPDATE applications
		SET stage = $2, history = $3, updated_at = $4
		WHERE id = $1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(application.ID),
		string(application.Stage),
		history,
		application.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var (
		rawID       uuid.UUID
		candidateID uuid.UUID
		postingID   uuid.UUID
		stage       string
		history     []byte
		application models.Application
	)
	err := row.Scan(
		&rawID,
		&candidateID,
		&postingID,
		&stage,
		&history,
		&application.CreatedAt,
		&application.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan application: %w", err)
	}

	if len(history) > 0 {
		if err := json.Unmarshal(history, &application.History); err != nil {
			return nil, fmt.Errorf("unmarshal application history: %w", err)
		}
	}
	application.ID = id.ApplicationID(rawID)
	application.CandidateID = id.CandidateID(candidateID)
	application.PostingID = id.PostingID(postingID)
	application.Stage = models.Stage(stage)
	return &application, nil
}
