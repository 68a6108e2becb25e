package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"hireline/internal/account/models"
	id "hireline/pkg/domain"
	"hireline/pkg/platform/sentinel"
	txcontext "hireline/pkg/platform/tx"
)

// Store implements account persistence on PostgreSQL.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const uniqueViolation = "23505"

func (s *Store) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(account.ID),
		account.Email,
		account.PasswordHash,
		account.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

const selectColumns = `id, email, password_hash, created_at`

func (s *Store) Get(ctx context.Context, accountID id.AccountID) (*models.Account, error) {
	query := `SELECT ` + selectColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(accountID)))
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + selectColumns + ` FROM accounts WHERE email = $1`
	return scanAccount(s.execer(ctx).QueryRowContext(ctx, query, email))
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	var (
		rawID   uuid.UUID
		account models.Account
	)
	err := row.Scan(&rawID, &account.Email, &account.PasswordHash, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}
	account.ID = id.AccountID(rawID)
	return &account, nil
}
