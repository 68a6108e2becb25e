package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "hireline/pkg/domain"
	audit "hireline/pkg/platform/audit"
	txcontext "hireline/pkg/platform/tx"
)

// Store implements audit.Store on PostgreSQL. Events append into the
// audit_events table; reads order by timestamp descending.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Append writes an audit event. The category is always re-derived from the
// action so the eventCategories map stays the single source of truth.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	category := audit.AuditEvent(event.Action).Category()

	var candidateID *uuid.UUID
	if !event.CandidateID.IsNil() {
		cid := uuid.UUID(event.CandidateID)
		candidateID = &cid
	}

	query := `
		INSERT INTO audit_events (
			id, category, timestamp, candidate_id, subject, action,
			detail, request_id, actor_id, client_ip, device
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.New(),
		string(category),
		event.Timestamp,
		candidateID,
		event.Subject,
		event.Action,
		event.Detail,
		event.RequestID,
		event.ActorID,
		event.ClientIP,
		event.Device,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByCandidate returns events for a specific candidate.
func (s *Store) ListByCandidate(ctx context.Context, candidateID id.CandidateID) ([]audit.Event, error) {
	query := `
		SELECT category, timestamp, candidate_id, subject, action,
			   detail, request_id, actor_id, client_ip, device
		FROM audit_events
		WHERE candidate_id = $1
		ORDER BY timestamp DESC
	`

	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(candidateID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return s.scanEvents(rows)
}

// ListRecent returns the N most recent events.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	query := `
		SELECT category, timestamp, candidate_id, subject, action,
			   detail, request_id, actor_id, client_ip, device
		FROM audit_events
		ORDER BY timestamp DESC
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return s.scanEvents(rows)
}

func (s *Store) scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event

	for rows.Next() {
		var (
			category            string
			event               audit.Event
			candidateIDNullable *uuid.UUID
		)

		err := rows.Scan(
			&category,
			&event.Timestamp,
			&candidateIDNullable,
			&event.Subject,
			&event.Action,
			&event.Detail,
			&event.RequestID,
			&event.ActorID,
			&event.ClientIP,
			&event.Device,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}

		event.Category = audit.EventCategory(category)
		if candidateIDNullable != nil {
			event.CandidateID = id.CandidateID(*candidateIDNullable)
		}

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}

	return events, nil
}
