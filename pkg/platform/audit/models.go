package audit

import (
	"context"
	"time"

	id "hireline/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance.
	// These require durable storage and long retention.
	// Examples: candidate registration, duplicate detection, public intake.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring.
	// Examples: failed logins on recruiter accounts.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging and operational
	// visibility. These can be sampled with shorter retention.
	// Examples: posting lifecycle changes, pipeline stage moves.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time

	// CandidateID links the event to the affected candidate, when any.
	CandidateID id.CandidateID
	// Subject carries a secondary identifier: posting ID for posting events,
	// application ID for pipeline events, account email for auth events.
	Subject string
	Action  string
	// Detail holds an action-specific outcome, such as the composite score of
	// a duplicate match or the target stage of a pipeline move.
	Detail string

	// Enrichment from request context.
	RequestID string
	ActorID   string
	ClientIP  string
	Device    string
}

type AuditEvent string

const (
	// Candidate events
	EventCandidateCreated  AuditEvent = "candidate_created"
	EventDuplicateDetected AuditEvent = "duplicate_detected"

	// Application events
	EventApplicationSubmitted   AuditEvent = "application_submitted"
	EventApplicationStageMoved  AuditEvent = "application_stage_moved"
	EventApplicationReactivated AuditEvent = "application_reactivated"

	// Posting events
	EventPostingCreated   AuditEvent = "posting_created"
	EventPostingOpened    AuditEvent = "posting_opened"
	EventPostingSuspended AuditEvent = "posting_suspended"
	EventPostingClosed    AuditEvent = "posting_closed"
	EventPostingCancelled AuditEvent = "posting_cancelled"

	// Account events
	EventLoginSucceeded AuditEvent = "login_succeeded"
	EventLoginFailed    AuditEvent = "login_failed"
)

// eventCategories maps each audit event to its category.
// Compliance: candidate PII is involved, long retention required.
// Security: account access, feeds alerting.
// Operations: routine pipeline activity, can be sampled.
var eventCategories = map[AuditEvent]EventCategory{
	EventCandidateCreated:     CategoryCompliance,
	EventDuplicateDetected:    CategoryCompliance,
	EventApplicationSubmitted: CategoryCompliance,

	EventLoginSucceeded: CategorySecurity,
	EventLoginFailed:    CategorySecurity,

	EventApplicationStageMoved:  CategoryOperations,
	EventApplicationReactivated: CategoryOperations,
	EventPostingCreated:         CategoryOperations,
	EventPostingOpened:          CategoryOperations,
	EventPostingSuspended:       CategoryOperations,
	EventPostingClosed:          CategoryOperations,
	EventPostingCancelled:       CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events. Implementations must be safe for concurrent use.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByCandidate(ctx context.Context, candidateID id.CandidateID) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// Emitter is the narrow dependency domain services take on the audit
// subsystem. Compliance events are emitted fail-closed; the caller must
// abort its operation when Emit returns an error for one.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}
