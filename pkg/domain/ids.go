// Package domain holds the typed identifiers shared across domains.
//
// IDs are distinct types over uuid.UUID so the compiler rejects cross-type
// assignment (an ApplicationID can never be passed where a CandidateID is
// expected). Parsing enforces the trust-boundary invariant that IDs are
// valid, non-nil UUIDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "hireline/pkg/domain-errors"
)

type (
	// CandidateID identifies a candidate record.
	CandidateID uuid.UUID
	// PostingID identifies a job posting (convocatoria).
	PostingID uuid.UUID
	// ApplicationID identifies a candidate's application to one posting.
	ApplicationID uuid.UUID
	// AccountID identifies a recruiter dashboard account.
	AccountID uuid.UUID
)

func (id CandidateID) String() string   { return uuid.UUID(id).String() }
func (id PostingID) String() string     { return uuid.UUID(id).String() }
func (id ApplicationID) String() string { return uuid.UUID(id).String() }
func (id AccountID) String() string     { return uuid.UUID(id).String() }

func (id CandidateID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id PostingID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id ApplicationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id AccountID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }

// Typed IDs render as canonical UUID strings in JSON.

func (id CandidateID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id PostingID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id ApplicationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id AccountID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }

func (id *CandidateID) UnmarshalText(text []byte) error {
	parsed, err := ParseCandidateID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *PostingID) UnmarshalText(text []byte) error {
	parsed, err := ParsePostingID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *ApplicationID) UnmarshalText(text []byte) error {
	parsed, err := ParseApplicationID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *AccountID) UnmarshalText(text []byte) error {
	parsed, err := ParseAccountID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// parseUUID enforces the shared parsing invariant for all typed IDs.
func parseUUID(raw, kind string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id cannot be the nil UUID")
	}
	return parsed, nil
}

// ParseCandidateID parses and validates a candidate ID from its string form.
func ParseCandidateID(raw string) (CandidateID, error) {
	parsed, err := parseUUID(raw, "candidate")
	if err != nil {
		return CandidateID{}, err
	}
	return CandidateID(parsed), nil
}

// ParsePostingID parses and validates a posting ID from its string form.
func ParsePostingID(raw string) (PostingID, error) {
	parsed, err := parseUUID(raw, "posting")
	if err != nil {
		return PostingID{}, err
	}
	return PostingID(parsed), nil
}

// ParseApplicationID parses and validates an application ID from its string form.
func ParseApplicationID(raw string) (ApplicationID, error) {
	parsed, err := parseUUID(raw, "application")
	if err != nil {
		return ApplicationID{}, err
	}
	return ApplicationID(parsed), nil
}

// ParseAccountID parses and validates an account ID from its string form.
func ParseAccountID(raw string) (AccountID, error) {
	parsed, err := parseUUID(raw, "account")
	if err != nil {
		return AccountID{}, err
	}
	return AccountID(parsed), nil
}
