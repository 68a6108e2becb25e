// Package models holds the candidate aggregate.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"hireline/internal/match"
	id "hireline/pkg/domain"
	dErrors "hireline/pkg/domain-errors"
)

// Candidate is a person registered in the talent pool. A candidate exists
// independently of any posting; applications link the two.
type Candidate struct {
	ID id.CandidateID

	// NationalID is the 8-digit DNI. Unique across the pool.
	NationalID      string
	GivenNames      string
	PaternalSurname string
	MaternalSurname string
	Email           string
	Phone           string

	// Source records how the candidate entered the pool: "recruiter" for
	// dashboard registration, "public_intake" for the application form.
	Source string

	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	SourceRecruiter    = "recruiter"
	SourcePublicIntake = "public_intake"
)

// NewCandidate validates inputs and builds a candidate aggregate.
func NewCandidate(nationalID, givenNames, paternalSurname, maternalSurname, email, phone, source string, now time.Time) (*Candidate, error) {
	nationalID = strings.TrimSpace(nationalID)
	if err := validateNationalID(nationalID); err != nil {
		return nil, err
	}

	givenNames = strings.TrimSpace(givenNames)
	if givenNames == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "given names are required")
	}
	paternalSurname = strings.TrimSpace(paternalSurname)
	if paternalSurname == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "paternal surname is required")
	}

	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "a valid email is required")
	}

	if source != SourceRecruiter && source != SourcePublicIntake {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown candidate source")
	}

	return &Candidate{
		ID:              id.CandidateID(uuid.New()),
		NationalID:      nationalID,
		GivenNames:      givenNames,
		PaternalSurname: paternalSurname,
		MaternalSurname: strings.TrimSpace(maternalSurname),
		Email:           email,
		Phone:           strings.TrimSpace(phone),
		Source:          source,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func validateNationalID(nationalID string) error {
	if nationalID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "national id is required")
	}
	if len(nationalID) != 8 {
		return dErrors.New(dErrors.CodeInvalidInput, "national id must be exactly 8 digits")
	}
	for _, r := range nationalID {
		if r < '0' || r > '9' {
			return dErrors.New(dErrors.CodeInvalidInput, "national id must be exactly 8 digits")
		}
	}
	return nil
}

// Identity projects the candidate onto the fields the duplicate scorer reads.
func (c *Candidate) Identity() match.Identity {
	return match.Identity{
		NationalID:      c.NationalID,
		GivenNames:      c.GivenNames,
		PaternalSurname: c.PaternalSurname,
		MaternalSurname: c.MaternalSurname,
		Email:           c.Email,
		Phone:           c.Phone,
	}
}

// FullName joins the name components for display and logging.
func (c *Candidate) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{c.GivenNames, c.PaternalSurname, c.MaternalSurname} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
