// Package models holds the job posting aggregate and its lifecycle rules.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	id "hireline/pkg/domain"
	dErrors "hireline/pkg/domain-errors"
)

// Status is the lifecycle state of a posting.
type Status string

const (
	// StatusDraft postings are being prepared and accept no applications.
	StatusDraft Status = "draft"
	// StatusOpen postings accept applications.
	StatusOpen Status = "open"
	// StatusSuspended postings are temporarily paused; the pipeline keeps
	// moving but no new applications come in.
	StatusSuspended Status = "suspended"
	// StatusClosed postings finished their process normally.
	StatusClosed Status = "closed"
	// StatusCancelled postings were aborted before completion.
	StatusCancelled Status = "cancelled"
)

// terminal statuses admit no further transitions.
func (s Status) terminal() bool {
	return s == StatusClosed || s == StatusCancelled
}

// Posting is a job opening (convocatoria) candidates apply to.
type Posting struct {
	ID          id.PostingID
	Title       string
	Description string
	Area        string
	Location    string
	Status      Status

	CreatedBy id.AccountID
	CreatedAt time.Time
	UpdatedAt time.Time
	OpenedAt  *time.Time
	ClosedAt  *time.Time
}

// NewPosting validates inputs and builds a draft posting.
func NewPosting(title, description, area, location string, createdBy id.AccountID, now time.Time) (*Posting, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "posting title is required")
	}
	if createdBy.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "posting requires a creating account")
	}

	return &Posting{
		ID:          id.PostingID(uuid.New()),
		Title:       title,
		Description: strings.TrimSpace(description),
		Area:        strings.TrimSpace(area),
		Location:    strings.TrimSpace(location),
		Status:      StatusDraft,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// AcceptsApplications reports whether new applications may be submitted.
func (p *Posting) AcceptsApplications() bool {
	return p.Status == StatusOpen
}

// CanOpen reports whether the posting may start accepting applications.
func (p *Posting) CanOpen() error {
	if p.Status != StatusDraft && p.Status != StatusSuspended {
		return dErrors.New(dErrors.CodeInvariantViolation, "posting can only open from draft or suspended")
	}
	return nil
}

// ApplyOpen transitions the posting to open. Call CanOpen first.
func (p *Posting) ApplyOpen(now time.Time) {
	p.Status = StatusOpen
	if p.OpenedAt == nil {
		p.OpenedAt = &now
	}
	p.UpdatedAt = now
}

// CanSuspend reports whether the posting may pause intake.
func (p *Posting) CanSuspend() error {
	if p.Status != StatusOpen {
		return dErrors.New(dErrors.CodeInvariantViolation, "only open postings can be suspended")
	}
	return nil
}

// ApplySuspend transitions the posting to suspended. Call CanSuspend first.
func (p *Posting) ApplySuspend(now time.Time) {
	p.Status = StatusSuspended
	p.UpdatedAt = now
}

// CanClose reports whether the posting may finish its process.
func (p *Posting) CanClose() error {
	if p.Status != StatusOpen && p.Status != StatusSuspended {
		return dErrors.New(dErrors.CodeInvariantViolation, "only open or suspended postings can be closed")
	}
	return nil
}

// ApplyClose transitions the posting to closed. Call CanClose first.
func (p *Posting) ApplyClose(now time.Time) {
	p.Status = StatusClosed
	p.ClosedAt = &now
	p.UpdatedAt = now
}

// CanCancel reports whether the posting may be aborted.
func (p *Posting) CanCancel() error {
	if p.Status.terminal() {
		return dErrors.New(dErrors.CodeInvariantViolation, "posting already finished")
	}
	return nil
}

// ApplyCancel transitions the posting to cancelled. Call CanCancel first.
func (p *Posting) ApplyCancel(now time.Time) {
	p.Status = StatusCancelled
	p.ClosedAt = &now
	p.UpdatedAt = now
}
