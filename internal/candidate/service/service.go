// Package service implements candidate registration and duplicate detection.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"hireline/internal/candidate/models"
	"hireline/internal/candidate/store"
	"hireline/internal/match"
	"hireline/internal/platform/metrics"
	id "hireline/pkg/domain"
	dErrors "hireline/pkg/domain-errors"
	"hireline/pkg/platform/audit"
	"hireline/pkg/platform/sentinel"
	"hireline/pkg/requestcontext"
)

// Cache stores serialized duplicate scan results under an identity digest.
// A (nil, nil) return means miss. Implementations own the TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// DuplicateMatch is one candidate whose composite score reached the threshold.
type DuplicateMatch struct {
	CandidateID id.CandidateID  `json:"candidate_id"`
	FullName    string          `json:"full_name"`
	Breakdown   match.Breakdown `json:"breakdown"`
}

// Config tunes the duplicate scan.
type Config struct {
	Threshold       float64
	Weights         match.Weights
	ScanConcurrency int
}

// Service coordinates candidate registration and duplicate detection.
type Service struct {
	store   store.Store
	auditor audit.Emitter
	metrics *metrics.Metrics
	logger  *slog.Logger
	cache   Cache
	cfg     Config
	tracer  trace.Tracer
}

// Option configures optional service dependencies.
type Option func(*Service)

// WithCache attaches a duplicate score cache.
func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

func NewService(st store.Store, auditor audit.Emitter, m *metrics.Metrics, logger *slog.Logger, cfg Config, opts ...Option) *Service {
	if cfg.Threshold == 0 {
		cfg.Threshold = match.DefaultThreshold
	}
	if cfg.Weights == (match.Weights{}) {
		cfg.Weights = match.DefaultWeights()
	}
	if cfg.ScanConcurrency <= 0 {
		cfg.ScanConcurrency = 8
	}
	s := &Service{
		store:   st,
		auditor: auditor,
		metrics: m,
		logger:  logger,
		cfg:     cfg,
		tracer:  otel.Tracer("hireline/candidate"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterInput carries the fields a recruiter submits for a new candidate.
type RegisterInput struct {
	NationalID      string
	GivenNames      string
	PaternalSurname string
	MaternalSurname string
	Email           string
	Phone           string
	Source          string
}

// Register validates and persists a new candidate. The national ID must be
// unused; a collision surfaces as a conflict so the dashboard can point the
// recruiter at the existing record.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.Candidate, error) {
	if input.Source == "" {
		input.Source = models.SourceRecruiter
	}

	candidate, err := models.NewCandidate(
		input.NationalID,
		input.GivenNames,
		input.PaternalSurname,
		input.MaternalSurname,
		input.Email,
		input.Phone,
		input.Source,
		requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, candidate); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "a candidate with this national id already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not store candidate")
	}

	if err := s.auditor.Emit(ctx, audit.Event{
		CandidateID: candidate.ID,
		Action:      string(audit.EventCandidateCreated),
		Detail:      candidate.Source,
		RequestID:   requestcontext.RequestID(ctx),
		ActorID:     actorID(ctx),
		ClientIP:    requestcontext.ClientIP(ctx),
		Device:      requestcontext.Device(ctx),
	}); err != nil {
		return nil, err
	}

	s.metrics.IncCandidatesRegistered()
	s.logger.InfoContext(ctx, "candidate registered",
		"candidate_id", candidate.ID,
		"source", candidate.Source,
	)
	return candidate, nil
}

// Get returns one candidate by ID.
func (s *Service) Get(ctx context.Context, candidateID id.CandidateID) (*models.Candidate, error) {
	candidate, err := s.store.Get(ctx, candidateID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "candidate not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load candidate")
	}
	return candidate, nil
}

// GetByNationalID returns the candidate holding the given national ID.
func (s *Service) GetByNationalID(ctx context.Context, nationalID string) (*models.Candidate, error) {
	candidate, err := s.store.GetByNationalID(ctx, nationalID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "candidate not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load candidate")
	}
	return candidate, nil
}

// List returns all candidates in registration order.
func (s *Service) List(ctx context.Context) ([]*models.Candidate, error) {
	candidates, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not list candidates")
	}
	return candidates, nil
}

// FindDuplicates scores the given identity against every candidate in the
// pool and returns those at or above the threshold, best match first.
func (s *Service) FindDuplicates(ctx context.Context, identity match.Identity) ([]DuplicateMatch, error) {
	ctx, span := s.tracer.Start(ctx, "candidate.duplicate_scan")
	defer span.End()

	// Durations are measured against the wall clock; the request-pinned
	// clock is for timestamps and never advances within a request.
	start := time.Now()

	key := scanCacheKey(identity)
	if cached := s.cachedMatches(ctx, key); cached != nil {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		s.metrics.ObserveDuplicateScan(time.Since(start), len(cached) > 0)
		if err := s.emitDuplicateDetected(ctx, cached); err != nil {
			return nil, err
		}
		return cached, nil
	}

	candidates, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not list candidates for scan")
	}
	span.SetAttributes(
		attribute.Bool("cache_hit", false),
		attribute.Int("pool_size", len(candidates)),
	)

	var (
		mu      sync.Mutex
		matches []DuplicateMatch
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.ScanConcurrency)
	for _, candidate := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			breakdown := match.Score(identity, candidate.Identity(), s.cfg.Weights)
			if breakdown.Total < s.cfg.Threshold {
				return nil
			}
			mu.Lock()
			matches = append(matches, DuplicateMatch{
				CandidateID: candidate.ID,
				FullName:    candidate.FullName(),
				Breakdown:   breakdown,
			})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "duplicate scan aborted")
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Breakdown.Total == matches[j].Breakdown.Total {
			return matches[i].CandidateID.String() < matches[j].CandidateID.String()
		}
		return matches[i].Breakdown.Total > matches[j].Breakdown.Total
	})

	s.metrics.ObserveDuplicateScan(time.Since(start), len(matches) > 0)
	span.SetAttributes(attribute.Int("matches", len(matches)))

	if err := s.emitDuplicateDetected(ctx, matches); err != nil {
		return nil, err
	}

	s.storeMatches(ctx, key, matches)
	return matches, nil
}

// emitDuplicateDetected records the compliance trail for a scan that found
// probable duplicates. Cached and full scans both pass through here so every
// intake decision leaves a trace.
func (s *Service) emitDuplicateDetected(ctx context.Context, matches []DuplicateMatch) error {
	if len(matches) == 0 {
		return nil
	}
	return s.auditor.Emit(ctx, audit.Event{
		CandidateID: matches[0].CandidateID,
		Action:      string(audit.EventDuplicateDetected),
		Detail:      fmt.Sprintf("top_score=%.2f matches=%d", matches[0].Breakdown.Total, len(matches)),
		RequestID:   requestcontext.RequestID(ctx),
		ActorID:     actorID(ctx),
		ClientIP:    requestcontext.ClientIP(ctx),
		Device:      requestcontext.Device(ctx),
	})
}

func (s *Service) cachedMatches(ctx context.Context, key string) []DuplicateMatch {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "duplicate scan cache read failed", "error", err)
		return nil
	}
	if raw == nil {
		return nil
	}
	var matches []DuplicateMatch
	if err := json.Unmarshal(raw, &matches); err != nil {
		s.logger.WarnContext(ctx, "duplicate scan cache entry corrupt", "error", err)
		return nil
	}
	if matches == nil {
		matches = []DuplicateMatch{}
	}
	return matches
}

func (s *Service) storeMatches(ctx context.Context, key string, matches []DuplicateMatch) {
	if s.cache == nil {
		return
	}
	if matches == nil {
		matches = []DuplicateMatch{}
	}
	raw, err := json.Marshal(matches)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw); err != nil {
		s.logger.WarnContext(ctx, "duplicate scan cache write failed", "error", err)
	}
}

// scanCacheKey digests the normalized identity so equivalent spellings of the
// same person share a cache entry.
func scanCacheKey(identity match.Identity) string {
	sum := sha256.Sum256([]byte(strings.Join([]string{
		match.Normalize(identity.NationalID),
		match.Normalize(identity.FullName()),
		match.Normalize(identity.Email),
		match.Normalize(identity.Phone),
	}, "|")))
	return "dupscan:" + hex.EncodeToString(sum[:])
}

func actorID(ctx context.Context) string {
	actor := requestcontext.ActorID(ctx)
	if actor.IsNil() {
		return ""
	}
	return actor.String()
}
