package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hireline/internal/candidate/store/memory"
	"hireline/internal/match"
	"hireline/internal/platform/metrics"
	dErrors "hireline/pkg/domain-errors"
	"hireline/pkg/platform/audit"
	auditmemory "hireline/pkg/platform/audit/store/memory"
	"hireline/pkg/requestcontext"
)

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	sets    int
	gets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	return c.entries[key], nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.entries[key] = value
	return nil
}

func testService(t *testing.T, opts ...Option) (*Service, *auditmemory.InMemoryStore) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auditStore := auditmemory.NewInMemoryStore()
	auditor := audit.NewService(auditStore, logger)
	svc := NewService(memory.NewInMemoryStore(), auditor, nil, logger, Config{}, opts...)
	return svc, auditStore
}

func registerInput(nationalID, givenNames string) RegisterInput {
	return RegisterInput{
		NationalID:      nationalID,
		GivenNames:      givenNames,
		PaternalSurname: "Pérez",
		MaternalSurname: "García",
		Email:           "jcperez@mail.com",
		Phone:           "987654321",
	}
}

func TestRegister(t *testing.T) {
	svc, auditStore := testService(t)
	ctx := requestcontext.WithTime(context.Background(), time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	candidate, err := svc.Register(ctx, registerInput("12345678", "Juan Carlos"))
	require.NoError(t, err)
	assert.False(t, candidate.ID.IsNil())
	assert.Equal(t, "recruiter", candidate.Source)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), candidate.CreatedAt)

	events, err := auditStore.ListByCandidate(ctx, candidate.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventCandidateCreated), events[0].Action)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
}

func TestRegister_DuplicateNationalID(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerInput("12345678", "Juan Carlos"))
	require.NoError(t, err)

	_, err = svc.Register(ctx, registerInput("12345678", "Pedro"))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestRegister_InvalidNationalID(t *testing.T) {
	svc, _ := testService(t)

	_, err := svc.Register(context.Background(), registerInput("123", "Juan"))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := testService(t)
	other, _ := testService(t)

	candidate, err := other.Register(context.Background(), registerInput("12345678", "Juan"))
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), candidate.ID)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestFindDuplicates_MatchesSimilarIdentity(t *testing.T) {
	svc, auditStore := testService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerInput("12345678", "Juan Carlos"))
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{
		NationalID:      "87654321",
		GivenNames:      "Rosa Elvira",
		PaternalSurname: "Quispe",
		MaternalSurname: "Mamani",
		Email:           "requispe@otro.com",
		Phone:           "111222333",
	})
	require.NoError(t, err)

	// Same person with a slightly different email and a dropped mobile prefix.
	matches, err := svc.FindDuplicates(ctx, match.Identity{
		NationalID:      "12345678",
		GivenNames:      "Juan Carlos",
		PaternalSurname: "Perez",
		MaternalSurname: "Garcia",
		Email:           "jcperez99@mail.com",
		Phone:           "87654321",
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, registered.ID, matches[0].CandidateID)
	assert.GreaterOrEqual(t, matches[0].Breakdown.Total, match.DefaultThreshold)

	events, err := auditStore.ListByCandidate(ctx, registered.ID)
	require.NoError(t, err)
	var actions []string
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	assert.Contains(t, actions, string(audit.EventDuplicateDetected))
}

func TestFindDuplicates_NoMatch(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerInput("12345678", "Juan Carlos"))
	require.NoError(t, err)

	matches, err := svc.FindDuplicates(ctx, match.Identity{
		NationalID:      "00000001",
		GivenNames:      "Zoila",
		PaternalSurname: "Vaca",
		Email:           "zv@nothing.example",
		Phone:           "000000000",
	})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFindDuplicates_UsesCache(t *testing.T) {
	cache := newFakeCache()
	svc, _ := testService(t, WithCache(cache))
	ctx := context.Background()

	_, err := svc.Register(ctx, registerInput("12345678", "Juan Carlos"))
	require.NoError(t, err)

	identity := match.Identity{
		NationalID:      "12345678",
		GivenNames:      "Juan Carlos",
		PaternalSurname: "Pérez",
		MaternalSurname: "García",
		Email:           "jcperez@mail.com",
		Phone:           "987654321",
	}

	first, err := svc.FindDuplicates(ctx, identity)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, cache.sets)

	second, err := svc.FindDuplicates(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	// Second scan is served from cache, so nothing new is written.
	assert.Equal(t, 1, cache.sets)
}

// scanMetrics builds the scan metrics off the default registry so tests do
// not collide on promauto registration.
func scanMetrics() *metrics.Metrics {
	return &metrics.Metrics{
		CandidatesRegistered:  prometheus.NewCounter(prometheus.CounterOpts{Name: "candidates_registered_total"}),
		DuplicateScans:        prometheus.NewCounter(prometheus.CounterOpts{Name: "duplicate_scans_total"}),
		DuplicateMatches:      prometheus.NewCounter(prometheus.CounterOpts{Name: "duplicate_matches_total"}),
		DuplicateScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Name: "duplicate_scan_duration_seconds"}),
	}
}

func TestFindDuplicates_RecordsScanDuration(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auditor := audit.NewService(auditmemory.NewInMemoryStore(), logger)
	m := scanMetrics()
	svc := NewService(memory.NewInMemoryStore(), auditor, m, logger, Config{})

	// The request clock is pinned for the whole request; the scan duration
	// must come from the wall clock or it reads zero forever.
	ctx := requestcontext.WithTime(context.Background(), time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	_, err := svc.Register(ctx, registerInput("12345678", "Juan Carlos"))
	require.NoError(t, err)

	matches, err := svc.FindDuplicates(ctx, match.Identity{
		NationalID:      "12345678",
		GivenNames:      "Juan Carlos",
		PaternalSurname: "Pérez",
		MaternalSurname: "García",
		Email:           "jcperez@mail.com",
		Phone:           "987654321",
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)

	var duration dto.Metric
	require.NoError(t, m.DuplicateScanDuration.Write(&duration))
	require.EqualValues(t, 1, duration.Histogram.GetSampleCount())
	assert.Greater(t, duration.Histogram.GetSampleSum(), 0.0)

	var scans dto.Metric
	require.NoError(t, m.DuplicateScans.Write(&scans))
	assert.EqualValues(t, 1, scans.Counter.GetValue())
}

func TestFindDuplicates_CachedScanStillCountedAndAudited(t *testing.T) {
	cache := newFakeCache()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auditStore := auditmemory.NewInMemoryStore()
	auditor := audit.NewService(auditStore, logger)
	m := scanMetrics()
	svc := NewService(memory.NewInMemoryStore(), auditor, m, logger, Config{}, WithCache(cache))
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerInput("12345678", "Juan Carlos"))
	require.NoError(t, err)

	identity := match.Identity{
		NationalID:      "12345678",
		GivenNames:      "Juan Carlos",
		PaternalSurname: "Pérez",
		MaternalSurname: "García",
		Email:           "jcperez@mail.com",
		Phone:           "987654321",
	}

	for i := 0; i < 2; i++ {
		matches, err := svc.FindDuplicates(ctx, identity)
		require.NoError(t, err)
		require.Len(t, matches, 1)
	}
	require.Equal(t, 1, cache.sets)

	// The cached second scan still feeds the counters and leaves the same
	// compliance trail as a full one.
	var scans dto.Metric
	require.NoError(t, m.DuplicateScans.Write(&scans))
	assert.EqualValues(t, 2, scans.Counter.GetValue())

	var hits dto.Metric
	require.NoError(t, m.DuplicateMatches.Write(&hits))
	assert.EqualValues(t, 2, hits.Counter.GetValue())

	events, err := auditStore.ListByCandidate(ctx, registered.ID)
	require.NoError(t, err)
	var detected int
	for _, e := range events {
		if e.Action == string(audit.EventDuplicateDetected) {
			detected++
		}
	}
	assert.Equal(t, 2, detected)
}

func TestFindDuplicates_CacheKeyIgnoresSpelling(t *testing.T) {
	a := match.Identity{NationalID: "12345678", GivenNames: "José", PaternalSurname: "Núñez", Email: "jn@mail.com"}
	b := match.Identity{NationalID: "12345678", GivenNames: "  jose ", PaternalSurname: "NUNEZ", Email: "JN@MAIL.COM"}
	assert.Equal(t, scanCacheKey(a), scanCacheKey(b))
}
