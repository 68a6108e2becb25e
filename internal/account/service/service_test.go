package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hireline/internal/account/store/memory"
	jwttoken "hireline/internal/jwt_token"
	dErrors "hireline/pkg/domain-errors"
	"hireline/pkg/platform/audit"
	auditmemory "hireline/pkg/platform/audit/store/memory"
)

func testService(t *testing.T) (*Service, *auditmemory.InMemoryStore) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auditStore := auditmemory.NewInMemoryStore()
	auditor := audit.NewService(auditStore, logger)
	tokens := jwttoken.NewJWTService("test-signing-key", "hireline", "hireline-dashboard")
	return NewService(memory.NewInMemoryStore(), tokens, auditor, logger, time.Hour), auditStore
}

func TestAuthenticate(t *testing.T) {
	svc, auditStore := testService(t)
	ctx := context.Background()

	require.NoError(t, svc.Bootstrap(ctx, "admin@hireline.test", "s3cret-pass"))

	token, err := svc.Authenticate(ctx, "Admin@Hireline.Test", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.Equal(t, int64(3600), token.ExpiresIn)

	events, err := auditStore.ListRecent(ctx, 10)
	require.NoError(t, err)
	var actions []string
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	assert.Contains(t, actions, string(audit.EventLoginSucceeded))
}

func TestAuthenticate_TokenValidates(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	require.NoError(t, svc.Bootstrap(ctx, "admin@hireline.test", "s3cret-pass"))
	token, err := svc.Authenticate(ctx, "admin@hireline.test", "s3cret-pass")
	require.NoError(t, err)

	tokens := jwttoken.NewJWTService("test-signing-key", "hireline", "hireline-dashboard")
	account, err := tokens.ValidateToken(token.AccessToken)
	require.NoError(t, err)
	assert.False(t, account.IsNil())
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	svc, auditStore := testService(t)
	ctx := context.Background()

	require.NoError(t, svc.Bootstrap(ctx, "admin@hireline.test", "s3cret-pass"))

	_, err := svc.Authenticate(ctx, "admin@hireline.test", "wrong")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	events, err := auditStore.ListRecent(ctx, 10)
	require.NoError(t, err)
	var actions []string
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	assert.Contains(t, actions, string(audit.EventLoginFailed))
}

func TestAuthenticate_UnknownEmail(t *testing.T) {
	svc, _ := testService(t)

	_, err := svc.Authenticate(context.Background(), "nobody@hireline.test", "whatever")
	require.Error(t, err)
	// Unknown email and wrong password produce the same error.
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Equal(t, "invalid credentials", dErrors.MessageOf(err))
}

func TestBootstrap_Idempotent(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	require.NoError(t, svc.Bootstrap(ctx, "admin@hireline.test", "s3cret-pass"))
	require.NoError(t, svc.Bootstrap(ctx, "admin@hireline.test", "different-pass"))

	// The original password keeps working; the rerun did not overwrite it.
	_, err := svc.Authenticate(ctx, "admin@hireline.test", "s3cret-pass")
	require.NoError(t, err)
}

func TestBootstrap_GeneratesPassword(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	require.NoError(t, svc.Bootstrap(ctx, "admin@hireline.test", ""))

	_, err := svc.Authenticate(ctx, "admin@hireline.test", "")
	require.Error(t, err)
}

func TestBootstrap_NoEmailIsNoop(t *testing.T) {
	svc, _ := testService(t)
	require.NoError(t, svc.Bootstrap(context.Background(), "", ""))
}
