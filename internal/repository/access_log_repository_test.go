package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurevia/portal-gateway/internal/domain"
	"github.com/neurevia/portal-gateway/internal/testutil"
)

func TestAccessLog_CreateBatchAndList(t *testing.T) {
	pool := testutil.SetupTestPostgres(t)
	repo := NewAccessLogRepository(pool)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	first := domain.AccessLogEntry{
		EventID:   uuid.NewString(),
		Kind:      domain.AccessGuardDecision,
		Path:      "/dashboard",
		PathClass: domain.PathProtected,
		Action:    "redirect",
		Location:  "/auth?redirect=%2Fdashboard",
		CreatedAt: now.Add(-time.Second),
	}
	second := first
	second.EventID = uuid.NewString()
	second.Action = "allow"
	second.Location = ""
	second.Username = "doc"
	second.Role = domain.RoleDoctor
	second.CreatedAt = now

	require.NoError(t, repo.CreateBatch(ctx, []domain.AccessLogEntry{first, second}))
	// replays are ignored
	require.NoError(t, repo.CreateBatch(ctx, []domain.AccessLogEntry{first}))

	got, err := repo.ListRecent(ctx, domain.AccessLogFilter{Kind: domain.AccessGuardDecision, Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.EventID, got[0].EventID)
	assert.Equal(t, "allow", got[0].Action)
	assert.Equal(t, domain.RoleDoctor, got[0].Role)
	assert.Equal(t, domain.PathProtected, got[1].PathClass)
}

func TestAccessLog_ListRecentForUser(t *testing.T) {
	pool := testutil.SetupTestPostgres(t)
	repo := NewAccessLogRepository(pool)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	entry := func(kind domain.AccessKind, user string, at time.Time) domain.AccessLogEntry {
		return domain.AccessLogEntry{EventID: uuid.NewString(), Kind: kind, Path: "/session/login", Username: user, CreatedAt: at}
	}
	require.NoError(t, repo.CreateBatch(ctx, []domain.AccessLogEntry{
		entry(domain.AccessLogin, "house", now.Add(-2*time.Second)),
		entry(domain.AccessLogout, "house", now.Add(-time.Second)),
		entry(domain.AccessLogin, "wilson", now),
	}))

	got, err := repo.ListRecent(ctx, domain.AccessLogFilter{Username: "house"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.AccessLogout, got[0].Kind)
	assert.Equal(t, domain.AccessLogin, got[1].Kind)

	got, err = repo.ListRecent(ctx, domain.AccessLogFilter{Username: "house", Kind: domain.AccessLogin, Limit: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "house", got[0].Username)
}

func TestAccessLog_EmptyBatchIsNoop(t *testing.T) {
	repo := NewAccessLogRepository(nil)
	assert.NoError(t, repo.CreateBatch(context.Background(), nil))
}
