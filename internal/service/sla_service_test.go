package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nebuladesk/helpdesk/internal/domain"
)

func dashboardFixture() (*memTicketRepo, *domain.User, *domain.User, *domain.User) {
	orgA := uuid.NewString()
	orgB := uuid.NewString()

	admin := &domain.User{ID: uuid.NewString(), Role: domain.RoleAdmin}
	agent := &domain.User{ID: uuid.NewString(), Role: domain.RoleAgent, OrganizationID: &orgA}
	customer := &domain.User{ID: uuid.NewString(), Role: domain.RoleCustomer, OrganizationID: &orgA}

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	repo := newMemTicketRepo(
		orgTicket(orgA, customer.ID, domain.TicketStatusOpen, &past, true),
		orgTicket(orgA, uuid.NewString(), domain.TicketStatusOpen, &future, false),
		orgTicket(orgB, uuid.NewString(), domain.TicketStatusOpen, &past, true),
	)
	return repo, admin, agent, customer
}

func newSLAServiceUnderTest(repo *memTicketRepo, cache DashboardCache, ttl time.Duration) *SLAService {
	return NewSLAService(repo, &memPolicyRepo{}, cache, ttl, zap.NewNop())
}

func TestDashboardAdminSeesAllTenants(t *testing.T) {
	repo, admin, _, _ := dashboardFixture()
	svc := newSLAServiceUnderTest(repo, nil, 0)

	result := svc.Dashboard(context.Background(), admin)
	assert.Equal(t, 3, result.Stats.Total)
	assert.Equal(t, 2, result.Stats.Breached)
	assert.Equal(t, 1, result.Stats.OnTrack)
	assert.Len(t, result.Tickets, 3)
}

func TestDashboardAgentScopedToOrganization(t *testing.T) {
	repo, _, agent, _ := dashboardFixture()
	svc := newSLAServiceUnderTest(repo, nil, 0)

	result := svc.Dashboard(context.Background(), agent)
	assert.Equal(t, 2, result.Stats.Total)
	assert.Equal(t, 1, result.Stats.Breached)
	for _, ticket := range result.Tickets {
		assert.NotEmpty(t, ticket.ExternalKey)
	}

	require.Len(t, repo.dashRequests, 1)
	require.NotNil(t, repo.dashRequests[0].OrganizationID)
	assert.Equal(t, *agent.OrganizationID, *repo.dashRequests[0].OrganizationID)
}

func TestDashboardCustomerSeesOwnTicketsOnly(t *testing.T) {
	repo, _, _, customer := dashboardFixture()
	svc := newSLAServiceUnderTest(repo, nil, 0)

	result := svc.Dashboard(context.Background(), customer)
	assert.Equal(t, 1, result.Stats.Total)
	assert.Equal(t, 1, result.Stats.Breached)
	assert.Equal(t, 0, result.Stats.OnTrack)
}

func TestDashboardAgentWithoutOrganizationGetsEmpty(t *testing.T) {
	repo, _, _, _ := dashboardFixture()
	svc := newSLAServiceUnderTest(repo, nil, 0)

	orphan := &domain.User{ID: uuid.NewString(), Role: domain.RoleAgent}
	result := svc.Dashboard(context.Background(), orphan)
	assert.Equal(t, 0, result.Stats.Total)
	assert.Empty(t, result.Tickets)
	assert.Empty(t, repo.dashRequests)
}

func TestDashboardStoreFailureDegradesToEmpty(t *testing.T) {
	repo, admin, _, _ := dashboardFixture()
	repo.listDashErr = errors.New("connection refused")
	svc := newSLAServiceUnderTest(repo, nil, 0)

	result := svc.Dashboard(context.Background(), admin)
	assert.NotNil(t, result.Tickets)
	assert.Empty(t, result.Tickets)
	assert.Equal(t, DashboardStats{}, result.Stats)
}

func TestDashboardNilActorGetsEmpty(t *testing.T) {
	repo, _, _, _ := dashboardFixture()
	svc := newSLAServiceUnderTest(repo, nil, 0)

	result := svc.Dashboard(context.Background(), nil)
	assert.Empty(t, result.Tickets)
	assert.Equal(t, 0, result.Stats.Total)
}

func TestDashboardUsesCache(t *testing.T) {
	repo, _, agent, _ := dashboardFixture()
	cache := newFakeCache()
	svc := newSLAServiceUnderTest(repo, cache, time.Minute)

	first := svc.Dashboard(context.Background(), agent)
	assert.Equal(t, 1, cache.sets)
	require.Len(t, repo.dashRequests, 1)

	second := svc.Dashboard(context.Background(), agent)
	assert.Equal(t, first.Stats, second.Stats)
	assert.Len(t, second.Tickets, len(first.Tickets))
	// Served from cache, no second store read.
	assert.Len(t, repo.dashRequests, 1)
}

func TestDashboardCacheKeysIsolatedPerScope(t *testing.T) {
	repo, admin, agent, customer := dashboardFixture()
	cache := newFakeCache()
	svc := newSLAServiceUnderTest(repo, cache, time.Minute)

	adminResult := svc.Dashboard(context.Background(), admin)
	agentResult := svc.Dashboard(context.Background(), agent)
	customerResult := svc.Dashboard(context.Background(), customer)

	assert.Equal(t, 3, adminResult.Stats.Total)
	assert.Equal(t, 2, agentResult.Stats.Total)
	assert.Equal(t, 1, customerResult.Stats.Total)
	assert.Len(t, cache.values, 3)
}

func TestDashboardCacheFailureFallsThroughToStore(t *testing.T) {
	repo, admin, _, _ := dashboardFixture()
	cache := newFakeCache()
	cache.getErr = errors.New("redis unavailable")
	cache.setErr = errors.New("redis unavailable")
	svc := newSLAServiceUnderTest(repo, cache, time.Minute)

	result := svc.Dashboard(context.Background(), admin)
	assert.Equal(t, 3, result.Stats.Total)
	assert.Len(t, repo.dashRequests, 1)
}
