package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/nebuladesk/helpdesk/internal/domain"
	"github.com/nebuladesk/helpdesk/internal/repository"
)

// DashboardCache caches rendered dashboard payloads. A nil cache disables
// caching entirely.
type DashboardCache interface {
	GetCached(ctx context.Context, key string) (string, error)
	SetCached(ctx context.Context, key, value string, ttl time.Duration) error
}

// DashboardStats summarizes SLA state for the visible ticket set.
type DashboardStats struct {
	Total    int `json:"total"`
	Breached int `json:"breached"`
	OnTrack  int `json:"on_track"`
}

// DashboardTicket is the per-ticket view on the SLA dashboard.
type DashboardTicket struct {
	ID          string                `json:"id"`
	ExternalKey string                `json:"identifier"`
	Subject     string                `json:"subject"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	CreatedAt   time.Time             `json:"created_at"`
	SLADueDate  *time.Time            `json:"sla_due_date"`
	SLABreached bool                  `json:"sla_breached"`
}

// DashboardResult is the aggregate dashboard response.
type DashboardResult struct {
	Tickets []DashboardTicket `json:"tickets"`
	Stats   DashboardStats    `json:"stats"`
}

// SLAService aggregates breach statistics for the dashboard and exposes the
// seeded policy table.
type SLAService struct {
	tickets  repository.TicketRepository
	policies repository.SLAPolicyRepository
	cache    DashboardCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewSLAService constructs the service. cache may be nil.
func NewSLAService(tickets repository.TicketRepository, policies repository.SLAPolicyRepository, cache DashboardCache, cacheTTL time.Duration, logger *zap.Logger) *SLAService {
	return &SLAService{
		tickets:  tickets,
		policies: policies,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Dashboard returns SLA-tracked tickets visible to the actor with breach
// stats. The result set is scoped by role: admins see every tenant, owners
// and agents their own organization, customers only tickets they raised.
//
// The dashboard is a reporting view: any internal failure degrades to an
// empty zeroed result instead of surfacing an error.
func (s *SLAService) Dashboard(ctx context.Context, actor *domain.User) DashboardResult {
	empty := DashboardResult{Tickets: []DashboardTicket{}}
	if actor == nil {
		return empty
	}

	scope, ok := scopeForActor(actor)
	if !ok {
		return empty
	}

	cacheKey := dashboardCacheKey(actor, scope)
	if s.cache != nil && s.cacheTTL > 0 {
		if cached, err := s.cache.GetCached(ctx, cacheKey); err == nil && cached != "" {
			var result DashboardResult
			if err := json.Unmarshal([]byte(cached), &result); err == nil {
				return result
			}
		}
	}

	tickets, err := s.tickets.ListForDashboard(ctx, scope)
	if err != nil {
		s.logger.Error("sla dashboard aggregation failed", zap.Error(err), zap.String("actor_id", actor.ID))
		return empty
	}

	result := DashboardResult{Tickets: make([]DashboardTicket, 0, len(tickets))}
	for _, ticket := range tickets {
		result.Tickets = append(result.Tickets, DashboardTicket{
			ID:          ticket.ID,
			ExternalKey: ticket.ExternalKey,
			Subject:     ticket.Subject,
			Status:      ticket.Status,
			Priority:    ticket.Priority,
			CreatedAt:   ticket.CreatedAt,
			SLADueDate:  ticket.SLADueDate,
			SLABreached: ticket.SLABreached,
		})
		if ticket.SLABreached {
			result.Stats.Breached++
		}
	}
	result.Stats.Total = len(result.Tickets)
	result.Stats.OnTrack = result.Stats.Total - result.Stats.Breached

	if s.cache != nil && s.cacheTTL > 0 {
		if payload, err := json.Marshal(result); err == nil {
			if err := s.cache.SetCached(ctx, cacheKey, string(payload), s.cacheTTL); err != nil {
				s.logger.Debug("sla dashboard cache write failed", zap.Error(err))
			}
		}
	}
	return result
}

// Policies lists the seeded SLA policy table.
func (s *SLAService) Policies(ctx context.Context) ([]domain.SLAPolicy, error) {
	return s.policies.ListAll(ctx)
}

func scopeForActor(actor *domain.User) (repository.DashboardScope, bool) {
	switch actor.Role {
	case domain.RoleAdmin:
		return repository.DashboardScope{}, true
	case domain.RoleOwner, domain.RoleAgent:
		if actor.OrganizationID == nil {
			return repository.DashboardScope{}, false
		}
		return repository.DashboardScope{OrganizationID: actor.OrganizationID}, true
	case domain.RoleCustomer:
		id := actor.ID
		return repository.DashboardScope{RequesterID: &id}, true
	}
	return repository.DashboardScope{}, false
}

func dashboardCacheKey(actor *domain.User, scope repository.DashboardScope) string {
	switch {
	case scope.RequesterID != nil:
		return "sla:dashboard:user:" + *scope.RequesterID
	case scope.OrganizationID != nil:
		return "sla:dashboard:org:" + *scope.OrganizationID
	default:
		return "sla:dashboard:all"
	}
}
