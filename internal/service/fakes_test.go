package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nebuladesk/helpdesk/internal/domain"
	"github.com/nebuladesk/helpdesk/internal/events"
	"github.com/nebuladesk/helpdesk/internal/repository"
)

// memTicketRepo is an in-memory TicketRepository for service tests.
type memTicketRepo struct {
	mu           sync.Mutex
	tickets      map[string]*domain.Ticket
	createErr    error
	updateErr    error
	listDashErr  error
	updatePairs  []statusBreachPair
	dashRequests []repository.DashboardScope
}

type statusBreachPair struct {
	id       string
	status   domain.TicketStatus
	breached bool
}

func newMemTicketRepo(tickets ...*domain.Ticket) *memTicketRepo {
	repo := &memTicketRepo{tickets: make(map[string]*domain.Ticket)}
	for _, t := range tickets {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		repo.tickets[t.ID] = t
	}
	return repo
}

func (m *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	copied := *ticket
	m.tickets[ticket.ID] = &copied
	return nil
}

func (m *memTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *t
	return &copied, nil
}

func (m *memTicketRepo) GetByExternalKey(_ context.Context, key string) (*domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tickets {
		if t.ExternalKey == key {
			copied := *t
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *ticket
	m.tickets[ticket.ID] = &copied
	return nil
}

func (m *memTicketRepo) UpdateStatusAndBreach(_ context.Context, id string, status domain.TicketStatus, breached bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	t.Status = status
	t.SLABreached = breached
	t.UpdatedAt = time.Now()
	m.updatePairs = append(m.updatePairs, statusBreachPair{id: id, status: status, breached: breached})
	return nil
}

func (m *memTicketRepo) ListOverdue(_ context.Context, now time.Time, cursor string, limit int) ([]domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, t := range m.tickets {
		if t.SLABreached || domain.IsTerminal(t.Status) || t.SLADueDate == nil || !t.SLADueDate.Before(now) {
			continue
		}
		if cursor != "" && id <= cursor {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	result := make([]domain.Ticket, 0, len(ids))
	for _, id := range ids {
		result = append(result, *m.tickets[id])
	}
	return result, nil
}

func (m *memTicketRepo) MarkBreached(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok || t.SLABreached || domain.IsTerminal(t.Status) {
		return false, nil
	}
	t.SLABreached = true
	return true, nil
}

func (m *memTicketRepo) ListForDashboard(_ context.Context, scope repository.DashboardScope) ([]domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dashRequests = append(m.dashRequests, scope)
	if m.listDashErr != nil {
		return nil, m.listDashErr
	}
	var ids []string
	for id, t := range m.tickets {
		if t.SLADueDate == nil {
			continue
		}
		if scope.OrganizationID != nil && t.OrganizationID != *scope.OrganizationID {
			continue
		}
		if scope.RequesterID != nil && t.RequesterID != *scope.RequesterID {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	result := make([]domain.Ticket, 0, len(ids))
	for _, id := range ids {
		result = append(result, *m.tickets[id])
	}
	return result, nil
}

func (m *memTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, t := range m.tickets {
		if filter.OrganizationID != nil && t.OrganizationID != *filter.OrganizationID {
			continue
		}
		if filter.RequesterID != nil && t.RequesterID != *filter.RequesterID {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	result := make([]domain.Ticket, 0, len(ids))
	for _, id := range ids {
		result = append(result, *m.tickets[id])
	}
	return result, nil
}

type memCommentRepo struct {
	mu       sync.Mutex
	comments []domain.Comment
}

func (m *memCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	comment.ID = uuid.NewString()
	comment.CreatedAt = time.Now()
	m.comments = append(m.comments, *comment)
	return nil
}

func (m *memCommentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.Comment
	for _, c := range m.comments {
		if c.TicketID == ticketID {
			result = append(result, c)
		}
	}
	return result, nil
}

type memAttachmentRepo struct {
	mu          sync.Mutex
	attachments []domain.Attachment
}

func (m *memAttachmentRepo) Create(_ context.Context, attachment *domain.Attachment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	attachment.ID = uuid.NewString()
	attachment.CreatedAt = time.Now()
	m.attachments = append(m.attachments, *attachment)
	return nil
}

func (m *memAttachmentRepo) ListByComment(_ context.Context, commentID string) ([]domain.Attachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.Attachment
	for _, a := range m.attachments {
		if a.CommentID == commentID {
			result = append(result, a)
		}
	}
	return result, nil
}

type memAuditRepo struct {
	mu      sync.Mutex
	entries []domain.AuditLog
}

func (m *memAuditRepo) Create(_ context.Context, entry *domain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memAuditRepo) ListByTicket(_ context.Context, ticketID string, limit, offset int) ([]domain.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.AuditLog
	for _, e := range m.entries {
		if e.TicketID == ticketID {
			result = append(result, e)
		}
	}
	return result, nil
}

type memPolicySource struct {
	policies map[domain.TicketPriority]*domain.SLAPolicy
	err      error
}

func (m *memPolicySource) FindByPriority(_ context.Context, priority domain.TicketPriority) (*domain.SLAPolicy, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.policies[priority], nil
}

type memPolicyRepo struct {
	memPolicySource
}

func (m *memPolicyRepo) ListAll(context.Context) ([]domain.SLAPolicy, error) {
	if m.err != nil {
		return nil, m.err
	}
	result := make([]domain.SLAPolicy, 0, len(m.policies))
	for _, p := range m.policies {
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ResolutionTimeHours < result[j].ResolutionTimeHours })
	return result, nil
}

type capturingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *capturingDispatcher) Publish(_ context.Context, event events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *capturingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (c *capturingDispatcher) byType(eventType events.EventType) []events.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var result []events.Event
	for _, e := range c.events {
		if e.Type == eventType {
			result = append(result, e)
		}
	}
	return result
}

type fakeCache struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
	setErr error
	gets   int
	sets   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string)}
}

func (f *fakeCache) GetCached(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return "", f.getErr
	}
	return f.values[key], nil
}

func (f *fakeCache) SetCached(_ context.Context, key, value string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.values[key] = value
	return nil
}
