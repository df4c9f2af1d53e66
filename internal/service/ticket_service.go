package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nebuladesk/helpdesk/internal/auth"
	"github.com/nebuladesk/helpdesk/internal/domain"
	"github.com/nebuladesk/helpdesk/internal/events"
	"github.com/nebuladesk/helpdesk/internal/repository"
	"github.com/nebuladesk/helpdesk/internal/sla"
	"github.com/nebuladesk/helpdesk/pkg/apperrors"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets     repository.TicketRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
	audit       repository.AuditLogRepository
	calculator  *sla.Calculator
	dispatcher  events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	CommentRepo    repository.CommentRepository
	AttachmentRepo repository.AttachmentRepository
	AuditRepo      repository.AuditLogRepository
	Calculator     *sla.Calculator
	Dispatcher     events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Subject        string
	Description    string
	Priority       domain.TicketPriority
	OrganizationID string
}

// TicketListInput describes listing filters before role scoping.
type TicketListInput struct {
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// CommentAttachmentInput defines attachment metadata on a new comment.
type CommentAttachmentInput struct {
	StorageKey string
	FileName   string
	MimeType   string
	SizeBytes  int64
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		comments:    deps.CommentRepo,
		attachments: deps.AttachmentRepo,
		audit:       deps.AuditRepo,
		calculator:  deps.Calculator,
		dispatcher:  deps.Dispatcher,
	}
}

// CreateTicket creates a ticket and stamps its SLA due date. The due date is
// derived from the policy matching the ticket's priority at creation time and
// is never recalculated afterward, even when the priority later changes.
func (s *TicketService) CreateTicket(ctx context.Context, actor *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("actor required")
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !domain.ValidPriority(priority) {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}

	orgID := input.OrganizationID
	if actor.Role != domain.RoleAdmin {
		if actor.OrganizationID == nil {
			return nil, apperrors.NewForbidden("actor has no organization")
		}
		orgID = *actor.OrganizationID
	}
	if orgID == "" {
		return nil, apperrors.NewValidationError("organization_id required", nil)
	}

	now := time.Now()
	dueDate, err := s.calculator.DueDate(ctx, priority, now)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	ticket := &domain.Ticket{
		ExternalKey:    generateTicketKey(),
		OrganizationID: orgID,
		RequesterID:    actor.ID,
		Subject:        strings.TrimSpace(input.Subject),
		Description:    strings.TrimSpace(input.Description),
		Status:         domain.TicketStatusOpen,
		Priority:       priority,
		SLADueDate:     dueDate,
		SLABreached:    false,
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.recordAudit(ctx, &actor.ID, domain.AuditTicketCreated, ticket.ID, nil, map[string]any{
		"status":   ticket.Status,
		"priority": ticket.Priority,
	})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  &actor.ID,
		Payload: events.TicketCreatedPayload{
			OrganizationID: ticket.OrganizationID,
			Priority:       ticket.Priority,
			Subject:        ticket.Subject,
			SLADueDate:     ticket.SLADueDate,
		},
	})
	return ticket, nil
}

// GetTicket fetches a ticket with its comment thread, enforcing access.
// Customers do not see internal comments.
func (s *TicketService) GetTicket(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, []domain.Comment, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if !auth.Can(actor, auth.ActionViewTicket, ticket) {
		return nil, nil, apperrors.NewForbidden("access denied")
	}
	comments, err := s.commentsWithAttachments(ctx, ticket.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	if actor.Role == domain.RoleCustomer {
		visible := make([]domain.Comment, 0, len(comments))
		for _, comment := range comments {
			if comment.Internal {
				continue
			}
			visible = append(visible, comment)
		}
		comments = visible
	}
	return ticket, comments, nil
}

// GetTicketByKey resolves a ticket by its human-facing key, then applies the
// same access rules as GetTicket.
func (s *TicketService) GetTicketByKey(ctx context.Context, actor *domain.User, externalKey string) (*domain.Ticket, []domain.Comment, error) {
	ticket, err := s.tickets.GetByExternalKey(ctx, externalKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("ticket", map[string]any{"key": externalKey})
		}
		return nil, nil, apperrors.MapError(err)
	}
	return s.GetTicket(ctx, actor, ticket.ID)
}

// ListTickets returns tickets visible to the actor.
func (s *TicketService) ListTickets(ctx context.Context, actor *domain.User, input TicketListInput) ([]domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("actor required")
	}
	filter := repository.TicketFilter{
		Statuses:    input.Statuses,
		Priorities:  input.Priorities,
		SearchTerm:  input.SearchTerm,
		CreatedFrom: input.CreatedFrom,
		CreatedTo:   input.CreatedTo,
		Limit:       input.Limit,
		Offset:      input.Offset,
	}
	switch actor.Role {
	case domain.RoleAdmin:
	case domain.RoleOwner, domain.RoleAgent:
		if actor.OrganizationID == nil {
			return []domain.Ticket{}, nil
		}
		filter.OrganizationID = actor.OrganizationID
	default:
		filter.RequesterID = &actor.ID
	}
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// TransitionStatus applies a status change and re-evaluates the breach flag
// in the same row update, so status and sla_breached can never be observed
// out of step.
func (s *TicketService) TransitionStatus(ctx context.Context, actor *domain.User, ticketID string, newStatus domain.TicketStatus) (*domain.Ticket, error) {
	if !domain.ValidStatus(newStatus) {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": newStatus})
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !auth.Can(actor, auth.ActionTransitionTicket, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}

	now := time.Now()
	oldStatus := ticket.Status
	wasBreached := ticket.SLABreached
	breached := sla.EvaluateBreach(now, ticket.SLADueDate, newStatus, ticket.SLABreached)

	if err := s.tickets.UpdateStatusAndBreach(ctx, ticket.ID, newStatus, breached); err != nil {
		return nil, apperrors.MapError(err)
	}

	ticket.Status = newStatus
	ticket.SLABreached = breached
	ticket.UpdatedAt = now
	if newStatus == domain.TicketStatusClosed {
		ticket.ClosedAt = &now
	} else {
		ticket.ClosedAt = nil
	}

	s.recordAudit(ctx, &actor.ID, domain.AuditTicketStatusChanged, ticket.ID,
		map[string]any{"status": oldStatus, "sla_breached": wasBreached},
		map[string]any{"status": newStatus, "sla_breached": breached})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		ActorID:  &actor.ID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus:   oldStatus,
			NewStatus:   newStatus,
			SLABreached: breached,
		},
	})
	if breached && !wasBreached {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketSLABreached,
			TicketID: ticket.ID,
			ActorID:  &actor.ID,
			Payload: events.TicketSLABreachedPayload{
				OrganizationID: ticket.OrganizationID,
				SLADueDate:     ticket.SLADueDate,
				DetectedBy:     "status_transition",
			},
		})
	}
	return ticket, nil
}

// UpdatePriority changes a ticket's priority. The SLA due date stamped at
// creation is deliberately left untouched.
func (s *TicketService) UpdatePriority(ctx context.Context, actor *domain.User, ticketID string, newPriority domain.TicketPriority) (*domain.Ticket, error) {
	if !domain.ValidPriority(newPriority) {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": newPriority})
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !auth.Can(actor, auth.ActionEditTicket, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}

	oldPriority := ticket.Priority
	ticket.Priority = newPriority
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.recordAudit(ctx, &actor.ID, domain.AuditTicketPriorityChanged, ticket.ID,
		map[string]any{"priority": oldPriority},
		map[string]any{"priority": newPriority})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketPriorityChanged,
		TicketID: ticket.ID,
		ActorID:  &actor.ID,
		Payload: events.TicketPriorityChangedPayload{
			OldPriority: oldPriority,
			NewPriority: newPriority,
		},
	})
	return ticket, nil
}

// AssignTicket sets or clears the assignee.
func (s *TicketService) AssignTicket(ctx context.Context, actor *domain.User, ticketID string, assigneeID *string) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !auth.Can(actor, auth.ActionAssignTicket, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}

	ticket.AssigneeID = assigneeID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.recordAudit(ctx, &actor.ID, domain.AuditTicketAssigned, ticket.ID, nil,
		map[string]any{"assignee_id": assigneeID})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		ActorID:  &actor.ID,
		Payload:  events.TicketAssignedPayload{AssigneeID: assigneeID},
	})
	return ticket, nil
}

// AddComment appends a comment to a ticket's thread. Internal comments are
// restricted to staff roles.
func (s *TicketService) AddComment(ctx context.Context, actor *domain.User, ticketID, body string, internal bool, attachments []CommentAttachmentInput) (*domain.Comment, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !auth.Can(actor, auth.ActionCommentTicket, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	if internal && actor.Role == domain.RoleCustomer {
		return nil, apperrors.NewForbidden("customers cannot post internal comments")
	}

	comment := &domain.Comment{
		TicketID: ticket.ID,
		AuthorID: actor.ID,
		Body:     strings.TrimSpace(body),
		Internal: internal,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	for _, att := range attachments {
		record := &domain.Attachment{
			CommentID:  comment.ID,
			StorageKey: att.StorageKey,
			FileName:   att.FileName,
			MimeType:   att.MimeType,
			SizeBytes:  att.SizeBytes,
		}
		if err := s.attachments.Create(ctx, record); err != nil {
			return nil, apperrors.MapError(err)
		}
		comment.Attachments = append(comment.Attachments, *record)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCommentAdded,
		TicketID: ticket.ID,
		ActorID:  &actor.ID,
		Payload: events.TicketCommentAddedPayload{
			CommentID:   comment.ID,
			AuthorID:    comment.AuthorID,
			Internal:    comment.Internal,
			BodyPreview: stringPreview(comment.Body, 120),
		},
	})
	return comment, nil
}

// ListAudit returns the audit trail for a ticket.
func (s *TicketService) ListAudit(ctx context.Context, actor *domain.User, ticketID string, limit, offset int) ([]domain.AuditLog, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !auth.Can(actor, auth.ActionViewTicket, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	entries, err := s.audit.ListByTicket(ctx, ticketID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

func (s *TicketService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) commentsWithAttachments(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	comments, err := s.comments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	for i := range comments {
		attachments, err := s.attachments.ListByComment(ctx, comments[i].ID)
		if err != nil {
			return nil, err
		}
		comments[i].Attachments = attachments
	}
	return comments, nil
}

func (s *TicketService) recordAudit(ctx context.Context, actorID *string, action domain.AuditAction, ticketID string, oldValue, newValue map[string]any) {
	if s.audit == nil {
		return
	}
	entry := &domain.AuditLog{
		ActorID:  actorID,
		Action:   action,
		TicketID: ticketID,
		OldValue: oldValue,
		NewValue: newValue,
	}
	_ = s.audit.Create(ctx, entry)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func generateTicketKey() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
