package service

import (
	"context"
	"strings"
	"time"

	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/entity"
	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/repository"
)

// TicketService files feature requests and issue reports.
type TicketService struct {
	tickets *repository.TicketRepository
	users   *repository.UserRepository
}

func NewTicketService(tickets *repository.TicketRepository, users *repository.UserRepository) *TicketService {
	return &TicketService{tickets: tickets, users: users}
}

// TicketCreateInput is a new ticket.
type TicketCreateInput struct {
	Type     string `json:"type"`
	Priority string `json:"priority"`
	Subject  string `json:"subject"`
	Details  string `json:"details"`
}

// Create files a ticket. A requester cannot hold two unresolved tickets
// with the same type and subject.
func (s *TicketService) Create(ctx context.Context, actorID uint, input *TicketCreateInput) (*entity.Ticket, error) {
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, NewPermissionError("account no longer exists")
		}
		return nil, err
	}
	if !entity.ValidTicketType(input.Type) {
		return nil, NewValidationError("Invalid ticket type")
	}
	priority := input.Priority
	if priority == "" {
		priority = entity.TicketPriorityNormal
	}
	if !entity.ValidTicketPriority(priority) {
		return nil, NewValidationError("Invalid priority")
	}
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return nil, NewValidationError("Subject is required")
	}

	existing, err := s.tickets.FindAll(ctx, input.Type, "")
	if err != nil {
		return nil, err
	}
	for i := range existing {
		t := &existing[i]
		if t.Subject == subject && t.Status != entity.TicketStatusResolved &&
			t.RequesterID != nil && *t.RequesterID == actor.ID {
			return nil, NewConflictError("You already have an open ticket for this subject")
		}
	}

	now := time.Now().UTC()
	ticket := &entity.Ticket{
		Type:          input.Type,
		Priority:      priority,
		Status:        entity.TicketStatusOpen,
		Subject:       subject,
		Details:       input.Details,
		RequesterID:   &actor.ID,
		RequesterName: actor.FullName,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// List returns tickets, optionally filtered by type.
func (s *TicketService) List(ctx context.Context, ticketType string) ([]entity.Ticket, error) {
	if ticketType != "" && !entity.ValidTicketType(ticketType) {
		return nil, NewValidationError("Invalid ticket type")
	}
	return s.tickets.FindAll(ctx, ticketType, "")
}

// UpdateStatus moves a ticket through triage; lead only via routing.
func (s *TicketService) UpdateStatus(ctx context.Context, ticketID uint, status string) (*entity.Ticket, error) {
	ticket, err := s.findTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !entity.ValidTicketStatus(status) {
		return nil, NewValidationError("Invalid status")
	}
	ticket.Status = status
	ticket.UpdatedAt = time.Now().UTC()
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// Delete removes a ticket; admin only via routing.
func (s *TicketService) Delete(ctx context.Context, ticketID uint) error {
	if _, err := s.findTicket(ctx, ticketID); err != nil {
		return err
	}
	return s.tickets.Delete(ctx, ticketID)
}

func (s *TicketService) findTicket(ctx context.Context, ticketID uint) (*entity.Ticket, error) {
	ticket, err := s.tickets.FindByID(ctx, ticketID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, NewNotFoundError("Ticket not found")
		}
		return nil, err
	}
	return ticket, nil
}
