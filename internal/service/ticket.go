package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eventgate/backend/internal/domain"
	"github.com/eventgate/backend/internal/repository"
)

var (
	ErrTicketNotFound     = repository.ErrTicketNotFound
	ErrCheckInConflict    = repository.ErrCheckInConflict
	ErrTicketWithoutEvent = errors.New("ticket is not associated with an event")
	ErrNotOrganizer       = errors.New("you are not the organizer of this event")
	ErrAlreadyCheckedIn   = errors.New("this ticket has already been checked in")
	ErrTicketUpdateFailed = errors.New("failed to update ticket")
)

type TicketRepository interface {
	Create(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error)
	FindByID(ctx context.Context, id string) (domain.Ticket, error)
	FindByEventID(ctx context.Context, eventID string) ([]domain.Ticket, error)
	MarkCheckedIn(ctx context.Context, id string, at time.Time) error
}

type TicketEventRepository interface {
	FindByID(ctx context.Context, id string) (domain.Event, error)
}

// CheckInPublisher emits a message after a successful check-in. Implementations
// must not be relied on for correctness; publish failures are only logged.
type CheckInPublisher interface {
	PublishCheckIn(ctx context.Context, ticket domain.Ticket, operatorID string) error
}

type TicketService struct {
	repo      TicketRepository
	eventRepo TicketEventRepository
	publisher CheckInPublisher
	now       func() time.Time
}

func NewTicketService(repo TicketRepository, eventRepo TicketEventRepository, publisher CheckInPublisher) *TicketService {
	return &TicketService{
		repo:      repo,
		eventRepo: eventRepo,
		publisher: publisher,
		now:       time.Now,
	}
}

// CheckIn resolves the scanned ticket, validates that currentUserID organizes
// the ticket's event and that the ticket is still open, then flips it to
// checked-in. Every step short-circuits on its first failing condition and
// nothing is mutated before the final update, which is conditional on the
// stored checked_in value so concurrent scanners cannot double-check-in.
func (s *TicketService) CheckIn(ctx context.Context, ticketID, currentUserID string) (domain.Ticket, error) {
	ticket, err := s.repo.FindByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return domain.Ticket{}, ErrTicketNotFound
		}

		return domain.Ticket{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if ticket.EventID == "" {
		return domain.Ticket{}, ErrTicketWithoutEvent
	}

	event, err := s.eventRepo.FindByID(ctx, ticket.EventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return domain.Ticket{}, ErrEventNotFound
		}

		return domain.Ticket{}, fmt.Errorf("s.eventRepo.FindByID -> %w", err)
	}

	organizerID := domain.IDFromRef(event.OrganizerRef)
	if currentUserID == "" || organizerID != currentUserID {
		return domain.Ticket{}, ErrNotOrganizer
	}

	if ticket.CheckedIn {
		return ticket, ErrAlreadyCheckedIn
	}

	now := s.now()
	if err = s.repo.MarkCheckedIn(ctx, ticket.ID, now); err != nil {
		if errors.Is(err, repository.ErrCheckInConflict) {
			return ticket, ErrCheckInConflict
		}

		zap.L().Error("ticket check-in update failed",
			zap.String("ticketID", ticket.ID),
			zap.Error(err))

		return domain.Ticket{}, ErrTicketUpdateFailed
	}

	ticket.CheckedIn = true
	ticket.CheckedInAt = &now

	if s.publisher != nil {
		if err = s.publisher.PublishCheckIn(ctx, ticket, currentUserID); err != nil {
			zap.L().Warn("failed to publish check-in event",
				zap.String("ticketID", ticket.ID),
				zap.Error(err))
		}
	}

	return ticket, nil
}

func (s *TicketService) GetTicket(ctx context.Context, id string) (domain.Ticket, error) {
	ticket, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return domain.Ticket{}, ErrTicketNotFound
		}

		return domain.Ticket{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return ticket, nil
}

// CreateTicket issues a new open ticket for an event the caller organizes.
func (s *TicketService) CreateTicket(ctx context.Context, eventID, ticketNumber, currentUserID string) (domain.Ticket, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return domain.Ticket{}, ErrEventNotFound
		}

		return domain.Ticket{}, fmt.Errorf("s.eventRepo.FindByID -> %w", err)
	}

	if domain.IDFromRef(event.OrganizerRef) != currentUserID {
		return domain.Ticket{}, ErrNotOrganizer
	}

	created, err := s.repo.Create(ctx, domain.Ticket{
		EventID:      eventID,
		TicketNumber: ticketNumber,
	})
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}
