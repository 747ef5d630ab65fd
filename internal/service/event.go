package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/eventgate/backend/internal/domain"
	"github.com/eventgate/backend/internal/repository"
)

var ErrEventNotFound = repository.ErrEventNotFound

type EventRepository interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	FindByID(ctx context.Context, id string) (domain.Event, error)
	FindAll(ctx context.Context) ([]domain.Event, error)
}

type EventTicketRepository interface {
	FindByEventID(ctx context.Context, eventID string) ([]domain.Ticket, error)
}

type EventService struct {
	repo       EventRepository
	ticketRepo EventTicketRepository
	now        func() time.Time
}

func NewEventService(repo EventRepository, ticketRepo EventTicketRepository) *EventService {
	return &EventService{
		repo:       repo,
		ticketRepo: ticketRepo,
		now:        time.Now,
	}
}

func (s *EventService) CreateEvent(ctx context.Context, event domain.Event, organizerID string) (domain.Event, error) {
	event.OrganizerRef = organizerID

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *EventService) GetEvent(ctx context.Context, id string) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return event, nil
}

// ListOrganizerEvents returns the events whose organizer ref resolves to
// userID. The filter runs here rather than in SQL because legacy organizer
// refs are path-style and not normalized in storage.
func (s *EventService) ListOrganizerEvents(ctx context.Context, userID string) ([]domain.Event, error) {
	events, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	organized := make([]domain.Event, 0, len(events))
	for _, e := range events {
		if domain.IDFromRef(e.OrganizerRef) == userID {
			organized = append(organized, e)
		}
	}

	return organized, nil
}

// ComputeStats counts an event's tickets, total and checked-in. Recomputed in
// full on every call; nothing is cached.
func (s *EventService) ComputeStats(ctx context.Context, eventID string) (domain.TicketStats, error) {
	tickets, err := s.ticketRepo.FindByEventID(ctx, eventID)
	if err != nil {
		return domain.TicketStats{}, fmt.Errorf("s.ticketRepo.FindByEventID -> %w", err)
	}

	stats := domain.TicketStats{}
	for _, t := range tickets {
		stats.Total++
		if t.CheckedIn {
			stats.CheckedIn++
		}
	}

	return stats, nil
}

// EnrichedEvents lists the caller's events with stats and status, ordered the
// way the organizer sees them: live events first, then upcoming by nearest
// date, past events last. The sort is stable so equal keys keep their
// relative order.
func (s *EventService) EnrichedEvents(ctx context.Context, userID string) ([]domain.EnrichedEvent, error) {
	events, err := s.ListOrganizerEvents(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.ListOrganizerEvents -> %w", err)
	}

	now := s.now()
	enriched := make([]domain.EnrichedEvent, 0, len(events))
	for _, e := range events {
		stats, err := s.ComputeStats(ctx, e.ID)
		if err != nil {
			return nil, fmt.Errorf("s.ComputeStats -> %w", err)
		}

		enriched = append(enriched, domain.EnrichedEvent{
			Event:       e,
			TicketStats: stats,
			Status:      EventStatusOf(e, now),
		})
	}

	sort.SliceStable(enriched, func(i, j int) bool {
		pi, pj := statusPriority(enriched[i].Status), statusPriority(enriched[j].Status)
		if pi != pj {
			return pi < pj
		}
		return enriched[i].StartDate.Before(enriched[j].StartDate)
	})

	return enriched, nil
}

// EventStatusOf derives the display status from the event date: Live Now when
// the event's calendar day (local time) is today, Upcoming when it is
// strictly in the future, Past otherwise. Events without a date get the
// unknown sentinel.
func EventStatusOf(event domain.Event, now time.Time) domain.EventStatus {
	if event.StartDate.IsZero() {
		return domain.StatusUnknown
	}

	eventDay := truncateToDay(event.StartDate.Local())
	today := truncateToDay(now.Local())

	if eventDay.Equal(today) {
		return domain.StatusLiveNow
	}
	if event.StartDate.After(now) {
		return domain.StatusUpcoming
	}

	return domain.StatusPast
}

func statusPriority(status domain.EventStatus) int {
	switch status {
	case domain.StatusLiveNow:
		return 0
	case domain.StatusUpcoming:
		return 1
	case domain.StatusPast:
		return 2
	default:
		return 3
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
