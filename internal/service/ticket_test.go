package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventgate/backend/internal/domain"
	"github.com/eventgate/backend/internal/repository"
)

type fakeTicketRepo struct {
	tickets map[string]domain.Ticket

	markCalls int
	markErr   error
	createErr error
}

func newFakeTicketRepo(tickets ...domain.Ticket) *fakeTicketRepo {
	repo := &fakeTicketRepo{tickets: make(map[string]domain.Ticket)}
	for _, t := range tickets {
		repo.tickets[t.ID] = t
	}
	return repo
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket domain.Ticket) (domain.Ticket, error) {
	if f.createErr != nil {
		return domain.Ticket{}, f.createErr
	}
	ticket.ID = "generated-id"
	f.tickets[ticket.ID] = ticket
	return ticket, nil
}

func (f *fakeTicketRepo) FindByID(_ context.Context, id string) (domain.Ticket, error) {
	ticket, ok := f.tickets[id]
	if !ok {
		return domain.Ticket{}, repository.ErrTicketNotFound
	}
	return ticket, nil
}

func (f *fakeTicketRepo) FindByEventID(_ context.Context, eventID string) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, t := range f.tickets {
		if t.EventID == eventID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTicketRepo) MarkCheckedIn(_ context.Context, id string, at time.Time) error {
	f.markCalls++
	if f.markErr != nil {
		return f.markErr
	}
	ticket, ok := f.tickets[id]
	if !ok {
		return repository.ErrTicketNotFound
	}
	if ticket.CheckedIn {
		return repository.ErrCheckInConflict
	}
	ticket.CheckedIn = true
	ticket.CheckedInAt = &at
	f.tickets[id] = ticket
	return nil
}

type fakeEventRepo struct {
	events map[string]domain.Event
}

func newFakeEventRepo(events ...domain.Event) *fakeEventRepo {
	repo := &fakeEventRepo{events: make(map[string]domain.Event)}
	for _, e := range events {
		repo.events[e.ID] = e
	}
	return repo
}

func (f *fakeEventRepo) Create(_ context.Context, event domain.Event) (domain.Event, error) {
	if event.ID == "" {
		event.ID = "generated-id"
	}
	f.events[event.ID] = event
	return event, nil
}

func (f *fakeEventRepo) FindByID(_ context.Context, id string) (domain.Event, error) {
	event, ok := f.events[id]
	if !ok {
		return domain.Event{}, repository.ErrEventNotFound
	}
	return event, nil
}

func (f *fakeEventRepo) FindAll(_ context.Context) ([]domain.Event, error) {
	var out []domain.Event
	for _, e := range f.events {
		out = append(out, e)
	}
	return out, nil
}

type fakePublisher struct {
	published []domain.Ticket
	err       error
}

func (f *fakePublisher) PublishCheckIn(_ context.Context, ticket domain.Ticket, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, ticket)
	return nil
}

func newCheckInFixture() (*TicketService, *fakeTicketRepo, *fakePublisher) {
	events := newFakeEventRepo(domain.Event{
		ID:           "event-1",
		Title:        "Launch Party",
		OrganizerRef: "users/organizer-1",
	})
	tickets := newFakeTicketRepo(
		domain.Ticket{ID: "ticket-1", EventID: "event-1", TicketNumber: "42"},
		domain.Ticket{ID: "ticket-orphan"},
		domain.Ticket{ID: "ticket-ghost-event", EventID: "event-gone"},
	)
	publisher := &fakePublisher{}

	svc := NewTicketService(tickets, events, publisher)
	svc.now = func() time.Time {
		return time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	}

	return svc, tickets, publisher
}

func TestTicketService_CheckIn(t *testing.T) {
	t.Run("marks the ticket checked in and stamps the time", func(t *testing.T) {
		svc, repo, publisher := newCheckInFixture()

		ticket, err := svc.CheckIn(context.Background(), "ticket-1", "organizer-1")

		require.NoError(t, err)
		assert.True(t, ticket.CheckedIn)
		require.NotNil(t, ticket.CheckedInAt)
		assert.Equal(t, time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC), *ticket.CheckedInAt)
		assert.Equal(t, 1, repo.markCalls)
		require.Len(t, publisher.published, 1)
		assert.Equal(t, "ticket-1", publisher.published[0].ID)
	})

	t.Run("second check-in reports already checked in without mutating", func(t *testing.T) {
		svc, repo, _ := newCheckInFixture()

		first, err := svc.CheckIn(context.Background(), "ticket-1", "organizer-1")
		require.NoError(t, err)

		second, err := svc.CheckIn(context.Background(), "ticket-1", "organizer-1")
		require.ErrorIs(t, err, ErrAlreadyCheckedIn)
		assert.Equal(t, 1, repo.markCalls)
		require.NotNil(t, second.CheckedInAt)
		assert.Equal(t, *first.CheckedInAt, *second.CheckedInAt)
	})

	t.Run("rejects a non-organizer even for an open ticket", func(t *testing.T) {
		svc, repo, _ := newCheckInFixture()

		_, err := svc.CheckIn(context.Background(), "ticket-1", "someone-else")

		require.ErrorIs(t, err, ErrNotOrganizer)
		assert.Equal(t, 0, repo.markCalls)
	})

	t.Run("rejects an empty user id", func(t *testing.T) {
		svc, _, _ := newCheckInFixture()

		_, err := svc.CheckIn(context.Background(), "ticket-1", "")

		require.ErrorIs(t, err, ErrNotOrganizer)
	})

	t.Run("unknown ticket", func(t *testing.T) {
		svc, _, _ := newCheckInFixture()

		_, err := svc.CheckIn(context.Background(), "nope", "organizer-1")

		require.ErrorIs(t, err, ErrTicketNotFound)
	})

	t.Run("ticket without an event", func(t *testing.T) {
		svc, _, _ := newCheckInFixture()

		_, err := svc.CheckIn(context.Background(), "ticket-orphan", "organizer-1")

		require.ErrorIs(t, err, ErrTicketWithoutEvent)
	})

	t.Run("ticket pointing at a missing event", func(t *testing.T) {
		svc, _, _ := newCheckInFixture()

		_, err := svc.CheckIn(context.Background(), "ticket-ghost-event", "organizer-1")

		require.ErrorIs(t, err, ErrEventNotFound)
	})

	t.Run("lost race surfaces as a conflict", func(t *testing.T) {
		svc, repo, _ := newCheckInFixture()
		repo.markErr = repository.ErrCheckInConflict

		_, err := svc.CheckIn(context.Background(), "ticket-1", "organizer-1")

		require.ErrorIs(t, err, ErrCheckInConflict)
	})

	t.Run("storage failure surfaces as update failed", func(t *testing.T) {
		svc, repo, _ := newCheckInFixture()
		repo.markErr = errors.New("connection reset")

		_, err := svc.CheckIn(context.Background(), "ticket-1", "organizer-1")

		require.ErrorIs(t, err, ErrTicketUpdateFailed)
	})

	t.Run("publish failure does not fail the check-in", func(t *testing.T) {
		svc, _, publisher := newCheckInFixture()
		publisher.err = errors.New("broker down")

		ticket, err := svc.CheckIn(context.Background(), "ticket-1", "organizer-1")

		require.NoError(t, err)
		assert.True(t, ticket.CheckedIn)
	})
}

func TestTicketService_CreateTicket(t *testing.T) {
	t.Run("issues an open ticket for the organizer", func(t *testing.T) {
		svc, _, _ := newCheckInFixture()

		ticket, err := svc.CreateTicket(context.Background(), "event-1", "1001", "organizer-1")

		require.NoError(t, err)
		assert.Equal(t, "event-1", ticket.EventID)
		assert.Equal(t, "1001", ticket.TicketNumber)
		assert.False(t, ticket.CheckedIn)
	})

	t.Run("rejects a non-organizer", func(t *testing.T) {
		svc, _, _ := newCheckInFixture()

		_, err := svc.CreateTicket(context.Background(), "event-1", "1001", "someone-else")

		require.ErrorIs(t, err, ErrNotOrganizer)
	})

	t.Run("unknown event", func(t *testing.T) {
		svc, _, _ := newCheckInFixture()

		_, err := svc.CreateTicket(context.Background(), "event-gone", "1001", "organizer-1")

		require.ErrorIs(t, err, ErrEventNotFound)
	})
}
