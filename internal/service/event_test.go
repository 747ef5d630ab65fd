package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventgate/backend/internal/domain"
)

func TestEventService_ComputeStats(t *testing.T) {
	tickets := newFakeTicketRepo()
	for i := 0; i < 500; i++ {
		ticket := domain.Ticket{
			ID:      "t-" + strconv.Itoa(i),
			EventID: "event-1",
		}
		if i < 157 {
			ticket.CheckedIn = true
		}
		tickets.tickets[ticket.ID] = ticket
	}

	svc := NewEventService(newFakeEventRepo(), tickets)

	stats, err := svc.ComputeStats(context.Background(), "event-1")

	require.NoError(t, err)
	assert.Equal(t, 500, stats.Total)
	assert.Equal(t, 157, stats.CheckedIn)
}

func TestEventService_ComputeStats_NoTickets(t *testing.T) {
	svc := NewEventService(newFakeEventRepo(), newFakeTicketRepo())

	stats, err := svc.ComputeStats(context.Background(), "event-1")

	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0, stats.CheckedIn)
}

func TestEventService_ListOrganizerEvents(t *testing.T) {
	events := newFakeEventRepo(
		domain.Event{ID: "e1", OrganizerRef: "users/alice"},
		domain.Event{ID: "e2", OrganizerRef: "bob"},
		domain.Event{ID: "e3", OrganizerRef: "users/bob"},
	)
	svc := NewEventService(events, newFakeTicketRepo())

	organized, err := svc.ListOrganizerEvents(context.Background(), "bob")

	require.NoError(t, err)
	ids := make([]string, 0, len(organized))
	for _, e := range organized {
		ids = append(ids, e.ID)
	}
	assert.ElementsMatch(t, []string{"e2", "e3"}, ids)
}

func TestEventService_EnrichedEvents_Ordering(t *testing.T) {
	now := time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

	events := newFakeEventRepo(
		domain.Event{ID: "past", OrganizerRef: "alice", StartDate: now.AddDate(0, 0, -10)},
		domain.Event{ID: "live-a", OrganizerRef: "alice", StartDate: now.Add(2 * time.Hour)},
		domain.Event{ID: "upcoming", OrganizerRef: "alice", StartDate: now.AddDate(0, 0, 5)},
		domain.Event{ID: "live-b", OrganizerRef: "alice", StartDate: now.Add(5 * time.Hour)},
	)
	svc := NewEventService(events, newFakeTicketRepo())
	svc.now = func() time.Time { return now }

	enriched, err := svc.EnrichedEvents(context.Background(), "alice")

	require.NoError(t, err)
	require.Len(t, enriched, 4)

	// Live events lead, then upcoming, past last. Within live, earlier start first.
	assert.Equal(t, "live-a", enriched[0].ID)
	assert.Equal(t, "live-b", enriched[1].ID)
	assert.Equal(t, "upcoming", enriched[2].ID)
	assert.Equal(t, "past", enriched[3].ID)

	assert.Equal(t, domain.StatusLiveNow, enriched[0].Status)
	assert.Equal(t, domain.StatusUpcoming, enriched[2].Status)
	assert.Equal(t, domain.StatusPast, enriched[3].Status)
}

func TestEventStatusOf(t *testing.T) {
	now := time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		startDate time.Time
		want      domain.EventStatus
	}{
		{
			name:      "same calendar day is live even if the hour has passed",
			startDate: time.Date(2025, time.June, 15, 8, 0, 0, 0, time.UTC),
			want:      domain.StatusLiveNow,
		},
		{
			name:      "later today is live",
			startDate: time.Date(2025, time.June, 15, 23, 0, 0, 0, time.UTC),
			want:      domain.StatusLiveNow,
		},
		{
			name:      "tomorrow is upcoming",
			startDate: time.Date(2025, time.June, 16, 0, 30, 0, 0, time.UTC),
			want:      domain.StatusUpcoming,
		},
		{
			name:      "yesterday is past",
			startDate: time.Date(2025, time.June, 14, 23, 59, 0, 0, time.UTC),
			want:      domain.StatusPast,
		},
		{
			name: "zero date is unknown",
			want: domain.StatusUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EventStatusOf(domain.Event{StartDate: tt.startDate}, now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEventService_CreateEvent_SetsOrganizer(t *testing.T) {
	svc := NewEventService(newFakeEventRepo(), newFakeTicketRepo())

	created, err := svc.CreateEvent(context.Background(), domain.Event{Title: "Demo Day"}, "alice")

	require.NoError(t, err)
	assert.Equal(t, "alice", created.OrganizerRef)
	assert.Equal(t, "Demo Day", created.Title)
}
