package domain

import "time"

// EventStatus is derived from the event date at read time, never persisted.
type EventStatus string

const (
	StatusLiveNow  EventStatus = "Live Now"
	StatusUpcoming EventStatus = "Upcoming"
	StatusPast     EventStatus = "Past"
	StatusUnknown  EventStatus = ""
)

type Event struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	StartDate time.Time `json:"start_date"`
	Images    []string  `json:"images"`
	// OrganizerRef is a weak reference to the organizing user. Legacy records
	// carry a path-style ref ("users/<id>"), newer ones a bare id; resolve it
	// with IDFromRef before comparing.
	OrganizerRef string    `json:"organizer"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type TicketStats struct {
	Total     int `json:"total"`
	CheckedIn int `json:"checked_in"`
}

// EnrichedEvent is what the organizer's event list renders.
type EnrichedEvent struct {
	Event
	TicketStats TicketStats `json:"ticket_stats"`
	Status      EventStatus `json:"status"`
}
