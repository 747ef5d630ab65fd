package domain

import "time"

// Ticket is a per-attendee admission record belonging to one event.
// CheckedIn is a one-way flag: CheckedInAt is set exactly when it flips to
// true and there is no check-out path.
type Ticket struct {
	ID           string     `json:"id"`
	EventID      string     `json:"event_id"`
	TicketNumber string     `json:"ticket_number"`
	CheckedIn    bool       `json:"checked_in"`
	CheckedInAt  *time.Time `json:"checked_in_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
