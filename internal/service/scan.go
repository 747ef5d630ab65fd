package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/eventgate/backend/internal/domain"
)

const (
	// Minimum gap between two accepted scans. Camera feeds decode the same
	// frame many times per second; anything inside the window is dropped
	// without feedback.
	scanDebounceWindow = 2 * time.Second

	// A hung store call must not strand the session, so every check-in runs
	// under its own deadline.
	scanCheckInTimeout = 10 * time.Second
)

type ScanKind string

const (
	ScanIgnored   ScanKind = "ignored"
	ScanInvalid   ScanKind = "invalid"
	ScanDuplicate ScanKind = "duplicate"
	ScanSuccess   ScanKind = "success"
	ScanFailed    ScanKind = "failed"
)

// ScanResult is the user-visible outcome of one scan frame. Everything except
// ScanIgnored surfaces as a modal alert on the scanner.
type ScanResult struct {
	Kind    ScanKind       `json:"kind"`
	Title   string         `json:"title,omitempty"`
	Message string         `json:"message,omitempty"`
	Ticket  *domain.Ticket `json:"ticket,omitempty"`
	Haptic  bool           `json:"haptic,omitempty"`
}

type CheckInService interface {
	CheckIn(ctx context.Context, ticketID, currentUserID string) (domain.Ticket, error)
}

// ScanSession is the state machine behind one scanning session. It is driven
// by a single goroutine (the scanner's read loop): lastAccepted, accepted and
// processing are guards, not locks, and the whole session dies with its
// connection. The accepted set only saves a round-trip for a ticket scanned
// twice in the same session; the authoritative duplicate check stays in
// TicketService.CheckIn.
type ScanSession struct {
	svc    CheckInService
	userID string

	lastAccepted time.Time
	accepted     map[string]struct{}
	processing   bool

	now func() time.Time
}

func NewScanSession(svc CheckInService, userID string) *ScanSession {
	return &ScanSession{
		svc:      svc,
		userID:   userID,
		accepted: make(map[string]struct{}),
		now:      time.Now,
	}
}

type scanPayload struct {
	Ticket struct {
		ID string `json:"id"`
	} `json:"ticket"`
}

// HandleScan runs one raw QR payload through the guard, parse, duplicate and
// check-in steps and returns the outcome to surface.
func (s *ScanSession) HandleScan(ctx context.Context, rawPayload string) ScanResult {
	now := s.now()
	if s.processing || (!s.lastAccepted.IsZero() && now.Sub(s.lastAccepted) < scanDebounceWindow) {
		return ScanResult{Kind: ScanIgnored}
	}

	var payload scanPayload
	if err := json.Unmarshal([]byte(rawPayload), &payload); err != nil {
		return ScanResult{
			Kind:    ScanInvalid,
			Title:   "Error",
			Message: "Invalid QR code format.",
		}
	}

	ticketID := domain.IDFromRef(payload.Ticket.ID)
	if ticketID == "" {
		return ScanResult{
			Kind:    ScanInvalid,
			Title:   "Error",
			Message: "Invalid QR code format.",
		}
	}

	if _, ok := s.accepted[ticketID]; ok {
		return ScanResult{
			Kind:    ScanDuplicate,
			Title:   "Info",
			Message: "This ticket has already been checked in.",
		}
	}

	s.processing = true
	defer func() {
		s.lastAccepted = s.now()
		s.processing = false
	}()

	checkInCtx, cancel := context.WithTimeout(ctx, scanCheckInTimeout)
	defer cancel()

	ticket, err := s.svc.CheckIn(checkInCtx, ticketID, s.userID)
	if err != nil {
		return ScanResult{
			Kind:    ScanFailed,
			Title:   "Check-in Failed",
			Message: checkInFailureMessage(err),
		}
	}

	s.accepted[ticketID] = struct{}{}

	label := ticket.TicketNumber
	if label == "" {
		label = ticket.ID
	}

	return ScanResult{
		Kind:    ScanSuccess,
		Title:   "Check-in Successful",
		Message: "Ticket #" + label + " has been checked in!",
		Ticket:  &ticket,
		Haptic:  true,
	}
}

func checkInFailureMessage(err error) string {
	switch {
	case errors.Is(err, ErrTicketNotFound):
		return "Ticket not found"
	case errors.Is(err, ErrTicketWithoutEvent):
		return "Ticket is not associated with an event"
	case errors.Is(err, ErrEventNotFound):
		return "Event not found"
	case errors.Is(err, ErrNotOrganizer):
		return "You are not the organizer of this event"
	case errors.Is(err, ErrAlreadyCheckedIn):
		return "This ticket has already been checked in"
	case errors.Is(err, ErrCheckInConflict):
		return "This ticket was just checked in on another device"
	default:
		return "Failed to update ticket"
	}
}
