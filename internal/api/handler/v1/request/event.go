package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type CreateEventRequest struct {
	Title     string   `json:"title"`
	StartDate string   `json:"start_date"` // RFC 3339
	Images    []string `json:"images,omitempty"`
}

func (req *CreateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required, validation.Length(2, 200)),
		validation.Field(&req.StartDate, validation.Required),
	)
}

type CreateTicketRequest struct {
	EventID      string `json:"event_id"`
	TicketNumber string `json:"ticket_number"`
}

func (req *CreateTicketRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.EventID, validation.Required),
		validation.Field(&req.TicketNumber, validation.Required),
	)
}
