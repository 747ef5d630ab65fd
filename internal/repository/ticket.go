package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/eventgate/backend/internal/domain"
	"github.com/eventgate/backend/internal/repository/dao"
)

var (
	ErrTicketNotFound  = dao.ErrTicketNotFound
	ErrCheckInConflict = dao.ErrCheckInConflict
)

type TicketDAO interface {
	Insert(ctx context.Context, ticket dao.Ticket) (dao.Ticket, error)
	FindByID(ctx context.Context, id string) (dao.Ticket, error)
	FindByEventID(ctx context.Context, eventID string) ([]dao.Ticket, error)
	MarkCheckedIn(ctx context.Context, id string, at time.Time) error
}

type TicketRepository struct {
	dao TicketDAO
}

func NewTicketRepository(dao TicketDAO) *TicketRepository {
	return &TicketRepository{
		dao: dao,
	}
}

func (r *TicketRepository) Create(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error) {
	created, err := r.dao.Insert(ctx, dao.Ticket{
		EventID:      ticket.EventID,
		TicketNumber: ticket.TicketNumber,
	})
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *TicketRepository) FindByID(ctx context.Context, id string) (domain.Ticket, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *TicketRepository) FindByEventID(ctx context.Context, eventID string) ([]domain.Ticket, error) {
	found, err := r.dao.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByEventID -> %w", err)
	}

	tickets := make([]domain.Ticket, 0, len(found))
	for _, t := range found {
		tickets = append(tickets, r.daoToDomain(t))
	}

	return tickets, nil
}

func (r *TicketRepository) MarkCheckedIn(ctx context.Context, id string, at time.Time) error {
	if err := r.dao.MarkCheckedIn(ctx, id, at); err != nil {
		return fmt.Errorf("r.dao.MarkCheckedIn -> %w", err)
	}

	return nil
}

func (r *TicketRepository) daoToDomain(t dao.Ticket) domain.Ticket {
	return domain.Ticket{
		ID:           t.ID,
		EventID:      t.EventID,
		TicketNumber: t.TicketNumber,
		CheckedIn:    t.CheckedIn,
		CheckedInAt:  t.CheckedInAt,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}
