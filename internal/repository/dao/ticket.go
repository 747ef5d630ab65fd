package dao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrCheckInConflict = errors.New("ticket already checked in")
)

type Ticket struct {
	ID string `gorm:"primaryKey"`

	EventID      string `gorm:"index;not null"`
	TicketNumber string `gorm:"not null"`

	CheckedIn   bool `gorm:"not null;default:false"`
	CheckedInAt *time.Time

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

type TicketDAO struct {
	db *gorm.DB
}

func NewTicketDAO(db *gorm.DB) *TicketDAO {
	return &TicketDAO{
		db: db,
	}
}

func (d *TicketDAO) Insert(ctx context.Context, ticket Ticket) (Ticket, error) {
	result := d.db.WithContext(ctx).Create(&ticket)
	if result.Error != nil {
		return Ticket{}, result.Error
	}

	return ticket, nil
}

func (d *TicketDAO) FindByID(ctx context.Context, id string) (Ticket, error) {
	var ticket Ticket

	result := d.db.WithContext(ctx).First(&ticket, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Ticket{}, ErrTicketNotFound
		}

		return Ticket{}, result.Error
	}

	return ticket, nil
}

func (d *TicketDAO) FindByEventID(ctx context.Context, eventID string) ([]Ticket, error) {
	var tickets []Ticket

	result := d.db.WithContext(ctx).Where("event_id = ?", eventID).Find(&tickets)
	if result.Error != nil {
		return nil, result.Error
	}

	return tickets, nil
}

// MarkCheckedIn flips checked_in conditionally on its current value, so two
// scanners racing on the same ticket cannot both win. Zero affected rows on an
// existing ticket means a concurrent check-in got there first.
func (d *TicketDAO) MarkCheckedIn(ctx context.Context, id string, at time.Time) error {
	result := d.db.WithContext(ctx).Model(&Ticket{}).
		Where("id = ? AND checked_in = ?", id, false).
		Updates(map[string]interface{}{
			"checked_in":    true,
			"checked_in_at": at,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		var ticket Ticket
		if err := d.db.WithContext(ctx).First(&ticket, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTicketNotFound
			}
			return err
		}

		return ErrCheckInConflict
	}

	return nil
}
