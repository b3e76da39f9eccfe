package repository

import (
	"context"
	"errors"

	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/entity"
	"gorm.io/gorm"
)

// TicketRepository stores feature requests and issue reports.
type TicketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// FindAll returns tickets newest first, optionally filtered by type and status.
func (r *TicketRepository) FindAll(ctx context.Context, ticketType, status string) ([]entity.Ticket, error) {
	var tickets []entity.Ticket
	query := r.db.WithContext(ctx).Model(&entity.Ticket{})
	if ticketType != "" {
		query = query.Where("type = ?", ticketType)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("created_at DESC").Find(&tickets).Error
	return tickets, err
}

func (r *TicketRepository) FindByID(ctx context.Context, id uint) (*entity.Ticket, error) {
	var ticket entity.Ticket
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *TicketRepository) Create(ctx context.Context, ticket *entity.Ticket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *TicketRepository) Update(ctx context.Context, ticket *entity.Ticket) error {
	return r.db.WithContext(ctx).Save(ticket).Error
}

func (r *TicketRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.Ticket{}, "id = ?", id).Error
}

// ClearUser detaches tickets from a deleted account, keeping the name.
func (r *TicketRepository) ClearUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Model(&entity.Ticket{}).
		Where("requester_id = ?", userID).
		Update("requester_id", nil).Error
}
