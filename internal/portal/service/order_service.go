package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/entity"
	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/repository"
	"github.com/theDevJade/Robodores-Shop-Website/internal/shared/sheets"
)

// OrderService manages purchase requests and mirrors them to the team's
// order sheet.
type OrderService struct {
	orders    *repository.OrderRepository
	users     *repository.UserRepository
	sheets    *sheets.Client
	ordersURL string
	logger    *zap.Logger
}

func NewOrderService(orders *repository.OrderRepository, users *repository.UserRepository, sheetsClient *sheets.Client, ordersURL string, logger *zap.Logger) *OrderService {
	return &OrderService{orders: orders, users: users, sheets: sheetsClient, ordersURL: ordersURL, logger: logger}
}

// OrderCreateInput is a new purchase request.
type OrderCreateInput struct {
	RequesterName string  `json:"requester_name"`
	PartName      string  `json:"part_name"`
	VendorLink    string  `json:"vendor_link"`
	PriceUSD      float64 `json:"price_usd"`
	Justification *string `json:"justification"`
}

// Create files a purchase request. A second pending request for the same
// part by the same requester is refused. The sheet append is best effort;
// a sheet outage never blocks the order.
func (s *OrderService) Create(ctx context.Context, actorID uint, input *OrderCreateInput) (*entity.OrderRequest, error) {
	requesterName := strings.TrimSpace(input.RequesterName)
	if requesterName == "" {
		return nil, NewValidationError("Requester name is required")
	}
	partName := strings.TrimSpace(input.PartName)
	if partName == "" {
		return nil, NewValidationError("Part name is required")
	}
	if strings.TrimSpace(input.VendorLink) == "" {
		return nil, NewValidationError("Vendor link is required")
	}
	if input.PriceUSD < 0 {
		return nil, NewValidationError("Price cannot be negative")
	}

	if _, err := s.orders.FindPendingDuplicate(ctx, requesterName, partName); err == nil {
		return nil, NewConflictError("A pending order for this part already exists")
	} else if err != repository.ErrNotFound {
		return nil, err
	}

	order := &entity.OrderRequest{
		RequesterID:   &actorID,
		RequesterName: requesterName,
		PartName:      partName,
		VendorLink:    strings.TrimSpace(input.VendorLink),
		PriceUSD:      input.PriceUSD,
		Justification: input.Justification,
		Status:        entity.OrderStatusPending,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	if s.sheets != nil && s.ordersURL != "" {
		justification := ""
		if order.Justification != nil {
			justification = *order.Justification
		}
		row := []interface{}{
			order.CreatedAt.Format(time.RFC3339),
			order.RequesterName,
			order.PartName,
			order.VendorLink,
			fmt.Sprintf("%.2f", order.PriceUSD),
			justification,
			order.Status,
		}
		updatedRange, err := s.sheets.AppendOrderRow(ctx, s.ordersURL, row)
		if err != nil {
			s.logger.Warn("Order sheet append failed", zap.Uint("order_id", order.ID), zap.Error(err))
		} else if updatedRange != "" {
			order.SheetRow = &updatedRange
			if err := s.orders.Update(ctx, order); err != nil {
				return nil, err
			}
		}
	}
	return order, nil
}

// List returns every request, newest first.
func (s *OrderService) List(ctx context.Context) ([]entity.OrderRequest, error) {
	return s.orders.FindAll(ctx)
}

// UpdateStatus advances a request; lead only.
func (s *OrderService) UpdateStatus(ctx context.Context, actorID uint, orderID uint, status string) (*entity.OrderRequest, error) {
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, NewPermissionError("account no longer exists")
		}
		return nil, err
	}
	if !entity.IsLead(actor.Role) {
		return nil, NewPermissionError("Insufficient permissions")
	}
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !entity.ValidOrderStatus(status) {
		return nil, NewValidationError("Invalid status")
	}
	order.Status = status
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Delete removes a request; leads always, requesters their own.
func (s *OrderService) Delete(ctx context.Context, actorID uint, orderID uint) error {
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		if err == repository.ErrNotFound {
			return NewPermissionError("account no longer exists")
		}
		return err
	}
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if !entity.IsLead(actor.Role) && (order.RequesterID == nil || *order.RequesterID != actor.ID) {
		return NewPermissionError("Not allowed to remove this order")
	}
	return s.orders.Delete(ctx, orderID)
}

func (s *OrderService) findOrder(ctx context.Context, orderID uint) (*entity.OrderRequest, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, NewNotFoundError("Order not found")
		}
		return nil, err
	}
	return order, nil
}
