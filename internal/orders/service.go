package orders

import (
	"context"
	"time"

	"github.com/lemonhouse/storefront/internal/session"
	pkgerrors "github.com/lemonhouse/storefront/pkg/errors"
	"github.com/lemonhouse/storefront/pkg/logger"
	"github.com/lemonhouse/storefront/pkg/sheets"
)

// Service places orders and reads a customer's order history.
type Service interface {
	Place(ctx context.Context, order Order) (Order, error)
	History(ctx context.Context, sessionID string) ([]DateGroup, error)
}

type service struct {
	gateway  sheets.Gateway
	sessions session.Service
	loc      *time.Location
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the orders service. Timestamps are written and grouped in loc.
func NewService(gateway sheets.Gateway, sessions session.Service, loc *time.Location, logg *logger.Logger) (Service, error) {
	if gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "sheets gateway required")
	}
	if sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session service required")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &service{
		gateway:  gateway,
		sessions: sessions,
		loc:      loc,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// Place stamps the order with the current time and appends it to the Orders collection.
func (s *service) Place(ctx context.Context, order Order) (Order, error) {
	if !order.OrderType.IsValid() {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid order type")
	}
	order.Timestamp = FormatTimestamp(s.now(), s.loc)
	if err := s.gateway.Create(ctx, sheets.Orders, toRow(order)); err != nil {
		return Order{}, err
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(s.logg.WithPhone(ctx, order.Phone), map[string]any{
			"order_type": string(order.OrderType),
			"total":      order.TotalAmount.StringFixed(2),
		})
		s.logg.Info(logCtx, "orders.placed")
	}
	return order, nil
}

func (s *service) History(ctx context.Context, sessionID string) ([]DateGroup, error) {
	state, err := s.sessions.Current(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	user, ok := state.User()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "please log in to view your orders")
	}

	rows, err := s.gateway.Query(ctx, sheets.Orders, colPhone, user.Phone)
	if err != nil {
		return nil, err
	}
	list := make([]Order, 0, len(rows))
	for i, row := range rows {
		order, err := fromRow(row)
		if err != nil {
			if s.logg != nil {
				s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"row": i, "error": err.Error()}), "orders.row_dropped")
			}
			continue
		}
		list = append(list, order)
	}
	return GroupByDate(list, s.loc), nil
}
