package addresses

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lemonhouse/storefront/internal/session"
	"github.com/lemonhouse/storefront/internal/validation"
	pkgerrors "github.com/lemonhouse/storefront/pkg/errors"
	"github.com/lemonhouse/storefront/pkg/logger"
	"github.com/lemonhouse/storefront/pkg/sheets"
)

// Service manages the saved addresses of the logged-in customer.
type Service interface {
	List(ctx context.Context, sessionID string) ([]Address, error)
	Create(ctx context.Context, sessionID string, req Request) ([]Address, error)
	Update(ctx context.Context, sessionID, addressID string, req Request) ([]Address, error)
	Delete(ctx context.Context, sessionID, addressID string) ([]Address, error)
}

type service struct {
	gateway  sheets.Gateway
	sessions session.Service
	logg     *logger.Logger
	newID    func() string
}

// NewService builds the addresses service.
func NewService(gateway sheets.Gateway, sessions session.Service, logg *logger.Logger) (Service, error) {
	if gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "sheets gateway required")
	}
	if sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session service required")
	}
	return &service{
		gateway:  gateway,
		sessions: sessions,
		logg:     logg,
		newID:    func() string { return uuid.NewString() },
	}, nil
}

func (s *service) List(ctx context.Context, sessionID string) ([]Address, error) {
	owner, err := s.owner(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, owner)
}

func (s *service) Create(ctx context.Context, sessionID string, req Request) ([]Address, error) {
	req = req.normalized()
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	owner, err := s.owner(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	row := req.row(owner)
	row[colID] = s.newID()
	if err := s.gateway.Create(ctx, sheets.Addresses, row); err != nil {
		return nil, err
	}
	return s.list(ctx, owner)
}

func (s *service) Update(ctx context.Context, sessionID, addressID string, req Request) ([]Address, error) {
	req = req.normalized()
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	owner, err := s.owner(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureOwned(ctx, owner, addressID); err != nil {
		return nil, err
	}

	if err := s.gateway.Update(ctx, sheets.Addresses, colID, strings.TrimSpace(addressID), req.row(owner)); err != nil {
		return nil, err
	}
	return s.list(ctx, owner)
}

func (s *service) Delete(ctx context.Context, sessionID, addressID string) ([]Address, error) {
	owner, err := s.owner(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureOwned(ctx, owner, addressID); err != nil {
		return nil, err
	}

	if err := s.gateway.Delete(ctx, sheets.Addresses, colID, strings.TrimSpace(addressID)); err != nil {
		return nil, err
	}
	return s.list(ctx, owner)
}

func (s *service) list(ctx context.Context, owner string) ([]Address, error) {
	rows, err := s.gateway.Query(ctx, sheets.Addresses, colUserPhone, owner)
	if err != nil {
		return nil, err
	}
	out := make([]Address, 0, len(rows))
	for _, row := range rows {
		addr := fromRow(row)
		if addr.UserPhone != owner {
			continue
		}
		out = append(out, addr)
	}
	return out, nil
}

// ensureOwned loads the owner's addresses and checks addressID is among them.
func (s *service) ensureOwned(ctx context.Context, owner, addressID string) error {
	id := strings.TrimSpace(addressID)
	if id == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "address id is required")
	}
	current, err := s.list(ctx, owner)
	if err != nil {
		return err
	}
	for _, addr := range current {
		if addr.ID == id {
			return nil
		}
	}
	if s.logg != nil {
		s.logg.Warn(s.logg.WithField(s.logg.WithPhone(ctx, owner), "address_id", id), "addresses.not_owned")
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
}

func (s *service) owner(ctx context.Context, sessionID string) (string, error) {
	state, err := s.sessions.Current(ctx, sessionID)
	if err != nil {
		return "", err
	}
	user, ok := state.User()
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "please log in to manage addresses")
	}
	return user.Phone, nil
}

func validateRequest(req Request) error {
	details := map[string]string{}
	missing := validation.MissingFields(map[string]string{
		"name":        req.Name,
		"houseNumber": req.HouseNumber,
		"street":      req.Street,
		"city":        req.City,
		"state":       req.State,
	})
	for _, field := range missing {
		details[field] = "is required"
	}
	if !validation.IsPhone(req.Phone) {
		details["phone"] = "must be a 10 digit phone number"
	}
	if !validation.IsPincode(req.Pincode) {
		details["pincode"] = "must be a 6 digit pincode"
	}
	if len(details) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
}
