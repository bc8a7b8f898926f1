package feedback

import (
	"context"
	"strings"

	"github.com/lemonhouse/storefront/internal/session"
	"github.com/lemonhouse/storefront/internal/validation"
	pkgerrors "github.com/lemonhouse/storefront/pkg/errors"
	"github.com/lemonhouse/storefront/pkg/logger"
	"github.com/lemonhouse/storefront/pkg/sheets"
)

// Request is a feedback form submission. Blank identity fields are filled from the logged-in user.
type Request struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Message string `json:"message" validate:"notblank"`
}

// Entry is the stored feedback record.
type Entry struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Message string `json:"message"`
}

type Service interface {
	Submit(ctx context.Context, sessionID string, req Request) (Entry, error)
}

type service struct {
	gateway  sheets.Gateway
	sessions session.Service
	logg     *logger.Logger
}

func NewService(gateway sheets.Gateway, sessions session.Service, logg *logger.Logger) (Service, error) {
	if gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "sheets gateway required")
	}
	if sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session service required")
	}
	return &service{gateway: gateway, sessions: sessions, logg: logg}, nil
}

func (s *service) Submit(ctx context.Context, sessionID string, req Request) (Entry, error) {
	entry := Entry{
		Name:    strings.TrimSpace(req.Name),
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
		Message: strings.TrimSpace(req.Message),
	}

	state, err := s.sessions.Current(ctx, sessionID)
	if err != nil {
		return Entry{}, err
	}
	if user, ok := state.User(); ok {
		entry.Name = firstNonBlank(entry.Name, user.Name)
		entry.Phone = firstNonBlank(entry.Phone, user.Phone)
		entry.Address = firstNonBlank(entry.Address, user.Address)
	}

	details := map[string]string{}
	for _, field := range validation.MissingFields(map[string]string{
		"name":    entry.Name,
		"phone":   entry.Phone,
		"message": entry.Message,
	}) {
		details[field] = "is required"
	}
	if _, missing := details["phone"]; !missing && !validation.IsPhone(entry.Phone) {
		details["phone"] = "must be a 10 digit phone number"
	}
	if len(details) > 0 {
		return Entry{}, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}

	if err := s.gateway.Create(ctx, sheets.Feedback, sheets.Row{
		"Name":     entry.Name,
		"Phone":    entry.Phone,
		"Address":  entry.Address,
		"Feedback": entry.Message,
	}); err != nil {
		return Entry{}, err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithPhone(ctx, entry.Phone), "feedback.submitted")
	}
	return entry, nil
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if validation.Required(v) {
			return v
		}
	}
	return ""
}
