package accounts

import (
	"context"
	"strings"

	"github.com/lemonhouse/storefront/internal/session"
	"github.com/lemonhouse/storefront/internal/validation"
	pkgerrors "github.com/lemonhouse/storefront/pkg/errors"
	"github.com/lemonhouse/storefront/pkg/logger"
	"github.com/lemonhouse/storefront/pkg/sheets"
)

const (
	msgPhoneTaken   = "an account with this phone number already exists, please log in instead"
	msgNoMatch      = "no account matches this name and phone number"
	msgLoginFirst   = "please log in first"
	msgEmptyPatch   = "no account changes supplied"
	fieldIsRequired = "is required"
)

// Service handles sign-up, login and account edits against the Users collection.
type Service interface {
	SignUp(ctx context.Context, sessionID string, req SignUpRequest) (session.State, error)
	Login(ctx context.Context, sessionID string, req LoginRequest) (session.State, error)
	Logout(ctx context.Context, sessionID string) (session.State, error)
	UpdateAccount(ctx context.Context, sessionID string, patch session.Patch) (session.State, error)
}

type service struct {
	gateway  sheets.Gateway
	sessions session.Service
	logg     *logger.Logger
}

// NewService builds the accounts service.
func NewService(gateway sheets.Gateway, sessions session.Service, logg *logger.Logger) (Service, error) {
	if gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "sheets gateway required")
	}
	if sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session service required")
	}
	return &service{gateway: gateway, sessions: sessions, logg: logg}, nil
}

func (s *service) SignUp(ctx context.Context, sessionID string, req SignUpRequest) (session.State, error) {
	req = req.normalized()
	if err := validateSignUp(req); err != nil {
		return session.State{}, err
	}

	existing, err := s.gateway.Query(ctx, sheets.Users, colPhone, req.Phone)
	if err != nil {
		return session.State{}, err
	}
	for _, row := range existing {
		if _, ok := fromRow(row); ok {
			return session.State{}, pkgerrors.New(pkgerrors.CodeConflict, msgPhoneTaken)
		}
	}

	user := req.user()
	if err := s.gateway.Create(ctx, sheets.Users, toRow(user)); err != nil {
		return session.State{}, err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithPhone(ctx, user.Phone), "accounts.signup.created")
	}
	return s.sessions.Login(ctx, sessionID, user)
}

func (s *service) Login(ctx context.Context, sessionID string, req LoginRequest) (session.State, error) {
	name := strings.TrimSpace(req.Name)
	phone := strings.TrimSpace(req.Phone)
	if err := validateLogin(name, phone); err != nil {
		return session.State{}, err
	}

	rows, err := s.gateway.Query(ctx, sheets.Users, colPhone, phone)
	if err != nil {
		return session.State{}, err
	}
	user, ok := matchAccount(rows, name, phone)
	if !ok {
		return session.State{}, pkgerrors.New(pkgerrors.CodeUnauthorized, msgNoMatch)
	}
	return s.sessions.Login(ctx, sessionID, user)
}

func (s *service) Logout(ctx context.Context, sessionID string) (session.State, error) {
	return s.sessions.Logout(ctx, sessionID)
}

func (s *service) UpdateAccount(ctx context.Context, sessionID string, patch session.Patch) (session.State, error) {
	if patch.Empty() {
		return session.State{}, pkgerrors.New(pkgerrors.CodeValidation, msgEmptyPatch)
	}
	patch = normalizePatch(patch)
	if err := validatePatch(patch); err != nil {
		return session.State{}, err
	}

	current, err := s.sessions.Current(ctx, sessionID)
	if err != nil {
		return current, err
	}
	user, ok := current.User()
	if !ok {
		return current, pkgerrors.New(pkgerrors.CodeUnauthorized, msgLoginFirst)
	}

	merged := patch.Apply(user)
	if err := s.gateway.Update(ctx, sheets.Users, colPhone, user.Phone, toRow(merged)); err != nil {
		return current, err
	}
	return s.sessions.UpdateCurrentUser(ctx, sessionID, patch)
}

// matchAccount picks the row whose name equals name ignoring case and surrounding spaces.
func matchAccount(rows []sheets.Row, name, phone string) (session.User, bool) {
	for _, row := range rows {
		user, ok := fromRow(row)
		if !ok || user.Phone != phone {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(user.Name), name) {
			return user, true
		}
	}
	return session.User{}, false
}

func validateSignUp(req SignUpRequest) error {
	details := map[string]string{}
	for field, value := range map[string]string{"name": req.Name, "address": req.Address} {
		if !validation.Required(value) {
			details[field] = fieldIsRequired
		}
	}
	if !validation.IsPhone(req.Phone) {
		details["phone"] = "must be a 10 digit phone number"
	}
	if !validation.IsPincode(req.Pincode) {
		details["pincode"] = "must be a 6 digit pincode"
	}
	return validationError(details)
}

func validateLogin(name, phone string) error {
	details := map[string]string{}
	if !validation.Required(name) {
		details["name"] = fieldIsRequired
	}
	if !validation.IsPhone(phone) {
		details["phone"] = "must be a 10 digit phone number"
	}
	return validationError(details)
}

func validatePatch(patch session.Patch) error {
	details := map[string]string{}
	if patch.Name != nil && !validation.Required(*patch.Name) {
		details["name"] = "must not be blank"
	}
	if patch.Address != nil && !validation.Required(*patch.Address) {
		details["address"] = "must not be blank"
	}
	if patch.Pincode != nil && !validation.IsPincode(*patch.Pincode) {
		details["pincode"] = "must be a 6 digit pincode"
	}
	return validationError(details)
}

func normalizePatch(patch session.Patch) session.Patch {
	trim := func(v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		return &t
	}
	return session.Patch{Name: trim(patch.Name), Address: trim(patch.Address), Pincode: trim(patch.Pincode)}
}

func validationError(details map[string]string) error {
	if len(details) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
}
