package cart

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lemonhouse/storefront/internal/catalog"
	"github.com/lemonhouse/storefront/internal/keylock"
	"github.com/lemonhouse/storefront/internal/orders"
	"github.com/lemonhouse/storefront/internal/session"
	"github.com/lemonhouse/storefront/pkg/config"
	"github.com/lemonhouse/storefront/pkg/enums"
	pkgerrors "github.com/lemonhouse/storefront/pkg/errors"
	"github.com/lemonhouse/storefront/pkg/logger"
	"github.com/lemonhouse/storefront/pkg/types"
	"github.com/shopspring/decimal"
)

const submitScope = "order"

// View is the draft as the UI renders it, with the total recomputed against the catalog.
type View struct {
	Lines  []LineItem      `json:"lines"`
	Total  decimal.Decimal `json:"total"`
	Notice *types.Notice   `json:"notice,omitempty"`
}

// SubmitResult describes an accepted order.
type SubmitResult struct {
	Order orders.Order `json:"order"`
	Link  string       `json:"link,omitempty"`
	Cart  View         `json:"cart"`
}

// Service owns the order draft of every session.
type Service interface {
	Get(ctx context.Context, sessionID string) (View, error)
	AddLine(ctx context.Context, sessionID string) (View, error)
	RemoveLine(ctx context.Context, sessionID string, index int) (View, error)
	SetLineItem(ctx context.Context, sessionID string, index int, field enums.LineField, value string) (View, error)
	Submit(ctx context.Context, sessionID string, orderType enums.OrderType) (SubmitResult, error)
	MessageLink(ctx context.Context, sessionID string) (string, error)
}

// Deps groups the collaborators of the cart service.
type Deps struct {
	Drafts    DraftStore
	InFlight  InFlightGuard
	Sessions  session.Service
	Catalog   catalog.Service
	Orders    orders.Service
	Messaging config.MessagingConfig

	// InFlightTTL bounds how long a crashed submission can block the next one.
	InFlightTTL time.Duration
	Logger      *logger.Logger
}

type service struct {
	drafts      DraftStore
	inFlight    InFlightGuard
	sessions    session.Service
	catalog     catalog.Service
	orders      orders.Service
	messaging   config.MessagingConfig
	inFlightTTL time.Duration
	logg        *logger.Logger
	locks       keylock.Map
}

// NewService validates dependencies and builds the cart service.
func NewService(deps Deps) (Service, error) {
	switch {
	case deps.Drafts == nil:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "draft store required")
	case deps.InFlight == nil:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "in-flight guard required")
	case deps.Sessions == nil:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session service required")
	case deps.Catalog == nil:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog service required")
	case deps.Orders == nil:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders service required")
	}
	ttl := deps.InFlightTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &service{
		drafts:      deps.Drafts,
		inFlight:    deps.InFlight,
		sessions:    deps.Sessions,
		catalog:     deps.Catalog,
		orders:      deps.Orders,
		messaging:   deps.Messaging,
		inFlightTTL: ttl,
		logg:        deps.Logger,
	}, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (View, error) {
	draft, err := s.load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	return s.view(ctx, draft, nil), nil
}

func (s *service) AddLine(ctx context.Context, sessionID string) (View, error) {
	return s.mutate(ctx, sessionID, func(d Draft) (Draft, *types.Notice, error) {
		return AddLine(d), nil, nil
	})
}

func (s *service) RemoveLine(ctx context.Context, sessionID string, index int) (View, error) {
	return s.mutate(ctx, sessionID, func(d Draft) (Draft, *types.Notice, error) {
		next, err := RemoveLine(d, index)
		return next, nil, err
	})
}

func (s *service) SetLineItem(ctx context.Context, sessionID string, index int, field enums.LineField, value string) (View, error) {
	return s.mutate(ctx, sessionID, func(d Draft) (Draft, *types.Notice, error) {
		return SetLineItem(d, index, field, value)
	})
}

// Submit validates the draft, records the order and resets the draft. A rejected or failed
// submission leaves the draft as it was.
func (s *service) Submit(ctx context.Context, sessionID string, orderType enums.OrderType) (SubmitResult, error) {
	if !orderType.IsValid() {
		return SubmitResult{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid order type")
	}
	if err := requireSessionID(sessionID); err != nil {
		return SubmitResult{}, err
	}

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	state, err := s.sessions.Current(ctx, sessionID)
	if err != nil {
		return SubmitResult{}, err
	}
	draft, err := s.load(ctx, sessionID)
	if err != nil {
		return SubmitResult{}, err
	}
	products := s.catalog.List(ctx)
	total := ComputeTotal(draft, products)
	if err := CheckSubmit(draft, state, total); err != nil {
		return SubmitResult{}, err
	}

	acquired, err := s.inFlight.AcquireInFlight(ctx, submitScope, sessionID, s.inFlightTTL)
	if err != nil {
		return SubmitResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire submission flag")
	}
	if !acquired {
		return SubmitResult{}, pkgerrors.New(pkgerrors.CodeConflict, "order submission already in progress")
	}
	defer func() {
		if err := s.inFlight.ReleaseInFlight(context.WithoutCancel(ctx), submitScope, sessionID); err != nil {
			s.logError(ctx, sessionID, "cart.submit.release_failed", err)
		}
	}()

	user, _ := state.User()
	order := orders.Order{
		Name:         user.Name,
		Phone:        user.Phone,
		Address:      user.Address,
		Pincode:      user.Pincode,
		OrderDetails: Summary(draft, products),
		TotalAmount:  total,
		OrderType:    orderType,
	}

	var link string
	if orderType == enums.OrderTypeWhatsApp {
		if link, err = BuildExternalMessageLink(s.messaging.WhatsAppBaseURL, s.messaging.WhatsAppNumber, draft, total, state, products); err != nil {
			return SubmitResult{}, err
		}
	}

	placed, err := s.orders.Place(ctx, order)
	if err != nil {
		return SubmitResult{}, err
	}

	return SubmitResult{
		Order: placed,
		Link:  link,
		Cart:  s.view(ctx, s.resetAfterSubmit(ctx, sessionID, draft), nil),
	}, nil
}

// resetAfterSubmit clears the submitted draft. A draft changed elsewhere while the order was
// being placed is kept as it is.
func (s *service) resetAfterSubmit(ctx context.Context, sessionID string, submitted Draft) Draft {
	stored, err := s.load(ctx, sessionID)
	if err != nil {
		s.logError(ctx, sessionID, "cart.submit.reset_failed", err)
		return NewDraft()
	}
	if !sameDraft(stored, submitted) {
		s.logWarn(ctx, sessionID, "cart.submit.draft_changed")
		return stored
	}
	fresh := NewDraft()
	if err := s.drafts.Save(ctx, sessionID, fresh); err != nil {
		s.logError(ctx, sessionID, "cart.submit.reset_failed", err)
	}
	return fresh
}

func sameDraft(a, b Draft) bool {
	if len(a.Lines) != len(b.Lines) {
		return false
	}
	for i := range a.Lines {
		if a.Lines[i].Grade != b.Lines[i].Grade || !a.Lines[i].Quantity.Equal(b.Lines[i].Quantity) {
			return false
		}
	}
	return true
}

func (s *service) MessageLink(ctx context.Context, sessionID string) (string, error) {
	state, err := s.sessions.Current(ctx, sessionID)
	if err != nil {
		return "", err
	}
	draft, err := s.load(ctx, sessionID)
	if err != nil {
		return "", err
	}
	products := s.catalog.List(ctx)
	return BuildExternalMessageLink(s.messaging.WhatsAppBaseURL, s.messaging.WhatsAppNumber, draft, ComputeTotal(draft, products), state, products)
}

// mutate runs one load-modify-save under the session's lock.
func (s *service) mutate(ctx context.Context, sessionID string, fn func(Draft) (Draft, *types.Notice, error)) (View, error) {
	if err := requireSessionID(sessionID); err != nil {
		return View{}, err
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	draft, err := s.load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	next, notice, err := fn(draft)
	if err != nil {
		return View{}, err
	}
	if notice == nil {
		if err := s.drafts.Save(ctx, sessionID, next); err != nil {
			return View{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist draft")
		}
	}
	return s.view(ctx, next, notice), nil
}

// load returns the stored draft, or a new one when nothing usable is stored.
func (s *service) load(ctx context.Context, sessionID string) (Draft, error) {
	if err := requireSessionID(sessionID); err != nil {
		return Draft{}, err
	}
	draft, found, err := s.drafts.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrCorruptDraft) {
			s.logError(ctx, sessionID, "cart.draft.corrupt", err)
			return NewDraft(), nil
		}
		return Draft{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load draft")
	}
	if !found || len(draft.Lines) == 0 {
		return NewDraft(), nil
	}
	return draft, nil
}

func (s *service) view(ctx context.Context, draft Draft, notice *types.Notice) View {
	lines := make([]LineItem, len(draft.Lines))
	copy(lines, draft.Lines)
	return View{
		Lines:  lines,
		Total:  ComputeTotal(draft, s.catalog.List(ctx)),
		Notice: notice,
	}
}

func (s *service) logWarn(ctx context.Context, sessionID, msg string) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithSessionID(ctx, sessionID), msg)
}

func (s *service) logError(ctx context.Context, sessionID, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Error(s.logg.WithSessionID(ctx, sessionID), msg, err)
}

func requireSessionID(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session required")
	}
	return nil
}
