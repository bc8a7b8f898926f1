package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lemonhouse/storefront/internal/catalog"
	"github.com/lemonhouse/storefront/internal/orders"
	"github.com/lemonhouse/storefront/internal/session"
	"github.com/lemonhouse/storefront/internal/session/sessiontest"
	"github.com/lemonhouse/storefront/pkg/config"
	"github.com/lemonhouse/storefront/pkg/enums"
	pkgerrors "github.com/lemonhouse/storefront/pkg/errors"
	"github.com/lemonhouse/storefront/pkg/sheets"
	"github.com/lemonhouse/storefront/pkg/sheets/sheetstest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryDrafts struct {
	mu      sync.Mutex
	drafts  map[string]Draft
	saveErr error
	loadErr error
}

func (m *memoryDrafts) Load(_ context.Context, id string) (Draft, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return Draft{}, false, m.loadErr
	}
	d, ok := m.drafts[id]
	return d, ok, nil
}

func (m *memoryDrafts) Save(_ context.Context, id string, d Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.drafts[id] = d
	return nil
}

type memoryGuard struct {
	mu       sync.Mutex
	held     map[string]bool
	released int
}

func (g *memoryGuard) AcquireInFlight(_ context.Context, scope, id string, _ time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := scope + ":" + id
	if g.held[key] {
		return false, nil
	}
	g.held[key] = true
	return true, nil
}

func (g *memoryGuard) ReleaseInFlight(_ context.Context, scope, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, scope+":"+id)
	g.released++
	return nil
}

type fixture struct {
	svc     Service
	gateway *sheetstest.Gateway
	drafts  *memoryDrafts
	guard   *memoryGuard
}

func newFixture(t *testing.T, sessions session.Service) fixture {
	t.Helper()
	gw := sheetstest.New()
	gw.Seed(sheets.Products,
		sheets.Row{"id": "1", "Grade": "Eureka", "Price": "80"},
		sheets.Row{"id": "2", "Grade": "Meyer", "Price": "120"},
	)
	cat, err := catalog.NewService(gw, time.Minute, nil)
	require.NoError(t, err)
	ord, err := orders.NewService(gw, sessions, time.UTC, nil)
	require.NoError(t, err)

	drafts := &memoryDrafts{drafts: map[string]Draft{}}
	guard := &memoryGuard{held: map[string]bool{}}
	svc, err := NewService(Deps{
		Drafts:    drafts,
		InFlight:  guard,
		Sessions:  sessions,
		Catalog:   cat,
		Orders:    ord,
		Messaging: config.MessagingConfig{WhatsAppNumber: "919845000000", WhatsAppBaseURL: "https://wa.me"},
	})
	require.NoError(t, err)
	return fixture{svc: svc, gateway: gw, drafts: drafts, guard: guard}
}

func fillDraft(t *testing.T, svc Service, id string) {
	t.Helper()
	ctx := context.Background()
	_, err := svc.SetLineItem(ctx, id, 0, enums.LineFieldGrade, "Eureka")
	require.NoError(t, err)
	view, err := svc.SetLineItem(ctx, id, 0, enums.LineFieldQuantity, "2")
	require.NoError(t, err)
	require.Equal(t, "160.00", view.Total.StringFixed(2))
}

func TestGetReturnsNewDraftWhenEmpty(t *testing.T) {
	t.Parallel()

	f := newFixture(t, sessiontest.Sessions(t))
	view, err := f.svc.Get(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.True(t, view.Total.IsZero())
}

func TestDuplicateGradeKeepsStoredDraft(t *testing.T) {
	t.Parallel()

	f := newFixture(t, sessiontest.Sessions(t))
	ctx := context.Background()
	fillDraft(t, f.svc, "s1")
	_, err := f.svc.AddLine(ctx, "s1")
	require.NoError(t, err)

	view, err := f.svc.SetLineItem(ctx, "s1", 1, enums.LineFieldGrade, "Eureka")
	require.NoError(t, err)
	require.NotNil(t, view.Notice)
	assert.Equal(t, "", view.Lines[1].Grade)
	assert.Equal(t, "", f.drafts.drafts["s1"].Lines[1].Grade)
}

func TestSubmitRejectedNeverCallsGateway(t *testing.T) {
	t.Parallel()

	f := newFixture(t, sessiontest.LoggedIn(t, "s1", asha))
	_, err := f.svc.Submit(context.Background(), "s1", enums.OrderTypeWebsite)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, 0, f.gateway.CallCount("create", sheets.Orders))
	assert.Equal(t, 0, f.guard.released)
}

func TestSubmitRequiresLogin(t *testing.T) {
	t.Parallel()

	f := newFixture(t, sessiontest.Sessions(t))
	fillDraft(t, f.svc, "s1")
	_, err := f.svc.Submit(context.Background(), "s1", enums.OrderTypeWebsite)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, msgLoginToOrder, typed.Message())
	assert.Equal(t, 0, f.gateway.CallCount("create", sheets.Orders))
}

func TestSubmitAcceptedClearsDraft(t *testing.T) {
	t.Parallel()

	f := newFixture(t, sessiontest.LoggedIn(t, "s1", asha))
	ctx := context.Background()
	fillDraft(t, f.svc, "s1")

	result, err := f.svc.Submit(ctx, "s1", enums.OrderTypeWebsite)
	require.NoError(t, err)
	assert.Empty(t, result.Link)
	assert.Equal(t, "1. Eureka - 2 kg @ ₹80.00/kg = ₹160.00", result.Order.OrderDetails)
	assert.Equal(t, "160.00", result.Order.TotalAmount.StringFixed(2))
	assert.True(t, result.Cart.Total.IsZero())
	assert.Equal(t, NewDraft(), f.drafts.drafts["s1"])
	assert.Equal(t, 1, f.guard.released)

	rows := f.gateway.Rows(sheets.Orders)
	require.Len(t, rows, 1)
	assert.Equal(t, "9876543210", rows[0].String("Phone"))
	assert.Equal(t, "Website", rows[0].String("OrderType"))
}

func TestSubmitWhatsAppPersistsAndReturnsLink(t *testing.T) {
	t.Parallel()

	f := newFixture(t, sessiontest.LoggedIn(t, "s1", asha))
	fillDraft(t, f.svc, "s1")

	result, err := f.svc.Submit(context.Background(), "s1", enums.OrderTypeWhatsApp)
	require.NoError(t, err)
	assert.Contains(t, result.Link, "https://wa.me/919845000000?text=")
	assert.Equal(t, "WhatsApp", f.gateway.Rows(sheets.Orders)[0].String("OrderType"))
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	t.Parallel()

	f := newFixture(t, sessiontest.LoggedIn(t, "s1", asha))
	fillDraft(t, f.svc, "s1")
	f.gateway.FailOn("create", sheets.Orders)

	_, err := f.svc.Submit(context.Background(), "s1", enums.OrderTypeWebsite)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.True(t, typed.Retryable())
	assert.Equal(t, "Eureka", f.drafts.drafts["s1"].Lines[0].Grade)
	assert.Equal(t, 1, f.guard.released)

	view, err := f.svc.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "160.00", view.Total.StringFixed(2))
}

func TestSubmitBlockedWhileInFlight(t *testing.T) {
	t.Parallel()

	f := newFixture(t, sessiontest.LoggedIn(t, "s1", asha))
	fillDraft(t, f.svc, "s1")
	f.guard.held["order:s1"] = true

	_, err := f.svc.Submit(context.Background(), "s1", enums.OrderTypeWebsite)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	assert.Equal(t, 0, f.gateway.CallCount("create", sheets.Orders))
}

func TestDraftPersistFailureIsDependency(t *testing.T) {
	t.Parallel()

	f := newFixture(t, sessiontest.Sessions(t))
	f.drafts.saveErr = errors.New("redis down")
	_, err := f.svc.AddLine(context.Background(), "s1")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestCorruptDraftStartsOver(t *testing.T) {
	t.Parallel()

	f := newFixture(t, sessiontest.Sessions(t))
	f.drafts.loadErr = ErrCorruptDraft
	view, err := f.svc.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, view.Lines, 1)
}

func TestMessageLinkUsesCurrentDraft(t *testing.T) {
	t.Parallel()

	f := newFixture(t, sessiontest.Sessions(t))
	fillDraft(t, f.svc, "s1")

	link, err := f.svc.MessageLink(context.Background(), "s1")
	require.NoError(t, err)
	assert.Contains(t, link, "Eureka")
	assert.Equal(t, 0, f.gateway.CallCount("create", sheets.Orders))
}

func TestConcurrentLineEditsAllPersist(t *testing.T) {
	t.Parallel()

	f := newFixture(t, sessiontest.Sessions(t))
	ctx := context.Background()
	_, err := f.svc.AddLine(ctx, "s1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i, grade := range []string{"Eureka", "Meyer"} {
		wg.Add(1)
		go func(index int, grade string) {
			defer wg.Done()
			_, err := f.svc.SetLineItem(ctx, "s1", index, enums.LineFieldGrade, grade)
			assert.NoError(t, err)
		}(i, grade)
	}
	wg.Wait()

	stored := f.drafts.drafts["s1"]
	require.Len(t, stored.Lines, 2)
	assert.Equal(t, "Eureka", stored.Lines[0].Grade)
	assert.Equal(t, "Meyer", stored.Lines[1].Grade)
}

func TestSubmitKeepsDraftChangedDuringPlacement(t *testing.T) {
	t.Parallel()

	f := newFixture(t, sessiontest.LoggedIn(t, "s1", asha))
	ctx := context.Background()
	fillDraft(t, f.svc, "s1")

	edited := Draft{Lines: []LineItem{{Grade: "Meyer", Quantity: decimal.NewFromInt(1)}}}
	f.gateway.OnCreate = func(col sheets.Collection, row sheets.Row) sheets.Row {
		if col == sheets.Orders {
			require.NoError(t, f.drafts.Save(ctx, "s1", edited))
		}
		return row
	}

	result, err := f.svc.Submit(ctx, "s1", enums.OrderTypeWebsite)
	require.NoError(t, err)
	assert.Equal(t, "160.00", result.Order.TotalAmount.StringFixed(2))
	assert.Equal(t, edited, f.drafts.drafts["s1"])
	assert.Equal(t, "120.00", result.Cart.Total.StringFixed(2))
}

func TestSameDraftComparesQuantityByValue(t *testing.T) {
	t.Parallel()

	a := Draft{Lines: []LineItem{{Grade: "Eureka", Quantity: decimal.RequireFromString("2")}}}
	b := Draft{Lines: []LineItem{{Grade: "Eureka", Quantity: decimal.RequireFromString("2.0")}}}
	assert.True(t, sameDraft(a, b))
	b.Lines[0].Grade = "Meyer"
	assert.False(t, sameDraft(a, b))
	assert.False(t, sameDraft(a, NewDraft()))
}
