package addresses

import (
	"context"
	"fmt"
	"testing"

	"github.com/lemonhouse/storefront/internal/session"
	"github.com/lemonhouse/storefront/internal/session/sessiontest"
	pkgerrors "github.com/lemonhouse/storefront/pkg/errors"
	"github.com/lemonhouse/storefront/pkg/sheets"
	"github.com/lemonhouse/storefront/pkg/sheets/sheetstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var asha = session.User{Name: "Asha", Phone: "9876543210", Address: "12 MG Road", Pincode: "560001"}

func newTestService(t *testing.T, gw *sheetstest.Gateway, sessions session.Service) Service {
	t.Helper()
	svc, err := NewService(gw, sessions, nil)
	require.NoError(t, err)
	counter := 0
	svc.(*service).newID = func() string {
		counter++
		return fmt.Sprintf("addr-%d", counter)
	}
	return svc
}

func validRequest() Request {
	return Request{
		Name:        "Asha",
		Phone:       "9876543210",
		HouseNumber: "12",
		Street:      "MG Road",
		Pincode:     "560001",
		City:        "Bengaluru",
		State:       "Karnataka",
	}
}

func TestCreateAssignsIDAndRefetches(t *testing.T) {
	t.Parallel()

	gw := sheetstest.New()
	svc := newTestService(t, gw, sessiontest.LoggedIn(t, "s1", asha))

	list, err := svc.Create(context.Background(), "s1", validRequest())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "addr-1", list[0].ID)
	assert.Equal(t, "9876543210", list[0].UserPhone)
	assert.Empty(t, list[0].Landmark)
	assert.Equal(t, 1, gw.CallCount("query", sheets.Addresses))
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()

	gw := sheetstest.New()
	svc := newTestService(t, gw, sessiontest.LoggedIn(t, "s1", asha))

	req := validRequest()
	req.Street = "  "
	req.Pincode = "5600"
	_, err := svc.Create(context.Background(), "s1", req)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, map[string]string{"street": "is required", "pincode": "must be a 6 digit pincode"}, typed.Details())
	assert.Empty(t, gw.Calls())
}

func TestListOnlyReturnsOwnerRows(t *testing.T) {
	t.Parallel()

	gw := sheetstest.New()
	gw.Seed(sheets.Addresses,
		sheets.Row{"id": "a1", "UserPhone": "9876543210", "City": "Bengaluru"},
		sheets.Row{"id": "a2", "UserPhone": "9000000000", "City": "Chennai"},
	)
	svc := newTestService(t, gw, sessiontest.LoggedIn(t, "s1", asha))

	list, err := svc.List(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a1", list[0].ID)
}

func TestUpdateChecksOwnership(t *testing.T) {
	t.Parallel()

	gw := sheetstest.New()
	gw.Seed(sheets.Addresses, sheets.Row{"id": "a2", "UserPhone": "9000000000", "City": "Chennai"})
	svc := newTestService(t, gw, sessiontest.LoggedIn(t, "s1", asha))

	_, err := svc.Update(context.Background(), "s1", "a2", validRequest())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, 0, gw.CallCount("update", sheets.Addresses))
}

func TestUpdateAndDelete(t *testing.T) {
	t.Parallel()

	gw := sheetstest.New()
	gw.Seed(sheets.Addresses, sheets.Row{"id": "a1", "UserPhone": "9876543210", "City": "Bengaluru"})
	svc := newTestService(t, gw, sessiontest.LoggedIn(t, "s1", asha))
	ctx := context.Background()

	req := validRequest()
	req.City = "Mysuru"
	list, err := svc.Update(ctx, "s1", "a1", req)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Mysuru", list[0].City)

	list, err = svc.Delete(ctx, "s1", "a1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRequiresLogin(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, sheetstest.New(), sessiontest.Sessions(t))
	_, err := svc.List(context.Background(), "s1")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestGatewayFailureSurfaces(t *testing.T) {
	t.Parallel()

	gw := sheetstest.New()
	gw.FailOn("create", sheets.Addresses)
	svc := newTestService(t, gw, sessiontest.LoggedIn(t, "s1", asha))
	_, err := svc.Create(context.Background(), "s1", validRequest())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}
