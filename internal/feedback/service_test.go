package feedback

import (
	"context"
	"testing"

	"github.com/lemonhouse/storefront/internal/session"
	"github.com/lemonhouse/storefront/internal/session/sessiontest"
	pkgerrors "github.com/lemonhouse/storefront/pkg/errors"
	"github.com/lemonhouse/storefront/pkg/sheets"
	"github.com/lemonhouse/storefront/pkg/sheets/sheetstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitDefaultsFromSession(t *testing.T) {
	t.Parallel()

	gw := sheetstest.New()
	sessions := sessiontest.LoggedIn(t, "s1", session.User{Name: "Asha", Phone: "9876543210", Address: "12 MG Road"})
	svc, err := NewService(gw, sessions, nil)
	require.NoError(t, err)

	entry, err := svc.Submit(context.Background(), "s1", Request{Message: "  Juicy lemons!  "})
	require.NoError(t, err)
	assert.Equal(t, Entry{Name: "Asha", Phone: "9876543210", Address: "12 MG Road", Message: "Juicy lemons!"}, entry)

	rows := gw.Rows(sheets.Feedback)
	require.Len(t, rows, 1)
	assert.Equal(t, "Juicy lemons!", rows[0].String("Feedback"))
}

func TestSubmitAnonymousRequiresIdentity(t *testing.T) {
	t.Parallel()

	gw := sheetstest.New()
	svc, err := NewService(gw, sessiontest.Sessions(t), nil)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), "s1", Request{Phone: "12345", Message: "hi"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, map[string]string{"name": "is required", "phone": "must be a 10 digit phone number"}, typed.Details())
	assert.Empty(t, gw.Calls())
}

func TestSubmitGatewayFailure(t *testing.T) {
	t.Parallel()

	gw := sheetstest.New()
	gw.FailOn("create", sheets.Feedback)
	svc, err := NewService(gw, sessiontest.Sessions(t), nil)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), "s1", Request{Name: "Ravi", Phone: "9123456780", Message: "late delivery"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestSubmitTrimsPhoneBeforeChecking(t *testing.T) {
	t.Parallel()

	gw := sheetstest.New()
	svc, err := NewService(gw, sessiontest.Sessions(t), nil)
	require.NoError(t, err)

	entry, err := svc.Submit(context.Background(), "s1", Request{Name: "Ravi", Phone: "  9123456780\t", Message: "late delivery"})
	require.NoError(t, err)
	assert.Equal(t, "9123456780", entry.Phone)
	assert.Equal(t, "9123456780", gw.Rows(sheets.Feedback)[0].String("Phone"))
}
