package controllers

import (
	"net/http"

	"github.com/lemonhouse/storefront/api/middleware"
	pkgerrors "github.com/lemonhouse/storefront/pkg/errors"
)

func sessionIDFrom(r *http.Request) (string, error) {
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "session context missing")
	}
	return sessionID, nil
}
