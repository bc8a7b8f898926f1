package controllers

import (
	"net/http"
	"time"

	"github.com/lemonhouse/storefront/api/responses"
	"github.com/lemonhouse/storefront/internal/session"
	pkgAuth "github.com/lemonhouse/storefront/pkg/auth"
	"github.com/lemonhouse/storefront/pkg/config"
	pkgerrors "github.com/lemonhouse/storefront/pkg/errors"
	"github.com/lemonhouse/storefront/pkg/logger"
)

type sessionStartResponse struct {
	Token string        `json:"token"`
	State session.State `json:"state"`
}

// SessionStart issues a token bound to a fresh session id.
func SessionStart(svc session.Service, cfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}

		sessionID := pkgAuth.NewSessionID()
		token, err := pkgAuth.MintSessionToken(cfg, time.Now().UTC(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.Hydrate(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, sessionStartResponse{Token: token, State: state})
	}
}

// SessionFetch hydrates the caller's session from durable storage.
func SessionFetch(svc session.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}

		sessionID, err := sessionIDFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.Hydrate(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, state)
	}
}
