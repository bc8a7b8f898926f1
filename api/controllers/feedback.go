package controllers

import (
	"net/http"

	"github.com/lemonhouse/storefront/api/responses"
	"github.com/lemonhouse/storefront/api/validators"
	"github.com/lemonhouse/storefront/internal/feedback"
	pkgerrors "github.com/lemonhouse/storefront/pkg/errors"
	"github.com/lemonhouse/storefront/pkg/logger"
)

const (
	feedbackMessageLimit = 2000
	feedbackFieldLimit   = 200
)

func FeedbackSubmit(svc feedback.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "feedback service unavailable"))
			return
		}

		sessionID, err := sessionIDFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req feedback.Request
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		req.Name = validators.SanitizeString(req.Name, feedbackFieldLimit)
		req.Phone = validators.SanitizeString(req.Phone, feedbackFieldLimit)
		req.Address = validators.SanitizeString(req.Address, feedbackFieldLimit)
		req.Message = validators.SanitizeString(req.Message, feedbackMessageLimit)

		entry, err := svc.Submit(r.Context(), sessionID, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}
