package controllers

import (
	"net/http"

	"github.com/lemonhouse/storefront/api/responses"
	"github.com/lemonhouse/storefront/api/validators"
	"github.com/lemonhouse/storefront/internal/accounts"
	"github.com/lemonhouse/storefront/internal/session"
	pkgerrors "github.com/lemonhouse/storefront/pkg/errors"
	"github.com/lemonhouse/storefront/pkg/logger"
)

type accountUpdateRequest struct {
	Name    *string `json:"name" validate:"omitempty,notblank"`
	Address *string `json:"address" validate:"omitempty,notblank"`
	Pincode *string `json:"pincode" validate:"omitempty,pincode"`
}

func (r accountUpdateRequest) patch() session.Patch {
	return session.Patch{Name: r.Name, Address: r.Address, Pincode: r.Pincode}
}

// AccountUpdate edits the logged-in user's details. The phone number is fixed.
func AccountUpdate(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "account service unavailable"))
			return
		}

		sessionID, err := sessionIDFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req accountUpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.UpdateAccount(r.Context(), sessionID, req.patch())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, state)
	}
}
