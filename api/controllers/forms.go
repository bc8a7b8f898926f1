package controllers

import (
	"net/http"

	"github.com/lemonhouse/storefront/api/responses"
	"github.com/lemonhouse/storefront/api/validators"
	"github.com/lemonhouse/storefront/internal/validation"
	"github.com/lemonhouse/storefront/pkg/logger"
)

type fieldInputRequest struct {
	Field   string `json:"field" validate:"required,oneof=phone pincode"`
	Current string `json:"current"`
	Next    string `json:"next"`
}

type fieldInputResponse struct {
	Value    string `json:"value"`
	Accepted bool   `json:"accepted"`
}

// FormFieldInput applies the digits-only keystroke filter for the phone and pincode inputs.
func FormFieldInput(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req fieldInputRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		accept := validation.AcceptPhoneInput
		if req.Field == "pincode" {
			accept = validation.AcceptPincodeInput
		}
		value := accept(req.Current, req.Next)
		responses.WriteSuccess(w, fieldInputResponse{Value: value, Accepted: value == req.Next})
	}
}
