package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	pkgerrors "github.com/lemonhouse/storefront/pkg/errors"
)

type signupBody struct {
	Name    string `json:"name" validate:"notblank"`
	Phone   string `json:"phone" validate:"phone"`
	Pincode string `json:"pincode" validate:"pincode"`
}

func TestDecodeJSONBodyReportsFieldMessages(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"  ","phone":"12345","pincode":"56000a"}`))
	var body signupBody
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details %T", typed.Details())
	}
	want := map[string]string{
		"name":    "is required",
		"phone":   "must be a 10 digit phone number",
		"pincode": "must be a 6 digit pincode",
	}
	for k, v := range want {
		if details[k] != v {
			t.Fatalf("field %s: expected %q, got %q", k, v, details[k])
		}
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Asha","phone":"9876543210","pincode":"560001","role":"admin"}`))
	var body signupBody
	if err := DecodeJSONBody(req, &body); err == nil {
		t.Fatal("expected unknown field error")
	}
}

func TestParseIndexParam(t *testing.T) {
	withParam := func(value string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("index", value)
		req := httptest.NewRequest(http.MethodPatch, "/", nil)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	if got, err := ParseIndexParam(withParam("2"), "index"); err != nil || got != 2 {
		t.Fatalf("unexpected result %d (%v)", got, err)
	}
	for _, bad := range []string{"", "-1", "x"} {
		if _, err := ParseIndexParam(withParam(bad), "index"); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestBearerToken(t *testing.T) {
	if token, err := BearerToken("Bearer abc.def"); err != nil || token != "abc.def" {
		t.Fatalf("unexpected token %q (%v)", token, err)
	}
	if token, err := BearerToken("abc.def"); err != nil || token != "abc.def" {
		t.Fatalf("raw token should be accepted, got %q (%v)", token, err)
	}
	for _, bad := range []string{"", "Bearer ", "Bearer a b"} {
		if _, err := BearerToken(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello world  ", 5); got != "hello" {
		t.Fatalf("unexpected %q", got)
	}
}
