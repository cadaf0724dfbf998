package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/bookride/backend/pkg/errors"
)

type intentBody struct {
	Amount   int64  `json:"amount" validate:"required,gt=0"`
	Currency string `json:"currency" validate:"required,len=3"`
}

func decode(t *testing.T, body string) (*intentBody, error) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var dest intentBody
	err := DecodeJSONBody(req, &dest)
	return &dest, err
}

func TestDecodeJSONBodyValid(t *testing.T) {
	dest, err := decode(t, `{"amount":2500,"currency":"usd"}`)
	if err != nil {
		t.Fatalf("DecodeJSONBody: %v", err)
	}
	if dest.Amount != 2500 || dest.Currency != "usd" {
		t.Fatalf("decoded = %+v", dest)
	}
}

func TestDecodeJSONBodyMalformed(t *testing.T) {
	_, err := decode(t, `{"amount":`)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestDecodeJSONBodyUnknownField(t *testing.T) {
	_, err := decode(t, `{"amount":2500,"currency":"usd","customer":"cus_1"}`)
	if pkgerrors.As(err) == nil {
		t.Fatalf("err = %v, want validation error for unknown field", err)
	}
}

func TestDecodeJSONBodyValidationDetailsUseJSONNames(t *testing.T) {
	_, err := decode(t, `{"currency":"dollars"}`)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("err = %v, want typed validation error", err)
	}

	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("details = %#v, want field map", typed.Details())
	}
	if _, found := details["amount"]; !found {
		t.Fatalf("details missing amount: %v", details)
	}
	if _, found := details["currency"]; !found {
		t.Fatalf("details missing currency: %v", details)
	}
}
