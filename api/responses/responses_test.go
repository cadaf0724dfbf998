package responses

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/bookride/backend/pkg/errors"
)

func TestWriteSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}

	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data["status"] != "ok" {
		t.Fatalf("data = %v", envelope.Data)
	}
}

func TestWritePayloadSkipsEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WritePayload(rec, http.StatusOK, map[string]string{"clientSecret": "pi_1_secret"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["clientSecret"] != "pi_1_secret" {
		t.Fatalf("body = %v", body)
	}
	if _, wrapped := body["data"]; wrapped {
		t.Fatalf("payload wrapped in a data envelope: %s", rec.Body.String())
	}
}

func TestWriteErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{pkgerrors.New(pkgerrors.CodeValidation, "bad amount"), http.StatusBadRequest},
		{pkgerrors.New(pkgerrors.CodeNotFound, "no booking"), http.StatusNotFound},
		{pkgerrors.New(pkgerrors.CodeConflict, "already processed"), http.StatusConflict},
		{pkgerrors.New(pkgerrors.CodeDependency, "stripe down"), http.StatusServiceUnavailable},
		{fmt.Errorf("untyped"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		WriteError(context.Background(), nil, rec, tc.err)
		if rec.Code != tc.status {
			t.Errorf("WriteError(%v) status = %d, want %d", tc.err, rec.Code, tc.status)
		}
	}
}

func TestWriteErrorExposesValidationMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, pkgerrors.New(pkgerrors.CodeValidation, "amount must be a positive integer in minor units"))

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Message != "amount must be a positive integer in minor units" {
		t.Fatalf("message = %q", envelope.Error.Message)
	}
	if envelope.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("code = %q", envelope.Error.Code)
	}
}

func TestWriteErrorHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, pkgerrors.Wrap(pkgerrors.CodeInternal, fmt.Errorf("pq: secret detail"), "query failed"))

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Message != "internal server error" {
		t.Fatalf("message = %q, want generic internal message", envelope.Error.Message)
	}
}
