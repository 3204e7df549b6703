package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/yudhapane/fpl-oracle/internal/domain/transfer"
	"github.com/yudhapane/fpl-oracle/internal/usecase"
)

func TestMapError(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
		wantCode   string
	}{
		{
			name:       "invalid input",
			err:        fmt.Errorf("%w: horizon out of range", usecase.ErrInvalidInput),
			wantStatus: http.StatusBadRequest,
			wantReason: "invalidInput",
			wantCode:   "INVALID_ARGUMENT",
		},
		{
			name:       "not found",
			err:        fmt.Errorf("%w: player=42", usecase.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantReason: "notFound",
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "dependency unavailable",
			err:        fmt.Errorf("%w: provider down", usecase.ErrDependencyUnavailable),
			wantStatus: http.StatusServiceUnavailable,
			wantReason: "dependencyUnavailable",
			wantCode:   "UNAVAILABLE",
		},
		{
			name:       "invalid squad size",
			err:        fmt.Errorf("%w: expected 15, got 13", transfer.ErrInvalidSquadSize),
			wantStatus: http.StatusBadRequest,
			wantReason: "invalidSquad",
			wantCode:   "INVALID_ARGUMENT",
		},
		{
			name:       "duplicate squad player",
			err:        transfer.ErrDuplicatePlayerInSquad,
			wantStatus: http.StatusBadRequest,
			wantReason: "invalidSquad",
			wantCode:   "INVALID_ARGUMENT",
		},
		{
			name:       "unknown strategy",
			err:        transfer.ErrUnknownStrategy,
			wantStatus: http.StatusBadRequest,
			wantReason: "invalidSquad",
			wantCode:   "INVALID_ARGUMENT",
		},
		{
			name:       "unclassified",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantReason: "internalError",
			wantCode:   "INTERNAL",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mapped := mapError(ctx, tc.err)
			if mapped.HTTPStatus != tc.wantStatus {
				t.Fatalf("HTTPStatus = %d, want %d", mapped.HTTPStatus, tc.wantStatus)
			}
			if mapped.Reason != tc.wantReason {
				t.Fatalf("Reason = %q, want %q", mapped.Reason, tc.wantReason)
			}
			if mapped.Status != tc.wantCode {
				t.Fatalf("Status = %q, want %q", mapped.Status, tc.wantCode)
			}
		})
	}
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) googleResponseEnvelope {
	t.Helper()
	var envelope googleResponseEnvelope
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return envelope
}

func TestWriteSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", ct)
	}

	envelope := decodeEnvelope(t, rec)
	if envelope.APIVersion != googleAPIVersion {
		t.Fatalf("apiVersion = %q, want %q", envelope.APIVersion, googleAPIVersion)
	}
	if envelope.Error != nil {
		t.Fatalf("unexpected error body: %+v", envelope.Error)
	}
	data, ok := envelope.Data.(map[string]any)
	if !ok {
		t.Fatalf("data has type %T, want object", envelope.Data)
	}
	if data["status"] != "ok" {
		t.Fatalf("data.status = %v, want ok", data["status"])
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: player=42", usecase.ErrNotFound))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	envelope := decodeEnvelope(t, rec)
	if envelope.Data != nil {
		t.Fatalf("unexpected data body: %v", envelope.Data)
	}
	if envelope.Error == nil {
		t.Fatalf("missing error body")
	}
	if envelope.Error.Code != http.StatusNotFound {
		t.Fatalf("error.code = %d, want 404", envelope.Error.Code)
	}
	if envelope.Error.Status != "NOT_FOUND" {
		t.Fatalf("error.status = %q, want NOT_FOUND", envelope.Error.Status)
	}
	if len(envelope.Error.Errors) != 1 {
		t.Fatalf("error.errors has %d items, want 1", len(envelope.Error.Errors))
	}
	item := envelope.Error.Errors[0]
	if item.Domain != errorDomain {
		t.Fatalf("error domain = %q, want %q", item.Domain, errorDomain)
	}
	if item.Reason != "notFound" {
		t.Fatalf("error reason = %q, want notFound", item.Reason)
	}
}

func TestWriteInternalError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeInternalError(context.Background(), rec)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	envelope := decodeEnvelope(t, rec)
	if envelope.Error == nil {
		t.Fatalf("missing error body")
	}
	// The generic body must not leak the underlying failure.
	if envelope.Error.Message != "internal server error" {
		t.Fatalf("error.message = %q, want generic message", envelope.Error.Message)
	}
}

func TestRound2(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{in: 0, want: 0},
		{in: 1.234, want: 1.23},
		{in: 1.236, want: 1.24},
		{in: -1.234, want: -1.23},
		{in: -1.236, want: -1.24},
		{in: 99.999, want: 100},
	}

	for _, tc := range cases {
		if got := round2(tc.in); got != tc.want {
			t.Fatalf("round2(%f) = %f, want %f", tc.in, got, tc.want)
		}
	}
}
