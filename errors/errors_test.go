package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeNotFound, "not found", http.StatusNotFound)
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, err.HTTPStatus)
	}
	if err.Retryable {
		t.Error("NOT_FOUND should not be retryable")
	}
}

func TestAppError_NotFound_EmptyID(t *testing.T) {
	err := NotFound("callback", "")
	if _, ok := err.Details["id"]; ok {
		t.Error("expected no 'id' key in details when id is empty")
	}
	if err.Details["resource"] != "callback" {
		t.Errorf("expected resource=callback, got %v", err.Details["resource"])
	}
}

func TestAppError_Unauthorized_FixedMessage(t *testing.T) {
	a, b := Unauthorized(), Unauthorized()
	if a.Message != UnauthorizedMessage || b.Message != a.Message {
		t.Errorf("expected the fixed message, got %q and %q", a.Message, b.Message)
	}
	if a.HTTPStatus != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", a.HTTPStatus)
	}
	if len(a.Details) != 0 {
		t.Error("unauthorized errors must not carry details")
	}
}

func TestAppError_Constructors_Table(t *testing.T) {
	tests := []struct {
		name      string
		err       *AppError
		code      ErrorCode
		status    int
		retryable bool
	}{
		{"ServiceUnavailable", ServiceUnavailable("hasher"), ErrCodeServiceUnavailable, http.StatusServiceUnavailable, true},
		{"AlreadyExists", AlreadyExists("client"), ErrCodeAlreadyExists, http.StatusConflict, false},
		{"Conflict", Conflict("registration missing"), ErrCodeConflict, http.StatusConflict, false},
		{"InvalidInput", InvalidInput("email", "must be valid"), ErrCodeInvalidInput, http.StatusBadRequest, false},
		{"Validation", Validation("bad input"), ErrCodeInvalidInput, http.StatusBadRequest, false},
		{"BadRequest", BadRequest("malformed header"), ErrCodeBadRequest, http.StatusBadRequest, false},
		{"Unauthorized", Unauthorized(), ErrCodeUnauthorized, http.StatusUnauthorized, false},
		{"Internal", Internal(nil), ErrCodeInternal, http.StatusInternalServerError, false},
		{"DatabaseError", DatabaseError(nil), ErrCodeDatabaseError, http.StatusInternalServerError, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.HTTPStatus != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, tc.err.HTTPStatus)
			}
			if tc.err.Retryable != tc.retryable {
				t.Errorf("expected retryable=%v, got %v", tc.retryable, tc.err.Retryable)
			}
		})
	}
}

func TestAppError_WithCause_Chain(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := NotFound("token", "1").WithCause(cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if !strings.Contains(err.Error(), "root cause") {
		t.Errorf("Error() should contain cause, got %q", err.Error())
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := &AppError{}
	err.WithDetail("key", "value")
	if err.Details["key"] != "value" {
		t.Errorf("expected key=value, got %v", err.Details["key"])
	}
}

func TestAppError_ToPublicResponse(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{"validation withheld", InvalidInput("email", "must be valid"), "The request is invalid."},
		{"bad request withheld", BadRequest("header has three parts"), "The request is invalid."},
		{"internal withheld", Internal(fmt.Errorf("db down")), "An unexpected error occurred."},
		{"conflict kept", AlreadyExists("user"), "A user with these details already exists."},
		{"unauthorized kept", Unauthorized(), UnauthorizedMessage},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := tc.err.ToPublicResponse()
			if resp.Error.Message != tc.wantMessage {
				t.Errorf("expected %q, got %q", tc.wantMessage, resp.Error.Message)
			}
			if resp.Error.Code != tc.err.Code {
				t.Errorf("code must survive, got %s", resp.Error.Code)
			}
		})
	}

	if InvalidInput("email", "x").ToPublicResponse().Error.Details != nil {
		t.Error("details must be withheld for validation errors")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil) != nil {
		t.Error("Wrap(nil) should return nil")
	}

	orig := NotFound("item", "1")
	if Wrap(fmt.Errorf("outer: %w", orig)) != orig {
		t.Error("Wrap should unwrap to the original AppError")
	}

	plain := fmt.Errorf("something broke")
	got := Wrap(plain)
	if got.Code != ErrCodeInternal || got.Cause != plain {
		t.Errorf("expected INTERNAL_ERROR wrapping the cause, got %v", got)
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("redeem: %w", Unauthorized())
	if !HasCode(err, ErrCodeUnauthorized) {
		t.Error("expected wrapped unauthorized to match")
	}
	if HasCode(err, ErrCodeNotFound) {
		t.Error("unexpected match on NOT_FOUND")
	}
	if HasCode(fmt.Errorf("plain"), ErrCodeInternal) {
		t.Error("plain errors carry no code")
	}
}

func TestAppError_AsAppError(t *testing.T) {
	wrapped := fmt.Errorf("wrap: %w", Internal(nil))
	got, ok := AsAppError(wrapped)
	if !ok || got.Code != ErrCodeInternal {
		t.Fatalf("expected INTERNAL_ERROR, got %v (ok=%v)", got, ok)
	}
	if _, ok := AsAppError(fmt.Errorf("not an app error")); ok {
		t.Error("expected AsAppError to return false for non-AppError")
	}
	if !IsAppError(wrapped) {
		t.Error("expected IsAppError to be true")
	}
}
