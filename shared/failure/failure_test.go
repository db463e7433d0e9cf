package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"toolrent/shared/failure"
)

func TestFailure_Error(t *testing.T) {
	f := &failure.Failure{
		Code:    http.StatusBadRequest,
		Message: "start_date must be before end_date",
	}

	if f.Error() != "start_date must be before end_date" {
		t.Errorf("expected error message to be 'start_date must be before end_date', got %s", f.Error())
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		kind    failure.Kind
		message string
	}{
		{
			name:    "Validation",
			err:     failure.Validation("duplicate tool in booking"),
			code:    http.StatusBadRequest,
			kind:    failure.KindValidation,
			message: "duplicate tool in booking",
		},
		{
			name:    "NotFound",
			err:     failure.NotFound("booking not found"),
			code:    http.StatusNotFound,
			kind:    failure.KindNotFound,
			message: "booking not found",
		},
		{
			name:    "UnavailableStock",
			err:     failure.UnavailableStock("tool is not available in requested quantity"),
			code:    http.StatusConflict,
			kind:    failure.KindUnavailableStock,
			message: "tool is not available in requested quantity",
		},
		{
			name:    "InvalidState",
			err:     failure.InvalidState("booking cannot be cancelled"),
			code:    http.StatusConflict,
			kind:    failure.KindInvalidState,
			message: "booking cannot be cancelled",
		},
		{
			name:    "ConcurrencyConflict",
			err:     failure.ConcurrencyConflict("tool quantity changed concurrently"),
			code:    http.StatusConflict,
			kind:    failure.KindConcurrencyConflict,
			message: "tool quantity changed concurrently",
		},
		{
			name:    "Unauthorized",
			err:     failure.Unauthorized("token expired"),
			code:    http.StatusUnauthorized,
			kind:    failure.KindUnauthorized,
			message: "token expired",
		},
		{
			name:    "Forbidden",
			err:     failure.Forbidden("Access denied"),
			code:    http.StatusForbidden,
			kind:    failure.KindForbidden,
			message: "Access denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := tt.err.(*failure.Failure)
			if !ok {
				t.Fatalf("expected result to be *failure.Failure, got %T", tt.err)
			}

			if f.Code != tt.code {
				t.Errorf("expected code to be %d, got %d", tt.code, f.Code)
			}

			if f.Kind != tt.kind {
				t.Errorf("expected kind to be %s, got %s", tt.kind, f.Kind)
			}

			if f.Message != tt.message {
				t.Errorf("expected message to be %s, got %s", tt.message, f.Message)
			}
		})
	}
}

func TestBadRequest(t *testing.T) {
	if failure.BadRequest(nil) != nil {
		t.Error("expected nil for nil input")
	}

	err := failure.BadRequest(errors.New("failed to decode request body"))
	if failure.GetCode(err) != http.StatusBadRequest {
		t.Errorf("expected code to be %d, got %d", http.StatusBadRequest, failure.GetCode(err))
	}
}

func TestInternalError(t *testing.T) {
	if failure.InternalError(nil) != nil {
		t.Error("expected nil for nil input")
	}

	err := failure.InternalError(errors.New("database connection failed"))
	if failure.GetKind(err) != failure.KindInternal {
		t.Errorf("expected kind internal, got %s", failure.GetKind(err))
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		input    error
		expected int
	}{
		{
			name:     "failure error",
			input:    failure.InvalidState("nothing to return"),
			expected: http.StatusConflict,
		},
		{
			name:     "wrapped failure error",
			input:    fmt.Errorf("failed to cancel booking: %w", failure.NotFound("booking not found")),
			expected: http.StatusNotFound,
		},
		{
			name:     "regular error",
			input:    errors.New("connection reset"),
			expected: http.StatusInternalServerError,
		},
		{
			name:     "nil error",
			input:    nil,
			expected: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := failure.GetCode(tt.input)
			if result != tt.expected {
				t.Errorf("expected code to be %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestIsKind(t *testing.T) {
	wrapped := fmt.Errorf("failed to create booking: %w", failure.UnavailableStock("not enough stock"))

	if !failure.IsKind(wrapped, failure.KindUnavailableStock) {
		t.Error("expected wrapped failure to match its kind")
	}

	if failure.IsKind(wrapped, failure.KindValidation) {
		t.Error("expected kind mismatch")
	}

	if failure.IsKind(nil, failure.KindInternal) {
		t.Error("expected nil error to match no kind")
	}

	if !failure.IsKind(errors.New("disk full"), failure.KindInternal) {
		t.Error("expected plain error to be internal")
	}
}
