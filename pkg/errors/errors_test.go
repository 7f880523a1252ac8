package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"
)

func TestMetadataMapping(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		retryable bool
		detailsOK bool
	}{
		{CodeValidation, http.StatusBadRequest, false, true},
		{CodeUnauthorized, http.StatusUnauthorized, false, false},
		{CodeForbidden, http.StatusForbidden, false, false},
		{CodeNotFound, http.StatusNotFound, false, false},
		{CodeConflict, http.StatusConflict, false, false},
		{CodeStateConflict, http.StatusUnprocessableEntity, false, true},
		{CodeRateLimit, http.StatusTooManyRequests, false, false},
		{CodeInternal, http.StatusInternalServerError, true, false},
		{CodeDependency, http.StatusServiceUnavailable, true, true},
	}
	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("%s: status = %d, want %d", tt.code, meta.HTTPStatus, tt.status)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("%s: retryable = %v, want %v", tt.code, meta.Retryable, tt.retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("%s: details allowed = %v, want %v", tt.code, meta.DetailsAllowed, tt.detailsOK)
		}
		if meta.PublicMessage == "" {
			t.Fatalf("%s: empty public message", tt.code)
		}
	}
}

func TestMetadataForUnknownCode(t *testing.T) {
	if got := MetadataFor("NO_SUCH_CODE").HTTPStatus; got != http.StatusInternalServerError {
		t.Fatalf("unknown code mapped to %d, want 500", got)
	}
}

func TestNewAndWithDetails(t *testing.T) {
	err := New(CodeValidation, "register number required")
	if err.Code() != CodeValidation || err.Message() != "register number required" {
		t.Fatalf("unexpected error contents: %v", err)
	}
	if err.Details() != nil {
		t.Fatalf("fresh error should carry no details")
	}
	err.WithDetails(map[string]string{"field": "register_number"})
	if err.Details() == nil {
		t.Fatalf("WithDetails did not stick")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("connection reset")
	wrapped := Wrap(CodeDependency, cause, "insert profile")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("cause lost through Wrap")
	}
	if wrapped.Code() != CodeDependency {
		t.Fatalf("code = %s, want %s", wrapped.Code(), CodeDependency)
	}
	if Wrap(CodeInternal, nil, "no cause").Unwrap() != nil {
		t.Fatalf("Wrap(nil) should have no cause")
	}
}

func TestAs(t *testing.T) {
	inner := New(CodeConflict, "email already registered")
	chained := stdErrors.Join(stdErrors.New("outer"), inner)
	if got := As(chained); got == nil || got.Code() != CodeConflict {
		t.Fatalf("As did not find typed error in chain")
	}
	if As(stdErrors.New("plain")) != nil {
		t.Fatalf("As should return nil for untyped errors")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should be nil")
	}
}
