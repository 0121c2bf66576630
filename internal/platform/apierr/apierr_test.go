package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusOfUnwrapsWrappedErrors(t *testing.T) {
	base := NotFound("subject_not_found", "subject %s not found", "abc")
	wrapped := fmt.Errorf("load: %w", base)

	if got := StatusOf(wrapped); got != http.StatusNotFound {
		t.Fatalf("StatusOf=%d want %d", got, http.StatusNotFound)
	}
	if got := StatusOf(errors.New("plain")); got != 0 {
		t.Fatalf("StatusOf(plain)=%d want 0", got)
	}
	if base.Error() != "subject abc not found" {
		t.Fatalf("Error()=%q", base.Error())
	}
}

func TestErrorFallsBackToCode(t *testing.T) {
	e := New(http.StatusForbidden, "forbidden", nil)
	if e.Error() != "forbidden" {
		t.Fatalf("Error()=%q want forbidden", e.Error())
	}
}
