package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindPredicates(t *testing.T) {
	t.Parallel()

	if !IsValidation(Validation("bad input")) {
		t.Fatal("expected validation kind")
	}
	if !IsConflict(Conflict("slug %q taken", "egg")) {
		t.Fatal("expected conflict kind")
	}
	if !IsNotFound(NotFound("missing")) {
		t.Fatal("expected not-found kind")
	}
	if !IsDependency(Dependency("create substitution", errors.New("boom"))) {
		t.Fatal("expected dependency kind")
	}
	if IsValidation(errors.New("plain")) {
		t.Fatal("plain error must not classify as validation")
	}
}

func TestWrappedErrorsKeepKind(t *testing.T) {
	t.Parallel()

	inner := Conflict("substitution %q already exists", "flax-egg-substitute")
	wrapped := fmt.Errorf("create: %w", inner)
	if !IsConflict(wrapped) {
		t.Fatalf("wrapped error lost its kind: %v", wrapped)
	}
}

func TestDependencyUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := Dependency("lookup ingredients", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected dependency error to wrap cause, got %v", err)
	}
	if err.Error() != "lookup ingredients failed" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("bad"), http.StatusBadRequest},
		{"conflict", Conflict("dup"), http.StatusConflict},
		{"not found", NotFound("gone"), http.StatusNotFound},
		{"dependency", Dependency("op", errors.New("x")), http.StatusInternalServerError},
		{"unknown", errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Fatalf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
