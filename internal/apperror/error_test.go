package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestGetKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain", err: errors.New("boom"), want: KindInternal},
		{name: "direct", err: Validation("bad input"), want: KindValidation},
		{name: "wrapped", err: fmt.Errorf("create: %w", NotFound("missing")), want: KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetKind(tt.err); got != tt.want {
				t.Fatalf("GetKind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("db down")
	err := Wrap(KindInternal, "failed to load", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped error to match cause")
	}
	if err.Error() != "failed to load" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	if !Is(err, KindInternal) {
		t.Fatalf("expected internal kind")
	}
}
