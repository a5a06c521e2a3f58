package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "simple error",
			err:      stderrors.New("something went wrong"),
			expected: "Error: something went wrong",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := Format(tt.err); result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{Validation("title is required"), http.StatusBadRequest},
		{DuplicateRecord("2024-03-20"), http.StatusBadRequest},
		{InvalidCredentials(), http.StatusUnauthorized},
		{Unauthenticated(), http.StatusUnauthorized},
		{Forbidden("not yours"), http.StatusForbidden},
		{NotFound("habit"), http.StatusNotFound},
		{Internal("create habit", stderrors.New("disk full")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Kind), func(t *testing.T) {
			if got := tt.err.Status(); got != tt.want {
				t.Errorf("Status() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("handler: %w", NotFound("habit"))
	if KindOf(err) != KindNotFound {
		t.Errorf("KindOf() = %q, want %q", KindOf(err), KindNotFound)
	}
	if !Is(err, KindNotFound) {
		t.Error("Is() should match wrapped kind")
	}
	if Is(nil, KindNotFound) {
		t.Error("Is(nil) should be false")
	}
	if KindOf(stderrors.New("boom")) != KindInternal {
		t.Error("plain errors should be internal")
	}
}

func TestInternalHidesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Internal("list habits", cause)

	if err.Message != "internal server error" {
		t.Errorf("unexpected client message %q", err.Message)
	}
	if !stderrors.Is(err, cause) {
		t.Error("cause should be reachable through Unwrap")
	}
}

func TestAs(t *testing.T) {
	appErr := As(stderrors.New("boom"))
	if appErr.Kind != KindInternal {
		t.Errorf("As() kind = %q, want internal", appErr.Kind)
	}

	orig := Validation("bad date %q", "2024-13-01")
	if As(fmt.Errorf("wrap: %w", orig)) != orig {
		t.Error("As() should return the wrapped AppError")
	}
	if orig.Message != `bad date "2024-13-01"` {
		t.Errorf("Validation message = %q", orig.Message)
	}
}
