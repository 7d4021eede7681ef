package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"corpus missing", fmt.Errorf("loading: %w", ErrCorpusNotFound), http.StatusNotFound},
		{"term missing", ErrTermNotFound, http.StatusNotFound},
		{"duplicate doc", fmt.Errorf("adding doc1.txt: %w", ErrDuplicateDocument), http.StatusConflict},
		{"invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"backend down", ErrBackendUnavailable, http.StatusServiceUnavailable},
		{"timeout", ErrTimeout, http.StatusServiceUnavailable},
		{"frozen", ErrIndexFrozen, http.StatusInternalServerError},
		{"app error wins", New(ErrInvalidInput, http.StatusTeapot, "custom"), http.StatusTeapot},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatusCode(tt.err); got != tt.want {
				t.Errorf("HTTPStatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := Newf(ErrInvalidInput, http.StatusBadRequest, "file %s is not utf-8", "a.txt")
	if !Is(err, ErrInvalidInput) {
		t.Fatal("AppError should unwrap to its sentinel")
	}
	if got, want := err.Error(), "invalid input: file a.txt is not utf-8"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
