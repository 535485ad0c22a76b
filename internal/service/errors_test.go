//go:build unit

package service

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", invalid("Invalid request parameters"), http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("bulk: %w", invalid("bad")), http.StatusBadRequest},
		{"not found", fmt.Errorf("courses c1: %w", ErrNotFound), http.StatusNotFound},
		{"aggregate", &AggregateError{Message: "Search failed", Err: errors.New("timeout")}, http.StatusInternalServerError},
		{"data access", errors.New("failed to select from courses: connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}
