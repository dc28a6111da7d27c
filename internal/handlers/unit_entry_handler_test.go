package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fieldops-backend/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
)

func authedRequest(method, target string, body io.Reader) *http.Request {
	r := httptest.NewRequest(method, target, body)
	ctx := context.WithValue(r.Context(), middleware.UserIDKey, 3)
	ctx = context.WithValue(ctx, middleware.NameKey, "Gus")
	ctx = context.WithValue(ctx, middleware.RoleKey, "gf")
	return mux.SetURLVars(r.WithContext(ctx), map[string]string{"id": "9"})
}

// Notes bodies are optional on verify/approve, but a body that is present
// and malformed is a client error, not silently-empty notes.
func TestVerifyApproveRejectMalformedBody(t *testing.T) {
	h := &UnitEntryHandler{}

	tests := []struct {
		name string
		fn   http.HandlerFunc
	}{
		{"verify", h.Verify},
		{"approve", h.Approve},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := authedRequest(http.MethodPut, "/api/units/9/"+tt.name, strings.NewReader(`{"notes":`))
			w := httptest.NewRecorder()
			tt.fn(w, r)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
