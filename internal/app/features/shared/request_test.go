package shared_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/glrs/lighthouse/internal/app/features/shared"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRequestID_FromMiddleware(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r = r.WithContext(context.WithValue(r.Context(), middleware.RequestIDKey, "host/abc-000001"))
	assert.Equal(t, "host/abc-000001", shared.RequestID(r))
}

func TestRequestID_Fallback(t *testing.T) {
	id := shared.RequestID(httptest.NewRequest("GET", "/", nil))
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}
