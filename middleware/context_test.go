package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sazzler/api-gateway/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithIdentity(t *testing.T) {
	t.Run("empty context is anonymous", func(t *testing.T) {
		identity, ok := IdentityFromContext(context.Background())
		assert.False(t, ok)
		assert.Nil(t, identity)
		assert.False(t, IsAuthenticated(context.Background()))
	})

	t.Run("first writer wins", func(t *testing.T) {
		first := &Identity{SubjectID: "user-1", Authorities: token.NewAuthoritySet("ROLE_USER")}
		second := &Identity{SubjectID: "user-2"}

		ctx, ok := WithIdentity(context.Background(), first)
		require.True(t, ok)

		same, ok := WithIdentity(ctx, second)
		assert.False(t, ok)
		assert.Equal(t, ctx, same)

		got, ok := IdentityFromContext(same)
		require.True(t, ok)
		assert.Same(t, first, got)
	})

	t.Run("nil identity is ignored", func(t *testing.T) {
		ctx, ok := WithIdentity(context.Background(), nil)
		assert.False(t, ok)
		assert.False(t, IsAuthenticated(ctx))
	})

	t.Run("has authority on nil identity", func(t *testing.T) {
		var identity *Identity
		assert.False(t, identity.HasAuthority("ROLE_USER"))
	})
}

func TestGetRequestIDFromContext(t *testing.T) {
	var requestID string
	handler := chimw.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = GetRequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(chimw.RequestIDHeader, "req-123")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "req-123", requestID)
	assert.Empty(t, GetRequestIDFromContext(context.Background()))
}
