package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	snap, err := store.OpenSnapshot(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = snap.Close() })
	s, err := NewService(snap, nil)
	require.NoError(t, err)
	return s
}

func TestLoginDomainGate(t *testing.T) {
	s := newTestService(t)

	u, err := s.Login("jane.doe@tracknamic.com", "")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", u.Name)
	assert.Equal(t, "jane.doe@tracknamic.com", u.Email)

	named, err := s.Login("pat@tracknamic.ai", "Pat Q")
	require.NoError(t, err)
	assert.Equal(t, "Pat Q", named.Name)

	_, err = s.Login("someone@gmail.com", "")
	require.ErrorIs(t, err, store.ErrValidation)
	_, err = s.Login("not-an-email", "")
	require.ErrorIs(t, err, store.ErrValidation)
}

func TestLoginIsIdempotent(t *testing.T) {
	s := newTestService(t)
	first, err := s.Login("dev@tracknamic.ai", "")
	require.NoError(t, err)
	second, err := s.Login("DEV@tracknamic.ai", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "case-insensitive email maps to one record")
}

func TestCurrentUserFallsBackToDemo(t *testing.T) {
	s := newTestService(t)

	r := httptest.NewRequest(http.MethodGet, "/v1/prompts", nil)
	u := s.CurrentUser(r)
	assert.Equal(t, DemoEmail, u.Email)
	assert.Equal(t, DemoName, u.Name)

	// off-domain identity header is ignored
	r.Header.Set(IdentityHeader, "evil@elsewhere.com")
	assert.Equal(t, DemoEmail, s.CurrentUser(r).Email)

	// on-domain identity header creates the user on first sight
	r.Header.Set(IdentityHeader, "sam@tracknamic.com")
	got := s.CurrentUser(r)
	assert.Equal(t, "sam@tracknamic.com", got.Email)
	assert.Equal(t, "Sam", got.Name)
}

func TestMiddlewareInjectsIdentity(t *testing.T) {
	s := newTestService(t)
	handler := s.Middleware(GatewayConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		require.True(t, ok)
		_, _ = w.Write([]byte(u.Email))
	}))

	r := httptest.NewRequest(http.MethodGet, "/v1/prompts", nil)
	r.Header.Set(IdentityHeader, "jane@tracknamic.com")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, "jane@tracknamic.com", w.Body.String())
}

func TestMiddlewareCORSPreflight(t *testing.T) {
	s := newTestService(t)
	handler := s.Middleware(GatewayConfig{AllowedOrigins: []string{"https://lab.tracknamic.com"}})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { t.Fatal("preflight must not reach the handler") }))

	r := httptest.NewRequest(http.MethodOptions, "/v1/prompts", nil)
	r.Header.Set("Origin", "https://lab.tracknamic.com")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://lab.tracknamic.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMiddlewareRateLimit(t *testing.T) {
	s := newTestService(t)
	handler := s.Middleware(GatewayConfig{RPS: 1, Burst: 1})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodGet, "/v1/prompts", nil)
	r.Header.Set(IdentityHeader, "burst@tracknamic.com")
	first := httptest.NewRecorder()
	handler.ServeHTTP(first, r)
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, r)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
