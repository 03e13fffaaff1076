package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTokenValidator is a test implementation of TokenValidator for unit tests.
type testTokenValidator struct {
	validTokens map[string]testClaims
}

func newTestTokenValidator() *testTokenValidator {
	return &testTokenValidator{validTokens: make(map[string]testClaims)}
}

func (v *testTokenValidator) addValidToken(token string, userID uuid.UUID, email string) {
	v.validTokens[token] = testClaims{userID: userID, email: email}
}

func (v *testTokenValidator) ValidateToken(tokenString string) (Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token string is empty")
	}
	claims, ok := v.validTokens[tokenString]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

type testClaims struct {
	userID uuid.UUID
	email  string
}

func (c testClaims) GetUserID() uuid.UUID { return c.userID }
func (c testClaims) GetEmail() string     { return c.email }

func serve(t *testing.T, v TokenValidator, authHeader string) (*httptest.ResponseRecorder, *Principal) {
	t.Helper()

	var seen *Principal
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		require.True(t, ok)
		seen = &p
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/applications", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	AuthMiddleware(v)(handler).ServeHTTP(w, req)
	return w, seen
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	v := newTestTokenValidator()
	userID := uuid.New()
	v.addValidToken("valid-test-token-123", userID, "jane@example.com")

	w, p := serve(t, v, "Bearer valid-test-token-123")

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, p)
	assert.Equal(t, userID, p.UserID)
	assert.Equal(t, "jane@example.com", p.Email)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	v := newTestTokenValidator()
	v.addValidToken("nil-user", uuid.Nil, "")

	tests := []struct {
		name       string
		authHeader string
	}{
		{name: "missing header", authHeader: ""},
		{name: "missing Bearer prefix", authHeader: "token123"},
		{name: "empty token", authHeader: "Bearer "},
		{name: "only Bearer", authHeader: "Bearer"},
		{name: "unknown token lowercase scheme", authHeader: "bearer token123"},
		{name: "too many parts", authHeader: "Bearer a b"},
		{name: "malformed jwt", authHeader: "Bearer not.a.valid.jwt.token"},
		{name: "nil user id", authHeader: "Bearer nil-user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, p := serve(t, v, tt.authHeader)

			assert.Nil(t, p, "handler should not be called")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "Unauthorized")
			assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
		})
	}
}

func TestAuthMiddleware_CaseInsensitiveScheme(t *testing.T) {
	v := newTestTokenValidator()
	v.addValidToken("tok", uuid.New(), "")

	for _, scheme := range []string{"bearer", "BeArEr", "BEARER"} {
		w, p := serve(t, v, scheme+" tok")
		assert.Equal(t, http.StatusOK, w.Code, scheme)
		assert.NotNil(t, p, scheme)
	}
}

func TestGetUserID(t *testing.T) {
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req = req.WithContext(WithPrincipal(req.Context(), Principal{UserID: userID}))

	got, err := GetUserID(req)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestGetUserID_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	userID, err := GetUserID(req)
	assert.Error(t, err)
	assert.Equal(t, uuid.Nil, userID)
	assert.Contains(t, err.Error(), "user ID not found")
}

func TestPrincipalFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), principalKey, "not-a-principal")
	_, ok := PrincipalFromContext(ctx)
	assert.False(t, ok)
}
