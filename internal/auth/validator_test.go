package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-quotes/internal/auth"
	"github.com/noah-isme/backend-quotes/internal/common"
)

var testSecret = []byte("test-secret-please-rotate")

func signToken(t *testing.T, mutate func(*jwt.Builder) *jwt.Builder) string {
	t.Helper()
	b := jwt.NewBuilder().
		Subject("user-1").
		Issuer("quotes-api").
		IssuedAt(time.Now()).
		Expiration(time.Now().Add(time.Hour))
	if mutate != nil {
		b = mutate(b)
	}
	tok, err := b.Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, testSecret))
	require.NoError(t, err)
	return string(signed)
}

func TestParseAndValidate(t *testing.T) {
	v := auth.TokenValidator{Secret: testSecret, Issuer: "quotes-api"}

	sub, err := v.ParseAndValidate(signToken(t, nil))
	require.NoError(t, err)
	require.Equal(t, "user-1", sub)
}

func TestParseAndValidateRejects(t *testing.T) {
	v := auth.TokenValidator{Secret: testSecret, Issuer: "quotes-api"}

	_, err := v.ParseAndValidate("")
	require.Error(t, err)

	_, err = v.ParseAndValidate("not-a-jwt")
	require.Error(t, err)

	// Wrong issuer.
	_, err = v.ParseAndValidate(signToken(t, func(b *jwt.Builder) *jwt.Builder {
		return b.Issuer("someone-else")
	}))
	require.Error(t, err)

	// Expired.
	_, err = v.ParseAndValidate(signToken(t, func(b *jwt.Builder) *jwt.Builder {
		return b.Expiration(time.Now().Add(-time.Hour))
	}))
	require.Error(t, err)

	// Missing subject.
	_, err = v.ParseAndValidate(signToken(t, func(b *jwt.Builder) *jwt.Builder {
		return b.Subject("")
	}))
	require.Error(t, err)

	// Wrong key.
	other := auth.TokenValidator{Secret: []byte("other-secret"), Issuer: "quotes-api"}
	_, err = other.ParseAndValidate(signToken(t, nil))
	require.Error(t, err)
}

func TestParseAndValidateSkew(t *testing.T) {
	v := auth.TokenValidator{Secret: testSecret, Issuer: "quotes-api", ClockSkew: 2 * time.Minute}

	// Just expired within the allowed skew.
	sub, err := v.ParseAndValidate(signToken(t, func(b *jwt.Builder) *jwt.Builder {
		return b.Expiration(time.Now().Add(-time.Minute))
	}))
	require.NoError(t, err)
	require.Equal(t, "user-1", sub)
}

func TestRequireAuth(t *testing.T) {
	m := auth.Middleware{Validator: auth.TokenValidator{Secret: testSecret, Issuer: "quotes-api"}}

	var gotSubject string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject, _ = common.UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := m.RequireAuth(next)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, nil))
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "user-1", gotSubject)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc123")
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
