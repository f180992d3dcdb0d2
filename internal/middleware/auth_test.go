package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaralkaff/lsa-backend/internal/crypto"
	"github.com/amaralkaff/lsa-backend/internal/metrics"
	"github.com/amaralkaff/lsa-backend/internal/model"
	"github.com/amaralkaff/lsa-backend/internal/repository"
	"github.com/amaralkaff/lsa-backend/internal/repository/memstore"
	"github.com/amaralkaff/lsa-backend/internal/service"
)

const testSecret = "middleware-test-secret"

type fixture struct {
	auth   *service.AuthService
	users  *memstore.UserStore
	codec  *crypto.TokenCodec
	router http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := memstore.NewUserStore()
	codec, err := crypto.NewTokenCodec(testSecret, "HS256", 30*time.Minute)
	require.NoError(t, err)
	hasher := crypto.NewPasswordHasher(crypto.HashParams{Memory: 1024, Iterations: 1, Parallelism: 1})
	auth := service.NewAuthService(users, hasher, codec)

	_, err = auth.Register(context.Background(), model.RegisterRequest{Email: "a@x.com", Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	m := metrics.New()
	r := chi.NewRouter()
	r.With(Authenticate(auth, m)).Get("/me", func(w http.ResponseWriter, r *http.Request) {
		u, _ := UserFromContext(r.Context())
		_, _ = w.Write([]byte(u.Email))
	})
	r.With(Authenticate(auth, m), RequireActive(m)).Post("/protected", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	return &fixture{auth: auth, users: users, codec: codec, router: r}
}

func (f *fixture) do(method, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func signed(t *testing.T, secret string, claims jwt.RegisteredClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func TestAuthenticate_ValidToken(t *testing.T) {
	f := newFixture(t)
	tok, _, err := f.codec.Issue("a@x.com", crypto.TokenExtras{})
	require.NoError(t, err)

	for _, scheme := range []string{"Bearer", "bearer", "BEARER"} {
		rec := f.do(http.MethodPost, "/protected", scheme+" "+tok)
		assert.Equal(t, http.StatusCreated, rec.Code, scheme)
	}
}

// Missing header, expired token and a token signed with another secret must
// be indistinguishable to the client.
func TestAuthenticate_UniformRejection(t *testing.T) {
	f := newFixture(t)
	now := time.Now()

	expired := signed(t, testSecret, jwt.RegisteredClaims{
		Subject:   "a@x.com",
		Issuer:    "lsa-api",
		Audience:  jwt.ClaimStrings{"lsa-cms"},
		IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
	})
	foreign := signed(t, "some-other-secret", jwt.RegisteredClaims{
		Subject:   "a@x.com",
		Issuer:    "lsa-api",
		Audience:  jwt.ClaimStrings{"lsa-cms"},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	unknown, _, err := f.codec.Issue("ghost@x.com", crypto.TokenExtras{})
	require.NoError(t, err)

	cases := map[string]string{
		"missing header":  "",
		"expired token":   "Bearer " + expired,
		"foreign secret":  "Bearer " + foreign,
		"unknown subject": "Bearer " + unknown,
		"wrong scheme":    "Basic dXNlcjpwYXNz",
		"empty bearer":    "Bearer ",
		"garbage":         "Bearer not.a.jwt",
	}

	baseline := f.do(http.MethodPost, "/protected", "")
	require.Equal(t, http.StatusUnauthorized, baseline.Code)

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			rec := f.do(http.MethodPost, "/protected", header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			assert.Equal(t, baseline.Body.String(), rec.Body.String())
		})
	}
}

func TestRequireActive_Inactive(t *testing.T) {
	f := newFixture(t)
	tok, _, err := f.codec.Issue("a@x.com", crypto.TokenExtras{})
	require.NoError(t, err)
	f.users.SetActive("a@x.com", false)

	rec := f.do(http.MethodPost, "/protected", "Bearer "+tok)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), msgInactive)

	// routes without the gate still authenticate
	rec = f.do(http.MethodGet, "/me", "Bearer "+tok)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a@x.com", rec.Body.String())
}

type unavailableAuth struct{}

func (unavailableAuth) Authenticate(context.Context, string) (*model.User, error) {
	return nil, repository.ErrStoreUnavailable
}

func TestAuthenticate_StoreUnavailable(t *testing.T) {
	h := Authenticate(unavailableAuth{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer x")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Empty(t, rec.Header().Get("WWW-Authenticate"))
}

func TestRequireActive_WithoutUser(t *testing.T) {
	h := RequireActive(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer   abc ", "abc", true},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Token abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := bearerToken(tt.header)
		assert.Equal(t, tt.want, got, tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
	}
}
