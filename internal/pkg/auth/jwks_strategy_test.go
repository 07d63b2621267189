package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	jwt "github.com/golang-jwt/jwt/v4"
)

type jwksServer struct {
	mu       sync.Mutex
	keys     []jose.JSONWebKey
	requests int
	status   int
}

func (s *jwksServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests++
	if s.status != 0 {
		w.WriteHeader(s.status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(jose.JSONWebKeySet{Keys: s.keys})
}

func (s *jwksServer) setKeys(keys ...jose.JSONWebKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = keys
}

func (s *jwksServer) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

func generateKey(t *testing.T, kid string) (*rsa.PrivateKey, jose.JSONWebKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key, jose.JSONWebKey{
		Key:       &key.PublicKey,
		KeyID:     kid,
		Algorithm: jwt.SigningMethodRS256.Alg(),
		Use:       "sig",
	}
}

func signRS256(t *testing.T, key *rsa.PrivateKey, kid, subject string, ttl time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	})
	if kid != "" {
		token.Header["kid"] = kid
	}
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func newTestJWKSStrategy(t *testing.T, srv *jwksServer) (*JWKSStrategy, *time.Time) {
	t.Helper()
	server := httptest.NewServer(srv)
	t.Cleanup(server.Close)

	clock := time.Unix(1_000_000, 0)
	strategy := NewJWKSStrategy(server.URL, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	strategy.now = func() time.Time { return clock }
	return strategy, &clock
}

func TestJWKSStrategy_ParseTokenCachesKeys(t *testing.T) {
	key, jwk := generateKey(t, "key1")
	srv := &jwksServer{keys: []jose.JSONWebKey{jwk}}
	strategy, _ := newTestJWKSStrategy(t, srv)

	token := signRS256(t, key, "key1", "customer-1", time.Minute)
	for i := 0; i < 2; i++ {
		subject, err := strategy.ParseToken(context.Background(), token)
		if err != nil {
			t.Fatalf("parse token: %v", err)
		}
		if subject != "customer-1" {
			t.Fatalf("unexpected subject %q", subject)
		}
	}
	if srv.count() != 1 {
		t.Fatalf("expected single JWKS fetch, got %d", srv.count())
	}
}

func TestJWKSStrategy_RefetchesOnUnknownKid(t *testing.T) {
	_, first := generateKey(t, "key1")
	rotated, second := generateKey(t, "key2")
	srv := &jwksServer{keys: []jose.JSONWebKey{first}}
	strategy, clock := newTestJWKSStrategy(t, srv)

	if _, err := strategy.key(context.Background(), "key1"); err != nil {
		t.Fatalf("initial key fetch: %v", err)
	}

	srv.setKeys(first, second)
	*clock = clock.Add(time.Minute)

	subject, err := strategy.ParseToken(context.Background(), signRS256(t, rotated, "key2", "customer-2", time.Minute))
	if err != nil {
		t.Fatalf("parse token with rotated key: %v", err)
	}
	if subject != "customer-2" {
		t.Fatalf("unexpected subject %q", subject)
	}
	if srv.count() != 2 {
		t.Fatalf("expected refetch for unknown kid, got %d fetches", srv.count())
	}
}

func TestJWKSStrategy_LimitsRefetchRate(t *testing.T) {
	_, jwk := generateKey(t, "key1")
	srv := &jwksServer{keys: []jose.JSONWebKey{jwk}}
	strategy, _ := newTestJWKSStrategy(t, srv)

	for i := 0; i < 3; i++ {
		if _, err := strategy.key(context.Background(), "unknown"); !errors.Is(err, ErrJWKSKeyNotFound) {
			t.Fatalf("expected ErrJWKSKeyNotFound, got %v", err)
		}
	}
	if srv.count() != 1 {
		t.Fatalf("expected refetches to be rate limited, got %d fetches", srv.count())
	}
}

func TestJWKSStrategy_LimitsFailedFetchRate(t *testing.T) {
	key, _ := generateKey(t, "key1")
	srv := &jwksServer{status: http.StatusServiceUnavailable}
	strategy, clock := newTestJWKSStrategy(t, srv)

	for i := 0; i < 5; i++ {
		token := signRS256(t, key, "key1", "customer", time.Minute)
		if _, err := strategy.ParseToken(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
		if _, err := strategy.key(context.Background(), "key1"); !errors.Is(err, ErrJWKSFetchFailed) {
			t.Fatalf("expected cached ErrJWKSFetchFailed, got %v", err)
		}
	}
	if srv.count() != 1 {
		t.Fatalf("expected failing endpoint to be hit once, got %d", srv.count())
	}

	*clock = clock.Add(minJWKSRefreshInterval)
	if _, err := strategy.key(context.Background(), "key1"); !errors.Is(err, ErrJWKSFetchFailed) {
		t.Fatalf("expected ErrJWKSFetchFailed, got %v", err)
	}
	if srv.count() != 2 {
		t.Fatalf("expected retry after interval, got %d fetches", srv.count())
	}
}

func TestJWKSStrategy_InvalidTokens(t *testing.T) {
	key, jwk := generateKey(t, "key1")
	other, _ := generateKey(t, "other")

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-jwt"},
		{name: "missing kid", token: signRS256(t, key, "", "customer", time.Minute)},
		{name: "unknown kid", token: signRS256(t, other, "other", "customer", time.Minute)},
		{name: "wrong signature", token: signRS256(t, other, "key1", "customer", time.Minute)},
		{name: "expired", token: signRS256(t, key, "key1", "customer", -time.Minute)},
		{name: "missing subject", token: signRS256(t, key, "key1", "", time.Minute)},
		{name: "hmac algorithm", token: func() string {
			signed, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "customer"}).SignedString([]byte("secret"))
			return signed
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategy, _ := newTestJWKSStrategy(t, &jwksServer{keys: []jose.JSONWebKey{jwk}})
			if _, err := strategy.ParseToken(context.Background(), tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestJWKSStrategy_FetchFailures(t *testing.T) {
	key, _ := generateKey(t, "key1")
	token := signRS256(t, key, "key1", "customer", time.Minute)

	strategy, _ := newTestJWKSStrategy(t, &jwksServer{status: http.StatusInternalServerError})
	_, err := strategy.ParseToken(context.Background(), token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := strategy.key(context.Background(), "key1"); !errors.Is(err, ErrJWKSFetchFailed) {
		t.Fatalf("expected ErrJWKSFetchFailed, got %v", err)
	}

	closed := NewJWKSStrategy("http://127.0.0.1:0/jwks.json", slog.New(slog.NewJSONHandler(io.Discard, nil)))
	if _, err := closed.key(context.Background(), "key1"); !errors.Is(err, ErrJWKSFetchFailed) {
		t.Fatalf("expected ErrJWKSFetchFailed, got %v", err)
	}
}

func TestJWKSStrategy_Name(t *testing.T) {
	if NewJWKSStrategy("http://example.com", slog.Default()).Name() != "jwks" {
		t.Fatal("unexpected name")
	}
}
