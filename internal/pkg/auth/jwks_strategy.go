package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	jwt "github.com/golang-jwt/jwt/v4"
)

var (
	// ErrJWKSKeyNotFound is returned when the token kid is absent from the key set.
	ErrJWKSKeyNotFound = errors.New("jwks key not found")
	// ErrJWKSFetchFailed wraps transport or decoding errors while refreshing keys.
	ErrJWKSFetchFailed = errors.New("jwks fetch failed")
)

const (
	defaultJWKSTimeout = 5 * time.Second
	// Fetch attempts, failed or not, are spaced at least this far apart.
	minJWKSRefreshInterval = 12 * time.Second
)

// JWKSStrategy verifies RS256 tokens against a remote JSON Web Key Set.
type JWKSStrategy struct {
	url    string
	client *http.Client
	logger *slog.Logger
	now    func() time.Time

	mu          sync.RWMutex
	keys        map[string]jose.JSONWebKey
	lastAttempt time.Time
	lastErr     error

	refreshMu sync.Mutex
}

// NewJWKSStrategy creates strategy that lazily fetches keys from url.
func NewJWKSStrategy(url string, logger *slog.Logger) *JWKSStrategy {
	return &JWKSStrategy{
		url:    url,
		client: &http.Client{Timeout: defaultJWKSTimeout},
		logger: logger,
		now:    time.Now,
	}
}

// ParseToken validates an RS256 token and returns its sub claim.
func (s *JWKSStrategy) ParseToken(ctx context.Context, token string) (string, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))

	claims := &jwt.RegisteredClaims{}
	if _, err := parser.ParseWithClaims(token, claims, s.keyfunc(ctx)); err != nil {
		if errors.Is(err, ErrJWKSFetchFailed) {
			s.logger.WarnContext(ctx, "jwks unavailable", slog.String("error", err.Error()))
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

func (s *JWKSStrategy) Name() string {
	return "jwks"
}

func (s *JWKSStrategy) keyfunc(ctx context.Context) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token missing kid header")
		}
		return s.key(ctx, kid)
	}
}

// key resolves the public key for kid, refetching the key set when it is unknown.
func (s *JWKSStrategy) key(ctx context.Context, kid string) (any, error) {
	if key, ok := s.cachedKey(kid); ok {
		return key, nil
	}

	if err := s.refresh(ctx); err != nil {
		return nil, err
	}

	if key, ok := s.cachedKey(kid); ok {
		return key, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrJWKSKeyNotFound, kid)
}

func (s *JWKSStrategy) cachedKey(kid string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	jwk, ok := s.keys[kid]
	if !ok {
		return nil, false
	}
	return jwk.Key, true
}

func (s *JWKSStrategy) refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	s.mu.RLock()
	recent := !s.lastAttempt.IsZero() && s.now().Sub(s.lastAttempt) < minJWKSRefreshInterval
	lastErr := s.lastErr
	s.mu.RUnlock()
	if recent {
		return lastErr
	}

	started := s.now()
	keys, err := s.fetch(ctx)

	s.mu.Lock()
	s.lastAttempt = started
	s.lastErr = err
	if err == nil {
		s.keys = keys
	}
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "jwks refreshed", slog.Int("keys", len(keys)))
	return nil
}

func (s *JWKSStrategy) fetch(ctx context.Context) (map[string]jose.JSONWebKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJWKSFetchFailed, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJWKSFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrJWKSFetchFailed, resp.StatusCode)
	}

	var set jose.JSONWebKeySet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("%w: decode jwks: %v", ErrJWKSFetchFailed, err)
	}

	keys := make(map[string]jose.JSONWebKey, len(set.Keys))
	for _, jwk := range set.Keys {
		if jwk.KeyID == "" || !jwk.Valid() || !jwk.IsPublic() {
			continue
		}
		keys[jwk.KeyID] = jwk
	}

	return keys, nil
}
