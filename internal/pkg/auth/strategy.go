package auth

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidToken is returned for every token that fails verification.
var ErrInvalidToken = errors.New("invalid auth token")

// Strategy verifies an identity token and returns its subject.
type Strategy interface {
	ParseToken(ctx context.Context, token string) (string, error)
	Name() string
}

type Options struct {
	TTL time.Duration
}
