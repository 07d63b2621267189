package test

import (
	"context"
)

// TokenParserStub returns the configured subject or error.
type TokenParserStub struct {
	Subject string
	Err     error
}

func (s TokenParserStub) ParseToken(context.Context, string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	if s.Subject == "" {
		return "customer-1", nil
	}
	return s.Subject, nil
}

// Name identifies the stub as an auth strategy.
func (s TokenParserStub) Name() string {
	return "stub"
}
