package auth

import (
	"context"
	"fmt"

	"github.com/loomhq/loom/pkg/types"
)

// Credentials carries whatever the transport extracted from the caller:
// a bearer session token, an API key, or both. Strategies pick what they
// understand and skip the rest.
type Credentials struct {
	BearerToken string
	APIKey      string
}

// Strategy is one way of resolving an identity from credentials. It
// returns ok=false (not an error) when the credentials are simply not
// for it; an error means the credentials were for it and were bad.
type Strategy interface {
	Name() string
	Authenticate(ctx context.Context, creds Credentials) (types.Identity, bool, error)
}

// Chain tries strategies in order and short-circuits on the first
// success. No strategy throwing, no exceptions for control flow: a
// strategy that does not apply passes, a strategy that applies and
// fails rejects the whole chain only if no later strategy succeeds.
type Chain struct {
	strategies []Strategy
}

// NewChain creates an authentication chain from ordered strategies.
func NewChain(strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies}
}

// Authenticate resolves a caller identity or rejects.
func (c *Chain) Authenticate(ctx context.Context, creds Credentials) (types.Identity, error) {
	var lastErr error
	for _, s := range c.strategies {
		identity, ok, err := s.Authenticate(ctx, creds)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", s.Name(), err)
			continue
		}
		if ok {
			return identity, nil
		}
	}
	if lastErr != nil {
		return types.Identity{}, fmt.Errorf("authentication failed: %w", lastErr)
	}
	return types.Identity{}, fmt.Errorf("authentication failed: no credentials presented")
}
