package auth

import (
	"context"

	"github.com/loomhq/loom/pkg/types"
)

// TokenVerifier checks a bearer session token's signature and expiry and
// returns its subject and workspace claims. The implementation lives
// outside the bridge (the workspace application's session layer).
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (userID, workspaceID string, err error)
}

// SessionStrategy authenticates bearer session tokens.
type SessionStrategy struct {
	verifier TokenVerifier
}

// NewSessionStrategy creates the session-token strategy.
func NewSessionStrategy(verifier TokenVerifier) *SessionStrategy {
	return &SessionStrategy{verifier: verifier}
}

func (s *SessionStrategy) Name() string { return "session" }

func (s *SessionStrategy) Authenticate(ctx context.Context, creds Credentials) (types.Identity, bool, error) {
	if creds.BearerToken == "" {
		return types.Identity{}, false, nil
	}

	userID, workspaceID, err := s.verifier.Verify(ctx, creds.BearerToken)
	if err != nil {
		return types.Identity{}, false, err
	}

	return types.Identity{
		UserID:      userID,
		WorkspaceID: workspaceID,
		AuthMethod:  types.AuthMethodSession,
	}, true, nil
}
