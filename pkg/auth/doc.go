/*
Package auth resolves caller identities from session tokens and API keys.

Authentication is a chain of strategies tried in order. Each strategy
inspects the presented credentials and either passes (the credentials
are not for it), succeeds with an identity, or fails. The first success
wins; the chain rejects only when no strategy succeeds. There are no
exceptions or panics in the control flow, only explicit results.

# Architecture

	┌──────────────────── AUTH CHAIN ──────────────────────────┐
	│                                                            │
	│  Credentials { BearerToken, APIKey }                       │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │  1. SessionStrategy                         │          │
	│  │     - verifies bearer token claims          │          │
	│  │     - TokenVerifier is pluggable            │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │ pass / fail                          │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │  2. APIKeyStrategy                          │          │
	│  │     - prefix check, SHA-256 hash lookup     │          │
	│  │     - directory membership check            │          │
	│  │     - async last-used bookkeeping           │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│        types.Identity { UserID, WorkspaceID, AuthMethod }  │
	└────────────────────────────────────────────────────────┘

# Token Verification

Production deployments implement TokenVerifier against the workspace
application's session layer. HMACVerifier is the built-in
implementation for self-contained tokens of the form

	userID.workspaceID.expiryUnix.signature

signed with a shared secret. It also mints tokens for tests and the
local CLI.

# Stale Keys

An API key may outlive its owner's workspace membership. The key
strategy checks the Directory on every authentication, so removing a
user from a workspace immediately invalidates their keys without
touching the key store.

# Integration Points

This package integrates with:

  - pkg/apikey: hash computation and key lookup
  - pkg/storage: the membership-backed StoreDirectory
  - pkg/api and pkg/gateway: both transports share one chain
*/
package auth
