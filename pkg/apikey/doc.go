/*
Package apikey manages the lifecycle of long-lived machine credentials.

Keys are minted with 256 bits of randomness behind a recognizable
prefix, returned in plaintext exactly once, and stored only as a
SHA-256 hash. Validation hashes the presented key and looks the hash up
directly, so the store never needs the plaintext and a database leak
exposes no usable credentials.

# Key Format

	loom_sk_<64 hex characters>

The prefix lets the authenticator reject non-key credentials before
hashing and makes leaked keys easy to find in logs and repositories.

# Revocation

Revoke enforces ownership, but a revoke of another user's key returns
exactly the same error as a revoke of a nonexistent key. Key ids are
not secret; whether someone else's key exists is.
*/
package apikey
