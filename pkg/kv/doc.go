/*
Package kv defines a minimal key-value store with TTL expiry.

MemoryStore is the in-process implementation: expired entries are
invisible to reads immediately and reclaimed by a background janitor
sweep. Deployments that need context to survive restarts can implement
Store over an external cache without touching callers.
*/
package kv
