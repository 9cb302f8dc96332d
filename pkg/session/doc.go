/*
Package session stores per-session working context for RPC callers.

The ContextStore namespaces small JSON-serializable values under a
session id, with optional TTL expiry. It backs the context.* RPC
methods: assistants use it to park cursors, drafts and conversation
state between calls without the workspace application knowing.

Keys are namespaced as context:{sessionID}:{key} over a kv.Store, so
sessions cannot see each other and a whole session is cleared with one
prefix scan. A missing key is a found=false result, not an error.
*/
package session
