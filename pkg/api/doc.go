/*
Package api implements the bridge's HTTP surface.

The server exposes the RPC endpoints, the public tool manifests, the
websocket gateway, machine-client registration and health checks on a
single listener:

	POST /rpc               single JSON-RPC request
	POST /rpc/batch         array of requests, answered positionally
	GET  /manifest/tools    tool manifest for AI assistants (public)
	GET  /manifest/openapi  OpenAPI description (public)
	POST /register          API key bootstrap, gated by a shared secret
	GET  /health            liveness
	GET  /ready             readiness of backing stores
	GET  /metrics           Prometheus metrics
	GET  /ws                websocket upgrade (pkg/gateway)

Well-formed RPC traffic is always answered HTTP 200; failures live in
the response envelope, not the status code. The exception is a
malformed batch payload, which is rejected HTTP 400 before any request
in it is dispatched.

Authentication reads X-API-Key or an Authorization bearer value; a
bearer value carrying the API key prefix is routed to the key strategy,
anything else to the session strategy.
*/
package api
