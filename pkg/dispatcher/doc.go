/*
Package dispatcher routes JSON-RPC requests to resource handlers through
the permission gate.

The dispatcher is the heart of the bridge's RPC surface. Every request
arriving on /rpc or /rpc/batch passes through it: the envelope is
validated, the method name is split into resource and operation, the
permission gate is consulted, and only then does a handler run. Handlers
never see malformed or unauthorized traffic.

# Architecture

	┌──────────────────── RPC REQUEST FLOW ────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │         Envelope Validation                 │          │
	│  │  - jsonrpc version must be "2.0"            │          │
	│  │  - method must be resource.operation        │          │
	│  │  - id must be present                       │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         Handler Lookup                      │          │
	│  │  - resource table, then operation           │          │
	│  │  - miss: Method not found (-32601)          │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         Permission Gate                     │          │
	│  │  - method level: read/write/admin           │          │
	│  │  - deny: Permission denied (-32002)         │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         Handler                             │          │
	│  │  - structured errors pass through           │          │
	│  │  - anything else becomes -32603             │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Usage

Registering handlers and processing a request:

	disp := dispatcher.New(gate)
	disp.Register("page", dispatcher.HandlerTable{
		"get":    pageHandlers.Get,
		"create": pageHandlers.Create,
	})

	resp := disp.Process(ctx, req, caller)

Batches fan out concurrently and preserve input order:

	responses := disp.ProcessBatch(ctx, reqs, caller)
	// responses[i] answers reqs[i]

# Error Handling

The dispatcher never returns Go errors to the transport. Every failure
is a *protocol.Error inside a response envelope:

  - Validation failures carry the reserved JSON-RPC codes
  - Gate denials carry -32002 with no detail about why
  - Handler errors pass through when structured, otherwise they are
    wrapped as internal errors carrying the message (never a stack)

# Integration Points

This package integrates with:

  - pkg/protocol: envelope types and the error taxonomy
  - pkg/permission: the gate consulted before every handler
  - pkg/handlers: the bridge's own apikey.* and context.* tables
  - pkg/api: the HTTP transport calling Process/ProcessBatch
*/
package dispatcher
