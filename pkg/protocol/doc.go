/*
Package protocol defines the JSON-RPC 2.0 envelopes and error taxonomy.

Every request and response on the bridge's RPC surface uses these
types. Errors are structured values, not strings: *Error satisfies the
error interface so handlers return it directly, and the dispatcher
forwards structured errors verbatim while normalizing everything else
to an internal error.

# Error Codes

The reserved JSON-RPC range covers transport-level failures:

	-32700  Parse error        unreadable or invalid JSON
	-32600  Invalid request    bad version, method shape, missing id
	-32601  Method not found   unknown resource or operation
	-32602  Invalid params     parameter shape rejected
	-32603  Internal error     unexpected handler failure

The application range covers domain failures:

	-32001  Resource not found
	-32002  Permission denied
	-32003  Validation error
	-32004  Resource exists

Clients can rely on these codes being stable: a permission denial is
always -32002 regardless of which method denied it.
*/
package protocol
