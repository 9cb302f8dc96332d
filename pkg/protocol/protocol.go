package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Version is the JSON-RPC protocol version the bridge speaks.
const Version = "2.0"

// Error codes. The -32xxx range follows the JSON-RPC 2.0 reserved codes;
// the -320xx range is the application range.
const (
	CodeParseError       = -32700
	CodeInvalidRequest   = -32600
	CodeMethodNotFound   = -32601
	CodeInvalidParams    = -32602
	CodeInternalError    = -32603
	CodeResourceNotFound = -32001
	CodePermissionDenied = -32002
	CodeValidationError  = -32003
	CodeResourceExists   = -32004
)

// Request is an incoming JSON-RPC request envelope. Method is of the form
// "resource.operation"; ID must be present for request-response mode.
type Request struct {
	JSONRPC string         `json:"jsonrpc"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params,omitempty"`
	ID      any            `json:"id"`
}

// Response is an outgoing JSON-RPC response envelope. Exactly one of
// Result/Error is set. ID echoes the request id, or is null when the
// request could not be parsed.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
	ID      any    `json:"id"`
}

// Error is a structured JSON-RPC error object. It satisfies the error
// interface so handlers can return it directly; the dispatcher forwards
// it verbatim instead of wrapping it as an internal error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// NewResult builds a success response echoing the request id.
func NewResult(id, result any) *Response {
	return &Response{JSONRPC: Version, Result: result, ID: id}
}

// NewErrorResponse builds an error response echoing the request id.
func NewErrorResponse(id any, err *Error) *Response {
	return &Response{JSONRPC: Version, Error: err, ID: id}
}

func ParseError(data any) *Error {
	return &Error{Code: CodeParseError, Message: "Parse error", Data: data}
}

func InvalidRequest(data any) *Error {
	return &Error{Code: CodeInvalidRequest, Message: "Invalid request", Data: data}
}

func MethodNotFound(method string) *Error {
	return &Error{Code: CodeMethodNotFound, Message: fmt.Sprintf("Method not found: %s", method)}
}

func InvalidParams(data any) *Error {
	return &Error{Code: CodeInvalidParams, Message: "Invalid params", Data: data}
}

func InternalError(data any) *Error {
	return &Error{Code: CodeInternalError, Message: "Internal error", Data: data}
}

func ResourceNotFound(message string) *Error {
	return &Error{Code: CodeResourceNotFound, Message: message}
}

func PermissionDenied() *Error {
	return &Error{Code: CodePermissionDenied, Message: "Permission denied"}
}

func ValidationError(data any) *Error {
	return &Error{Code: CodeValidationError, Message: "Validation error", Data: data}
}

func ResourceExists(message string) *Error {
	return &Error{Code: CodeResourceExists, Message: message}
}

// AsError extracts a structured *Error from a handler-returned error.
// Any other error is normalized to an internal error carrying the
// original message as diagnostic data (never a stack trace).
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	if rpcErr, ok := err.(*Error); ok {
		return rpcErr
	}
	return InternalError(err.Error())
}

// SplitMethod splits "resource.operation" into its two parts. The method
// must contain exactly one dot with non-empty parts on both sides.
func SplitMethod(method string) (resource, operation string, ok bool) {
	parts := strings.Split(method, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// DecodeRequest parses a single request envelope from raw JSON.
func DecodeRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}
	return &req, nil
}

// DecodeBatch parses a batch payload. It returns an error for anything
// that is not a non-empty JSON array of request envelopes.
func DecodeBatch(data []byte) ([]*Request, error) {
	var reqs []*Request
	if err := json.Unmarshal(data, &reqs); err != nil {
		return nil, fmt.Errorf("batch payload must be an array: %w", err)
	}
	if len(reqs) == 0 {
		return nil, fmt.Errorf("batch payload must not be empty")
	}
	return reqs, nil
}
