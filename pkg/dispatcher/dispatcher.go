package dispatcher

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/loomhq/loom/pkg/log"
	"github.com/loomhq/loom/pkg/metrics"
	"github.com/loomhq/loom/pkg/permission"
	"github.com/loomhq/loom/pkg/protocol"
	"github.com/loomhq/loom/pkg/types"
)

// HandlerFunc executes one resource operation. A returned *protocol.Error
// passes through to the response verbatim; any other error is normalized
// to an internal error at the dispatcher boundary.
type HandlerFunc func(ctx context.Context, params map[string]any, caller types.Identity) (any, error)

// HandlerTable maps operation names to handlers for one resource.
type HandlerTable map[string]HandlerFunc

// Dispatcher validates request envelopes, authorizes callers, and routes
// resource.operation methods to registered handlers.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]HandlerTable
	gate     *permission.Gate
}

// New creates a dispatcher guarded by the given permission gate.
func New(gate *permission.Gate) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]HandlerTable),
		gate:     gate,
	}
}

// Register installs the handler table for a resource. Registration
// happens at startup, before any request is served.
func (d *Dispatcher) Register(resource string, table HandlerTable) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[resource] = table
}

// MethodNames returns every registered resource.operation, sorted. Used
// to verify the dispatcher against the schema catalog.
func (d *Dispatcher) MethodNames() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var names []string
	for resource, table := range d.handlers {
		for op := range table {
			names = append(names, resource+"."+op)
		}
	}
	sort.Strings(names)
	return names
}

// Process validates and executes a single request. Validation is
// fail-fast and runs before any handler code:
//
//  1. nil request           -> ParseError, id null
//  2. wrong protocol version -> InvalidRequest
//  3. malformed method       -> InvalidRequest
//  4. missing id             -> InvalidRequest
//  5. unknown resource/op    -> MethodNotFound
//
// Every failure surfaces as an error envelope, never a bare failure.
func (d *Dispatcher) Process(ctx context.Context, req *protocol.Request, caller types.Identity) *protocol.Response {
	if req == nil {
		return protocol.NewErrorResponse(nil, protocol.ParseError("request is null"))
	}

	if req.JSONRPC != protocol.Version {
		return protocol.NewErrorResponse(req.ID, protocol.InvalidRequest("unsupported protocol version"))
	}

	resource, operation, ok := protocol.SplitMethod(req.Method)
	if !ok {
		return protocol.NewErrorResponse(req.ID, protocol.InvalidRequest("method must be of the form resource.operation"))
	}

	if req.ID == nil {
		return protocol.NewErrorResponse(nil, protocol.InvalidRequest("id is required"))
	}

	start := time.Now()
	resp := d.dispatch(ctx, req, resource, operation, caller)
	metrics.RPCRequestDuration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())

	status := "ok"
	if resp.Error != nil {
		status = "error"
	}
	metrics.RPCRequestsTotal.WithLabelValues(req.Method, status).Inc()
	return resp
}

func (d *Dispatcher) dispatch(ctx context.Context, req *protocol.Request, resource, operation string, caller types.Identity) *protocol.Response {
	d.mu.RLock()
	table, ok := d.handlers[resource]
	var handler HandlerFunc
	if ok {
		handler = table[operation]
	}
	d.mu.RUnlock()

	if !ok {
		return protocol.NewErrorResponse(req.ID, protocol.MethodNotFound(resource))
	}
	if handler == nil {
		return protocol.NewErrorResponse(req.ID, protocol.MethodNotFound(req.Method))
	}

	if err := d.gate.Authorize(req.Method, caller); err != nil {
		return protocol.NewErrorResponse(req.ID, protocol.AsError(err))
	}

	result, err := handler(ctx, req.Params, caller)
	if err != nil {
		rpcErr := protocol.AsError(err)
		if rpcErr.Code == protocol.CodeInternalError {
			logger := log.WithComponent("dispatcher")
			logger.Error().
				Err(err).
				Str("method", req.Method).
				Str("user_id", caller.UserID).
				Msg("handler failed")
		}
		return protocol.NewErrorResponse(req.ID, rpcErr)
	}

	return protocol.NewResult(req.ID, result)
}

// ProcessBatch executes each request independently and concurrently.
// The output array preserves input order with a 1:1 positional
// correspondence; there is no ordering guarantee among executions.
func (d *Dispatcher) ProcessBatch(ctx context.Context, reqs []*protocol.Request, caller types.Identity) []*protocol.Response {
	responses := make([]*protocol.Response, len(reqs))

	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req *protocol.Request) {
			defer wg.Done()
			responses[i] = d.Process(ctx, req, caller)
		}(i, req)
	}
	wg.Wait()

	return responses
}
