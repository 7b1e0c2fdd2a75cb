package tool

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	contractx "github.com/bkocaman/supplypilot/agent/contract"
	guardrailx "github.com/bkocaman/supplypilot/agent/guardrail"
)

// ErrUnknownTool matches the wire-visible error text for unrecognized tool
// names.
var ErrUnknownTool = errors.New("Unknown tool")

// Router maps tool requests to handlers for one invocation. It carries the
// trigger scope so mutating tools outside the scoped rule are denied, and
// the shared audit so the orchestrator can inspect what happened. Dispatch
// never returns a Go error: every outcome, including an unknown name, is a
// well-formed tool result.
type Router struct {
	handlers *Handlers
	scope    guardrailx.Scope
	audit    *guardrailx.Audit
}

func NewRouter(handlers *Handlers, scope guardrailx.Scope, audit *guardrailx.Audit) (*Router, error) {
	if handlers == nil {
		return nil, errors.New("handlers are required")
	}
	if audit == nil {
		return nil, errors.New("audit is required")
	}
	return &Router{handlers: handlers, scope: scope, audit: audit}, nil
}

// Dispatch executes one request synchronously. No retry, no idempotency
// key: a repeated request executes twice.
func (r *Router) Dispatch(ctx context.Context, req contractx.ToolRequest) contractx.ToolResult {
	log.Debug().
		Str("tool", req.Name).
		Str("request_id", req.ID).
		Str("trigger", string(r.scope.Trigger())).
		Msg("tool_dispatch")

	payload, err := r.execute(ctx, req)
	if err != nil {
		return contractx.ToolResult{
			ID:    req.ID,
			Name:  req.Name,
			Error: err.Error(),
		}
	}
	return contractx.ToolResult{
		ID:      req.ID,
		Name:    req.Name,
		Payload: payload,
	}
}

func (r *Router) execute(ctx context.Context, req contractx.ToolRequest) (map[string]any, error) {
	switch req.Name {
	case ToolFetchMarketData:
		return r.handlers.FetchMarketData(ctx, req.Args)
	case ToolUpdatePrice:
		if !r.scope.AllowsPriceUpdate() {
			return nil, r.deny(req.Name)
		}
		return r.handlers.UpdatePrice(ctx, req.Args, r.audit)
	case ToolCreateRestock:
		if !r.scope.AllowsRestock() {
			return nil, r.deny(req.Name)
		}
		return r.handlers.CreateRestock(ctx, req.Args, r.audit)
	case ToolSendEmail:
		return r.handlers.SendEmail(ctx, req.Args, r.audit)
	default:
		return nil, ErrUnknownTool
	}
}

func (r *Router) deny(toolName string) error {
	r.audit.RecordDenial()
	log.Warn().
		Str("tool", toolName).
		Str("trigger", string(r.scope.Trigger())).
		Msg("tool_denied_out_of_scope")
	return errors.New(toolName + " is not permitted for trigger " + string(r.scope.Trigger()))
}
