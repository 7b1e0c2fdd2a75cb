// Package orchestrator drives the bounded reason/act loop: it feeds the
// conversation to the reasoning engine, routes requested tools through the
// guardrailed router, and decides when the invocation is done.
package orchestrator

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/bkocaman/supplypilot/agent/contract"
	guardrailx "github.com/bkocaman/supplypilot/agent/guardrail"
	toolx "github.com/bkocaman/supplypilot/agent/tool"
)

const (
	// DefaultMaxTurns bounds the loop; reaching it is benign, not a failure.
	DefaultMaxTurns = 10

	maxTurnsNotice = "Max turns reached"
)

type Config struct {
	ProductID string
	MaxTurns  int
}

// Orchestrator runs one trigger-scoped invocation at a time. All
// collaborators are injected; the loop itself holds no state beyond the
// in-memory conversation of the current run.
type Orchestrator struct {
	engine   contractx.ReasoningEngine
	handlers *toolx.Handlers
	specs    []contractx.ToolSpec

	productID string
	maxTurns  int
}

func New(engine contractx.ReasoningEngine, store contractx.ProductStore, notifier contractx.Notifier, cfg Config) (*Orchestrator, error) {
	if engine == nil {
		return nil, errors.New("reasoning engine is required")
	}
	handlers, err := toolx.NewHandlers(store, notifier)
	if err != nil {
		return nil, err
	}

	productID := strings.TrimSpace(cfg.ProductID)
	if productID == "" {
		return nil, errors.New("product id is required")
	}
	maxTurns := cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}

	return &Orchestrator{
		engine:    engine,
		handlers:  handlers,
		specs:     toolx.Specs(),
		productID: productID,
		maxTurns:  maxTurns,
	}, nil
}

// Run executes the loop for one trigger reason. Callers only ever see one
// of three shapes: completed with final text, incomplete with a benign
// notice, or failed with an error message. Store mutations made in earlier
// turns are not rolled back on failure.
func (o *Orchestrator) Run(ctx context.Context, trigger contractx.TriggerReason) contractx.Outcome {
	runID := uuid.NewString()
	audit := guardrailx.NewAudit()
	router, err := toolx.NewRouter(o.handlers, guardrailx.ScopeFor(trigger), audit)
	if err != nil {
		return o.failure(runID, 0, audit, err)
	}

	log.Info().
		Str("run_id", runID).
		Str("trigger", string(trigger)).
		Str("product_id", o.productID).
		Msg("agent_triggered")

	messages := []contractx.Message{{
		Role: contractx.RoleUser,
		Text: initialInstruction(o.productID, trigger),
	}}

	for turn := 1; turn <= o.maxTurns; turn++ {
		resp, err := o.engine.Converse(ctx, contractx.ConverseRequest{
			System:   systemPrompt,
			Tools:    o.specs,
			Messages: messages,
		})
		if err != nil {
			log.Error().Err(err).Str("run_id", runID).Int("turn", turn).Msg("engine_invoke_failed")
			return o.failure(runID, turn, audit, err)
		}

		messages = append(messages, resp.Message)

		switch resp.StopReason {
		case contractx.StopToolUse:
			results := make([]contractx.ToolResult, 0, len(resp.Message.ToolRequests))
			for _, req := range resp.Message.ToolRequests {
				results = append(results, router.Dispatch(ctx, req))
			}
			messages = append(messages, contractx.Message{
				Role:        contractx.RoleUser,
				ToolResults: results,
			})

		case contractx.StopEndTurn:
			o.checkMandatoryReport(runID, audit)
			log.Info().
				Str("run_id", runID).
				Int("turns", turn).
				Str("state", string(contractx.RunCompleted)).
				Msg("run_complete")
			return contractx.Outcome{
				State:      contractx.RunCompleted,
				StatusCode: http.StatusOK,
				Body:       resp.Message.Text,
				RunID:      runID,
				Turns:      turn,
				Audit:      audit.Report(),
			}

		default:
			// Unrecognized stop reason: keep looping, the turn limit
			// bounds us.
			log.Warn().
				Str("run_id", runID).
				Str("stop_reason", string(resp.StopReason)).
				Msg("unexpected_stop_reason")
		}
	}

	o.checkMandatoryReport(runID, audit)
	log.Info().
		Str("run_id", runID).
		Int("turns", o.maxTurns).
		Str("state", string(contractx.RunIncomplete)).
		Msg("run_complete")
	return contractx.Outcome{
		State:      contractx.RunIncomplete,
		StatusCode: http.StatusOK,
		Body:       maxTurnsNotice,
		RunID:      runID,
		Turns:      o.maxTurns,
		Audit:      audit.Report(),
	}
}

func (o *Orchestrator) checkMandatoryReport(runID string, audit *guardrailx.Audit) {
	if audit.ReportSatisfied() {
		return
	}
	log.Warn().
		Str("run_id", runID).
		Msg("mandatory_report_missing")
}

func (o *Orchestrator) failure(runID string, turns int, audit *guardrailx.Audit, err error) contractx.Outcome {
	return contractx.Outcome{
		State:      contractx.RunFailed,
		StatusCode: http.StatusInternalServerError,
		Body:       "Internal Error: " + err.Error(),
		RunID:      runID,
		Turns:      turns,
		Audit:      audit.Report(),
	}
}
