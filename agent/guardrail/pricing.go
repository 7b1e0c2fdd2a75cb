// Package guardrail holds the profitability and trigger-isolation rules the
// agent must honor. The reasoning engine is instructed to follow them, and
// the tool layer enforces them mechanically so a non-compliant model cannot
// persist a violation.
package guardrail

import (
	contractx "github.com/bkocaman/supplypilot/agent/contract"
)

const (
	// ProfitMarginRatio derives the floor price: cost * 1.10 keeps a 10%
	// margin.
	ProfitMarginRatio = 1.10

	// UndercutStep is how far below the competitor the target price sits.
	UndercutStep = 1.0

	// RestockThreshold is the stock level below which a restock order is due.
	RestockThreshold int64 = 1500
)

// FloorPrice is the minimum permitted selling price.
func FloorPrice(cost float64) float64 {
	return cost * ProfitMarginRatio
}

// TargetPrice is the price that wins the market: one unit under the
// competitor.
func TargetPrice(competitor float64) float64 {
	return competitor - UndercutStep
}

// ClampPrice raises a requested price to the floor when it would break the
// margin. Returns the applied price and whether clamping happened.
func ClampPrice(requested, cost float64) (float64, bool) {
	floor := FloorPrice(cost)
	if requested < floor {
		return floor, true
	}
	return requested, false
}

// Scope binds a tool permission set to the trigger reason that started the
// invocation. A run may only act on the rule its trigger names: low stock
// unlocks restocking, price disadvantage unlocks repricing, everything else
// is read-and-report only.
type Scope struct {
	trigger contractx.TriggerReason
}

func ScopeFor(trigger contractx.TriggerReason) Scope {
	return Scope{trigger: trigger}
}

func (s Scope) Trigger() contractx.TriggerReason { return s.trigger }

func (s Scope) AllowsPriceUpdate() bool {
	return s.trigger == contractx.TriggerPriceDisadvantage
}

func (s Scope) AllowsRestock() bool {
	return s.trigger == contractx.TriggerLowStock
}
