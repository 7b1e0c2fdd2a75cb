// Package pilot runs the smart-pilot market simulation: it sells stock
// while the price is competitive, holds when margin protection is active,
// and hands anomalies to the agent as trigger reasons.
package pilot

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/bkocaman/supplypilot/agent/contract"
	guardrailx "github.com/bkocaman/supplypilot/agent/guardrail"
)

type Config struct {
	TickInterval time.Duration `split_words:"true" default:"1500ms"`
	MaxTicks     int           `split_words:"true" default:"50"`

	// TriggerCooldown spaces out agent invocations while an anomaly
	// persists across ticks.
	TriggerCooldown time.Duration `split_words:"true" default:"10s"`
}

// Invoker is the slice of the agent the pilot needs. Satisfied by the
// orchestrator.
type Invoker interface {
	Run(ctx context.Context, trigger contractx.TriggerReason) contractx.Outcome
}

type Pilot struct {
	store     contractx.ProductStore
	agent     Invoker
	productID string
	cfg       Config

	rng         *rand.Rand
	lastTrigger time.Time
}

func New(store contractx.ProductStore, agent Invoker, productID string, cfg Config) (*Pilot, error) {
	if store == nil {
		return nil, errors.New("product store is required")
	}
	if agent == nil {
		return nil, errors.New("agent invoker is required")
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, errors.New("product id is required")
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 1500 * time.Millisecond
	}
	if cfg.MaxTicks <= 0 {
		cfg.MaxTicks = 50
	}
	if cfg.TriggerCooldown < 0 {
		cfg.TriggerCooldown = 0
	}
	return &Pilot{
		store:     store,
		agent:     agent,
		productID: productID,
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Run executes up to MaxTicks simulation steps, stopping early when the
// context is cancelled.
func (p *Pilot) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.TickInterval)
	defer ticker.Stop()

	log.Info().Int("max_ticks", p.cfg.MaxTicks).Msg("pilot_started")
	for i := 0; i < p.cfg.MaxTicks; i++ {
		select {
		case <-ctx.Done():
			log.Info().Msg("pilot_stopped")
			return ctx.Err()
		case <-ticker.C:
			p.tick(ctx)
		}
	}
	log.Info().Msg("pilot_finished")
	return nil
}

// tick evaluates one market step against a single snapshot of the record,
// matching the decision order of the dashboard loop: trade first, then
// anomaly triggers on the pre-trade snapshot.
func (p *Pilot) tick(ctx context.Context) {
	rec, err := p.store.Get(ctx, p.productID)
	if err != nil {
		log.Error().Err(err).Msg("pilot_read_failed")
		return
	}

	floor := guardrailx.FloorPrice(rec.CostPrice)

	if rec.CurrentPrice > rec.CompetitorPrice {
		if rec.CurrentPrice <= floor+1 {
			log.Info().
				Float64("price", rec.CurrentPrice).
				Msg("profit_protection_hold")
		} else {
			log.Warn().
				Float64("price", rec.CurrentPrice).
				Float64("competitor", rec.CompetitorPrice).
				Msg("sales_paused")
		}
	} else {
		sold := int64(50 + p.rng.Intn(101))
		if err := p.store.AddStock(ctx, p.productID, -sold); err != nil {
			log.Error().Err(err).Msg("pilot_sale_failed")
		} else {
			log.Info().Int64("units", sold).Msg("units_sold")
		}
	}

	switch {
	case rec.StockLevel < guardrailx.RestockThreshold:
		p.trigger(ctx, contractx.TriggerLowStock)
	case rec.CompetitorPrice < rec.CurrentPrice:
		p.trigger(ctx, contractx.TriggerPriceDisadvantage)
	}
}

func (p *Pilot) trigger(ctx context.Context, reason contractx.TriggerReason) {
	if !p.lastTrigger.IsZero() && time.Since(p.lastTrigger) < p.cfg.TriggerCooldown {
		log.Debug().Str("trigger", string(reason)).Msg("trigger_cooldown_hold")
		return
	}
	p.lastTrigger = time.Now()

	log.Warn().Str("trigger", string(reason)).Msg("anomaly_detected")
	out := p.agent.Run(ctx, reason)
	log.Info().
		Str("run_id", out.RunID).
		Str("state", string(out.State)).
		Int("turns", out.Turns).
		Msg("agent_run_finished")
}
