package pilot

import (
	"context"
	"math/rand"
	"testing"
	"time"

	contractx "github.com/bkocaman/supplypilot/agent/contract"
	storex "github.com/bkocaman/supplypilot/agent/store"
)

type recordingInvoker struct {
	triggers []contractx.TriggerReason
}

func (r *recordingInvoker) Run(ctx context.Context, trigger contractx.TriggerReason) contractx.Outcome {
	r.triggers = append(r.triggers, trigger)
	return contractx.Outcome{State: contractx.RunCompleted, StatusCode: 200, Turns: 1}
}

func newTestPilot(t *testing.T, st contractx.ProductStore, agent Invoker) *Pilot {
	t.Helper()
	p, err := New(st, agent, storex.DefaultProductID, Config{})
	if err != nil {
		t.Fatalf("new pilot: %v", err)
	}
	p.rng = rand.New(rand.NewSource(1))
	return p
}

func seeded(stock int64, price, competitor float64) *storex.Memory {
	return storex.NewMemorySeeded(contractx.ProductRecord{
		DrugID:          storex.DefaultProductID,
		StockLevel:      stock,
		CurrentPrice:    price,
		CompetitorPrice: competitor,
		CostPrice:       60,
	})
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	st := seeded(3000, 120, 130)
	if _, err := New(nil, &recordingInvoker{}, "x", Config{}); err == nil {
		t.Fatal("nil store must be rejected")
	}
	if _, err := New(st, nil, "x", Config{}); err == nil {
		t.Fatal("nil invoker must be rejected")
	}
	if _, err := New(st, &recordingInvoker{}, "  ", Config{}); err == nil {
		t.Fatal("blank product id must be rejected")
	}

	p, err := New(st, &recordingInvoker{}, "x", Config{})
	if err != nil {
		t.Fatalf("new pilot: %v", err)
	}
	if p.cfg.TickInterval != 1500*time.Millisecond || p.cfg.MaxTicks != 50 {
		t.Fatalf("defaults not applied: %+v", p.cfg)
	}
}

func TestTickSellsWhenCompetitive(t *testing.T) {
	t.Parallel()

	st := seeded(3000, 120, 130)
	agent := &recordingInvoker{}
	p := newTestPilot(t, st, agent)

	p.tick(context.Background())

	rec, _ := st.Get(context.Background(), storex.DefaultProductID)
	if rec.StockLevel >= 3000 {
		t.Fatalf("competitive price must sell units: %v", rec.StockLevel)
	}
	if sold := 3000 - rec.StockLevel; sold < 50 || sold > 150 {
		t.Fatalf("sales out of range: %v", sold)
	}
	if len(agent.triggers) != 0 {
		t.Fatalf("healthy market must not trigger the agent: %v", agent.triggers)
	}
}

func TestTickHoldsWhenUndercut(t *testing.T) {
	t.Parallel()

	st := seeded(3000, 120, 100)
	agent := &recordingInvoker{}
	p := newTestPilot(t, st, agent)

	p.tick(context.Background())

	rec, _ := st.Get(context.Background(), storex.DefaultProductID)
	if rec.StockLevel != 3000 {
		t.Fatalf("undercut price must pause sales: %v", rec.StockLevel)
	}
	if len(agent.triggers) != 1 || agent.triggers[0] != contractx.TriggerPriceDisadvantage {
		t.Fatalf("unexpected triggers: %v", agent.triggers)
	}
}

func TestTickLowStockWinsOverPrice(t *testing.T) {
	t.Parallel()

	// Both anomalies present; stock takes priority.
	st := seeded(1200, 120, 100)
	agent := &recordingInvoker{}
	p := newTestPilot(t, st, agent)

	p.tick(context.Background())

	if len(agent.triggers) != 1 || agent.triggers[0] != contractx.TriggerLowStock {
		t.Fatalf("unexpected triggers: %v", agent.triggers)
	}
}

func TestTickAtThresholdDoesNotTrigger(t *testing.T) {
	t.Parallel()

	// Exactly at the threshold is not low stock.
	st := seeded(1500, 120, 130)
	agent := &recordingInvoker{}
	p := newTestPilot(t, st, agent)

	p.tick(context.Background())

	if len(agent.triggers) != 0 {
		t.Fatalf("threshold stock must not trigger: %v", agent.triggers)
	}
}

func TestTriggerCooldownSpacesInvocations(t *testing.T) {
	t.Parallel()

	st := seeded(3000, 120, 100)
	agent := &recordingInvoker{}
	p := newTestPilot(t, st, agent)
	p.cfg.TriggerCooldown = time.Hour

	p.tick(context.Background())
	p.tick(context.Background())

	if len(agent.triggers) != 1 {
		t.Fatalf("cooldown must suppress the second invocation: %v", agent.triggers)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	st := seeded(3000, 120, 130)
	p := newTestPilot(t, st, &recordingInvoker{})
	p.cfg.TickInterval = time.Millisecond
	p.cfg.MaxTicks = 1000

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("pilot did not stop on cancel")
	}
}

func TestRunFinishesAfterMaxTicks(t *testing.T) {
	t.Parallel()

	st := seeded(3000, 120, 130)
	p := newTestPilot(t, st, &recordingInvoker{})
	p.cfg.TickInterval = time.Millisecond
	p.cfg.MaxTicks = 3

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec, _ := st.Get(context.Background(), storex.DefaultProductID)
	if rec.StockLevel >= 3000 {
		t.Fatalf("ticks must have sold stock: %v", rec.StockLevel)
	}
}
