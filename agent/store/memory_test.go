package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	contractx "github.com/bkocaman/supplypilot/agent/contract"
)

func seed() contractx.ProductRecord {
	return contractx.ProductRecord{
		DrugID:          DefaultProductID,
		ProductName:     "Vitamin C + Zinc Complex",
		StockLevel:      2000,
		CurrentPrice:    120,
		CompetitorPrice: 130,
		CostPrice:       60,
		Category:        "Supplements",
	}
}

func TestMemoryGetMissing(t *testing.T) {
	t.Parallel()

	s := NewMemory()
	_, err := s.Get(context.Background(), "MISSING")
	if !errors.Is(err, contractx.ErrProductNotFound) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMemoryMutations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemorySeeded(seed())

	if err := s.SetPrice(ctx, DefaultProductID, 99); err != nil {
		t.Fatalf("set price: %v", err)
	}
	if err := s.AddStock(ctx, DefaultProductID, 500); err != nil {
		t.Fatalf("add stock: %v", err)
	}
	if err := s.AddCompetitorPrice(ctx, DefaultProductID, -20); err != nil {
		t.Fatalf("add competitor price: %v", err)
	}

	rec, err := s.Get(ctx, DefaultProductID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.CurrentPrice != 99 {
		t.Fatalf("unexpected price: %v", rec.CurrentPrice)
	}
	if rec.StockLevel != 2500 {
		t.Fatalf("unexpected stock: %v", rec.StockLevel)
	}
	if rec.CompetitorPrice != 110 {
		t.Fatalf("unexpected competitor price: %v", rec.CompetitorPrice)
	}
}

func TestMemoryMutationsOnMissingProduct(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemory()

	if err := s.SetPrice(ctx, "MISSING", 1); !errors.Is(err, contractx.ErrProductNotFound) {
		t.Fatalf("set price: %v", err)
	}
	if err := s.AddStock(ctx, "MISSING", 1); !errors.Is(err, contractx.ErrProductNotFound) {
		t.Fatalf("add stock: %v", err)
	}
	if err := s.SetStock(ctx, "MISSING", 1); !errors.Is(err, contractx.ErrProductNotFound) {
		t.Fatalf("set stock: %v", err)
	}
	if err := s.AddCompetitorPrice(ctx, "MISSING", 1); !errors.Is(err, contractx.ErrProductNotFound) {
		t.Fatalf("add competitor price: %v", err)
	}
}

func TestMemoryAddStockClampsAtZero(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemorySeeded(seed())

	if err := s.AddStock(ctx, DefaultProductID, -5000); err != nil {
		t.Fatalf("add stock: %v", err)
	}
	rec, _ := s.Get(ctx, DefaultProductID)
	if rec.StockLevel != 0 {
		t.Fatalf("stock must not go negative: %v", rec.StockLevel)
	}
}

func TestMemoryPutOverwrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemorySeeded(seed())

	rec := seed()
	rec.StockLevel = 3000
	rec.CurrentPrice = 120
	rec.CompetitorPrice = 130
	if err := s.Put(ctx, rec); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, _ := s.Get(ctx, DefaultProductID)
	if got.StockLevel != 3000 || got.CompetitorPrice != 130 {
		t.Fatalf("put must overwrite: %+v", got)
	}
}

func TestMemoryConcurrentAccess(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemorySeeded(seed())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.AddStock(ctx, DefaultProductID, 1)
		}()
		go func() {
			defer wg.Done()
			_, _ = s.Get(ctx, DefaultProductID)
		}()
	}
	wg.Wait()

	rec, _ := s.Get(ctx, DefaultProductID)
	if rec.StockLevel != 2050 {
		t.Fatalf("unexpected stock after concurrent adds: %v", rec.StockLevel)
	}
}

func TestSeedRecord(t *testing.T) {
	t.Parallel()

	rec := SeedRecord()
	if rec.DrugID != DefaultProductID {
		t.Fatalf("unexpected drug id: %s", rec.DrugID)
	}
	if rec.StockLevel != 2000 || rec.CurrentPrice != 120 || rec.CompetitorPrice != 130 || rec.CostPrice != 60 {
		t.Fatalf("unexpected seed values: %+v", rec)
	}
}
