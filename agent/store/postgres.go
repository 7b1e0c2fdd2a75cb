package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/bkocaman/supplypilot/agent/contract"
)

type PostgresConfig struct {
	DSN string `envconfig:"DSN" split_words:"true" required:"true"`
}

// Postgres keeps the product record in a pharma_products table. Single-row
// UPDATEs give the additive stock increment its atomicity.
type Postgres struct {
	db *bun.DB
}

type productRow struct {
	bun.BaseModel `bun:"table:pharma_products"`

	DrugID          string  `bun:"drug_id,pk"`
	ProductName     string  `bun:"product_name"`
	StockLevel      int64   `bun:"stock_level"`
	CurrentPrice    float64 `bun:"current_price"`
	CompetitorPrice float64 `bun:"competitor_price"`
	CostPrice       float64 `bun:"cost_price"`
	Category        string  `bun:"category"`
}

// OpenPostgres dials Postgres through the bun pgdriver.
func OpenPostgres(cfg PostgresConfig) (*bun.DB, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New()), nil
}

func NewPostgres(db *bun.DB) (*Postgres, error) {
	if db == nil {
		return nil, errors.New("bun db is required")
	}
	return &Postgres{db: db}, nil
}

func (s *Postgres) Get(ctx context.Context, id string) (contractx.ProductRecord, error) {
	var row productRow
	err := s.db.NewSelect().Model(&row).Where("drug_id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return contractx.ProductRecord{}, contractx.ErrProductNotFound
		}
		return contractx.ProductRecord{}, fmt.Errorf("select product: %w", err)
	}
	return rowToRecord(row), nil
}

func (s *Postgres) SetPrice(ctx context.Context, id string, price float64) error {
	res, err := s.db.NewUpdate().
		Model((*productRow)(nil)).
		Set("current_price = ?", price).
		Where("drug_id = ?", id).
		Exec(ctx)
	return checkUpdate(res, err)
}

func (s *Postgres) AddStock(ctx context.Context, id string, qty int64) error {
	res, err := s.db.NewUpdate().
		Model((*productRow)(nil)).
		Set("stock_level = GREATEST(stock_level + ?, 0)", qty).
		Where("drug_id = ?", id).
		Exec(ctx)
	return checkUpdate(res, err)
}

func (s *Postgres) SetStock(ctx context.Context, id string, qty int64) error {
	res, err := s.db.NewUpdate().
		Model((*productRow)(nil)).
		Set("stock_level = ?", qty).
		Where("drug_id = ?", id).
		Exec(ctx)
	return checkUpdate(res, err)
}

func (s *Postgres) AddCompetitorPrice(ctx context.Context, id string, delta float64) error {
	res, err := s.db.NewUpdate().
		Model((*productRow)(nil)).
		Set("competitor_price = competitor_price + ?", delta).
		Where("drug_id = ?", id).
		Exec(ctx)
	return checkUpdate(res, err)
}

func (s *Postgres) Put(ctx context.Context, rec contractx.ProductRecord) error {
	row := recordToRow(rec)
	_, err := s.db.NewInsert().
		Model(&row).
		On("CONFLICT (drug_id) DO UPDATE").
		Set("product_name = EXCLUDED.product_name").
		Set("stock_level = EXCLUDED.stock_level").
		Set("current_price = EXCLUDED.current_price").
		Set("competitor_price = EXCLUDED.competitor_price").
		Set("cost_price = EXCLUDED.cost_price").
		Set("category = EXCLUDED.category").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

// Provision creates the pharma_products table when it does not exist yet.
func (s *Postgres) Provision(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*productRow)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create pharma_products: %w", err)
	}
	return nil
}

func checkUpdate(res sql.Result, err error) error {
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return contractx.ErrProductNotFound
	}
	return nil
}

func rowToRecord(row productRow) contractx.ProductRecord {
	return contractx.ProductRecord{
		DrugID:          row.DrugID,
		ProductName:     row.ProductName,
		StockLevel:      row.StockLevel,
		CurrentPrice:    row.CurrentPrice,
		CompetitorPrice: row.CompetitorPrice,
		CostPrice:       row.CostPrice,
		Category:        row.Category,
	}
}

func recordToRow(rec contractx.ProductRecord) productRow {
	return productRow{
		DrugID:          rec.DrugID,
		ProductName:     rec.ProductName,
		StockLevel:      rec.StockLevel,
		CurrentPrice:    rec.CurrentPrice,
		CompetitorPrice: rec.CompetitorPrice,
		CostPrice:       rec.CostPrice,
		Category:        rec.Category,
	}
}

var _ contractx.ScenarioStore = (*Postgres)(nil)
