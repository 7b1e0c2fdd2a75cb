// Command provision creates the pharma_products table and seeds the pilot
// product. Postgres only; the DynamoDB deployment provisions its table
// through infrastructure tooling.
package main

import (
	"context"

	"github.com/rs/zerolog/log"

	storex "github.com/bkocaman/supplypilot/agent/store"
	configx "github.com/bkocaman/supplypilot/pkg/config"
	_ "github.com/bkocaman/supplypilot/pkg/logger/autoload"
)

func main() {
	ctx := context.Background()

	db, err := storex.OpenPostgres(*configx.MustNew[storex.PostgresConfig]("POSTGRES"))
	if err != nil {
		log.Fatal().Err(err).Msg("postgres_open_failed")
	}
	defer db.Close()

	st, err := storex.NewPostgres(db)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres_init_failed")
	}

	if err := st.Provision(ctx); err != nil {
		log.Fatal().Err(err).Msg("provision_failed")
	}
	log.Info().Msg("table_ready")

	if err := st.Put(ctx, storex.SeedRecord()); err != nil {
		log.Fatal().Err(err).Msg("seed_failed")
	}
	log.Info().Str("drug_id", storex.DefaultProductID).Msg("product_seeded")
}
