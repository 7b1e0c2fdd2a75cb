package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/bkocaman/supplypilot/agent/contract"
	orchestratorx "github.com/bkocaman/supplypilot/agent/orchestrator"
	pilotx "github.com/bkocaman/supplypilot/agent/pilot"
	serverx "github.com/bkocaman/supplypilot/agent/server"
	storex "github.com/bkocaman/supplypilot/agent/store"
	bedrockx "github.com/bkocaman/supplypilot/pkg/bedrock"
	configx "github.com/bkocaman/supplypilot/pkg/config"
	_ "github.com/bkocaman/supplypilot/pkg/logger/autoload"
	mailerx "github.com/bkocaman/supplypilot/pkg/mailer"
	openrouterx "github.com/bkocaman/supplypilot/pkg/openrouter"
)

type AppConfig struct {
	ProductID    string `envconfig:"PRODUCT_ID" split_words:"true" default:"OTC_VIT_C_ZINC"`
	MaxTurns     int    `envconfig:"MAX_TURNS" split_words:"true" default:"10"`
	Engine       string `split_words:"true" default:"bedrock"`
	Store        string `split_words:"true" default:"memory"`
	HTTPAddr     string `envconfig:"HTTP_ADDR" split_words:"true" default:":8080"`
	PilotEnabled bool   `split_words:"true" default:"false"`
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appCfg := configx.MustNew[AppConfig]("")

	st := buildStore(ctx, appCfg)
	engine := buildEngine(ctx, appCfg)
	notifier := mailerx.MustNew(*configx.MustNew[mailerx.Config]("MAILER"))

	orch, err := orchestratorx.New(engine, st, notifier, orchestratorx.Config{
		ProductID: appCfg.ProductID,
		MaxTurns:  appCfg.MaxTurns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("orchestrator_init_failed")
	}

	srv, err := serverx.New(orch, st, appCfg.ProductID)
	if err != nil {
		log.Fatal().Err(err).Msg("server_init_failed")
	}

	if appCfg.PilotEnabled {
		p, err := pilotx.New(st, orch, appCfg.ProductID, *configx.MustNew[pilotx.Config]("PILOT"))
		if err != nil {
			log.Fatal().Err(err).Msg("pilot_init_failed")
		}
		go func() {
			if err := p.Run(ctx); err != nil && err != context.Canceled {
				log.Error().Err(err).Msg("pilot_run_failed")
			}
		}()
	}

	httpSrv := &http.Server{
		Addr:              appCfg.HTTPAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", appCfg.HTTPAddr).Msg("http_listen")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http_server_error")
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigc
	log.Info().Str("signal", s.String()).Msg("shutdown_signal")
	cancel()

	ctxSrv, cancelSrv := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSrv()
	if err := httpSrv.Shutdown(ctxSrv); err != nil {
		log.Error().Err(err).Msg("http_shutdown_error")
	}
	log.Info().Msg("service_stopped")
}

func buildStore(ctx context.Context, cfg *AppConfig) contractx.ScenarioStore {
	switch cfg.Store {
	case "dynamo":
		st, err := storex.NewDynamo(ctx, *configx.MustNew[storex.DynamoConfig]("DYNAMO"))
		if err != nil {
			log.Fatal().Err(err).Msg("dynamo_init_failed")
		}
		return st
	case "postgres":
		db, err := storex.OpenPostgres(*configx.MustNew[storex.PostgresConfig]("POSTGRES"))
		if err != nil {
			log.Fatal().Err(err).Msg("postgres_open_failed")
		}
		st, err := storex.NewPostgres(db)
		if err != nil {
			log.Fatal().Err(err).Msg("postgres_init_failed")
		}
		return st
	default:
		return storex.NewMemorySeeded(storex.SeedRecord())
	}
}

func buildEngine(ctx context.Context, cfg *AppConfig) contractx.ReasoningEngine {
	switch cfg.Engine {
	case "openrouter":
		engine, err := openrouterx.NewEngine(ctx, *configx.MustNew[openrouterx.Config]("OPENROUTER"))
		if err != nil {
			log.Fatal().Err(err).Msg("openrouter_init_failed")
		}
		return engine
	default:
		engine, err := bedrockx.NewEngine(ctx, *configx.MustNew[bedrockx.Config]("BEDROCK"))
		if err != nil {
			log.Fatal().Err(err).Msg("bedrock_init_failed")
		}
		return engine
	}
}
