package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/vitalvoice/api/screening-api/config"
	internal_analyzer "github.com/vitalvoice/api/screening-api/internal/analyzer"
	internal_ledger "github.com/vitalvoice/api/screening-api/internal/ledger"
	internal_validator "github.com/vitalvoice/api/screening-api/internal/validator"
	screening_routers "github.com/vitalvoice/api/screening-api/router"
	"github.com/vitalvoice/pkg/commons"
	"github.com/vitalvoice/pkg/connectors"
)

func main() {
	vConfig, err := config.InitConfig()
	if err != nil {
		log.Fatalf("unable to read configuration: %v", err)
	}
	cfg, err := config.GetApplicationConfig(vConfig)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := commons.NewApplicationLogger(
		commons.Name(cfg.Name),
		commons.Path(cfg.LogPath),
		commons.Level(cfg.LogLevel),
	)
	if err != nil {
		log.Fatalf("unable to create logger: %v", err)
	}
	defer logger.Sync()

	sqlite, err := connectors.NewSqliteConnector(cfg.SqliteConfig, logger)
	if err != nil {
		logger.Fatalf("unable to open sqlite: %v", err)
	}
	store, err := internal_ledger.NewSqliteStore(sqlite, logger)
	if err != nil {
		logger.Fatalf("unable to create usage store: %v", err)
	}

	ledger := internal_ledger.NewLedger(store, cfg.QuotaConfig, logger)
	validator := internal_validator.NewValidator(cfg.AudioConfig, logger)

	analyzer, err := internal_analyzer.NewGeminiAnalyzer(context.Background(), cfg.AnalyzerConfig, logger)
	if err != nil {
		logger.Fatalf("unable to create analyzer: %v", err)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	screening_routers.HealthCheckRoutes(cfg, engine, logger)
	screening_routers.ScreeningApiRoute(cfg, engine, logger, ledger, validator, analyzer)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	logger.Infof("%s %s listening on %s", cfg.Name, cfg.Version, addr)
	if err := engine.Run(addr); err != nil {
		logger.Fatalf("server stopped: %v", err)
	}
}
