package screening_routers

import (
	"github.com/gin-gonic/gin"

	screeningApi "github.com/vitalvoice/api/screening-api/api"
	"github.com/vitalvoice/api/screening-api/config"
	internal_analyzer "github.com/vitalvoice/api/screening-api/internal/analyzer"
	internal_ledger "github.com/vitalvoice/api/screening-api/internal/ledger"
	internal_validator "github.com/vitalvoice/api/screening-api/internal/validator"
	"github.com/vitalvoice/pkg/commons"
)

func ScreeningApiRoute(
	cfg *config.AppConfig,
	engine *gin.Engine,
	logger commons.Logger,
	ledger *internal_ledger.Ledger,
	validator *internal_validator.Validator,
	analyzer internal_analyzer.Analyzer,
) {
	apiv1 := engine.Group("v1/screening")
	api := screeningApi.NewScreeningApi(cfg, logger, ledger, validator, analyzer)
	{
		apiv1.POST("/analyze", api.Analyze)
		apiv1.GET("/quota", api.Quota)
		apiv1.POST("/chat", api.Chat)
	}
}

func HealthCheckRoutes(cfg *config.AppConfig, engine *gin.Engine, logger commons.Logger) {
	logger.Info("Internal HealthCheckRoutes added to engine.")
	engine.GET("/healthz/", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": cfg.Name, "version": cfg.Version})
	})
}
