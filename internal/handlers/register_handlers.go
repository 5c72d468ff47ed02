package handlers

import (
	"github.com/SscSPs/budget_engine/cmd/budget_backend/docs"
	portssvc "github.com/SscSPs/budget_engine/internal/core/ports/services"
	"github.com/SscSPs/budget_engine/internal/middleware"
	"github.com/SscSPs/budget_engine/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// subscriber may be nil, in which case the live event endpoint is not mounted.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	subscriber EventSubscriber,
) {
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})
	r.GET("/", getHome)

	setupAPIV1Routes(r, cfg, services, subscriber)

	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
	subscriber EventSubscriber,
) {
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))

	RegisterCurrencyRoutes(v1, service.Currency)
	RegisterRateRoutes(v1, service.Rates, service.Fetcher, service.Converter)
	RegisterBudgetRoutes(v1, service.Budget)
	RegisterExpenseRoutes(v1, service.Expense)
	RegisterCategoryRoutes(v1, service.Category)
	RegisterSettingsRoutes(v1, service.Settings, service.Fetcher)
	if subscriber != nil {
		RegisterEventRoutes(v1, subscriber)
	}
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
