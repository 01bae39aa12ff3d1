// Package api 組裝 HTTP 路由與中間件
package api

import (
	"time"

	"meal-planner/internal/api/handlers/health"
	plannerHandler "meal-planner/internal/api/handlers/planner"
	recipeHandler "meal-planner/internal/api/handlers/recipe"
	"meal-planner/internal/api/middleware"
	"meal-planner/internal/core/notify"
	"meal-planner/internal/core/planner"
	"meal-planner/internal/core/store"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/infrastructure/monitoring"
	"meal-planner/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies 路由需要的服務
type Dependencies struct {
	Store    store.Store
	Planner  *planner.Service
	Notifier *notify.Notifier    // 可為 nil
	Metrics  *monitoring.Metrics // 可為 nil
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	if !cfg.App.Debug && gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())
	if deps.Metrics != nil {
		router.Use(deps.Metrics.HTTPMiddleware())
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", middleware.UserHeader},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	router.Use(middleware.UserScope())
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	router.Use(middleware.NewDeduplicator(cfg.DedupWindow).Middleware())
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// 健康檢查路由
	healthHandler := health.NewHandler(cfg.App.Version, deps.Store, deps.Planner.Catalog().Len(), deps.Notifier)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	var recorder recipeHandler.Recorder
	if deps.Metrics != nil {
		recorder = deps.Metrics
	}
	recipes := recipeHandler.NewHandler(deps.Planner, recorder)
	ingredients := recipeHandler.NewIngredientHandler(deps.Store)
	plans := plannerHandler.NewHandler(deps.Planner)
	prefs := plannerHandler.NewPreferencesHandler(deps.Store)

	v1 := router.Group("/api/v1")
	{
		recipeGroup := v1.Group("/recipes")
		{
			recipeGroup.GET("", recipes.List)
			recipeGroup.GET("/recommendations", recipes.Recommendations)
			recipeGroup.GET("/:id", recipes.Get)
		}

		ingredientGroup := v1.Group("/ingredients")
		{
			ingredientGroup.GET("", ingredients.List)
			ingredientGroup.POST("", ingredients.Add)
			ingredientGroup.DELETE("/:id", ingredients.Remove)
		}

		v1.GET("/preferences", prefs.Get)
		v1.PUT("/preferences", prefs.Put)
		v1.GET("/profile", plans.Profile)

		nutritionGroup := v1.Group("/nutrition")
		{
			nutritionGroup.GET("", plans.DailyNutrition)
			nutritionGroup.POST("", plans.AddFoodEntry)
			nutritionGroup.DELETE("/:id", plans.RemoveFoodEntry)
		}

		planGroup := v1.Group("/meal-plans")
		{
			planGroup.GET("", plans.ListPlans)
			planGroup.POST("/quick-add", plans.QuickAdd)
			planGroup.GET("/:weekKey", plans.GetPlan)
			planGroup.PUT("/:weekKey", plans.ReplacePlan)
			planGroup.DELETE("/:weekKey", plans.ClearWeek)
			planGroup.POST("/:weekKey/generate", plans.Generate)
			planGroup.GET("/:weekKey/nutrition", plans.WeekNutrition)
			planGroup.PUT("/:weekKey/slots/:slot", plans.AssignSlot)
			planGroup.PATCH("/:weekKey/slots/:slot", plans.SetSelection)
			planGroup.DELETE("/:weekKey/slots/:slot", plans.RemoveSlot)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		common.RespondError(c, common.ErrNotFound.WithMessage("route not found: "+c.Request.Method+" "+c.Request.URL.Path))
	})

	common.LogInfo("Router setup completed",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.Int("recipes", deps.Planner.Catalog().Len()),
		zap.Bool("sync_enabled", deps.Notifier != nil),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router
}
