package api

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/qs3c/bill_reminder_server/config"
	"github.com/qs3c/bill_reminder_server/internal/api/handler"
	"github.com/qs3c/bill_reminder_server/internal/api/middleware"
	"github.com/qs3c/bill_reminder_server/internal/pkg/metrics"
)

type Router struct {
	authHandler         *handler.AuthHandler
	userHandler         *handler.UserHandler
	subscriptionHandler *handler.SubscriptionHandler
	dashboardHandler    *handler.DashboardHandler
	reminderHandler     *handler.ReminderHandler
	healthHandler       *handler.HealthHandler
	cfg                 *config.Config
	logger              zerolog.Logger
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	subscriptionHandler *handler.SubscriptionHandler,
	dashboardHandler *handler.DashboardHandler,
	reminderHandler *handler.ReminderHandler,
	healthHandler *handler.HealthHandler,
	cfg *config.Config,
	logger zerolog.Logger,
) *Router {
	return &Router{
		authHandler:         authHandler,
		userHandler:         userHandler,
		subscriptionHandler: subscriptionHandler,
		dashboardHandler:    dashboardHandler,
		reminderHandler:     reminderHandler,
		healthHandler:       healthHandler,
		cfg:                 cfg,
		logger:              logger,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(r.logger))
	engine.Use(middleware.CORS(r.cfg.CORS))

	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := engine.Group("/api/v1")
	{
		api.GET("/health", r.healthHandler.Health)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
		}

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			authenticated.GET("/auth/me", r.authHandler.Me)

			// 用户
			user := authenticated.Group("/user")
			{
				user.GET("/profile", r.userHandler.GetProfile)
				user.PUT("/profile", r.userHandler.UpdateProfile)
				user.PUT("/password", r.userHandler.ChangePassword)
			}

			// 订阅
			subs := authenticated.Group("/subscriptions")
			{
				subs.GET("", r.subscriptionHandler.List)
				subs.GET("/upcoming", r.subscriptionHandler.Upcoming)
				subs.GET("/overdue", r.subscriptionHandler.Overdue)
				subs.POST("", r.subscriptionHandler.Create)
				subs.GET("/:id", r.subscriptionHandler.Get)
				subs.PUT("/:id", r.subscriptionHandler.Update)
				subs.DELETE("/:id", r.subscriptionHandler.Delete)
				subs.PUT("/:id/mark-paid", r.subscriptionHandler.MarkPaid)
				subs.POST("/:id/renew", r.subscriptionHandler.Renew)
			}

			// 仪表盘
			dashboard := authenticated.Group("/dashboard")
			{
				dashboard.GET("/stats", r.dashboardHandler.Stats)
				dashboard.GET("/categories", r.dashboardHandler.Categories)
			}
		}

		// 运维接口 - 手动触发提醒
		reminders := api.Group("/reminders")
		reminders.Use(middleware.OperatorToken(r.cfg.Reminder.TriggerToken))
		{
			reminders.POST("/:channel/run", r.reminderHandler.Run)
			reminders.GET("/status", r.reminderHandler.Status)
		}
	}

	return engine
}
