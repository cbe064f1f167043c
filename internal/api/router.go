package api

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/hatch_server/config"
	"github.com/qs3c/hatch_server/internal/api/handler"
	"github.com/qs3c/hatch_server/internal/api/middleware"
	"github.com/qs3c/hatch_server/internal/repository"
)

type Router struct {
	authHandler       *handler.AuthHandler
	userHandler       *handler.UserHandler
	tierHandler       *handler.TierHandler
	eventHandler      *handler.EventHandler
	attendanceHandler *handler.AttendanceHandler
	paymentHandler    *handler.PaymentHandler
	adminHandler      *handler.AdminHandler
	userRepo          *repository.UserRepository
	cfg               *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	tierHandler *handler.TierHandler,
	eventHandler *handler.EventHandler,
	attendanceHandler *handler.AttendanceHandler,
	paymentHandler *handler.PaymentHandler,
	adminHandler *handler.AdminHandler,
	userRepo *repository.UserRepository,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:       authHandler,
		userHandler:       userHandler,
		tierHandler:       tierHandler,
		eventHandler:      eventHandler,
		attendanceHandler: attendanceHandler,
		paymentHandler:    paymentHandler,
		adminHandler:      adminHandler,
		userRepo:          userRepo,
		cfg:               cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))
	engine.MaxMultipartMemory = r.cfg.Upload.MaxScreenshotSize

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := engine.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.POST("/verify-email", r.authHandler.VerifyEmail)
		}

		api.GET("/tiers", r.tierHandler.List)

		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			user := authenticated.Group("/user")
			{
				user.GET("/profile", r.userHandler.GetProfile)
				user.PUT("/profile", r.userHandler.UpdateProfile)
				user.GET("/subscription", r.userHandler.GetSubscription)
				user.GET("/stats", r.userHandler.GetStats)
			}

			events := authenticated.Group("/events")
			{
				events.GET("", r.eventHandler.List)
				events.GET("/:id", r.eventHandler.Get)
				events.POST("/:id/register", r.attendanceHandler.Register)
				events.POST("/:id/attendance", r.attendanceHandler.ConfirmAttendance)
			}

			authenticated.GET("/registrations", r.attendanceHandler.ListRegistrations)
			authenticated.POST("/past-events", r.attendanceHandler.AddPastEvent)
			authenticated.GET("/past-events", r.attendanceHandler.ListPastEvents)

			payments := authenticated.Group("/payments")
			{
				payments.POST("/screenshot", r.paymentHandler.UploadScreenshot)
				payments.POST("", r.paymentHandler.Submit)
				payments.GET("", r.paymentHandler.ListMine)
				payments.GET("/qr", r.paymentHandler.QR)
			}
		}

		admin := api.Group("/admin")
		admin.Use(middleware.Auth(r.cfg.JWT.Secret), middleware.RequireAdmin(r.userRepo))
		{
			admin.GET("/events", r.eventHandler.AdminList)
			admin.POST("/events", r.eventHandler.Create)
			admin.PUT("/events/:id", r.eventHandler.Update)
			admin.DELETE("/events/:id", r.eventHandler.Delete)

			admin.GET("/payments", r.paymentHandler.AdminList)
			admin.POST("/payments/purge", r.paymentHandler.Purge)
			admin.GET("/payments/:id", r.paymentHandler.AdminGet)
			admin.POST("/payments/:id/approve", r.paymentHandler.Approve)
			admin.POST("/payments/:id/reject", r.paymentHandler.Reject)
			admin.DELETE("/payments/:id", r.paymentHandler.Delete)

			admin.GET("/users", r.adminHandler.ListUsers)
			admin.PUT("/users/:id/tier", r.adminHandler.SetTier)
			admin.PUT("/users/:id/role", r.adminHandler.SetRole)
			admin.PUT("/users/:id/auto-downgrade", r.adminHandler.SetAutoDowngrade)

			admin.POST("/jobs/reconcile", r.adminHandler.RunReconcile)
			admin.POST("/jobs/auto-attendance", r.adminHandler.RunAutoAttendance)
			admin.GET("/stats", r.adminHandler.Stats)
		}
	}

	return engine
}
