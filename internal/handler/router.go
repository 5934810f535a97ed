package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/campuswell/counsel-api/internal/middleware"
	"github.com/campuswell/counsel-api/internal/models"
	"github.com/campuswell/counsel-api/internal/repository"
	"github.com/campuswell/counsel-api/internal/service"
	"github.com/campuswell/counsel-api/pkg/config"
	"github.com/campuswell/counsel-api/pkg/logger"
	corsmw "github.com/campuswell/counsel-api/pkg/middleware/cors"
	"github.com/campuswell/counsel-api/pkg/middleware/requestid"
)

// RouterDeps bundles everything the HTTP surface needs.
type RouterDeps struct {
	Config  *config.Config
	Logger  *zap.Logger
	Auth    *service.AuthService
	Metrics *service.MetricsService
	Users   *repository.UserRepository

	AuthHandler        *AuthHandler
	AppointmentHandler *AppointmentHandler
	SessionHandler     *SessionHandler
	JournalHandler     *JournalHandler
	AnalyticsHandler   *AnalyticsHandler
	CounsellorHandler  *CounsellorHandler

	HealthCheck func(c *gin.Context)
}

// NewRouter builds the gin engine with every route mounted under the API
// prefix.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.Middleware())
	router.Use(logger.GinMiddleware(deps.Logger))
	router.Use(corsmw.New(deps.Config.CORS.AllowedOrigins))
	router.Use(middleware.Metrics(deps.Metrics))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.HealthCheck != nil {
		router.GET("/ready", deps.HealthCheck)
	}
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group(deps.Config.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", deps.AuthHandler.Login)
		auth.POST("/refresh", deps.AuthHandler.Refresh)

		protected := auth.Group("")
		protected.Use(middleware.JWT(deps.Auth))
		protected.POST("/logout", deps.AuthHandler.Logout)
		protected.POST("/change-password", deps.AuthHandler.ChangePassword)
		protected.GET("/me", deps.AuthHandler.Me)
		protected.POST("/onboarding",
			middleware.RequireRoles(models.RoleStudent),
			deps.AuthHandler.CompleteOnboarding)
	}

	students := api.Group("/students", middleware.JWT(deps.Auth))
	{
		students.GET("/me/qr-code",
			middleware.RequireRoles(models.RoleStudent),
			deps.AuthHandler.QRCode)
	}

	// Directory and slot listings are public so students can browse before
	// logging in; they expose no student data.
	counsellors := api.Group("/counsellors")
	{
		counsellors.GET("", deps.CounsellorHandler.Directory)
		counsellors.GET("/:counsellorId/slots", deps.AppointmentHandler.ListSlots)
	}

	slots := api.Group("/slots", middleware.JWT(deps.Auth), middleware.RequireRoles(models.RoleCounsellor))
	{
		slots.POST("", deps.AppointmentHandler.CreateSlot)
		slots.PATCH("/:id", deps.AppointmentHandler.UpdateSlot)
		slots.DELETE("/:id", deps.AppointmentHandler.DeleteSlot)
	}

	appointments := api.Group("/appointments", middleware.JWT(deps.Auth))
	{
		appointments.POST("",
			middleware.RequireRoles(models.RoleStudent),
			deps.AppointmentHandler.Book)
		appointments.GET("",
			middleware.RequireRoles(models.RoleStudent, models.RoleCounsellor),
			deps.AppointmentHandler.List)
		appointments.DELETE("/:id",
			middleware.RequireRoles(models.RoleStudent, models.RoleManagement),
			middleware.Audit(deps.Users, "APPOINTMENT_CANCELLED", "appointment"),
			deps.AppointmentHandler.Cancel)
		appointments.POST("/:id/reschedule",
			middleware.RequireRoles(models.RoleStudent),
			deps.AppointmentHandler.RequestReschedule)
	}

	sessions := api.Group("/sessions", middleware.JWT(deps.Auth))
	{
		sessions.POST("",
			middleware.RequireRoles(models.RoleCounsellor),
			deps.SessionHandler.Start)
		sessions.GET("",
			middleware.RequireRoles(models.RoleStudent, models.RoleCounsellor),
			deps.SessionHandler.List)
		sessions.POST("/:id/end",
			middleware.RequireRoles(models.RoleCounsellor),
			deps.SessionHandler.End)
		sessions.POST("/:id/feedback",
			middleware.RequireRoles(models.RoleStudent),
			deps.SessionHandler.SubmitFeedback)
	}

	journal := api.Group("/journal", middleware.JWT(deps.Auth), middleware.RequireRoles(models.RoleStudent))
	{
		journal.POST("", deps.JournalHandler.Log)
		journal.GET("", deps.JournalHandler.List)
	}

	analytics := api.Group("/analytics")
	{
		// Downloads authenticate through the signed token itself.
		analytics.GET("/reports/download", deps.AnalyticsHandler.DownloadReport)

		restricted := analytics.Group("", middleware.JWT(deps.Auth), middleware.RequireRoles(models.RoleManagement))
		restricted.GET("/departments", deps.AnalyticsHandler.Departments)
		restricted.GET("/years", deps.AnalyticsHandler.Years)
		restricted.GET("/severity", deps.AnalyticsHandler.Severity)
		restricted.GET("/volume", deps.AnalyticsHandler.Volume)
		restricted.POST("/reports", deps.AnalyticsHandler.CreateReport)
		restricted.GET("/reports/:id", deps.AnalyticsHandler.ReportStatus)
	}

	return router
}
