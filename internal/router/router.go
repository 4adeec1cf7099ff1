package router

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medicore/clinic-api/internal/config"
	advicehandler "github.com/medicore/clinic-api/internal/handler/advice"
	appointmenthandler "github.com/medicore/clinic-api/internal/handler/appointment"
	authhandler "github.com/medicore/clinic-api/internal/handler/auth"
	dashboardhandler "github.com/medicore/clinic-api/internal/handler/dashboard"
	healthhandler "github.com/medicore/clinic-api/internal/handler/health"
	notificationhandler "github.com/medicore/clinic-api/internal/handler/notification"
	reporthandler "github.com/medicore/clinic-api/internal/handler/report"
	userhandler "github.com/medicore/clinic-api/internal/handler/user"
	"github.com/medicore/clinic-api/internal/middleware"
	"github.com/medicore/clinic-api/internal/model"
	"github.com/medicore/clinic-api/internal/service/appointment"
	"github.com/medicore/clinic-api/pkg/metrics"
)

type Handlers struct {
	Auth         *authhandler.Handler
	User         *userhandler.Handler
	Appointment  *appointmenthandler.Handler
	Advice       *advicehandler.Handler
	Report       *reporthandler.Handler
	Notification *notificationhandler.Handler
	Dashboard    *dashboardhandler.Handler
	Health       *healthhandler.Handler
}

type Router struct {
	engine *gin.Engine
	auth   *middleware.AuthMiddleware
	h      Handlers
}

func New(auth *middleware.AuthMiddleware, h Handlers, cfg *config.Config, httpMetrics *metrics.HTTPMetrics) *Router {
	gin.SetMode(gin.ReleaseMode)
	registerValidators()

	engine := gin.New()
	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		httpMetrics.Middleware(),
		middleware.Timeout(cfg.Server.RequestTimeout),
		middleware.CORS(cfg.CORS),
		middleware.NewRateLimiter(cfg.RateLimit).RateLimit(),
	)

	r := &Router{engine: engine, auth: auth, h: h}
	r.setup()
	return r
}

// registerValidators installs the custom binding tags on gin's
// validator engine.
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("timeslot", func(fl validator.FieldLevel) bool {
		return appointment.ValidTimeSlot(fl.Field().String())
	})
}

func (r *Router) setup() {
	r.engine.GET("/health/live", r.h.Health.LivenessCheck)
	r.engine.GET("/health/ready", r.h.Health.ReadinessCheck)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api")

	// Public routes. Register runs with optional auth: patient
	// registrations require a staff identity.
	api.POST("/auth/register", r.auth.OptionalAuthenticate(), r.h.Auth.Register)
	api.POST("/auth/login", r.h.Auth.Login)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())

	r.setupAuthRoutes(protected)
	r.setupUserRoutes(protected)
	r.setupAppointmentRoutes(protected)
	r.setupAdviceRoutes(protected)
	r.setupReportRoutes(protected)
	r.setupNotificationRoutes(protected)
	r.setupDashboardRoutes(protected)
}

func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/verify", r.h.Auth.Verify)
	rg.GET("/auth/me", r.h.Auth.Me)
	rg.POST("/auth/reset-password",
		r.auth.RequireRole(model.RoleAdmin, model.RolePhysician), r.h.Auth.ResetPassword)
}

func (r *Router) setupUserRoutes(rg *gin.RouterGroup) {
	staff := r.auth.RequireRole(model.RoleAdmin, model.RolePhysician)
	admin := r.auth.RequireRole(model.RoleAdmin)

	users := rg.Group("/users")
	{
		users.GET("", staff, r.h.User.ListUsers)
		users.POST("", staff, r.h.User.CreateUser)
		users.GET("/stats", admin, r.h.User.UserStats)
		users.GET("/:id", staff, r.h.User.GetUser)
		users.PUT("/:id", staff, r.h.User.UpdateUser)
		users.PATCH("/:id/status", admin, r.h.User.SetUserStatus)
		users.DELETE("/:id", admin, r.h.User.DeleteUser)
	}

	rg.GET("/patients", staff, r.h.User.ListPatients)
}

func (r *Router) setupAppointmentRoutes(rg *gin.RouterGroup) {
	staff := r.auth.RequireRole(model.RoleAdmin, model.RolePhysician)
	patient := r.auth.RequireRole(model.RolePatient)

	appointments := rg.Group("/appointments")
	{
		appointments.POST("", patient, r.h.Appointment.CreateAppointment)
		appointments.GET("", staff, r.h.Appointment.ListAppointments)
		appointments.GET("/my", patient, r.h.Appointment.ListMyAppointments)
		appointments.GET("/available-slots", r.h.Appointment.AvailableSlots)
		appointments.GET("/:id", r.h.Appointment.GetAppointment)
		appointments.PUT("/:id/status", staff, r.h.Appointment.UpdateAppointmentStatus)
		appointments.PUT("/:id/cancel", r.h.Appointment.CancelAppointment)
	}
}

func (r *Router) setupAdviceRoutes(rg *gin.RouterGroup) {
	staff := r.auth.RequireRole(model.RoleAdmin, model.RolePhysician)
	patient := r.auth.RequireRole(model.RolePatient)

	advice := rg.Group("/advice")
	{
		advice.POST("", r.h.Advice.CreateAdvice)
		advice.GET("", staff, r.h.Advice.ListAdvice)
		advice.GET("/urgency/:level", staff, r.h.Advice.ListAdviceByUrgency)
		advice.GET("/my", patient, r.h.Advice.ListMyAdvice)
		advice.GET("/recommendations", patient, r.h.Advice.ListMyRecommendations)
		advice.GET("/:id", r.h.Advice.GetAdvice)
		advice.PUT("/:id", patient, r.h.Advice.UpdateAdvice)
		advice.PUT("/:id/approve", staff, r.h.Advice.ApproveAdvice)
		advice.PUT("/:id/reject", staff, r.h.Advice.RejectAdvice)
		advice.DELETE("/:id", r.h.Advice.DeleteAdvice)
	}
}

func (r *Router) setupReportRoutes(rg *gin.RouterGroup) {
	staff := r.auth.RequireRole(model.RoleAdmin, model.RolePhysician)
	patient := r.auth.RequireRole(model.RolePatient)

	reports := rg.Group("/reports")
	{
		reports.POST("", staff, r.h.Report.CreateReport)
		reports.GET("", staff, r.h.Report.ListReports)
		reports.GET("/my", patient, r.h.Report.ListMyReports)
		reports.GET("/:id", r.h.Report.GetReport)
	}
}

func (r *Router) setupNotificationRoutes(rg *gin.RouterGroup) {
	notifications := rg.Group("/notifications")
	{
		notifications.POST("", r.h.Notification.CreateNotification)
		notifications.GET("", r.h.Notification.ListNotifications)
		notifications.PATCH("/:id/read", r.h.Notification.MarkRead)
		notifications.PATCH("/read-all", r.h.Notification.MarkAllRead)
		notifications.DELETE("/:id", r.h.Notification.DeleteNotification)
	}
}

func (r *Router) setupDashboardRoutes(rg *gin.RouterGroup) {
	dashboard := rg.Group("/dashboard")
	{
		dashboard.GET("/admin", r.auth.RequireRole(model.RoleAdmin), r.h.Dashboard.AdminStats)
		dashboard.GET("/physician",
			r.auth.RequireRole(model.RoleAdmin, model.RolePhysician), r.h.Dashboard.PhysicianStats)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
