package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-admin-server/internal/config"
	"hospital-admin-server/internal/handlers"
	"hospital-admin-server/internal/middleware"
	"hospital-admin-server/internal/models"
	"hospital-admin-server/internal/scheduling"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, svc *scheduling.Service, cfg *config.Config) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	departmentHandler := handlers.NewDepartmentHandler(db)
	doctorHandler := handlers.NewDoctorHandler(db, svc)
	patientHandler := handlers.NewPatientHandler(db, svc)
	scheduleHandler := handlers.NewScheduleHandler(db, svc)
	appointmentHandler := handlers.NewAppointmentHandler(db, svc)
	treatmentHandler := handlers.NewTreatmentHandler(db, svc)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		// Department management (admin only)
		departmentRoutes := private.Group("/departments")
		{
			departmentRoutes.GET("", departmentHandler.ListDepartments)

			adminOnly := departmentRoutes.Group("")
			adminOnly.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				adminOnly.POST("", departmentHandler.CreateDepartment)
				adminOnly.PUT("/:id", departmentHandler.UpdateDepartment)
				adminOnly.DELETE("/:id", departmentHandler.DeleteDepartment)
			}
		}

		// Doctor management and availability
		doctorRoutes := private.Group("/doctors")
		{
			doctorRoutes.GET("", doctorHandler.ListDoctors)
			doctorRoutes.GET("/:id", doctorHandler.GetDoctorByID)
			doctorRoutes.GET("/:id/availability", doctorHandler.GetDoctorAvailability)

			adminOnly := doctorRoutes.Group("")
			adminOnly.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				adminOnly.POST("", doctorHandler.CreateDoctor)
				adminOnly.PUT("/:id", doctorHandler.UpdateDoctor)
				adminOnly.DELETE("/:id", doctorHandler.DeleteDoctor)
			}

			// Weekly schedule and time-off: doctors manage their own,
			// admins anyone's. Ownership enforced by the scheduling
			// service.
			scheduleRoutes := doctorRoutes.Group("/:id")
			scheduleRoutes.Use(middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin))
			{
				scheduleRoutes.POST("/schedule", scheduleHandler.AddScheduleBlock)
				scheduleRoutes.GET("/schedule", scheduleHandler.ListScheduleBlocks)
				scheduleRoutes.DELETE("/schedule/:blockId", scheduleHandler.RemoveScheduleBlock)
				scheduleRoutes.POST("/time-off", scheduleHandler.AddTimeOff)
				scheduleRoutes.GET("/time-off", scheduleHandler.ListTimeOff)
				scheduleRoutes.DELETE("/time-off/:timeOffId", scheduleHandler.RemoveTimeOff)
			}
		}

		// Patient management (admin only)
		patientRoutes := private.Group("/patients")
		{
			patientRoutes.GET("/:id/treatments", treatmentHandler.GetTreatmentsForPatient)

			adminOnly := patientRoutes.Group("")
			adminOnly.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				adminOnly.POST("", patientHandler.CreatePatient)
				adminOnly.GET("", patientHandler.SearchPatients)
				adminOnly.GET("/:id", patientHandler.GetPatientByID)
				adminOnly.PUT("/:id", patientHandler.UpdatePatient)
				adminOnly.DELETE("/:id", patientHandler.DeletePatient)
			}
		}

		// Appointment routes
		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", middleware.RoleAuthMiddleware(models.RolePatient, models.RoleAdmin), appointmentHandler.CreateAppointment)
			appointmentRoutes.GET("", appointmentHandler.GetAppointmentsForUser)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
			appointmentRoutes.POST("/:id/cancel", appointmentHandler.CancelAppointment)

			// Recording the treatment is what completes an appointment.
			appointmentRoutes.PUT("/:id/treatment", middleware.RoleAuthMiddleware(models.RoleDoctor), treatmentHandler.RecordTreatment)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
