package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/stratos-aero/stratos/internal/console"
	"github.com/stratos-aero/stratos/internal/guard"
	"github.com/stratos-aero/stratos/internal/handlers"
	"github.com/stratos-aero/stratos/internal/models"
	"github.com/stratos-aero/stratos/internal/session"
)

type Deps struct {
	JWTSecret          []byte
	Sessions           session.Store
	AuthHandler        *handlers.AuthHandler
	UserHandler        *handlers.UserHandler
	AircraftHandler    *handlers.AircraftHandler
	FlightHandler      *handlers.FlightHandler
	MaintenanceHandler *handlers.MaintenanceHandler
	Console            *console.Handler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	api := e.Group("/api")

	api.POST("/auth/login", d.AuthHandler.Login)
	api.POST("/auth/verify-otp-reset", d.AuthHandler.VerifyOTPReset)

	authed := api.Group("", guard.API(d.JWTSecret, guard.AnyRole))
	authed.POST("/auth/enable-otp/:username", d.AuthHandler.EnableOTP)
	authed.POST("/auth/verify-otp", d.AuthHandler.VerifyOTP)
	authed.POST("/auth/reset-password", d.AuthHandler.ResetPassword)

	authed.GET("/airports/iata", d.FlightHandler.IATACodes)

	flights := api.Group("/flights", guard.API(d.JWTSecret, guard.AnyRole))
	flights.GET("", d.FlightHandler.List)
	flights.GET("/:id", d.FlightHandler.Get)
	flights.POST("", d.FlightHandler.Create)
	flights.PUT("/:id", d.FlightHandler.Update)
	flights.DELETE("/:id", d.FlightHandler.Delete)
	flights.POST("/estimate-arrival", d.FlightHandler.EstimateArrival)

	admin := api.Group("", guard.API(d.JWTSecret, string(models.RoleAdmin)))

	admin.GET("/users", d.UserHandler.List)
	admin.GET("/users/roles", d.UserHandler.Roles)
	admin.GET("/users/:id", d.UserHandler.Get)
	admin.POST("/users", d.UserHandler.Create)
	admin.PUT("/users/:id", d.UserHandler.Update)
	admin.DELETE("/users/:id", d.UserHandler.Delete)

	admin.GET("/aircraft", d.AircraftHandler.List)
	admin.GET("/aircraft/:id", d.AircraftHandler.Get)
	admin.POST("/aircraft", d.AircraftHandler.Create)
	admin.PUT("/aircraft/:id", d.AircraftHandler.Update)
	admin.DELETE("/aircraft/:id", d.AircraftHandler.Delete)

	engineer := api.Group("/maintenance-records", guard.API(d.JWTSecret, string(models.RoleEngineer)))
	engineer.GET("", d.MaintenanceHandler.List)
	engineer.GET("/types", d.MaintenanceHandler.Types)
	engineer.GET("/statuses", d.MaintenanceHandler.Statuses)
	engineer.GET("/log", d.MaintenanceHandler.Log)
	engineer.GET("/log/search", d.MaintenanceHandler.LogSearch)
	engineer.GET("/:id", d.MaintenanceHandler.Get)
	engineer.POST("", d.MaintenanceHandler.Create)
	engineer.PUT("/:id", d.MaintenanceHandler.Update)
	engineer.DELETE("/:id", d.MaintenanceHandler.Delete)

	// Console pages. The guard tiers mirror the protected route table:
	// any authenticated role for OTP setup, ADMIN and ENGINEER for the
	// dashboards, everything else falls through to the login page.
	e.GET("/", d.Console.Root)
	e.GET("/login", d.Console.LoginPage)
	e.POST("/login", d.Console.Login)
	e.POST("/logout", d.Console.Logout)

	otp := e.Group("/setup-otp", guard.Console(d.Sessions, guard.AnyRole))
	otp.GET("", d.Console.SetupOTPPage)
	otp.POST("/verify", d.Console.SetupOTPVerify)

	adminPages := e.Group("/admin", guard.Console(d.Sessions, string(models.RoleAdmin)))
	adminPages.GET("/dashboard", d.Console.AdminDashboard)

	engineerPages := e.Group("/engineer", guard.Console(d.Sessions, string(models.RoleEngineer)))
	engineerPages.GET("/dashboard/:id", d.Console.EngineerDashboard)
}
