package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/jmwangi/casetrack/internal/handler"
	"github.com/jmwangi/casetrack/internal/middleware"
	"github.com/jmwangi/casetrack/internal/model"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check, used by load balancers and
// monitoring to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers authentication routes. Unauthenticated token
// operations live under /v1/auth; /v1/me requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token: the presented token is revoked
	// and a new pair is issued.
	g.POST("/refresh", a.Refresh)
	// Logout takes the refresh token in the body, no JWT required.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterFields registers the field registry endpoints under /v1.
// Everyone authenticated can read the registry; only admins mutate it.
func RegisterFields(e *echo.Echo, f *handler.FieldHandler, jwtSecret string, listMW ...echo.MiddlewareFunc) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	g.GET("/fields", f.List, listMW...)

	admin := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	admin.POST("/fields", f.Create)
	admin.POST("/fields/:id/move", f.Move)
	admin.DELETE("/fields/:id", f.Delete)
}

// RegisterRecords registers the record catalog, the workbook exchange
// and the change notification endpoints under /v1. Ownership checks
// live in the handlers: users reach only their own records, admins
// reach everything.
func RegisterRecords(e *echo.Echo, r *handler.RecordHandler, x *handler.ExchangeHandler, n *handler.NotificationHandler, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	g.GET("/records", r.List)
	g.POST("/records", r.Create)
	g.GET("/records/:id", r.Get)
	g.PUT("/records/:id", r.Update)
	g.PATCH("/records/:id", r.Update)
	g.DELETE("/records/:id", r.Delete)

	g.GET("/records/export", x.Export)
	g.POST("/records/import", x.Import)

	g.GET("/notifications", n.Changes)
}

// RegisterForecasts registers the calendar endpoints under /v1.
func RegisterForecasts(e *echo.Echo, f *handler.ForecastHandler, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	g.GET("/forecasts", f.List)
	g.POST("/forecasts", f.Create)
	g.PUT("/forecasts/:id", f.Update)
	g.PATCH("/forecasts/:id", f.Update)
	g.DELETE("/forecasts/:id", f.Delete)
}

// RegisterAdmin registers ADMIN-only views under /v1/admin: the user
// roster and role changes, any user's records and forecasts, the full
// catalog and the category report.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, f *handler.ForecastHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.GET("/users", a.ListUsers)
	g.PATCH("/users/:id/role", a.UpdateUserRole)
	g.GET("/users/:id/records", a.UserRecords)
	g.GET("/records", a.AllRecords)
	g.GET("/reports/records", a.RecordReport)

	g.GET("/users/:id/forecasts", f.UserForecasts)
	g.POST("/users/:id/forecasts", f.CreateForUser)
	g.PUT("/forecasts/:id", f.UpdateAny)
	g.PATCH("/forecasts/:id", f.UpdateAny)
	g.DELETE("/forecasts/:id", f.DeleteAny)
}
