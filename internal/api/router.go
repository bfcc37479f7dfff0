package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/swiftdrop/dispatch/internal/api/handler"
	"github.com/swiftdrop/dispatch/internal/api/middleware"
	"github.com/swiftdrop/dispatch/internal/core/domain"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth      *handler.AuthHandler
	Health    *handler.HealthHandler
	Readiness *handler.ReadinessHandler
	Estimate  *handler.EstimateHandler
	Order     *handler.OrderHandler
	Task      *handler.TaskHandler
	Group     *handler.GroupHandler
	Driver    *handler.DriverHandler
	Payment   *handler.PaymentHandler
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(h Handlers, jwtSecret string, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("dispatch"))

	// --- Observability and docs (no auth required) ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Health probes (no auth required) ---
	e.GET("/health", h.Health.Liveness)           // process liveness
	e.GET("/health/ready", h.Readiness.Readiness) // dependency readiness

	// --- Auth routes ---
	e.POST("/auth/register", h.Auth.Register)
	e.POST("/auth/login", h.Auth.Login)

	// --- Payment provider webhook ---
	// Providers sign requests instead of carrying user JWTs, so the route
	// sits outside the auth group.
	e.POST("/v1/payments/webhook", h.Payment.Webhook)

	auth := middleware.Auth(jwtSecret)
	v1 := e.Group("/v1", auth)

	// --- Estimates (any authenticated caller) ---
	v1.POST("/estimates", h.Estimate.Quote)

	// --- Orders ---
	v1.POST("/orders", h.Order.Create, middleware.RBAC(domain.RoleCustomer, domain.RoleAdmin))
	v1.GET("/orders", h.Order.List)
	v1.GET("/orders/:id", h.Order.Get)
	v1.GET("/orders/:id/groups", h.Group.ListByOrder, middleware.RBAC(domain.RoleAdmin))

	// --- Task groups (admin dispatch operations) ---
	v1.GET("/groups/:id", h.Group.Get, middleware.RBAC(domain.RoleAdmin))
	v1.PUT("/groups/:id/driver", h.Group.AssignDriver, middleware.RBAC(domain.RoleAdmin))
	v1.DELETE("/groups/:id/driver", h.Group.RemoveDriver, middleware.RBAC(domain.RoleAdmin))

	// --- Driver task state machine ---
	v1.PATCH("/tasks/:id", h.Task.Advance, middleware.RBAC(domain.RoleDriver))
	v1.POST("/evidence", h.Task.RegisterEvidence, middleware.RBAC(domain.RoleDriver))

	// --- Driver profiles ---
	v1.POST("/drivers", h.Driver.Register, middleware.RBAC(domain.RoleCustomer, domain.RoleDriver))
	v1.GET("/drivers/me/groups", h.Driver.ListGroups, middleware.RBAC(domain.RoleDriver))
	v1.PUT("/drivers/me/location", h.Driver.UpdateLocation, middleware.RBAC(domain.RoleDriver))
	v1.GET("/drivers/:id", h.Driver.Get, middleware.RBAC(domain.RoleAdmin, domain.RoleDriver))
	v1.PUT("/drivers/:id/verification", h.Driver.SetVerification, middleware.RBAC(domain.RoleAdmin))

	return e
}
