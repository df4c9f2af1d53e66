package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nebuladesk/helpdesk/internal/api/http/handlers"
	"github.com/nebuladesk/helpdesk/internal/auth"
	"github.com/nebuladesk/helpdesk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Organizations  *handlers.OrganizationsHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	SLA            *handlers.SLAHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/counters", cfg.Health.Counters)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/auth/me", cfg.Auth.Me)
	protected.Post("/auth/password/change", cfg.Auth.ChangePassword)

	users := protected.Group("/users", auth.RequireRole(domain.RoleAdmin, domain.RoleOwner, domain.RoleAgent))
	users.Get("", cfg.Users.ListMembers)
	users.Patch("/:id/role", auth.RequireRole(domain.RoleAdmin), cfg.Users.AssignRole)

	orgs := protected.Group("/organizations", auth.RequireRole(domain.RoleAdmin))
	orgs.Post("", cfg.Organizations.CreateOrganization)
	orgs.Get("", cfg.Organizations.ListOrganizations)
	orgs.Get("/:id", cfg.Organizations.GetOrganization)
	orgs.Patch("/:id", cfg.Organizations.RenameOrganization)

	tickets := protected.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/key/:key", cfg.Tickets.GetTicketByKey)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Patch("/:id/priority", auth.RequireRole(domain.RoleAdmin, domain.RoleOwner, domain.RoleAgent), cfg.Tickets.UpdatePriority)
	tickets.Patch("/:id/assignee", auth.RequireRole(domain.RoleAdmin, domain.RoleOwner, domain.RoleAgent), cfg.Tickets.AssignTicket)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Get("/:id/audit", auth.RequireRole(domain.RoleAdmin, domain.RoleOwner, domain.RoleAgent), cfg.Tickets.ListAudit)

	sla := protected.Group("/sla")
	sla.Get("/dashboard", cfg.SLA.Dashboard)
	sla.Get("/policies", cfg.SLA.Policies)
	sla.Post("/sweep", auth.RequireRole(domain.RoleAdmin), cfg.SLA.RunSweep)
}
