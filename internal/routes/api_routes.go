package routes

import (
	"soultrack/followup/internal/api"
	"soultrack/followup/internal/constants"
	"soultrack/followup/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterAPIRoutes registers the public, internal and v1 routes.
func RegisterAPIRoutes(r chi.Router, deps *api.Dependencies, handlers *api.Handlers, jobsHandler *api.JobsHandler, limiter *middleware.IPRateLimiter) {

	// Public intake form, rate limited per IP
	r.Group(func(public chi.Router) {
		public.Use(limiter.Middleware)
		public.Post("/public/intake/{token}", handlers.SubmitPublicIntake())
	})

	// Scheduler hooks
	r.Group(func(internal chi.Router) {
		internal.Use(middleware.RequireCronSecret(deps.Config.CronSecret))
		internal.Post("/internal/jobs/retention-sweep", jobsHandler.TriggerRetentionSweep())
	})

	// API v1 routes
	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(middleware.InFlightMiddleware(deps.Metrics, "api_v1"))
		v1.Use(middleware.Authenticate(deps.Verifier, deps.Services.Sessions)) // global: all routes must be authenticated

		v1.Get("/me", handlers.GetMe())

		// Scoped reads and owner mutations; visibility is enforced by the services
		v1.Get("/contacts", handlers.ListContacts())
		v1.Patch("/contacts/{id}/evangelism-status", handlers.UpdateEvangelismStatus())
		v1.Patch("/contacts/{id}/status", handlers.UpdateContactStatus())
		v1.Get("/follow-ups", handlers.ListFollowUps())
		v1.Patch("/follow-ups/{id}", handlers.UpdateFollowUp())
		v1.Post("/follow-ups/{id}/integrate", handlers.IntegrateFollowUp())
		v1.Get("/follow-ups/{id}/message", handlers.GetFollowUpMessage())
		v1.Get("/reports/summary", handlers.ReportSummary())

		// Intake by staff
		v1.Group(func(staff chi.Router) {
			staff.Use(middleware.RequireRoles(constants.RoleAdmin, constants.RoleResponsableCellule, constants.RoleConseiller))
			staff.Post("/contacts", handlers.CreateContact())
		})

		// Admin-only group
		v1.Group(func(admin chi.Router) {
			admin.Use(middleware.RequireRoles(constants.RoleAdmin))

			admin.Post("/dispatch", handlers.Dispatch())
			admin.Post("/admin/intake-links", handlers.CreateIntakeLink())
			admin.Post("/admin/intake-links/revoke", handlers.RevokeIntakeLink())
			admin.Post("/admin/reconcile", jobsHandler.TriggerReconciliation())
			admin.Post("/admin/reconciliations/{id}/resolve", jobsHandler.ResolveReconciliation())
		})
	})
}
