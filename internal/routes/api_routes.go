package routes

import (
	"github.com/go-chi/chi/v5"

	"low-altitude/uavops/internal/api"
	"low-altitude/uavops/internal/middleware"
)

// RegisterAPIRoutes registers all API v1 routes and handlers
func RegisterAPIRoutes(r chi.Router, deps *api.Dependencies, limiter *middleware.RateLimiter) {
	svc := deps.Services
	mgr := deps.Sessions

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(limiter.Middleware)

		v1.Route("/routes", func(rr chi.Router) {
			rr.Get("/", api.ListRoutesHandler(svc.Routes))
			rr.Post("/", api.SaveRouteHandler(svc.Routes))
			rr.Post("/batch-delete", api.DeleteRoutesHandler(svc.Routes))
			rr.Get("/stats", api.RouteStatsHandler(svc.Routes))
			rr.Get("/export", api.ExportRoutesHandler(svc.Routes))
			rr.Get("/{id}", api.GetRouteHandler(svc.Routes))
			rr.Put("/{id}", api.SaveRouteHandler(svc.Routes))
			rr.Delete("/{id}", api.DeleteRouteHandler(svc.Routes))
			rr.Get("/{id}/check", api.CheckSavedRouteHandler(svc.Routes))
		})

		v1.Route("/aircraft", func(ar chi.Router) {
			ar.Get("/", api.ListAircraftHandler(svc.Fleet))
			ar.Post("/", api.CreateAircraftHandler(svc.Fleet))
			ar.Get("/options", api.AircraftOptionsHandler(svc.Fleet))
			ar.Get("/stats", api.AircraftStatsHandler(svc.Fleet))
			ar.Post("/batch-delete", api.BatchDeleteAircraftHandler(svc.Fleet))
			ar.Post("/batch-status", api.BatchAircraftStatusHandler(svc.Fleet))
			ar.Get("/{id}", api.GetAircraftHandler(svc.Fleet))
			ar.Put("/{id}", api.UpdateAircraftHandler(svc.Fleet))
			ar.Delete("/{id}", api.DeleteAircraftHandler(svc.Fleet))
		})

		v1.Route("/pilots", func(pr chi.Router) {
			pr.Get("/", api.ListPilotsHandler(svc.Pilots))
			pr.Get("/stats", api.PilotStatsHandler(svc.Pilots))
			pr.Patch("/{id}/status", api.UpdatePilotStatusHandler(svc.Pilots))
		})

		v1.Route("/work-orders", func(wr chi.Router) {
			wr.Get("/", api.ListWorkOrdersHandler(svc.WorkOrders))
			wr.Post("/", api.CreateWorkOrderHandler(svc.WorkOrders))
			wr.Get("/stats", api.WorkOrderStatsHandler(svc.WorkOrders))
			wr.Get("/{id}", api.GetWorkOrderHandler(svc.WorkOrders))
			wr.Put("/{id}", api.UpdateWorkOrderHandler(svc.WorkOrders))
			wr.Patch("/{id}/status", api.UpdateWorkOrderStatusHandler(svc.WorkOrders))
			wr.Post("/{id}/dispatch", api.DispatchWorkOrderHandler(svc.WorkOrders))
			wr.Delete("/{id}", api.DeleteWorkOrderHandler(svc.WorkOrders))
		})

		v1.Route("/flight-tasks", func(fr chi.Router) {
			fr.Get("/", api.ListFlightTasksHandler(svc.FlightTasks))
			fr.Post("/", api.CreateFlightTaskHandler(svc.FlightTasks))
			fr.Get("/{id}", api.GetFlightTaskHandler(svc.FlightTasks))
			fr.Patch("/{id}/status", api.UpdateFlightTaskStatusHandler(svc.FlightTasks))
			fr.Patch("/{id}/work-order", api.LinkFlightTaskWorkOrderHandler(svc.FlightTasks))
			fr.Patch("/{id}/route", api.UpdateFlightTaskRouteHandler(svc.FlightTasks))
			fr.Delete("/{id}", api.DeleteFlightTaskHandler(svc.FlightTasks))
			fr.Get("/{id}/airspace-application", api.ApplicationByTaskHandler(svc.Airspace))
		})

		v1.Route("/airspace", func(ap chi.Router) {
			ap.Get("/zones", api.ListZonesHandler(svc.Airspace))
			ap.Post("/check", api.CheckRouteHandler(deps.Checker))
			ap.Post("/detour", api.DetourHandler(svc.Airspace))
			ap.Get("/applications", api.ListApplicationsHandler(svc.Airspace))
			ap.Post("/applications", api.CreateApplicationHandler(svc.Airspace))
			ap.Patch("/applications/{id}/status", api.UpdateApplicationStatusHandler(svc.Airspace))
			ap.Delete("/applications/{id}", api.DeleteApplicationHandler(svc.Airspace))
		})

		v1.Post("/sessions", api.CreateSessionHandler(mgr))
		v1.Route("/sessions/{sessionID}", func(sr chi.Router) {
			sr.Use(middleware.SessionScope)

			sr.Get("/", api.GetSessionHandler(mgr))
			sr.Delete("/", api.CloseSessionHandler(mgr))
			sr.Get("/events", api.SessionEventsHandler(mgr))

			sr.Get("/waypoints", api.ListWaypointsHandler(mgr))
			sr.Post("/waypoints", api.AddWaypointHandler(mgr))
			sr.Delete("/waypoints", api.ClearWaypointsHandler(mgr))
			sr.Put("/waypoints/{index}", api.UpdateWaypointHandler(mgr))
			sr.Delete("/waypoints/{index}", api.DeleteWaypointHandler(mgr))
			sr.Put("/altitude", api.SetAltitudeHandler(mgr))

			sr.Get("/check", api.CheckSessionHandler(mgr))
			sr.Get("/analyze", api.AnalyzeSessionHandler(mgr))
			sr.Post("/export", api.ExportRouteHandler(mgr, svc.Routes))
			sr.Post("/import", api.ImportRouteHandler(mgr, svc.Routes))

			sr.Route("/simulation", func(sim chi.Router) {
				sim.Get("/", api.SimulationStatusHandler(mgr))
				sim.Post("/start", api.StartSimulationHandler(mgr))
				sim.Post("/pause", api.PauseSimulationHandler(mgr))
				sim.Post("/resume", api.ResumeSimulationHandler(mgr))
				sim.Post("/stop", api.StopSimulationHandler(mgr))
				sim.Post("/reset", api.ResetSimulationHandler(mgr))
			})
		})
	})
}
