package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"low-altitude/uavops/internal/common"
	"low-altitude/uavops/internal/conflict"
	"low-altitude/uavops/internal/constants"
	"low-altitude/uavops/internal/editor"
	"low-altitude/uavops/internal/geo"
	"low-altitude/uavops/internal/logging"
	"low-altitude/uavops/internal/models/dtos"
	"low-altitude/uavops/internal/services"
	"low-altitude/uavops/internal/session"
	"low-altitude/uavops/internal/simulation"
)

// WaypointView is one row of the editor's waypoint list.
type WaypointView struct {
	Index int `json:"index"`
	geo.Waypoint
}

func loadSession(w http.ResponseWriter, r *http.Request, initTime time.Time, mgr *session.Manager) (*session.Session, bool) {
	s, err := mgr.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, r, initTime, err)
		return nil, false
	}
	return s, true
}

func describeSession(s *session.Session) dtos.SessionResponse {
	return dtos.SessionResponse{
		ID:         s.ID,
		CreatedAt:  s.CreatedAt,
		Waypoints:  s.Editor.Len(),
		Altitude:   s.Editor.Altitude(),
		Simulation: s.Simulator.Status(),
	}
}

// CreateSessionHandler handles POST /api/v1/sessions
func CreateSessionHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		s := mgr.Create()
		common.RespondSuccess(w, initTime, "Session created", describeSession(s), http.StatusCreated)
	}
}

func GetSessionHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		s, ok := loadSession(w, r, initTime, mgr)
		if !ok {
			return
		}
		common.RespondSuccess(w, initTime, "Session retrieved", describeSession(s))
	}
}

func CloseSessionHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		if err := mgr.Close(chi.URLParam(r, "sessionID")); err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Session closed", nil)
	}
}

// ListWaypointsHandler handles GET /api/v1/sessions/{sessionID}/waypoints
func ListWaypointsHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		s, ok := loadSession(w, r, initTime, mgr)
		if !ok {
			return
		}

		rows := make([]WaypointView, 0, s.Editor.Len())
		for i, p := range s.Editor.All() {
			rows = append(rows, WaypointView{Index: i, Waypoint: p})
		}
		common.RespondSuccess(w, initTime, "Waypoints retrieved", rows)
	}
}

// AddWaypointHandler accepts [lng,lat,alt] or {lng,lat,alt}. A point
// without altitude takes the session's current default altitude.
func AddWaypointHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		s, ok := loadSession(w, r, initTime, mgr)
		if !ok {
			return
		}

		var p geo.WaypointInput
		if err := decodeBody(r, &p); err != nil {
			common.RespondError(w, initTime, nil, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}

		var idx int
		if p.HasAltitude {
			idx = s.Editor.Add(p.Waypoint)
		} else {
			idx = s.Editor.AddAt(p.Longitude, p.Latitude)
		}
		common.RespondSuccess(w, initTime, "Waypoint added", map[string]int{"index": idx}, http.StatusCreated)
	}
}

func UpdateWaypointHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		s, ok := loadSession(w, r, initTime, mgr)
		if !ok {
			return
		}
		idx, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			common.RespondError(w, initTime, nil, constants.MsgInvalidIndex, http.StatusBadRequest)
			return
		}

		var p geo.Waypoint
		if err := decodeBody(r, &p); err != nil {
			common.RespondError(w, initTime, nil, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}
		if err := s.Editor.Update(idx, p); err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Waypoint updated", nil)
	}
}

func DeleteWaypointHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		s, ok := loadSession(w, r, initTime, mgr)
		if !ok {
			return
		}
		idx, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			common.RespondError(w, initTime, nil, constants.MsgInvalidIndex, http.StatusBadRequest)
			return
		}
		if err := s.Editor.Remove(idx); err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Waypoint removed", nil)
	}
}

// ClearWaypointsHandler empties the editor, silently stopping any simulation.
func ClearWaypointsHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		s, ok := loadSession(w, r, initTime, mgr)
		if !ok {
			return
		}
		s.Editor.Clear()
		common.RespondSuccess(w, initTime, "Waypoints cleared", nil)
	}
}

func SetAltitudeHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		s, ok := loadSession(w, r, initTime, mgr)
		if !ok {
			return
		}

		var req dtos.AltitudeRequest
		if err := decodeBody(r, &req); err != nil || req.Altitude <= 0 {
			common.RespondError(w, initTime, nil, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}
		s.Editor.SetAltitude(req.Altitude)
		common.RespondSuccess(w, initTime, "Altitude updated", describeSession(s))
	}
}

// CheckSessionHandler runs the conflict check over the session's waypoints.
func CheckSessionHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		s, ok := loadSession(w, r, initTime, mgr)
		if !ok {
			return
		}
		res := s.Check()
		common.RespondSuccess(w, initTime, res.Message, res)
	}
}

func AnalyzeSessionHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		s, ok := loadSession(w, r, initTime, mgr)
		if !ok {
			return
		}
		violations := s.Analyze()
		if violations == nil {
			violations = []conflict.Violation{}
		}
		common.RespondSuccess(w, initTime, "Route analysed", violations)
	}
}

// ExportRouteHandler builds a route from the session. With ?save=true it is
// also stored.
func ExportRouteHandler(mgr *session.Manager, routes *services.RouteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		s, ok := loadSession(w, r, initTime, mgr)
		if !ok {
			return
		}

		var req dtos.ExportRequest
		if err := decodeBody(r, &req); err != nil {
			common.RespondError(w, initTime, nil, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}

		route := s.Editor.Export(editor.RouteInfo{
			ID:          req.ID,
			Name:        req.Name,
			Speed:       req.Speed,
			Altitude:    req.Altitude,
			Description: req.Description,
		})
		if route == nil {
			common.RespondError(w, initTime, nil, constants.MsgRouteTooShort, http.StatusBadRequest)
			return
		}

		if r.URL.Query().Get("save") != "true" {
			common.RespondSuccess(w, initTime, "Route exported", route)
			return
		}

		saved, err := routes.Save(r.Context(), dtos.SaveRouteRequest{
			ID:          route.ID,
			Name:        route.Name,
			Waypoints:   route.Waypoints,
			Speed:       route.Speed,
			Altitude:    route.Altitude,
			Description: route.Description,
		})
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Route exported and saved", saved)
	}
}

// ImportRouteHandler loads a stored route by id, or an inline route, into
// the session's editor.
func ImportRouteHandler(mgr *session.Manager, routes *services.RouteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		s, ok := loadSession(w, r, initTime, mgr)
		if !ok {
			return
		}

		var req dtos.ImportRequest
		if err := decodeBody(r, &req); err != nil {
			common.RespondError(w, initTime, nil, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}

		var route geo.Route
		switch {
		case req.RouteID != "":
			stored, err := routes.Get(r.Context(), req.RouteID)
			if err != nil {
				respondServiceError(w, r, initTime, err)
				return
			}
			route = stored.ToGeo()
		case req.Route != nil:
			route = *req.Route
		default:
			common.RespondError(w, initTime, nil, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}

		s.Editor.Import(route)
		logging.WithSession(s.ID).Infow("Route imported", "route", route.Name, "waypoints", len(route.Waypoints))
		common.RespondSuccess(w, initTime, "Route imported", describeSession(s))
	}
}

// StartSimulationHandler handles POST /api/v1/sessions/{sessionID}/simulation/start
func StartSimulationHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		s, ok := loadSession(w, r, initTime, mgr)
		if !ok {
			return
		}

		var req dtos.SimulationRequest
		if r.ContentLength != 0 {
			if err := decodeBody(r, &req); err != nil {
				common.RespondError(w, initTime, nil, constants.MsgInvalidBody, http.StatusBadRequest)
				return
			}
		}

		err := s.StartSimulation(editor.RouteInfo{Name: req.Name, Speed: req.Speed, Altitude: req.Altitude})
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Simulation started", s.Simulator.Status())
	}
}

// simulationControl wraps the pause and resume toggles. Calls that do not
// apply in the current state are reported but not treated as errors.
func simulationControl(mgr *session.Manager, op func(*simulation.Simulator) bool, done, ignored string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		s, ok := loadSession(w, r, initTime, mgr)
		if !ok {
			return
		}
		msg := done
		if !op(s.Simulator) {
			msg = ignored
		}
		common.RespondSuccess(w, initTime, msg, s.Simulator.Status())
	}
}

func PauseSimulationHandler(mgr *session.Manager) http.HandlerFunc {
	return simulationControl(mgr, (*simulation.Simulator).Pause, "Simulation paused", "Simulation is not running")
}

func ResumeSimulationHandler(mgr *session.Manager) http.HandlerFunc {
	return simulationControl(mgr, (*simulation.Simulator).Resume, "Simulation resumed", "Simulation is not paused")
}

func StopSimulationHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		s, ok := loadSession(w, r, initTime, mgr)
		if !ok {
			return
		}
		s.Simulator.Stop()
		common.RespondSuccess(w, initTime, "Simulation stopped", s.Simulator.Status())
	}
}

func ResetSimulationHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		s, ok := loadSession(w, r, initTime, mgr)
		if !ok {
			return
		}
		if err := s.Simulator.Reset(); err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Simulation restarted", s.Simulator.Status())
	}
}

func SimulationStatusHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		s, ok := loadSession(w, r, initTime, mgr)
		if !ok {
			return
		}
		common.RespondSuccess(w, initTime, "Simulation status", s.Simulator.Status())
	}
}
