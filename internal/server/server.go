// Package server exposes one viewer session over HTTP and websockets. The
// REST surface mirrors the viewer's operations; the websocket hub streams
// selection and framing events to connected UIs.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/davidwyly/chart-citizen-sub001/camera"
	"github.com/davidwyly/chart-citizen-sub001/internal/logging"
	"github.com/davidwyly/chart-citizen-sub001/internal/observability"
	"github.com/davidwyly/chart-citizen-sub001/viewer"
)

// Server routes HTTP requests onto a single viewer session.
type Server struct {
	log     logging.Logger
	viewer  *viewer.Viewer
	metrics *observability.ViewerCollector
	hub     *Hub
	router  *mux.Router
}

// New wires the routes and subscribes the hub to selection changes. The
// metrics collector may be nil.
func New(log logging.Logger, v *viewer.Viewer, metrics *observability.ViewerCollector) *Server {
	if log == nil {
		log = logging.Noop()
	}
	s := &Server{
		log:     log.With(logging.String("component", "server")),
		viewer:  v,
		metrics: metrics,
		hub:     NewHub(log),
		router:  mux.NewRouter(),
	}

	v.Selection.Subscribe(func(st viewer.SelectionState) {
		if s.metrics != nil {
			s.metrics.SetPaused(v.Clock().Paused())
		}
		s.hub.Broadcast(Event{Type: "selection", Payload: selectionJSON(st)})
	})

	s.routes()
	return s
}

// Router returns the root handler.
func (s *Server) Router() http.Handler { return s.router }

// Hub exposes the websocket hub, mainly so callers can Close it on shutdown.
func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) routes() {
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware)
		s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/ws", s.hub.HandleWS)

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/systems", s.handleListSystems).Methods(http.MethodGet)
	api.HandleFunc("/systems/{id}/load", s.handleLoadSystem).Methods(http.MethodPost)
	api.HandleFunc("/systems/{id}/objects", s.handleSystemObjects).Methods(http.MethodGet)
	api.HandleFunc("/objects", s.handleListObjects).Methods(http.MethodGet)
	api.HandleFunc("/objects/{id}/sizing", s.handleObjectSizing).Methods(http.MethodGet)
	api.HandleFunc("/mode", s.handleSetMode).Methods(http.MethodPost)
	api.HandleFunc("/frame", s.handleFrame).Methods(http.MethodPost)
	api.HandleFunc("/select", s.handleSelect).Methods(http.MethodPost)
	api.HandleFunc("/back", s.handleBack).Methods(http.MethodPost)
	api.HandleFunc("/selection", s.handleSelection).Methods(http.MethodGet)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListSystems(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = s.viewer.Mode()
	}
	ids, err := s.viewer.AvailableSystems(r.Context(), mode)
	if err != nil {
		s.log.Error(r.Context(), "list systems failed", logging.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "catalog unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"mode": mode, "systems": ids})
}

func (s *Server) handleLoadSystem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.viewer.LoadSystem(r.Context(), id); err != nil {
		s.log.Warn(r.Context(), "load system failed",
			logging.String("system_id", id),
			logging.String("error", err.Error()))
		writeError(w, http.StatusNotFound, "system not found")
		return
	}
	if s.metrics != nil {
		s.metrics.SetLoadedObjects(len(s.viewer.Objects()))
	}
	s.hub.Broadcast(Event{Type: "system_loaded", Payload: map[string]string{
		"system_id": id,
		"mode":      s.viewer.Mode(),
	}})
	writeJSON(w, http.StatusOK, map[string]string{"system_id": id})
}

// handleSystemObjects lists a system's catalog entries without loading it
// into the session. Sizing is session-scoped, so only identity fields appear.
func (s *Server) handleSystemObjects(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	objects, err := s.viewer.ListSystemObjects(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "system not found")
		return
	}
	type objectOut struct {
		ID             string `json:"id"`
		Name           string `json:"name"`
		Classification string `json:"classification"`
		Parent         string `json:"parent,omitempty"`
	}
	out := make([]objectOut, 0, len(objects))
	for _, d := range objects {
		o := objectOut{ID: d.ID, Name: d.Name, Classification: d.Classification.String()}
		if d.Orbit != nil {
			o.Parent = d.Orbit.Parent
		}
		out = append(out, o)
	}
	writeJSON(w, http.StatusOK, map[string]any{"system_id": id, "objects": out})
}

func (s *Server) handleListObjects(w http.ResponseWriter, r *http.Request) {
	if s.viewer.SystemID() == "" {
		writeError(w, http.StatusConflict, "no system loaded")
		return
	}
	type objectOut struct {
		ID             string  `json:"id"`
		Name           string  `json:"name"`
		Classification string  `json:"classification"`
		VisualRadius   float64 `json:"visual_radius"`
	}
	objects := s.viewer.Objects()
	out := make([]objectOut, 0, len(objects))
	for _, d := range objects {
		out = append(out, objectOut{
			ID:             d.ID,
			Name:           d.Name,
			Classification: d.Classification.String(),
			VisualRadius:   s.viewer.GetObjectSizing(d.ID),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"system_id": s.viewer.SystemID(),
		"objects":   out,
	})
}

func (s *Server) handleObjectSizing(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	writeJSON(w, http.StatusOK, map[string]any{
		"object_id":     id,
		"visual_radius": s.viewer.GetObjectSizing(id),
	})
}

func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Mode == "" {
		writeError(w, http.StatusBadRequest, "mode required")
		return
	}
	if err := s.viewer.SetMode(r.Context(), req.Mode); err != nil {
		s.log.Warn(r.Context(), "set mode failed",
			logging.String("mode", req.Mode),
			logging.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "mode change failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"mode": s.viewer.Mode()})
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FocalID  string `json:"focal_id"`
		BirdsEye bool   `json:"birds_eye"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FocalID == "" {
		writeError(w, http.StatusBadRequest, "focal_id required")
		return
	}
	target := s.viewer.Frame(req.FocalID, req.BirdsEye)
	if s.metrics != nil {
		s.metrics.FramingDone()
	}
	payload := framingJSON(req.FocalID, target)
	s.hub.Broadcast(Event{Type: "framing", Payload: payload})
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ObjectID  string `json:"object_id"`
		DrillDown bool   `json:"drill_down"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ObjectID == "" {
		writeError(w, http.StatusBadRequest, "object_id required")
		return
	}
	s.viewer.FocusObject(req.ObjectID, req.DrillDown)
	if s.metrics != nil {
		s.metrics.FramingDone()
	}
	writeJSON(w, http.StatusOK, selectionJSON(s.viewer.Selection.State()))
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	s.viewer.Selection.Back()
	writeJSON(w, http.StatusOK, selectionJSON(s.viewer.Selection.State()))
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, selectionJSON(s.viewer.Selection.State()))
}

// selectionOut is the wire shape of the selection state.
type selectionOut struct {
	SelectedObjectID   string   `json:"selected_object_id,omitempty"`
	HoveredObjectID    string   `json:"hovered_object_id,omitempty"`
	FocusedObjectID    string   `json:"focused_object_id,omitempty"`
	FocusedObjectName  string   `json:"focused_object_name,omitempty"`
	FocusedVisualSize  *float64 `json:"focused_visual_size,omitempty"`
	FocusedRadius      *float64 `json:"focused_radius,omitempty"`
	FocusedMass        *float64 `json:"focused_mass,omitempty"`
	FocusedOrbitRadius *float64 `json:"focused_orbit_radius,omitempty"`
}

func selectionJSON(st viewer.SelectionState) selectionOut {
	return selectionOut{
		SelectedObjectID:   st.SelectedObjectID,
		HoveredObjectID:    st.HoveredObjectID,
		FocusedObjectID:    st.FocusedObjectID,
		FocusedObjectName:  st.FocusedObjectName,
		FocusedVisualSize:  st.FocusedVisualSize,
		FocusedRadius:      st.FocusedRadius,
		FocusedMass:        st.FocusedMass,
		FocusedOrbitRadius: st.FocusedOrbitRadius,
	}
}

type vec3Out struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

type framingOut struct {
	FocalID        string  `json:"focal_id"`
	Distance       float32 `json:"distance"`
	ElevationAngle float32 `json:"elevation_angle"`
	CameraPosition vec3Out `json:"camera_position"`
	LookAt         vec3Out `json:"look_at"`
}

func framingJSON(focalID string, t camera.FramingTarget) framingOut {
	return framingOut{
		FocalID:        focalID,
		Distance:       t.Distance,
		ElevationAngle: t.ElevationAngle,
		CameraPosition: vec3Out{t.CameraPosition.X, t.CameraPosition.Y, t.CameraPosition.Z},
		LookAt:         vec3Out{t.LookAt.X, t.LookAt.Y, t.LookAt.Z},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
