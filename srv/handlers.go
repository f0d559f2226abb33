package srv

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/alphabeta2023/cubegame/auth"
	"github.com/alphabeta2023/cubegame/game"
	"github.com/alphabeta2023/cubegame/store"
)

// Server wires the HTTP API to the game core.
type Server struct {
	auth         *auth.Service
	store        *store.Store
	clock        *game.Clock
	spawner      *game.Spawner
	consolidator *game.Consolidator
	hub          *Hub
	metrics      *Metrics
	log          *zap.SugaredLogger
}

func NewServer(a *auth.Service, st *store.Store, clock *game.Clock,
	spawner *game.Spawner, cons *game.Consolidator, hub *Hub,
	metrics *Metrics, log *zap.SugaredLogger) *Server {
	return &Server{
		auth:         a,
		store:        st,
		clock:        clock,
		spawner:      spawner,
		consolidator: cons,
		hub:          hub,
		metrics:      metrics,
		log:          log,
	}
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /api/cube/save", s.withAuth(s.handleSaveCube))
	mux.HandleFunc("GET /api/game/state", s.withAuth(s.handleGameState))
	mux.HandleFunc("POST /api/game/reset", s.withAuth(s.handleReset))
	mux.HandleFunc("GET /api/game/time", s.withAuth(s.handleTime))
	mux.HandleFunc("POST /api/game/pause", s.withAuth(s.handlePause))
	mux.HandleFunc("POST /api/game/resume", s.withAuth(s.handleResume))
	mux.HandleFunc("POST /api/game/clearAllData", s.withAuth(s.handleClearAll))
	mux.HandleFunc("GET /api/props", s.withAuth(s.handleListProps))
	mux.HandleFunc("DELETE /api/prop", s.withAuth(s.handleDeleteProp))
	mux.HandleFunc("/ws/props", s.hub.ServeWS)
	mux.HandleFunc("GET /metrics", s.metrics.Handle)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (s *Server) withAuth(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username, err := s.auth.Validate(auth.BearerToken(r))
		if err != nil {
			s.writeError(w, err)
			return
		}
		next(w, r, username)
	}
}

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, game.Validationf("invalid json"))
		return
	}
	if err := s.auth.Register(req.Username, req.Password); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, game.Validationf("invalid json"))
		return
	}
	token, err := s.auth.Login(req.Username, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Authorization", "Bearer "+token)
	writeJSON(w, map[string]any{"token": token, "username": req.Username})
}

type saveCubeReq struct {
	Position       game.Position `json:"position"`
	CameraPosition game.Position `json:"cameraPosition"`
	Color          string        `json:"color"`
	Size           float64       `json:"size"`
	RenderOrder    int           `json:"renderOrder"`
}

// handleSaveCube persists the cube, appends a trail tile, and runs the
// spawn check. Spawning piggybacks on saves; there is no background spawn
// scheduler.
func (s *Server) handleSaveCube(w http.ResponseWriter, r *http.Request, username string) {
	var req saveCubeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, game.Validationf("invalid json"))
		return
	}
	cube := &game.PlayerCube{
		Username:       username,
		Position:       req.Position,
		CameraPosition: req.CameraPosition,
		Color:          req.Color,
		Size:           req.Size,
		RenderOrder:    req.RenderOrder,
	}
	if err := s.store.SaveCube(cube); err != nil {
		s.writeError(w, err)
		return
	}
	tile := &game.Tile{
		Username:    username,
		X:           req.Position.X,
		Z:           req.Position.Z,
		Color:       req.Color,
		Size:        req.Size,
		RenderOrder: req.RenderOrder,
	}
	if err := s.store.AppendTile(tile); err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.IncCubeSave()

	if err := s.spawner.OnCubeSave(username, req.Position, req.Size); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, cube)
}

type gameStateResp struct {
	Cube          *game.PlayerCube `json:"cube"`
	Tiles         []game.Tile      `json:"tiles"`
	Props         []game.Prop      `json:"props"`
	RemainingTime string           `json:"remainingTime"`
	HasSaveData   bool             `json:"hasSaveData"`
}

// handleGameState serves the play-session resume payload. Overpainted
// tiles are consolidated before the map is read back.
func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request, username string) {
	if _, err := s.consolidator.Consolidate(username); err != nil {
		s.writeError(w, err)
		return
	}
	cube, err := game.LoadOrCreateCube(s.store, username)
	if err != nil {
		s.writeError(w, err)
		return
	}
	tiles, err := s.store.TilesByUsernameAsc(username)
	if err != nil {
		s.writeError(w, err)
		return
	}
	props, err := s.spawner.PropsFor(username)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, gameStateResp{
		Cube:          cube,
		Tiles:         tiles,
		Props:         props,
		RemainingTime: game.FormatTime(cube.RemainingSeconds),
		HasSaveData:   cube.RemainingSeconds != cube.TotalSeconds,
	})
}

// handleReset wipes the player's world data and restarts the clock.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, username string) {
	minutes, err := strconv.Atoi(r.URL.Query().Get("gameMinutes"))
	if err != nil {
		s.writeError(w, game.Validationf("gameMinutes must be an integer"))
		return
	}
	if err := s.store.DeleteAllForUser(username); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.clock.Initialize(username, minutes); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"message": "game data reset"})
}

func (s *Server) handleTime(w http.ResponseWriter, r *http.Request, username string) {
	remaining, err := s.clock.RemainingTime(username)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"remainingTime": game.FormatTime(remaining)})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request, username string) {
	if err := s.clock.Pause(username); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"message": "game paused"})
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request, username string) {
	if err := s.clock.Resume(username); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"message": "game resumed"})
}

func (s *Server) handleClearAll(w http.ResponseWriter, r *http.Request, username string) {
	if err := s.store.DeleteAllForUser(username); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"message": "all data cleared"})
}

func (s *Server) handleListProps(w http.ResponseWriter, r *http.Request, username string) {
	props, err := s.spawner.PropsFor(username)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, props)
}

func (s *Server) handleDeleteProp(w http.ResponseWriter, r *http.Request, username string) {
	quadrant, err := strconv.Atoi(r.URL.Query().Get("quadrant"))
	if err != nil {
		s.writeError(w, game.Validationf("quadrant must be an integer"))
		return
	}
	if err := s.spawner.DeleteByOwnerAndQuadrant(username, quadrant); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"message": "prop deleted"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"
	switch {
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, auth.ErrUsernameTaken):
		status, msg = http.StatusConflict, err.Error()
	case game.IsValidation(err):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, game.ErrNotFound):
		status, msg = http.StatusNotFound, err.Error()
	default:
		s.log.Errorf("request failed: %v", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
