// Package web is the operator surface: a small HTTP API for queueing
// waypoints and inspecting the planner, plus websocket streams of
// dispatched actions and status snapshots.
package web

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-spacejockey/internal/config"
	"github.com/teslashibe/go-spacejockey/pkg/geom"
	"github.com/teslashibe/go-spacejockey/pkg/hub"
	"github.com/teslashibe/go-spacejockey/pkg/planner"
	"github.com/teslashibe/go-spacejockey/pkg/protocol"
	"github.com/teslashibe/go-spacejockey/pkg/waypoint"
)

// actionHistory is how many dispatched actions the server remembers.
const actionHistory = 500

// Planner is the part of the planning loop the server drives.
type Planner interface {
	Enqueue(w waypoint.Waypoint) error
	Status() planner.Status
}

// Server is the operator HTTP server.
type Server struct {
	app      *fiber.App
	addr     string
	log      *slog.Logger
	planner  Planner
	cfg      config.Planner
	viewport geom.Viewport

	actions   []protocol.PlannerAction
	actionsMu sync.RWMutex

	actionHub *hub.Hub
	statusHub *hub.Hub
}

// NewServer builds the server. Nothing listens until Start.
func NewServer(addr string, p Planner, cfg config.Planner, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		addr:      addr,
		log:       log,
		planner:   p,
		cfg:       cfg,
		viewport:  cfg.Window.Viewport(),
		actions:   make([]protocol.PlannerAction, 0, actionHistory),
		actionHub: hub.New("actions", log),
		statusHub: hub.New("status", log),
	}

	app := fiber.New(fiber.Config{
		AppName:               "jockey",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
		Next:   func(c *fiber.Ctx) bool { return c.Path() == "/healthz" },
	}))
	app.Use(cors.New())

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/config", s.handleConfig)
	api.Get("/waypoints", s.handleListWaypoints)
	api.Post("/waypoints", s.handleAddWaypoint)
	api.Get("/actions", s.handleActions)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/actions", websocket.New(s.handleActionsWS))
	app.Get("/ws/status", websocket.New(s.handleStatusWS))

	s.app = app
	return s
}

// Start runs the hubs and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	go s.actionHub.Run(ctx)
	go s.statusHub.Run(ctx)

	go func() {
		<-ctx.Done()
		if err := s.app.Shutdown(); err != nil {
			s.log.Warn("web shutdown", "error", err)
		}
	}()

	s.log.Info("operator api listening", "addr", s.addr)
	if err := s.app.Listen(s.addr); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// App exposes the fiber app, mostly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Dispatch records a and pushes it to /ws/actions subscribers.
func (s *Server) Dispatch(a protocol.PlannerAction) error {
	s.actionsMu.Lock()
	s.actions = append(s.actions, a)
	if len(s.actions) > actionHistory {
		s.actions = s.actions[len(s.actions)-actionHistory:]
	}
	s.actionsMu.Unlock()

	msg, err := protocol.NewActionMessage(a)
	if err != nil {
		return err
	}
	return s.actionHub.BroadcastJSON(msg)
}

// WaypointReached pushes an arrival to /ws/status subscribers.
func (s *Server) WaypointReached(w waypoint.Waypoint, ticks uint64) {
	msg, err := protocol.NewReachedMessage(protocol.ReachedData{
		ID:     w.ID,
		X:      w.X,
		Y:      w.Y,
		Action: w.Kind.String(),
		Ticks:  ticks,
	})
	if err != nil {
		s.log.Warn("encode arrival", "error", err)
		return
	}
	if err := s.statusHub.BroadcastJSON(msg); err != nil {
		s.log.Warn("broadcast arrival", "error", err)
	}
}

// PublishStatus pushes a status snapshot to /ws/status subscribers.
func (s *Server) PublishStatus(st planner.Status) {
	if s.statusHub.ClientCount() == 0 {
		return
	}
	msg, err := protocol.NewMessage(protocol.TypeStatus, st)
	if err != nil {
		s.log.Warn("encode status", "error", err)
		return
	}
	if err := s.statusHub.BroadcastJSON(msg); err != nil {
		s.log.Warn("broadcast status", "error", err)
	}
}

// RecentActions returns up to limit of the latest actions, oldest first.
// limit <= 0 returns everything kept.
func (s *Server) RecentActions(limit int) []protocol.PlannerAction {
	s.actionsMu.RLock()
	defer s.actionsMu.RUnlock()
	start := 0
	if limit > 0 && limit < len(s.actions) {
		start = len(s.actions) - limit
	}
	out := make([]protocol.PlannerAction, len(s.actions)-start)
	copy(out, s.actions[start:])
	return out
}

// Shutdown stops the HTTP listener.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
