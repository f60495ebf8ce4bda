package web

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-spacejockey/pkg/geom"
	"github.com/teslashibe/go-spacejockey/pkg/hub"
	"github.com/teslashibe/go-spacejockey/pkg/planner"
	"github.com/teslashibe/go-spacejockey/pkg/protocol"
	"github.com/teslashibe/go-spacejockey/pkg/waypoint"
)

func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.planner.Status())
}

func (s *Server) handleConfig(c *fiber.Ctx) error {
	return c.JSON(s.cfg)
}

func (s *Server) handleListWaypoints(c *fiber.Ctx) error {
	pending := s.planner.Status().Pending
	if pending == nil {
		pending = []waypoint.Waypoint{}
	}
	return c.JSON(pending)
}

// handleAddWaypoint queues an operator target. Pixel coordinates go
// through the configured viewport.
func (s *Server) handleAddWaypoint(c *fiber.Ctx) error {
	var req protocol.WaypointRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid waypoint: "+err.Error())
	}

	w, err := toWaypoint(req, s.viewport)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := s.planner.Enqueue(w); err != nil {
		switch {
		case errors.Is(err, waypoint.ErrNotFinite):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case errors.Is(err, planner.ErrInputFull), errors.Is(err, planner.ErrStopped):
			return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
		}
		return err
	}

	s.log.Info("waypoint queued", "id", w.ID, "kind", w.Kind.String(), "x", w.X, "y", w.Y)
	return c.Status(fiber.StatusAccepted).JSON(w)
}

func (s *Server) handleActions(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", actionHistory)
	if limit < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "limit must be non-negative")
	}
	return c.JSON(s.RecentActions(limit))
}

func (s *Server) handleActionsWS(c *websocket.Conn) {
	hub.NewClient(s.actionHub, c).Run()
}

// handleStatusWS sends the current status first, then live updates.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	if msg, err := protocol.NewMessage(protocol.TypeStatus, s.planner.Status()); err == nil {
		if err := c.WriteJSON(msg); err != nil {
			return
		}
	}
	hub.NewClient(s.statusHub, c).Run()
}

// toWaypoint validates an operator request and converts it to world
// coordinates.
func toWaypoint(req protocol.WaypointRequest, vp geom.Viewport) (waypoint.Waypoint, error) {
	kind, err := waypoint.ParseKind(req.Action)
	if err != nil {
		return waypoint.Waypoint{}, err
	}
	if err := waypoint.New(req.X, req.Y, kind).Validate(); err != nil {
		return waypoint.Waypoint{}, err
	}

	switch strings.ToLower(strings.TrimSpace(req.Units)) {
	case "", protocol.UnitsMeters:
		return waypoint.New(req.X, req.Y, kind), nil
	case protocol.UnitsPixels:
		if !vp.Contains(req.X, req.Y) {
			return waypoint.Waypoint{}, fmt.Errorf("pixel (%.0f, %.0f) outside %gx%g window", req.X, req.Y, vp.Width, vp.Height)
		}
		p := vp.ToWorld(req.X, req.Y)
		return waypoint.New(p.X, p.Y, kind), nil
	default:
		return waypoint.Waypoint{}, fmt.Errorf("unknown units %q", req.Units)
	}
}
