// Package journal persists dispatched actions and waypoint arrivals in
// SQLite so runs can be replayed and audited.
//
// Each Open starts a new run identified by a UUID. A Journal is an
// ActionSink and an ArrivalObserver, so it can be wired straight into
// the planner.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/teslashibe/go-spacejockey/pkg/protocol"
	"github.com/teslashibe/go-spacejockey/pkg/waypoint"
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("journal closed")

// Run summarises one planner session.
type Run struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Actions   int       `json:"actions"`
	Arrivals  int       `json:"arrivals"`
}

// Arrival is a recorded waypoint arrival.
type Arrival struct {
	WaypointID string        `json:"waypoint_id"`
	Kind       waypoint.Kind `json:"kind"`
	X          float64       `json:"x"`
	Y          float64       `json:"y"`
	Ticks      uint64        `json:"ticks"`
	At         time.Time     `json:"at"`
}

// Journal writes one run to a SQLite database.
type Journal struct {
	db     *sql.DB
	runID  string
	log    *slog.Logger
	closed atomic.Bool
}

// Open opens (or creates) the database at path, migrates it and starts a
// new run. note is stored with the run, typically the planner config.
func Open(path, note string, log *slog.Logger) (*Journal, error) {
	if log == nil {
		log = slog.Default()
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	if err := migrateUp(db, log); err != nil {
		db.Close()
		return nil, err
	}

	j := &Journal{db: db, runID: uuid.NewString(), log: log}
	if _, err := db.Exec(`INSERT INTO runs (run_id, started_at, config) VALUES (?, ?, ?)`,
		j.runID, time.Now().UnixMilli(), note); err != nil {
		db.Close()
		return nil, fmt.Errorf("start run: %w", err)
	}

	log.Info("journal run started", "run_id", j.runID, "path", path)
	return j, nil
}

// RunID returns the id of the run this journal is writing.
func (j *Journal) RunID() string {
	return j.runID
}

// Dispatch records a.
func (j *Journal) Dispatch(a protocol.PlannerAction) error {
	if j.closed.Load() {
		return ErrClosed
	}
	_, err := j.db.Exec(`INSERT INTO actions
		(run_id, major_id, node_name, action_type, theta, x, y, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		j.runID, int64(a.MajorID), a.NodeName, string(a.ActionType), a.Theta, a.X, a.Y, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("record action %d: %w", a.MajorID, err)
	}
	return nil
}

// WaypointReached records an arrival. Failures are logged.
func (j *Journal) WaypointReached(w waypoint.Waypoint, ticks uint64) {
	if j.closed.Load() {
		return
	}
	_, err := j.db.Exec(`INSERT INTO arrivals
		(run_id, waypoint_id, kind, x, y, ticks, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		j.runID, w.ID, w.Kind.String(), w.X, w.Y, int64(ticks), time.Now().UnixMilli())
	if err != nil {
		j.log.Warn("record arrival", "waypoint", w.ID, "error", err)
	}
}

// Actions returns up to limit actions of runID in dispatch order.
// limit <= 0 means no limit.
func (j *Journal) Actions(ctx context.Context, runID string, limit int) ([]protocol.PlannerAction, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.QueryContext(ctx, `SELECT major_id, node_name, action_type, theta, x, y
		FROM actions WHERE run_id = ? ORDER BY major_id LIMIT ?`, runID, limit)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	var out []protocol.PlannerAction
	for rows.Next() {
		var (
			a          protocol.PlannerAction
			id         int64
			actionType string
		)
		if err := rows.Scan(&id, &a.NodeName, &actionType, &a.Theta, &a.X, &a.Y); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		a.MajorID = uint64(id)
		a.ActionType = protocol.ActionType(actionType)
		out = append(out, a)
	}
	return out, rows.Err()
}

// Arrivals returns the arrivals of runID in the order they happened.
func (j *Journal) Arrivals(ctx context.Context, runID string) ([]Arrival, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT waypoint_id, kind, x, y, ticks, recorded_at
		FROM arrivals WHERE run_id = ? ORDER BY ticks, rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("query arrivals: %w", err)
	}
	defer rows.Close()

	var out []Arrival
	for rows.Next() {
		var (
			a     Arrival
			kind  string
			ticks int64
			at    int64
		)
		if err := rows.Scan(&a.WaypointID, &kind, &a.X, &a.Y, &ticks, &at); err != nil {
			return nil, fmt.Errorf("scan arrival: %w", err)
		}
		if a.Kind, err = waypoint.ParseKind(kind); err != nil {
			return nil, err
		}
		a.Ticks = uint64(ticks)
		a.At = time.UnixMilli(at)
		out = append(out, a)
	}
	return out, rows.Err()
}

// Runs lists every run in the database, newest first.
func (j *Journal) Runs(ctx context.Context) ([]Run, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT r.run_id, r.started_at,
			(SELECT COUNT(*) FROM actions a WHERE a.run_id = r.run_id),
			(SELECT COUNT(*) FROM arrivals v WHERE v.run_id = r.run_id)
		FROM runs r ORDER BY r.started_at DESC, r.rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r       Run
			started int64
		)
		if err := rows.Scan(&r.ID, &started, &r.Actions, &r.Arrivals); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt = time.UnixMilli(started)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the database. It is safe to call more than once.
func (j *Journal) Close() error {
	if j.closed.Swap(true) {
		return nil
	}
	return j.db.Close()
}
