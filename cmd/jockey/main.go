// Command jockey runs the inchworm planner as a daemon: operators queue
// waypoints over HTTP and every planned action goes to the websocket
// stream, the optional serial link and the optional journal.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teslashibe/go-spacejockey/internal/config"
	"github.com/teslashibe/go-spacejockey/internal/log"
	"github.com/teslashibe/go-spacejockey/pkg/journal"
	"github.com/teslashibe/go-spacejockey/pkg/planner"
	"github.com/teslashibe/go-spacejockey/pkg/protocol"
	"github.com/teslashibe/go-spacejockey/pkg/robot"
	"github.com/teslashibe/go-spacejockey/pkg/serialsink"
	"github.com/teslashibe/go-spacejockey/pkg/waypoint"
	"github.com/teslashibe/go-spacejockey/pkg/web"
)

func main() {
	configPath := flag.String("config", config.ConfigPath(config.DefaultConfigPath), "Path to JSON config (or set JOCKEY_CONFIG)")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	serialPort := flag.String("serial", "", "Serial device for the foot controller (overrides config)")
	journalPath := flag.String("journal", "", "SQLite journal path (overrides config)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	cfg.ApplyEnv()
	if *addr != "" {
		cfg.HTTPAddr = *addr
	}
	if *serialPort != "" {
		cfg.Serial.Port = *serialPort
	}
	if *journalPath != "" {
		cfg.JournalPath = *journalPath
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log.Init(cfg.LogLevel)

	fmt.Println("🐛 Space Jockey planner")
	fmt.Printf("   HTTP:    %s\n", cfg.HTTPAddr)
	fmt.Printf("   Tick:    %s\n", time.Duration(cfg.Planner.Tick))
	fmt.Printf("   Serial:  %s\n", orNone(cfg.Serial.Port))
	fmt.Printf("   Journal: %s\n", orNone(cfg.JournalPath))
	fmt.Println()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		log.Error("jockey exited", "error", err)
		os.Exit(1)
	}
	fmt.Println("👋 Goodbye!")
}

func run(ctx context.Context, cfg config.Service) error {
	// srv is created after the planner; the sink resolves it lazily.
	var srv *web.Server
	sinks := robot.MultiSink{robot.SinkFunc(func(a protocol.PlannerAction) error {
		return srv.Dispatch(a)
	})}
	var observers []planner.Option

	if cfg.Serial.Port != "" {
		link, err := serialsink.Open(cfg.Serial.Port, cfg.Serial.Options, log.With("component", "serial"))
		if err != nil {
			return err
		}
		defer link.Close()
		sinks = append(sinks, link)
		fmt.Printf("✅ Serial link open on %s\n", cfg.Serial.Port)
	}

	if cfg.JournalPath != "" {
		note, _ := json.Marshal(cfg.Planner)
		j, err := journal.Open(cfg.JournalPath, string(note), log.With("component", "journal"))
		if err != nil {
			return err
		}
		defer j.Close()
		sinks = append(sinks, j)
		observers = append(observers, planner.WithArrivalObserver(j))
		fmt.Printf("📓 Journal run %s\n", j.RunID())
	}

	var fwd arrivalForwarder
	opts := append([]planner.Option{
		planner.WithLogger(log.With("component", "planner")),
		planner.WithArrivalObserver(&fwd),
	}, observers...)
	p := planner.New(cfg.Planner, sinks, opts...)
	runner := planner.NewRunner(p, time.Duration(cfg.Planner.Tick))

	srv = web.NewServer(cfg.HTTPAddr, runner, cfg.Planner, log.With("component", "web"))
	fwd.srv = srv
	runner.OnTick = func(_ planner.TickResult, st planner.Status) {
		srv.PublishStatus(st)
	}

	ctx, stop := context.WithCancel(ctx)
	defer stop()

	errc := make(chan error, 2)
	go func() { errc <- runner.Run(ctx) }()
	go func() { errc <- srv.Start(ctx) }()

	fmt.Println("✅ Planner running - queue waypoints with POST /api/waypoints")

	// whichever side returns first takes the other down with it
	var errs []error
	for i := 0; i < 2; i++ {
		if err := <-errc; err != nil && !errors.Is(err, context.Canceled) {
			errs = append(errs, err)
		}
		stop()
	}
	return errors.Join(errs...)
}

// arrivalForwarder passes arrivals to the web server once it exists.
type arrivalForwarder struct {
	srv *web.Server
}

func (f *arrivalForwarder) WaypointReached(w waypoint.Waypoint, ticks uint64) {
	if f.srv != nil {
		f.srv.WaypointReached(w, ticks)
	}
}

// loadConfig reads path, falling back to defaults when the default path
// does not exist.
func loadConfig(path string) (config.Service, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && path == config.DefaultConfigPath {
		fmt.Printf("⚠️  %s not found, using built-in defaults\n", path)
		return config.Default(), nil
	}
	return config.Load(path)
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
