// Command jockey-sim runs a list of waypoints through the planner without
// hardware and prints every action it would send.
//
//	jockey-sim -waypoints "0.5,0,MOVE;0.5,0.8,VIEW" -plot trace.png
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/teslashibe/go-spacejockey/internal/config"
	"github.com/teslashibe/go-spacejockey/internal/log"
	"github.com/teslashibe/go-spacejockey/pkg/journal"
	"github.com/teslashibe/go-spacejockey/pkg/planner"
	"github.com/teslashibe/go-spacejockey/pkg/protocol"
	"github.com/teslashibe/go-spacejockey/pkg/robot"
	"github.com/teslashibe/go-spacejockey/pkg/sim"
	"github.com/teslashibe/go-spacejockey/pkg/waypoint"
)

func main() {
	configPath := flag.String("config", "", "Path to JSON config (defaults to built-in constants)")
	list := flag.String("waypoints", "0.5,0,MOVE", `Waypoints as "x,y,KIND;x,y,KIND" in meters`)
	maxTicks := flag.Int("max-ticks", 5000, "Give up after this many ticks")
	plotPath := flag.String("plot", "", "Write a trajectory plot (.png, .svg or .pdf)")
	journalPath := flag.String("journal", "", "Record the run into this SQLite journal")
	csv := flag.Bool("csv", false, "Print actions as CSV lines instead of text")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := "warn"
	if *debug {
		level = "debug"
	}
	log.InitWriter(level, os.Stderr)

	if err := run(*configPath, *list, *maxTicks, *plotPath, *journalPath, *csv); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, list string, maxTicks int, plotPath, journalPath string, csv bool) error {
	cfg := config.DefaultPlanner()
	if configPath != "" {
		svc, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = svc.Planner
	}

	wps, err := waypoint.ParseList(list)
	if err != nil {
		return err
	}

	var sink robot.ActionSink = robot.Discard
	var opts []planner.Option
	opts = append(opts, planner.WithLogger(log.With("component", "planner")))
	if journalPath != "" {
		j, err := journal.Open(journalPath, "jockey-sim", log.With("component", "journal"))
		if err != nil {
			return err
		}
		defer j.Close()
		sink = j
		opts = append(opts, planner.WithArrivalObserver(j))
		fmt.Printf("📓 Journal run %s\n", j.RunID())
	}

	p := planner.New(cfg, sink, opts...)
	for _, w := range wps {
		if err := p.Push(w); err != nil {
			return err
		}
	}

	tr, runErr := sim.Run(p, maxTicks)
	for _, step := range tr.Steps {
		switch {
		case step.Action != nil && csv:
			fmt.Println(protocol.EncodeActionCSV(*step.Action))
		case step.Action != nil:
			fmt.Printf("%5d  %s\n", step.Tick, step.Action)
		case step.Reached != nil && !csv:
			fmt.Printf("%5d  reached %s\n", step.Tick, step.Reached)
		}
	}

	final := tr.Final()
	if !csv {
		fmt.Println()
		fmt.Printf("🏁 %d ticks, %d actions, %d/%d waypoints reached\n",
			len(tr.Steps), len(tr.Actions()), len(tr.Reached()), len(wps))
		fmt.Printf("   Final: %s\n", final)
	}

	if plotPath != "" && len(tr.Steps) > 0 {
		if err := tr.Render(plotPath, wps); err != nil {
			return errors.Join(runErr, err)
		}
		if !csv {
			fmt.Printf("📈 Plot written to %s\n", plotPath)
		}
	}
	return runErr
}
