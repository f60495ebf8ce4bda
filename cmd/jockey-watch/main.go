// Command jockey-watch tails a running jockey's action stream. It can
// also queue waypoints and print the planner status.
//
//	jockey-watch -add "0.5,0;0.5,0.8,VIEW"
//	jockey-watch -status
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-spacejockey/internal/httpc"
	"github.com/teslashibe/go-spacejockey/pkg/protocol"
	"github.com/teslashibe/go-spacejockey/pkg/waypoint"
)

func main() {
	addr := flag.String("addr", "localhost:8088", "jockey HTTP address")
	stream := flag.String("stream", "actions", "Stream to follow: actions or status")
	csv := flag.Bool("csv", false, "Print actions as CSV lines")
	add := flag.String("add", "", `Queue waypoints "x,y[,KIND];..." before watching`)
	units := flag.String("units", protocol.UnitsMeters, "Units for -add: m or px")
	status := flag.Bool("status", false, "Print the planner status and exit")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *status || *add != "" {
		api, err := httpc.New(*addr)
		if err != nil {
			fatal(err)
		}
		if *add != "" {
			if err := queue(ctx, api, *add, *units); err != nil {
				fatal(err)
			}
		}
		if *status {
			if err := printStatus(ctx, api, os.Stdout); err != nil {
				fatal(err)
			}
			return
		}
	}

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws/" + *stream}
	fmt.Fprintf(os.Stderr, "🔌 Connecting to %s\n", u.String())

	if err := watch(ctx, u.String(), os.Stdout, *csv); err != nil && ctx.Err() == nil {
		fatal(err)
	}
	fmt.Fprintln(os.Stderr, "👋 Bye")
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "❌ %v\n", err)
	os.Exit(1)
}

// queue sends every waypoint in list to the planner.
func queue(ctx context.Context, api *httpc.Client, list, units string) error {
	wps, err := waypoint.ParseList(list)
	if err != nil {
		return err
	}
	for _, w := range wps {
		got, err := api.AddWaypoint(ctx, protocol.WaypointRequest{
			X:      w.X,
			Y:      w.Y,
			Action: w.Kind.String(),
			Units:  units,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "📍 Queued %s (%s)\n", got, got.ID)
	}
	return nil
}

func printStatus(ctx context.Context, api *httpc.Client, out io.Writer) error {
	st, err := api.Status(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "State:    %s\n", st.State)
	fmt.Fprintf(out, "Ticks:    %d (%d actions, %d reached, %d sink errors)\n", st.Ticks, st.Emitted, st.Reached, st.SinkErrors)
	fmt.Fprintf(out, "Current:  %s\n", st.Current)
	fmt.Fprintf(out, "Pending:  %d\n", len(st.Pending))
	for _, w := range st.Pending {
		fmt.Fprintf(out, "          %s\n", w)
	}
	if st.LastAction != nil {
		fmt.Fprintf(out, "Last:     %s\n", st.LastAction)
	}
	return nil
}

// watch prints every message from the websocket at wsURL until ctx ends
// or the server goes away.
func watch(ctx context.Context, wsURL string, out io.Writer, csv bool) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		line, err := format(data, csv)
		if err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  %v\n", err)
			continue
		}
		fmt.Fprintln(out, line)
	}
}

// format renders one envelope for the terminal.
func format(data []byte, csv bool) (string, error) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		return "", err
	}
	ts := time.UnixMilli(msg.Timestamp).Format("15:04:05.000")

	switch msg.Type {
	case protocol.TypeAction:
		var a protocol.PlannerAction
		if err := msg.ParseData(&a); err != nil {
			return "", fmt.Errorf("bad action: %w", err)
		}
		if csv {
			return protocol.EncodeActionCSV(a), nil
		}
		return fmt.Sprintf("%s  %s", ts, a), nil
	case protocol.TypeReached:
		var r protocol.ReachedData
		if err := msg.ParseData(&r); err != nil {
			return "", fmt.Errorf("bad arrival: %w", err)
		}
		return fmt.Sprintf("%s  🎯 reached %s (%.3f, %.3f) at tick %d", ts, r.Action, r.X, r.Y, r.Ticks), nil
	default:
		return fmt.Sprintf("%s  %s %s", ts, msg.Type, msg.Data), nil
	}
}
