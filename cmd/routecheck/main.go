// Command routecheck checks a route file against the no-fly zones, or follows
// a live planning session's events over Redis.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/redis/go-redis/v9"

	"low-altitude/uavops/internal/airspace"
	"low-altitude/uavops/internal/conflict"
	"low-altitude/uavops/internal/events"
	"low-altitude/uavops/internal/geo"
	"low-altitude/uavops/internal/logging"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	okStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
	badStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	zoneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("routecheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	routeFile := fs.String("route", "", "route JSON file ({name, waypoints: [[lng,lat,alt],...]})")
	zonesFile := fs.String("zones", "", "GeoJSON FeatureCollection of no-fly zones (defaults to the built-in set)")
	follow := fs.String("follow", "", "session id to follow over Redis pub/sub")
	redisAddr := fs.String("redis", "localhost:6379", "Redis address used with -follow")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if err := logging.Init(logging.Options{AppEnv: "production"}); err != nil {
		fmt.Fprintf(stderr, "failed to initialize logger: %v\n", err)
		return 2
	}
	defer logging.Close()

	if *follow != "" {
		return followSession(*redisAddr, *follow, stdout, stderr)
	}
	if *routeFile == "" {
		fs.Usage()
		return 2
	}

	route, err := readRoute(*routeFile)
	if err != nil {
		fmt.Fprintln(stderr, badStyle.Render("error: ")+err.Error())
		return 2
	}

	checker := conflict.NewChecker(airspace.LoadGeoJSONFile(*zonesFile), nil)
	res := checker.Check(route.Waypoints)
	fmt.Fprintln(stdout, render(route, res, checker.Analyze(route.Waypoints)))
	if !res.Valid {
		return 1
	}
	return 0
}

func readRoute(path string) (geo.Route, error) {
	var route geo.Route
	f, err := os.Open(path)
	if err != nil {
		return route, fmt.Errorf("open route: %w", err)
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&route); err != nil {
		return route, fmt.Errorf("decode route: %w", err)
	}
	return route, nil
}

func render(route geo.Route, res conflict.Result, violations []conflict.Violation) string {
	var b strings.Builder
	name := route.Name
	if name == "" {
		name = "(unnamed route)"
	}
	b.WriteString(titleStyle.Render(name))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("%d waypoints, %.0f m",
		len(route.Waypoints), route.Waypoints.Length())))
	b.WriteString("\n\n")

	if res.Valid {
		b.WriteString(okStyle.Render("CLEAR  ") + res.Message)
		return boxStyle.Render(b.String())
	}

	b.WriteString(badStyle.Render("CONFLICT  ") + res.Message)
	for _, v := range violations {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  #%d  %s", v.WaypointIndex+1, zoneStyle.Render(v.ZoneName)))
		if v.Description != "" {
			b.WriteString(helpStyle.Render("  " + v.Description))
		}
	}
	return boxStyle.Render(b.String())
}

func followSession(addr, sessionID string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	fmt.Fprintln(stdout, titleStyle.Render("Following session "+sessionID))
	err := events.Follow(ctx, client, sessionID, func(ev events.Event) {
		payload, _ := json.Marshal(ev.Payload)
		fmt.Fprintf(stdout, "%s %s %s\n",
			helpStyle.Render(ev.At.Format("15:04:05.000")),
			zoneStyle.Render(ev.Name),
			string(payload))
	})
	if err != nil && ctx.Err() == nil {
		fmt.Fprintln(stderr, badStyle.Render("error: ")+err.Error())
		return 2
	}
	return 0
}
