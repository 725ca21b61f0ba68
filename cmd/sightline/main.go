// Command sightline runs a visibility analysis pass over a scene snapshot
// file: it computes the visibility polygon of every sensor, prints range
// statistics, and can export a PNG plot, an HTML chart, record results to
// sqlite, or serve the debug monitor.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/sightline-data/sightline/internal/config"
	"github.com/sightline-data/sightline/internal/monitor"
	"github.com/sightline-data/sightline/internal/scene"
	"github.com/sightline-data/sightline/internal/version"
	"github.com/sightline-data/sightline/internal/visibility"
)

func main() {
	var (
		scenePath  = flag.String("scene", "", "path to the scene snapshot JSON (required)")
		configPath = flag.String("config", "", "optional tuning config JSON")
		plotDir    = flag.String("plot-dir", "", "write a PNG visibility plot per sensor into this directory")
		chartDir   = flag.String("chart-dir", "", "write an HTML chart per sensor into this directory")
		dbPath     = flag.String("db", "", "record computed results into this sqlite file")
		serveAddr  = flag.String("serve", "", "serve the debug monitor on this address (e.g. :8080) until interrupted")
		showVer    = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVer {
		fmt.Println(version.String())
		return
	}

	if *scenePath == "" {
		flag.Usage()
		log.Fatal("missing required -scene")
	}

	tuning := config.EmptyTuningConfig()
	if *configPath != "" {
		loaded, err := config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("load tuning config: %v", err)
		}
		tuning = loaded
	}

	sc, err := scene.LoadFile(*scenePath)
	if err != nil {
		log.Fatalf("load scene: %v", err)
	}
	snap := sc.Snapshot()
	log.Printf("scene %s: %d sensors, %d obstacles, bounds %.0fx%.0f",
		filepath.Base(*scenePath), len(snap.Sensors), len(snap.Obstacles),
		snap.Bounds.Width, snap.Bounds.Height)

	sched := visibility.NewScheduler(visibility.SchedulerConfig{
		Source: sc,
		Params: tuning.EngineParams(),
		Delay:  tuning.GetDebounceDelay(),
	})
	sc.SetOnChange(sched.RequestRecalculation)
	sched.RecalculateAll()

	if err := report(sched, snap, *plotDir, *chartDir, *dbPath); err != nil {
		log.Fatal(err)
	}

	if *serveAddr != "" {
		serveMonitor(sched, *serveAddr)
	}
}

func report(sched *visibility.Scheduler, snap scene.Snapshot, plotDir, chartDir, dbPath string) error {
	var store *visibility.ResultStore
	if dbPath != "" {
		var err error
		store, err = visibility.OpenResultStore(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
	}
	for _, dir := range []string{plotDir, chartDir} {
		if dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}
	}

	results := sched.Results()
	ids := make([]string, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		r := results[id]
		s := monitor.Summarize(r)
		fmt.Printf("sensor %s: %d vertices, range [%.1f, %.1f], mean %.1f, capped %.0f%%, clear %.0f%%\n",
			id, s.VertexCount, s.MinDistance, s.MaxDistance, s.Mean,
			s.CappedFraction*100, s.ClearFraction*100)

		if plotDir != "" {
			path := filepath.Join(plotDir, fmt.Sprintf("visibility_%s.png", id))
			if err := monitor.PolygonPlot(r, snap, path); err != nil {
				return fmt.Errorf("plot sensor %s: %w", id, err)
			}
			log.Printf("wrote %s", path)
		}
		if chartDir != "" {
			path := filepath.Join(chartDir, fmt.Sprintf("visibility_%s.html", id))
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create chart file: %w", err)
			}
			if err := monitor.RenderChart(f, r); err != nil {
				f.Close()
				return fmt.Errorf("chart sensor %s: %w", id, err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			log.Printf("wrote %s", path)
		}
		if store != nil {
			resultID, err := store.InsertResult(r, time.Time{})
			if err != nil {
				return fmt.Errorf("record sensor %s: %w", id, err)
			}
			log.Printf("recorded result %s for sensor %s", resultID, id)
		}
	}
	return nil
}

func serveMonitor(sched *visibility.Scheduler, addr string) {
	ws := monitor.NewWebServer(monitor.WebServerConfig{
		Address:  addr,
		Provider: sched,
	})
	ws.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ws.Stop(ctx); err != nil {
		log.Printf("monitor shutdown: %v", err)
	}
}
