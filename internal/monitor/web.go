package monitor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/sightline-data/sightline/internal/visibility"
)

// ResultProvider is the read-only slice of the scheduler the monitor needs.
// *visibility.Scheduler implements it.
type ResultProvider interface {
	Result(sensorID string) (*visibility.Result, bool)
	Results() map[string]*visibility.Result
	Enabled() bool
}

// WebServer serves debugging endpoints over the result cache: a JSON stats
// summary and an echarts scatter of the visibility fan. Debug-only, no auth.
type WebServer struct {
	address  string
	provider ResultProvider
	logger   *log.Logger
	server   *http.Server
}

// WebServerConfig configures the monitor server.
type WebServerConfig struct {
	Address  string
	Provider ResultProvider
	// Logger is optional; if nil, uses log.Default()
	Logger *log.Logger
}

// NewWebServer creates the monitor server with its routes installed.
func NewWebServer(cfg WebServerConfig) *WebServer {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	ws := &WebServer{
		address:  cfg.Address,
		provider: cfg.Provider,
		logger:   logger,
	}
	ws.server = &http.Server{
		Addr:    cfg.Address,
		Handler: ws.setupRoutes(),
	}
	return ws
}

func (ws *WebServer) setupRoutes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", ws.handleHealth)
	mux.HandleFunc("/debug/visibility/stats", ws.handleStats)
	mux.HandleFunc("/debug/visibility/chart", ws.handleChart)
	return mux
}

// Start begins serving in a goroutine. Shutdown with Stop.
func (ws *WebServer) Start() {
	go func() {
		ws.logger.Printf("monitor: listening on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			ws.logger.Printf("monitor: server error: %v", err)
		}
	}()
}

// Stop gracefully shuts the server down.
func (ws *WebServer) Stop(ctx context.Context) error {
	return ws.server.Shutdown(ctx)
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok","enabled":%t,"time":%q}`,
		ws.provider.Enabled(), time.Now().Format(time.RFC3339))
}

// handleStats returns the range statistics of every cached result.
func (ws *WebServer) handleStats(w http.ResponseWriter, r *http.Request) {
	results := ws.provider.Results()
	out := make(map[string]RangeStats, len(results))
	for id, res := range results {
		out[id] = Summarize(res)
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		ws.logger.Printf("monitor: encode stats: %v", err)
	}
}

// handleChart renders the visibility fan of one sensor as an echarts scatter.
// Query params: sensor_id (required).
func (ws *WebServer) handleChart(w http.ResponseWriter, r *http.Request) {
	sensorID := r.URL.Query().Get("sensor_id")
	if sensorID == "" {
		writeJSONError(w, http.StatusBadRequest, "sensor_id is required")
		return
	}
	result, ok := ws.provider.Result(sensorID)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "no result for sensor")
		return
	}

	var buf bytes.Buffer
	if err := RenderChart(&buf, result); err != nil {
		writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// RenderChart writes an HTML scatter of the result's vertices, colored by
// hit distance. Shared by the HTTP handler and the CLI's file export.
func RenderChart(w io.Writer, result *visibility.Result) error {
	data := make([]opts.ScatterData, 0, len(result.Vertices)+1)
	data = append(data, opts.ScatterData{Value: []interface{}{result.Origin.X, -result.Origin.Y, 0.0}})
	maxAbs := 1.0
	for _, v := range result.Vertices {
		data = append(data, opts.ScatterData{Value: []interface{}{v.Point.X, -v.Point.Y, v.Distance}})
		if x := abs(v.Point.X - result.Origin.X); x > maxAbs {
			maxAbs = x
		}
		if y := abs(v.Point.Y - result.Origin.Y); y > maxAbs {
			maxAbs = y
		}
	}
	pad := maxAbs * 1.1

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Visibility Fan",
			Theme:     "dark",
			Width:     "900px",
			Height:    "900px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Visibility Fan",
			Subtitle: fmt.Sprintf("sensor=%s vertices=%d max=%.0f", result.SensorID, len(result.Vertices), result.MaxDistance),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: result.Origin.X - pad, Max: result.Origin.X + pad, Name: "X"}),
		charts.WithYAxisOpts(opts.YAxis{Min: -result.Origin.Y - pad, Max: -result.Origin.Y + pad, Name: "Y"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(result.MaxDistance),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#31688e", "#35b779", "#fde725"}},
		}),
	)
	scatter.AddSeries("vertices", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	return scatter.Render(w)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
