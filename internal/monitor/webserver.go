package monitor

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/hazard.monitor/internal/camstream"
	"github.com/banshee-data/hazard.monitor/internal/db"
	"github.com/banshee-data/hazard.monitor/internal/hazard"
	"github.com/banshee-data/hazard.monitor/internal/httputil"
	"github.com/banshee-data/hazard.monitor/internal/version"
)

// WebServer handles the HTTP interface for monitoring the hazard pipeline.
// It provides endpoints for health checks, real-time zone status, recent
// events, and debug charts.
type WebServer struct {
	address   string
	stats     *PipelineStats
	consumer  *Consumer
	cache     *camstream.FrameCache
	events    *db.DB
	sessionID string
	server    *http.Server
}

// WebServerConfig contains configuration options for the web server.
type WebServerConfig struct {
	Address   string
	Stats     *PipelineStats
	Consumer  *Consumer
	Cache     *camstream.FrameCache
	Events    *db.DB
	SessionID string
}

// NewWebServer creates a new web server with the provided configuration.
func NewWebServer(config WebServerConfig) *WebServer {
	ws := &WebServer{
		address:   config.Address,
		stats:     config.Stats,
		consumer:  config.Consumer,
		cache:     config.Cache,
		events:    config.Events,
		sessionID: config.SessionID,
	}

	ws.server = &http.Server{
		Addr:    ws.address,
		Handler: ws.setupRoutes(),
	}

	return ws
}

// Start begins the HTTP server in a goroutine and handles graceful shutdown
// when ctx is cancelled.
func (ws *WebServer) Start(ctx context.Context) error {
	go func() {
		log.Printf("Starting HTTP server on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := ws.server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}

	log.Printf("HTTP server routine stopped")
	return nil
}

// setupRoutes configures the HTTP routes and handlers.
func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", ws.handleHealth)
	mux.HandleFunc("/api/status", ws.handleStatus)
	mux.HandleFunc("/api/events", ws.handleEvents)
	mux.HandleFunc("/debug/distances", ws.handleDistancesChart)

	return mux
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "ok", "service": "hazard-monitor", "version": "%s", "timestamp": "%s"}`,
		version.Version, time.Now().UTC().Format(time.RFC3339))
}

// zoneStatusJSON is the wire shape of one zone in /api/status.
type zoneStatusJSON struct {
	Zone         string   `json:"zone"`
	Status       string   `json:"status"`
	MinDistanceM float64  `json:"min_distance_m"`
	TTCSeconds   *float64 `json:"ttc_seconds,omitempty"`
}

// handleStatus returns the most recent analysis pass as JSON, plus the
// pipeline throughput snapshot when stats logging has run at least once.
func (ws *WebServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	resp := map[string]interface{}{
		"session_id": ws.sessionID,
	}
	if ws.cache != nil {
		resp["frames_received"] = ws.cache.FrameCount()
	}
	if ws.stats != nil {
		resp["uptime_seconds"] = ws.stats.GetUptime().Seconds()
		resp["warnings_total"] = ws.stats.TotalWarnings()
		if snap := ws.stats.GetLatestSnapshot(); snap != nil {
			resp["frames_per_sec"] = snap.FramesPerSec
			resp["passes_per_sec"] = snap.PassesPerSec
		}
	}

	if ws.consumer != nil {
		if latest := ws.consumer.Latest(); latest != nil {
			zones := make([]zoneStatusJSON, 0, hazard.ZoneCount)
			for _, zr := range latest.Results {
				zj := zoneStatusJSON{
					Zone:         zr.Zone.String(),
					Status:       string(zr.Status),
					MinDistanceM: zr.MinDistanceM,
				}
				if zr.TTCValid {
					ttc := zr.TTCSeconds
					zj.TTCSeconds = &ttc
				}
				zones = append(zones, zj)
			}
			resp["frame_id"] = latest.FrameID
			resp["analyzed_at"] = latest.Time.UTC().Format(time.RFC3339Nano)
			resp["zones"] = zones
		}
	}

	httputil.WriteJSONOK(w, resp)
}

// handleEvents returns recent hazard events from the event store as JSON.
// Query params:
//
//	since (optional, unix seconds; default one hour ago)
//	limit (optional, default 100, max 1000)
func (ws *WebServer) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if ws.events == nil {
		httputil.ServiceUnavailable(w, "event store not configured")
		return
	}

	since := time.Now().Add(-time.Hour)
	if s := r.URL.Query().Get("since"); s != "" {
		parsed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			httputil.BadRequest(w, "invalid 'since' parameter")
			return
		}
		since = time.Unix(parsed, 0)
	}
	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}

	events, err := ws.events.EventsSince(since, limit)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("get events: %v", err))
		return
	}

	type eventJSON struct {
		EventID      string   `json:"event_id"`
		SessionID    string   `json:"session_id"`
		Zone         string   `json:"zone"`
		Status       string   `json:"status"`
		MinDistanceM float64  `json:"min_distance_m"`
		TTCSeconds   *float64 `json:"ttc_seconds,omitempty"`
		Dispatched   bool     `json:"dispatched"`
		Timestamp    string   `json:"timestamp"`
	}
	out := make([]eventJSON, 0, len(events))
	for _, e := range events {
		ej := eventJSON{
			EventID:      e.EventID,
			SessionID:    e.SessionID,
			Zone:         e.Zone,
			Status:       e.Status,
			MinDistanceM: e.MinDistanceM,
			Dispatched:   e.Dispatched,
			Timestamp:    e.Timestamp.UTC().Format(time.RFC3339Nano),
		}
		if e.TTCSeconds.Valid {
			ttc := e.TTCSeconds.Float64
			ej.TTCSeconds = &ttc
		}
		out = append(out, ej)
	}

	httputil.WriteJSONOK(w, out)
}
