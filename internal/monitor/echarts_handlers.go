package monitor

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/hazard.monitor/internal/hazard"
	"github.com/banshee-data/hazard.monitor/internal/httputil"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const echartsAssetsPrefix = "https://go-echarts.github.io/go-echarts-assets/assets/"

// handleDistancesChart renders a line chart (HTML) of recent per-zone
// minimum distances using go-echarts. This is a debugging-only endpoint
// (no auth) to eyeball approach behaviour without a display attached.
// Query params:
//   - max_points (optional; default 300) to reduce payload size
func (ws *WebServer) handleDistancesChart(w http.ResponseWriter, r *http.Request) {
	if ws.consumer == nil {
		httputil.NotFound(w, "no consumer attached")
		return
	}

	snapshots := ws.consumer.RecentSnapshots()
	if len(snapshots) == 0 {
		httputil.NotFound(w, "no analysis snapshots available")
		return
	}

	maxPoints := 300
	if mp := r.URL.Query().Get("max_points"); mp != "" {
		if v, err := strconv.Atoi(mp); err == nil && v >= 10 && v <= 5000 {
			maxPoints = v
		}
	}
	if len(snapshots) > maxPoints {
		snapshots = snapshots[len(snapshots)-maxPoints:]
	}

	xAxis := make([]string, 0, len(snapshots))
	series := [hazard.ZoneCount][]opts.LineData{}
	for z := 0; z < hazard.ZoneCount; z++ {
		series[z] = make([]opts.LineData, 0, len(snapshots))
	}

	warnCount := 0
	for _, snap := range snapshots {
		xAxis = append(xAxis, snap.Time.Format("15:04:05.000"))
		for z := 0; z < hazard.ZoneCount; z++ {
			zr := snap.Results[z]
			if zr.MinDistanceM > 0 {
				series[z] = append(series[z], opts.LineData{Value: zr.MinDistanceM})
			} else {
				// empty zone; break the line rather than plotting zero
				series[z] = append(series[z], opts.LineData{Value: nil})
			}
			if zr.Status == hazard.StatusWarn {
				warnCount++
			}
		}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Zone Distances", Theme: "dark", Width: "1200px", Height: "600px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Per-Zone Minimum Distance", Subtitle: fmt.Sprintf("points=%d warn-samples=%d rendered=%s", len(snapshots), warnCount, time.Now().UTC().Format(time.RFC3339))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "distance (m)", NameLocation: "middle", NameGap: 40}),
	)

	line.SetXAxis(xAxis)
	for z := 0; z < hazard.ZoneCount; z++ {
		line.AddSeries(hazard.Zone(z).String(), series[z],
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(false), ConnectNulls: opts.Bool(false)}),
		)
	}

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
