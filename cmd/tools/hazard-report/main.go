// Command hazard-report summarises recorded hazard events offline.
//
// It reads the sqlite event store written by the monitor, prints per-zone
// summary statistics, and writes a report directory containing an HTML
// chart of warning counts and a PNG time series of minimum distances.
//
// Usage:
//
//	go run ./cmd/tools/hazard-report [flags]
//
// Flags:
//
//	-db      Event store path (default: hazard_events.db)
//	-since   Look-back window in hours (default: 24)
//	-limit   Maximum events to load (default: 10000)
//	-out     Report output directory (default: report)
//	-units   Distance units for the text summary (default: m)
package main

import (
	"bytes"
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/hazard.monitor/internal/db"
	"github.com/banshee-data/hazard.monitor/internal/units"
)

var zoneOrder = []string{"left", "center", "right"}

var zoneColors = map[string]color.RGBA{
	"left":   {R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	"center": {R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	"right":  {R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
}

// zoneSummary aggregates one zone's events for the text report.
type zoneSummary struct {
	count      int
	dispatched int
	distances  []float64
	ttcMin     float64
	ttcSeen    bool
}

func summarise(events []db.HazardEvent) map[string]*zoneSummary {
	summaries := make(map[string]*zoneSummary)
	for _, zone := range zoneOrder {
		summaries[zone] = &zoneSummary{}
	}
	for _, e := range events {
		s, ok := summaries[e.Zone]
		if !ok {
			s = &zoneSummary{}
			summaries[e.Zone] = s
		}
		s.count++
		if e.Dispatched {
			s.dispatched++
		}
		s.distances = append(s.distances, e.MinDistanceM)
		if e.TTCSeconds.Valid && (!s.ttcSeen || e.TTCSeconds.Float64 < s.ttcMin) {
			s.ttcMin = e.TTCSeconds.Float64
			s.ttcSeen = true
		}
	}
	return summaries
}

func printSummary(summaries map[string]*zoneSummary, window time.Duration, displayUnits string) {
	fmt.Printf("Hazard event summary (last %v)\n\n", window)
	fmt.Printf("%-8s %8s %10s %10s %10s %10s\n", "zone", "events", "dispatched",
		"mean("+displayUnits+")", "stddev("+displayUnits+")", "minTTC(s)")
	for _, zone := range zoneOrder {
		s := summaries[zone]
		mean, stddev := 0.0, 0.0
		if len(s.distances) > 0 {
			mean = units.ConvertDistance(stat.Mean(s.distances, nil), displayUnits)
			stddev = units.ConvertDistance(stat.StdDev(s.distances, nil), displayUnits)
		}
		ttc := "-"
		if s.ttcSeen {
			ttc = fmt.Sprintf("%.2f", s.ttcMin)
		}
		fmt.Printf("%-8s %8d %10d %10.2f %10.2f %10s\n", zone, s.count, s.dispatched, mean, stddev, ttc)
	}
	fmt.Println()
}

// writeCountsChart renders a go-echarts bar chart of per-zone event counts.
func writeCountsChart(path string, summaries map[string]*zoneSummary) error {
	counts := make([]opts.BarData, 0, len(zoneOrder))
	dispatched := make([]opts.BarData, 0, len(zoneOrder))
	for _, zone := range zoneOrder {
		counts = append(counts, opts.BarData{Value: summaries[zone].count})
		dispatched = append(dispatched, opts.BarData{Value: summaries[zone].dispatched})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Hazard Events", Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Hazard Events by Zone", Subtitle: time.Now().Format(time.RFC3339)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(zoneOrder).
		AddSeries("warn events", counts).
		AddSeries("dispatched", dispatched)

	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		return fmt.Errorf("rendering counts chart: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// writeDistancePlot renders a PNG time series of minimum distance per zone.
func writeDistancePlot(path string, events []db.HazardEvent) error {
	if len(events) == 0 {
		return nil
	}

	p := plot.New()
	p.Title.Text = "Minimum Distance at Warning"
	p.X.Label.Text = "Seconds since first event"
	p.Y.Label.Text = "Distance (m)"

	t0 := events[0].Timestamp // EventsSince returns oldest first

	for _, zone := range zoneOrder {
		pts := make(plotter.XYs, 0)
		for _, e := range events {
			if e.Zone != zone {
				continue
			}
			pts = append(pts, plotter.XY{
				X: e.Timestamp.Sub(t0).Seconds(),
				Y: e.MinDistanceM,
			})
		}
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("building %s line: %w", zone, err)
		}
		line.Width = vg.Points(1)
		line.Color = zoneColors[zone]
		p.Add(line)
		p.Legend.Add(zone, line)
	}

	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("saving distance plot: %w", err)
	}
	return nil
}

func main() {
	dbPath := flag.String("db", "hazard_events.db", "Event store path")
	sinceHours := flag.Float64("since", 24, "Look-back window in hours")
	limit := flag.Int("limit", 10000, "Maximum events to load")
	outDir := flag.String("out", "report", "Report output directory")
	displayUnits := flag.String("units", units.Meters, "Distance units for the text summary ("+units.GetValidUnitsString()+")")
	flag.Parse()

	if !units.IsValid(*displayUnits) {
		log.Fatalf("Invalid units %q; valid values: %s", *displayUnits, units.GetValidUnitsString())
	}

	store, err := db.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open event store: %v", err)
	}
	defer store.Close()

	window := time.Duration(*sinceHours * float64(time.Hour))
	events, err := store.EventsSince(time.Now().Add(-window), *limit)
	if err != nil {
		log.Fatalf("Failed to load events: %v", err)
	}
	if len(events) == 0 {
		log.Printf("No events in the last %v; nothing to report", window)
		return
	}
	log.Printf("Loaded %d events from %s", len(events), *dbPath)

	summaries := summarise(events)
	printSummary(summaries, window, *displayUnits)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("Failed to create output dir: %v", err)
	}
	htmlPath := filepath.Join(*outDir, "events.html")
	if err := writeCountsChart(htmlPath, summaries); err != nil {
		log.Fatalf("Failed to write counts chart: %v", err)
	}
	pngPath := filepath.Join(*outDir, "distances.png")
	if err := writeDistancePlot(pngPath, events); err != nil {
		log.Fatalf("Failed to write distance plot: %v", err)
	}
	log.Printf("Report written to %s and %s", htmlPath, pngPath)
}
