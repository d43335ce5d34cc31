package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/hazard.monitor/internal/alert"
	"github.com/banshee-data/hazard.monitor/internal/camstream"
	"github.com/banshee-data/hazard.monitor/internal/config"
	"github.com/banshee-data/hazard.monitor/internal/db"
	"github.com/banshee-data/hazard.monitor/internal/hazard"
	"github.com/banshee-data/hazard.monitor/internal/monitor"
	"github.com/banshee-data/hazard.monitor/internal/version"
)

var (
	serverAddr = flag.String("server", "127.0.0.1:9000", "Depth camera frame server address")
	listen     = flag.String("listen", ":8080", "HTTP listen address")
	tuningPath = flag.String("config", "", "Path to a tuning config JSON file (defaults built in when empty)")
	dbFile     = flag.String("db", "hazard_events.db", "Event store path (empty disables event recording)")
	migrations = flag.String("migrations", "internal/db/migrations", "Event store migrations directory")
	audioCmd   = flag.String("audio-cmd", "", "Audio player command (default ffplay; clip path is appended)")
	assetsDir  = flag.String("assets", "assets", "Directory holding left.wav, center.wav, right.wav")
	noAudio    = flag.Bool("no-audio", false, "Evaluate alerts without playing audio")
)

func loadTuning(path string) *config.TuningConfig {
	if path == "" {
		return &config.TuningConfig{}
	}
	cfg, err := config.LoadTuningConfig(path)
	if err != nil {
		log.Fatalf("failed to load tuning config: %v", err)
	}
	return cfg
}

func buildDispatcher(cfg *config.TuningConfig) *alert.Dispatcher {
	dispatchCfg := alert.DispatcherConfigFromTuning(cfg)

	if *noAudio {
		log.Print("audio disabled; alerts will be evaluated but not played")
	} else {
		paths := map[hazard.Zone]string{
			hazard.ZoneLeft:   *assetsDir + "/left.wav",
			hazard.ZoneCenter: *assetsDir + "/center.wav",
			hazard.ZoneRight:  *assetsDir + "/right.wav",
		}
		assets, err := alert.NewAssetLibrary(paths)
		if err != nil {
			log.Fatalf("failed to load audio assets: %v", err)
		}
		dispatchCfg.Assets = assets
		dispatchCfg.Player = alert.NewExecPlayer(*audioCmd)
	}

	return alert.NewDispatcher(dispatchCfg)
}

func main() {
	flag.Parse()

	log.Printf("hazard-monitor %s", version.String())

	if *serverAddr == "" {
		log.Fatal("Frame server address is required")
	}

	tuning := loadTuning(*tuningPath)

	conn, err := net.DialTimeout("tcp", *serverAddr, 5*time.Second)
	if err != nil {
		log.Fatalf("failed to connect to frame server %s: %v", *serverAddr, err)
	}
	defer conn.Close()
	log.Printf("connected to frame server at %s", *serverAddr)

	var eventStore *db.DB
	if *dbFile != "" {
		eventStore, err = db.NewDB(*dbFile)
		if err != nil {
			log.Fatalf("Failed to open event store: %v", err)
		}
		defer eventStore.Close()
		if err := eventStore.MigrateUp(*migrations); err != nil {
			log.Fatalf("Failed to migrate event store: %v", err)
		}
	}

	cache := &camstream.FrameCache{}
	receiver, err := camstream.NewReceiver(camstream.ReceiverConfig{
		Conn:            conn,
		Cache:           cache,
		ReadTimeout:     tuning.GetReceiverTimeout(),
		MaxSectionBytes: tuning.GetMaxFrameBytes(),
	})
	if err != nil {
		log.Fatalf("failed to create receiver: %v", err)
	}

	dispatcher := buildDispatcher(tuning)
	defer dispatcher.Close()

	stats := monitor.NewPipelineStats()

	consumerCfg := monitor.ConsumerConfigFromTuning(tuning)
	consumerCfg.Cache = cache
	consumerCfg.Estimator = hazard.NewTTCEstimator(hazard.EstimatorConfigFromTuning(tuning), nil)
	consumerCfg.Dispatcher = dispatcher
	consumerCfg.Stats = stats
	consumerCfg.SessionID = receiver.SessionID()
	if tuning.GetEventFlush() {
		consumerCfg.Events = eventStore
	}
	consumer, err := monitor.NewConsumer(consumerCfg)
	if err != nil {
		log.Fatalf("failed to create consumer: %v", err)
	}

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// receiver goroutine is owned by the receiver itself; stop it on exit
	if err := receiver.Start(); err != nil {
		log.Fatalf("failed to start receiver: %v", err)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		consumer.Run(ctx)
		log.Print("consumer routine terminated")
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		ws := monitor.NewWebServer(monitor.WebServerConfig{
			Address:   *listen,
			Stats:     stats,
			Consumer:  consumer,
			Cache:     cache,
			Events:    eventStore,
			SessionID: receiver.SessionID(),
		})
		if err := ws.Start(ctx); err != nil {
			log.Printf("web server error: %v", err)
		}
	}()

	<-ctx.Done()
	receiver.Stop()
	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
