// Command iomon-server is a reference monitoring server.
//
// It hosts a demo address space (simulated plant signals and optional
// host measurements), runs the data-acquisition engine over it, and
// exposes Prometheus metrics. Items can be declared in a config file or
// managed live through the interactive console.
//
// Usage:
//
//	iomon-server [flags]
//
// Flags:
//
//	-config string     Configuration file path (YAML)
//	-name string       Server name for advertising (default "iomon")
//	-listen string     Metrics listen address (default ":9464")
//	-log-level string  Log level: debug, info, warn, error (default "info")
//	-event-log string  Acquisition event log path (.ilog, empty disables)
//	-advertise         Advertise the server via mDNS
//	-interactive       Start the interactive console
//
// Examples:
//
//	# Run with the built-in simulated plant and an event log
//	iomon-server -event-log plant.ilog
//
//	# Run from a config file with the console attached
//	iomon-server -config /etc/iomon/server.yaml -interactive
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iomon-project/iomon-go/cmd/iomon-server/interactive"
	"github.com/iomon-project/iomon-go/pkg/discovery"
	"github.com/iomon-project/iomon-go/pkg/log"
	"github.com/iomon-project/iomon-go/pkg/monitor"
	"github.com/iomon-project/iomon-go/pkg/version"
)

var (
	config      Config
	configFile  string
	consoleMode bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "Configuration file path (YAML)")
	flag.StringVar(&config.Name, "name", "iomon", "Server name for advertising")
	flag.StringVar(&config.Listen, "listen", ":9464", "Metrics listen address")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&config.EventLog, "event-log", "", "Acquisition event log path (.ilog)")
	flag.BoolVar(&config.Advertise, "advertise", false, "Advertise the server via mDNS")
	flag.BoolVar(&config.Simulate, "simulate", true, "Enable the simulated plant signals")
	flag.BoolVar(&config.Host, "host", true, "Enable host measurement targets")
	flag.BoolVar(&consoleMode, "interactive", false, "Start the interactive console")
}

func main() {
	flag.Parse()

	if configFile != "" {
		if err := loadConfigFile(configFile, &config); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	if config.PushPrefix == "" {
		config.PushPrefix = monitor.DefaultPushPrefix
	}
	if err := validateConfig(&config); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(config.LogLevel)
	logger.Info("iomon reference server", "version", version.Current, "name", config.Name)

	// Event log: slog always, plus the CBOR file when configured.
	eventLoggers := []log.Logger{log.NewSlogAdapter(logger)}
	if config.EventLog != "" {
		fileLogger, err := log.NewFileLogger(config.EventLog)
		if err != nil {
			logger.Error("failed to open event log", "path", config.EventLog, "error", err)
			os.Exit(1)
		}
		defer fileLogger.Close()
		eventLoggers = append(eventLoggers, fileLogger)
		logger.Info("event log enabled", "path", config.EventLog)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := monitor.NewMetrics(registry)

	space := NewSpace()
	if config.Simulate {
		addSimulatedNodes(space)
	}
	if config.Host {
		addHostNodes(space)
	}

	engine, err := monitor.NewEngine(monitor.Config{
		Resolver:   space,
		PushPrefix: config.PushPrefix,
		Logger:     log.NewMultiLogger(eventLoggers...),
		Metrics:    metrics,
	})
	if err != nil {
		logger.Error("failed to create engine", "error", err)
		os.Exit(1)
	}
	space.SetEngine(engine)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	engine.Startup(ctx)

	logger.Info("engine started", "id", engine.ID(), "pushPrefix", config.PushPrefix)

	// Items declared in the config file.
	for _, ic := range config.Items {
		item, err := space.CreateItem(ic.Node, ic.Interval(), ic.Queue, !ic.Disabled)
		if err != nil {
			logger.Warn("failed to create configured item", "node", ic.Node, "error", err)
			continue
		}
		logger.Info("item created", "id", item.ID(), "node", item.NodeID(), "interval", item.Interval())
	}

	if config.Simulate {
		go runSimulation(ctx, space, logger)
	}
	if config.Host {
		go runHostCollector(ctx, space, logger)
	}

	httpServer := startMetricsServer(config.Listen, registry, logger)

	var advertiser *discovery.MDNSAdvertiser
	if config.Advertise {
		advertiser = startAdvertising(engine, logger)
	}

	if consoleMode {
		console, err := interactive.New(space, engine, logger)
		if err != nil {
			logger.Error("failed to start console", "error", err)
			os.Exit(1)
		}
		go console.Run(ctx, cancel)
	}

	// Wait for shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("received signal", "signal", sig.String())
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	cancel()

	if advertiser != nil {
		advertiser.Shutdown()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("metrics server shutdown", "error", err)
	}

	engine.Shutdown()
	logger.Info("goodbye")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func startMetricsServer(listen string, registry *prometheus.Registry, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	server := &http.Server{Addr: listen, Handler: mux}
	go func() {
		logger.Info("metrics server listening", "addr", listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	return server
}

func startAdvertising(engine *monitor.Engine, logger *slog.Logger) *discovery.MDNSAdvertiser {
	advertiser := discovery.NewMDNSAdvertiser(discovery.AdvertiserConfig{
		Interface: config.Interface,
	})

	sampled, pushed := engine.ItemCount()
	info := &discovery.ServiceInfo{
		Name:      config.Name,
		EngineID:  engine.ID(),
		Version:   version.Current,
		ItemCount: sampled + pushed,
		Port:      listenPort(config.Listen),
	}
	if err := advertiser.Advertise(info); err != nil {
		logger.Warn("mDNS advertising failed", "error", err)
		return nil
	}
	logger.Info("advertising via mDNS", "name", config.Name, "service", discovery.ServiceType)
	return advertiser
}

func listenPort(listen string) uint16 {
	for i := len(listen) - 1; i >= 0; i-- {
		if listen[i] == ':' {
			var port int
			if _, err := fmt.Sscanf(listen[i+1:], "%d", &port); err == nil && port > 0 && port <= 65535 {
				return uint16(port)
			}
			break
		}
	}
	return 0
}
