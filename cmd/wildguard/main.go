package main

import (
	"flag"
	"log/slog"
	"net/http"
	"time"

	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/internal/wildguard"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/configutil"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/serviceutil"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/services/dashboard"

	"connectrpc.com/connect"
)

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	scanNow := flag.Bool("scan", false, "Run a scan cycle immediately on start.")
	configPath := flag.String("config", "wildguard.json5", "Path to the configuration file.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	InitTelemetry(ctx, *verbose)

	cfg, err := configutil.ReadConfig[wildguard.Config](*configPath)
	if err != nil {
		serviceutil.Fatal("read config", err)
	}
	if *scanNow {
		cfg.Monitor.RunOnStart = true
	}

	opts := wildguard.Options{}
	if *verbose {
		opts.DumpDir = ".dev/resty/marketplace"
	}
	app, err := wildguard.Build(cfg, opts)
	if err != nil {
		serviceutil.Fatal("init monitor", err)
	}
	defer app.Close()

	otelInterceptor, err := serviceutil.NewConnectOtelInterceptor()
	if err != nil {
		serviceutil.Fatal("init otel interceptor", err)
	}

	mux := http.NewServeMux()
	service := dashboard.NewService(dashboard.Options{
		Store:       app.Store,
		Alerts:      app.Alerts,
		Monitor:     app.Bot,
		Scorer:      app.Analyzer,
		BaseContext: ctx,
		AccessToken: cfg.Dashboard.AccessToken,
	})
	service.Mount(mux, connect.WithInterceptors(otelInterceptor))

	err = app.Bot.Start(ctx)
	if err != nil {
		serviceutil.Fatal("start monitor", err)
	}

	port := cfg.Dashboard.Port
	if port == 0 {
		port = 8000
	}
	go func() {
		err := serviceutil.StartHttpServer(ctx, port, mux)
		if err != nil {
			serviceutil.Fatal("http server", err)
		}
	}()

	slog.InfoContext(ctx, "wildguard started", "platforms", len(app.Scanners), "keywords", len(app.Bot.Keywords()))
	<-ctx.Done()

	// give a running cycle a moment to record its scan run
	deadline := time.Now().Add(10 * time.Second)
	for app.Bot.Status().Scanning && time.Now().Before(deadline) {
		time.Sleep(200 * time.Millisecond)
	}
}
