package main

import (
	"context"
	"flag"
	"log/slog"
	"time"

	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/configutil"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/restyutil"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/serviceutil"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/telemetry"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/services/forest"
)

type ProviderConfig struct {
	Endpoint       string `json:"endpoint"`
	ApiKey         string `json:"api_key"`
	TileSizeM      int    `json:"tile_size_m"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

type Config struct {
	Port       int                `json:"port"`
	Provider   ProviderConfig     `json:"provider"`
	AOIs       []forest.AOI       `json:"aois"`
	Thresholds *forest.Thresholds `json:"thresholds"`
}

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	configPath := flag.String("config", "forest.json5", "Path to the configuration file.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	telemetry.InitSlog(*verbose)
	tel, err := telemetry.SetupFromEnv(ctx, "forest-api")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	defer tel.Shutdown(context.Background())

	cfg, err := configutil.ReadConfig[Config](*configPath)
	if err != nil {
		serviceutil.Fatal("read config", err)
	}

	providerOpts := forest.HostedProviderOptions{
		Endpoint:  cfg.Provider.Endpoint,
		ApiKey:    cfg.Provider.ApiKey,
		TileSizeM: cfg.Provider.TileSizeM,
		Timeout:   time.Duration(cfg.Provider.TimeoutSeconds) * time.Second,
	}
	if *verbose {
		output, err := restyutil.NewFilesystemOutput(".dev/resty/forest")
		if err != nil {
			serviceutil.Fatal("create resty output", err)
		}
		providerOpts.Dump = output
	}
	provider, err := forest.NewHostedProvider(providerOpts)
	if err != nil {
		serviceutil.Fatal("init provider", err)
	}

	opts := forest.Options{
		Provider: provider,
		AOIs:     cfg.AOIs,
	}
	if cfg.Thresholds != nil {
		opts.Thresholds = *cfg.Thresholds
	}
	detector, err := forest.NewDetector(opts)
	if err != nil {
		serviceutil.Fatal("init detector", err)
	}

	port := cfg.Port
	if port == 0 {
		port = 8050
	}
	slog.InfoContext(ctx, "forest api starting", "aois", len(cfg.AOIs))
	err = serviceutil.StartHttpServer(ctx, port, detector.Handler())
	if err != nil {
		serviceutil.Fatal("http server", err)
	}
}
