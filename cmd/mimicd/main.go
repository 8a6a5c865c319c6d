// Command mimicd runs the identity transfer daemon: queue dispatcher,
// identity catalog, and HTTP API.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"mimic/internal/config"
	"mimic/internal/daemon"
	"mimic/internal/identity"
	"mimic/internal/logging"
	"mimic/internal/media"
	"mimic/internal/pipeline"
	"mimic/internal/preflight"
	"mimic/internal/queue"
	"mimic/internal/services/reenact"
	"mimic/internal/services/voiceconv"
	"mimic/internal/workflow"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	if err := preflight.Summarize(preflight.RunAll(cfg)); err != nil {
		logger.Error("environment verification failed", logging.Error(err))
		os.Exit(1)
	}

	catalog, err := identity.NewCatalog(cfg.Paths.IdentitiesDir)
	if err != nil {
		logger.Error("load identity catalog", logging.Error(err))
		os.Exit(1)
	}

	store, err := queue.Open(cfg, queue.WithValidator(daemon.NewValidator(cfg, catalog)))
	if err != nil {
		logger.Error("open queue store", logging.Error(err))
		os.Exit(1)
	}

	reenactor, err := reenact.New(cfg.Reenactment, logger)
	if err != nil {
		logger.Error("init reenactment adapter", logging.Error(err))
		os.Exit(1)
	}
	voice, err := voiceconv.New(cfg.Voice, logger)
	if err != nil {
		logger.Error("init voice conversion adapter", logging.Error(err))
		os.Exit(1)
	}
	ffmpeg := media.NewFFmpeg(cfg.FFmpeg.Binary, logger)

	runner := pipeline.NewRunner(cfg, catalog, reenactor, voice, ffmpeg, ffmpeg, logger)
	hub := daemon.NewHub(logger)
	manager := workflow.NewManager(cfg, store, runner, logger, hub)

	d, err := daemon.New(cfg, store, catalog, manager, hub, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		os.Exit(1)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("mimicd shutting down")
}
