package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"crack-classifier/config"
	console "crack-classifier/internal/api"
	app "crack-classifier/internal/application"
	"crack-classifier/internal/container"
	"crack-classifier/internal/domain/entity"
	"crack-classifier/internal/infrastructure/backbone"
	"crack-classifier/internal/infrastructure/dataset"
	"crack-classifier/internal/infrastructure/device"
	"crack-classifier/internal/infrastructure/report"
	"crack-classifier/internal/infrastructure/storage"
	"crack-classifier/internal/infrastructure/vision"
	"crack-classifier/internal/logger"
	"crack-classifier/internal/model"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal(logger.Fields{"error": err.Error()}, "Failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal(logger.Fields{"error": err.Error()}, "Invalid config")
	}

	if _, err := logger.Setup(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile, Env: cfg.AppEnv}); err != nil {
		logger.Fatal(logger.Fields{"error": err.Error()}, "Failed to configure logger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error(logger.Fields{"error": err.Error()}, "Run failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	device.LogHost()

	if err := backbone.InitRuntime(cfg.OnnxLibrary); err != nil {
		return err
	}
	defer backbone.DestroyRuntime()

	// Ускоритель необязателен, без него работаем на CPU
	accelerator, ok := device.NewProbe().Resolve(cfg.AcceleratorDevices)
	if !ok && len(cfg.AcceleratorDevices) > 0 {
		logger.Warn(logger.Fields{"error": entity.ErrDeviceUnavailable.Error()}, "running on CPU")
	}

	client := &http.Client{Timeout: 10 * time.Minute}
	if err := backbone.EnsureWeights(ctx, client, cfg.ModelPath, cfg.ModelURL); err != nil {
		return err
	}

	channels, _ := backbone.ParseChannelStrategy(cfg.InputChannels)
	resnet, err := backbone.NewONNX(backbone.Options{
		ModelPath:   cfg.ModelPath,
		Channels:    channels,
		Accelerator: accelerator,
		Sessions:    max(1, cfg.Workers/2),
	})
	if err != nil {
		return err
	}
	defer resnet.Close()

	source := dataset.NewFolder(cfg.DatasetDir, vision.NewPreprocessor(), dataset.Options{
		Seed:           cfg.Seed,
		ValidationFrac: cfg.ValFraction,
		TestFrac:       cfg.TestFraction,
		Workers:        cfg.Workers,
	})

	modelOpts := model.DefaultOptions()
	modelOpts.LearningRate = cfg.LearningRate
	modelOpts.Momentum = cfg.BNMomentum
	modelOpts.Seed = cfg.Seed

	iouClass, _ := entity.ParseClass(cfg.IoUClass)

	// YAML-отчёт читает историю из пайплайна
	var appContainer *container.Container
	yamlReport := report.NewYAML(filepath.Join(cfg.ReportDir, "report.yaml"), func() *entity.TrainingHistory {
		return appContainer.Pipeline.History()
	})

	appContainer = container.New(
		source,
		resnet,
		storage.NewMemoryFeatureRepository(),
		container.Settings{
			Model:    modelOpts,
			Trainer:  app.TrainerConfig{Epochs: cfg.Epochs, BatchSize: cfg.BatchSize},
			Workers:  cfg.Workers,
			IoUClass: iouClass,
		},
		console.NewRenderer(os.Stdout),
		report.NewFigure(filepath.Join(cfg.ReportDir, "confusion_matrix.png")),
		yamlReport,
	)

	pipeline := appContainer.Pipeline
	logger.Info(logger.Fields{"run_id": pipeline.Run().ID}, "Pipeline is running...")

	if err := pipeline.Init(ctx); err != nil {
		return err
	}
	if _, err := pipeline.Fit(ctx); err != nil {
		return err
	}
	if _, err := pipeline.Evaluate(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn(nil, "interrupted")
		}
		return err
	}
	return nil
}
