package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"crack-classifier/internal/domain/entity"
	"crack-classifier/internal/infrastructure/backbone"
)

type Config struct {
	DatasetDir    string
	ModelPath     string
	ModelURL      string
	OnnxLibrary   string
	InputChannels string

	Epochs       int
	BatchSize    int
	LearningRate float64
	BNMomentum   float64
	Seed         int64

	ValFraction  float64
	TestFraction float64
	Workers      int

	AcceleratorDevices []int
	IoUClass           string
	ReportDir          string

	LogLevel string
	LogFile  string
	AppEnv   string
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	var err error
	cfg := &Config{
		DatasetDir:    getEnv("DATASET_DIR", "dataset"),
		ModelPath:     getEnv("BACKBONE_MODEL_PATH", filepath.Join("models", "resnet50_notop.onnx")),
		ModelURL:      os.Getenv("BACKBONE_MODEL_URL"),
		OnnxLibrary:   os.Getenv("ONNXRUNTIME_LIB"),
		InputChannels: getEnv("INPUT_CHANNELS", string(backbone.Replicate)),
		IoUClass:      getEnv("IOU_CLASS", entity.ClassPositive.String()),
		ReportDir:     getEnv("REPORT_DIR", "output"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFile:       os.Getenv("LOG_FILE"),
		AppEnv:        os.Getenv("APP_ENV"),
	}

	if cfg.Epochs, err = getInt("EPOCHS", 10); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = getInt("BATCH_SIZE", 32); err != nil {
		return nil, err
	}
	if cfg.Workers, err = getInt("WORKERS", runtime.NumCPU()); err != nil {
		return nil, err
	}
	seed, err := getInt("SEED", 42)
	if err != nil {
		return nil, err
	}
	cfg.Seed = int64(seed)

	if cfg.LearningRate, err = getFloat("LEARNING_RATE", 0.001); err != nil {
		return nil, err
	}
	if cfg.BNMomentum, err = getFloat("BN_MOMENTUM", 0.99); err != nil {
		return nil, err
	}
	if cfg.ValFraction, err = getFloat("VAL_FRACTION", 0.15); err != nil {
		return nil, err
	}
	if cfg.TestFraction, err = getFloat("TEST_FRACTION", 0.15); err != nil {
		return nil, err
	}
	if cfg.AcceleratorDevices, err = getInts("ACCELERATOR_DEVICES", []int{0}); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	if c.Epochs <= 0 {
		return fmt.Errorf("EPOCHS must be positive, got %d", c.Epochs)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("BATCH_SIZE must be positive, got %d", c.BatchSize)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("LEARNING_RATE must be positive, got %g", c.LearningRate)
	}
	if c.BNMomentum < 0 || c.BNMomentum >= 1 {
		return fmt.Errorf("BN_MOMENTUM must be in [0,1), got %g", c.BNMomentum)
	}
	if c.ValFraction < 0 || c.ValFraction >= 1 || c.TestFraction < 0 || c.TestFraction >= 1 {
		return fmt.Errorf("split fractions must be in [0,1), got %g and %g", c.ValFraction, c.TestFraction)
	}
	if c.ValFraction+c.TestFraction >= 1 {
		return fmt.Errorf("VAL_FRACTION + TEST_FRACTION must be below 1, got %g", c.ValFraction+c.TestFraction)
	}
	if _, err := backbone.ParseChannelStrategy(c.InputChannels); err != nil {
		return fmt.Errorf("INPUT_CHANNELS: %w", err)
	}
	if _, err := entity.ParseClass(c.IoUClass); err != nil {
		return fmt.Errorf("IOU_CLASS: %w", err)
	}
	return nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

// getInts список через запятую. Переменная, заданная пустой строкой, даёт пустой список.
func getInts(key string, def []int) ([]int, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def, nil
	}

	var out []int
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out = append(out, n)
	}
	return out, nil
}
