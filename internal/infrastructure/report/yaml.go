package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"crack-classifier/internal/domain/entity"
	"crack-classifier/internal/domain/port"
)

// YAML сохраняет полный отчёт, при наличии с историей обучения
type YAML struct {
	path    string
	history func() *entity.TrainingHistory
}

var _ port.ReportRenderer = (*YAML)(nil)

type document struct {
	Metrics *entity.MetricsReport   `yaml:"metrics"`
	History *entity.TrainingHistory `yaml:"history,omitempty"`
}

// NewYAML создаёт рендерер в файл path. history может быть nil.
func NewYAML(path string, history func() *entity.TrainingHistory) *YAML {
	return &YAML{path: path, history: history}
}

// Render записывает отчёт
func (y *YAML) Render(ctx context.Context, report *entity.MetricsReport) error {
	doc := document{Metrics: report}
	if y.history != nil {
		doc.History = y.history()
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(y.path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := os.WriteFile(y.path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Load читает сохранённый отчёт
func Load(path string) (*entity.MetricsReport, *entity.TrainingHistory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read report: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parse report: %w", err)
	}
	return doc.Metrics, doc.History, nil
}
