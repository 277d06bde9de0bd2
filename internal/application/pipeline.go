package app

import (
	"context"
	"fmt"

	"crack-classifier/internal/domain/entity"
	"crack-classifier/internal/domain/port"
	"crack-classifier/internal/logger"
	"crack-classifier/internal/model"
)

// Pipeline связывает загрузку данных, обучение и оценку одного запуска
type Pipeline struct {
	source    port.DatasetSource
	backbone  port.FeatureExtractor
	modelOpts model.Options
	trainer   *TrainingService
	evaluator *EvaluationService
	renderers []port.ReportRenderer

	run        *entity.Run
	dataset    *entity.Dataset
	classifier *model.Classifier
	history    *entity.TrainingHistory
	report     *entity.MetricsReport
}

// NewPipeline создаёт пайплайн в этапе created
func NewPipeline(
	source port.DatasetSource,
	backbone port.FeatureExtractor,
	modelOpts model.Options,
	trainer *TrainingService,
	evaluator *EvaluationService,
	renderers ...port.ReportRenderer,
) *Pipeline {
	return &Pipeline{
		source:    source,
		backbone:  backbone,
		modelOpts: modelOpts,
		trainer:   trainer,
		evaluator: evaluator,
		renderers: renderers,
		run:       entity.NewRun(),
	}
}

// Init загружает датасет и строит модель
func (p *Pipeline) Init(ctx context.Context) error {
	if !p.run.Is(entity.StageCreated) {
		return fmt.Errorf("%w: init in stage %s", entity.ErrStage, p.run.Stage)
	}

	ds, err := p.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	clf, err := model.Build(p.backbone, p.modelOpts)
	if err != nil {
		return fmt.Errorf("build model: %w", err)
	}

	p.dataset = ds
	p.classifier = clf
	p.run.SetStage(entity.StageInitialized)

	logger.Info(logger.Fields{
		"run_id":           p.run.ID,
		"trainable_params": clf.TrainableParams(),
	}, "model built")
	return nil
}

// Fit обучает модель
func (p *Pipeline) Fit(ctx context.Context) (*entity.TrainingHistory, error) {
	if !p.run.Is(entity.StageInitialized) {
		return nil, fmt.Errorf("%w: fit in stage %s", entity.ErrStage, p.run.Stage)
	}

	history, err := p.trainer.Fit(ctx, p.classifier, p.dataset.Train, p.dataset.Validation)
	if err != nil {
		return history, err
	}

	p.history = history
	p.run.SetStage(entity.StageTrained)
	return history, nil
}

// Evaluate считает метрики и передаёт отчёт всем рендерерам
func (p *Pipeline) Evaluate(ctx context.Context) (*entity.MetricsReport, error) {
	if !p.run.Is(entity.StageTrained) {
		return nil, fmt.Errorf("%w: evaluate in stage %s", entity.ErrStage, p.run.Stage)
	}

	report, err := p.evaluator.Evaluate(ctx, p.classifier, p.dataset.Test)
	if err != nil {
		return nil, err
	}
	report.RunID = p.run.ID

	for _, r := range p.renderers {
		if err := r.Render(ctx, report); err != nil {
			return report, fmt.Errorf("render report: %w", err)
		}
	}

	p.report = report
	p.run.SetStage(entity.StageEvaluated)
	return report, nil
}

// Run текущий запуск
func (p *Pipeline) Run() *entity.Run {
	return p.run
}

// History история обучения, nil до Fit
func (p *Pipeline) History() *entity.TrainingHistory {
	return p.history
}

// Report последний отчёт, nil до Evaluate
func (p *Pipeline) Report() *entity.MetricsReport {
	return p.report
}
