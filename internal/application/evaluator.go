package app

import (
	"context"
	"fmt"

	"crack-classifier/internal/domain/entity"
	"crack-classifier/internal/logger"
	"crack-classifier/internal/metrics"
	"crack-classifier/internal/model"
)

// EvaluationService считает метрики на тестовой выборке
type EvaluationService struct {
	features *FeatureService
	iouClass entity.Class
}

// NewEvaluationService создаёт сервис оценки
func NewEvaluationService(features *FeatureService, iouClass entity.Class) *EvaluationService {
	return &EvaluationService{features: features, iouClass: iouClass}
}

// Evaluate возвращает отчёт. Пустая выборка даёт нулевые метрики с флагом Undefined.
func (s *EvaluationService) Evaluate(ctx context.Context, clf *model.Classifier, test []entity.LabeledSample) (*entity.MetricsReport, error) {
	if len(test) == 0 {
		logger.Warn(nil, "test set is empty, metrics are undefined")
		return metrics.Compute(nil, nil, s.iouClass)
	}

	x, y, err := s.features.Pooled(ctx, clf, test)
	if err != nil {
		return nil, fmt.Errorf("test features: %w", err)
	}

	loss, acc, err := clf.Evaluate(x, y)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	probs, err := clf.PredictPooled(x)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}

	report, err := metrics.Compute(entity.Labels(test), metrics.ArgMax(probs), s.iouClass)
	if err != nil {
		return nil, err
	}
	report.Loss = loss
	report.LossAccuracy = acc
	return report, nil
}
