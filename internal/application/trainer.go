package app

import (
	"context"
	"fmt"

	"crack-classifier/internal/domain/entity"
	"crack-classifier/internal/logger"
	"crack-classifier/internal/model"
)

// TrainerConfig параметры обучения
type TrainerConfig struct {
	Epochs    int
	BatchSize int
}

// DefaultTrainerConfig 10 эпох, батч 32
func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{Epochs: 10, BatchSize: 32}
}

// TrainingService обучает голову классификатора
type TrainingService struct {
	features *FeatureService
	cfg      TrainerConfig
}

// NewTrainingService создаёт сервис обучения
func NewTrainingService(features *FeatureService, cfg TrainerConfig) *TrainingService {
	return &TrainingService{features: features, cfg: cfg}
}

// Fit обучает модель на train и после каждой эпохи считает потерю и
// точность на validation. Порядок батчей фиксирован.
func (s *TrainingService) Fit(ctx context.Context, clf *model.Classifier, train, val []entity.LabeledSample) (*entity.TrainingHistory, error) {
	if s.cfg.Epochs <= 0 || s.cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("invalid trainer config: epochs %d, batch size %d", s.cfg.Epochs, s.cfg.BatchSize)
	}
	if len(train) == 0 {
		return nil, fmt.Errorf("%w: training set", entity.ErrEmptyPartition)
	}
	if len(val) == 0 {
		return nil, fmt.Errorf("%w: validation set", entity.ErrEmptyPartition)
	}

	trainX, trainY, err := s.features.Pooled(ctx, clf, train)
	if err != nil {
		return nil, fmt.Errorf("train features: %w", err)
	}
	valX, valY, err := s.features.Pooled(ctx, clf, val)
	if err != nil {
		return nil, fmt.Errorf("validation features: %w", err)
	}

	history := &entity.TrainingHistory{}
	for epoch := 1; epoch <= s.cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return history, err
		}

		var lossSum, accSum float64
		for start := 0; start < len(trainX); start += s.cfg.BatchSize {
			end := min(start+s.cfg.BatchSize, len(trainX))
			res, err := clf.TrainBatch(trainX[start:end], trainY[start:end])
			if err != nil {
				return history, fmt.Errorf("epoch %d batch %d: %w", epoch, start/s.cfg.BatchSize, err)
			}
			n := float64(end - start)
			lossSum += res.Loss * n
			accSum += res.Accuracy * n
		}

		valLoss, valAcc, err := clf.Evaluate(valX, valY)
		if err != nil {
			return history, fmt.Errorf("epoch %d validation: %w", epoch, err)
		}

		stats := entity.EpochStats{
			Epoch:              epoch,
			Loss:               lossSum / float64(len(trainX)),
			Accuracy:           accSum / float64(len(trainX)),
			ValidationLoss:     valLoss,
			ValidationAccuracy: valAcc,
		}
		history.Epochs = append(history.Epochs, stats)

		logger.Infof("Epoch %d/%d - loss: %.4f - accuracy: %.4f - val_loss: %.4f - val_accuracy: %.4f",
			epoch, s.cfg.Epochs, stats.Loss, stats.Accuracy, stats.ValidationLoss, stats.ValidationAccuracy)
	}

	return history, nil
}
