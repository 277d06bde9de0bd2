package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"crack-classifier/internal/domain/entity"
	"crack-classifier/internal/domain/port"
	"crack-classifier/internal/model"
)

// FeatureService прогоняет образцы через замороженный бэкбон и кэширует
// свёрнутые признаки по ID образца.
type FeatureService struct {
	repo    port.FeatureRepository
	workers int
}

// NewFeatureService создаёт сервис признаков
func NewFeatureService(repo port.FeatureRepository, workers int) *FeatureService {
	return &FeatureService{repo: repo, workers: max(1, workers)}
}

// Pooled возвращает признаки и метки выборки в исходном порядке
func (s *FeatureService) Pooled(ctx context.Context, clf *model.Classifier, samples []entity.LabeledSample) ([]entity.PooledFeatures, []entity.OneHot, error) {
	features := make([]entity.PooledFeatures, len(samples))
	labels := make([]entity.OneHot, len(samples))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, sample := range samples {
		labels[i] = sample.Label
		g.Go(func() error {
			f, err := s.pool(gctx, clf, sample)
			if err != nil {
				return fmt.Errorf("sample %s: %w", sample.ID, err)
			}
			features[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return features, labels, nil
}

func (s *FeatureService) pool(ctx context.Context, clf *model.Classifier, sample entity.LabeledSample) (entity.PooledFeatures, error) {
	if sample.ID != "" && s.repo != nil {
		f, ok, err := s.repo.Get(ctx, sample.ID)
		if err != nil {
			return entity.PooledFeatures{}, err
		}
		if ok {
			return f, nil
		}
	}

	f, err := clf.Pool(ctx, sample.Image)
	if err != nil {
		return entity.PooledFeatures{}, err
	}

	if sample.ID != "" && s.repo != nil {
		if err := s.repo.Save(ctx, sample.ID, f); err != nil {
			return entity.PooledFeatures{}, err
		}
	}
	return f, nil
}
