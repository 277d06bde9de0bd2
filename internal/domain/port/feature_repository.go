package port

import (
	"context"

	"crack-classifier/internal/domain/entity"
)

// FeatureRepository интерфейс хранилища свёрнутых признаков
type FeatureRepository interface {
	// Get возвращает признаки образца, ok=false если их ещё нет
	Get(ctx context.Context, sampleID string) (features entity.PooledFeatures, ok bool, err error)

	// Save сохраняет признаки образца
	Save(ctx context.Context, sampleID string, features entity.PooledFeatures) error
}
