package port

import (
	"context"

	"crack-classifier/internal/domain/entity"
)

// FeatureExtractor интерфейс замороженного бэкбона
type FeatureExtractor interface {
	// Extract возвращает пространственную карту признаков для одной карты границ
	Extract(ctx context.Context, img entity.EdgeMap) (*entity.FeatureMap, error)

	// OutputShape возвращает высоту, ширину и число каналов карты признаков
	OutputShape() (height, width, channels int)
}
