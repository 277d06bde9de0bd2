package port

import (
	"context"

	"crack-classifier/internal/domain/entity"
)

// DatasetSource интерфейс поставщика разбитых выборок
type DatasetSource interface {
	Load(ctx context.Context) (*entity.Dataset, error)
}
