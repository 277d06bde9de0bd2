package storage

import (
	"context"
	"sync"

	"crack-classifier/internal/domain/entity"
	"crack-classifier/internal/domain/port"
)

// MemoryFeatureRepository in-memory хранилище свёрнутых признаков.
// Бэкбон заморожен, поэтому признаки образца считаются один раз за запуск.
type MemoryFeatureRepository struct {
	mu       sync.RWMutex
	features map[string]entity.PooledFeatures
}

// NewMemoryFeatureRepository создаёт новое in-memory хранилище
func NewMemoryFeatureRepository() *MemoryFeatureRepository {
	return &MemoryFeatureRepository{
		features: make(map[string]entity.PooledFeatures),
	}
}

// Get возвращает признаки образца по ID
func (r *MemoryFeatureRepository) Get(ctx context.Context, sampleID string) (entity.PooledFeatures, bool, error) {
	r.mu.RLock()
	f, exists := r.features[sampleID]
	r.mu.RUnlock()

	return f, exists, nil
}

// Save сохраняет признаки образца
func (r *MemoryFeatureRepository) Save(ctx context.Context, sampleID string, features entity.PooledFeatures) error {
	r.mu.Lock()
	r.features[sampleID] = features
	r.mu.Unlock()

	return nil
}

// Len возвращает количество сохранённых образцов
func (r *MemoryFeatureRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.features)
}

// Проверка реализации интерфейса
var _ port.FeatureRepository = (*MemoryFeatureRepository)(nil)
