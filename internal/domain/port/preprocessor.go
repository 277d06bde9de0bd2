package port

import "crack-classifier/internal/domain/entity"

// Preprocessor интерфейс построения карты границ
type Preprocessor interface {
	// Preprocess читает цветное изображение и возвращает карту границ 227×227
	Preprocess(path string) (entity.EdgeMap, error)
}
