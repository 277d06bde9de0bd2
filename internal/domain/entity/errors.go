package entity

import "errors"

var (
	// ErrMissingImage изображение не найдено или не декодируется
	ErrMissingImage = errors.New("missing image")
	// ErrDeviceUnavailable ускоритель недоступен, работаем на устройстве по умолчанию
	ErrDeviceUnavailable = errors.New("device unavailable")
	// ErrShapeMismatch тензор не совпадает с ожидаемой формой (N, 227, 227, 1)
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrEmptyPartition в выборке нет ни одного образца
	ErrEmptyPartition = errors.New("empty partition")
	// ErrStage этап пайплайна вызван не по порядку
	ErrStage = errors.New("pipeline stage out of order")
)
