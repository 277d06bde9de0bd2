package vision

import "crack-classifier/internal/domain/port"

// Параметры пайплайна входят в идентичность карты границ.
const (
	cannyLow       = 50
	cannyHigh      = 150
	blurKernelSize = 5
	dilateKernel   = 3
)

// requantize переводит значения в float32 [0, 1] и обратно в uint8.
// Обратное преобразование отбрасывает дробную часть.
func requantize(pix []uint8) {
	for i, v := range pix {
		f := float32(v) / 255
		pix[i] = uint8(f * 255)
	}
}

// Проверка реализации интерфейса
var _ port.Preprocessor = (*Preprocessor)(nil)
