package backbone

import (
	"fmt"
	"strings"

	"crack-classifier/internal/domain/entity"
)

// ChannelStrategy как одноканальная карта границ подаётся в сеть
type ChannelStrategy string

const (
	// Replicate копирует канал три раза для стандартной ResNet-50
	Replicate ChannelStrategy = "replicate"
	// SingleChannel граф экспортирован с одноканальным входом
	SingleChannel ChannelStrategy = "single"
)

// ParseChannelStrategy разбирает значение из конфигурации
func ParseChannelStrategy(s string) (ChannelStrategy, error) {
	switch ChannelStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case Replicate, "":
		return Replicate, nil
	case SingleChannel:
		return SingleChannel, nil
	}
	return "", fmt.Errorf("unknown channel strategy %q", s)
}

// Channels число входных каналов
func (s ChannelStrategy) Channels() int {
	if s == SingleChannel {
		return 1
	}
	return 3
}

// Размеры по умолчанию для динамических осей
const (
	defaultInputSide  = entity.EdgeMapSize
	defaultOutputSide = 8 // ResNet-50 без головы на входе 227
)

type order int

const (
	nhwc order = iota
	nchw
)

func (o order) String() string {
	if o == nchw {
		return "NCHW"
	}
	return "NHWC"
}

// tensorLayout форма одного образца в тензоре
type tensorLayout struct {
	order    order
	height   int
	width    int
	channels int
}

func (l tensorLayout) size() int {
	return l.height * l.width * l.channels
}

// shape форма тензора с единичным батчем
func (l tensorLayout) shape() []int64 {
	if l.order == nchw {
		return []int64{1, int64(l.channels), int64(l.height), int64(l.width)}
	}
	return []int64{1, int64(l.height), int64(l.width), int64(l.channels)}
}

// detectInputLayout определяет раскладку входа. Ось каналов та, где 1 или 3.
func detectInputLayout(dims []int64) (tensorLayout, error) {
	if len(dims) != 4 {
		return tensorLayout{}, fmt.Errorf("%w: input rank %d", entity.ErrShapeMismatch, len(dims))
	}

	l := tensorLayout{order: nhwc}
	if isChannelDim(dims[1]) && !isChannelDim(dims[3]) {
		l.order = nchw
	}

	h, w, c := split(dims, l.order)
	l.height = orDefault(h, defaultInputSide)
	l.width = orDefault(w, defaultInputSide)
	l.channels = int(c)
	if c <= 0 {
		return tensorLayout{}, fmt.Errorf("%w: dynamic channel axis in %v", entity.ErrShapeMismatch, dims)
	}
	return l, nil
}

// detectOutputLayout раскладка выхода совпадает с раскладкой входа
func detectOutputLayout(dims []int64, in order) (tensorLayout, error) {
	if len(dims) != 4 {
		return tensorLayout{}, fmt.Errorf("%w: output rank %d, expected a spatial feature map", entity.ErrShapeMismatch, len(dims))
	}

	h, w, c := split(dims, in)
	if c <= 0 {
		return tensorLayout{}, fmt.Errorf("%w: dynamic channel axis in %v", entity.ErrShapeMismatch, dims)
	}
	return tensorLayout{
		order:    in,
		height:   orDefault(h, defaultOutputSide),
		width:    orDefault(w, defaultOutputSide),
		channels: int(c),
	}, nil
}

func split(dims []int64, o order) (h, w, c int64) {
	if o == nchw {
		return dims[2], dims[3], dims[1]
	}
	return dims[1], dims[2], dims[3]
}

func isChannelDim(d int64) bool {
	return d == 1 || d == 3
}

func orDefault(d int64, def int) int {
	if d <= 0 {
		return def
	}
	return int(d)
}

// packInput пишет карту границ в буфер тензора, значения 0..255
func packInput(img entity.EdgeMap, l tensorLayout, dst []float32) error {
	if img.Width != l.width || img.Height != l.height {
		return fmt.Errorf("%w: edge map %dx%d, network expects %dx%d",
			entity.ErrShapeMismatch, img.Width, img.Height, l.width, l.height)
	}
	if len(dst) != l.size() {
		return fmt.Errorf("%w: tensor buffer %d, expected %d", entity.ErrShapeMismatch, len(dst), l.size())
	}

	plane := l.height * l.width
	for i, v := range img.Pix {
		f := float32(v)
		for c := 0; c < l.channels; c++ {
			if l.order == nchw {
				dst[c*plane+i] = f
			} else {
				dst[i*l.channels+c] = f
			}
		}
	}
	return nil
}

// unpackOutput переводит выход в раскладку HWC
func unpackOutput(src []float32, l tensorLayout) (*entity.FeatureMap, error) {
	if len(src) != l.size() {
		return nil, fmt.Errorf("%w: output %d values, expected %d", entity.ErrShapeMismatch, len(src), l.size())
	}

	fm := &entity.FeatureMap{
		Height:   l.height,
		Width:    l.width,
		Channels: l.channels,
		Data:     make([]float32, len(src)),
	}
	if l.order == nhwc {
		copy(fm.Data, src)
		return fm, nil
	}

	plane := l.height * l.width
	for c := 0; c < l.channels; c++ {
		for i := 0; i < plane; i++ {
			fm.Data[i*l.channels+c] = src[c*plane+i]
		}
	}
	return fm, nil
}
