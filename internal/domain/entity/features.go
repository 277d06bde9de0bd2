package entity

import "fmt"

// FeatureMap выход бэкбона для одного образца, раскладка HWC
type FeatureMap struct {
	Height   int
	Width    int
	Channels int
	Data     []float32
}

// PooledFeatures поканальные среднее и средний квадрат карты признаков.
// Этого достаточно для batch normalization в режиме обучения с последующим
// global average pooling.
type PooledFeatures struct {
	Mean   []float64
	MeanSq []float64
}

// Pool сворачивает пространственные измерения
func (f *FeatureMap) Pool() (PooledFeatures, error) {
	area := f.Height * f.Width
	if area == 0 || f.Channels == 0 || len(f.Data) != area*f.Channels {
		return PooledFeatures{}, fmt.Errorf("%w: feature map %dx%dx%d with %d values",
			ErrShapeMismatch, f.Height, f.Width, f.Channels, len(f.Data))
	}

	p := PooledFeatures{
		Mean:   make([]float64, f.Channels),
		MeanSq: make([]float64, f.Channels),
	}
	for i := 0; i < area; i++ {
		row := f.Data[i*f.Channels : (i+1)*f.Channels]
		for c, v := range row {
			x := float64(v)
			p.Mean[c] += x
			p.MeanSq[c] += x * x
		}
	}
	inv := 1 / float64(area)
	for c := range p.Mean {
		p.Mean[c] *= inv
		p.MeanSq[c] *= inv
	}
	return p, nil
}
