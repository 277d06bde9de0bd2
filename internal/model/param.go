package model

import (
	"math"
	"math/rand"
)

// param обучаемый тензор вместе с градиентом и моментами Adam.
// Матричные представления слоёв ссылаются на value и grad без копирования.
type param struct {
	name  string
	value []float64
	grad  []float64
	m     []float64
	v     []float64
}

func newParam(name string, size int, fill float64) *param {
	p := &param{
		name:  name,
		value: make([]float64, size),
		grad:  make([]float64, size),
		m:     make([]float64, size),
		v:     make([]float64, size),
	}
	if fill != 0 {
		for i := range p.value {
			p.value[i] = fill
		}
	}
	return p
}

// glorotUniform инициализирует ядро плотного слоя как Keras по умолчанию.
func glorotUniform(p *param, fanIn, fanOut int, rng *rand.Rand) {
	limit := math.Sqrt(6 / float64(fanIn+fanOut))
	for i := range p.value {
		p.value[i] = (rng.Float64()*2 - 1) * limit
	}
}

func (p *param) zeroGrad() {
	clear(p.grad)
}
