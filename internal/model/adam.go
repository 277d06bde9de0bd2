package model

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Adam оптимизатор с параметрами Keras по умолчанию.
type Adam struct {
	LearningRate float64
	Beta1        float64
	Beta2        float64
	Epsilon      float64

	step int
}

// NewAdam создаёт оптимизатор с заданным шагом.
func NewAdam(learningRate float64) *Adam {
	return &Adam{
		LearningRate: learningRate,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-7,
	}
}

// Step применяет накопленные градиенты и обнуляет их.
func (a *Adam) Step(params []*param) {
	a.step++
	t := float64(a.step)
	lr := a.LearningRate * math.Sqrt(1-math.Pow(a.Beta2, t)) / (1 - math.Pow(a.Beta1, t))

	for _, p := range params {
		sq := make([]float64, len(p.grad))
		floats.MulTo(sq, p.grad, p.grad)

		floats.Scale(a.Beta1, p.m)
		floats.AddScaled(p.m, 1-a.Beta1, p.grad)
		floats.Scale(a.Beta2, p.v)
		floats.AddScaled(p.v, 1-a.Beta2, sq)

		for i := range p.value {
			p.value[i] -= lr * p.m[i] / (math.Sqrt(p.v[i]) + a.Epsilon)
		}
		p.zeroGrad()
	}
}

// Steps возвращает число выполненных шагов.
func (a *Adam) Steps() int {
	return a.step
}
