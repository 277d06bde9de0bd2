package model

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// batchNorm нормализация по батчу с обучаемыми gamma и beta.
type batchNorm struct {
	gamma      *param
	beta       *param
	movingMean []float64
	movingVar  []float64
	epsilon    float64
	momentum   float64
}

func newBatchNorm(name string, size int, epsilon, momentum float64) *batchNorm {
	bn := &batchNorm{
		gamma:      newParam(name+"/gamma", size, 1),
		beta:       newParam(name+"/beta", size, 0),
		movingMean: make([]float64, size),
		movingVar:  make([]float64, size),
		epsilon:    epsilon,
		momentum:   momentum,
	}
	for i := range bn.movingVar {
		bn.movingVar[i] = 1
	}
	return bn
}

// updateMoving сдвигает скользящие статистики к статистикам батча.
func (b *batchNorm) updateMoving(mean, variance []float64) {
	floats.Scale(b.momentum, b.movingMean)
	floats.AddScaled(b.movingMean, 1-b.momentum, mean)
	floats.Scale(b.momentum, b.movingVar)
	floats.AddScaled(b.movingVar, 1-b.momentum, variance)
}

// affine пишет в dst gamma*xhat + beta.
func (b *batchNorm) affine(dst, xhat []float64) {
	floats.MulTo(dst, xhat, b.gamma.value)
	floats.Add(dst, b.beta.value)
}

// inferVec нормализует вектор по скользящим статистикам.
func (b *batchNorm) inferVec(x []float64) {
	for i, v := range x {
		x[i] = (v - b.movingMean[i]) / math.Sqrt(b.movingVar[i]+b.epsilon)
	}
	b.affine(x, x)
}

// dense полносвязный слой, ядро хранится как (in, out).
type dense struct {
	w   *param
	b   *param
	in  int
	out int

	kernel     *mat.Dense // над w.value
	kernelGrad *mat.Dense // над w.grad
}

func newDense(name string, in, out int) *dense {
	d := &dense{
		w:   newParam(name+"/kernel", in*out, 0),
		b:   newParam(name+"/bias", out, 0),
		in:  in,
		out: out,
	}
	d.kernel = mat.NewDense(in, out, d.w.value)
	d.kernelGrad = mat.NewDense(in, out, d.w.grad)
	return d
}

// forward считает X·W + b для батча n×in.
func (d *dense) forward(x mat.Matrix) *mat.Dense {
	n, _ := x.Dims()
	out := mat.NewDense(n, d.out, nil)
	out.Mul(x, d.kernel)
	for i := 0; i < n; i++ {
		floats.Add(out.RawRowView(i), d.b.value)
	}
	return out
}

// backward накапливает градиенты по ядру и смещению и возвращает dL/dX.
func (d *dense) backward(x, dout *mat.Dense) *mat.Dense {
	var dw mat.Dense
	dw.Mul(x.T(), dout)
	d.kernelGrad.Add(d.kernelGrad, &dw)

	n, _ := dout.Dims()
	for i := 0; i < n; i++ {
		floats.Add(d.b.grad, dout.RawRowView(i))
	}

	dx := mat.NewDense(n, d.in, nil)
	dx.Mul(dout, d.kernel.T())
	return dx
}
