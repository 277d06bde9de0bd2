package model

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"crack-classifier/internal/domain/entity"
)

// Head обучаемая голова поверх замороженного бэкбона:
// BN -> GAP -> Dense(relu) -> BN -> Dense(softmax).
type Head struct {
	channels int
	hidden   int

	bn1 *batchNorm
	fc1 *dense
	bn2 *batchNorm
	fc2 *dense
}

func newHead(channels, hidden int, opts Options, rng *rand.Rand) *Head {
	h := &Head{
		channels: channels,
		hidden:   hidden,
		bn1:      newBatchNorm("batch_normalization", channels, opts.Epsilon, opts.Momentum),
		fc1:      newDense("dense", channels, hidden),
		bn2:      newBatchNorm("batch_normalization_1", hidden, opts.Epsilon, opts.Momentum),
		fc2:      newDense("dense_1", hidden, entity.NumClasses),
	}
	glorotUniform(h.fc1.w, channels, hidden, rng)
	glorotUniform(h.fc2.w, hidden, entity.NumClasses, rng)
	return h
}

func (h *Head) params() []*param {
	return []*param{
		h.bn1.gamma, h.bn1.beta,
		h.fc1.w, h.fc1.b,
		h.bn2.gamma, h.bn2.beta,
		h.fc2.w, h.fc2.b,
	}
}

// trace промежуточные значения прямого прохода в режиме обучения.
type trace struct {
	n int

	mean1, var1 []float64
	x1hat       *mat.Dense // нормализованные средние по каналам, n×C
	z1          *mat.Dense

	a           *mat.Dense // до relu, n×H
	mean2, var2 []float64
	h2hat       *mat.Dense
	z2          *mat.Dense

	probs *mat.Dense // n×K
}

// forwardTrain считает выход со статистиками батча и ничего не изменяет.
// Для первой нормализации статистики по (N, H, W) собираются из
// поканальных средних и средних квадратов каждого образца.
func (h *Head) forwardTrain(batch []entity.PooledFeatures) *trace {
	n := len(batch)
	C, H, K := h.channels, h.hidden, entity.NumClasses
	invN := 1 / float64(n)

	tr := &trace{
		n:     n,
		mean1: make([]float64, C),
		var1:  make([]float64, C),
		x1hat: mat.NewDense(n, C, nil),
		z1:    mat.NewDense(n, C, nil),
		mean2: make([]float64, H),
		var2:  make([]float64, H),
		h2hat: mat.NewDense(n, H, nil),
		z2:    mat.NewDense(n, H, nil),
		probs: mat.NewDense(n, K, nil),
	}

	sq := make([]float64, C)
	for _, f := range batch {
		floats.Add(tr.mean1, f.Mean)
		floats.Add(sq, f.MeanSq)
	}
	floats.Scale(invN, tr.mean1)
	for c := 0; c < C; c++ {
		tr.var1[c] = math.Max(sq[c]*invN-tr.mean1[c]*tr.mean1[c], 0)
	}

	for i, f := range batch {
		xhat := tr.x1hat.RawRowView(i)
		for c := 0; c < C; c++ {
			xhat[c] = (f.Mean[c] - tr.mean1[c]) / math.Sqrt(tr.var1[c]+h.bn1.epsilon)
		}
		h.bn1.affine(tr.z1.RawRowView(i), xhat)
	}

	tr.a = h.fc1.forward(tr.z1)
	act := mat.NewDense(n, H, nil)
	act.Apply(func(_, _ int, v float64) float64 { return math.Max(v, 0) }, tr.a)

	col := make([]float64, n)
	for j := 0; j < H; j++ {
		mat.Col(col, j, act)
		tr.mean2[j] = floats.Sum(col) * invN
		floats.AddConst(-tr.mean2[j], col)
		tr.var2[j] = floats.Dot(col, col) * invN

		floats.Scale(1/math.Sqrt(tr.var2[j]+h.bn2.epsilon), col)
		tr.h2hat.SetCol(j, col)
	}
	for i := 0; i < n; i++ {
		h.bn2.affine(tr.z2.RawRowView(i), tr.h2hat.RawRowView(i))
	}

	logits := h.fc2.forward(tr.z2)
	for i := 0; i < n; i++ {
		softmax(logits.RawRowView(i), tr.probs.RawRowView(i))
	}

	return tr
}

// loss средняя кросс-энтропия и точность батча.
func (h *Head) loss(tr *trace, labels []entity.OneHot) (float64, float64) {
	total, correct := 0.0, 0
	for i, y := range labels {
		p := tr.probs.RawRowView(i)
		total += crossEntropy(p, y[:])
		if argmax(p) == argmax(y[:]) {
			correct++
		}
	}
	return total / float64(tr.n), float64(correct) / float64(tr.n)
}

// backward накапливает градиенты средней кросс-энтропии в param.grad.
func (h *Head) backward(tr *trace, labels []entity.OneHot) {
	n := tr.n
	C, H, K := h.channels, h.hidden, entity.NumClasses
	nf := float64(n)

	// softmax + кросс-энтропия
	dout := mat.NewDense(n, K, nil)
	for i := 0; i < n; i++ {
		row := dout.RawRowView(i)
		floats.SubTo(row, tr.probs.RawRowView(i), labels[i][:])
		floats.Scale(1/nf, row)
	}

	dz2 := h.fc2.backward(tr.z2, dout)

	// batch_normalization_1, статистики зависят от входа
	da := mat.NewDense(n, H, nil)
	d, hhat := make([]float64, n), make([]float64, n)
	for j := 0; j < H; j++ {
		mat.Col(d, j, dz2)
		mat.Col(hhat, j, tr.h2hat)
		h.bn2.gamma.grad[j] += floats.Dot(d, hhat)
		h.bn2.beta.grad[j] += floats.Sum(d)

		floats.Scale(h.bn2.gamma.value[j], d)
		sumD, sumDX := floats.Sum(d), floats.Dot(d, hhat)
		inv := 1 / math.Sqrt(tr.var2[j]+h.bn2.epsilon)
		for i := 0; i < n; i++ {
			if tr.a.At(i, j) <= 0 {
				continue
			}
			da.Set(i, j, inv/nf*(nf*d[i]-sumD-hhat[i]*sumDX))
		}
	}

	dz1 := h.fc1.backward(tr.z1, da)

	// batch_normalization: вход заморожен, градиент нужен только gamma и beta
	for i := 0; i < n; i++ {
		row := dz1.RawRowView(i)
		xhat := tr.x1hat.RawRowView(i)
		for c := 0; c < C; c++ {
			h.bn1.gamma.grad[c] += row[c] * xhat[c]
		}
		floats.Add(h.bn1.beta.grad, row)
	}
}

// commitStatistics обновляет скользящие статистики после шага обучения.
func (h *Head) commitStatistics(tr *trace) {
	h.bn1.updateMoving(tr.mean1, tr.var1)
	h.bn2.updateMoving(tr.mean2, tr.var2)
}

// infer прямой проход в режиме вывода.
func (h *Head) infer(f entity.PooledFeatures) entity.Probabilities {
	z1 := make([]float64, h.channels)
	copy(z1, f.Mean)
	h.bn1.inferVec(z1)

	a := h.fc1.forward(mat.NewDense(1, h.channels, z1)).RawRowView(0)
	for j, v := range a {
		a[j] = math.Max(v, 0)
	}
	h.bn2.inferVec(a)

	logits := h.fc2.forward(mat.NewDense(1, h.hidden, a)).RawRowView(0)

	var p entity.Probabilities
	softmax(logits, p[:])
	return p
}
