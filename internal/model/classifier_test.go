package model

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"crack-classifier/internal/domain/entity"
)

// intensityBackbone отдаёт карту признаков, пропорциональную средней яркости.
type intensityBackbone struct {
	channels int
}

func (b *intensityBackbone) OutputShape() (int, int, int) { return 2, 2, b.channels }

func (b *intensityBackbone) Extract(ctx context.Context, img entity.EdgeMap) (*entity.FeatureMap, error) {
	sum := 0.0
	for _, v := range img.Pix {
		sum += float64(v)
	}
	mean := sum / float64(len(img.Pix)) / 255

	fm := &entity.FeatureMap{Height: 2, Width: 2, Channels: b.channels, Data: make([]float32, 4*b.channels)}
	for i := 0; i < 4; i++ {
		for c := 0; c < b.channels; c++ {
			// лёгкая пространственная неоднородность, чтобы дисперсия была ненулевой
			fm.Data[i*b.channels+c] = float32((2*mean-1)*float64(c+1) + 0.01*float64(i))
		}
	}
	return fm, nil
}

func filledEdgeMap(v uint8) entity.EdgeMap {
	m := entity.NewEdgeMap()
	for i := range m.Pix {
		m.Pix[i] = v
	}
	return m
}

func TestBuild(t *testing.T) {
	clf, err := Build(&intensityBackbone{channels: 4}, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 2314, clf.TrainableParams())

	_, err = Build(nil, DefaultOptions())
	require.Error(t, err)

	_, err = Build(&intensityBackbone{channels: 0}, DefaultOptions())
	require.ErrorIs(t, err, entity.ErrShapeMismatch)
}

func TestPredict_ProbabilitiesSumToOne(t *testing.T) {
	clf, err := Build(&intensityBackbone{channels: 8}, DefaultOptions())
	require.NoError(t, err)

	images := []entity.EdgeMap{filledEdgeMap(0), filledEdgeMap(128), filledEdgeMap(255)}
	probs, err := clf.Predict(context.Background(), images)
	require.NoError(t, err)
	require.Len(t, probs, len(images))

	for _, p := range probs {
		sum := 0.0
		for _, v := range p {
			require.GreaterOrEqual(t, v, 0.0)
			require.LessOrEqual(t, v, 1.0)
			sum += v
		}
		require.InDelta(t, 1.0, sum, 1e-5)
	}
}

func TestPredict_ShapeMismatch(t *testing.T) {
	clf, err := Build(&intensityBackbone{channels: 4}, DefaultOptions())
	require.NoError(t, err)

	bad := entity.EdgeMap{Width: 100, Height: 100, Pix: make([]uint8, 100*100)}
	_, err = clf.Predict(context.Background(), []entity.EdgeMap{bad})
	require.ErrorIs(t, err, entity.ErrShapeMismatch)

	_, err = clf.PredictPooled([]entity.PooledFeatures{{Mean: []float64{1}, MeanSq: []float64{1}}})
	require.ErrorIs(t, err, entity.ErrShapeMismatch)
}

func TestTrainBatch_Validation(t *testing.T) {
	clf, err := Build(&intensityBackbone{channels: 4}, DefaultOptions())
	require.NoError(t, err)

	_, err = clf.TrainBatch(nil, nil)
	require.ErrorIs(t, err, entity.ErrEmptyPartition)

	f := entity.PooledFeatures{Mean: make([]float64, 4), MeanSq: make([]float64, 4)}
	_, err = clf.TrainBatch([]entity.PooledFeatures{f}, nil)
	require.ErrorIs(t, err, entity.ErrShapeMismatch)
}

func TestTrainBatch_ReducesLoss(t *testing.T) {
	ctx := context.Background()
	clf, err := Build(&intensityBackbone{channels: 8}, DefaultOptions())
	require.NoError(t, err)

	var features []entity.PooledFeatures
	var labels []entity.OneHot
	for i := 0; i < 8; i++ {
		v, class := uint8(255), entity.ClassPositive
		if i%2 == 1 {
			v, class = 0, entity.ClassNegative
		}
		f, err := clf.Pool(ctx, filledEdgeMap(v))
		require.NoError(t, err)
		features = append(features, f)
		labels = append(labels, entity.NewOneHot(class))
	}

	first, err := clf.TrainBatch(features, labels)
	require.NoError(t, err)
	var last BatchResult
	for i := 0; i < 50; i++ {
		last, err = clf.TrainBatch(features, labels)
		require.NoError(t, err)
	}
	require.Less(t, last.Loss, first.Loss)
	require.Equal(t, 1.0, last.Accuracy)
	require.Equal(t, 51, clf.Steps())
}

func TestHeadGradients(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	h := newHead(3, 4, DefaultOptions(), rng)
	for _, p := range h.params() {
		for i := range p.value {
			p.value[i] += 0.1 * rng.NormFloat64()
		}
	}

	batch := make([]entity.PooledFeatures, 5)
	labels := make([]entity.OneHot, 5)
	for i := range batch {
		f := entity.PooledFeatures{Mean: make([]float64, 3), MeanSq: make([]float64, 3)}
		for c := range f.Mean {
			f.Mean[c] = rng.NormFloat64()
			f.MeanSq[c] = f.Mean[c]*f.Mean[c] + 0.1 + rng.Float64()
		}
		batch[i] = f
		labels[i] = entity.NewOneHot(entity.Class(i % 2))
	}

	h.backward(h.forwardTrain(batch), labels)

	lossAt := func() float64 {
		l, _ := h.loss(h.forwardTrain(batch), labels)
		return l
	}

	const step = 1e-6
	for _, p := range h.params() {
		for i := range p.value {
			orig := p.value[i]
			p.value[i] = orig + step
			plus := lossAt()
			p.value[i] = orig - step
			minus := lossAt()
			p.value[i] = orig

			numeric := (plus - minus) / (2 * step)
			require.InDelta(t, numeric, p.grad[i], 1e-5+1e-3*math.Abs(numeric), "%s[%d]", p.name, i)
		}
	}
}

func TestAdamFirstStepMovesByLearningRate(t *testing.T) {
	p := newParam("w", 2, 1)
	p.grad[0] = 3
	p.grad[1] = -0.5

	NewAdam(0.01).Step([]*param{p})
	require.InDelta(t, 0.99, p.value[0], 1e-6)
	require.InDelta(t, 1.01, p.value[1], 1e-6)
	require.Zero(t, p.grad[0])
}
