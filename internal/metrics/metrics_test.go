package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"crack-classifier/internal/domain/entity"
)

func oneHotClasses(labels ...entity.OneHot) []entity.Class {
	out := make([]entity.Class, len(labels))
	for i, l := range labels {
		out[i] = l.Class()
	}
	return out
}

func TestCompute_PerfectPredictions(t *testing.T) {
	probs := []entity.Probabilities{{0.9, 0.1}, {0.2, 0.8}}
	truth := oneHotClasses(entity.OneHot{1, 0}, entity.OneHot{0, 1})

	r, err := Compute(truth, ArgMax(probs), entity.ClassPositive)
	require.NoError(t, err)
	require.Equal(t, 1.0, r.Precision)
	require.Equal(t, 1.0, r.Recall)
	require.Equal(t, 1.0, r.F1)
	require.Equal(t, 1.0, r.Accuracy)
	require.Equal(t, 1.0, r.IoU)
	require.Equal(t, [2][2]int{{1, 0}, {0, 1}}, r.ConfusionMatrix)
}

func TestCompute_AllPredictedPositive(t *testing.T) {
	probs := []entity.Probabilities{{0.9, 0.1}, {0.9, 0.1}}
	truth := oneHotClasses(entity.OneHot{1, 0}, entity.OneHot{0, 1})

	r, err := Compute(truth, ArgMax(probs), entity.ClassPositive)
	require.NoError(t, err)
	require.Equal(t, 0.5, r.Accuracy)
	require.Equal(t, 0.5, r.IoU) // пересечение {0}, объединение {0, 1}
	require.InDelta(t, 0.25, r.Precision, 1e-12)
	require.InDelta(t, 0.5, r.Recall, 1e-12)
	require.InDelta(t, 1.0/3, r.F1, 1e-12)
	require.InDelta(t, 2*r.Precision*r.Recall/(r.Precision+r.Recall), r.F1, 1e-9)

	// по второму классу пересечение пустое
	require.Equal(t, 0.0, IoU(truth, ArgMax(probs), entity.ClassNegative))
}

func TestCompute_Invariants(t *testing.T) {
	yTrue := []entity.Class{0, 0, 0, 1, 1, 0, 1, 0}
	yPred := []entity.Class{0, 1, 0, 1, 0, 0, 1, 1}

	r, err := Compute(yTrue, yPred, entity.ClassPositive)
	require.NoError(t, err)

	support := [2]int{}
	for _, c := range yTrue {
		support[c]++
	}
	trace, total := 0, 0
	for i, row := range r.ConfusionMatrix {
		require.Equal(t, support[i], row[0]+row[1])
		trace += row[i]
		total += row[0] + row[1]
	}
	require.InDelta(t, float64(trace)/float64(total), r.Accuracy, 1e-12)
	require.GreaterOrEqual(t, r.IoU, 0.0)
	require.LessOrEqual(t, r.IoU, 1.0)
	require.Equal(t, support[0], r.PerClass[0].Support)
}

func TestCompute_IdenticalLabelsGiveFullIoU(t *testing.T) {
	y := []entity.Class{1, 0, 1, 1}
	for _, cls := range []entity.Class{entity.ClassPositive, entity.ClassNegative} {
		r, err := Compute(y, y, cls)
		require.NoError(t, err)
		require.Equal(t, 1.0, r.IoU)
	}
}

func TestCompute_Empty(t *testing.T) {
	r, err := Compute(nil, nil, entity.ClassPositive)
	require.NoError(t, err)
	require.True(t, r.Undefined)
	require.Zero(t, r.IoU)
	require.Zero(t, r.Accuracy)
	require.Zero(t, r.F1)
}

func TestCompute_LengthMismatch(t *testing.T) {
	_, err := Compute([]entity.Class{0}, nil, entity.ClassPositive)
	require.ErrorIs(t, err, entity.ErrShapeMismatch)
}

func TestClassificationReport(t *testing.T) {
	per := PerClass([2][2]int{{1, 0}, {0, 1}})
	report := ClassificationReport(per, 1)

	require.Contains(t, report, "precision")
	require.Contains(t, report, "    Positive      1.00      1.00      1.00         1")
	require.Contains(t, report, "weighted avg      1.00      1.00      1.00         2")
}
