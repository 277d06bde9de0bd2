package console

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"crack-classifier/internal/domain/entity"
)

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)

	err := r.Render(context.Background(), &entity.MetricsReport{
		Loss:            0.6931,
		LossAccuracy:    0.75,
		Precision:       0.25,
		Recall:          0.5,
		F1:              1.0 / 3,
		Accuracy:        0.5,
		IoU:             0.5,
		IoUClass:        "Positive",
		ConfusionMatrix: [2][2]int{{1, 0}, {1, 0}},
		Report:          "report body\n",
	})
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "Loss: 0.6931")
	require.Contains(t, out, "Test accuracy: 0.7500")
	require.Contains(t, out, "Precision: 0.2500")
	require.Contains(t, out, "Recall: 0.5000")
	require.Contains(t, out, "F1 Score: 0.3333")
	require.Contains(t, out, "Accuracy: 0.5000")
	require.Contains(t, out, "IoU (Positive): 0.5000")
	require.Contains(t, out, "Positive        1        0")
	require.Contains(t, out, "Negative        1        0")
	require.Contains(t, out, "report body")
	require.NotContains(t, out, msgUndefined)
}

func TestRender_Undefined(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf).Render(context.Background(), &entity.MetricsReport{Undefined: true}))
	require.Contains(t, buf.String(), msgUndefined)
}
