package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFeatureMapPool(t *testing.T) {
	// 2x1 карта, 2 канала: (1, 10) и (3, 20)
	f := &FeatureMap{Height: 2, Width: 1, Channels: 2, Data: []float32{1, 10, 3, 20}}
	p, err := f.Pool()
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{2, 15}, p.Mean, 1e-9)
	require.InDeltaSlice(t, []float64{5, 250}, p.MeanSq, 1e-9)
}

func TestFeatureMapPool_ShapeMismatch(t *testing.T) {
	f := &FeatureMap{Height: 2, Width: 2, Channels: 2, Data: []float32{1, 2, 3}}
	_, err := f.Pool()
	require.ErrorIs(t, err, ErrShapeMismatch)
}
