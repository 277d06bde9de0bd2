package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"crack-classifier/internal/domain/entity"
	"crack-classifier/internal/domain/port"
	"crack-classifier/internal/infrastructure/storage"
	"crack-classifier/internal/model"
)

func newPipeline(source *staticSource, renderers ...*recordingRenderer) *Pipeline {
	features := NewFeatureService(storage.NewMemoryFeatureRepository(), 2)

	rs := make([]port.ReportRenderer, 0, len(renderers))
	for _, r := range renderers {
		rs = append(rs, r)
	}
	return NewPipeline(
		source,
		&brightnessBackbone{},
		model.DefaultOptions(),
		NewTrainingService(features, TrainerConfig{Epochs: 2, BatchSize: 4}),
		NewEvaluationService(features, entity.ClassPositive),
		rs...,
	)
}

func TestPipeline_FullRun(t *testing.T) {
	ctx := context.Background()
	renderer := &recordingRenderer{}
	p := newPipeline(&staticSource{ds: &entity.Dataset{
		Train:      alternating(4, 0),
		Validation: alternating(1, 20),
		Test:       alternating(2, 40),
	}}, renderer)

	require.True(t, p.Run().Is(entity.StageCreated))
	require.NoError(t, p.Init(ctx))
	require.True(t, p.Run().Is(entity.StageInitialized))

	history, err := p.Fit(ctx)
	require.NoError(t, err)
	require.Len(t, history.Epochs, 2)
	require.Same(t, history, p.History())

	report, err := p.Evaluate(ctx)
	require.NoError(t, err)
	require.Equal(t, p.Run().ID, report.RunID)
	require.Equal(t, 4, report.Samples)
	require.Same(t, report, p.Report())
	require.True(t, p.Run().Is(entity.StageEvaluated))

	require.Len(t, renderer.reports, 1)
	require.Same(t, report, renderer.reports[0])
}

func TestPipeline_StageOrder(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(&staticSource{ds: &entity.Dataset{
		Train:      alternating(2, 0),
		Validation: alternating(1, 10),
	}})

	_, err := p.Fit(ctx)
	require.ErrorIs(t, err, entity.ErrStage)
	_, err = p.Evaluate(ctx)
	require.ErrorIs(t, err, entity.ErrStage)

	require.NoError(t, p.Init(ctx))
	require.ErrorIs(t, p.Init(ctx), entity.ErrStage)
	_, err = p.Evaluate(ctx)
	require.ErrorIs(t, err, entity.ErrStage)
}

func TestPipeline_EmptyTestSetIsUndefined(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(&staticSource{ds: &entity.Dataset{
		Train:      alternating(2, 0),
		Validation: alternating(1, 10),
	}})

	require.NoError(t, p.Init(ctx))
	_, err := p.Fit(ctx)
	require.NoError(t, err)

	report, err := p.Evaluate(ctx)
	require.NoError(t, err)
	require.True(t, report.Undefined)
}

func TestPipeline_InitFailureKeepsStage(t *testing.T) {
	p := newPipeline(&staticSource{err: errors.New("disk gone")})

	require.Error(t, p.Init(context.Background()))
	require.True(t, p.Run().Is(entity.StageCreated))
}
