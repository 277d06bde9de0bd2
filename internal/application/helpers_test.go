package app

import (
	"context"
	"fmt"
	"sync/atomic"

	"crack-classifier/internal/domain/entity"
)

const testChannels = 4

// brightnessBackbone отдаёт карту 1x1xC со знаком яркости образца
type brightnessBackbone struct {
	calls atomic.Int32
}

func (b *brightnessBackbone) OutputShape() (int, int, int) { return 1, 1, testChannels }

func (b *brightnessBackbone) Extract(ctx context.Context, img entity.EdgeMap) (*entity.FeatureMap, error) {
	b.calls.Add(1)
	sign := float32(-1)
	if img.Pix[0] > 127 {
		sign = 1
	}
	jitter := float32(img.Pix[1]) * 0.001

	fm := &entity.FeatureMap{Height: 1, Width: 1, Channels: testChannels, Data: make([]float32, testChannels)}
	for c := range fm.Data {
		fm.Data[c] = sign*float32(c+1) + jitter
	}
	return fm, nil
}

// sample белая карта для трещины, чёрная для её отсутствия
func sample(id int, cls entity.Class) entity.LabeledSample {
	img := entity.NewEdgeMap()
	if cls == entity.ClassPositive {
		for i := range img.Pix {
			img.Pix[i] = 255
		}
	}
	img.Pix[1] = uint8(id)
	return entity.LabeledSample{
		ID:    fmt.Sprintf("sample-%d", id),
		Image: img,
		Label: entity.NewOneHot(cls),
	}
}

// alternating n образцов каждого класса через один
func alternating(n, offset int) []entity.LabeledSample {
	out := make([]entity.LabeledSample, 0, 2*n)
	for i := 0; i < n; i++ {
		out = append(out, sample(offset+2*i, entity.ClassPositive), sample(offset+2*i+1, entity.ClassNegative))
	}
	return out
}

type staticSource struct {
	ds  *entity.Dataset
	err error
}

func (s *staticSource) Load(ctx context.Context) (*entity.Dataset, error) {
	return s.ds, s.err
}

type recordingRenderer struct {
	reports []*entity.MetricsReport
}

func (r *recordingRenderer) Render(ctx context.Context, report *entity.MetricsReport) error {
	r.reports = append(r.reports, report)
	return nil
}
