package model

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"crack-classifier/internal/domain/entity"
	"crack-classifier/internal/domain/port"
)

// Options параметры головы и оптимизатора.
type Options struct {
	HiddenUnits  int
	LearningRate float64
	Momentum     float64 // скользящее среднее batch normalization
	Epsilon      float64 // batch normalization
	Seed         int64
}

// DefaultOptions значения как у Keras: Dense(256), Adam(), BatchNormalization().
func DefaultOptions() Options {
	return Options{
		HiddenUnits:  256,
		LearningRate: 0.001,
		Momentum:     0.99,
		Epsilon:      1e-3,
		Seed:         42,
	}
}

// BatchResult итог одного шага обучения.
type BatchResult struct {
	Loss     float64
	Accuracy float64
}

// Classifier замороженный бэкбон с обучаемой головой.
type Classifier struct {
	backbone  port.FeatureExtractor
	head      *Head
	optimizer *Adam
}

// Build собирает и компилирует классификатор: Adam, категориальная
// кросс-энтропия, метрика accuracy.
func Build(backbone port.FeatureExtractor, opts Options) (*Classifier, error) {
	if backbone == nil {
		return nil, errors.New("backbone is not configured")
	}
	if opts.HiddenUnits <= 0 {
		return nil, fmt.Errorf("hidden units must be positive, got %d", opts.HiddenUnits)
	}

	_, _, channels := backbone.OutputShape()
	if channels <= 0 {
		return nil, fmt.Errorf("%w: backbone reports %d channels", entity.ErrShapeMismatch, channels)
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	return &Classifier{
		backbone:  backbone,
		head:      newHead(channels, opts.HiddenUnits, opts, rng),
		optimizer: NewAdam(opts.LearningRate),
	}, nil
}

// Pool прогоняет карту границ через бэкбон и сворачивает признаки.
func (c *Classifier) Pool(ctx context.Context, img entity.EdgeMap) (entity.PooledFeatures, error) {
	if err := img.Validate(); err != nil {
		return entity.PooledFeatures{}, err
	}

	fm, err := c.backbone.Extract(ctx, img)
	if err != nil {
		return entity.PooledFeatures{}, fmt.Errorf("extract features: %w", err)
	}
	if fm.Channels != c.head.channels {
		return entity.PooledFeatures{}, fmt.Errorf("%w: backbone returned %d channels, head expects %d",
			entity.ErrShapeMismatch, fm.Channels, c.head.channels)
	}
	return fm.Pool()
}

// TrainBatch выполняет один шаг обучения головы.
func (c *Classifier) TrainBatch(features []entity.PooledFeatures, labels []entity.OneHot) (BatchResult, error) {
	if err := c.checkBatch(features, labels); err != nil {
		return BatchResult{}, err
	}

	tr := c.head.forwardTrain(features)
	loss, acc := c.head.loss(tr, labels)
	c.head.backward(tr, labels)
	c.head.commitStatistics(tr)
	c.optimizer.Step(c.head.params())

	return BatchResult{Loss: loss, Accuracy: acc}, nil
}

// PredictPooled возвращает вероятности классов в режиме вывода.
func (c *Classifier) PredictPooled(features []entity.PooledFeatures) ([]entity.Probabilities, error) {
	out := make([]entity.Probabilities, len(features))
	for i, f := range features {
		if err := c.checkFeatures(f); err != nil {
			return nil, err
		}
		out[i] = c.head.infer(f)
	}
	return out, nil
}

// Predict прогоняет карты границ через бэкбон и голову.
func (c *Classifier) Predict(ctx context.Context, images []entity.EdgeMap) ([]entity.Probabilities, error) {
	features := make([]entity.PooledFeatures, len(images))
	for i, img := range images {
		f, err := c.Pool(ctx, img)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		features[i] = f
	}
	return c.PredictPooled(features)
}

// Evaluate считает среднюю потерю и точность в режиме вывода.
func (c *Classifier) Evaluate(features []entity.PooledFeatures, labels []entity.OneHot) (loss, accuracy float64, err error) {
	if err := c.checkBatch(features, labels); err != nil {
		return 0, 0, err
	}

	probs, err := c.PredictPooled(features)
	if err != nil {
		return 0, 0, err
	}

	correct := 0
	for i, p := range probs {
		loss += crossEntropy(p[:], labels[i][:])
		if p.Class() == labels[i].Class() {
			correct++
		}
	}
	n := float64(len(probs))
	return loss / n, float64(correct) / n, nil
}

// TrainableParams количество обучаемых параметров головы.
func (c *Classifier) TrainableParams() int {
	total := 0
	for _, p := range c.head.params() {
		total += len(p.value)
	}
	return total
}

// Steps количество выполненных шагов оптимизатора.
func (c *Classifier) Steps() int {
	return c.optimizer.Steps()
}

func (c *Classifier) checkBatch(features []entity.PooledFeatures, labels []entity.OneHot) error {
	if len(features) == 0 {
		return fmt.Errorf("%w: batch has no samples", entity.ErrEmptyPartition)
	}
	if len(features) != len(labels) {
		return fmt.Errorf("%w: %d samples with %d labels", entity.ErrShapeMismatch, len(features), len(labels))
	}
	for _, f := range features {
		if err := c.checkFeatures(f); err != nil {
			return err
		}
	}
	return nil
}

func (c *Classifier) checkFeatures(f entity.PooledFeatures) error {
	if len(f.Mean) != c.head.channels || len(f.MeanSq) != c.head.channels {
		return fmt.Errorf("%w: features have %d channels, head expects %d",
			entity.ErrShapeMismatch, len(f.Mean), c.head.channels)
	}
	return nil
}
