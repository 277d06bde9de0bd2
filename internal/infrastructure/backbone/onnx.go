package backbone

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"

	ort "github.com/yalue/onnxruntime_go"

	"crack-classifier/internal/domain/entity"
	"crack-classifier/internal/domain/port"
	"crack-classifier/internal/infrastructure/device"
	"crack-classifier/internal/logger"
)

// Options настройки бэкбона
type Options struct {
	ModelPath   string
	Channels    ChannelStrategy
	Accelerator *device.Accelerator // nil: CPU
	Sessions    int                 // число CPU-сессий, по умолчанию 1
}

// session одна загруженная копия графа со своими тензорами
type session struct {
	run    *ort.AdvancedSession
	input  *ort.Tensor[float32]
	output *ort.Tensor[float32]
}

func (s *session) destroy() {
	if s.run != nil {
		s.run.Destroy()
	}
	if s.input != nil {
		s.input.Destroy()
	}
	if s.output != nil {
		s.output.Destroy()
	}
}

// ONNX замороженная ResNet-50 без головы
type ONNX struct {
	in       tensorLayout
	out      tensorLayout
	sessions []*session
	pool     chan *session
}

var _ port.FeatureExtractor = (*ONNX)(nil)

// NewONNX открывает граф и создаёт по сессии на реплику
func NewONNX(opts Options) (*ONNX, error) {
	inputs, outputs, err := ort.GetInputOutputInfo(opts.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read model info: %w", err)
	}
	if len(inputs) != 1 || len(outputs) != 1 {
		return nil, fmt.Errorf("%w: expected one input and one output, got %d and %d",
			entity.ErrShapeMismatch, len(inputs), len(outputs))
	}

	for _, info := range []ort.InputOutputInfo{inputs[0], outputs[0]} {
		if info.DataType != ort.TensorElementDataTypeFloat {
			return nil, fmt.Errorf("%w: %s has element type %v, expected float32",
				entity.ErrShapeMismatch, info.Name, info.DataType)
		}
	}

	in, err := detectInputLayout(inputs[0].Dimensions)
	if err != nil {
		return nil, err
	}
	if in.channels != opts.Channels.Channels() {
		return nil, fmt.Errorf("%w: graph takes %d channels, strategy %q feeds %d",
			entity.ErrShapeMismatch, in.channels, opts.Channels, opts.Channels.Channels())
	}
	out, err := detectOutputLayout(outputs[0].Dimensions, in.order)
	if err != nil {
		return nil, err
	}

	b, err := openSessions(opts, inputs[0].Name, outputs[0].Name, in, out, newSession)
	if err != nil {
		return nil, err
	}

	logger.Info(logger.Fields{
		"layout":   in.order.String(),
		"input":    fmt.Sprintf("%dx%dx%d", in.height, in.width, in.channels),
		"output":   fmt.Sprintf("%dx%dx%d", out.height, out.width, out.channels),
		"sessions": len(b.sessions),
	}, "backbone loaded")

	return b, nil
}

// sessionFactory создаёт сессию на устройстве, -1 означает CPU
type sessionFactory func(path, inputName, outputName string, in, out tensorLayout, deviceID int) (*session, error)

// openSessions поднимает сессии на ускорителе, при ErrDeviceUnavailable
// повторяет на CPU
func openSessions(opts Options, inputName, outputName string, in, out tensorLayout, open sessionFactory) (*ONNX, error) {
	b, err := replicate(opts, inputName, outputName, in, out, open)
	if err == nil || opts.Accelerator == nil || !errors.Is(err, entity.ErrDeviceUnavailable) {
		return b, err
	}

	logger.Warn(logger.Fields{"error": err.Error()}, "accelerator unavailable, falling back to CPU")
	opts.Accelerator = nil
	logger.Infof("Number of replicas: %d", 1)
	return replicate(opts, inputName, outputName, in, out, open)
}

func replicate(opts Options, inputName, outputName string, in, out tensorLayout, open sessionFactory) (*ONNX, error) {
	b := &ONNX{in: in, out: out}
	for _, devID := range replicaDevices(opts) {
		s, err := open(opts.ModelPath, inputName, outputName, in, out, devID)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.sessions = append(b.sessions, s)
	}

	b.pool = make(chan *session, len(b.sessions))
	for _, s := range b.sessions {
		b.pool <- s
	}
	return b, nil
}

// replicaDevices номера устройств, -1 означает CPU
func replicaDevices(opts Options) []int {
	if opts.Accelerator != nil && len(opts.Accelerator.DeviceIDs) > 0 {
		return opts.Accelerator.DeviceIDs
	}
	n := opts.Sessions
	if n <= 0 {
		n = 1
	}
	ids := make([]int, n)
	for i := range ids {
		ids[i] = -1
	}
	return ids
}

func newSession(path, inputName, outputName string, in, out tensorLayout, deviceID int) (*session, error) {
	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer options.Destroy()

	if deviceID >= 0 {
		cuda, err := ort.NewCUDAProviderOptions()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", entity.ErrDeviceUnavailable, err)
		}
		defer cuda.Destroy()
		if err := cuda.Update(map[string]string{"device_id": strconv.Itoa(deviceID)}); err != nil {
			return nil, fmt.Errorf("%w: device %d: %v", entity.ErrDeviceUnavailable, deviceID, err)
		}
		if err := options.AppendExecutionProviderCUDA(cuda); err != nil {
			return nil, fmt.Errorf("%w: device %d: %v", entity.ErrDeviceUnavailable, deviceID, err)
		}
	} else if err := options.SetIntraOpNumThreads(max(1, runtime.NumCPU()/2)); err != nil {
		return nil, fmt.Errorf("failed to set threads: %w", err)
	}

	s := &session{}
	s.input, err = ort.NewEmptyTensor[float32](ort.NewShape(in.shape()...))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	s.output, err = ort.NewEmptyTensor[float32](ort.NewShape(out.shape()...))
	if err != nil {
		s.destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	s.run, err = ort.NewAdvancedSession(path,
		[]string{inputName}, []string{outputName},
		[]ort.ArbitraryTensor{s.input}, []ort.ArbitraryTensor{s.output},
		options)
	if err != nil {
		s.destroy()
		if deviceID >= 0 {
			return nil, fmt.Errorf("%w: device %d: %v", entity.ErrDeviceUnavailable, deviceID, err)
		}
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}
	return s, nil
}

// Extract прогоняет одну карту границ через сеть.
// Безопасен для конкурентного вызова, ждёт свободную сессию.
func (b *ONNX) Extract(ctx context.Context, img entity.EdgeMap) (*entity.FeatureMap, error) {
	var s *session
	select {
	case s = <-b.pool:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { b.pool <- s }()

	if err := packInput(img, b.in, s.input.GetData()); err != nil {
		return nil, err
	}
	if err := s.run.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	return unpackOutput(s.output.GetData(), b.out)
}

// OutputShape форма карты признаков одного образца
func (b *ONNX) OutputShape() (height, width, channels int) {
	return b.out.height, b.out.width, b.out.channels
}

// Close освобождает сессии
func (b *ONNX) Close() {
	for _, s := range b.sessions {
		s.destroy()
	}
	b.sessions = nil
}
