package device

import (
	"fmt"
	"strconv"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	ort "github.com/yalue/onnxruntime_go"

	"crack-classifier/internal/domain/entity"
	"crack-classifier/internal/logger"
)

const ProviderCUDA = "cuda"

// Accelerator выбранные устройства и провайдер исполнения
type Accelerator struct {
	Provider  string
	DeviceIDs []int
}

// Replicas количество реплик модели
func (a *Accelerator) Replicas() int {
	if a == nil || len(a.DeviceIDs) == 0 {
		return 1
	}
	return len(a.DeviceIDs)
}

// AttachFunc пробует подключить устройство к провайдеру исполнения
type AttachFunc func(deviceID int) error

// Probe явная проверка доступности ускорителей
type Probe struct {
	attach AttachFunc
}

// NewProbe создаёт проверку с подключением CUDA через onnxruntime
func NewProbe() *Probe {
	return &Probe{attach: attachCUDA}
}

// NewProbeWith создаёт проверку с произвольной функцией подключения
func NewProbeWith(attach AttachFunc) *Probe {
	return &Probe{attach: attach}
}

// Resolve возвращает ускоритель из доступных устройств или false,
// если ни одно не подключилось и работаем на CPU
func (p *Probe) Resolve(devices []int) (*Accelerator, bool) {
	var ok []int
	for _, id := range devices {
		if err := p.attach(id); err != nil {
			logger.Debug(logger.Fields{"device": id, "error": err.Error()}, "accelerator not attached")
			continue
		}
		ok = append(ok, id)
	}

	if len(ok) == 0 {
		logger.Infof("Number of replicas: %d", 1)
		return nil, false
	}

	acc := &Accelerator{Provider: ProviderCUDA, DeviceIDs: ok}
	logger.Infof("Number of replicas: %d", acc.Replicas())
	return acc, true
}

// attachCUDA подключает CUDA-провайдер к временным настройкам сессии
func attachCUDA(deviceID int) error {
	if !ort.IsInitialized() {
		return fmt.Errorf("%w: onnxruntime is not initialized", entity.ErrDeviceUnavailable)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return fmt.Errorf("%w: session options: %v", entity.ErrDeviceUnavailable, err)
	}
	defer options.Destroy()

	cuda, err := ort.NewCUDAProviderOptions()
	if err != nil {
		return fmt.Errorf("%w: cuda options: %v", entity.ErrDeviceUnavailable, err)
	}
	defer cuda.Destroy()

	if err := cuda.Update(map[string]string{"device_id": strconv.Itoa(deviceID)}); err != nil {
		return fmt.Errorf("%w: device %d: %v", entity.ErrDeviceUnavailable, deviceID, err)
	}
	if err := options.AppendExecutionProviderCUDA(cuda); err != nil {
		return fmt.Errorf("%w: device %d: %v", entity.ErrDeviceUnavailable, deviceID, err)
	}
	return nil
}

// LogHost пишет в лог ресурсы машины
func LogHost() {
	fields := logger.Fields{}
	if n, err := cpu.Counts(true); err == nil {
		fields["cpu"] = n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		fields["memory_mb"] = vm.Total / (1 << 20)
		fields["available_mb"] = vm.Available / (1 << 20)
	}
	logger.Info(fields, "host resources")
}
