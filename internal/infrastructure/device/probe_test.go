package device

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"crack-classifier/internal/domain/entity"
)

func TestResolve_NoDevices(t *testing.T) {
	p := NewProbeWith(func(int) error { return nil })

	acc, ok := p.Resolve(nil)
	assert.False(t, ok)
	assert.Nil(t, acc)
	assert.Equal(t, 1, acc.Replicas())
}

func TestResolve_FallsBackWhenAllFail(t *testing.T) {
	p := NewProbeWith(func(id int) error {
		return fmt.Errorf("%w: device %d", entity.ErrDeviceUnavailable, id)
	})

	acc, ok := p.Resolve([]int{0, 1})
	assert.False(t, ok)
	assert.Nil(t, acc)
}

func TestResolve_KeepsAttachedDevices(t *testing.T) {
	p := NewProbeWith(func(id int) error {
		if id == 1 {
			return errors.New("busy")
		}
		return nil
	})

	acc, ok := p.Resolve([]int{0, 1, 2})
	assert.True(t, ok)
	assert.Equal(t, ProviderCUDA, acc.Provider)
	assert.Equal(t, []int{0, 2}, acc.DeviceIDs)
	assert.Equal(t, 2, acc.Replicas())
}

func TestAttachCUDA_WithoutRuntime(t *testing.T) {
	err := attachCUDA(0)
	assert.ErrorIs(t, err, entity.ErrDeviceUnavailable)
}

func TestLogHost(t *testing.T) {
	assert.NotPanics(t, LogHost)
}
