package circuitbreaker

import (
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
)

func TestNew_OpensAfterRepeatedFailures(t *testing.T) {
	cb := New("test")

	for i := 0; i < 5; i++ {
		_, err := cb.Execute(func() (interface{}, error) {
			return nil, errors.New("provider unavailable")
		})
		assert.Error(t, err)
	}

	_, err := cb.Execute(func() (interface{}, error) {
		return "ok", nil
	})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestNew_StaysClosedBelowThreshold(t *testing.T) {
	cb := New("test")

	for i := 0; i < 4; i++ {
		cb.Execute(func() (interface{}, error) {
			return nil, errors.New("provider unavailable")
		})
	}

	result, err := cb.Execute(func() (interface{}, error) {
		return "ok", nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "ok", result)
}
