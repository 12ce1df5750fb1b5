package target

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMicro(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"stm32f746xx", "c -keys=cpu -mcpu=cortex-m7 -model=stm32f746xx"},
		{"nrf5340dk", "c -keys=cpu -mcpu=cortex-m33 -model=nrf5340dk"},
		{"sam3x8e", "c -keys=cpu -mcpu=cortex-m3 -model=sam3x8e"},
		{"host", "c -keys=cpu -model=host"},
		{"some_future_soc", "c -keys=cpu -model=some_future_soc"},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.want, Micro(tt.model))
		})
	}
}

func TestMicroDeterministic(t *testing.T) {
	assert.Equal(t, Micro("stm32l4r5zi"), Micro("stm32l4r5zi"))
}
