package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEWMA_FirstTickAdoptsInstantRate(t *testing.T) {
	e := NewOneMinuteEWMA(TickInterval)
	e.Update(60)
	e.Tick()

	assert.InDelta(t, 12.0, e.Rate(Seconds), 1e-9)
	assert.InDelta(t, 720.0, e.Rate(Minutes), 1e-9)
}

func TestEWMA_Decay(t *testing.T) {
	tests := []struct {
		name     string
		ewma     *EWMA
		afterMin float64
	}{
		{"one minute", NewOneMinuteEWMA(TickInterval), 0.22072766},
		{"five minutes", NewFiveMinuteEWMA(TickInterval), 0.49123845},
		{"fifteen minutes", NewFifteenMinuteEWMA(TickInterval), 0.56130419},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.ewma.Update(3)
			tt.ewma.Tick()
			assert.InDelta(t, 0.6, tt.ewma.Rate(Seconds), 1e-8)

			// one minute of idle ticks
			for i := 0; i < 12; i++ {
				tt.ewma.Tick()
			}
			assert.InDelta(t, tt.afterMin, tt.ewma.Rate(Seconds), 1e-6)
		})
	}
}

func TestEWMA_Reset(t *testing.T) {
	e := NewOneMinuteEWMA(TickInterval)
	e.Update(10)
	e.Tick()
	e.Update(10)
	e.Reset()
	e.Tick()

	assert.Equal(t, 0.0, e.Rate(Seconds))
}
