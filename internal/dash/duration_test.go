package dash_test

import (
	"testing"

	"dashseek/internal/dash"

	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"PT1H30M0S", 5400},
		{"P1Y", 31536000},
		{"P1M", 2592000},
		{"PT1M", 60},
		{"P1W", 604800},
		{"P2D", 172800},
		{"P1DT1H", 90000},
		{"PT12.00S", 12},
		{"PT0.5S", 0.5},
		{"PT.5S", 0.5},
		{"PT1.5M", 90},
		{"P1Y2M3W4DT5H6M7.25S", 31536000 + 2*2592000 + 3*604800 + 4*86400 + 5*3600 + 6*60 + 7.25},
		{"PT8S", 8},
		{"PT", 0},
		{"P", 0},
		{"", 0},
		{"garbage", 0},
		{"5s", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.InDelta(t, tt.want, dash.ParseDuration(tt.in), 1e-9)
		})
	}
}

func TestParseDuration_UnmatchedTailIsIgnored(t *testing.T) {
	// Everything the grammar cannot consume contributes nothing.
	assert.InDelta(t, 3600.0, dash.ParseDuration("PT1Hxyz"), 1e-9)
	assert.InDelta(t, 0.0, dash.ParseDuration("PTxH"), 1e-9)
}
