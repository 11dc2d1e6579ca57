package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/runnerr0/viewtally/internal/storage"
)

func TestComputeTrend(t *testing.T) {
	tests := []struct {
		name    string
		entries []storage.Entry
		want    Trend
	}{
		{"empty", nil, Trend{}},
		{
			"single",
			[]storage.Entry{{TotalViews: 500}},
			Trend{Runs: 1, FirstViews: 500, LastViews: 500, PeakViews: 500},
		},
		{
			"growing",
			[]storage.Entry{{TotalViews: 1000}, {TotalViews: 1400}, {TotalViews: 1500}},
			Trend{Runs: 3, FirstViews: 1000, LastViews: 1500, PeakViews: 1500, Change: 500, ChangePercent: 50, SincePrevious: 100},
		},
		{
			"drop after peak",
			[]storage.Entry{{TotalViews: 200}, {TotalViews: 900}, {TotalViews: 100}},
			Trend{Runs: 3, FirstViews: 200, LastViews: 100, PeakViews: 900, Change: -100, ChangePercent: -50, SincePrevious: -800},
		},
		{
			"first run empty",
			[]storage.Entry{{TotalViews: 0}, {TotalViews: 10}},
			Trend{Runs: 2, LastViews: 10, PeakViews: 10, Change: 10, SincePrevious: 10},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeTrend(tt.entries))
		})
	}
}
