package analysis

import (
	"math"
	"testing"
)

func TestComputeHRV_InsufficientData(t *testing.T) {
	tests := []struct {
		name    string
		cleaned []int
	}{
		{"no beats", []int{}},
		{"nil beats", nil},
		{"one beat", []int{800}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeHRV(CleaningResult{Cleaned: tt.cleaned}); got != nil {
				t.Errorf("ComputeHRV() = %+v, want nil", got)
			}
		})
	}
}

func TestComputeHRV(t *testing.T) {
	tests := []struct {
		name    string
		cleaned []int
		want    HRVMetrics
	}{
		{
			name:    "small variation",
			cleaned: []int{800, 810, 790, 800},
			// diffs 10,20,10 -> sqrt(600/3)
			want: HRVMetrics{RMSSD: 14.14, SDNN: 7.07, PNN50: 0, CV: 0.9, MeanRR: 800, HeartRate: 75},
		},
		{
			name:    "alternating 100ms",
			cleaned: []int{1000, 900, 1000, 900},
			want:    HRVMetrics{RMSSD: 100, SDNN: 50, PNN50: 100, CV: 5.3, MeanRR: 950, HeartRate: 63.2},
		},
		{
			name:    "steady rhythm",
			cleaned: repeatRR(800, 50),
			want:    HRVMetrics{RMSSD: 0, SDNN: 0, PNN50: 0, CV: 0, MeanRR: 800, HeartRate: 75},
		},
		{
			name:    "one successive difference over 50ms",
			cleaned: []int{800, 860, 870},
			// diffs 60,10 -> pnn50 = 1/2
			want: HRVMetrics{RMSSD: 43.01, SDNN: 30.91, PNN50: 50, CV: 3.7, MeanRR: 843.33, HeartRate: 71.1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeHRV(CleaningResult{Cleaned: tt.cleaned})
			if got == nil {
				t.Fatal("ComputeHRV() = nil, want metrics")
			}

			check := func(field string, got, want float64) {
				if math.Abs(got-want) > 1e-9 {
					t.Errorf("%s = %v, want %v", field, got, want)
				}
			}
			check("RMSSD", got.RMSSD, tt.want.RMSSD)
			check("SDNN", got.SDNN, tt.want.SDNN)
			check("PNN50", got.PNN50, tt.want.PNN50)
			check("CV", got.CV, tt.want.CV)
			check("MeanRR", got.MeanRR, tt.want.MeanRR)
			check("HeartRate", got.HeartRate, tt.want.HeartRate)
		})
	}
}

func TestComputeHRV_FromCleaner(t *testing.T) {
	cleaning := CleanRR(append(repeatRR(800, 40), 250), DefaultCleanOptions())

	metrics := ComputeHRV(cleaning)
	if metrics == nil {
		t.Fatal("ComputeHRV() = nil, want metrics")
	}
	if metrics.MeanRR != 800 {
		t.Errorf("MeanRR = %v, want 800 (artifact must not be included)", metrics.MeanRR)
	}
}

func TestComputeHRV_RoundingPrecision(t *testing.T) {
	metrics := ComputeHRV(CleaningResult{Cleaned: []int{812, 845, 799, 901, 856, 777}})
	if metrics == nil {
		t.Fatal("ComputeHRV() = nil")
	}

	for name, v := range map[string]float64{"RMSSD": metrics.RMSSD, "SDNN": metrics.SDNN, "MeanRR": metrics.MeanRR} {
		if math.Abs(v*100-math.Round(v*100)) > 1e-6 {
			t.Errorf("%s = %v has more than 2 decimals", name, v)
		}
	}
	for name, v := range map[string]float64{"PNN50": metrics.PNN50, "CV": metrics.CV, "HeartRate": metrics.HeartRate} {
		if math.Abs(v*10-math.Round(v*10)) > 1e-6 {
			t.Errorf("%s = %v has more than 1 decimal", name, v)
		}
	}
}
