package analysis

import (
	"math"
	"testing"
)

func TestEstimateBaseline(t *testing.T) {
	tests := []struct {
		name       string
		values     []float64
		windowDays int
		want       Baseline
	}{
		{
			name:       "empty input is the zero baseline",
			values:     nil,
			windowDays: 7,
			want:       Baseline{Mean: 0, StdDev: 0, Count: 0, Days: 7},
		},
		{
			name:       "uses only the last window values",
			values:     []float64{50, 52, 48, 60, 55, 58, 62, 70},
			windowDays: 7,
			// mean of 52..70, the leading 50 is ignored
			want: Baseline{Mean: 57.86, StdDev: 6.64, Count: 7, Days: 7},
		},
		{
			name:       "fewer values than the window",
			values:     []float64{40, 60},
			windowDays: 7,
			want:       Baseline{Mean: 50, StdDev: 10, Count: 2, Days: 7},
		},
		{
			name:       "single value",
			values:     []float64{55},
			windowDays: 7,
			want:       Baseline{Mean: 55, StdDev: 0, Count: 1, Days: 7},
		},
		{
			name:       "zero window falls back to default",
			values:     []float64{50, 52, 48, 60, 55, 58, 62, 70},
			windowDays: 0,
			want:       Baseline{Mean: 57.86, StdDev: 6.64, Count: 7, Days: 7},
		},
		{
			name:       "short window",
			values:     []float64{10, 20, 30, 40},
			windowDays: 2,
			want:       Baseline{Mean: 35, StdDev: 5, Count: 2, Days: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateBaseline(tt.values, tt.windowDays)

			if math.Abs(got.Mean-tt.want.Mean) > 1e-9 {
				t.Errorf("Mean = %v, want %v", got.Mean, tt.want.Mean)
			}
			if math.Abs(got.StdDev-tt.want.StdDev) > 1e-9 {
				t.Errorf("StdDev = %v, want %v", got.StdDev, tt.want.StdDev)
			}
			if got.Count != tt.want.Count {
				t.Errorf("Count = %d, want %d", got.Count, tt.want.Count)
			}
			if got.Days != tt.want.Days {
				t.Errorf("Days = %d, want %d", got.Days, tt.want.Days)
			}
		})
	}
}

func TestEstimateBaseline_Idempotent(t *testing.T) {
	values := []float64{50, 52, 48, 60, 55, 58, 62, 70}
	snapshot := append([]float64(nil), values...)

	first := EstimateBaseline(values, 7)
	second := EstimateBaseline(values, 7)

	if first != second {
		t.Errorf("EstimateBaseline not idempotent: %+v then %+v", first, second)
	}
	for i := range values {
		if values[i] != snapshot[i] {
			t.Fatalf("input modified at %d: %v", i, values)
		}
	}
}

func TestBaselineHasData(t *testing.T) {
	if (Baseline{Days: 7}).HasData() {
		t.Error("zero baseline should report no data")
	}
	if !EstimateBaseline([]float64{50}, 7).HasData() {
		t.Error("baseline with one value should report data")
	}
}

func TestChronological(t *testing.T) {
	got := Chronological([]float64{70, 62, 58})
	want := []float64{58, 62, 70}

	if len(got) != len(want) {
		t.Fatalf("Chronological() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Chronological()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if len(Chronological(nil)) != 0 {
		t.Error("Chronological(nil) should be empty")
	}
}
