package analysis

import (
	"testing"
)

func constantWatts(w, seconds int) []int {
	out := make([]int, seconds)
	for i := range out {
		out[i] = w
	}
	return out
}

func TestFindBestEffort_BasicCase(t *testing.T) {
	// 10 min easy, 5 min hard, 10 min easy
	watts := constantWatts(180, 600)
	watts = append(watts, constantWatts(350, 300)...)
	watts = append(watts, constantWatts(180, 600)...)

	effort := FindBestEffort(watts, 300)
	if effort == nil {
		t.Fatal("Expected to find a best effort, got nil")
	}

	if effort.AvgPower != 350 {
		t.Errorf("AvgPower = %v, want 350", effort.AvgPower)
	}
	if effort.StartOffset != 600 || effort.EndOffset != 899 {
		t.Errorf("window = [%d, %d], want [600, 899]", effort.StartOffset, effort.EndOffset)
	}
	if effort.DurationSeconds != 300 {
		t.Errorf("DurationSeconds = %d, want 300", effort.DurationSeconds)
	}
}

func TestFindBestEffort_PartialOverlap(t *testing.T) {
	// 3 min hard block is shorter than the 5 min window
	watts := constantWatts(200, 600)
	watts = append(watts, constantWatts(400, 180)...)
	watts = append(watts, constantWatts(200, 600)...)

	effort := FindBestEffort(watts, 300)
	if effort == nil {
		t.Fatal("Expected to find a best effort, got nil")
	}

	// 180s at 400 + 120s at 200 over 300s
	if effort.AvgPower != 320 {
		t.Errorf("AvgPower = %v, want 320", effort.AvgPower)
	}
}

func TestFindBestEffort_TooShort(t *testing.T) {
	if effort := FindBestEffort(constantWatts(300, 120), 180); effort != nil {
		t.Error("Expected nil for ride shorter than window")
	}
}

func TestFindBestEffort_EmptyStreams(t *testing.T) {
	if effort := FindBestEffort(nil, 180); effort != nil {
		t.Error("Expected nil for empty stream")
	}
}

func TestFindBestEffort_InsufficientPoints(t *testing.T) {
	if effort := FindBestEffort(constantWatts(300, 5), 3); effort != nil {
		t.Error("Expected nil with fewer than MinPointsForEffort samples")
	}
}

func TestFindBestEffort_NoPower(t *testing.T) {
	if effort := FindBestEffort(constantWatts(0, 600), 180); effort != nil {
		t.Error("Expected nil for a ride with no power")
	}
}

func TestFindBestEfforts(t *testing.T) {
	efforts := FindBestEfforts(constantWatts(250, 700), EffortDurations)

	// 700s ride covers 180, 300 and 600 but not 720 or 1200
	if len(efforts) != 3 {
		t.Fatalf("len(efforts) = %d, want 3", len(efforts))
	}
	for _, e := range efforts {
		if e.AvgPower != 250 {
			t.Errorf("effort %ds AvgPower = %v, want 250", e.DurationSeconds, e.AvgPower)
		}
	}

	points := MeanMaximalPoints(efforts)
	if len(points) != 3 || points[0].Duration != 180 || points[0].Power != 250 {
		t.Errorf("MeanMaximalPoints() = %+v", points)
	}
}

func TestEffortDurationsInTrustedBand(t *testing.T) {
	for _, d := range EffortDurations {
		if d < MinTrustedDuration || d > MaxTrustedDuration {
			t.Errorf("effort duration %d outside trusted band", d)
		}
	}
}

func TestResampleTo1Hz(t *testing.T) {
	tests := []struct {
		name     string
		times    []int
		watts    []int
		expected []int
	}{
		{
			name:     "already 1 Hz",
			times:    []int{0, 1, 2},
			watts:    []int{100, 200, 300},
			expected: []int{100, 200, 300},
		},
		{
			name:     "short gap forward filled",
			times:    []int{0, 3, 4},
			watts:    []int{100, 200, 300},
			expected: []int{100, 100, 100, 200, 300},
		},
		{
			name:     "long gap zero filled",
			times:    []int{0, 7},
			watts:    []int{100, 200},
			expected: []int{100, 0, 0, 0, 0, 0, 0, 200},
		},
		{
			name:     "offset start",
			times:    []int{10, 11},
			watts:    []int{150, 160},
			expected: []int{150, 160},
		},
		{
			name:     "mismatched lengths use the shorter",
			times:    []int{0, 1, 2},
			watts:    []int{100, 200},
			expected: []int{100, 200},
		},
		{
			name:     "empty",
			times:    nil,
			watts:    nil,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResampleTo1Hz(tt.times, tt.watts)
			if len(got) != len(tt.expected) {
				t.Fatalf("ResampleTo1Hz() = %v, want %v", got, tt.expected)
			}
			for i := range tt.expected {
				if got[i] != tt.expected[i] {
					t.Errorf("ResampleTo1Hz()[%d] = %d, want %d", i, got[i], tt.expected[i])
				}
			}
		})
	}
}
