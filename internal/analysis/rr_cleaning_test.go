package analysis

import (
	"strings"
	"testing"
)

func repeatRR(v, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func hasWarning(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func TestDefaultCleanOptions(t *testing.T) {
	opts := DefaultCleanOptions()

	if opts.MinRR != 300 {
		t.Errorf("MinRR = %d, want 300", opts.MinRR)
	}
	if opts.MaxRR != 2000 {
		t.Errorf("MaxRR = %d, want 2000", opts.MaxRR)
	}
	if opts.ThresholdPercent != 20 {
		t.Errorf("ThresholdPercent = %v, want 20", opts.ThresholdPercent)
	}
}

func TestCleanRR_Empty(t *testing.T) {
	result := CleanRR([]int{}, DefaultCleanOptions())

	if result.IsValid {
		t.Error("empty input should not be valid")
	}
	if len(result.Cleaned) != 0 {
		t.Errorf("Cleaned = %v, want empty", result.Cleaned)
	}
	if result.ArtifactCount != 0 || result.ArtifactPercentage != 0 {
		t.Errorf("artifacts = %d (%.1f%%), want 0", result.ArtifactCount, result.ArtifactPercentage)
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a warning for empty input")
	}

	// nil behaves the same
	if r := CleanRR(nil, DefaultCleanOptions()); r.IsValid || len(r.Warnings) == 0 {
		t.Error("nil input should be invalid with a warning")
	}
}

func TestCleanRR(t *testing.T) {
	tests := []struct {
		name          string
		raw           []int
		opts          CleanOptions
		wantCleaned   []int
		wantArtifacts int
		wantPercent   float64
		wantValid     bool
		wantWarnings  []string
	}{
		{
			name:          "steady rhythm has no artifacts",
			raw:           repeatRR(800, 50),
			opts:          DefaultCleanOptions(),
			wantCleaned:   repeatRR(800, 50),
			wantArtifacts: 0,
			wantPercent:   0,
			wantValid:     true,
		},
		{
			name: "range and quotient artifacts",
			// 250 and 2500 out of range; 1200 jumps 48% from 810
			raw:           []int{800, 250, 810, 2500, 1200, 805},
			opts:          DefaultCleanOptions(),
			wantCleaned:   []int{800, 810, 805},
			wantArtifacts: 3,
			wantPercent:   50,
			wantValid:     false,
			wantWarnings:  []string{"High artifact rate", "Insufficient clean beats"},
		},
		{
			name: "rejected beat does not become the reference",
			// both 1000s are compared against 800, not against each other
			raw:           append(repeatRR(800, 40), 1000, 1000),
			opts:          DefaultCleanOptions(),
			wantCleaned:   repeatRR(800, 40),
			wantArtifacts: 2,
			wantPercent:   2.0 / 42.0 * 100,
			wantValid:     true,
		},
		{
			name:          "first in-range beat seeds the filter",
			raw:           []int{100, 800, 810},
			opts:          DefaultCleanOptions(),
			wantCleaned:   []int{800, 810},
			wantArtifacts: 1,
			wantPercent:   100.0 / 3.0,
			wantValid:     false,
			wantWarnings:  []string{"High artifact rate", "Insufficient clean beats"},
		},
		{
			name:          "single beat",
			raw:           []int{800},
			opts:          DefaultCleanOptions(),
			wantCleaned:   []int{800},
			wantArtifacts: 0,
			wantPercent:   0,
			wantValid:     true,
			wantWarnings:  []string{"Insufficient clean beats"},
		},
		{
			name:          "all out of range",
			raw:           []int{100, 200, 5000},
			opts:          DefaultCleanOptions(),
			wantCleaned:   []int{},
			wantArtifacts: 3,
			wantPercent:   100,
			wantValid:     false,
			wantWarnings:  []string{"High artifact rate"},
		},
		{
			name:          "gradual drift within threshold is kept",
			raw:           []int{800, 900, 1000, 1100, 1200},
			opts:          DefaultCleanOptions(),
			wantCleaned:   []int{800, 900, 1000, 1100, 1200},
			wantArtifacts: 0,
			wantPercent:   0,
			wantValid:     true,
			wantWarnings:  []string{"Insufficient clean beats"},
		},
		{
			name:          "custom tighter threshold",
			raw:           []int{800, 900, 810},
			opts:          CleanOptions{MinRR: 300, MaxRR: 2000, ThresholdPercent: 5},
			wantCleaned:   []int{800, 810},
			wantArtifacts: 1,
			wantPercent:   100.0 / 3.0,
			wantValid:     false,
			wantWarnings:  []string{"High artifact rate", "Insufficient clean beats"},
		},
		{
			name:          "zero options fall back to defaults",
			raw:           []int{250, 800, 805},
			opts:          CleanOptions{},
			wantCleaned:   []int{800, 805},
			wantArtifacts: 1,
			wantPercent:   100.0 / 3.0,
			wantValid:     false,
			wantWarnings:  []string{"High artifact rate", "Insufficient clean beats"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanRR(tt.raw, tt.opts)

			if len(result.Cleaned) != len(tt.wantCleaned) {
				t.Fatalf("Cleaned = %v, want %v", result.Cleaned, tt.wantCleaned)
			}
			for i := range tt.wantCleaned {
				if result.Cleaned[i] != tt.wantCleaned[i] {
					t.Errorf("Cleaned[%d] = %d, want %d", i, result.Cleaned[i], tt.wantCleaned[i])
				}
			}
			if result.ArtifactCount != tt.wantArtifacts {
				t.Errorf("ArtifactCount = %d, want %d", result.ArtifactCount, tt.wantArtifacts)
			}
			if diff := result.ArtifactPercentage - tt.wantPercent; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("ArtifactPercentage = %v, want %v", result.ArtifactPercentage, tt.wantPercent)
			}
			if result.IsValid != tt.wantValid {
				t.Errorf("IsValid = %v, want %v", result.IsValid, tt.wantValid)
			}
			for _, w := range tt.wantWarnings {
				if !hasWarning(result.Warnings, w) {
					t.Errorf("Warnings = %v, want one containing %q", result.Warnings, w)
				}
			}
			if len(tt.wantWarnings) == 0 && len(result.Warnings) != 0 {
				t.Errorf("Warnings = %v, want none", result.Warnings)
			}
			if len(result.Original) != len(tt.raw) {
				t.Errorf("Original has %d beats, want %d", len(result.Original), len(tt.raw))
			}
		})
	}
}

func TestCleanRR_WarningNamesThreshold(t *testing.T) {
	result := CleanRR([]int{800, 250, 810, 805}, DefaultCleanOptions())

	if !hasWarning(result.Warnings, "25.0%") {
		t.Errorf("warning should name the artifact percentage, got %v", result.Warnings)
	}
	if !hasWarning(result.Warnings, "max 5%") {
		t.Errorf("warning should name the threshold, got %v", result.Warnings)
	}
}

func TestCleanRR_DoesNotAliasInput(t *testing.T) {
	raw := []int{800, 810, 820}
	result := CleanRR(raw, DefaultCleanOptions())

	raw[0] = 1
	if result.Original[0] != 800 {
		t.Errorf("Original[0] = %d after mutating input, want 800", result.Original[0])
	}
}
