package energy

import (
	"math"
	"strings"
	"testing"
	"time"
)

func TestRateOfAppearance(t *testing.T) {
	tests := []struct {
		name     string
		minutes  float64
		grams    float64
		profile  AbsorptionProfile
		expected float64
		delta    float64
	}{
		{
			name:     "before delay",
			minutes:  4,
			grams:    100,
			profile:  ProfileSimple,
			expected: 0,
			delta:    0,
		},
		{
			name:     "at delay",
			minutes:  5,
			grams:    100,
			profile:  ProfileSimple,
			expected: 0,
			delta:    0,
		},
		{
			// t = 20, theta = 20, k = 2
			// rate = 100 * 20 * e^-1 / (20^2 * 1!) = 1.839
			name:     "simple at peak",
			minutes:  25,
			grams:    100,
			profile:  ProfileSimple,
			expected: 1.839,
			delta:    0.01,
		},
		{
			name:     "zero grams",
			minutes:  60,
			grams:    0,
			profile:  ProfileComplex,
			expected: 0,
			delta:    0,
		},
		{
			name:     "degenerate shape",
			minutes:  60,
			grams:    50,
			profile:  AbsorptionProfile{DelayMinutes: 0, PeakMinutes: 30, K: 1},
			expected: 0,
			delta:    0,
		},
		{
			name:     "zero peak",
			minutes:  60,
			grams:    50,
			profile:  AbsorptionProfile{DelayMinutes: 0, PeakMinutes: 0, K: 3},
			expected: 0,
			delta:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RateOfAppearance(tt.minutes, tt.grams, tt.profile)
			if math.IsNaN(result) || math.IsInf(result, 0) {
				t.Fatalf("RateOfAppearance() = %v, want finite", result)
			}
			if math.Abs(result-tt.expected) > tt.delta {
				t.Errorf("RateOfAppearance() = %v, want %v (±%v)", result, tt.expected, tt.delta)
			}
		})
	}
}

func TestRateOfAppearancePeaks(t *testing.T) {
	for _, p := range []AbsorptionProfile{ProfileSimple, ProfileIntermediate, ProfileComplex} {
		t.Run(p.ID, func(t *testing.T) {
			peak := p.DelayMinutes + p.PeakMinutes
			atPeak := RateOfAppearance(peak, 100, p)
			if before := RateOfAppearance(peak-10, 100, p); before >= atPeak {
				t.Errorf("rate 10 min before peak = %v, want below %v", before, atPeak)
			}
			if after := RateOfAppearance(peak+10, 100, p); after >= atPeak {
				t.Errorf("rate 10 min after peak = %v, want below %v", after, atPeak)
			}
		})
	}
}

func TestAbsorbedInIntervalIntegratesToTotal(t *testing.T) {
	const total = 100.0
	for _, p := range []AbsorptionProfile{ProfileSimple, ProfileIntermediate, ProfileComplex} {
		t.Run(p.ID, func(t *testing.T) {
			var sum float64
			for t1 := 0.0; t1 < p.DurationMinutes; t1 += StepMinutes {
				sum += AbsorbedInInterval(t1, t1+StepMinutes, total, p)
			}
			if math.Abs(sum-total) > 2 {
				t.Errorf("sum of intervals = %v, want %v (±2)", sum, total)
			}
		})
	}
}

func TestAbsorbedInIntervalEmpty(t *testing.T) {
	if got := AbsorbedInInterval(30, 30, 100, ProfileSimple); got != 0 {
		t.Errorf("AbsorbedInInterval(30, 30) = %v, want 0", got)
	}
	if got := AbsorbedInInterval(45, 30, 100, ProfileSimple); got != 0 {
		t.Errorf("AbsorbedInInterval(45, 30) = %v, want 0", got)
	}
}

func TestClassifyFood(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"Oatmeal with banana", ProfileComplex.ID},
		{"Brown rice", ProfileComplex.ID},
		{"Sweet potato", ProfileComplex.ID},
		{"White rice", ProfileIntermediate.ID},
		{"Bagel", ProfileIntermediate.ID},
		{"Potatoes", ProfileIntermediate.ID},
		{"Medjool dates", ProfileIntermediate.ID},
		{"Energy gel", ProfileSimple.ID},
		{"Gels", ProfileSimple.ID},
		{"Sports drink", ProfileSimple.ID},
		{"COLA", ProfileSimple.ID},
		{"Mystery casserole", ProfileComplex.ID},
		{"", ProfileComplex.ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyFood(tt.name).ID; got != tt.expected {
				t.Errorf("ClassifyFood(%q) = %q, want %q", tt.name, got, tt.expected)
			}
		})
	}
}

func TestProfileForExplicitTag(t *testing.T) {
	c := DefaultClassifier()
	f := FoodIntakeEvent{Name: "Oatmeal", Profile: "fast"}
	if got := c.ProfileFor(f).ID; got != ProfileSimple.ID {
		t.Errorf("ProfileFor() = %q, want %q", got, ProfileSimple.ID)
	}

	f.Profile = "unknown"
	if got := c.ProfileFor(f).ID; got != ProfileComplex.ID {
		t.Errorf("ProfileFor() with unknown tag = %q, want %q", got, ProfileComplex.ID)
	}
}

func TestLoadClassifier(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
		check   func(t *testing.T, c Classifier)
	}{
		{
			name: "rules in order",
			yaml: `
fallback: intermediate
rules:
  - profile: simple
    keywords: [gel, "sports drink"]
  - profile: complex
    keywords: [pizza]
`,
			check: func(t *testing.T, c Classifier) {
				if len(c.Rules) != 2 {
					t.Fatalf("got %d rules, want 2", len(c.Rules))
				}
				if got := c.Classify("Maurten gel").ID; got != ProfileSimple.ID {
					t.Errorf("Classify(gel) = %q, want simple", got)
				}
				if got := c.Classify("Toast").ID; got != ProfileIntermediate.ID {
					t.Errorf("Classify(toast) = %q, want fallback intermediate", got)
				}
			},
		},
		{
			name: "default fallback",
			yaml: "rules: []\n",
			check: func(t *testing.T, c Classifier) {
				if got := c.Classify("Gel").ID; got != ProfileComplex.ID {
					t.Errorf("Classify() = %q, want complex", got)
				}
			},
		},
		{
			name:    "unknown profile",
			yaml:    "rules:\n  - profile: turbo\n    keywords: [gel]\n",
			wantErr: "unknown profile",
		},
		{
			name:    "empty keywords",
			yaml:    "rules:\n  - profile: simple\n",
			wantErr: "no keywords",
		},
		{
			name:    "unknown fallback",
			yaml:    "fallback: instant\n",
			wantErr: "unknown fallback",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := LoadClassifier(strings.NewReader(tt.yaml))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("LoadClassifier() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadClassifier() error = %v", err)
			}
			tt.check(t, c)
		})
	}
}

func TestCarbsOnBoard(t *testing.T) {
	eaten := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	items := []ResolvedFood{{
		Food:    FoodIntakeEvent{Name: "Bagel", CarbsGrams: 60},
		At:      eaten,
		Profile: ProfileIntermediate,
	}}

	tests := []struct {
		name  string
		now   time.Time
		check func(t *testing.T, cob float64)
	}{
		{
			name: "not yet eaten",
			now:  eaten.Add(-time.Minute),
			check: func(t *testing.T, cob float64) {
				if cob != 0 {
					t.Errorf("CarbsOnBoard() = %v, want 0", cob)
				}
			},
		},
		{
			name: "just eaten",
			now:  eaten,
			check: func(t *testing.T, cob float64) {
				if cob != 60 {
					t.Errorf("CarbsOnBoard() = %v, want 60", cob)
				}
			},
		},
		{
			name: "partly absorbed",
			now:  eaten.Add(90 * time.Minute),
			check: func(t *testing.T, cob float64) {
				if cob <= 0 || cob >= 60 {
					t.Errorf("CarbsOnBoard() = %v, want between 0 and 60", cob)
				}
			},
		},
		{
			name: "fully absorbed",
			now:  eaten.Add(5 * time.Hour),
			check: func(t *testing.T, cob float64) {
				if cob != 0 {
					t.Errorf("CarbsOnBoard() = %v, want 0", cob)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, CarbsOnBoard(items, tt.now))
		})
	}
}

func TestProfileByID(t *testing.T) {
	if _, ok := ProfileByID("nope"); ok {
		t.Error("ProfileByID(nope) ok = true, want false")
	}
	p, ok := ProfileByID(" Slow ")
	if !ok || p.ID != ProfileComplex.ID {
		t.Errorf("ProfileByID(Slow) = %v, %v, want complex", p.ID, ok)
	}
}
