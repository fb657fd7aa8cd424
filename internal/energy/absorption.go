package energy

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"
)

// AbsorptionProfile parameterises a gamma-shaped rate of appearance curve
type AbsorptionProfile struct {
	ID              string
	Label           string
	DelayMinutes    float64
	PeakMinutes     float64
	DurationMinutes float64
	K               float64 // gamma shape, must be > 1
}

// Absorption profile catalog
var (
	ProfileSimple = AbsorptionProfile{
		ID:              "simple",
		Label:           "Simple / liquid",
		DelayMinutes:    5,
		PeakMinutes:     20,
		DurationMinutes: 180,
		K:               2,
	}
	ProfileIntermediate = AbsorptionProfile{
		ID:              "intermediate",
		Label:           "Intermediate",
		DelayMinutes:    10,
		PeakMinutes:     40,
		DurationMinutes: 240,
		K:               3,
	}
	ProfileComplex = AbsorptionProfile{
		ID:              "complex",
		Label:           "Complex / mixed meal",
		DelayMinutes:    15,
		PeakMinutes:     60,
		DurationMinutes: 300,
		K:               4,
	}
)

// ProfileByID looks up a catalog profile
func ProfileByID(id string) (AbsorptionProfile, bool) {
	switch strings.ToLower(strings.TrimSpace(id)) {
	case ProfileSimple.ID, "fast":
		return ProfileSimple, true
	case ProfileIntermediate.ID, "medium":
		return ProfileIntermediate, true
	case ProfileComplex.ID, "slow":
		return ProfileComplex, true
	}
	return AbsorptionProfile{}, false
}

// RateOfAppearance returns grams per minute appearing at the given minute after
// consumption. The curve integrates to totalGrams over infinite time.
func RateOfAppearance(minutesSinceConsumption, totalGrams float64, p AbsorptionProfile) float64 {
	t := minutesSinceConsumption - p.DelayMinutes
	if t <= 0 || totalGrams <= 0 || p.K <= 1 || p.PeakMinutes <= 0 {
		return 0
	}
	theta := p.PeakMinutes / (p.K - 1)
	// (k-1)! generalised to non-integer shapes
	norm := math.Pow(theta, p.K) * math.Gamma(p.K)
	return totalGrams * math.Pow(t, p.K-1) * math.Exp(-t/theta) / norm
}

// AbsorbedInInterval approximates grams absorbed between t1 and t2 minutes after
// consumption using the rate at the interval midpoint. First-order only: fine at the
// 15 minute step, drifts for wide intervals.
func AbsorbedInInterval(t1, t2, totalGrams float64, p AbsorptionProfile) float64 {
	if t2 <= t1 {
		return 0
	}
	mid := (t1 + t2) / 2
	return RateOfAppearance(mid, totalGrams, p) * (t2 - t1)
}

// CarbsOnBoard returns carbohydrate eaten at or before now that has not yet appeared,
// integrating each item's curve in step-sized slices.
func CarbsOnBoard(items []ResolvedFood, now time.Time) float64 {
	var remaining float64
	for _, it := range items {
		if it.At.After(now) || it.Food.CarbsGrams <= 0 {
			continue
		}
		elapsed := now.Sub(it.At).Minutes()
		if elapsed >= it.Profile.DurationMinutes {
			continue
		}
		var absorbed float64
		for t := 0.0; t < elapsed; t += StepMinutes {
			end := math.Min(t+StepMinutes, elapsed)
			absorbed += AbsorbedInInterval(t, end, it.Food.CarbsGrams, it.Profile)
		}
		remaining += math.Max(0, it.Food.CarbsGrams-absorbed)
	}
	return remaining
}

// ClassificationRule maps a keyword set to a profile
type ClassificationRule struct {
	Profile  string   `yaml:"profile"`
	Keywords []string `yaml:"keywords"`
}

// Classifier picks an absorption profile from a food name.
// Rules are checked in order and the first match wins.
type Classifier struct {
	Rules    []ClassificationRule
	Fallback AbsorptionProfile
}

// DefaultClassifier orders slow profiles first so mixed foods lean conservative
func DefaultClassifier() Classifier {
	return Classifier{
		Rules: []ClassificationRule{
			{
				Profile: ProfileComplex.ID,
				Keywords: []string{
					"oat", "oatmeal", "porridge", "muesli", "granola", "whole grain", "wholegrain",
					"wholemeal", "brown rice", "quinoa", "barley", "lentil", "bean", "chickpea",
					"sweet potato", "pizza", "burrito", "lasagna", "steak", "chicken", "salmon",
					"egg", "avocado", "nut", "peanut butter",
				},
			},
			{
				Profile: ProfileIntermediate.ID,
				Keywords: []string{
					"bread", "toast", "bagel", "rice", "pasta", "noodle", "potato", "cereal",
					"cracker", "pretzel", "banana", "apple", "orange", "fruit", "date", "raisin",
					"fig", "waffle", "pancake", "muffin", "bar", "rice cake", "yogurt", "couscous",
				},
			},
			{
				Profile: ProfileSimple.ID,
				Keywords: []string{
					"gel", "chew", "gummy", "candy", "sweet", "honey", "jam", "syrup", "sugar",
					"glucose", "dextrose", "maltodextrin", "juice", "soda", "cola", "sports drink",
					"energy drink", "isotonic", "drink mix", "smoothie", "lemonade",
				},
			},
		},
		Fallback: ProfileComplex,
	}
}

type ruleFile struct {
	Rules    []ClassificationRule `yaml:"rules"`
	Fallback string               `yaml:"fallback"`
}

// LoadClassifier reads an ordered rule table from YAML:
//
//	fallback: complex
//	rules:
//	  - profile: simple
//	    keywords: [gel, sports drink]
func LoadClassifier(r io.Reader) (Classifier, error) {
	var f ruleFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return Classifier{}, fmt.Errorf("decoding classifier rules: %w", err)
	}
	c := Classifier{Fallback: ProfileComplex}
	if f.Fallback != "" {
		p, ok := ProfileByID(f.Fallback)
		if !ok {
			return Classifier{}, fmt.Errorf("unknown fallback profile %q", f.Fallback)
		}
		c.Fallback = p
	}
	for i, rule := range f.Rules {
		if _, ok := ProfileByID(rule.Profile); !ok {
			return Classifier{}, fmt.Errorf("rule %d: unknown profile %q", i, rule.Profile)
		}
		if len(rule.Keywords) == 0 {
			return Classifier{}, fmt.Errorf("rule %d: no keywords", i)
		}
		c.Rules = append(c.Rules, rule)
	}
	return c, nil
}

// Classify returns the profile of the first rule with a keyword in name
func (c Classifier) Classify(name string) AbsorptionProfile {
	text := " " + strings.Join(tokenize(name), " ") + " "
	for _, rule := range c.Rules {
		for _, kw := range rule.Keywords {
			if matchesKeyword(text, kw) {
				if p, ok := ProfileByID(rule.Profile); ok {
					return p
				}
			}
		}
	}
	if c.Fallback.K == 0 {
		return ProfileComplex
	}
	return c.Fallback
}

// ClassifyFood uses the default rule table
func ClassifyFood(name string) AbsorptionProfile {
	return DefaultClassifier().Classify(name)
}

// ProfileFor returns the item's explicit profile tag, or classifies it by name
func (c Classifier) ProfileFor(f FoodIntakeEvent) AbsorptionProfile {
	if p, ok := ProfileByID(f.Profile); ok {
		return p
	}
	return c.Classify(f.Name)
}

func matchesKeyword(text, kw string) bool {
	kw = strings.Join(tokenize(kw), " ")
	if kw == "" {
		return false
	}
	return strings.Contains(text, " "+kw+" ") ||
		strings.Contains(text, " "+kw+"s ") ||
		strings.Contains(text, " "+kw+"es ")
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
