package tui

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"fuelwave/internal/config"
)

const (
	mlPerFluidOunce = 29.5735
	kJPerKcal       = 4.184
)

// Units provides unit conversion and formatting based on user preferences
type Units struct {
	cfg config.DisplayConfig
}

// NewUnits creates a new Units helper with the given display config
func NewUnits(cfg config.DisplayConfig) Units {
	return Units{cfg: cfg}
}

// FormatFluid formats a volume in millilitres in the preferred unit
func (u Units) FormatFluid(ml float64) string {
	if u.IsOunces() {
		return fmt.Sprintf("%.0f oz", ml/mlPerFluidOunce)
	}
	if math.Abs(ml) >= 1000 {
		return fmt.Sprintf("%.1f L", ml/1000)
	}
	return fmt.Sprintf("%.0f ml", ml)
}

// FormatFluidValue returns just the numeric fluid value (no unit label)
func (u Units) FormatFluidValue(ml float64) string {
	if u.IsOunces() {
		return fmt.Sprintf("%.0f", ml/mlPerFluidOunce)
	}
	return fmt.Sprintf("%.0f", ml)
}

// FluidLabel returns the short fluid unit label ("oz" or "ml")
func (u Units) FluidLabel() string {
	if u.IsOunces() {
		return "oz"
	}
	return "ml"
}

// FormatEnergy formats kilocalories in the preferred unit with thousands
// separators
func (u Units) FormatEnergy(kcal float64) string {
	return humanize.Comma(int64(math.Round(u.energyValue(kcal)))) + " " + u.EnergyLabel()
}

// FormatEnergyDelta formats a signed energy balance, "+" for surplus
func (u Units) FormatEnergyDelta(kcal float64) string {
	s := u.FormatEnergy(kcal)
	if math.Round(u.energyValue(kcal)) > 0 {
		return "+" + s
	}
	return s
}

// EnergyLabel returns the energy unit label ("kJ" or "kcal")
func (u Units) EnergyLabel() string {
	if u.cfg.EnergyUnit == "kJ" {
		return "kJ"
	}
	return "kcal"
}

// IsOunces returns true if fluids are shown in fluid ounces
func (u Units) IsOunces() bool {
	return u.cfg.FluidUnit == "oz"
}

func (u Units) energyValue(kcal float64) float64 {
	if u.cfg.EnergyUnit == "kJ" {
		return kcal * kJPerKcal
	}
	return kcal
}
