package energy

// DefaultIntensity is assumed for sessions with no heart rate or power data
const DefaultIntensity = 0.65

// HRZones represents athlete's heart rate zones
type HRZones struct {
	RestingHR   float64
	MaxHR       float64
	ThresholdHR float64 // lactate threshold; zero uses 88% of max
}

// DefaultZones returns sensible defaults if not configured
func DefaultZones() HRZones {
	return HRZones{
		RestingHR: 50,
		MaxHR:     185,
	}
}

func (z HRZones) threshold() float64 {
	if z.ThresholdHR > 0 {
		return z.ThresholdHR
	}
	return 0.88 * z.MaxHR
}

// IntensityFromHR maps average heart rate onto a fraction of threshold using
// heart rate reserve: (avg - rest) / (threshold - rest), clamped to [0, 1].
func IntensityFromHR(avgHR float64, z HRZones) float64 {
	if avgHR <= 0 {
		return 0
	}
	reserve := z.threshold() - z.RestingHR
	if reserve <= 0 {
		return 0
	}
	return clamp((avgHR-z.RestingHR)/reserve, 0, 1)
}

// IntensityFromPower is average power over FTP, clamped to [0, 1]
func IntensityFromPower(avgWatts, ftp float64) float64 {
	if avgWatts <= 0 || ftp <= 0 {
		return 0
	}
	return clamp(avgWatts/ftp, 0, 1)
}

// EstimateIntensity prefers power, then heart rate, then DefaultIntensity.
// The second result reports whether any measured data was used.
func EstimateIntensity(avgHR, avgWatts, ftp float64, z HRZones) (float64, bool) {
	if i := IntensityFromPower(avgWatts, ftp); i > 0 {
		return roundTo(i, 2), true
	}
	if i := IntensityFromHR(avgHR, z); i > 0 {
		return roundTo(i, 2), true
	}
	return DefaultIntensity, false
}
