package aqi

// Compute calculates the sub-index for a pollutant concentration. The second
// result is false when the pollutant is unrecognized or the concentration
// matches no breakpoint segment (negative values and NaN).
//
// A concentration on a shared boundary belongs to the lower segment.
func Compute(concentration float64, p Pollutant) (float64, bool) {
	s, ok := scales[p]
	if !ok || len(s.Segments) == 0 {
		return 0, false
	}

	for i, bp := range s.Segments {
		if i == 0 {
			if concentration >= bp.CpLow && concentration <= bp.CpHigh {
				return bp.interpolate(concentration), true
			}
			continue
		}
		if concentration > bp.CpLow && concentration <= bp.CpHigh {
			return bp.interpolate(concentration), true
		}
	}

	last := s.Segments[len(s.Segments)-1]
	if concentration > last.CpHigh {
		return last.AqiHigh + (concentration-s.Anchor)*last.Slope, true
	}
	return 0, false
}

// SubIndex is Compute over an optional concentration. An absent concentration
// yields an absent sub-index.
func SubIndex(concentration Level, p Pollutant) Level {
	if !concentration.Valid {
		return None
	}
	v, ok := Compute(concentration.Value, p)
	if !ok {
		return None
	}
	return Some(v)
}

// Category returns the descriptive band for a defined AQI value.
func Category(aqi float64) string {
	switch {
	case aqi <= 50:
		return "Good"
	case aqi <= 100:
		return "Satisfactory"
	case aqi <= 200:
		return "Moderate"
	case aqi <= 300:
		return "Poor"
	case aqi <= 400:
		return "Very Poor"
	default:
		return "Severe"
	}
}
