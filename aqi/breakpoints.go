package aqi

// Breakpoint is one linear segment of a pollutant's sub-index scale.
type Breakpoint struct {
	CpLow   float64 // Lower bound of concentration
	CpHigh  float64 // Upper bound of concentration (inclusive)
	AqiLow  float64 // Sub-index at CpLow
	AqiHigh float64 // Sub-index at CpHigh
	Slope   float64 // Sub-index units per concentration unit

	// DivideLast evaluates (c-CpLow)*(AqiHigh-AqiLow)/(CpHigh-CpLow) instead
	// of multiplying by the precomputed Slope. The published formulas use
	// both orderings and the results differ in the last bit.
	DivideLast bool
}

func (b Breakpoint) interpolate(c float64) float64 {
	if b.DivideLast {
		return b.AqiLow + (c-b.CpLow)*(b.AqiHigh-b.AqiLow)/(b.CpHigh-b.CpLow)
	}
	return b.AqiLow + (c-b.CpLow)*b.Slope
}

// scale is the full breakpoint table of one pollutant. Concentrations above
// the last finite segment extrapolate from Anchor with that segment's slope.
type scale struct {
	Segments []Breakpoint
	Anchor   float64
}

func segment(cpLow, cpHigh, aqiLow, aqiHigh float64) Breakpoint {
	return Breakpoint{
		CpLow:   cpLow,
		CpHigh:  cpHigh,
		AqiLow:  aqiLow,
		AqiHigh: aqiHigh,
		Slope:   (aqiHigh - aqiLow) / (cpHigh - cpLow),
	}
}

func segmentDivideLast(cpLow, cpHigh, aqiLow, aqiHigh float64) Breakpoint {
	bp := segment(cpLow, cpHigh, aqiLow, aqiHigh)
	bp.DivideLast = true
	return bp
}

var scales = map[Pollutant]scale{
	PM25: {
		Segments: []Breakpoint{
			segment(0, 30, 0, 50),      // Good
			segment(30, 60, 50, 100),   // Satisfactory
			segment(60, 90, 100, 200),  // Moderate
			segment(90, 120, 200, 300), // Poor
			segment(120, 250, 300, 400),
		},
		Anchor: 250,
	},
	PM10: {
		Segments: []Breakpoint{
			segment(0, 50, 0, 50),
			segment(50, 100, 50, 100),
			segment(100, 250, 100, 200),
			segment(250, 350, 200, 300),
			segment(350, 430, 300, 400),
		},
		Anchor: 430,
	},
	NO2: {
		Segments: []Breakpoint{
			segment(0, 40, 0, 50),
			segment(40, 80, 50, 100),
			segmentDivideLast(80, 180, 100, 200),
			segment(180, 280, 200, 300),
			segment(280, 400, 300, 400),
		},
		Anchor: 400,
	},
	SO2: {
		Segments: []Breakpoint{
			segment(0, 40, 0, 50),
			segment(40, 80, 50, 100),
			segment(80, 380, 100, 200),
			segment(380, 800, 200, 300),
			segment(800, 1600, 300, 400),
		},
		Anchor: 1600,
	},
	CO: {
		Segments: []Breakpoint{
			segment(0, 1, 0, 50),
			segment(1, 2, 50, 100),
			segment(2, 10, 100, 200),
			segment(10, 17, 200, 300),
			segment(17, 34, 300, 400),
		},
		Anchor: 34,
	},
	Ozone: {
		Segments: []Breakpoint{
			segmentDivideLast(0, 50, 0, 50),
			segmentDivideLast(50, 100, 50, 100),
			segmentDivideLast(100, 168, 100, 200),
			segment(168, 208, 200, 300),
			// The published scale divides by 539 rather than the 540 wide range.
			{CpLow: 208, CpHigh: 748, AqiLow: 300, AqiHigh: 400, Slope: 100.0 / 539},
		},
		// KNOWN DEFECT: the historical formula measures the open segment from
		// 400 rather than 748, so values just above 748 jump to ~464.
		// Kept so results stay reproducible against existing reports.
		Anchor: 400,
	},
}

// Breakpoints returns a copy of the finite breakpoint segments for p, or nil
// if p is not recognized.
func Breakpoints(p Pollutant) []Breakpoint {
	s, ok := scales[p]
	if !ok {
		return nil
	}
	out := make([]Breakpoint, len(s.Segments))
	copy(out, s.Segments)
	return out
}
