package aqi

import "strings"

// Pollutant identifies one of the pollutants that contribute to the AQI.
type Pollutant int

const (
	// Unrecognized is returned for names that do not map to a known pollutant.
	// It never carries a breakpoint table, so every sub-index for it is undefined.
	Unrecognized Pollutant = iota
	PM25
	PM10
	Ozone
	NO2
	SO2
	CO
)

// Pollutants lists the pollutants in canonical column order.
var Pollutants = []Pollutant{PM25, PM10, Ozone, NO2, SO2, CO}

var pollutantNames = map[Pollutant]string{
	PM25:  "PM2.5",
	PM10:  "PM10",
	Ozone: "Ozone",
	NO2:   "NO2",
	SO2:   "SO2",
	CO:    "CO",
}

// String returns the canonical column name of the pollutant.
func (p Pollutant) String() string {
	if name, ok := pollutantNames[p]; ok {
		return name
	}
	return "unrecognized"
}

// ParsePollutant maps a column name such as "PM2.5" or "pm25" to a Pollutant.
func ParsePollutant(name string) Pollutant {
	name = strings.TrimSpace(name)
	for p, canonical := range pollutantNames {
		if name == canonical {
			return p
		}
	}
	folded := fold(name)
	for p, canonical := range pollutantNames {
		if folded == fold(canonical) {
			return p
		}
	}
	return Unrecognized
}

func fold(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, ".", "")
	return strings.ReplaceAll(s, "_", "")
}
