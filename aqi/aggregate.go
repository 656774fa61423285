package aqi

import "time"

// Reading is one day of pollutant concentrations. A pollutant missing from
// Concentrations is treated as absent.
type Reading struct {
	Date           time.Time
	Concentrations map[Pollutant]Level
}

// NewReading returns an empty reading for date.
func NewReading(date time.Time) Reading {
	return Reading{Date: date, Concentrations: make(map[Pollutant]Level, len(Pollutants))}
}

// Set records a concentration for p.
func (r *Reading) Set(p Pollutant, v float64) {
	if r.Concentrations == nil {
		r.Concentrations = make(map[Pollutant]Level, len(Pollutants))
	}
	r.Concentrations[p] = Some(v)
}

// Concentration returns the concentration for p, absent if none was recorded.
func (r Reading) Concentration(p Pollutant) Level {
	return r.Concentrations[p]
}

// DailyAQI is the composite index for one reading.
type DailyAQI struct {
	Date       time.Time
	SubIndices map[Pollutant]Level
	AQI        Level
	Dominant   Pollutant // Unrecognized when AQI is absent
}

// Aggregate computes the AQI for every reading. The output has one entry per
// reading in the same order; rows whose sub-indices are all absent are kept
// with an absent AQI.
func Aggregate(readings []Reading) []DailyAQI {
	days := make([]DailyAQI, 0, len(readings))
	for _, r := range readings {
		days = append(days, aggregateOne(r))
	}
	return days
}

func aggregateOne(r Reading) DailyAQI {
	day := DailyAQI{
		Date:       r.Date,
		SubIndices: make(map[Pollutant]Level, len(Pollutants)),
	}
	for _, p := range Pollutants {
		sub := SubIndex(r.Concentration(p), p)
		day.SubIndices[p] = sub
		if !sub.Valid {
			continue
		}
		if !day.AQI.Valid || sub.Value > day.AQI.Value {
			day.AQI = sub
			day.Dominant = p
		}
	}
	return day
}

// Defined returns the days with a defined AQI and how many were dropped.
// This is the series handed to forecasting.
func Defined(days []DailyAQI) ([]DailyAQI, int) {
	out := make([]DailyAQI, 0, len(days))
	for _, d := range days {
		if d.AQI.Valid {
			out = append(out, d)
		}
	}
	return out, len(days) - len(out)
}
