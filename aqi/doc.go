// Package aqi converts pollutant concentrations into sub-indices and combines
// them into a daily Air Quality Index.
//
// Each pollutant owns a piecewise-linear breakpoint table on a 0-400 scale
// with an open-ended segment above 400. The AQI of a day is the largest of
// its defined sub-indices:
//
//	r := aqi.NewReading(day)
//	r.Set(aqi.PM25, 25)
//	r.Set(aqi.Ozone, 45)
//	days := aqi.Aggregate([]aqi.Reading{r})
//	// days[0].AQI == aqi.Some(45), days[0].Dominant == aqi.Ozone
//
// Results that cannot be computed (unknown pollutant, negative or missing
// concentration) are reported as an absent Level rather than an error.
package aqi
