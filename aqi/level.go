package aqi

// Level is a concentration, sub-index or AQI value that may be absent.
// The zero value is absent, which keeps "no result" distinct from a real 0.
type Level struct {
	Value float64
	Valid bool
}

// Some wraps a defined value.
func Some(v float64) Level {
	return Level{Value: v, Valid: true}
}

// None is the absent Level.
var None = Level{}
