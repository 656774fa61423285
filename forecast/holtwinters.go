package forecast

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrInsufficientData = errors.New("forecast: insufficient observations")
	ErrInvalidWindow    = errors.New("forecast: window start is after end")
)

// Method names reported by Model.Method.
const (
	MethodHoltWinters = "holt_winters"
	MethodExponential = "exponential"
)

// Config holds the smoothing parameters and limits of a model.
type Config struct {
	Period          int     // Seasonal period in days
	Alpha           float64 // Level smoothing, (0, 1]
	Beta            float64 // Trend smoothing, (0, 1]
	Gamma           float64 // Seasonal smoothing, (0, 1]
	Horizon         int     // Days past the last observation that may be forecast
	Confidence      float64 // z-score used for the prediction interval
	MinObservations int
}

// DefaultConfig returns a weekly-seasonal configuration with a one year horizon.
func DefaultConfig() Config {
	return Config{
		Period:          7,
		Alpha:           0.3,
		Beta:            0.1,
		Gamma:           0.1,
		Horizon:         365,
		Confidence:      1.96,
		MinObservations: 2,
	}
}

func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.Period <= 0 {
		c.Period = def.Period
	}
	if c.Alpha <= 0 || c.Alpha > 1 {
		c.Alpha = def.Alpha
	}
	if c.Beta <= 0 || c.Beta > 1 {
		c.Beta = def.Beta
	}
	if c.Gamma <= 0 || c.Gamma > 1 {
		c.Gamma = def.Gamma
	}
	if c.Horizon <= 0 {
		c.Horizon = def.Horizon
	}
	if c.Confidence <= 0 {
		c.Confidence = def.Confidence
	}
	if c.MinObservations < 1 {
		c.MinObservations = def.MinObservations
	}
	return c
}

// Observation is one daily value of the series being modelled.
type Observation struct {
	Date  time.Time
	Value float64
}

// Kind tells whether a Point is a fitted historical value or a forecast.
type Kind string

const (
	KindHistory  Kind = "history"
	KindForecast Kind = "forecast"
)

// Point is one day of model output.
type Point struct {
	Date  time.Time
	Value float64
	Lower float64
	Upper float64
	Kind  Kind
}

// Model is a fitted series. It is immutable after Fit.
type Model struct {
	config   Config
	method   string
	dates    []civil.Date
	fitted   map[civil.Date]float64
	level    float64
	trend    float64   // per day
	seasonal []float64 // indexed by days since the first observation modulo Period
	stdErr   float64
}

// mergeDays orders observations by calendar day and averages the values of
// observations that share a day.
func mergeDays(observations []Observation) ([]civil.Date, []float64) {
	sums := make(map[civil.Date]float64, len(observations))
	counts := make(map[civil.Date]int, len(observations))
	for _, o := range observations {
		d := civil.DateOf(o.Date)
		sums[d] += o.Value
		counts[d]++
	}

	dates := make([]civil.Date, 0, len(sums))
	for d := range sums {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	values := make([]float64, len(dates))
	for i, d := range dates {
		values[i] = sums[d] / float64(counts[d])
	}
	return dates, values
}

// Fit estimates the model from observations. Observations are ordered by
// date and observations on the same day are averaged; missing days are not
// imputed, the seasonal phase follows the calendar.
func Fit(observations []Observation, config Config) (*Model, error) {
	config = config.normalized()

	dates, values := mergeDays(observations)
	if len(values) < config.MinObservations {
		return nil, fmt.Errorf("%w: need %d days, have %d", ErrInsufficientData, config.MinObservations, len(values))
	}

	m := &Model{
		config: config,
		dates:  dates,
		fitted: make(map[civil.Date]float64, len(dates)),
	}

	var fitted []float64
	if len(values) >= 2*config.Period && m.offset(dates[len(dates)-1]) >= config.Period {
		fitted = m.fitHoltWinters(values)
	} else {
		fitted = m.fitExponential(values)
	}

	residuals := make([]float64, len(values))
	for i := range values {
		residuals[i] = values[i] - fitted[i]
		m.fitted[dates[i]] = fitted[i]
	}
	if len(residuals) > 1 {
		m.stdErr = stat.StdDev(residuals, nil)
	}
	return m, nil
}

// offset is the number of days from the first observation to d.
func (m *Model) offset(d civil.Date) int {
	return d.DaysSince(m.dates[0])
}

func (m *Model) slot(d civil.Date) int {
	p := m.config.Period
	return ((m.offset(d) % p) + p) % p
}

func (m *Model) fitHoltWinters(values []float64) []float64 {
	p := m.config.Period
	alpha, beta, gamma := m.config.Alpha, m.config.Beta, m.config.Gamma

	// Level and seasonal factors from the first period. The trend is the
	// mean change between days one period apart within the first two periods.
	var firstPeriod []float64
	firstByOffset := map[int]float64{}
	var changes []float64
	for i, d := range m.dates {
		off := m.offset(d)
		switch {
		case off < p:
			firstPeriod = append(firstPeriod, values[i])
			firstByOffset[off] = values[i]
		case off < 2*p:
			if prev, ok := firstByOffset[off-p]; ok {
				changes = append(changes, (values[i]-prev)/float64(p))
			}
		}
	}

	level := stat.Mean(firstPeriod, nil)
	trend := 0.0
	if len(changes) > 0 {
		trend = stat.Mean(changes, nil)
	}
	seasonal := make([]float64, p)
	for off, v := range firstByOffset {
		seasonal[off] = v - level
	}

	fitted := make([]float64, len(values))
	prevOffset := -1
	for t, y := range values {
		off := m.offset(m.dates[t])
		step := float64(off - prevOffset)
		prevOffset = off

		k := off % p
		s := seasonal[k]
		fitted[t] = level + step*trend + s

		prevLevel := level
		level = alpha*(y-s) + (1-alpha)*(level+step*trend)
		trend = beta*(level-prevLevel)/step + (1-beta)*trend
		seasonal[k] = gamma*(y-level) + (1-gamma)*s
	}

	m.method = MethodHoltWinters
	m.level = level
	m.trend = trend
	m.seasonal = seasonal
	return fitted
}

func (m *Model) fitExponential(values []float64) []float64 {
	alpha := m.config.Alpha
	level := values[0]

	fitted := make([]float64, len(values))
	for t, y := range values {
		fitted[t] = level
		level = alpha*y + (1-alpha)*level
	}

	m.method = MethodExponential
	m.level = level
	return fitted
}

// Method reports which smoothing method the model used.
func (m *Model) Method() string {
	return m.method
}

// StdErr is the standard deviation of the in-sample residuals.
func (m *Model) StdErr() float64 {
	return m.stdErr
}

// LastDate is the date of the final observation.
func (m *Model) LastDate() time.Time {
	return m.dates[len(m.dates)-1].In(time.UTC)
}

// forecastAt returns the forecast for a day after the last observation.
func (m *Model) forecastAt(d civil.Date) float64 {
	if m.method != MethodHoltWinters {
		return m.level
	}
	h := d.DaysSince(m.dates[len(m.dates)-1])
	return m.level + float64(h)*m.trend + m.seasonal[m.slot(d)]
}

// Predict returns one point per calendar day in [start, end]. Days before
// the first observation, gaps in the history and days beyond the horizon are
// omitted.
func (m *Model) Predict(start, end time.Time) ([]Point, error) {
	from, to := civil.DateOf(start), civil.DateOf(end)
	if from.After(to) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidWindow, from, to)
	}

	last := m.dates[len(m.dates)-1]
	z := m.config.Confidence

	var points []Point
	for d := from; !d.After(to); d = d.AddDays(1) {
		if !d.After(last) {
			v, ok := m.fitted[d]
			if !ok {
				continue
			}
			width := z * m.stdErr
			points = append(points, Point{
				Date:  d.In(time.UTC),
				Value: v,
				Lower: v - width,
				Upper: v + width,
				Kind:  KindHistory,
			})
			continue
		}

		h := d.DaysSince(last)
		if h > m.config.Horizon {
			break
		}
		v := m.forecastAt(d)
		width := z * m.stdErr * math.Sqrt(float64(h))
		points = append(points, Point{
			Date:  d.In(time.UTC),
			Value: v,
			Lower: v - width,
			Upper: v + width,
			Kind:  KindForecast,
		})
	}
	return points, nil
}
