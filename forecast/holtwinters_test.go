package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var origin = time.Date(2023, time.August, 1, 0, 0, 0, 0, time.UTC)

func date(offset int) time.Time {
	return origin.AddDate(0, 0, offset)
}

func series(values ...float64) []Observation {
	obs := make([]Observation, len(values))
	for i, v := range values {
		obs[i] = Observation{Date: date(i), Value: v}
	}
	return obs
}

var weekly = []float64{-3, -1, 0, 4, 2, -1, -1}

func seasonalSeries(weeks int) []Observation {
	values := make([]float64, 0, weeks*len(weekly))
	for w := 0; w < weeks; w++ {
		for _, s := range weekly {
			values = append(values, 50+s)
		}
	}
	return series(values...)
}

func TestFitInsufficientData(t *testing.T) {
	_, err := Fit(series(42), DefaultConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = Fit(nil, DefaultConfig())
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestFitSeasonalPattern(t *testing.T) {
	model, err := Fit(seasonalSeries(4), DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, MethodHoltWinters, model.Method())
	assert.InDelta(t, 0.0, model.StdErr(), 1e-9)
	assert.Equal(t, date(27), model.LastDate())

	points, err := model.Predict(date(28), date(41))
	require.NoError(t, err)
	require.Len(t, points, 14)
	for i, p := range points {
		assert.Equal(t, KindForecast, p.Kind)
		assert.Equal(t, date(28+i), p.Date)
		assert.InDelta(t, 50+weekly[i%7], p.Value, 1e-9, "day %d", i)
		assert.LessOrEqual(t, p.Lower, p.Value)
		assert.GreaterOrEqual(t, p.Upper, p.Value)
	}
}

func TestPredictSpansHistoryAndFuture(t *testing.T) {
	model, err := Fit(seasonalSeries(3), DefaultConfig())
	require.NoError(t, err)

	points, err := model.Predict(date(18), date(24))
	require.NoError(t, err)
	require.Len(t, points, 7)

	for i, p := range points[:3] {
		assert.Equal(t, KindHistory, p.Kind, "point %d", i)
	}
	for i, p := range points[3:] {
		assert.Equal(t, KindForecast, p.Kind, "point %d", i+3)
	}
}

func TestPredictHorizon(t *testing.T) {
	config := DefaultConfig()
	config.Horizon = 10
	model, err := Fit(seasonalSeries(2), config)
	require.NoError(t, err)

	points, err := model.Predict(date(14), date(40))
	require.NoError(t, err)
	require.Len(t, points, 10)
	assert.Equal(t, date(23), points[len(points)-1].Date)
}

func TestPredictInvalidWindow(t *testing.T) {
	model, err := Fit(seasonalSeries(2), DefaultConfig())
	require.NoError(t, err)

	_, err = model.Predict(date(10), date(5))
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestPredictBeforeHistoryAndGaps(t *testing.T) {
	obs := []Observation{
		{Date: date(0), Value: 10},
		{Date: date(1), Value: 12},
		{Date: date(3), Value: 11},
	}
	model, err := Fit(obs, DefaultConfig())
	require.NoError(t, err)

	points, err := model.Predict(date(-5), date(3))
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, date(0), points[0].Date)
	assert.Equal(t, date(1), points[1].Date)
	assert.Equal(t, date(3), points[2].Date)
}

func TestFitExponentialFallback(t *testing.T) {
	model, err := Fit(series(10, 20, 30, 40), DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, MethodExponential, model.Method())

	points, err := model.Predict(date(4), date(8))
	require.NoError(t, err)
	require.Len(t, points, 5)
	for _, p := range points[1:] {
		assert.InDelta(t, points[0].Value, p.Value, 1e-9)
	}
	assert.Greater(t, points[4].Upper-points[4].Lower, points[0].Upper-points[0].Lower)
}

func TestFitSortsObservations(t *testing.T) {
	obs := seasonalSeries(2)
	reversed := make([]Observation, len(obs))
	for i, o := range obs {
		reversed[len(obs)-1-i] = o
	}

	model, err := Fit(reversed, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, date(13), model.LastDate())
	assert.Equal(t, date(13), reversed[0].Date, "input must not be reordered")
}

func TestConfigNormalized(t *testing.T) {
	c := Config{Period: -1, Alpha: 2, Beta: 0, Gamma: -0.5}.normalized()
	assert.Equal(t, DefaultConfig(), c)

	custom := Config{Period: 30, Alpha: 0.5, Beta: 0.2, Gamma: 0.3, Horizon: 30, Confidence: 1.64, MinObservations: 5}
	assert.Equal(t, custom, custom.normalized())
}

func without(obs []Observation, offsets ...int) []Observation {
	drop := map[int]bool{}
	for _, o := range offsets {
		drop[o] = true
	}
	var out []Observation
	for i, o := range obs {
		if !drop[i] {
			out = append(out, o)
		}
	}
	return out
}

func TestFitSeasonalPatternWithGaps(t *testing.T) {
	for _, gaps := range [][]int{{10}, {15}, {10, 17, 18}} {
		model, err := Fit(without(seasonalSeries(4), gaps...), DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, MethodHoltWinters, model.Method())

		points, err := model.Predict(date(28), date(34))
		require.NoError(t, err)
		require.Len(t, points, 7)
		for i, p := range points {
			assert.InDelta(t, 50+weekly[i], p.Value, 1e-9, "gaps %v, day %d", gaps, 28+i)
		}
	}
}

func TestFitSeasonalPatternWithGapsKeepsHistoryPhase(t *testing.T) {
	model, err := Fit(without(seasonalSeries(4), 10), DefaultConfig())
	require.NoError(t, err)

	points, err := model.Predict(date(8), date(12))
	require.NoError(t, err)
	require.Len(t, points, 4)
	assert.Equal(t, date(11), points[2].Date)
	assert.InDelta(t, 50+weekly[11%7], points[2].Value, 1e-9)
}

func TestFitMergesRepeatedDays(t *testing.T) {
	obs := seasonalSeries(4)
	obs = append(obs, obs[5], Observation{Date: date(27), Value: obs[27].Value})

	model, err := Fit(obs, DefaultConfig())
	require.NoError(t, err)

	points, err := model.Predict(date(27), date(30))
	require.NoError(t, err)
	require.Len(t, points, 4)
	assert.Equal(t, KindHistory, points[0].Kind)
	for i, p := range points[1:] {
		assert.InDelta(t, 50+weekly[i], p.Value, 1e-9, "day %d", 28+i)
	}
}

func TestMergeDaysAverages(t *testing.T) {
	dates, values := mergeDays([]Observation{
		{Date: date(1), Value: 30},
		{Date: date(0), Value: 10},
		{Date: date(1).Add(6 * time.Hour), Value: 50},
	})
	require.Len(t, dates, 2)
	assert.Equal(t, date(0), dates[0].In(time.UTC))
	assert.Equal(t, date(1), dates[1].In(time.UTC))
	assert.Equal(t, []float64{10, 40}, values)

	_, err := Fit([]Observation{{Date: date(0), Value: 1}, {Date: date(0), Value: 2}}, DefaultConfig())
	assert.ErrorIs(t, err, ErrInsufficientData)
}
