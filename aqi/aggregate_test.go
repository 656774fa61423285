package aqi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2023, time.August, d, 0, 0, 0, 0, time.UTC)
}

func TestAggregateEmpty(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
	assert.Empty(t, Aggregate([]Reading{}))
}

func TestAggregateMaximum(t *testing.T) {
	r := NewReading(day(1))
	r.Set(PM25, 25)
	r.Set(PM10, 40)
	r.Set(NO2, 30)
	r.Set(SO2, 20)
	r.Set(CO, 0.5)
	r.Set(Ozone, 45)

	days := Aggregate([]Reading{r})
	require.Len(t, days, 1)

	got := days[0]
	assert.Equal(t, day(1), got.Date)
	expected := map[Pollutant]float64{
		PM25:  41.67,
		PM10:  40,
		NO2:   37.5,
		SO2:   25,
		CO:    25,
		Ozone: 45,
	}
	for p, v := range expected {
		require.True(t, got.SubIndices[p].Valid, p.String())
		assert.InDelta(t, v, got.SubIndices[p].Value, 0.005, p.String())
	}
	require.True(t, got.AQI.Valid)
	assert.InDelta(t, 45.0, got.AQI.Value, tolerance)
	assert.Equal(t, Ozone, got.Dominant)
}

func TestAggregateOpenSegment(t *testing.T) {
	r := NewReading(day(2))
	r.Set(PM25, 300)
	for _, p := range []Pollutant{PM10, Ozone, NO2, SO2, CO} {
		r.Set(p, 0)
	}

	days := Aggregate([]Reading{r})
	require.Len(t, days, 1)
	expected, ok := Compute(300, PM25)
	require.True(t, ok)
	assert.Equal(t, Some(expected), days[0].AQI)
	assert.Greater(t, days[0].AQI.Value, 400.0)
	assert.Equal(t, PM25, days[0].Dominant)
}

func TestAggregateUndefinedRows(t *testing.T) {
	empty := NewReading(day(3))

	negative := NewReading(day(4))
	for _, p := range Pollutants {
		negative.Set(p, -1)
	}

	partial := NewReading(day(5))
	partial.Set(NO2, 90)
	partial.Set(SO2, -4)

	readings := []Reading{empty, negative, partial}
	days := Aggregate(readings)
	require.Len(t, days, len(readings))

	assert.Equal(t, day(3), days[0].Date)
	assert.False(t, days[0].AQI.Valid)
	assert.Equal(t, Unrecognized, days[0].Dominant)
	for _, p := range Pollutants {
		assert.False(t, days[0].SubIndices[p].Valid)
	}

	assert.False(t, days[1].AQI.Valid)

	require.True(t, days[2].AQI.Valid)
	assert.InDelta(t, 110.0, days[2].AQI.Value, tolerance)
	assert.Equal(t, NO2, days[2].Dominant)
	assert.False(t, days[2].SubIndices[SO2].Valid)
}

func TestAggregatePreservesOrder(t *testing.T) {
	var readings []Reading
	for d := 10; d > 0; d-- {
		r := NewReading(day(d))
		r.Set(PM10, float64(d*10))
		readings = append(readings, r)
	}

	days := Aggregate(readings)
	require.Len(t, days, len(readings))
	for i, d := range days {
		assert.Equal(t, readings[i].Date, d.Date)
		assert.InDelta(t, readings[i].Concentration(PM10).Value, d.AQI.Value, tolerance)
	}
}

func TestAggregateTieKeepsCanonicalOrder(t *testing.T) {
	r := NewReading(day(6))
	r.Set(PM10, 40)
	r.Set(Ozone, 40)

	days := Aggregate([]Reading{r})
	assert.Equal(t, PM10, days[0].Dominant)
}

func TestDefined(t *testing.T) {
	a := NewReading(day(1))
	a.Set(CO, 1)
	b := NewReading(day(2))
	c := NewReading(day(3))
	c.Set(PM25, 10)

	kept, dropped := Defined(Aggregate([]Reading{a, b, c}))
	assert.Equal(t, 1, dropped)
	require.Len(t, kept, 2)
	assert.Equal(t, day(1), kept[0].Date)
	assert.Equal(t, day(3), kept[1].Date)
}

func TestReadingZeroValue(t *testing.T) {
	var r Reading
	r.Date = day(7)
	assert.False(t, r.Concentration(PM25).Valid)

	r.Set(PM25, 10)
	assert.Equal(t, Some(10), r.Concentration(PM25))

	days := Aggregate([]Reading{{Date: day(8)}, r})
	require.Len(t, days, 2)
	assert.False(t, days[0].AQI.Valid)
	assert.True(t, days[1].AQI.Valid)
}
