package dataset

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pridkett/aqiforecast/aqi"
	"github.com/pridkett/aqiforecast/forecast"
)

const dateLayout = "2006-01-02"

func formatLevel(l aqi.Level) string {
	if !l.Valid {
		return ""
	}
	return formatFloat(l.Value)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteAQI writes one row per day with every sub-index and the AQI. Absent
// values are written as empty cells.
func WriteAQI(w io.Writer, days []aqi.DailyAQI) error {
	writer := csv.NewWriter(w)

	header := []string{"Date"}
	for _, p := range aqi.Pollutants {
		header = append(header, p.String()+"_Sub_Index")
	}
	header = append(header, "AQI", "Dominant")
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, d := range days {
		row := []string{d.Date.Format(dateLayout)}
		for _, p := range aqi.Pollutants {
			row = append(row, formatLevel(d.SubIndices[p]))
		}
		dominant := ""
		if d.AQI.Valid {
			dominant = d.Dominant.String()
		}
		row = append(row, formatLevel(d.AQI), dominant)
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteForecast writes forecast points as ds,yhat,yhat_lower,yhat_upper,kind.
func WriteForecast(w io.Writer, points []forecast.Point) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"ds", "yhat", "yhat_lower", "yhat_upper", "kind"}); err != nil {
		return err
	}
	for _, p := range points {
		row := []string{
			p.Date.Format(dateLayout),
			formatFloat(p.Value),
			formatFloat(p.Lower),
			formatFloat(p.Upper),
			string(p.Kind),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
