// Package dataset reads daily pollutant tables and writes AQI and forecast
// tables as CSV.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pridkett/aqiforecast/aqi"
)

var (
	ErrNoDateColumn      = errors.New("dataset: no date column")
	ErrNoPollutantColumn = errors.New("dataset: no pollutant columns")
	ErrDuplicateColumn   = errors.New("dataset: pollutant appears in more than one column")
)

// CSVOptions holds options for CSV loading.
type CSVOptions struct {
	DateColumn string // Column name for dates (default: "Date")
	DateFormat string // Preferred date layout (default: day first, "02-01-2006")
	Delimiter  rune   // Field delimiter (default: ',')
}

// DefaultCSVOptions returns default options for CSV loading.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		DateColumn: "Date",
		DateFormat: "02-01-2006",
		Delimiter:  ',',
	}
}

// LoadCSV loads daily pollutant readings from a CSV file.
func LoadCSV(filename string, opts *CSVOptions) ([]aqi.Reading, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadCSVFromReader(file, opts)
}

// LoadCSVFromReader loads daily pollutant readings from an io.Reader. Cells
// that are empty, NA or not numeric become absent concentrations. A row
// whose date cannot be parsed is an error.
func LoadCSVFromReader(r io.Reader, opts *CSVOptions) ([]aqi.Reading, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoDateColumn
	}
	if err != nil {
		return nil, err
	}

	dateIdx := -1
	columns := map[int]aqi.Pollutant{}
	seen := map[aqi.Pollutant]string{}
	for i, h := range header {
		h = strings.TrimSpace(strings.Trim(h, "\""))
		switch {
		case opts.DateColumn != "" && h == opts.DateColumn:
			dateIdx = i
		case h == "Date" || h == "date" || h == "ds":
			if dateIdx == -1 {
				dateIdx = i
			}
		default:
			if p := aqi.ParsePollutant(h); p != aqi.Unrecognized {
				if prev, ok := seen[p]; ok {
					return nil, fmt.Errorf("%w: %q and %q are both %s", ErrDuplicateColumn, prev, h, p)
				}
				seen[p] = h
				columns[i] = p
			}
		}
	}
	if dateIdx == -1 {
		return nil, ErrNoDateColumn
	}
	if len(columns) == 0 {
		return nil, ErrNoPollutantColumn
	}

	formats := []string{
		opts.DateFormat,
		"02-01-2006",
		"02/01/2006",
		"2006-01-02",
		"02-01-2006 15:04",
		"2006-01-02T15:04:05",
	}

	var readings []aqi.Reading
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)

		if dateIdx >= len(record) {
			return nil, fmt.Errorf("dataset: line %d: missing date", line)
		}
		date, err := parseDate(strings.TrimSpace(strings.Trim(record[dateIdx], "\"")), formats)
		if err != nil {
			return nil, fmt.Errorf("dataset: line %d: %w", line, err)
		}

		reading := aqi.NewReading(date)
		for idx, p := range columns {
			if idx >= len(record) {
				continue
			}
			if v, ok := parseValue(record[idx]); ok {
				reading.Set(p, v)
			}
		}
		readings = append(readings, reading)
	}

	return readings, nil
}

func parseDate(s string, formats []string) (time.Time, error) {
	for _, layout := range formats {
		if layout == "" {
			continue
		}
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseValue(s string) (float64, bool) {
	s = strings.TrimSpace(strings.Trim(s, "\""))
	switch s {
	case "", "NA", "NaN", "nan", "null", "None":
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
