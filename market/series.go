package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"
)

// seriesDateFormats are the expected date formats in time series data.
var seriesDateFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
}

// SeriesValue is one bar of a daily price series.
type SeriesValue struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// sortSeriesValuesByDate allows SeriesValue slices to be sorted by date in
// ascending order.
type sortSeriesValuesByDate []*SeriesValue

func (b sortSeriesValuesByDate) Len() int           { return len(b) }
func (b sortSeriesValuesByDate) Less(i, j int) bool { return b[i].Time.Before(b[j].Time) }
func (b sortSeriesValuesByDate) Swap(i, j int)      { b[i], b[j] = b[j], b[i] }

// ParseSeriesData parses csv time series data from a reader and returns
// the values sorted oldest first.
func ParseSeriesData(r io.Reader) ([]*SeriesValue, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	// strip header
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}

	values := make([]*SeriesValue, 0, 64)

	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		value, err := parseSeriesRecord(record)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}

	sort.Sort(sortSeriesValuesByDate(values))

	return values, nil
}

// parseSeriesRecord parses an individual csv record.
func parseSeriesRecord(s []string) (*SeriesValue, error) {
	// these are the expected columns in the csv record
	const (
		timestamp = iota
		open
		high
		low
		close
		volume
	)

	if len(s) <= volume {
		return nil, fmt.Errorf("expected %d columns in series record, got %d", volume+1, len(s))
	}

	value := &SeriesValue{}

	d, err := parseDate(s[timestamp], seriesDateFormats...)
	if err != nil {
		return nil, fmt.Errorf("%s error parsing timestamp %s", err, s[timestamp])
	}
	value.Time = d

	f, err := strconv.ParseFloat(s[open], 64)
	if err != nil {
		return nil, fmt.Errorf("%s error parsing open %s", err, s[open])
	}
	value.Open = f

	f, err = strconv.ParseFloat(s[high], 64)
	if err != nil {
		return nil, fmt.Errorf("%s error parsing high %s", err, s[high])
	}
	value.High = f

	f, err = strconv.ParseFloat(s[low], 64)
	if err != nil {
		return nil, fmt.Errorf("%s error parsing low %s", err, s[low])
	}
	value.Low = f

	f, err = strconv.ParseFloat(s[close], 64)
	if err != nil {
		return nil, fmt.Errorf("%s error parsing close %s", err, s[close])
	}
	value.Close = f

	f, err = strconv.ParseFloat(s[volume], 64)
	if err != nil {
		return nil, fmt.Errorf("%s error parsing volume %s", err, s[volume])
	}
	value.Volume = f

	return value, nil
}

// parseDate parses a date value from a string. An error is returned if the
// value is not in one of the dateFormat formats.
func parseDate(v string, dateFormat ...string) (time.Time, error) {
	for _, format := range dateFormat {
		t, err := time.Parse(format, v)
		if err != nil {
			continue
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("applicable date format not found for date %s", v)
}
