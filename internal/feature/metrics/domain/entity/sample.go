package entity

import "time"

// Sample is one stored row of a two-metric series for a ticker.
// A nil value means the metric was not recorded on that date.
type Sample struct {
	Date time.Time `json:"date"`
	X    *float64  `json:"x"`
	Y    *float64  `json:"y"`
}

// DateRange bounds a series query. Both ends are optional and inclusive.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// PricePoint is a daily closing price imported from the market data provider.
type PricePoint struct {
	Ticker Ticker
	Date   time.Time
	Close  float64
}

// MetricRow is one imported (ticker, date) row of alternative data.
// Values holds only the metrics present in the source; a nil value clears that column.
type MetricRow struct {
	Ticker Ticker
	Date   time.Time
	Values map[Metric]*float64
}
