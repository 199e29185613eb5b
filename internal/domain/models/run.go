package models

import "time"

// Run records one pipeline invocation. Rows in the runs table are append-only;
// a Run is immutable once created.
type Run struct {
	ID        string
	Range     string
	Interval  string
	StartedAt time.Time
	Requested int
	Succeeded int
	RowCount  int
	CSVPath   string
	XLSXPath  string
	Note      string
}

// RunStats is the per-run fetch accounting surfaced to the user.
//
// Invariant: Succeeded + len(FailedTickers) == Requested.
type RunStats struct {
	Requested     int
	Succeeded     int
	FailedTickers []string
}

// Failed returns the number of tickers that produced no usable data.
func (s RunStats) Failed() int { return len(s.FailedTickers) }

// TickerSummary aggregates the stored bars for one ticker/interval pair.
// Returned by the read API.
type TickerSummary struct {
	Ticker         string
	Interval       string
	Bars           int64
	FirstTimestamp string
	LastTimestamp  string
	MinLow         float64
	MaxHigh        float64
	LastClose      float64
	TotalVolume    float64
}
