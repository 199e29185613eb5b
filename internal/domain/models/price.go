package models

import "time"

// PriceRow is one OHLCV bar for a single ticker, typed at the fetch boundary
// so downstream components never handle raw provider JSON.
//
// Identity: (Ticker, Timestamp, Interval). Timestamp is always UTC.
type PriceRow struct {
	Ticker    string
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	AdjClose  float64
	Volume    float64
	Range     string
	Interval  string
}

// SymbolMeta holds per-symbol metadata reported by the provider alongside the
// chart data. One logical row per symbol, replaced on every run.
type SymbolMeta struct {
	Symbol              string
	Currency            string
	ExchangeName        string
	FullExchangeName    string
	InstrumentType      string
	Timezone            string
	GMTOffset           int64
	RegularMarketPrice  float64
	FiftyTwoWeekHigh    float64
	FiftyTwoWeekLow     float64
	RegularMarketVolume float64
	LongName            string
	ShortName           string
	PreviousClose       float64
}
