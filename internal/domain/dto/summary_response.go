package dto

// SummaryResponse is the JSON body returned by GET /api/v1/summary.
//
// Fields mirror models.TickerSummary but are kept separate so the API surface
// can evolve without touching the domain model.
type SummaryResponse struct {
	Ticker         string  `json:"ticker" example:"AKBNK.IS"`
	Interval       string  `json:"interval" example:"1d"`
	Bars           int64   `json:"bars" example:"21"`
	FirstTimestamp string  `json:"first_timestamp" example:"2024-01-02 07:00:00"`
	LastTimestamp  string  `json:"last_timestamp" example:"2024-01-31 07:00:00"`
	MinLow         float64 `json:"min_low" example:"41.20"`
	MaxHigh        float64 `json:"max_high" example:"48.86"`
	LastClose      float64 `json:"last_close" example:"47.10"`
	TotalVolume    float64 `json:"total_volume" example:"1250934400"`
}
