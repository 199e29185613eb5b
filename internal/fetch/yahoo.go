// Package fetch wraps the Yahoo Finance v8 chart API behind a typed client.
// All provider JSON is converted to models.PriceRow at this boundary.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/guttosm/bistpulse/internal/domain/models"
)

// Fetcher is the contract the pipeline consumes. An empty row slice with a
// nil error means "no data in window" and is a valid result.
type Fetcher interface {
	Fetch(ctx context.Context, symbol, rng, interval string) ([]models.PriceRow, *models.SymbolMeta, error)
}

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// defaultHosts are tried in order; each host gets up to two attempts before
// the fetch is reported as failed. This is connection failover within one
// logical attempt, not a retry policy.
var defaultHosts = []string{
	"https://query1.finance.yahoo.com",
	"https://query2.finance.yahoo.com",
}

// Client fetches chart data over HTTP.
type Client struct {
	http  *http.Client
	hosts []string
}

// NewClient creates a chart client with the given per-request timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		http:  &http.Client{Timeout: timeout},
		hosts: defaultHosts,
	}
}

// chartResponse is the subset of the Yahoo chart payload the extractor reads.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency            string  `json:"currency"`
				Symbol              string  `json:"symbol"`
				ExchangeName        string  `json:"exchangeName"`
				FullExchangeName    string  `json:"fullExchangeName"`
				InstrumentType      string  `json:"instrumentType"`
				Timezone            string  `json:"timezone"`
				GMTOffset           int64   `json:"gmtoffset"`
				RegularMarketPrice  float64 `json:"regularMarketPrice"`
				FiftyTwoWeekHigh    float64 `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow     float64 `json:"fiftyTwoWeekLow"`
				RegularMarketVolume float64 `json:"regularMarketVolume"`
				LongName            string  `json:"longName"`
				ShortName           string  `json:"shortName"`
				PreviousClose       float64 `json:"previousClose"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []interface{} `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func at(vals []interface{}, i int) interface{} {
	if i < len(vals) {
		return vals[i]
	}
	return nil
}

// Fetch downloads one symbol's bars for the given range and interval.
// Hosts are rotated on failure; the last error is returned when all attempts
// fail. An empty result from the provider is not an error.
func (c *Client) Fetch(ctx context.Context, symbol, rng, interval string) ([]models.PriceRow, *models.SymbolMeta, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		for _, host := range c.hosts {
			rows, meta, err := c.fetchFrom(ctx, host, symbol, rng, interval)
			if err == nil {
				return rows, meta, nil
			}
			lastErr = err
			if ctx.Err() != nil {
				return nil, nil, fmt.Errorf("fetch %s: %w", symbol, ctx.Err())
			}
		}
	}
	return nil, nil, fmt.Errorf("fetch %s: %w", symbol, lastErr)
}

func (c *Client) fetchFrom(ctx context.Context, host, symbol, rng, interval string) ([]models.PriceRow, *models.SymbolMeta, error) {
	params := url.Values{}
	params.Set("range", rng)
	params.Set("interval", interval)
	params.Set("includePrePost", "false")
	params.Set("events", "history")

	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", host, url.PathEscape(symbol), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("chart request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read chart body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("chart: status %d from %s", resp.StatusCode, host)
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, nil, fmt.Errorf("decode chart: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, nil, fmt.Errorf("provider error %s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, nil, nil // no data in window
	}

	result := chart.Chart.Result[0]
	meta := &models.SymbolMeta{
		Symbol:              result.Meta.Symbol,
		Currency:            result.Meta.Currency,
		ExchangeName:        result.Meta.ExchangeName,
		FullExchangeName:    result.Meta.FullExchangeName,
		InstrumentType:      result.Meta.InstrumentType,
		Timezone:            result.Meta.Timezone,
		GMTOffset:           result.Meta.GMTOffset,
		RegularMarketPrice:  result.Meta.RegularMarketPrice,
		FiftyTwoWeekHigh:    result.Meta.FiftyTwoWeekHigh,
		FiftyTwoWeekLow:     result.Meta.FiftyTwoWeekLow,
		RegularMarketVolume: result.Meta.RegularMarketVolume,
		LongName:            result.Meta.LongName,
		ShortName:           result.Meta.ShortName,
		PreviousClose:       result.Meta.PreviousClose,
	}
	if meta.Symbol == "" {
		meta.Symbol = symbol
	}

	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return []models.PriceRow{}, meta, nil
	}

	quote := result.Indicators.Quote[0]
	var adj []interface{}
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	rows := make([]models.PriceRow, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o := toFloat(at(quote.Open, i))
		h := toFloat(at(quote.High, i))
		l := toFloat(at(quote.Low, i))
		cl := toFloat(at(quote.Close, i))
		if o == 0 && h == 0 && l == 0 && cl == 0 {
			continue // skip null bars (holidays, halts)
		}
		rows = append(rows, models.PriceRow{
			Ticker:    symbol,
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      o,
			High:      h,
			Low:       l,
			Close:     cl,
			AdjClose:  toFloat(at(adj, i)),
			Volume:    toFloat(at(quote.Volume, i)),
			Range:     rng,
			Interval:  interval,
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Timestamp.Before(rows[j].Timestamp) })
	return rows, meta, nil
}
