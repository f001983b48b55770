// Package alphavantage resolves stock listings and daily closing prices
// from the Alpha Vantage HTTP API (https://www.alphavantage.co).
//
// Responses are cached on disk with a daily expiry, so a given symbol's
// series is fetched at most once a day no matter how many questions the
// engine asks.
package alphavantage

import (
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sync"

	"github.com/PaesslerAG/jsonpath"
	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"stockfolio"
)

const apiKeyEnv = "ALPHAVANTAGE_API_KEY"

var apiKeyFlag = flag.String("alphavantage-api-key", "", "Alpha Vantage API key for fetching listings and prices.\n If missing it is read from the environment variable \""+apiKeyEnv+"\". You can get one at https://www.alphavantage.co/support/#api-key")

// APIKey returns the Alpha Vantage API key from the flag, falling back to
// the environment.
func APIKey() string {
	if *apiKeyFlag == "" {
		*apiKeyFlag = os.Getenv(apiKeyEnv)
	}
	return *apiKeyFlag
}

// searchDays is how far PriceOnDate looks for a nearby trading day.
const searchDays = 10

// Client talks to Alpha Vantage and implements stockfolio.PriceOracle.
// Listing metadata and daily series are fetched lazily and kept for the
// lifetime of the client.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client

	mu       sync.Mutex
	listings map[string]listing
	series   map[string]map[stockfolio.Date]stockfolio.Money
}

type listing struct {
	stock    stockfolio.Stock
	ipo      stockfolio.Date
	delisted stockfolio.Date // zero while listed
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL redirects the client to another endpoint.
func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

// WithHTTPClient replaces the daily-cached default HTTP client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// NewClient creates a client using the given API key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: "https://www.alphavantage.co",
		http:    daily(),
		series:  make(map[string]map[stockfolio.Date]stockfolio.Money),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// listingRow is one line of the LISTING_STATUS CSV endpoint.
type listingRow struct {
	Symbol        string `csv:"symbol"`
	Name          string `csv:"name"`
	Exchange      string `csv:"exchange"`
	AssetType     string `csv:"assetType"`
	IPODate       string `csv:"ipoDate"`
	DelistingDate string `csv:"delistingDate"`
	Status        string `csv:"status"`
}

// loadListings fetches the active and delisted listings once.
func (c *Client) loadListings() error {
	if c.listings != nil {
		return nil
	}
	c.listings = make(map[string]listing)
	for _, state := range []string{"active", "delisted"} {
		addr := fmt.Sprintf("%s/query?function=LISTING_STATUS&state=%s&apikey=%s", c.baseURL, state, url.QueryEscape(c.apiKey))
		resp, err := c.http.Get(addr)
		if err != nil {
			return err
		}
		var rows []listingRow
		err = gocsv.Unmarshal(resp.Body, &rows)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("cannot read %s listings: %w", state, err)
		}
		for _, row := range rows {
			l := listing{stock: stockfolio.Stock{Symbol: row.Symbol, Name: row.Name, Exchange: row.Exchange}}
			if l.ipo, err = stockfolio.ParseDate(row.IPODate); err != nil {
				continue // some rows carry no usable IPO date
			}
			if row.DelistingDate != "" && row.DelistingDate != "null" {
				if l.delisted, err = stockfolio.ParseDate(row.DelistingDate); err != nil {
					continue
				}
			}
			if _, dup := c.listings[row.Symbol]; !dup {
				c.listings[row.Symbol] = l
			}
		}
		log.Debug().Str("state", state).Int("listings", len(rows)).Msg("loaded listing status")
	}
	return nil
}

func (c *Client) lookup(symbol string) (listing, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadListings(); err != nil {
		return listing{}, err
	}
	l, ok := c.listings[symbol]
	if !ok {
		return listing{}, fmt.Errorf("%s: %w", symbol, stockfolio.ErrUnsupportedSymbol)
	}
	return l, nil
}

// Identity returns the stock identity recorded in the listing status.
func (c *Client) Identity(symbol string) (stockfolio.Stock, error) {
	l, err := c.lookup(symbol)
	if err != nil {
		return stockfolio.Stock{}, err
	}
	return l.stock, nil
}

// IPODate returns the symbol's first listing date.
func (c *Client) IPODate(symbol string) (stockfolio.Date, error) {
	l, err := c.lookup(symbol)
	if err != nil {
		return stockfolio.Date{}, err
	}
	return l.ipo, nil
}

// DelistingDate returns when the symbol left the market, if it has.
func (c *Client) DelistingDate(symbol string) (stockfolio.Date, bool, error) {
	l, err := c.lookup(symbol)
	if err != nil {
		return stockfolio.Date{}, false, err
	}
	return l.delisted, !l.delisted.IsZero(), nil
}

// loadSeries fetches the full daily close series for a symbol once.
func (c *Client) loadSeries(symbol string) (map[stockfolio.Date]stockfolio.Money, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.series[symbol]; ok {
		return s, nil
	}

	addr := fmt.Sprintf("%s/query?function=TIME_SERIES_DAILY&symbol=%s&outputsize=full&apikey=%s", c.baseURL, url.QueryEscape(symbol), url.QueryEscape(c.apiKey))
	var payload any
	if err := jwget(c.http, addr, &payload); err != nil {
		return nil, err
	}
	raw, err := jsonpath.Get(`$["Time Series (Daily)"]`, payload)
	if err != nil {
		return nil, fmt.Errorf("%s: no daily series in response: %w", symbol, err)
	}
	days, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected daily series payload", symbol)
	}

	s := make(map[stockfolio.Date]stockfolio.Money, len(days))
	for day, quote := range days {
		on, err := stockfolio.ParseDate(day)
		if err != nil {
			return nil, err
		}
		raw, err := jsonpath.Get(`$["4. close"]`, quote)
		if err != nil {
			return nil, fmt.Errorf("%s %s: no close price: %w", symbol, day, err)
		}
		str, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%s %s: unexpected close price %v", symbol, day, raw)
		}
		value, err := decimal.NewFromString(str)
		if err != nil {
			return nil, fmt.Errorf("%s %s: close price %q: %w", symbol, day, str, err)
		}
		s[on] = stockfolio.M(value, stockfolio.USD)
	}
	c.series[symbol] = s
	log.Debug().Str("symbol", symbol).Int("days", len(s)).Msg("loaded daily series")
	return s, nil
}

// PriceOnDate returns the closing price on a date, or the nearest trading
// day's close up to 10 days back (forward when preferFuture is set).
// Outside the symbol's listing window the price is zero.
func (c *Client) PriceOnDate(symbol string, on stockfolio.Date, preferFuture bool) (stockfolio.Money, error) {
	l, err := c.lookup(symbol)
	if err != nil {
		return stockfolio.Money{}, err
	}
	if on.Before(l.ipo) || (!l.delisted.IsZero() && on.After(l.delisted)) {
		return stockfolio.USDollars(0), nil
	}
	series, err := c.loadSeries(symbol)
	if err != nil {
		return stockfolio.Money{}, err
	}
	step := -1
	if preferFuture {
		step = 1
	}
	for i := 0; i <= searchDays; i++ {
		if price, ok := series[on.AddDays(step*i)]; ok {
			return price, nil
		}
	}
	return stockfolio.Money{}, fmt.Errorf("%s: no price within %d days of %s", symbol, searchDays, on)
}

var _ stockfolio.PriceOracle = (*Client)(nil)
