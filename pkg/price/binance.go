package price

import (
	"context"
	"fmt"
	"strconv"

	"github.com/adshao/go-binance/v2"
)

// Binance fetches the current price of a trading pair from the Binance
// spot market.
type Binance struct {
	pair   string
	client *binance.Client
}

// BinanceOption is a function that configures a Binance client
type BinanceOption func(*Binance)

// WithCredentials sets the API credentials; the public ticker endpoint
// works without them.
func WithCredentials(key, secret string) BinanceOption {
	return func(b *Binance) {
		b.client = binance.NewClient(key, secret)
	}
}

// NewBinance creates a price source for the given pair (e.g. ARBUSDT).
func NewBinance(ctx context.Context, pair string, options ...BinanceOption) (*Binance, error) {
	b := &Binance{
		pair:   pair,
		client: binance.NewClient("", ""),
	}

	for _, option := range options {
		option(b)
	}

	// Test connection
	if err := b.client.NewPingService().Do(ctx); err != nil {
		return nil, fmt.Errorf("binance ping fail: %w", err)
	}

	return b, nil
}

// Current implements core.PriceSource.
func (b *Binance) Current(ctx context.Context) (float64, error) {
	prices, err := b.client.NewListPricesService().Symbol(b.pair).Do(ctx)
	if err != nil {
		return 0, err
	}
	if len(prices) < 1 {
		return 0, fmt.Errorf("no price returned for %s", b.pair)
	}

	return strconv.ParseFloat(prices[0].Price, 64)
}
