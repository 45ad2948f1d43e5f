// Package rates fetches fiat exchange rates from external tickers.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/viralforge/view-reward-engine/internal/domain"
)

const defaultTickerURL = "https://blockchain.info/ticker"

// BlockchainTicker reads the BTC/INR spot price from the blockchain.info
// public ticker.
type BlockchainTicker struct {
	url    string
	client *http.Client
}

func NewBlockchainTicker(url string) *BlockchainTicker {
	if url == "" {
		url = defaultTickerURL
	}
	return &BlockchainTicker{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type tickerEntry struct {
	Last float64 `json:"last"`
}

func (t *BlockchainTicker) GetBtcInrRate(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.url, nil)
	if err != nil {
		return 0, fmt.Errorf("build ticker request: %w", err)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch ticker: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("ticker returned status %d: %w", resp.StatusCode, domain.ErrStorageUnavailable)
	}

	var ticker map[string]tickerEntry
	if err := json.NewDecoder(resp.Body).Decode(&ticker); err != nil {
		return 0, fmt.Errorf("decode ticker: %w", err)
	}
	entry, ok := ticker["INR"]
	if !ok || entry.Last <= 0 {
		return 0, fmt.Errorf("ticker has no usable INR quote: %w", domain.ErrInvalidInput)
	}
	return entry.Last, nil
}
