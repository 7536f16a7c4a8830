// Package evidence fetches supplementary market data from the resource
// collaborators. Every fetch produces exactly one provenance-tagged
// Evidence record; failures degrade to evidence-with-error and a nil
// payload instead of propagating.
package evidence

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/quantrelay/trade-advisor/internal/advisor/domain"
)

// Evidence source labels.
const (
	SourceGasProfile = "gas_profile"
	SourceVenueDepth = "venue_depth"
)

// Config holds the resource endpoint locations.
type Config struct {
	GasProfileURL  string
	VenueDepthURL  string
	RequestTimeout time.Duration
}

// Gatherer issues independent fetches against the gas-profile and
// venue-depth resources.
type Gatherer struct {
	client *http.Client
	config *Config
	logger *slog.Logger
}

// envelope is the shared resource response contract.
type envelope struct {
	OK               bool           `json:"ok"`
	Data             map[string]any `json:"data"`
	FreshnessSeconds int            `json:"freshness_seconds"`
}

// NewGatherer creates a gatherer with its own HTTP client. There is no
// retry policy at this layer; a failed fetch degrades rather than blocks.
func NewGatherer(config *Config, logger *slog.Logger) *Gatherer {
	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Gatherer{
		client: &http.Client{Timeout: timeout},
		config: config,
		logger: logger,
	}
}

// GasProfile fetches current gas conditions. The returned payload is nil
// when the fetch failed; the Evidence record always describes the attempt.
func (g *Gatherer) GasProfile(ctx context.Context) (map[string]any, domain.Evidence) {
	return g.fetch(ctx, SourceGasProfile, g.config.GasProfileURL)
}

// VenueDepth fetches liquidity depth for a trading pair at a notional size.
func (g *Gatherer) VenueDepth(ctx context.Context, assetIn, assetOut string, notionalUSD float64) (map[string]any, domain.Evidence) {
	q := url.Values{}
	q.Set("asset_in", assetIn)
	q.Set("asset_out", assetOut)
	q.Set("notional_usd", strconv.FormatFloat(notionalUSD, 'f', -1, 64))
	return g.fetch(ctx, SourceVenueDepth, g.config.VenueDepthURL+"?"+q.Encode())
}

// fetch runs one GET against a resource and folds any failure into the
// Evidence record.
func (g *Gatherer) fetch(ctx context.Context, source, rawURL string) (map[string]any, domain.Evidence) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, g.failed(source, fmt.Sprintf("build request: %s", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, g.failed(source, fmt.Sprintf("request failed: %s", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, g.failed(source, fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, g.failed(source, fmt.Sprintf("decode response: %s", err))
	}
	if !env.OK {
		return nil, g.failed(source, "resource reported ok=false")
	}

	g.logger.Debug("Evidence fetched",
		slog.String("source", source),
		slog.Int("freshness_seconds", env.FreshnessSeconds),
	)

	return env.Data, domain.Evidence{
		Source:           source,
		FreshnessSeconds: env.FreshnessSeconds,
	}
}

func (g *Gatherer) failed(source, reason string) domain.Evidence {
	g.logger.Warn("Evidence fetch degraded",
		slog.String("source", source),
		slog.String("reason", reason),
	)
	return domain.Evidence{Source: source, Error: reason}
}

// Confidence derives the deliverable confidence level from the distinct
// source labels that produced data. A source that only failed does not
// count, but a failure never subtracts a source that also succeeded.
func Confidence(records []domain.Evidence) string {
	seen := map[string]bool{}
	for _, r := range records {
		if r.Error == "" {
			seen[r.Source] = true
		}
	}
	switch {
	case seen[SourceGasProfile] && seen[SourceVenueDepth]:
		return domain.ConfidenceHigh
	case seen[SourceGasProfile] || seen[SourceVenueDepth]:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}
