// Package advisor composes the validation, evidence-gathering, and
// synthesis stages into the delivery pipeline.
package advisor

import (
	"context"
	"log/slog"

	"github.com/quantrelay/trade-advisor/internal/advisor/domain"
	"github.com/quantrelay/trade-advisor/internal/advisor/evidence"
	"github.com/quantrelay/trade-advisor/internal/advisor/synth"
	"github.com/quantrelay/trade-advisor/internal/advisor/validate"
)

// Engine runs the validate → gather → synthesize pipeline for one job.
type Engine struct {
	gatherer *evidence.Gatherer
	logger   *slog.Logger
}

// NewEngine creates a pipeline engine.
func NewEngine(gatherer *evidence.Gatherer, logger *slog.Logger) *Engine {
	return &Engine{gatherer: gatherer, logger: logger}
}

// Run produces a deliverable for any kind and requirement. It is total:
// unknown kinds and invalid requirements yield well-formed deliverables,
// and evidence failures degrade into the evidence list.
func (e *Engine) Run(ctx context.Context, kind domain.Kind, req domain.Requirement) domain.Deliverable {
	if !kind.Supported() {
		e.logger.Warn("Unsupported job kind at delivery",
			slog.String("job_kind", string(kind)),
		)
		return synth.Unsupported(string(kind))
	}

	result := validate.Validate(kind, req)
	if !result.OK {
		e.logger.Info("Requirement failed validation",
			slog.String("job_kind", string(kind)),
			slog.Int("error_count", len(result.Errors)),
		)
		return synth.Rejected(kind, result)
	}

	records, gas, depth := e.gather(ctx, kind, req)

	return synth.Synthesize(synth.Input{
		Kind:        kind,
		Requirement: req,
		Evidence:    records,
		Gas:         gas,
		Depth:       depth,
	})
}

// gather fetches the signal set the kind requires. Each fetch is
// independent; failures appear as evidence-with-error.
func (e *Engine) gather(ctx context.Context, kind domain.Kind, req domain.Requirement) ([]domain.Evidence, map[string]any, map[string]any) {
	needGas, needDepth := signalSet(kind)

	var records []domain.Evidence
	var gas, depth map[string]any

	if needGas {
		var ev domain.Evidence
		gas, ev = e.gatherer.GasProfile(ctx)
		records = append(records, ev)
	}
	if needDepth {
		assetIn, assetOut, notional := depthQuery(kind, req)
		var ev domain.Evidence
		depth, ev = e.gatherer.VenueDepth(ctx, assetIn, assetOut, notional)
		records = append(records, ev)
	}
	return records, gas, depth
}

// signalSet maps a job kind to the evidence it needs. Gas-optimizer and
// strategy-audit have no concrete trading pair, so depth is skipped.
func signalSet(kind domain.Kind) (gas, depth bool) {
	switch kind {
	case domain.KindGasOptimizer, domain.KindStrategyAudit:
		return true, false
	default:
		return true, true
	}
}

// depthQuery derives the venue-depth query from the normalized
// requirement. Kinds without an explicit pair probe their dominant asset
// against USDC.
func depthQuery(kind domain.Kind, req domain.Requirement) (assetIn, assetOut string, notionalUSD float64) {
	switch kind {
	case domain.KindMarketIntel:
		assets, _ := req["focus_assets"].([]string)
		if len(assets) > 0 {
			assetIn = assets[0]
		}
		return assetIn, "USDC", 10000
	case domain.KindPortfolioRebalance:
		positions, _ := req["positions"].([]domain.Requirement)
		var total, largest float64
		for _, p := range positions {
			n, _ := p["notional_usd"].(float64)
			total += n
			if n > largest {
				largest = n
				assetIn, _ = p["asset"].(string)
			}
		}
		return assetIn, "USDC", total
	default:
		assetIn, _ = req["asset_in"].(string)
		assetOut, _ = req["asset_out"].(string)
		notionalUSD, _ = req["notional_value_usd"].(float64)
		return assetIn, assetOut, notionalUSD
	}
}
