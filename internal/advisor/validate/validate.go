// Package validate normalizes and checks untyped job requirements into
// typed, bounded requests. Validation accumulates every violation in one
// pass and never short-circuits, so a caller can fix all fields before
// resubmission. The requirement is mutated in place regardless of outcome.
package validate

import (
	"fmt"

	"github.com/quantrelay/trade-advisor/internal/advisor/domain"
)

// Result is the outcome of validating one requirement. OK is true iff
// Errors is empty.
type Result struct {
	OK     bool
	Errors []string
}

// Allowed enumerations shared across job kinds.
var (
	supportedChains = []string{"ethereum", "base", "arbitrum", "optimism", "polygon"}
	supportedVenues = []string{"uniswap_v3", "curve", "balancer", "sushiswap", "aerodrome", "pancakeswap"}

	sides          = []string{"buy", "sell"}
	urgencies      = []string{"low", "normal", "high", "immediate"}
	riskTolerances = []string{"conservative", "moderate", "aggressive"}
	objectives     = []string{"preserve", "balanced", "growth"}
	severityFloors = []string{"info", "low", "medium", "high", "critical"}
)

// Numeric bounds and defaults.
const (
	minNotionalUSD = 1
	maxNotionalUSD = 1_000_000_000

	minSlippageBps     = 1
	maxSlippageBps     = 2000
	defaultSlippageBps = 50

	minLeverage     = 1
	maxLeverage     = 100
	defaultLeverage = 1

	minLookbackMinutes     = 5
	maxLookbackMinutes     = 43200
	defaultLookbackMinutes = 1440

	minDeadlineMinutes     = 1
	maxDeadlineMinutes     = 1440
	defaultDeadlineMinutes = 30
)

// Validate checks and normalizes req for the given job kind. It is total:
// any input, including nil, yields a Result rather than a panic.
func Validate(kind domain.Kind, req domain.Requirement) Result {
	if req == nil {
		return Result{OK: false, Errors: []string{"requirement: must be an object"}}
	}

	c := &checker{req: req}
	switch kind {
	case domain.KindPreTradeRisk:
		validatePreTradeRisk(c)
	case domain.KindExecutionQuote:
		validateExecutionQuote(c)
	case domain.KindMarketIntel:
		validateMarketIntel(c)
	case domain.KindGasOptimizer:
		validateGasOptimizer(c)
	case domain.KindStrategyAudit:
		validateStrategyAudit(c)
	case domain.KindPortfolioRebalance:
		validatePortfolioRebalance(c)
	default:
		c.errs = append(c.errs, "job_kind: "+string(kind)+" is not supported")
	}

	return Result{OK: len(c.errs) == 0, Errors: c.errs}
}

func validatePreTradeRisk(c *checker) {
	c.requireString("client_agent_id")
	c.chain("chain")
	c.requireString("asset_in")
	c.requireString("asset_out")
	c.enum("side", sides, "", true)
	c.number("notional_value_usd", minNotionalUSD, maxNotionalUSD, 0, true)
	c.number("max_slippage_bps", minSlippageBps, maxSlippageBps, defaultSlippageBps, false)
	c.number("leverage", minLeverage, maxLeverage, defaultLeverage, false)
	c.enum("urgency", urgencies, "normal", false)
	// Venue is advisory routing input, not a closed set: unknown venues are
	// tolerated and simply score without depth-weighting.
	c.optionalString("execution_venue", "")
}

func validateExecutionQuote(c *checker) {
	c.requireString("client_agent_id")
	c.chain("chain")
	c.requireString("asset_in")
	c.requireString("asset_out")
	c.enum("side", sides, "", true)
	c.number("notional_value_usd", minNotionalUSD, maxNotionalUSD, 0, true)
	c.number("max_slippage_bps", minSlippageBps, maxSlippageBps, defaultSlippageBps, false)
	c.enum("urgency", urgencies, "normal", false)
	if _, present := c.req["allowed_venues"]; present {
		c.stringArray("allowed_venues", supportedVenues)
	} else {
		c.req["allowed_venues"] = []string{}
	}
}

func validateMarketIntel(c *checker) {
	c.requireString("client_agent_id")
	c.chain("chain")
	c.stringArray("focus_assets", nil)
	c.number("lookback_minutes", minLookbackMinutes, maxLookbackMinutes, defaultLookbackMinutes, false)
	c.enum("risk_tolerance", riskTolerances, "moderate", false)
}

func validateGasOptimizer(c *checker) {
	c.requireString("client_agent_id")
	c.chain("chain")
	c.enum("urgency", urgencies, "normal", false)
	c.number("deadline_minutes", minDeadlineMinutes, maxDeadlineMinutes, defaultDeadlineMinutes, false)
	c.number("tx_count", 1, 1000, 1, false)
}

func validateStrategyAudit(c *checker) {
	c.requireString("client_agent_id")
	c.chain("chain")
	c.requireString("strategy_name")
	c.stringArray("contracts_involved", nil)
	c.enum("severity_floor", severityFloors, "low", false)
	c.number("leverage", minLeverage, maxLeverage, defaultLeverage, false)
}

func validatePortfolioRebalance(c *checker) {
	c.requireString("client_agent_id")
	c.chain("chain")
	c.enum("risk_tolerance", riskTolerances, "moderate", false)
	c.enum("objective", objectives, "balanced", false)
	c.number("max_slippage_bps", minSlippageBps, maxSlippageBps, defaultSlippageBps, false)
	validatePositions(c)
}

// validatePositions checks the structured position elements with indexed
// error labels ("positions[2].amount: ...").
func validatePositions(c *checker) {
	items, ok := anySlice(c.req["positions"])
	if !ok || len(items) == 0 {
		c.fail("positions", "must be a non-empty array")
		c.req["positions"] = []domain.Requirement{}
		return
	}

	out := make([]domain.Requirement, 0, len(items))
	for i, item := range items {
		obj, isMap := item.(map[string]any)
		if !isMap {
			c.failf("positions", "element %d must be an object", i)
			continue
		}
		pos := domain.Requirement(obj)
		pc := &checker{req: pos}
		pc.requireString("asset")
		pc.number("amount", 0, maxNotionalUSD, 0, true)
		pc.number("notional_usd", 0, maxNotionalUSD, 0, true)
		for _, e := range pc.errs {
			c.errs = append(c.errs, fmt.Sprintf("positions[%d].%s", i, e))
		}
		out = append(out, pos)
	}
	c.req["positions"] = out
}
