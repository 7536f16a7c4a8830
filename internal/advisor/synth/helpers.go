package synth

import (
	"math"
	"sort"

	"github.com/quantrelay/trade-advisor/internal/advisor/domain"
)

// numField reads a normalized numeric field, falling back to a fixed
// conservative default when the validator never saw the field.
func numField(req domain.Requirement, key string, def float64) float64 {
	if v, ok := req[key].(float64); ok {
		return v
	}
	return def
}

func strField(req domain.Requirement, key, def string) string {
	if v, ok := req[key].(string); ok && v != "" {
		return v
	}
	return def
}

func strSliceField(req domain.Requirement, key string) []string {
	if v, ok := req[key].([]string); ok {
		return v
	}
	return nil
}

func clampF(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// roundBps rounds a fractional bps value to an integer, half away from zero.
func roundBps(f float64) int {
	return int(math.Round(f))
}

// round2 rounds size factors and fee figures to two decimals.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// slippageEstimateBps estimates execution slippage. With depth data the
// notional is scaled against the deepest venue; without it a conservative
// notional-only curve applies. The bool reports whether depth backed the
// estimate.
func slippageEstimateBps(notionalUSD float64, depth map[string]any) (int, bool) {
	if d := bestDepthUSD(depth); d > 0 {
		return clampInt(roundBps(notionalUSD/d*2500), 5, 400), true
	}
	return clampInt(roundBps(notionalUSD/50000*80), 15, 180), false
}

// bestDepthUSD extracts the deepest venue's depth from a venue-depth
// payload, or 0 when unavailable.
func bestDepthUSD(depth map[string]any) float64 {
	if depth == nil {
		return 0
	}
	var best float64
	for _, v := range venueList(depth) {
		if d, ok := v["depth_usd"].(float64); ok && d > best {
			best = d
		}
	}
	if best > 0 {
		return best
	}
	if b, ok := depth["best_by_depth"].(map[string]any); ok {
		if d, ok := b["depth_usd"].(float64); ok {
			return d
		}
	}
	return 0
}

// venueList widens the venues array from a depth payload.
func venueList(depth map[string]any) []map[string]any {
	raw, ok := depth["venues"].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// rankedVenues sorts venues by depth descending, optionally restricted to
// an allowed set.
func rankedVenues(depth map[string]any, allowed []string) []map[string]any {
	venues := venueList(depth)
	if len(allowed) > 0 {
		filtered := venues[:0]
		for _, v := range venues {
			name, _ := v["venue"].(string)
			for _, a := range allowed {
				if name == a {
					filtered = append(filtered, v)
					break
				}
			}
		}
		venues = filtered
	}
	sort.SliceStable(venues, func(i, j int) bool {
		di, _ := venues[i]["depth_usd"].(float64)
		dj, _ := venues[j]["depth_usd"].(float64)
		return di > dj
	})
	return venues
}

// congestionLevel reads the congestion tag from a gas payload, defaulting
// to "unknown" when gas data is missing.
func congestionLevel(gas map[string]any) string {
	if gas == nil {
		return "unknown"
	}
	if level, ok := gas["congestion_level"].(string); ok && level != "" {
		return level
	}
	return "unknown"
}

// congestionScore maps a congestion level into its fixed sub-score band.
// Unknown conditions score mid-band rather than optimistically.
func congestionScore(level string) int {
	switch level {
	case "low":
		return 4
	case "moderate":
		return 10
	case "elevated":
		return 18
	case "high":
		return 26
	default:
		return 15
	}
}

func congestionElevated(level string) bool {
	return level == "elevated" || level == "high"
}

// applyDecisionLadder evaluates the ordered threshold rules. The reduce
// rule fires when the estimate exceeds the caller's cap; the reject rule is
// evaluated last and unconditionally overrides, forcing size factor 0.
func applyDecisionLadder(score, estBps, capBps int) (string, float64) {
	decision := domain.DecisionApprove
	sizeFactor := 1.0
	if estBps > capBps {
		decision = domain.DecisionReduceSize
		sizeFactor = round2(clampF(float64(capBps)/float64(estBps), 0.2, 0.8))
	}
	if score >= rejectScoreThreshold {
		decision = domain.DecisionReject
		sizeFactor = 0
	}
	return decision, sizeFactor
}

// splitCount is the recommended execution split as a step function of
// notional. Thresholds vary per job kind.
func splitCount(notionalUSD, high, mid float64) int {
	switch {
	case notionalUSD > high:
		return 3
	case notionalUSD > mid:
		return 2
	default:
		return 1
	}
}

// recommendedMaxSlippageBps caps the advisory slippage at the smaller of
// the caller's cap and 85% of the estimate, with a 20 bps floor.
func recommendedMaxSlippageBps(capBps, estBps int) int {
	rec := capBps
	if discounted := roundBps(0.85 * float64(estBps)); discounted < rec {
		rec = discounted
	}
	if rec < 20 {
		rec = 20
	}
	return rec
}
