package domain

import "strings"

// Kind identifies the advisory job kind carried in a notification.
type Kind string

const (
	KindPreTradeRisk       Kind = "pre-trade-risk"
	KindExecutionQuote     Kind = "execution-quote"
	KindMarketIntel        Kind = "market-intel"
	KindGasOptimizer       Kind = "gas-optimizer"
	KindStrategyAudit      Kind = "strategy-audit"
	KindPortfolioRebalance Kind = "portfolio-rebalance"

	// KindUnknown is the fallthrough for any tag outside the closed set.
	KindUnknown Kind = "unknown"
)

// ParseKind maps a raw job-kind tag to a Kind. Unrecognized tags map to
// KindUnknown rather than erroring so the pipeline stays total.
func ParseKind(raw string) Kind {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindPreTradeRisk:
		return KindPreTradeRisk
	case KindExecutionQuote:
		return KindExecutionQuote
	case KindMarketIntel:
		return KindMarketIntel
	case KindGasOptimizer:
		return KindGasOptimizer
	case KindStrategyAudit:
		return KindStrategyAudit
	case KindPortfolioRebalance:
		return KindPortfolioRebalance
	default:
		return KindUnknown
	}
}

// Supported reports whether the kind is in the closed advisory set.
func (k Kind) Supported() bool {
	return k != KindUnknown && k != ""
}

// AllKinds returns the closed set of supported job kinds.
func AllKinds() []Kind {
	return []Kind{
		KindPreTradeRisk,
		KindExecutionQuote,
		KindMarketIntel,
		KindGasOptimizer,
		KindStrategyAudit,
		KindPortfolioRebalance,
	}
}
