package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		input string
		want  Kind
	}{
		{"pre-trade-risk", KindPreTradeRisk},
		{"execution-quote", KindExecutionQuote},
		{"market-intel", KindMarketIntel},
		{"gas-optimizer", KindGasOptimizer},
		{"strategy-audit", KindStrategyAudit},
		{"portfolio-rebalance", KindPortfolioRebalance},
		{"  Pre-Trade-Risk  ", KindPreTradeRisk},
		{"GAS-OPTIMIZER", KindGasOptimizer},
		{"yield-farming", KindUnknown},
		{"", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseKind(tt.input))
		})
	}
}

func TestKind_Supported(t *testing.T) {
	for _, kind := range AllKinds() {
		assert.True(t, kind.Supported(), string(kind))
	}
	assert.False(t, KindUnknown.Supported())
	assert.False(t, Kind("").Supported())
}
