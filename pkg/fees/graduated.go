package fees

import (
	"github.com/ccoin/masp/pkg/consensus"
	"github.com/ccoin/masp/pkg/types"
)

// GraduatedFeeRuleConfig parameterizes GraduatedFeeRule's marginal cost
// per transaction component, following the size-based fee schedule the
// original implementation derives from input/output/description counts
// rather than a flat per-transaction charge.
type GraduatedFeeRuleConfig struct {
	// Marginal is the fee charged per input, output, or shielded
	// description beyond the first GraceComponents.
	Marginal int64
	// GraceComponents is the number of components (summed across
	// transparent inputs/outputs and shielded spends/converts/outputs)
	// covered by the flat portion of the fee before marginal charges
	// apply.
	GraceComponents int
	// Flat is the fee charged regardless of shape, before any marginal
	// component is added.
	Flat int64
}

// DefaultGraduatedFeeRuleConfig returns the reference configuration:
// a flat DefaultFee covering up to two components, with each additional
// component costing a marginal fifth of the default fee.
func DefaultGraduatedFeeRuleConfig() GraduatedFeeRuleConfig {
	return GraduatedFeeRuleConfig{
		Marginal:        DefaultFee / 5,
		GraceComponents: 2,
		Flat:            DefaultFee,
	}
}

// GraduatedFeeRule charges Flat plus Marginal for every transaction
// component beyond the configured grace allowance, all denominated in
// DefaultFeeAsset.
type GraduatedFeeRule struct {
	cfg GraduatedFeeRuleConfig
}

// NewGraduatedFeeRule builds a GraduatedFeeRule from cfg. A zero-value
// cfg produces a rule that always charges zero; callers wanting
// reasonable defaults should start from DefaultGraduatedFeeRuleConfig.
func NewGraduatedFeeRule(cfg GraduatedFeeRuleConfig) GraduatedFeeRule {
	return GraduatedFeeRule{cfg: cfg}
}

// FeeRequired implements FeeRule.
func (r GraduatedFeeRule) FeeRequired(
	_ consensus.Parameters, _ consensus.BlockHeight,
	transparentIn []InputView, transparentOut []OutputView,
	spends, converts, outputs int,
) (types.Amount, error) {
	components := len(transparentIn) + len(transparentOut) + spends + converts + outputs
	fee := r.cfg.Flat
	if extra := components - r.cfg.GraceComponents; extra > 0 {
		fee += int64(extra) * r.cfg.Marginal
	}
	return types.NewAmount(DefaultFeeAsset, fee)
}
