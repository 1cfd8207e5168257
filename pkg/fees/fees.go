// Package fees defines the fee-rule contract the builder consults to
// compute the required fee for a candidate transaction. Fee policy
// itself is an external collaborator (spec §1); this package only
// defines the narrow interface plus two concrete reference rules.
package fees

import (
	"github.com/ccoin/masp/pkg/consensus"
	"github.com/ccoin/masp/pkg/types"
)

// InputView is a read-only view of a transparent input a fee rule may
// size its fee on, without granting it the ability to mutate the
// builder's accumulated inputs.
type InputView interface {
	ScriptSigSize() int
}

// OutputView is the output-side counterpart of InputView.
type OutputView interface {
	ScriptPubKeySize() int
}

// FeeRule computes the fee required for a transaction with the given
// shape. Implementations must be pure: no I/O, no reliance on mutable
// external state, so the same shape always yields the same fee.
type FeeRule interface {
	FeeRequired(
		params consensus.Parameters,
		height consensus.BlockHeight,
		transparentIn []InputView,
		transparentOut []OutputView,
		spends, converts, outputs int,
	) (types.Amount, error)
}

// DefaultFeeAsset is the asset the default and fixed fee rules denominate
// their fee in, matching the network's native transparent asset.
var DefaultFeeAsset types.AssetType

// DefaultFee is the fee charged by FixedFeeRule when constructed via
// NewDefaultFeeRule, matching the original implementation's
// per-transaction default of 1000 zatoshi-equivalent units.
const DefaultFee int64 = 1000

// FixedFeeRule charges a single fixed amount regardless of transaction
// shape, the simplest rule a caller can supply.
type FixedFeeRule struct {
	fee types.Amount
}

// NewFixedFeeRule builds a FixedFeeRule charging amount on every call.
func NewFixedFeeRule(amount types.Amount) FixedFeeRule {
	return FixedFeeRule{fee: amount}
}

// NewDefaultFeeRule builds the reference FixedFeeRule charging
// DefaultFee in DefaultFeeAsset.
func NewDefaultFeeRule() (FixedFeeRule, error) {
	amount, err := types.NewAmount(DefaultFeeAsset, DefaultFee)
	if err != nil {
		return FixedFeeRule{}, err
	}
	return NewFixedFeeRule(amount), nil
}

// FeeRequired implements FeeRule.
func (r FixedFeeRule) FeeRequired(
	consensus.Parameters, consensus.BlockHeight,
	[]InputView, []OutputView, int, int, int,
) (types.Amount, error) {
	return r.fee, nil
}
