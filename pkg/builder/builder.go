// Package builder implements the transaction accumulator: it collects
// transparent and shielded items, checks the fee and balance invariants,
// drives the shielded prover, computes the signature hash, applies
// signatures, and freezes the result into an immutable Transaction
// (spec §4.3).
package builder

import (
	"io"

	"github.com/ccoin/masp/pkg/consensus"
	"github.com/ccoin/masp/pkg/fees"
	"github.com/ccoin/masp/pkg/prover"
	"github.com/ccoin/masp/pkg/sighash"
	"github.com/ccoin/masp/pkg/txdata"
	"github.com/ccoin/masp/pkg/types"
	"github.com/google/uuid"
)

// Builder is a single-owner, single-threaded transaction accumulator.
// None of its methods are safe for concurrent use; the caller
// accumulates items and then consumes the builder with a single Build
// call (spec §5).
type Builder struct {
	// buildID distinguishes this builder's Progress stream when a caller
	// runs several builds concurrently; it plays no role in the resulting
	// transaction's contents.
	buildID uuid.UUID

	params       consensus.Parameters
	rng          io.Reader
	targetHeight consensus.BlockHeight
	expiryHeight consensus.BlockHeight

	transparent *TransparentBuilder
	sapling     *SaplingBuilder

	notifier ProgressNotifier

	// signTransparent, signSpend supply the external signing schemes
	// (spec §4.1, §4.2) the builder invokes at the appropriate point in
	// Build; both are out of the core's scope to implement.
	signTransparent func(index int, in txdata.TxIn) ([]byte, error)
	signSpend       func(index int, rk [32]byte, sighash types.Hash) ([64]byte, error)
}

// New returns a Builder targeted at targetHeight, with expiry set to
// targetHeight plus the default expiry delta (spec §4.3). allowTransparentInputs
// mirrors the original's compile-time transparent-inputs capability.
func New(params consensus.Parameters, targetHeight consensus.BlockHeight, rng io.Reader, allowTransparentInputs bool) *Builder {
	return &Builder{
		buildID:      uuid.New(),
		params:       params,
		rng:          rng,
		targetHeight: targetHeight,
		expiryHeight: consensus.BlockHeight(uint32(targetHeight) + consensus.DefaultTxExpiryDelta),
		transparent:  NewTransparentBuilder(allowTransparentInputs),
		sapling:      NewSaplingBuilder(),
	}
}

// BuildID identifies this builder's Progress stream.
func (b *Builder) BuildID() uuid.UUID { return b.buildID }

// Params returns the network parameters the builder was configured for.
func (b *Builder) Params() consensus.Parameters { return b.params }

// TargetHeight returns the target height of the transaction under
// construction.
func (b *Builder) TargetHeight() consensus.BlockHeight { return b.targetHeight }

// SaplingSpends, SaplingOutputs, SaplingConverts return the accumulated
// counts, mirroring the original's read-only sapling_inputs/outputs/
// converts accessors.
func (b *Builder) SaplingSpends() int   { return b.sapling.SpendCount() }
func (b *Builder) SaplingOutputs() int  { return b.sapling.OutputCount() }
func (b *Builder) SaplingConverts() int { return b.sapling.ConvertCount() }

// MapBuilder re-parameterizes the builder over a new Parameters/RNG pair,
// preserving every already-accumulated transparent and shielded item. The
// receiver must not be used after calling MapBuilder.
func (b *Builder) MapBuilder(newParams consensus.Parameters, newRNG io.Reader) *Builder {
	b.params = newParams
	b.rng = newRNG
	return b
}

// TransparentInputs returns a read-only view of the accumulated
// transparent inputs, for use by a fee rule.
func (b *Builder) TransparentInputs() []fees.InputView { return b.transparent.Inputs() }

// TransparentOutputs returns a read-only view of the accumulated
// transparent outputs, for use by a fee rule.
func (b *Builder) TransparentOutputs() []fees.OutputView { return b.transparent.Outputs() }

// AddTransparentInput pushes a transparent input to be spent. Fails with
// ErrTransparentInputsDisabled unless the builder was constructed with
// allowTransparentInputs.
func (b *Builder) AddTransparentInput(prevTxID types.Hash, prevIndex uint32, asset types.AssetType, value int64, sequence uint32) error {
	return b.transparent.AddInput(prevTxID, prevIndex, asset, value, sequence)
}

// AddTransparentOutput pushes a transparent output.
func (b *Builder) AddTransparentOutput(address types.Address, asset types.AssetType, value int64) error {
	return b.transparent.AddOutput(address, asset, value)
}

// AddSaplingSpend accumulates a shielded spend, failing if its Merkle
// path's root differs from the anchor established by the first spend.
func (b *Builder) AddSaplingSpend(info SpendInfo) error {
	return b.sapling.AddSpend(info)
}

// AddSaplingConvert accumulates an asset conversion.
func (b *Builder) AddSaplingConvert(info ConvertInfo) error {
	return b.sapling.AddConvert(info)
}

// AddSaplingOutput accumulates a new shielded note.
func (b *Builder) AddSaplingOutput(info OutputInfo) error {
	return b.sapling.AddOutput(info)
}

// WithProgressNotifier installs the sink Build pushes progress updates
// into.
func (b *Builder) WithProgressNotifier(n ProgressNotifier) {
	b.notifier = n
}

// WithTransparentSigner installs the external signing scheme Build
// invokes once per transparent input while applying signatures.
func (b *Builder) WithTransparentSigner(sign func(index int, in txdata.TxIn) ([]byte, error)) {
	b.signTransparent = sign
}

// WithSpendSigner installs the external signing scheme Build invokes
// once per shielded spend to derive its spend-authorization signature.
func (b *Builder) WithSpendSigner(sign func(index int, rk [32]byte, sighash types.Hash) ([64]byte, error)) {
	b.signSpend = sign
}

// Build computes the fee, checks the balance invariant, proves the
// shielded bundle, signs the result, and freezes it into a Transaction
// (spec §4.3). The builder must not be reused afterward.
func (b *Builder) Build(p prover.TxProver, feeRule fees.FeeRule) (txdata.Transaction, SaplingMetadata, error) {
	notifier := b.notifier.forBuild(b.buildID)

	fee, err := feeRule.FeeRequired(
		b.params, b.targetHeight,
		b.transparent.Inputs(), b.transparent.Outputs(),
		b.sapling.SpendCount(), b.sapling.ConvertCount(), b.sapling.OutputCount(),
	)
	if err != nil {
		notifier.close()
		return txdata.Transaction{}, SaplingMetadata{}, feeErr(err)
	}

	// The fee-sufficiency check spends the combined transparent+sapling
	// balance (spec §4.3 step 2); the TransactionData.ValueBalance field
	// written below must carry only the sapling contribution (spec §3,
	// §8: "Σ t_in − Σ t_out + value_balance − fee == 0" sums them
	// separately).
	tBalance, err := b.transparent.ValueBalance()
	if err != nil {
		notifier.close()
		return txdata.Transaction{}, SaplingMetadata{}, balanceErr(err)
	}
	sBalance, err := b.sapling.ValueBalance()
	if err != nil {
		notifier.close()
		return txdata.Transaction{}, SaplingMetadata{}, balanceErr(err)
	}
	balance, err := tBalance.Add(sBalance)
	if err != nil {
		notifier.close()
		return txdata.Transaction{}, SaplingMetadata{}, balanceErr(err)
	}
	balanceAfterFees, err := balance.Sub(fee)
	if err != nil {
		notifier.close()
		return txdata.Transaction{}, SaplingMetadata{}, balanceErr(err)
	}
	if !balanceAfterFees.IsZero() {
		notifier.close()
		return txdata.Transaction{}, SaplingMetadata{}, insufficientFunds(balanceAfterFees.Negate())
	}

	branch := consensus.ForHeight(b.params, b.targetHeight)
	version := consensus.SuggestedForBranch(branch)

	transparentIn, transparentOut, _ := b.transparent.Build()

	ctx := p.NewSaplingProvingContext()
	defer ctx.Close()

	bundle, meta, err := b.sapling.Build(p, ctx, b.rng, b.targetHeight, notifier)
	if err != nil {
		notifier.close()
		return txdata.Transaction{}, SaplingMetadata{}, saplingBuildErr(err)
	}

	unauthed := &txdata.TransactionData{
		Overwintered:   version.Overwintered,
		Version:        version.Version,
		VersionGroupID: version.VersionGroupID,
		TransparentIn:  transparentIn,
		TransparentOut: transparentOut,
		LockTime:       0,
		ExpiryHeight:   uint32(b.expiryHeight),
		ValueBalance:   sBalance,
	}
	if bundle != nil {
		unauthed.ShieldedSpends = bundle.spends
		unauthed.ShieldedConverts = bundle.converts
		unauthed.ShieldedOutputs = bundle.outputs
	}

	digester := sighash.NewTxIdDigester(unauthed)

	if len(transparentIn) > 0 {
		if b.signTransparent == nil {
			notifier.close()
			return txdata.Transaction{}, SaplingMetadata{}, transparentBuildErr(ErrNoTransparentSigner)
		}
		signed, err := ApplySignatures(unauthed.TransparentIn, func(index int, in txdata.TxIn) ([]byte, error) {
			return b.signTransparent(index, in)
		})
		if err != nil {
			notifier.close()
			return txdata.Transaction{}, SaplingMetadata{}, transparentBuildErr(err)
		}
		unauthed.TransparentIn = signed
	}

	shieldedCommitment := sighash.SignatureHash(unauthed, sighash.Shielded{}, digester)

	if bundle != nil {
		if b.signSpend == nil && len(bundle.spends) > 0 {
			notifier.close()
			return txdata.Transaction{}, SaplingMetadata{}, saplingBuildErr(ErrNoSpendSigner)
		}
		sign := b.signSpend
		if sign == nil {
			sign = func(int, [32]byte, types.Hash) ([64]byte, error) { return [64]byte{}, nil }
		}
		spends, outputs, converts, bindingSig, err := ApplySaplingSignatures(
			bundle, p, ctx, b.rng, sBalance, shieldedCommitment, sign,
		)
		if err != nil {
			notifier.close()
			return txdata.Transaction{}, SaplingMetadata{}, err
		}
		unauthed.ShieldedSpends = spends
		unauthed.ShieldedOutputs = outputs
		unauthed.ShieldedConverts = converts
		sig := bindingSig
		unauthed.BindingSig = &sig
	}

	tx, err := txdata.Freeze(*unauthed)
	if err != nil {
		notifier.close()
		return txdata.Transaction{}, SaplingMetadata{}, saplingBuildErr(err)
	}

	return tx, meta, nil
}
