package builder

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ccoin/masp/pkg/consensus"
	"github.com/ccoin/masp/pkg/fees"
	"github.com/ccoin/masp/pkg/merkle"
	"github.com/ccoin/masp/pkg/prover"
	"github.com/ccoin/masp/pkg/txdata"
	"github.com/ccoin/masp/pkg/types"
)

func testParams() *consensus.TestParameters {
	return consensus.NewTestParameters()
}

func testAsset(b byte) types.AssetType {
	var a types.AssetType
	a[0] = b
	return a
}

func TestEmptyBuildFailsInsufficientFunds(t *testing.T) {
	rule, err := fees.NewDefaultFeeRule()
	if err != nil {
		t.Fatalf("default fee rule: %v", err)
	}
	b := New(testParams(), 100, bytes.NewReader(nil), true)
	_, _, err = b.Build(prover.NewMockProver(), rule)

	var bErr *Error
	if !errors.As(err, &bErr) {
		t.Fatalf("expected *Error, got %v (%T)", err, err)
	}
	if bErr.Kind != InsufficientFunds {
		t.Fatalf("expected InsufficientFunds, got %v", bErr.Kind)
	}
	if bErr.Amount.Get(fees.DefaultFeeAsset) != fees.DefaultFee {
		t.Errorf("expected shortfall of %d, got %d", fees.DefaultFee, bErr.Amount.Get(fees.DefaultFeeAsset))
	}
}

func TestTransparentOutputOnlyFailsInsufficientFunds(t *testing.T) {
	rule, err := fees.NewDefaultFeeRule()
	if err != nil {
		t.Fatalf("default fee rule: %v", err)
	}
	b := New(testParams(), 100, bytes.NewReader(nil), true)
	var addr types.Address
	asset := testAsset(0)
	if err := b.AddTransparentOutput(addr, asset, 50000); err != nil {
		t.Fatalf("AddTransparentOutput: %v", err)
	}
	_, _, err = b.Build(prover.NewMockProver(), rule)

	var bErr *Error
	if !errors.As(err, &bErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if bErr.Kind != InsufficientFunds {
		t.Fatalf("expected InsufficientFunds, got %v", bErr.Kind)
	}
	// testAsset(0) is the fee asset, so the shortfall includes the fee.
	if bErr.Amount.Get(asset) != 50000+fees.DefaultFee {
		t.Errorf("expected shortfall of %d in asset, got %d", 50000+fees.DefaultFee, bErr.Amount.Get(asset))
	}
}

func TestBalancedTransparentBuildSucceeds(t *testing.T) {
	asset := fees.DefaultFeeAsset
	fee, err := types.NewAmount(asset, fees.DefaultFee)
	if err != nil {
		t.Fatalf("NewAmount: %v", err)
	}
	rule := fees.NewFixedFeeRule(fee)

	b := New(testParams(), 100, bytes.NewReader(nil), true)
	var prevTxID types.Hash
	if err := b.AddTransparentInput(prevTxID, 0, asset, fees.DefaultFee+50000, 0xffffffff); err != nil {
		t.Fatalf("AddTransparentInput: %v", err)
	}
	var addr types.Address
	if err := b.AddTransparentOutput(addr, asset, 50000); err != nil {
		t.Fatalf("AddTransparentOutput: %v", err)
	}
	b.WithTransparentSigner(func(index int, in txdata.TxIn) ([]byte, error) {
		return []byte{0x01}, nil
	})

	tx, meta, err := b.Build(prover.NewMockProver(), rule)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !meta.Empty() {
		t.Errorf("expected empty sapling metadata for a transparent-only build")
	}
	zero := types.Hash{}
	txid := tx.TxID()
	if txid.IsEqual(&zero) {
		t.Errorf("expected a non-zero txid")
	}
}

func TestAnchorMismatchRejectedAtSaplingBuilderLevel(t *testing.T) {
	sb := NewSaplingBuilder()
	asset := testAsset(1)

	var path1, path2 merkle.Path
	path2.Siblings[0][0] = 1 // a different level-0 sibling yields a different root

	if err := sb.AddSpend(SpendInfo{Asset: asset, Value: 10, MerklePath: path1}); err != nil {
		t.Fatalf("first AddSpend: %v", err)
	}
	err := sb.AddSpend(SpendInfo{Asset: asset, Value: 10, MerklePath: path2})
	if !errors.Is(err, ErrAnchorMismatch) {
		t.Fatalf("expected ErrAnchorMismatch, got %v", err)
	}
}

func TestConvertAnchorMismatchIsIndependentOfSpendAnchor(t *testing.T) {
	sb := NewSaplingBuilder()
	asset := testAsset(1)

	var spendPath, convertPath1, convertPath2 merkle.Path
	convertPath2.Siblings[0][0] = 1 // a different level-0 sibling yields a different root

	if err := sb.AddSpend(SpendInfo{Asset: asset, Value: 10, MerklePath: spendPath}); err != nil {
		t.Fatalf("AddSpend: %v", err)
	}
	if err := sb.AddConvert(ConvertInfo{Asset: asset, Value: 1, MerklePath: convertPath1}); err != nil {
		t.Fatalf("first AddConvert: %v", err)
	}
	err := sb.AddConvert(ConvertInfo{Asset: asset, Value: 1, MerklePath: convertPath2})
	if !errors.Is(err, ErrConvertAnchorMismatch) {
		t.Fatalf("expected ErrConvertAnchorMismatch, got %v", err)
	}
}

func TestSaplingBuilderRejectsOutOfRangeAmount(t *testing.T) {
	sb := NewSaplingBuilder()
	if err := sb.AddOutput(OutputInfo{Asset: testAsset(1), Value: -1}); !errors.Is(err, ErrSaplingInvalidAmount) {
		t.Fatalf("expected ErrSaplingInvalidAmount, got %v", err)
	}
	// MaxMoney is the largest int64, so the only int64 whose magnitude
	// exceeds it is -MaxMoney-1.
	if err := sb.AddOutput(OutputInfo{Asset: testAsset(1), Value: -types.MaxMoney - 1}); !errors.Is(err, ErrSaplingInvalidAmount) {
		t.Fatalf("expected ErrSaplingInvalidAmount, got %v", err)
	}
}

func TestProgressMonotonic(t *testing.T) {
	ch := make(chan Progress, 16)
	notifier := NewProgressNotifier(ch)

	sb := NewSaplingBuilder()
	asset := testAsset(2)
	var path merkle.Path
	if err := sb.AddSpend(SpendInfo{Asset: asset, Value: 10, MerklePath: path}); err != nil {
		t.Fatalf("AddSpend: %v", err)
	}
	if err := sb.AddOutput(OutputInfo{Asset: asset, Value: 5}); err != nil {
		t.Fatalf("AddOutput: %v", err)
	}

	p := prover.NewMockProver()
	ctx := p.NewSaplingProvingContext()
	defer ctx.Close()

	_, _, err := sb.Build(p, ctx, bytes.NewReader(nil), 100, notifier)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	close(ch)

	var last uint32
	for progress := range ch {
		if progress.Cur < last {
			t.Fatalf("progress went backward: %d after %d", progress.Cur, last)
		}
		last = progress.Cur
		if progress.End == nil || *progress.End != 2 {
			t.Errorf("expected End=2, got %v", progress.End)
		}
	}
	if last != 2 {
		t.Errorf("expected final progress of 2, got %d", last)
	}
}

func TestEmptySaplingBuilderProducesNoBundle(t *testing.T) {
	sb := NewSaplingBuilder()
	p := prover.NewMockProver()
	ctx := p.NewSaplingProvingContext()
	defer ctx.Close()

	bundle, meta, err := sb.Build(p, ctx, bytes.NewReader(nil), 100, ProgressNotifier{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if bundle != nil {
		t.Errorf("expected a nil bundle for an empty sapling builder")
	}
	if !meta.Empty() {
		t.Errorf("expected empty metadata for an empty sapling builder")
	}
}

func TestNoTransparentSignerRejected(t *testing.T) {
	asset := fees.DefaultFeeAsset
	fee, err := types.NewAmount(asset, fees.DefaultFee)
	if err != nil {
		t.Fatalf("NewAmount: %v", err)
	}
	rule := fees.NewFixedFeeRule(fee)

	b := New(testParams(), 100, bytes.NewReader(nil), true)
	var prevTxID types.Hash
	if err := b.AddTransparentInput(prevTxID, 0, asset, fees.DefaultFee+50000, 0xffffffff); err != nil {
		t.Fatalf("AddTransparentInput: %v", err)
	}
	var addr types.Address
	if err := b.AddTransparentOutput(addr, asset, 50000); err != nil {
		t.Fatalf("AddTransparentOutput: %v", err)
	}

	_, _, err = b.Build(prover.NewMockProver(), rule)
	var bErr *Error
	if !errors.As(err, &bErr) || !errors.Is(err, ErrNoTransparentSigner) {
		t.Fatalf("expected a TransparentBuild error wrapping ErrNoTransparentSigner, got %v", err)
	}
}

// succeedingProver wraps MockProver but answers BindingSig with a fixed
// signature instead of failing, so tests can drive a build all the way
// to a frozen Transaction while still exercising the mock spend/output
// proving path.
type succeedingProver struct{ prover.MockProver }

func (succeedingProver) BindingSig(_ prover.ProvingContext, _ types.Amount, _ types.Hash) (prover.Signature, error) {
	return prover.Signature{}, nil
}

// TestMixedPoolValueBalanceIsSaplingOnly builds a transaction with
// nonzero flow in both pools (a transparent input larger than the
// transparent output, offset by a sapling spend and output so the
// combined balance nets to exactly the fee) and checks that the
// serialized ValueBalance field carries only the sapling contribution,
// not the transparent+sapling combination.
func TestMixedPoolValueBalanceIsSaplingOnly(t *testing.T) {
	asset := fees.DefaultFeeAsset
	fee, err := types.NewAmount(asset, fees.DefaultFee)
	if err != nil {
		t.Fatalf("NewAmount: %v", err)
	}
	rule := fees.NewFixedFeeRule(fee)

	b := New(testParams(), 100, bytes.NewReader(nil), true)

	var prevTxID types.Hash
	// Transparent side nets +70000 before the sapling side and fee are
	// applied.
	if err := b.AddTransparentInput(prevTxID, 0, asset, 100000, 0xffffffff); err != nil {
		t.Fatalf("AddTransparentInput: %v", err)
	}
	var addr types.Address
	if err := b.AddTransparentOutput(addr, asset, 30000); err != nil {
		t.Fatalf("AddTransparentOutput: %v", err)
	}
	b.WithTransparentSigner(func(index int, in txdata.TxIn) ([]byte, error) {
		return []byte{0x01}, nil
	})

	// Sapling side is net -(70000-fee): an output larger than the spend
	// by exactly 70000-fee, so combined with the transparent side the
	// overall balance after fee is zero but the sapling-only component
	// is negative (-(70000-fee)), distinct from the combined value.
	var path merkle.Path
	if err := b.AddSaplingSpend(SpendInfo{Asset: asset, Value: 0, MerklePath: path}); err != nil {
		t.Fatalf("AddSaplingSpend: %v", err)
	}
	if err := b.AddSaplingOutput(OutputInfo{Asset: asset, Value: 70000 - fees.DefaultFee}); err != nil {
		t.Fatalf("AddSaplingOutput: %v", err)
	}
	b.WithSpendSigner(func(index int, rk [32]byte, sighash types.Hash) ([64]byte, error) {
		return [64]byte{}, nil
	})

	tx, _, err := b.Build(succeedingProver{}, rule)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	wantSapling := -(int64(70000) - fees.DefaultFee)
	if got := tx.ValueBalance().Get(asset); got != wantSapling {
		t.Fatalf("ValueBalance = %d, want sapling-only balance %d (not the combined transparent+sapling total)", got, wantSapling)
	}
}

// TestBalancedShieldedBuildFailsBindingSig is spec §8 Scenario 5: a
// shielded build whose value balance is exactly zero still cannot
// complete through MockProver, because MockProver never produces real
// value commitments and so cannot honestly compute a binding signature
// over them.
func TestBalancedShieldedBuildFailsBindingSig(t *testing.T) {
	asset := fees.DefaultFeeAsset
	rule := fees.NewFixedFeeRule(types.Amount{})

	b := New(testParams(), 100, bytes.NewReader(nil), true)

	var path merkle.Path
	if err := b.AddSaplingSpend(SpendInfo{Asset: asset, Value: 1000, MerklePath: path}); err != nil {
		t.Fatalf("AddSaplingSpend: %v", err)
	}
	if err := b.AddSaplingOutput(OutputInfo{Asset: asset, Value: 1000}); err != nil {
		t.Fatalf("AddSaplingOutput: %v", err)
	}
	b.WithSpendSigner(func(index int, rk [32]byte, sighash types.Hash) ([64]byte, error) {
		return [64]byte{}, nil
	})

	_, _, err := b.Build(prover.NewMockProver(), rule)
	var bErr *Error
	if !errors.As(err, &bErr) {
		t.Fatalf("expected *Error, got %v (%T)", err, err)
	}
	if bErr.Kind != SaplingBuild {
		t.Fatalf("expected SaplingBuild, got %v", bErr.Kind)
	}
	if !errors.Is(err, ErrBindingSigFailed) {
		t.Fatalf("expected the build to fail via ErrBindingSigFailed, got %v", err)
	}
}

func TestTransparentInputsDisabledByDefault(t *testing.T) {
	b := New(testParams(), 100, bytes.NewReader(nil), false)
	var prevTxID types.Hash
	err := b.AddTransparentInput(prevTxID, 0, testAsset(0), 1, 0xffffffff)
	if !errors.Is(err, ErrTransparentInputsDisabled) {
		t.Fatalf("expected ErrTransparentInputsDisabled, got %v", err)
	}
}
