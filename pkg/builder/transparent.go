package builder

import (
	"errors"

	"github.com/ccoin/masp/pkg/fees"
	"github.com/ccoin/masp/pkg/txdata"
	"github.com/ccoin/masp/pkg/types"
)

// ErrInvalidAmount is returned by AddOutput (and AddInput, once
// transparent-input support is enabled) when a value falls outside
// [0, MAX_MONEY].
var ErrInvalidAmount = errors.New("invalid amount")

// ErrTransparentInputsDisabled is returned by AddInput when the builder
// was not constructed with transparent-input support, matching the
// original's compile-time "transparent-inputs" capability gate (spec
// §4.1): without it the transparent value-balance contribution is
// necessarily non-positive.
var ErrTransparentInputsDisabled = errors.New("transparent inputs are not supported by this builder")

// transparentInput is an accumulated, not-yet-signed transparent input.
type transparentInput struct {
	out txdata.TxOut
	in  txdata.TxIn
}

func (i transparentInput) ScriptSigSize() int { return len(i.in.ScriptSig) }

type transparentOutput struct {
	out txdata.TxOut
}

func (o transparentOutput) ScriptPubKeySize() int { return types.AddressSize }

// TransparentBuilder accumulates transparent inputs and outputs and
// finalizes them into an unsigned bundle. It is not safe for concurrent
// use.
type TransparentBuilder struct {
	allowInputs bool
	inputs      []transparentInput
	outputs     []transparentOutput
}

// NewTransparentBuilder returns an empty TransparentBuilder. allowInputs
// mirrors the original's compile-time "transparent-inputs" feature gate:
// when false, AddInput always fails.
func NewTransparentBuilder(allowInputs bool) *TransparentBuilder {
	return &TransparentBuilder{allowInputs: allowInputs}
}

// AddInput pushes a transparent input to be spent. prevTxID/prevIndex
// identify the coin being spent; the resulting input's ScriptSig is
// empty until signatures are applied.
func (b *TransparentBuilder) AddInput(prevTxID types.Hash, prevIndex uint32, asset types.AssetType, value int64, sequence uint32) error {
	if !b.allowInputs {
		return ErrTransparentInputsDisabled
	}
	if value < 0 || value > types.MaxMoney {
		return ErrInvalidAmount
	}
	b.inputs = append(b.inputs, transparentInput{
		in: txdata.TxIn{PrevTxID: prevTxID, PrevIndex: prevIndex, Sequence: sequence},
		out: txdata.TxOut{Asset: asset, Value: value},
	})
	return nil
}

// AddOutput pushes a transparent output paying value of asset to
// address.
func (b *TransparentBuilder) AddOutput(address types.Address, asset types.AssetType, value int64) error {
	if value < 0 || value > types.MaxMoney {
		return ErrInvalidAmount
	}
	b.outputs = append(b.outputs, transparentOutput{
		out: txdata.TxOut{Asset: asset, Value: value, Address: address},
	})
	return nil
}

// Inputs returns a read-only view of the accumulated inputs, for use by
// a fee rule.
func (b *TransparentBuilder) Inputs() []fees.InputView {
	views := make([]fees.InputView, len(b.inputs))
	for i, in := range b.inputs {
		views[i] = in
	}
	return views
}

// Outputs returns a read-only view of the accumulated outputs, for use
// by a fee rule.
func (b *TransparentBuilder) Outputs() []fees.OutputView {
	views := make([]fees.OutputView, len(b.outputs))
	for i, out := range b.outputs {
		views[i] = out
	}
	return views
}

// ValueBalance returns Σ inputs.value − Σ outputs.value per asset.
func (b *TransparentBuilder) ValueBalance() (types.Amount, error) {
	balance := types.ZeroAmount()
	for _, in := range b.inputs {
		amt, err := types.NewAmount(in.out.Asset, in.out.Value)
		if err != nil {
			return types.Amount{}, err
		}
		balance, err = balance.Add(amt)
		if err != nil {
			return types.Amount{}, err
		}
	}
	for _, out := range b.outputs {
		amt, err := types.NewAmount(out.out.Asset, out.out.Value)
		if err != nil {
			return types.Amount{}, err
		}
		balance, err = balance.Sub(amt)
		if err != nil {
			return types.Amount{}, err
		}
	}
	return balance, nil
}

// Build finalizes the accumulated inputs and outputs into an unsigned
// bundle, or returns ok=false if both are empty (no transparent bundle
// is needed).
func (b *TransparentBuilder) Build() (ins []txdata.TxIn, outs []txdata.TxOut, ok bool) {
	if len(b.inputs) == 0 && len(b.outputs) == 0 {
		return nil, nil, false
	}
	ins = make([]txdata.TxIn, len(b.inputs))
	for i, in := range b.inputs {
		ins[i] = in.in
	}
	outs = make([]txdata.TxOut, len(b.outputs))
	for i, out := range b.outputs {
		outs[i] = out.out
	}
	return ins, outs, true
}

// ApplySignatures replaces each input's ScriptSig with the result of
// sign, called once per input with its index and the unsigned input.
// The external signing scheme itself is out of scope (spec §4.1); this
// only wires the replacement into the bundle.
func ApplySignatures(ins []txdata.TxIn, sign func(index int, in txdata.TxIn) ([]byte, error)) ([]txdata.TxIn, error) {
	out := make([]txdata.TxIn, len(ins))
	for i, in := range ins {
		sig, err := sign(i, in)
		if err != nil {
			return nil, err
		}
		in.ScriptSig = sig
		out[i] = in
	}
	return out, nil
}
