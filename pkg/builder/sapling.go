package builder

import (
	"errors"
	"io"

	"github.com/ccoin/masp/pkg/consensus"
	"github.com/ccoin/masp/pkg/merkle"
	"github.com/ccoin/masp/pkg/prover"
	"github.com/ccoin/masp/pkg/txdata"
	"github.com/ccoin/masp/pkg/types"
)

// Sapling sub-builder errors (spec §4.2, §7).
var (
	ErrSaplingInvalidAmount  = errors.New("invalid amount")
	ErrAnchorMismatch        = errors.New("anchor does not match previously established anchor")
	ErrConvertAnchorMismatch = errors.New("convert anchor does not match previously established convert anchor")
	ErrBindingSigFailed      = errors.New("binding signature failed")
)

// SpendInfo is the caller-supplied description of a shielded note being
// spent, deliberately narrow: key derivation, diversifiers, and note
// plaintext handling are external collaborators (spec §1).
type SpendInfo struct {
	Asset       types.AssetType
	Value       int64
	Nullifier   types.Hash
	Rk          [32]byte
	SpendingKey []byte
	MerklePath  merkle.Path
}

// OutputInfo is the caller-supplied description of a new shielded note.
type OutputInfo struct {
	Asset        types.AssetType
	Value        int64
	Cmu          types.Hash
	EphemeralKey [32]byte
	EncCiphertext [txdata.EncCiphertextSize]byte
	OutCiphertext [txdata.OutCiphertextSize]byte
}

// ConvertInfo is the caller-supplied description of an asset conversion.
type ConvertInfo struct {
	Asset                types.AssetType
	Value                int64
	ConversionCommitment types.Hash
	MerklePath           merkle.Path
}

// SaplingMetadata maps each authorized spend/output's final bundle
// position back to the index at which it was originally added to the
// builder, since Build is free to reorder items into canonical
// positions.
type SaplingMetadata struct {
	SpendIndices  []int
	OutputIndices []int
}

// Empty reports whether the metadata carries no permutation, the value
// Build returns when no Sapling bundle was produced.
func (m SaplingMetadata) Empty() bool {
	return len(m.SpendIndices) == 0 && len(m.OutputIndices) == 0
}

type saplingSpend struct {
	info SpendInfo
}

type saplingOutput struct {
	info OutputInfo
}

type saplingConvert struct {
	info ConvertInfo
}

// SaplingBuilder accumulates shielded spends, outputs, and converts,
// enforcing anchor consistency, and finalizes them into a proved,
// unsigned bundle. It is not safe for concurrent use.
type SaplingBuilder struct {
	spends   []saplingSpend
	outputs  []saplingOutput
	converts []saplingConvert

	anchor        *types.Hash
	convertAnchor *types.Hash
}

// NewSaplingBuilder returns an empty SaplingBuilder.
func NewSaplingBuilder() *SaplingBuilder {
	return &SaplingBuilder{}
}

// AddSpend accumulates a shielded spend. The first call establishes the
// transaction's anchor; every subsequent call must derive the same
// anchor from its Merkle path, or the call fails (spec §4.2, §8).
func (b *SaplingBuilder) AddSpend(info SpendInfo) error {
	if info.Value < 0 || info.Value > types.MaxMoney {
		return ErrSaplingInvalidAmount
	}
	root := info.MerklePath.Root(info.Nullifier)
	if b.anchor == nil {
		b.anchor = &root
	} else if *b.anchor != root {
		return ErrAnchorMismatch
	}
	b.spends = append(b.spends, saplingSpend{info: info})
	return nil
}

// AddConvert accumulates an asset conversion, subject to its own,
// independent anchor-consistency rule (spec §4.2).
func (b *SaplingBuilder) AddConvert(info ConvertInfo) error {
	if info.Value < 0 || info.Value > types.MaxMoney {
		return ErrSaplingInvalidAmount
	}
	root := info.MerklePath.Root(info.ConversionCommitment)
	if b.convertAnchor == nil {
		b.convertAnchor = &root
	} else if *b.convertAnchor != root {
		return ErrConvertAnchorMismatch
	}
	b.converts = append(b.converts, saplingConvert{info: info})
	return nil
}

// AddOutput accumulates a new shielded note.
func (b *SaplingBuilder) AddOutput(info OutputInfo) error {
	if info.Value < 0 || info.Value > types.MaxMoney {
		return ErrSaplingInvalidAmount
	}
	b.outputs = append(b.outputs, saplingOutput{info: info})
	return nil
}

// SpendCount, OutputCount, ConvertCount return the accumulated counts,
// for use by a fee rule.
func (b *SaplingBuilder) SpendCount() int   { return len(b.spends) }
func (b *SaplingBuilder) OutputCount() int  { return len(b.outputs) }
func (b *SaplingBuilder) ConvertCount() int { return len(b.converts) }

// ValueBalance returns Σ spends − Σ outputs + Σ convert_effects per
// asset.
func (b *SaplingBuilder) ValueBalance() (types.Amount, error) {
	balance := types.ZeroAmount()
	for _, s := range b.spends {
		amt, err := types.NewAmount(s.info.Asset, s.info.Value)
		if err != nil {
			return types.Amount{}, err
		}
		if balance, err = balance.Add(amt); err != nil {
			return types.Amount{}, err
		}
	}
	for _, o := range b.outputs {
		amt, err := types.NewAmount(o.info.Asset, o.info.Value)
		if err != nil {
			return types.Amount{}, err
		}
		if balance, err = balance.Sub(amt); err != nil {
			return types.Amount{}, err
		}
	}
	for _, c := range b.converts {
		amt, err := types.NewAmount(c.info.Asset, c.info.Value)
		if err != nil {
			return types.Amount{}, err
		}
		if balance, err = balance.Add(amt); err != nil {
			return types.Amount{}, err
		}
	}
	return balance, nil
}

// unauthorizedBundle is the proved-but-unsigned shielded bundle produced
// by Build: the descriptions with empty signature slots, which
// ApplySaplingSignatures later authorizes.
type unauthorizedBundle struct {
	spends   []txdata.SpendDescription
	outputs  []txdata.OutputDescription
	converts []txdata.ConvertDescription
}

// Build generates a zk-proof for every accumulated spend, output, and
// convert via prover, pushing a Progress update after each spend and
// each output (not after converts), and returns the resulting
// unauthorized bundle (with empty signature slots) plus its
// SaplingMetadata. Signatures, including binding_sig, are applied by
// ApplySaplingSignatures once the transaction-wide sighash is known.
func (b *SaplingBuilder) Build(
	p prover.TxProver,
	ctx prover.ProvingContext,
	rng io.Reader,
	height consensus.BlockHeight,
	notifier ProgressNotifier,
) (*unauthorizedBundle, SaplingMetadata, error) {
	if len(b.spends) == 0 && len(b.outputs) == 0 && len(b.converts) == 0 {
		return nil, SaplingMetadata{}, nil
	}

	total := uint32(len(b.spends) + len(b.outputs))
	var cur uint32

	bundle := &unauthorizedBundle{}
	meta := SaplingMetadata{
		SpendIndices:  make([]int, len(b.spends)),
		OutputIndices: make([]int, len(b.outputs)),
	}

	for i, s := range b.spends {
		proof, vc, err := p.ProveSpend(ctx, rng, prover.SpendDescriptionInfo{
			Asset:       s.info.Asset,
			Value:       s.info.Value,
			Anchor:      *b.anchor,
			Nullifier:   s.info.Nullifier,
			Rk:          s.info.Rk,
			SpendingKey: s.info.SpendingKey,
		})
		if err != nil {
			notifier.close()
			return nil, SaplingMetadata{}, err
		}
		bundle.spends = append(bundle.spends, txdata.SpendDescription{
			ValueCommitment: txdata.ValueCommitment(vc),
			Anchor:          *b.anchor,
			Nullifier:       s.info.Nullifier,
			Rk:              s.info.Rk,
			Proof:           fitProof(proof),
		})
		meta.SpendIndices[i] = i
		cur++
		notifier.send(Progress{Cur: cur, End: &total})
	}

	for _, c := range b.converts {
		proof, vc, err := p.ProveConvert(ctx, rng, prover.ConvertDescriptionInfo{
			Asset:                c.info.Asset,
			Value:                c.info.Value,
			ConversionCommitment: c.info.ConversionCommitment,
			Anchor:               *b.convertAnchor,
		})
		if err != nil {
			notifier.close()
			return nil, SaplingMetadata{}, err
		}
		bundle.converts = append(bundle.converts, txdata.ConvertDescription{
			ValueCommitment:      txdata.ValueCommitment(vc),
			ConversionCommitment: c.info.ConversionCommitment,
			Anchor:               *b.convertAnchor,
			Proof:                fitProof(proof),
		})
	}

	for i, o := range b.outputs {
		proof, vc, err := p.ProveOutput(ctx, rng, prover.OutputDescriptionInfo{
			Asset:        o.info.Asset,
			Value:        o.info.Value,
			Cmu:          o.info.Cmu,
			EphemeralKey: o.info.EphemeralKey,
		})
		if err != nil {
			notifier.close()
			return nil, SaplingMetadata{}, err
		}
		bundle.outputs = append(bundle.outputs, txdata.OutputDescription{
			Cmu:             o.info.Cmu,
			EphemeralKey:    o.info.EphemeralKey,
			EncCiphertext:   o.info.EncCiphertext,
			OutCiphertext:   o.info.OutCiphertext,
			ValueCommitment: txdata.ValueCommitment(vc),
			Proof:           fitProof(proof),
		})
		meta.OutputIndices[i] = i
		cur++
		notifier.send(Progress{Cur: cur, End: &total})
	}

	return bundle, meta, nil
}

// ApplySaplingSignatures derives each spend's randomized spend-authorization
// signature and the single binding signature over sighash, completing
// the bundle.
func ApplySaplingSignatures(
	bundle *unauthorizedBundle,
	p prover.TxProver,
	ctx prover.ProvingContext,
	rng io.Reader,
	valueBalance types.Amount,
	sighash types.Hash,
	sign func(index int, rk [32]byte, sighash types.Hash) ([64]byte, error),
) (spends []txdata.SpendDescription, outputs []txdata.OutputDescription, converts []txdata.ConvertDescription, bindingSig txdata.BindingSig, err error) {
	spends = make([]txdata.SpendDescription, len(bundle.spends))
	for i, s := range bundle.spends {
		sig, serr := sign(i, s.Rk, sighash)
		if serr != nil {
			return nil, nil, nil, txdata.BindingSig{}, saplingBuildErr(serr)
		}
		s.Signature = txdata.SpendAuthSig(sig)
		spends[i] = s
	}

	sig, berr := p.BindingSig(ctx, valueBalance, sighash)
	if berr != nil {
		return nil, nil, nil, txdata.BindingSig{}, &Error{Kind: SaplingBuild, Err: ErrBindingSigFailed}
	}

	return spends, bundle.outputs, bundle.converts, txdata.BindingSig(sig), nil
}

func fitProof(p prover.Proof) txdata.ZkProof {
	var out txdata.ZkProof
	copy(out[:], p)
	return out
}
