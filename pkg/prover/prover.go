// Package prover defines the shielded proving interface the builder
// drives during build: a narrow contract over context acquisition,
// per-spend/per-output proof generation, and the binding signature. The
// cryptographic internals (jubjub arithmetic, RedJubjub signing, Groth16
// setup) belong to a concrete implementation, not to this contract.
package prover

import (
	"io"

	"github.com/ccoin/masp/pkg/types"
)

// SpendDescriptionInfo is the private witness data for one shielded
// spend, assembled by the sapling sub-builder from an accumulated
// AddSpend call.
type SpendDescriptionInfo struct {
	Asset           types.AssetType
	Value           int64
	Anchor          types.Hash
	Nullifier       types.Hash
	Rk              [32]byte
	SpendingKey     []byte
	CommitmentRandomness [32]byte
	ValueRandomness      [32]byte
}

// OutputDescriptionInfo is the private witness data for one shielded
// output.
type OutputDescriptionInfo struct {
	Asset                types.AssetType
	Value                int64
	Cmu                  types.Hash
	EphemeralKey         [32]byte
	ValueRandomness      [32]byte
}

// ConvertDescriptionInfo is the private witness data for one asset
// conversion.
type ConvertDescriptionInfo struct {
	Asset                 types.AssetType
	Value                 int64
	ConversionCommitment  types.Hash
	Anchor                types.Hash
	ValueRandomness       [32]byte
}

// Proof is an opaque zk-SNARK proof. Its length is prover-determined;
// the builder is responsible for fitting it into the wire format's
// fixed-size proof field when assembling a description.
type Proof []byte

// ValueCommitment is an opaque Pedersen-style commitment to a shielded
// value.
type ValueCommitment [32]byte

// Signature is a RedJubjub-shaped 64-byte signature, used both for
// spend-authorization signatures and the binding signature.
type Signature [64]byte

// ProvingContext is the per-build resource the prover hands out from
// NewSaplingProvingContext and that every Prove* / BindingSig call
// consumes for the lifetime of a single build. It is exclusively owned
// for that duration and must never be reused across concurrent builds.
type ProvingContext interface {
	io.Closer
}

// TxProver is the shielded proving capability the builder consumes. A
// caller targeting production obtains a concrete prover backed by real
// parameters; tests typically use MockProver.
type TxProver interface {
	NewSaplingProvingContext() ProvingContext

	ProveSpend(ctx ProvingContext, rng io.Reader, info SpendDescriptionInfo) (Proof, ValueCommitment, error)

	ProveOutput(ctx ProvingContext, rng io.Reader, info OutputDescriptionInfo) (Proof, ValueCommitment, error)

	ProveConvert(ctx ProvingContext, rng io.Reader, info ConvertDescriptionInfo) (Proof, ValueCommitment, error)

	// BindingSig is called once, after every spend/output/convert in the
	// build has been proven, to sign the shielded value balance.
	BindingSig(ctx ProvingContext, valueBalance types.Amount, sighash types.Hash) (Signature, error)
}
