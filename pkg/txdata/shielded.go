package txdata

import (
	"io"

	"github.com/ccoin/masp/pkg/types"
)

// ZkProofSize is the serialized size of a Groth16 proof as emitted by the
// prover collaborator (spec §1: proof generation is external; the core
// only carries the opaque bytes).
const ZkProofSize = 192

// ZkProof is an opaque zk-SNARK proof.
type ZkProof [ZkProofSize]byte

// ValueCommitment is an opaque Pedersen-style commitment to a shielded
// value, produced by the prover.
type ValueCommitment [32]byte

// SpendAuthSig is a RedJubjub spend authorization signature.
type SpendAuthSig [64]byte

// BindingSig is the single signature binding a transaction's shielded
// value balance.
type BindingSig [64]byte

// SpendDescription authorizes spending a shielded note. At build time
// (before apply_signatures) Signature is the zero value.
type SpendDescription struct {
	ValueCommitment ValueCommitment
	Anchor          types.Hash
	Nullifier       types.Hash
	Rk              [32]byte // randomized spend-auth verification key
	Proof           ZkProof
	Signature       SpendAuthSig
}

func writeSpendDescription(w io.Writer, s SpendDescription) error {
	for _, b := range [][]byte{s.ValueCommitment[:], s.Anchor[:], s.Nullifier[:], s.Rk[:], s.Proof[:], s.Signature[:]} {
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	return nil
}

func readSpendDescription(r io.Reader) (SpendDescription, error) {
	var s SpendDescription
	for _, b := range [][]byte{s.ValueCommitment[:], s.Anchor[:], s.Nullifier[:], s.Rk[:], s.Proof[:], s.Signature[:]} {
		if _, err := io.ReadFull(r, b); err != nil {
			return SpendDescription{}, err
		}
	}
	return s, nil
}

// ConvertDescription authorizes an asset-type conversion: a declared
// AllowedConversion witness committed-to at ConversionCommitment, plus
// the value converted and the Merkle path to the convert-tree anchor.
type ConvertDescription struct {
	ValueCommitment      ValueCommitment
	ConversionCommitment types.Hash
	Anchor               types.Hash
	Proof                ZkProof
}

func writeConvertDescription(w io.Writer, c ConvertDescription) error {
	for _, b := range [][]byte{c.ValueCommitment[:], c.ConversionCommitment[:], c.Anchor[:], c.Proof[:]} {
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	return nil
}

func readConvertDescription(r io.Reader) (ConvertDescription, error) {
	var c ConvertDescription
	for _, b := range [][]byte{c.ValueCommitment[:], c.ConversionCommitment[:], c.Anchor[:], c.Proof[:]} {
		if _, err := io.ReadFull(r, b); err != nil {
			return ConvertDescription{}, err
		}
	}
	return c, nil
}

// EncCiphertextSize and OutCiphertextSize match the Sapling note/outgoing
// ciphertext sizes: 1+11+8+32+512 bytes plus a 16-byte tag for enc,
// 32+32+16 for out.
const (
	EncCiphertextSize = 580
	OutCiphertextSize = 80
)

// OutputDescription authorizes creating a new shielded note.
type OutputDescription struct {
	Cmu             types.Hash
	EphemeralKey    [32]byte
	EncCiphertext   [EncCiphertextSize]byte
	OutCiphertext   [OutCiphertextSize]byte
	ValueCommitment ValueCommitment
	Proof           ZkProof
}

func writeOutputDescription(w io.Writer, o OutputDescription) error {
	for _, b := range [][]byte{o.Cmu[:], o.ValueCommitment[:], o.EphemeralKey[:], o.EncCiphertext[:], o.OutCiphertext[:], o.Proof[:]} {
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	return nil
}

func readOutputDescription(r io.Reader) (OutputDescription, error) {
	var o OutputDescription
	for _, b := range [][]byte{o.Cmu[:], o.ValueCommitment[:], o.EphemeralKey[:], o.EncCiphertext[:], o.OutCiphertext[:], o.Proof[:]} {
		if _, err := io.ReadFull(r, b); err != nil {
			return OutputDescription{}, err
		}
	}
	return o, nil
}

// JSDescription is a legacy JoinSplit description. Its internal shape is
// delegated to its own codec (spec §9 Open Questions); the core treats it
// as an opaque, fixed-size-per-flavor blob sized by whether the
// enclosing transaction uses the Groth16 JoinSplit proof encoding.
type JSDescription struct {
	Raw []byte
}

const (
	joinSplitSizeGroth = 1698
	joinSplitSizePHGR  = 1802
)

func joinSplitSize(usesGroth bool) int {
	if usesGroth {
		return joinSplitSizeGroth
	}
	return joinSplitSizePHGR
}

func writeJSDescription(usesGroth bool) func(io.Writer, JSDescription) error {
	return func(w io.Writer, js JSDescription) error {
		want := joinSplitSize(usesGroth)
		if len(js.Raw) != want {
			return invalidInput("malformed JoinSplit description")
		}
		_, err := w.Write(js.Raw)
		return err
	}
}

func readJSDescription(usesGroth bool) func(io.Reader) (JSDescription, error) {
	return func(r io.Reader) (JSDescription, error) {
		buf := make([]byte, joinSplitSize(usesGroth))
		if _, err := io.ReadFull(r, buf); err != nil {
			return JSDescription{}, err
		}
		return JSDescription{Raw: buf}, nil
	}
}
