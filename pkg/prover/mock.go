package prover

import (
	"errors"
	"io"

	"github.com/ccoin/masp/pkg/types"
	"golang.org/x/crypto/blake2b"
)

// mockContext is MockProver's ProvingContext: it has no state of its own
// worth protecting, so Close is a no-op.
type mockContext struct{}

func (mockContext) Close() error { return nil }

// MockProver is a deterministic, non-cryptographic TxProver for tests
// and build-shape exploration. It derives "proofs" and "commitments" by
// hashing the witness, so two calls with identical witnesses always
// produce identical output, matching the reference implementation's
// test harness rather than a real proving system's zero-knowledge
// guarantees.
type MockProver struct{}

// NewMockProver returns a ready-to-use MockProver.
func NewMockProver() MockProver { return MockProver{} }

func (MockProver) NewSaplingProvingContext() ProvingContext { return mockContext{} }

func mockDigest(tag string, parts ...[]byte) [32]byte {
	h, _ := blake2b.New256([]byte(tag)[:min(len(tag), 64)])
	for _, p := range parts {
		h.Write(p)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// mockProofSize matches the wire format's fixed proof size so a mock
// build exercises the same codec paths a real prover's output would.
const mockProofSize = 192

func (MockProver) ProveSpend(_ ProvingContext, _ io.Reader, info SpendDescriptionInfo) (Proof, ValueCommitment, error) {
	d := mockDigest("MASP_MockSpend", info.Asset[:], leBytes(info.Value), info.Anchor[:], info.Nullifier[:], info.Rk[:])
	proof := Proof(repeatDigest(d, mockProofSize))

	var vc ValueCommitment
	copy(vc[:], mockDigest("MASP_MockSpendVC", info.Asset[:], leBytes(info.Value), info.ValueRandomness[:])[:])
	return proof, vc, nil
}

func (MockProver) ProveOutput(_ ProvingContext, _ io.Reader, info OutputDescriptionInfo) (Proof, ValueCommitment, error) {
	d := mockDigest("MASP_MockOutput", info.Asset[:], leBytes(info.Value), info.Cmu[:], info.EphemeralKey[:])
	proof := Proof(repeatDigest(d, mockProofSize))

	var vc ValueCommitment
	copy(vc[:], mockDigest("MASP_MockOutputVC", info.Asset[:], leBytes(info.Value), info.ValueRandomness[:])[:])
	return proof, vc, nil
}

func (MockProver) ProveConvert(_ ProvingContext, _ io.Reader, info ConvertDescriptionInfo) (Proof, ValueCommitment, error) {
	d := mockDigest("MASP_MockConvert", info.Asset[:], leBytes(info.Value), info.ConversionCommitment[:], info.Anchor[:])
	proof := Proof(repeatDigest(d, mockProofSize))

	var vc ValueCommitment
	copy(vc[:], mockDigest("MASP_MockConvertVC", info.Asset[:], leBytes(info.Value), info.ValueRandomness[:])[:])
	return proof, vc, nil
}

// ErrMockBindingSigUnsupported is always returned by MockProver.BindingSig.
// The binding signature attests that the value commitments a real prover
// produced actually sum to valueBalance; MockProver never produces real
// value commitments, so it cannot honestly compute one and fails instead
// of returning a signature that would lie about that property.
var ErrMockBindingSigUnsupported = errors.New("mock prover cannot compute a binding signature")

func (MockProver) BindingSig(_ ProvingContext, _ types.Amount, _ types.Hash) (Signature, error) {
	return Signature{}, ErrMockBindingSigUnsupported
}

func leBytes(v int64) []byte {
	b := make([]byte, 8)
	u := uint64(v)
	for i := 0; i < 8; i++ {
		b[i] = byte(u)
		u >>= 8
	}
	return b
}

func repeatDigest(d [32]byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = d[i%len(d)]
	}
	return out
}

