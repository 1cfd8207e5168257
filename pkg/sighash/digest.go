package sighash

import (
	"encoding/binary"
	"hash"

	"github.com/ccoin/masp/pkg/txdata"
	"github.com/ccoin/masp/pkg/types"
	"golang.org/x/crypto/blake2b"
)

// Domain-separation tags prefixed to each section's hash input, so that
// an empty transparent bundle and an empty Sapling bundle never collide
// on the same all-zero digest.
var (
	tagHeader      = []byte("MASP_Header_Tag")
	tagTransparent = []byte("MASP_TranspH_Tag")
	tagSapling     = []byte("MASP_SaplingH_Tag")
	tagTxIn        = []byte("MASP_PrevoutHash_")
	tagTxOut       = []byte("MASP_OutputsHash_")
	tagSighash     = []byte("MASP_SigHash_____")
)

// TxIdDigester precomputes the per-section digests that are shared
// across every SignableInput for a single transaction, so hashing N
// transparent inputs costs one pass over the shared sections plus N
// small per-input digests instead of N full-transaction passes.
type TxIdDigester struct {
	headerDigest      types.Hash
	transparentDigest types.Hash
	saplingDigest     types.Hash
}

func newSection(tag []byte) hash.Hash {
	h, err := blake2b.New256(nil)
	if err != nil {
		// New256 only errors on an oversized key; nil key never fails.
		panic(err)
	}
	h.Write(tag)
	return h
}

func sumHash(h hash.Hash) types.Hash {
	var out types.Hash
	copy(out[:], h.Sum(nil))
	return out
}

func writeLE32(h hash.Hash, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	h.Write(buf[:])
}

func writeLE64(h hash.Hash, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	h.Write(buf[:])
}

// NewTxIdDigester computes the TxIdDigester parts bundle for data. data
// is treated as immutable for the lifetime of the digester; callers must
// not mutate it and reuse the same digester afterward.
func NewTxIdDigester(data *txdata.TransactionData) TxIdDigester {
	header := newSection(tagHeader)
	writeLE32(header, data.Version)
	writeLE32(header, data.VersionGroupID)
	writeLE32(header, data.LockTime)
	writeLE32(header, data.ExpiryHeight)

	transparent := newSection(tagTransparent)
	prevouts := newSection(tagTxIn)
	for _, in := range data.TransparentIn {
		prevouts.Write(in.PrevTxID[:])
		writeLE32(prevouts, in.PrevIndex)
	}
	transparent.Write(sumHash(prevouts)[:])

	outputs := newSection(tagTxOut)
	for _, out := range data.TransparentOut {
		outputs.Write(out.Asset[:])
		writeLE64(outputs, uint64(out.Value))
		outputs.Write(out.Address[:])
	}
	transparent.Write(sumHash(outputs)[:])

	sapling := newSection(tagSapling)
	for _, spend := range data.ShieldedSpends {
		sapling.Write(spend.ValueCommitment[:])
		sapling.Write(spend.Anchor[:])
		sapling.Write(spend.Nullifier[:])
		sapling.Write(spend.Rk[:])
	}
	for _, conv := range data.ShieldedConverts {
		sapling.Write(conv.ValueCommitment[:])
		sapling.Write(conv.ConversionCommitment[:])
		sapling.Write(conv.Anchor[:])
	}
	for _, out := range data.ShieldedOutputs {
		sapling.Write(out.Cmu[:])
		sapling.Write(out.ValueCommitment[:])
		sapling.Write(out.EphemeralKey[:])
	}
	// WriteAmount never errors against a hash.Hash sink.
	_ = types.WriteAmount(nopWriter{sapling}, data.ValueBalance)

	return TxIdDigester{
		headerDigest:      sumHash(header),
		transparentDigest: sumHash(transparent),
		saplingDigest:     sumHash(sapling),
	}
}

// nopWriter adapts a hash.Hash, whose Write never errors, to io.Writer
// for reuse with types.WriteAmount.
type nopWriter struct{ h hash.Hash }

func (w nopWriter) Write(p []byte) (int, error) { return w.h.Write(p) }
