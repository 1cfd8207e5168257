package txdata

import (
	"bytes"

	"github.com/ccoin/masp/pkg/types"
)

// Transaction is an immutable, identity-bearing transaction: a frozen
// TransactionData plus the txid computed over its exact serialization.
// The zero value is not a valid Transaction; construct one with Freeze.
type Transaction struct {
	txid types.Hash
	data TransactionData
}

// Freeze serializes data, computes its txid, and returns the resulting
// Transaction. The TransactionData struct is copied shallowly: its
// slices, pointer fields and ValueBalance still share storage with the
// caller's value, so changing their contents afterward also changes the
// frozen data without updating the txid.
func Freeze(data TransactionData) (Transaction, error) {
	raw, err := data.Bytes()
	if err != nil {
		return Transaction{}, err
	}
	return Transaction{
		txid: types.DoubleSHA256(raw),
		data: data,
	}, nil
}

// ReadTransaction deserializes and freezes a Transaction from its wire
// encoding. The txid is computed by re-serializing the parsed data and
// hashing that, the same way Freeze does, rather than hashing raw
// directly: CompactVec's varint length prefixes admit non-minimal
// encodings that still parse but re-serialize to different canonical
// bytes, so two byte-distinct encodings of the same transaction must
// still land on the same txid.
func ReadTransaction(raw []byte) (Transaction, error) {
	data, err := Read(bytes.NewReader(raw))
	if err != nil {
		return Transaction{}, err
	}
	return Freeze(*data)
}

// TxID returns the transaction's identity hash.
func (t Transaction) TxID() types.Hash { return t.txid }

// Data returns a pointer to the frozen transaction's underlying data.
// Callers must not mutate the fields reachable through it; a
// TransactionData obtained this way is a read-only view, not a
// license to re-freeze in place.
func (t *Transaction) Data() *TransactionData { return &t.data }

// ValueBalance returns the Sapling value balance of the shielded bundle.
func (t Transaction) ValueBalance() types.Amount { return t.data.ValueBalance }

// IsSaplingV4 reports whether the transaction uses the Sapling (v4) wire
// grammar that carries the shielded and convert bundles.
func (t Transaction) IsSaplingV4() bool { return t.data.IsSaplingV4() }

// Equal compares two transactions by identity, matching the original's
// identity-based equality (two transactions with identical data but
// produced by different freezes are equal iff their txids match).
func (t Transaction) Equal(other Transaction) bool {
	return t.txid == other.txid
}

// Bytes returns the transaction's wire serialization.
func (t Transaction) Bytes() ([]byte, error) {
	return t.data.Bytes()
}
