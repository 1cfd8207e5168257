package txdata

import (
	"io"

	"github.com/btcsuite/btcd/wire"
)

// maxVectorLen bounds the CompactVec count accepted when reading a list
// of wire elements, guarding against a maliciously large allocation
// request from a truncated or hostile buffer.
const maxVectorLen = 1 << 20

// writeVector serializes items as a CompactVec<T>: a Bitcoin-style
// variable-length integer count followed by each element in order.
func writeVector[T any](w io.Writer, items []T, writeItem func(io.Writer, T) error) error {
	if err := wire.WriteVarInt(w, 0, uint64(len(items))); err != nil {
		return err
	}
	for _, item := range items {
		if err := writeItem(w, item); err != nil {
			return err
		}
	}
	return nil
}

// readVector deserializes a CompactVec<T> written by writeVector.
func readVector[T any](r io.Reader, readItem func(io.Reader) (T, error)) ([]T, error) {
	count, err := wire.ReadVarInt(r, 0)
	if err != nil {
		return nil, err
	}
	if count > maxVectorLen {
		return nil, invalidInput("CompactVec element count too large")
	}
	items := make([]T, 0, count)
	for i := uint64(0); i < count; i++ {
		item, err := readItem(r)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
