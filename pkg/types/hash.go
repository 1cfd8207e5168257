// Package types defines the shared value types used throughout the
// shielded multi-asset transaction core: hashes, transparent addresses,
// asset tags, and multi-asset amounts.
package types

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// HashSize is the size in bytes of a Hash value.
const HashSize = chainhash.HashSize

// AddressSize is the size in bytes of a transparent Address.
const AddressSize = 20

// Hash is a 32-byte digest. It aliases chainhash.Hash so that txids,
// anchors, nullifiers, and commitments all print using the same
// byte-reversed lower-case hex convention used throughout the original
// Bitcoin/Zcash line of descent.
type Hash = chainhash.Hash

// DoubleSHA256 computes SHA256(SHA256(data)), the digest used for
// transaction identity.
func DoubleSHA256(data []byte) Hash {
	return chainhash.DoubleHashH(data)
}

// Address is a 20-byte transparent output destination.
type Address [AddressSize]byte

// IsZero reports whether the address is the all-zero value.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Bytes returns the address as a byte slice.
func (a Address) Bytes() []byte {
	return a[:]
}
