package sighash

import (
	"github.com/ccoin/masp/pkg/txdata"
	"github.com/ccoin/masp/pkg/types"
)

// SignatureHash computes the canonical commitment signed by the given
// input: either the single shielded commitment shared by every
// spend-authorization signature, or a transparent input's own scoped
// commitment. data must be the exact unauthorized TransactionData the
// digester was built from.
func SignatureHash(data *txdata.TransactionData, input SignableInput, digester TxIdDigester) types.Hash {
	h := newSection(tagSighash)
	h.Write(digester.headerDigest[:])
	h.Write(digester.transparentDigest[:])
	h.Write(digester.saplingDigest[:])

	switch in := input.(type) {
	case Shielded:
		// The shared sections already commit to every shielded
		// description; no further input is signed.
	case TransparentInput:
		writeLE32(h, uint32(in.Index))
		h.Write(in.ScriptCode)
		_ = types.WriteAmount(nopWriter{h}, in.Amount)
	}

	return sumHash(h)
}
