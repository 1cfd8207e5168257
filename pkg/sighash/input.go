// Package sighash computes the canonical commitment over an unauthorized
// transaction that every spend-auth signature and the binding signature
// sign. The digest strategy is injected as a capability (TxIdDigester)
// rather than hardcoded, so a future wire version can adopt a different
// commitment scheme without touching the builder (spec §4.5).
package sighash

import "github.com/ccoin/masp/pkg/types"

// SignableInput selects which part of the transaction a particular
// signature is over. Transparent inputs sign per-input, scoped to their
// own scriptCode and committed amount (BIP-143 style); shielded spends
// all sign the same transaction-wide commitment.
type SignableInput interface {
	isSignableInput()
}

// Shielded selects the single commitment shared by every shielded
// spend-authorization signature.
type Shielded struct{}

func (Shielded) isSignableInput() {}

// TransparentInput selects the per-input commitment for a transparent
// input being signed, scoped to the input's index, its scriptCode, and
// the amount it is known to spend.
type TransparentInput struct {
	Index      int
	ScriptCode []byte
	Amount     types.Amount
}

func (TransparentInput) isSignableInput() {}
