// Package txdata implements the shielded multi-asset transaction data
// model and its length-and-version-prefixed binary wire format (spec §3,
// §4.4). The format must be bit-exact: transaction identity is
// SHA256(SHA256(serialization)).
package txdata

import (
	"bytes"
	"io"

	"github.com/ccoin/masp/pkg/consensus"
	"github.com/ccoin/masp/pkg/types"
)

// TransactionData is the unsigned-or-signed body of a transaction. A
// Transaction wraps a frozen TransactionData together with its computed
// txid; TransactionData itself carries no identity.
type TransactionData struct {
	Overwintered   bool
	Version        uint32
	VersionGroupID uint32

	TransparentIn  []TxIn
	TransparentOut []TxOut
	LockTime       uint32
	ExpiryHeight   uint32

	ValueBalance     types.Amount
	ShieldedSpends   []SpendDescription
	ShieldedConverts []ConvertDescription
	ShieldedOutputs  []OutputDescription

	JoinSplits      []JSDescription
	JoinSplitPubKey *[32]byte
	JoinSplitSig    *[64]byte

	BindingSig *BindingSig
}

// IsOverwinterV3 reports whether the header bits select the Overwinter
// (v3) wire grammar.
func (d *TransactionData) IsOverwinterV3() bool {
	return d.Overwintered &&
		d.VersionGroupID == consensus.OverwinterVersionGroupID &&
		d.Version == consensus.OverwinterTxVersion
}

// IsSaplingV4 reports whether the header bits select the Sapling (v4)
// wire grammar, which is also the grammar MASP's convert descriptions
// extend.
func (d *TransactionData) IsSaplingV4() bool {
	return d.Overwintered &&
		d.VersionGroupID == consensus.SaplingVersionGroupID &&
		d.Version == consensus.SaplingTxVersion
}

// usesGrothJoinSplits reports whether JoinSplit descriptions in this
// transaction use the Groth16 proof encoding, which applies from
// Sapling onward.
func (d *TransactionData) usesGrothJoinSplits() bool {
	return d.Overwintered && d.Version >= consensus.SaplingTxVersion
}

func (d *TransactionData) header() uint32 {
	h := d.Version
	if d.Overwintered {
		h |= 1 << 31
	}
	return h
}

// Write serializes d following the conditional grammar driven by the
// header bits (spec §4.4). It rejects structurally inconsistent values
// (e.g. a JoinSplit signature set while JoinSplits is empty) rather than
// silently admitting more than one encoding of a logical state.
func (d *TransactionData) Write(w io.Writer) error {
	if err := writeUint32(w, d.header()); err != nil {
		return err
	}
	if d.Overwintered {
		if err := writeUint32(w, d.VersionGroupID); err != nil {
			return err
		}
	}

	isOverwinterV3 := d.IsOverwinterV3()
	isSaplingV4 := d.IsSaplingV4()
	if d.Overwintered && !(isOverwinterV3 || isSaplingV4) {
		return invalidInput("Unknown transaction format")
	}

	if err := writeVector(w, d.TransparentIn, writeTxIn); err != nil {
		return err
	}
	if err := writeVector(w, d.TransparentOut, writeTxOut); err != nil {
		return err
	}
	if err := writeUint32(w, d.LockTime); err != nil {
		return err
	}
	if isOverwinterV3 || isSaplingV4 {
		if err := writeUint32(w, d.ExpiryHeight); err != nil {
			return err
		}
	}

	if isSaplingV4 {
		if err := types.WriteAmount(w, d.ValueBalance); err != nil {
			return err
		}
		if err := writeVector(w, d.ShieldedSpends, writeSpendDescription); err != nil {
			return err
		}
		if err := writeVector(w, d.ShieldedConverts, writeConvertDescription); err != nil {
			return err
		}
		if err := writeVector(w, d.ShieldedOutputs, writeOutputDescription); err != nil {
			return err
		}
	}

	if d.Version >= 2 {
		if err := writeVector(w, d.JoinSplits, writeJSDescription(d.usesGrothJoinSplits())); err != nil {
			return err
		}
		if len(d.JoinSplits) > 0 {
			if d.JoinSplitPubKey == nil {
				return invalidInput("Missing JoinSplit pubkey")
			}
			if _, err := w.Write(d.JoinSplitPubKey[:]); err != nil {
				return err
			}
			if d.JoinSplitSig == nil {
				return invalidInput("Missing JoinSplit signature")
			}
			if _, err := w.Write(d.JoinSplitSig[:]); err != nil {
				return err
			}
		}
	}

	if d.Version < 2 || len(d.JoinSplits) == 0 {
		if d.JoinSplitPubKey != nil {
			return invalidInput("JoinSplit pubkey should not be present")
		}
		if d.JoinSplitSig != nil {
			return invalidInput("JoinSplit signature should not be present")
		}
	}

	hasShielded := len(d.ShieldedSpends) > 0 || len(d.ShieldedOutputs) > 0
	if isSaplingV4 && hasShielded {
		if d.BindingSig == nil {
			return invalidInput("Missing binding signature")
		}
		if _, err := w.Write(d.BindingSig[:]); err != nil {
			return err
		}
	} else if d.BindingSig != nil {
		return invalidInput("Binding signature should not be present")
	}

	return nil
}

// Read deserializes a TransactionData written by Write.
func Read(r io.Reader) (*TransactionData, error) {
	header, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	d := &TransactionData{
		Overwintered: header>>31 == 1,
		Version:      header & 0x7FFFFFFF,
	}

	if d.Overwintered {
		vgid, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		d.VersionGroupID = vgid
	}

	isOverwinterV3 := d.IsOverwinterV3()
	isSaplingV4 := d.IsSaplingV4()
	if d.Overwintered && !(isOverwinterV3 || isSaplingV4) {
		return nil, invalidInput("Unknown transaction format")
	}

	d.TransparentIn, err = readVector(r, readTxIn)
	if err != nil {
		return nil, err
	}
	d.TransparentOut, err = readVector(r, readTxOut)
	if err != nil {
		return nil, err
	}
	d.LockTime, err = readUint32(r)
	if err != nil {
		return nil, err
	}
	if isOverwinterV3 || isSaplingV4 {
		d.ExpiryHeight, err = readUint32(r)
		if err != nil {
			return nil, err
		}
	}

	if isSaplingV4 {
		d.ValueBalance, err = types.ReadAmount(r)
		if err != nil {
			return nil, err
		}
		d.ShieldedSpends, err = readVector(r, readSpendDescription)
		if err != nil {
			return nil, err
		}
		d.ShieldedConverts, err = readVector(r, readConvertDescription)
		if err != nil {
			return nil, err
		}
		d.ShieldedOutputs, err = readVector(r, readOutputDescription)
		if err != nil {
			return nil, err
		}
	} else {
		d.ValueBalance = types.ZeroAmount()
	}

	if d.Version >= 2 {
		d.JoinSplits, err = readVector(r, readJSDescription(d.usesGrothJoinSplits()))
		if err != nil {
			return nil, err
		}
		if len(d.JoinSplits) > 0 {
			var pubkey [32]byte
			if _, err := io.ReadFull(r, pubkey[:]); err != nil {
				return nil, err
			}
			d.JoinSplitPubKey = &pubkey

			var sig [64]byte
			if _, err := io.ReadFull(r, sig[:]); err != nil {
				return nil, err
			}
			d.JoinSplitSig = &sig
		}
	}

	hasShielded := len(d.ShieldedSpends) > 0 || len(d.ShieldedOutputs) > 0
	if isSaplingV4 && hasShielded {
		var sig BindingSig
		if _, err := io.ReadFull(r, sig[:]); err != nil {
			return nil, err
		}
		d.BindingSig = &sig
	}

	return d, nil
}

// Bytes serializes d to a standalone buffer.
func (d *TransactionData) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
