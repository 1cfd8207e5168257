package txdata

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ccoin/masp/pkg/consensus"
	"github.com/ccoin/masp/pkg/types"
)

func saplingSkeleton() TransactionData {
	return TransactionData{
		Overwintered:   true,
		Version:        consensus.SaplingTxVersion,
		VersionGroupID: consensus.SaplingVersionGroupID,
		LockTime:       0,
		ExpiryHeight:   100,
		ValueBalance:   types.ZeroAmount(),
	}
}

func TestRoundTripEmptySaplingTransaction(t *testing.T) {
	d := saplingSkeleton()

	raw, err := d.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}

	got, err := Read(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	raw2, err := got.Bytes()
	if err != nil {
		t.Fatalf("Bytes (round 2): %v", err)
	}
	if !bytes.Equal(raw, raw2) {
		t.Fatalf("round trip not byte-identical:\n%x\n%x", raw, raw2)
	}
}

func TestRoundTripPreservesTxID(t *testing.T) {
	d := saplingSkeleton()
	d.TransparentOut = []TxOut{{Value: 5}}

	tx, err := Freeze(d)
	if err != nil {
		t.Fatalf("Freeze: %v", err)
	}

	raw, err := tx.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}

	tx2, err := ReadTransaction(raw)
	if err != nil {
		t.Fatalf("ReadTransaction: %v", err)
	}

	if tx.TxID() != tx2.TxID() {
		t.Fatalf("txid changed across round trip: %s != %s", tx.TxID(), tx2.TxID())
	}
}

func TestUnknownTransactionFormatRejected(t *testing.T) {
	d := saplingSkeleton()
	d.VersionGroupID = 0xDEADBEEF

	if _, err := d.Bytes(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUnknownTransactionFormatRejectedOnRead(t *testing.T) {
	var buf bytes.Buffer
	if err := writeUint32(&buf, (1<<31)|3); err != nil { // overwintered, version 3, bogus group id
		t.Fatalf("writeUint32: %v", err)
	}
	if err := writeUint32(&buf, 0x12345678); err != nil {
		t.Fatalf("writeUint32: %v", err)
	}

	if _, err := Read(&buf); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestBindingSigRequiredWhenShieldedNonEmpty(t *testing.T) {
	d := saplingSkeleton()
	d.ShieldedSpends = []SpendDescription{{}}

	if _, err := d.Bytes(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected missing binding signature error, got %v", err)
	}
}

func TestBindingSigRejectedWhenShieldedEmpty(t *testing.T) {
	d := saplingSkeleton()
	var sig BindingSig
	d.BindingSig = &sig

	if _, err := d.Bytes(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected binding signature should not be present error, got %v", err)
	}
}

func TestJoinSplitPubKeyRequiredWhenJoinSplitsNonEmpty(t *testing.T) {
	d := saplingSkeleton()
	d.JoinSplits = []JSDescription{{Raw: make([]byte, joinSplitSizeGroth)}}

	if _, err := d.Bytes(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected missing JoinSplit pubkey error, got %v", err)
	}
}

func TestJoinSplitPubKeyRejectedWhenJoinSplitsEmpty(t *testing.T) {
	d := saplingSkeleton()
	var pk [32]byte
	d.JoinSplitPubKey = &pk

	if _, err := d.Bytes(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected JoinSplit pubkey should not be present error, got %v", err)
	}
}

func TestRoundTripWithFullShieldedBundle(t *testing.T) {
	d := saplingSkeleton()
	d.ShieldedSpends = []SpendDescription{{}}
	d.ShieldedConverts = []ConvertDescription{{}}
	d.ShieldedOutputs = []OutputDescription{{}, {}}
	var sig BindingSig
	d.BindingSig = &sig

	raw, err := d.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}

	got, err := Read(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got.ShieldedSpends) != 1 || len(got.ShieldedConverts) != 1 || len(got.ShieldedOutputs) != 2 {
		t.Fatalf("shielded bundle counts did not survive round trip: %+v", got)
	}
	if got.BindingSig == nil {
		t.Fatalf("binding signature did not survive round trip")
	}
}

func TestPreOverwinterTransactionOmitsExpiryAndShielded(t *testing.T) {
	d := TransactionData{
		Overwintered: false,
		Version:      1,
		ValueBalance: types.ZeroAmount(),
	}

	raw, err := d.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}

	got, err := Read(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Overwintered {
		t.Fatalf("expected non-overwintered transaction")
	}
	if !got.ValueBalance.IsZero() {
		t.Fatalf("expected zero value balance for pre-overwinter transaction")
	}
}
