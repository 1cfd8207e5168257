package txdata

import (
	"testing"

	"github.com/ccoin/masp/pkg/consensus"
	"github.com/ccoin/masp/pkg/types"
)

func TestFreezeComputesTxID(t *testing.T) {
	d := saplingSkeleton()

	tx, err := Freeze(d)
	if err != nil {
		t.Fatalf("Freeze: %v", err)
	}

	raw, err := d.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	want := types.DoubleSHA256(raw)
	if tx.TxID() != want {
		t.Fatalf("txid = %s, want %s", tx.TxID(), want)
	}
}

func TestTransactionEqualByIdentity(t *testing.T) {
	d1 := saplingSkeleton()
	d2 := saplingSkeleton()
	d2.ExpiryHeight = d1.ExpiryHeight + 1

	tx1, err := Freeze(d1)
	if err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	tx2, err := Freeze(d2)
	if err != nil {
		t.Fatalf("Freeze: %v", err)
	}

	if tx1.Equal(tx2) {
		t.Fatalf("transactions with different data compared equal")
	}

	tx1Again, err := Freeze(d1)
	if err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	if !tx1.Equal(tx1Again) {
		t.Fatalf("identical data produced different txids")
	}
}

func TestDataAccessorReflectsFrozenFields(t *testing.T) {
	d := saplingSkeleton()
	d.LockTime = 42

	tx, err := Freeze(d)
	if err != nil {
		t.Fatalf("Freeze: %v", err)
	}

	if got := tx.Data().LockTime; got != 42 {
		t.Fatalf("LockTime = %d, want 42", got)
	}
	if !tx.IsSaplingV4() {
		t.Fatalf("expected sapling v4 transaction")
	}
}

func TestTxVersionMatchesBranch(t *testing.T) {
	v := consensus.SuggestedForBranch(consensus.SaplingBranch)
	d := saplingSkeleton()
	if d.Version != v.Version || d.VersionGroupID != v.VersionGroupID || d.Overwintered != v.Overwintered {
		t.Fatalf("fixture header does not match SuggestedForBranch: %+v vs %+v", d, v)
	}
}
