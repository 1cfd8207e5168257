package consensus

import "testing"

func TestForHeightPicksSapling(t *testing.T) {
	params := NewTestParameters()
	branch := ForHeight(params, 100)
	if branch != SaplingBranch {
		t.Errorf("expected SaplingBranch, got %#x", uint32(branch))
	}
}

func TestForHeightBeforeAnyActivation(t *testing.T) {
	params := NewTestParameters().
		WithActivation(Overwinter, 100).
		WithActivation(Sapling, 200).
		WithActivation(MASP, 200)
	if branch := ForHeight(params, 10); branch != PreOverwinterBranch {
		t.Errorf("expected PreOverwinterBranch, got %#x", uint32(branch))
	}
	if branch := ForHeight(params, 150); branch != OverwinterBranch {
		t.Errorf("expected OverwinterBranch, got %#x", uint32(branch))
	}
}

func TestSuggestedForBranchSapling(t *testing.T) {
	v := SuggestedForBranch(SaplingBranch)
	if !v.Overwintered || v.Version != SaplingTxVersion || v.VersionGroupID != SaplingVersionGroupID {
		t.Errorf("unexpected version for SaplingBranch: %+v", v)
	}
}
