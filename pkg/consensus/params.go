// Package consensus supplies the network-parameter and branch-id
// collaborators the builder consults to pick a transaction format: which
// upgrades are active at a given height, and which wire version that
// implies. The actual branch-activation schedule for a live network is an
// external collaborator (spec §1); this package defines the contract plus
// a fixture implementation used by tests.
package consensus

import "fmt"

// BlockHeight is a chain height.
type BlockHeight uint32

// NetworkUpgrade identifies a consensus upgrade boundary.
type NetworkUpgrade int

const (
	Overwinter NetworkUpgrade = iota
	Sapling
	MASP
)

func (u NetworkUpgrade) String() string {
	switch u {
	case Overwinter:
		return "overwinter"
	case Sapling:
		return "sapling"
	case MASP:
		return "masp"
	default:
		return fmt.Sprintf("upgrade(%d)", int(u))
	}
}

// BranchId identifies the consensus branch active at a given height; it
// governs which wire grammar and transaction version a builder must use.
type BranchId uint32

const (
	// PreOverwinterBranch covers heights before any upgrade in this list
	// has activated; the builder must not produce overwintered transactions.
	PreOverwinterBranch BranchId = 0
	// OverwinterBranch covers the Overwinter upgrade (tx version 3).
	OverwinterBranch BranchId = 0x5BA81B19
	// SaplingBranch covers Sapling and later, including MASP's convert
	// descriptions, which extend the v4 Sapling bundle rather than
	// introducing a new version.
	SaplingBranch BranchId = 0x76B809BB
)

// Version-group identifiers and transaction versions from spec §4.4/§6.
const (
	OverwinterVersionGroupID uint32 = 0x03C48270
	OverwinterTxVersion      uint32 = 3
	SaplingVersionGroupID    uint32 = 0x892F2085
	SaplingTxVersion         uint32 = 4
)

// DefaultTxExpiryDelta is added to the target height to compute a
// builder's default expiry height (spec §6).
const DefaultTxExpiryDelta = 40

// Parameters reports the activation height of each network upgrade. A
// caller targeting a live network supplies its own implementation backed
// by the network's real activation schedule.
type Parameters interface {
	ActivationHeight(upgrade NetworkUpgrade) (BlockHeight, bool)
}

// ForHeight returns the consensus branch active at height under params.
func ForHeight(params Parameters, height BlockHeight) BranchId {
	branch := PreOverwinterBranch
	if h, ok := params.ActivationHeight(Overwinter); ok && height >= h {
		branch = OverwinterBranch
	}
	if h, ok := params.ActivationHeight(Sapling); ok && height >= h {
		branch = SaplingBranch
	}
	if h, ok := params.ActivationHeight(MASP); ok && height >= h {
		branch = SaplingBranch
	}
	return branch
}

// TxVersion is the concrete (overwintered, version, version-group-id)
// triple a builder writes into a transaction header.
type TxVersion struct {
	Overwintered   bool
	Version        uint32
	VersionGroupID uint32
}

// SuggestedForBranch returns the transaction version a builder should use
// for the given consensus branch.
func SuggestedForBranch(branch BranchId) TxVersion {
	switch branch {
	case OverwinterBranch:
		return TxVersion{Overwintered: true, Version: OverwinterTxVersion, VersionGroupID: OverwinterVersionGroupID}
	case SaplingBranch:
		return TxVersion{Overwintered: true, Version: SaplingTxVersion, VersionGroupID: SaplingVersionGroupID}
	default:
		return TxVersion{Overwintered: false, Version: 1}
	}
}

// TestParameters is a fixture Parameters implementation with a
// configurable activation height per upgrade, for use in tests.
type TestParameters struct {
	activations map[NetworkUpgrade]BlockHeight
}

// NewTestParameters builds a TestParameters with every listed upgrade
// already active at height 0, matching the common test fixture of a
// network that has always run the latest rules.
func NewTestParameters() *TestParameters {
	return &TestParameters{
		activations: map[NetworkUpgrade]BlockHeight{
			Overwinter: 0,
			Sapling:    0,
			MASP:       0,
		},
	}
}

// WithActivation overrides the activation height of a single upgrade and
// returns the receiver for chaining.
func (p *TestParameters) WithActivation(upgrade NetworkUpgrade, height BlockHeight) *TestParameters {
	p.activations[upgrade] = height
	return p
}

// ActivationHeight implements Parameters.
func (p *TestParameters) ActivationHeight(upgrade NetworkUpgrade) (BlockHeight, bool) {
	h, ok := p.activations[upgrade]
	return h, ok
}
