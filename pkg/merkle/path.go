// Package merkle provides the minimal Merkle-path contract the builder
// needs to enforce anchor consistency. The real commitment tree, its
// persistence, and the note/witness cryptography that produces these
// paths are external collaborators (see spec §1) — this package only
// captures the shape a path must have and how its root is recomputed.
package merkle

import (
	"github.com/ccoin/masp/pkg/types"
)

// Depth is the fixed depth of the Sapling-style commitment tree.
const Depth = 32

// Path is a witness from a leaf to the root of a commitment tree:
// the sibling hash at every level plus which side the leaf sits on.
type Path struct {
	// Siblings holds one hash per tree level, root-ward from the leaf.
	Siblings [Depth]types.Hash
	// Position is the leaf's index; bit i selects whether Siblings[i] is
	// the left or right sibling at level i.
	Position uint64
}

// Root recomputes the Merkle root implied by the path, given the leaf
// commitment it authenticates.
func (p Path) Root(leaf types.Hash) types.Hash {
	cur := leaf
	for level := 0; level < Depth; level++ {
		sib := p.Siblings[level]
		var buf [64]byte
		if p.Position&(1<<uint(level)) == 0 {
			copy(buf[:32], cur[:])
			copy(buf[32:], sib[:])
		} else {
			copy(buf[:32], sib[:])
			copy(buf[32:], cur[:])
		}
		cur = types.DoubleSHA256(buf[:])
	}
	return cur
}
