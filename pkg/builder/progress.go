package builder

import (
	"sync"

	"github.com/google/uuid"
)

// Progress reports how many shielded spends and outputs have been proven
// so far during Build (converts are not counted), and the eventual total
// of spends plus outputs. BuildID
// identifies which of a caller's concurrently running builds the update
// belongs to.
type Progress struct {
	BuildID uuid.UUID
	Cur     uint32
	End     *uint32
}

// ProgressNotifier is a one-way, non-blocking sink the builder pushes
// Progress updates into. It is a pure producer: the builder holds it as
// an owned sender and silently tolerates the receiver having
// disconnected (spec §4.7, §9). closeOnce is shared by every copy taken
// from the same NewProgressNotifier call (including the per-build copy
// forBuild returns), so the same underlying channel can be handed to
// several concurrently running Builders without a second, racing close
// panicking: whichever Builder fails first actually closes it, and every
// other close becomes a no-op.
type ProgressNotifier struct {
	ch        chan<- Progress
	buildID   uuid.UUID
	closeOnce *sync.Once
}

// NewProgressNotifier wraps ch as a ProgressNotifier. The caller retains
// the receive end. The returned value may be installed on more than one
// Builder (via WithProgressNotifier) to multiplex their Progress streams
// onto a single channel, distinguished by BuildID; doing so is the only
// supported way to share a channel across concurrent builds; a channel
// obtained by calling NewProgressNotifier twice is not shared and must
// not be read as if it were.
func NewProgressNotifier(ch chan<- Progress) ProgressNotifier {
	return ProgressNotifier{ch: ch, closeOnce: new(sync.Once)}
}

// forBuild returns a copy of n that stamps every sent Progress with id.
func (n ProgressNotifier) forBuild(id uuid.UUID) ProgressNotifier {
	n.buildID = id
	return n
}

// send delivers p without blocking; if the receiver isn't ready (or has
// disconnected), the message is dropped rather than stalling the build.
func (n ProgressNotifier) send(p Progress) {
	if n.ch == nil {
		return
	}
	p.BuildID = n.buildID
	select {
	case n.ch <- p:
	default:
	}
}

// close signals that no further progress will be delivered because the
// build failed (spec §4.7). Safe to call more than once, including
// concurrently from another Builder sharing the same channel.
func (n ProgressNotifier) close() {
	if n.ch == nil || n.closeOnce == nil {
		return
	}
	n.closeOnce.Do(func() {
		close(n.ch)
	})
}
