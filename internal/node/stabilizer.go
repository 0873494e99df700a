package node

import (
	"context"
	"time"

	"chordmail/internal/chordid"
	"chordmail/internal/rpcpb"
)

// runStabilizer drives the periodic maintenance loop of spec §4.6. It
// returns once ctx is canceled.
func (n *Node) runStabilizer(ctx context.Context) {
	ticker := time.NewTicker(n.stabilizeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !n.runStabilize.Load() {
				continue
			}
			n.stabilizeTick(ctx)
		}
	}
}

// stabilizeTick runs one maintenance pass, exactly the three numbered
// steps of spec §4.6. Failures are logged and swallowed — the next tick
// tries again.
func (n *Node) stabilizeTick(ctx context.Context) {
	if n.stabilizeSuccessor(ctx) {
		n.rebuildFingers(ctx)
	}

	// Step 2: plain (non-wrap-aware) comparison, preserved exactly per
	// spec §9's first Open Question — the same idiosyncrasy as the
	// Stabilize handler's predecessor-update check.
	pred, ok := n.Predecessor()
	if ok && n.self.ID > pred.ID {
		if err := n.transferBoxes(ctx, pred); err != nil {
			n.log.WithError(err).Debug("predecessor mailbox transfer skipped")
		}
	}
}

// stabilizeSuccessor asks the current successor who it thinks its
// predecessor is, and adopts that node as the new finger_table[0] iff
// reply.id is plain-greater than self.id (spec §4.6 step 1, the same
// non-wrap-aware comparison style as Stabilize). Reports whether a new
// successor was adopted, so the caller knows whether to rebuild fingers.
func (n *Node) stabilizeSuccessor(ctx context.Context) bool {
	successor := n.Successor()

	// Dial the successor even when it is self: a lone node's only way to
	// discover that a peer has joined and should become its new successor
	// is this self-answered Stabilize reply, which carries whatever
	// predecessor a notify call has since set. original_source's
	// stabilize() dials finger_table_.front() unconditionally for the
	// same reason.
	client, err := n.dial(successor)
	if err != nil {
		n.log.WithError(err).Warn("stabilize: dial successor failed")
		return false
	}

	reply, err := client.Stabilize(ctx, rpcpb.ToNodeInfoMessage(n.self))
	if err != nil {
		n.log.WithError(err).Warn("stabilize: rpc failed")
		return false
	}

	candidate := rpcpb.FromNodeInfoMessage(reply)
	if candidate.ID <= n.self.ID {
		return false
	}
	if err := n.setSuccessor(ctx, candidate); err != nil {
		n.log.WithError(err).Warn("stabilize: adopt new successor failed")
		return false
	}
	return true
}

// rebuildFingers recomputes every finger table entry beyond the successor
// by asking the ring to SearchFinger for each entry's start id (spec
// §4.3, §4.6).
func (n *Node) rebuildFingers(ctx context.Context) {
	for i := 1; i < chordid.M; i++ {
		start := chordid.FingerStart(n.self.ID, i)

		n.fingerMu.RLock()
		successor := n.fingers[0]
		n.fingerMu.RUnlock()

		var found chordid.NodeInfo
		if successor.Equal(n.self) {
			found = n.self
		} else {
			client, err := n.dial(successor)
			if err != nil {
				n.log.WithError(err).Debug("rebuild fingers: dial failed")
				continue
			}
			reply, err := client.SearchFinger(ctx, &rpcpb.FingerQuestion{
				SenderID:    int64(n.self.ID),
				FingerValue: int64(start),
			})
			if err != nil {
				n.log.WithError(err).Debug("rebuild fingers: search failed")
				continue
			}
			found = rpcpb.FromNodeInfoMessage(reply)
		}

		n.fingerMu.Lock()
		n.fingers[i] = found
		n.fingerMu.Unlock()
	}
}
