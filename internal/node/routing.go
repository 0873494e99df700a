package node

import "chordmail/internal/chordid"

// getFingerForKey selects the next hop for a lookup of key, per spec §4.3.
func (n *Node) getFingerForKey(key chordid.Key) chordid.NodeInfo {
	n.fingerMu.RLock()
	defer n.fingerMu.RUnlock()

	successor := n.fingers[0]
	if chordid.Between(key, n.self.ID, successor.ID) {
		return successor
	}

	for i := 0; i < chordid.M-1; i++ {
		if chordid.Between(key, n.fingers[i].ID, n.fingers[i+1].ID) {
			return n.fingers[i]
		}
	}

	return n.fingers[chordid.M-1]
}

// ownsKey reports whether this node is authoritative for key, i.e.
// between(key, predecessor, self). A node with no predecessor set is, by
// definition, alone in the ring (or has not yet been told otherwise) and
// owns every key — this is the tagged-null equivalent of spec §9's
// "treat the sentinel as smaller than any id", carried to its logical
// conclusion rather than reproducing the raw arithmetic's off-by-the-whole-
// ring edge case (see DESIGN.md).
func (n *Node) ownsKey(key chordid.Key) bool {
	pred, ok := n.Predecessor()
	if !ok {
		return true
	}
	if pred.ID == n.self.ID {
		// Degenerate single-point interval: spec's between(k,a,b) formula
		// is false for every k when a==b, which would otherwise make a
		// lone, self-stabilized node own nothing. Treat it as owning the
		// whole ring, matching the "Insert/Lookup/Send loop back to self"
		// boundary behavior of spec §8.
		return true
	}
	return chordid.Between(key, pred.ID, n.self.ID)
}
