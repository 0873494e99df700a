package node

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"chordmail/internal/chordid"
)

// newBareNode builds a Node with a hand-set identity and finger table,
// without binding any listener — enough to exercise routing logic in
// isolation, in the same spirit as the teacher's own practice of wiring
// up a finger table directly in a test rather than spinning up real nodes.
func newBareNode(id chordid.Key, fingers ...chordid.NodeInfo) *Node {
	n := &Node{self: chordid.NodeInfo{Address: "test", ID: id}}
	for i := range n.fingers {
		if i < len(fingers) {
			n.fingers[i] = fingers[i]
		} else {
			n.fingers[i] = n.self
		}
	}
	return n
}

func TestGetFingerForKeyPicksSuccessorWhenKeyIsNext(t *testing.T) {
	successor := chordid.NodeInfo{Address: "succ", ID: 20}
	n := newBareNode(10, successor)

	got := n.getFingerForKey(15)
	assert.True(t, got.Equal(successor))
}

func TestGetFingerForKeyPicksClosestPrecedingFinger(t *testing.T) {
	f0 := chordid.NodeInfo{Address: "f0", ID: 11}
	f1 := chordid.NodeInfo{Address: "f1", ID: 14}
	f2 := chordid.NodeInfo{Address: "f2", ID: 100}
	n := newBareNode(10, f0, f1, f2)

	// key 50 is not covered by (self,f0] nor (f0,f1]; the scan should land
	// on f1, the last finger strictly preceding it.
	got := n.getFingerForKey(50)
	assert.True(t, got.Equal(f1))
}

func TestOwnsKeyWithNoPredecessorOwnsEverything(t *testing.T) {
	n := newBareNode(500)
	assert.True(t, n.ownsKey(0))
	assert.True(t, n.ownsKey(500))
	assert.True(t, n.ownsKey(999999))
}

func TestOwnsKeyWithSelfAsPredecessorOwnsEverything(t *testing.T) {
	n := newBareNode(500)
	self := n.self
	n.predecessor = &self
	assert.True(t, n.ownsKey(0))
	assert.True(t, n.ownsKey(999999))
}

func TestOwnsKeyRespectsPredecessorArc(t *testing.T) {
	n := newBareNode(100)
	pred := chordid.NodeInfo{Address: "pred", ID: 50}
	n.predecessor = &pred

	assert.False(t, n.ownsKey(50)) // boundary excluded
	assert.True(t, n.ownsKey(51))
	assert.True(t, n.ownsKey(100))
	assert.False(t, n.ownsKey(101))
}
