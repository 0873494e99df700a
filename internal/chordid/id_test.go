package chordid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHIsDeterministicAndInRange(t *testing.T) {
	for _, s := range []string{"", "alice@test", "bob@test", "127.0.0.1:50001"} {
		k1 := H(s)
		k2 := H(s)
		assert.Equal(t, k1, k2, "H must be deterministic for %q", s)
		assert.Less(t, uint64(k1), uint64(1)<<M)
	}
}

func TestHAgainstPrecomputedFixtures(t *testing.T) {
	// Hand-traced from SHA-1("") = da39a3ee5e6b4b0d3255bfef95601890afd80709 and
	// SHA-1("alice@test") = d3ffdeeb1249c1bdd40d146ba158a12f2b30b660: take the
	// leading byte of each 4-byte stride, decimal-stringify and concatenate,
	// parse as int64, reduce mod 2^48. Pins H's bug-for-bug truncation in
	// place so a refactor can't silently change it.
	assert.Equal(t, Key(2189450149175), H(""))
	assert.Equal(t, Key(2111821216143), H("alice@test"))
}

func TestHDistinguishesInputs(t *testing.T) {
	assert.NotEqual(t, H("get@test"), H("snd@test"))
	assert.NotEqual(t, H("127.0.0.1:50001"), H("127.0.0.1:50002"))
}

func TestBetweenNoWrap(t *testing.T) {
	// Arc (10, 20]: 11..20 are inside, 10 and 21 are not.
	assert.False(t, Between(10, 10, 20))
	assert.True(t, Between(11, 10, 20))
	assert.True(t, Between(20, 10, 20))
	assert.False(t, Between(21, 10, 20))
}

func TestBetweenWrap(t *testing.T) {
	// Arc (250, 5] wraps through 0 under a small modulus-like window.
	assert.True(t, Between(251, 250, 5))
	assert.True(t, Between(0, 250, 5))
	assert.True(t, Between(5, 250, 5))
	assert.False(t, Between(6, 250, 5))
	assert.False(t, Between(250, 250, 5))
}

func TestBetweenDegenerateInterval(t *testing.T) {
	// The literal formula has no special case for a==b: it answers false
	// for every k, a single-point interval containing nothing. Ownership
	// of a lone node's whole ring is handled one layer up, by
	// node.ownsKey, not by this primitive — see DESIGN.md.
	assert.False(t, Between(0, 42, 42))
	assert.False(t, Between(42, 42, 42))
	assert.False(t, Between(1<<40, 42, 42))
}

func TestFingerStartWraps(t *testing.T) {
	var id = Key((uint64(1) << M) - 1) // largest id
	assert.Equal(t, Key(0), FingerStart(id, 0))
	assert.Equal(t, Key(1), FingerStart(id, 1))
}

func TestNewNodeInfoDerivesID(t *testing.T) {
	n := NewNodeInfo("127.0.0.1", 50001)
	assert.Equal(t, H("127.0.0.1:50001"), n.ID)
	assert.Equal(t, "127.0.0.1:50001", n.String())
}

func TestNodeInfoEqual(t *testing.T) {
	a := NewNodeInfo("127.0.0.1", 50001)
	b := NewNodeInfo("127.0.0.1", 50001)
	c := NewNodeInfo("127.0.0.1", 50002)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}
