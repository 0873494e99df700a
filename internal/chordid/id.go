// Package chordid implements the Chord identifier space: the hash function,
// key arithmetic, and the wrap-aware interval predicate the rest of the ring
// is built on.
package chordid

import (
	"crypto/sha1"
	"fmt"
	"strconv"
)

// M is the number of bits in the key space. Keys live in [0, 2^M).
const M = 48

// mod is 2^M, the modulus all key arithmetic reduces under.
const mod = uint64(1) << M

// Key is an identifier in the ring, always held in [0, 2^M).
type Key uint64

// NodeInfo identifies a peer: its dial address, port, and derived id.
// Only Address and Port are stable across the wire; ID is recomputed from
// them by H, never carried as independently trustworthy state.
type NodeInfo struct {
	Address string
	Port    int
	ID      Key
}

// Equal reports whether two NodeInfos name the same peer.
func (n NodeInfo) Equal(o NodeInfo) bool {
	return n.Address == o.Address && n.Port == o.Port && n.ID == o.ID
}

// String renders "address:port" for dialing and log lines.
func (n NodeInfo) String() string {
	return fmt.Sprintf("%s:%d", n.Address, n.Port)
}

// NewNodeInfo derives a NodeInfo's id from its address and port per §4.1.
func NewNodeInfo(address string, port int) NodeInfo {
	return NodeInfo{Address: address, Port: port, ID: H(fmt.Sprintf("%s:%d", address, port))}
}

// H is the reference hash: SHA-1 of s, truncated by stepping over the 20-byte
// digest in 4-byte strides, decimal-stringifying each stride's leading byte,
// concatenating those decimal strings, parsing the result as an int64, and
// reducing modulo 2^M. The truncation is idiosyncratic by design (it is a
// compatibility requirement with existing peers and dump files, not a
// cryptographic choice) and must be reproduced exactly, bug for bug.
func H(s string) Key {
	sum := sha1.Sum([]byte(s))

	var digits string
	for i := 0; i+4 <= len(sum); i += 4 {
		digits += strconv.Itoa(int(sum[i]))
	}

	// 5 strides of at most 3 decimal digits each (byte values 0-255) never
	// exceed 15 digits, well inside int64 range, so ParseInt cannot fail.
	n, _ := strconv.ParseInt(digits, 10, 64)

	return Key(uint64(n) % mod)
}

// Add returns (k + offset) mod 2^M.
func (k Key) Add(offset uint64) Key {
	return Key((uint64(k) + offset) % mod)
}

// FingerStart returns (id + 2^i) mod 2^M, the target identifier for finger
// table entry i.
func FingerStart(id Key, i int) Key {
	return id.Add(uint64(1) << uint(i))
}

// Between reports whether k lies on the clockwise arc (a, b] of the ring,
// i.e. the open-left/closed-right interval from a to b going clockwise,
// handling wrap-around when a > b. This mirrors spec §4.1's predicate
// exactly: (k > a && (k <= b || a > b)) || (k <= b && k < a && b < a).
func Between(k, a, b Key) bool {
	return (k > a && (k <= b || a > b)) || (k <= b && k < a && b < a)
}

