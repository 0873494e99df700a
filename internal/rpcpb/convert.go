package rpcpb

import "chordmail/internal/chordid"

// ToNodeInfoMessage and FromNodeInfoMessage mirror original_source's
// fillNodeInfoMessage/fillNodeInfo free functions. ToNodeInfoMessage fills
// IP, Port and ID (Cutoff is left unset); FromNodeInfoMessage rebuilds the
// NodeInfo from IP and Port alone, recomputing ID with chordid.H.

func ToNodeInfoMessage(n chordid.NodeInfo) *NodeInfoMessage {
	return &NodeInfoMessage{IP: n.Address, Port: int32(n.Port), ID: int64(n.ID)}
}

func FromNodeInfoMessage(m *NodeInfoMessage) chordid.NodeInfo {
	return chordid.NewNodeInfo(m.IP, int(m.Port))
}
