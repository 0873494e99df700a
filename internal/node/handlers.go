package node

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"chordmail/internal/chordid"
	"chordmail/internal/mailbox"
	"chordmail/internal/rpcpb"
)

// Ping echoes the caller's probe value alongside this node's identity
// (spec §4.4). Its primary purpose is reachability probing ahead of a
// mailbox transfer (§4.7).
func (n *Node) Ping(ctx context.Context, req *rpcpb.PingRequest) (*rpcpb.PingReply, error) {
	return &rpcpb.PingReply{
		PingIP:   n.self.Address,
		PingPort: int32(n.self.Port),
		PingID:   int64(n.self.ID),
		PingN:    req.PingN,
	}, nil
}

// NodeJoin locates the successor of joinerID, per spec §4.4's three-way
// branch. It carries no TTL (spec's own wire schema has none on
// JoinRequest) and is preserved exactly including the asymptotically
// suboptimal predecessor-forward branch (spec §9's second Open Question).
func (n *Node) NodeJoin(ctx context.Context, req *rpcpb.JoinRequest) (*rpcpb.NodeInfoMessage, error) {
	joinerID := chordid.Key(req.NodeID)
	n.log.WithField("joiner", joinerID).Debug("NodeJoin")
	pred, hasPred := n.Predecessor()

	// hasPred==false stands in for spec's null-predecessor sentinel, which
	// compares as smaller than every real id.
	isSuccessorOfJoiner := n.self.ID > joinerID && (!hasPred || pred.ID < joinerID || pred.ID > n.self.ID)
	if isSuccessorOfJoiner {
		n.log.WithField("joiner", joinerID).Info("answering as successor for joining node")
		return rpcpb.ToNodeInfoMessage(n.self), nil
	}

	var next chordid.NodeInfo
	if n.self.ID < joinerID {
		next = n.getFingerForKey(joinerID)
	} else if hasPred {
		next = pred
	} else {
		// self.ID == joinerID with no predecessor: a degenerate duplicate
		// id with nowhere else to forward to. Answer with self.
		return rpcpb.ToNodeInfoMessage(n.self), nil
	}

	if next.Equal(n.self) {
		// Forwarding to ourselves can't change the answer — this is the
		// lone-node-in-the-ring case (spec §8's "Insert/Lookup/Send loop
		// back to self", generalized to Join).
		return rpcpb.ToNodeInfoMessage(n.self), nil
	}

	client, err := n.dial(next)
	if err != nil {
		n.log.WithError(err).Warn("NodeJoin: dial forward target failed")
		return nil, rpcpb.ToStatus(errors.Wrap(rpcpb.ErrNotFound, err.Error()))
	}
	reply, err := client.NodeJoin(ctx, req)
	if err != nil {
		n.log.WithError(err).Warn("NodeJoin: forward failed")
		return nil, err
	}
	return reply, nil
}

// Stabilize is the sender's assertion "I believe I am your predecessor".
// The receiver adopts the sender iff sender.id is greater than its current
// predecessor under a plain (non-wrap-aware) comparison — reproduced
// exactly per spec §9's first Open Question — treating an unset
// predecessor as smaller than any real id.
func (n *Node) Stabilize(ctx context.Context, req *rpcpb.NodeInfoMessage) (*rpcpb.NodeInfoMessage, error) {
	sender := rpcpb.FromNodeInfoMessage(req)
	n.log.WithField("sender", sender.ID).Debug("Stabilize")

	n.predMu.Lock()
	adopted := n.predecessor == nil || sender.ID > n.predecessor.ID
	if adopted {
		cp := sender
		n.predecessor = &cp
	}
	reply := *n.predecessor
	n.predMu.Unlock()

	if adopted {
		n.log.WithField("predecessor", sender.ID).Info("adopted new predecessor")
	}

	return rpcpb.ToNodeInfoMessage(reply), nil
}

// SearchFinger answers a finger-table rebuild question, per spec §4.4.
func (n *Node) SearchFinger(ctx context.Context, req *rpcpb.FingerQuestion) (*rpcpb.NodeInfoMessage, error) {
	fingerValue := chordid.Key(req.FingerValue)
	senderID := chordid.Key(req.SenderID)
	n.log.WithField("finger_value", fingerValue).Debug("SearchFinger")

	if n.self.ID >= fingerValue || (n.self.ID < senderID && n.self.ID < fingerValue) {
		return rpcpb.ToNodeInfoMessage(n.self), nil
	}
	if senderID == n.self.ID {
		return nil, rpcpb.ToStatus(rpcpb.ErrNotFound)
	}

	successor := n.Successor()
	client, err := n.dial(successor)
	if err != nil {
		n.log.WithError(err).Warn("SearchFinger: dial successor failed")
		return nil, rpcpb.ToStatus(errors.Wrap(rpcpb.ErrNotFound, err.Error()))
	}
	reply, err := client.SearchFinger(ctx, req)
	if err != nil {
		n.log.WithError(err).Warn("SearchFinger: forward failed")
		return nil, err
	}
	return reply, nil
}

// InsertMailbox creates owner's mailbox on its authoritative node, per
// spec §4.4.
func (n *Node) InsertMailbox(ctx context.Context, req *rpcpb.InsertMailboxMessage) (*rpcpb.NodeInfoMessage, error) {
	k := chordid.H(req.Owner)
	n.log.WithField("owner", req.Owner).Debug("InsertMailbox")

	if n.ownsKey(k) {
		n.boxMu.Lock()
		_, exists := n.boxes[k]
		if !exists {
			n.boxes[k] = mailbox.New(req.Owner, req.Password)
		}
		n.boxMu.Unlock()

		if exists {
			return nil, rpcpb.ToStatus(errors.Wrapf(rpcpb.ErrAlreadyExists, "owner %q", req.Owner))
		}
		n.log.WithField("owner", req.Owner).Info("created mailbox")
		return rpcpb.ToNodeInfoMessage(n.self), nil
	}

	ttl := req.TTL - 1
	if ttl <= 0 {
		return nil, rpcpb.ToStatus(rpcpb.ErrNotFound)
	}

	next := n.getFingerForKey(k)
	client, err := n.dial(next)
	if err != nil {
		n.log.WithError(err).Warn("InsertMailbox: dial forward target failed")
		return nil, rpcpb.ToStatus(errors.Wrap(rpcpb.ErrNotFound, err.Error()))
	}
	reply, err := client.InsertMailbox(ctx, &rpcpb.InsertMailboxMessage{Owner: req.Owner, Password: req.Password, TTL: ttl})
	if err != nil {
		n.log.WithError(err).Warn("InsertMailbox: forward failed")
		return nil, err
	}
	return reply, nil
}

// LookupMailbox locates owner's authoritative node, per spec §4.4.
func (n *Node) LookupMailbox(ctx context.Context, req *rpcpb.QueryMailbox) (*rpcpb.NodeInfoMessage, error) {
	k := chordid.H(req.Owner)
	n.log.WithField("owner", req.Owner).Debug("LookupMailbox")

	n.boxMu.Lock()
	_, exists := n.boxes[k]
	n.boxMu.Unlock()
	if exists {
		return rpcpb.ToNodeInfoMessage(n.self), nil
	}

	ttl := req.TTL - 1
	if ttl <= 0 {
		return nil, rpcpb.ToStatus(rpcpb.ErrNotFound)
	}

	next := n.getFingerForKey(k)
	client, err := n.dial(next)
	if err != nil {
		n.log.WithError(err).Warn("LookupMailbox: dial forward target failed")
		return nil, rpcpb.ToStatus(errors.Wrap(rpcpb.ErrNotFound, err.Error()))
	}
	reply, err := client.LookupMailbox(ctx, &rpcpb.QueryMailbox{Owner: req.Owner, TTL: ttl})
	if err != nil {
		n.log.WithError(err).Warn("LookupMailbox: forward failed")
		return nil, err
	}
	return reply, nil
}

// Authenticate must be called on the node owning user's mailbox; it never
// forwards (spec §4.4).
func (n *Node) Authenticate(ctx context.Context, req *rpcpb.Authentication) (*rpcpb.StatusReply, error) {
	k := chordid.H(req.User)
	n.log.WithField("user", req.User).Debug("Authenticate")

	n.boxMu.Lock()
	box, exists := n.boxes[k]
	n.boxMu.Unlock()

	if !exists || !box.Authenticate(req.Psw) {
		return nil, rpcpb.ToStatus(rpcpb.ErrUnauthenticated)
	}
	return &rpcpb.StatusReply{OK: true}, nil
}

// checkAuthentication verifies auth against whichever node owns auth.User's
// mailbox. When this node already owns that mailbox it checks locally
// instead of paying for a Lookup+Authenticate round trip — the short
// circuit spec §9's third Open Question explicitly permits.
func (n *Node) checkAuthentication(ctx context.Context, auth rpcpb.Authentication) (bool, error) {
	k := chordid.H(auth.User)

	if n.ownsKey(k) {
		n.boxMu.Lock()
		box, exists := n.boxes[k]
		n.boxMu.Unlock()
		return exists && box.Authenticate(auth.Psw), nil
	}

	owner, err := n.lookupMailboxNode(ctx, auth.User)
	if err != nil {
		return false, err
	}
	client, err := n.dial(owner)
	if err != nil {
		n.log.WithError(err).Warn("checkAuthentication: dial owner failed")
		return false, err
	}
	reply, err := client.Authenticate(ctx, &rpcpb.Authentication{User: auth.User, Psw: auth.Psw})
	if err != nil {
		if errors.Is(rpcpb.FromStatus(err), rpcpb.ErrUnauthenticated) {
			return false, nil
		}
		return false, err
	}
	return reply.OK, nil
}

// lookupMailboxNode resolves owner to its authoritative NodeInfo, starting
// the Lookup chain from this node with a fresh TTL budget.
func (n *Node) lookupMailboxNode(ctx context.Context, owner string) (chordid.NodeInfo, error) {
	k := chordid.H(owner)

	n.boxMu.Lock()
	_, exists := n.boxes[k]
	n.boxMu.Unlock()
	if exists {
		return n.self, nil
	}

	next := n.getFingerForKey(k)
	client, err := n.dial(next)
	if err != nil {
		n.log.WithError(err).Warn("lookupMailboxNode: dial forward target failed")
		return chordid.NodeInfo{}, errors.Wrap(rpcpb.ErrNotFound, err.Error())
	}
	reply, err := client.LookupMailbox(ctx, &rpcpb.QueryMailbox{Owner: owner, TTL: CHORD_MOD - 1})
	if err != nil {
		n.log.WithError(err).Warn("lookupMailboxNode: forward failed")
		return chordid.NodeInfo{}, rpcpb.FromStatus(err)
	}
	return rpcpb.FromNodeInfoMessage(reply), nil
}

// Send appends a message to to's mailbox, after verifying from matches the
// authenticated caller and the caller's credentials check out (spec §4.4).
func (n *Node) Send(ctx context.Context, req *rpcpb.MailboxMessage) (*rpcpb.StatusReply, error) {
	n.log.WithFields(logrus.Fields{"to": req.To, "from": req.From}).Debug("Send")
	if req.From != req.Auth.User {
		return nil, rpcpb.ToStatus(rpcpb.ErrUnauthenticated)
	}

	k := chordid.H(req.To)
	if n.ownsKey(k) {
		ok, err := n.checkAuthentication(ctx, req.Auth)
		if err != nil {
			return nil, rpcpb.ToStatus(errors.Wrap(rpcpb.ErrNotFound, err.Error()))
		}
		if !ok {
			return nil, rpcpb.ToStatus(rpcpb.ErrUnauthenticated)
		}

		n.boxMu.Lock()
		box, exists := n.boxes[k]
		if exists {
			box.Append(mailbox.Message{To: req.To, From: req.From, Subject: req.Subject, Body: req.Body, Date: req.Date})
		}
		n.boxMu.Unlock()

		if !exists {
			return nil, rpcpb.ToStatus(rpcpb.ErrNotFound)
		}
		return &rpcpb.StatusReply{OK: true}, nil
	}

	ttl := req.TTL - 1
	if ttl <= 0 {
		return nil, rpcpb.ToStatus(rpcpb.ErrNotFound)
	}

	next := n.getFingerForKey(k)
	client, err := n.dial(next)
	if err != nil {
		n.log.WithError(err).Warn("Send: dial forward target failed")
		return nil, rpcpb.ToStatus(errors.Wrap(rpcpb.ErrNotFound, err.Error()))
	}
	fwd := *req
	fwd.TTL = ttl
	reply, err := client.Send(ctx, &fwd)
	if err != nil {
		n.log.WithError(err).Warn("Send: forward failed")
		return nil, err
	}
	return reply, nil
}

// Delete erases the idx-th message from the authenticated caller's own
// mailbox (spec §4.4).
func (n *Node) Delete(ctx context.Context, req *rpcpb.DeleteMessage) (*rpcpb.StatusReply, error) {
	k := chordid.H(req.Auth.User)
	n.log.WithFields(logrus.Fields{"user": req.Auth.User, "idx": req.Idx}).Debug("Delete")

	if n.ownsKey(k) {
		ok, err := n.checkAuthentication(ctx, req.Auth)
		if err != nil {
			return nil, rpcpb.ToStatus(errors.Wrap(rpcpb.ErrNotFound, err.Error()))
		}
		if !ok {
			return nil, rpcpb.ToStatus(rpcpb.ErrUnauthenticated)
		}

		n.boxMu.Lock()
		box, exists := n.boxes[k]
		var removed bool
		if exists {
			removed = box.DeleteAt(int(req.Idx))
		}
		n.boxMu.Unlock()

		if !exists {
			return nil, rpcpb.ToStatus(rpcpb.ErrNotFound)
		}
		if !removed {
			return nil, rpcpb.ToStatus(rpcpb.ErrOutOfRange)
		}
		return &rpcpb.StatusReply{OK: true}, nil
	}

	ttl := req.TTL - 1
	if ttl <= 0 {
		return nil, rpcpb.ToStatus(rpcpb.ErrNotFound)
	}

	next := n.getFingerForKey(k)
	client, err := n.dial(next)
	if err != nil {
		n.log.WithError(err).Warn("Delete: dial forward target failed")
		return nil, rpcpb.ToStatus(errors.Wrap(rpcpb.ErrNotFound, err.Error()))
	}
	fwd := *req
	fwd.TTL = ttl
	reply, err := client.Delete(ctx, &fwd)
	if err != nil {
		n.log.WithError(err).Warn("Delete: forward failed")
		return nil, err
	}
	return reply, nil
}

// Receive returns the caller's full ordered message log. It must be
// called on the owning node and is never forwarded (spec §4.4) — callers
// are expected to have located the owner via Lookup first.
func (n *Node) Receive(ctx context.Context, req *rpcpb.Authentication) (*rpcpb.Mailbox, error) {
	k := chordid.H(req.User)
	n.log.WithField("user", req.User).Debug("Receive")

	n.boxMu.Lock()
	box, exists := n.boxes[k]
	n.boxMu.Unlock()

	if !exists {
		return nil, rpcpb.ToStatus(rpcpb.ErrNotFound)
	}
	if !box.Authenticate(req.Psw) {
		return nil, rpcpb.ToStatus(rpcpb.ErrUnauthenticated)
	}

	msgs := make([]rpcpb.MailboxMessage, len(box.Messages))
	for i, m := range box.Messages {
		msgs[i] = rpcpb.MailboxMessage{To: m.To, From: m.From, Subject: m.Subject, Body: m.Body, Date: m.Date}
	}
	return &rpcpb.Mailbox{Auth: *req, Messages: msgs}, nil
}

// Transfer accepts a batch of mailboxes being migrated to this node, per
// spec §4.4 and §4.7. If any incoming owner already exists locally the
// whole batch is rejected with INTERNAL so the caller can decide what to
// do, rather than leaving a half-applied transfer.
func (n *Node) Transfer(ctx context.Context, req *rpcpb.TransferMailbox) (*rpcpb.StatusReply, error) {
	n.log.WithField("count", len(req.Boxes)).Debug("Transfer")
	if n.disableTransfer.Load() {
		n.log.Warn("Transfer: rejected, transfer acceptance disabled")
		return nil, rpcpb.ToStatus(rpcpb.ErrUnavailable)
	}

	n.boxMu.Lock()
	defer n.boxMu.Unlock()

	for _, wireBox := range req.Boxes {
		k := chordid.H(wireBox.Auth.User)
		if _, exists := n.boxes[k]; exists {
			return nil, rpcpb.ToStatus(errors.Wrapf(rpcpb.ErrInternal, "owner %q already present", wireBox.Auth.User))
		}
	}

	for _, wireBox := range req.Boxes {
		k := chordid.H(wireBox.Auth.User)
		box := mailbox.New(wireBox.Auth.User, wireBox.Auth.Psw)
		for _, m := range wireBox.Messages {
			box.Append(mailbox.Message{To: m.To, From: m.From, Subject: m.Subject, Body: m.Body, Date: m.Date})
		}
		n.boxes[k] = box
	}

	n.log.WithField("count", len(req.Boxes)).Info("accepted transferred mailboxes")
	return &rpcpb.StatusReply{OK: true}, nil
}
