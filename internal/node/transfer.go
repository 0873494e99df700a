package node

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"chordmail/internal/chordid"
	"chordmail/internal/mailbox"
	"chordmail/internal/rpcpb"
)

// transferBoxes ships every owned mailbox whose key is <= dest.id to
// dest, per spec §4.7. A single shared implementation serves both call
// sites named in spec §4.6 step 2 (pushing to a newly-adopted
// predecessor) and spec §4.2's graceful-shutdown evacuation to the
// successor — both pass the same plain (non-wrap-aware) key filter, so a
// departing node's boxes whose key happens to fall above dest.id are not
// covered by this pass: they stay in n.boxes and the call still returns nil.
func (n *Node) transferBoxes(ctx context.Context, dest chordid.NodeInfo) error {
	n.boxMu.Lock()
	empty := len(n.boxes) == 0
	n.boxMu.Unlock()
	if empty || dest.Equal(n.self) {
		return nil
	}

	if err := n.pingCheck(ctx, dest); err != nil {
		n.log.WithError(err).Warn("transfer: reachability check on destination failed")
		return err
	}

	n.boxMu.Lock()
	var keys []chordid.Key
	wire := make([]rpcpb.Mailbox, 0, len(n.boxes))
	for k, box := range n.boxes {
		if k <= dest.ID {
			keys = append(keys, k)
			wire = append(wire, toWireMailbox(box))
		}
	}
	n.boxMu.Unlock()

	if len(wire) == 0 {
		return nil
	}

	client, err := n.dial(dest)
	if err != nil {
		n.log.WithError(err).Warn("transfer: dial destination failed")
		return err
	}
	if _, err := client.Transfer(ctx, &rpcpb.TransferMailbox{Boxes: wire}); err != nil {
		n.log.WithError(err).Warn("transfer: Transfer RPC failed")
		return err
	}

	n.boxMu.Lock()
	for _, k := range keys {
		delete(n.boxes, k)
	}
	n.boxMu.Unlock()

	n.log.WithFields(logrus.Fields{"dest": dest.ID, "count": len(wire)}).Info("transferred mailboxes")
	return nil
}

// pingCheck implements spec §4.7 step 2: ping dest and fail unless the
// echoed probe value matches.
func (n *Node) pingCheck(ctx context.Context, dest chordid.NodeInfo) error {
	client, err := n.dial(dest)
	if err != nil {
		return err
	}
	const probe = int32(1)
	reply, err := client.Ping(ctx, &rpcpb.PingRequest{PingN: probe})
	if err != nil {
		return err
	}
	if reply.PingN != probe {
		return errors.Errorf("ping probe mismatch: sent %d, got %d", probe, reply.PingN)
	}
	return nil
}

func toWireMailbox(box *mailbox.Mailbox) rpcpb.Mailbox {
	msgs := make([]rpcpb.MailboxMessage, len(box.Messages))
	for i, m := range box.Messages {
		msgs[i] = rpcpb.MailboxMessage{To: m.To, From: m.From, Subject: m.Subject, Body: m.Body, Date: m.Date}
	}
	return rpcpb.Mailbox{
		Auth:     rpcpb.Authentication{User: box.Owner, Psw: box.PasswordHash},
		Messages: msgs,
	}
}
