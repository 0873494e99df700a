// Package client implements the mail-service client façade of spec §4.5:
// connect, ping, register/login, and the authenticated message operations,
// consumed by the out-of-scope GUI/CLI collaborators and, in this repo, by
// cmd/mailctl.
package client

import (
	"context"
	"hash/fnv"

	"github.com/pkg/errors"

	"chordmail/internal/chordid"
	"chordmail/internal/rpcpb"
)

// Message is the client-local view of a mailbox entry; Read is never
// carried on the wire (spec §3).
type Message struct {
	To, From, Subject, Body string
	Date                    int64
	Read                    bool
}

// RemoteError is the single exceptional outcome spec §7 describes:
// every non-OK status a node returns converts to one of these.
type RemoteError struct {
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	return e.Code + ": " + e.Message
}

// credentials holds the cached auth a registered/logged-in Client reuses
// for Send/Delete (spec §4.5).
type credentials struct {
	owner string
	psw   uint64
}

// Client holds one RPC connection and optionally one cached mailbox
// credential, per spec §4.5.
type Client struct {
	conn  *rpcGroup
	creds *credentials
	Inbox []Message
}

// rpcGroup wraps a live stub plus the peer it targets, so connectTo can
// swap both atomically.
type rpcGroup struct {
	stub rpcpb.NodeServiceClient
	peer chordid.NodeInfo
}

// New dials node and verifies it is reachable with a Ping, mirroring the
// reference client's constructor (original_source's Client ctor pings with
// ping_n=1 and throws if it doesn't echo back).
func New(ctx context.Context, node chordid.NodeInfo) (*Client, error) {
	c := &Client{}
	if err := c.connectTo(ctx, node); err != nil {
		return nil, err
	}
	return c, nil
}

// connectTo replaces the client's stub, dropping any prior connection.
func (c *Client) connectTo(ctx context.Context, node chordid.NodeInfo) error {
	cc, err := rpcpb.Dial(node.String())
	if err != nil {
		return errors.Wrapf(err, "dial %s", node.String())
	}
	stub := rpcpb.NewNodeServiceClient(cc)

	reply, err := stub.Ping(ctx, &rpcpb.PingRequest{PingN: 1})
	if err != nil || reply.PingN != 1 {
		cc.Close()
		return errors.New("node is not online")
	}

	c.conn = &rpcGroup{stub: stub, peer: node}
	return nil
}

// Ping wraps the Ping RPC against the currently connected node.
func (c *Client) Ping(ctx context.Context) error {
	reply, err := c.conn.stub.Ping(ctx, &rpcpb.PingRequest{PingN: 1})
	if err != nil {
		return toRemoteError(err)
	}
	if reply.PingN != 1 {
		return &RemoteError{Code: "UNAVAILABLE", Message: "ping probe mismatch"}
	}
	return nil
}

// hashPassword turns a plaintext password into the 64-bit hash carried on
// the wire. Unlike chordid.H this has no interoperability requirement with
// any existing dump or peer — it is a purely client-local concern — so a
// plain non-cryptographic hash (stdlib hash/fnv) is sufficient.
func hashPassword(psw string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(psw))
	return h.Sum64()
}

// AccountRegister creates owner's mailbox (spec §4.5): InsertMailbox with
// a fresh TTL budget, reconnect to the node that now owns it, Authenticate,
// and cache the credentials for subsequent Send/Delete calls.
func (c *Client) AccountRegister(ctx context.Context, owner, psw string) error {
	hashed := hashPassword(psw)

	reply, err := c.conn.stub.InsertMailbox(ctx, &rpcpb.InsertMailboxMessage{
		Owner: owner, Password: hashed, TTL: nodeTTL,
	})
	if err != nil {
		return toRemoteError(err)
	}
	return c.finishLogin(ctx, reply, owner, hashed)
}

// AccountLogin locates an existing mailbox via LookupMailbox, then
// proceeds identically to AccountRegister (spec §4.5).
func (c *Client) AccountLogin(ctx context.Context, owner, psw string) error {
	hashed := hashPassword(psw)

	reply, err := c.conn.stub.LookupMailbox(ctx, &rpcpb.QueryMailbox{
		Owner: owner, TTL: nodeTTL,
	})
	if err != nil {
		return toRemoteError(err)
	}
	return c.finishLogin(ctx, reply, owner, hashed)
}

func (c *Client) finishLogin(ctx context.Context, owner *rpcpb.NodeInfoMessage, user string, hashed uint64) error {
	node := rpcpb.FromNodeInfoMessage(owner)
	if err := c.connectTo(ctx, node); err != nil {
		return err
	}

	if _, err := c.conn.stub.Authenticate(ctx, &rpcpb.Authentication{User: user, Psw: hashed}); err != nil {
		return toRemoteError(err)
	}

	c.creds = &credentials{owner: user, psw: hashed}
	return nil
}

// GetMessages calls Receive on the currently connected (owning) node and
// wholesale-replaces the local Inbox with the returned sequence; every
// message comes back with Read defaulted to false, since the server never
// tracks it (spec §3: Read is client-local only, and no merge against the
// prior Inbox is attempted).
func (c *Client) GetMessages(ctx context.Context) error {
	if c.creds == nil {
		return errors.New("not logged in")
	}

	reply, err := c.conn.stub.Receive(ctx, &rpcpb.Authentication{User: c.creds.owner, Psw: c.creds.psw})
	if err != nil {
		return toRemoteError(err)
	}

	msgs := make([]Message, len(reply.Messages))
	for i, m := range reply.Messages {
		msgs[i] = Message{To: m.To, From: m.From, Subject: m.Subject, Body: m.Body, Date: m.Date}
	}
	c.Inbox = msgs
	return nil
}

// Send fills auth from the cached credentials and calls Send with a fresh
// TTL budget (spec §4.5).
func (c *Client) Send(ctx context.Context, to, subject, body string) error {
	if c.creds == nil {
		return errors.New("not logged in")
	}

	_, err := c.conn.stub.Send(ctx, &rpcpb.MailboxMessage{
		Auth:    rpcpb.Authentication{User: c.creds.owner, Psw: c.creds.psw},
		To:      to,
		From:    c.creds.owner,
		Subject: subject,
		Body:    body,
		TTL:     nodeTTL,
	})
	if err != nil {
		return toRemoteError(err)
	}
	return nil
}

// Remove deletes the idx-th message from the caller's own mailbox (spec §4.5).
func (c *Client) Remove(ctx context.Context, idx int) error {
	if c.creds == nil {
		return errors.New("not logged in")
	}

	_, err := c.conn.stub.Delete(ctx, &rpcpb.DeleteMessage{
		Auth: rpcpb.Authentication{User: c.creds.owner, Psw: c.creds.psw},
		Idx:  int32(idx),
		TTL:  nodeTTL,
	})
	if err != nil {
		return toRemoteError(err)
	}
	return nil
}

// nodeTTL is the forwarding hop budget a freshly originated client call
// starts with (spec §4.3's CHORD_MOD, duplicated here to avoid an
// internal/node import from the public client package).
const nodeTTL = 34

func toRemoteError(err error) error {
	sentinel := rpcpb.FromStatus(err)
	return &RemoteError{Code: remoteCode(sentinel), Message: sentinel.Error()}
}

func remoteCode(err error) string {
	switch {
	case errors.Is(err, rpcpb.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, rpcpb.ErrUnauthenticated):
		return "UNAUTHENTICATED"
	case errors.Is(err, rpcpb.ErrAlreadyExists):
		return "ALREADY_EXISTS"
	case errors.Is(err, rpcpb.ErrOutOfRange):
		return "OUT_OF_RANGE"
	case errors.Is(err, rpcpb.ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, rpcpb.ErrInternal):
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}
