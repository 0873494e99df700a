// Package mailbox implements the mailbox/message domain model of spec §3:
// an owner's authenticated, ordered message log, plus the on-disk dump
// format used as a graceful-shutdown fallback when transfer fails.
package mailbox

// Message is one piece of mail. Read is a client-local annotation and is
// never carried on the wire or in a dump — it lives only on the client's
// in-memory view (see the top-level client package).
type Message struct {
	To      string
	From    string
	Subject string
	Body    string
	Date    int64
}

// Mailbox holds one owner's credentials and ordered message log.
type Mailbox struct {
	Owner        string
	PasswordHash uint64
	Messages     []Message
}

// New returns an empty mailbox for owner, authenticated by passwordHash.
func New(owner string, passwordHash uint64) *Mailbox {
	return &Mailbox{Owner: owner, PasswordHash: passwordHash}
}

// Authenticate reports whether passwordHash matches this mailbox's stored
// hash.
func (m *Mailbox) Authenticate(passwordHash uint64) bool {
	return m.PasswordHash == passwordHash
}

// Append adds msg to the end of the ordered log. Send/Receive ordering
// (spec §8) follows directly from append-only, mutex-serialized writes at
// the call site in internal/node.
func (m *Mailbox) Append(msg Message) {
	m.Messages = append(m.Messages, msg)
}

// DeleteAt removes the idx-th message (0-based), shifting later entries
// left. Reports false if idx is out of range so the caller can surface
// spec §7's OUT_OF_RANGE.
func (m *Mailbox) DeleteAt(idx int) bool {
	if idx < 0 || idx >= len(m.Messages) {
		return false
	}
	m.Messages = append(m.Messages[:idx], m.Messages[idx+1:]...)
	return true
}

// Clone returns a deep copy whose message log does not alias the
// original's, so appending to one leaves the other unchanged.
func (m *Mailbox) Clone() *Mailbox {
	c := &Mailbox{Owner: m.Owner, PasswordHash: m.PasswordHash}
	c.Messages = make([]Message, len(m.Messages))
	copy(c.Messages, m.Messages)
	return c
}
