package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chordmail/internal/node"
)

// startRing brings up a small in-process ring for the façade to talk to,
// grounded in the teacher's practice of wiring test fixtures directly
// rather than mocking the RPC layer.
func startRing(t *testing.T, basePort int, count int) []*node.Node {
	t.Helper()

	nodes := make([]*node.Node, count)
	for i := 0; i < count; i++ {
		n := node.New("127.0.0.1", basePort+i,
			node.WithStabilizeInterval(15*time.Millisecond),
			node.WithDumpDir(t.TempDir()))
		ctx, cancel := context.WithCancel(context.Background())
		require.NoError(t, n.Start(ctx))
		t.Cleanup(func() {
			cancel()
			_ = n.Stop()
		})
		nodes[i] = n
	}
	for i := 1; i < count; i++ {
		require.NoError(t, nodes[i].Join(context.Background(), nodes[0].Self()))
	}

	require.Eventually(t, func() bool {
		for _, n := range nodes {
			if n.Successor().Equal(n.Self()) && count > 1 {
				return false
			}
		}
		return true
	}, 3*time.Second, 15*time.Millisecond, "ring did not converge")

	return nodes
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	nodes := startRing(t, 22101, 3)

	c, err := New(context.Background(), nodes[0].Self())
	require.NoError(t, err)

	require.NoError(t, c.AccountRegister(context.Background(), "alice@test", "secret"))

	other, err := New(context.Background(), nodes[1].Self())
	require.NoError(t, err)
	require.NoError(t, other.AccountLogin(context.Background(), "alice@test", "secret"))
}

func TestSendReceiveOrdering(t *testing.T) {
	nodes := startRing(t, 22111, 3)

	recipient, err := New(context.Background(), nodes[0].Self())
	require.NoError(t, err)
	require.NoError(t, recipient.AccountRegister(context.Background(), "bob@test", "pw"))

	sender, err := New(context.Background(), nodes[1].Self())
	require.NoError(t, err)
	require.NoError(t, sender.AccountRegister(context.Background(), "carol@test", "pw"))

	require.NoError(t, sender.Send(context.Background(), "bob@test", "hi", "first"))
	require.NoError(t, sender.Send(context.Background(), "bob@test", "hi again", "second"))

	require.NoError(t, recipient.GetMessages(context.Background()))
	require.Len(t, recipient.Inbox, 2)
	assert.Equal(t, "first", recipient.Inbox[0].Body)
	assert.Equal(t, "second", recipient.Inbox[1].Body)
}

func TestLoginWrongPassword(t *testing.T) {
	nodes := startRing(t, 22121, 2)

	c, err := New(context.Background(), nodes[0].Self())
	require.NoError(t, err)
	require.NoError(t, c.AccountRegister(context.Background(), "dave@test", "correct"))

	other, err := New(context.Background(), nodes[0].Self())
	require.NoError(t, err)
	err = other.AccountLogin(context.Background(), "dave@test", "wrong")
	require.Error(t, err)

	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, "UNAUTHENTICATED", remoteErr.Code)
}

func TestDeleteOutOfRange(t *testing.T) {
	nodes := startRing(t, 22131, 2)

	c, err := New(context.Background(), nodes[0].Self())
	require.NoError(t, err)
	require.NoError(t, c.AccountRegister(context.Background(), "erin@test", "pw"))

	err = c.Remove(context.Background(), 0)
	require.Error(t, err)

	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, "OUT_OF_RANGE", remoteErr.Code)
}
