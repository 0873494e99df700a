package mailbox

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendPreservesOrder(t *testing.T) {
	box := New("get@test", 42)
	box.Append(Message{To: "get@test", From: "a@test", Subject: "m1", Date: 1})
	box.Append(Message{To: "get@test", From: "a@test", Subject: "m2", Date: 2})

	require.Len(t, box.Messages, 2)
	assert.Equal(t, "m1", box.Messages[0].Subject)
	assert.Equal(t, "m2", box.Messages[1].Subject)
}

func TestDeleteAtShiftsLeft(t *testing.T) {
	box := New("get@test", 42)
	for i := 0; i < 3; i++ {
		box.Append(Message{Subject: string(rune('a' + i))})
	}

	ok := box.DeleteAt(1)
	require.True(t, ok)
	require.Len(t, box.Messages, 2)
	assert.Equal(t, "a", box.Messages[0].Subject)
	assert.Equal(t, "c", box.Messages[1].Subject)
}

func TestDeleteAtOutOfRange(t *testing.T) {
	box := New("get@test", 42)
	box.Append(Message{Subject: "only"})

	assert.False(t, box.DeleteAt(-1))
	assert.False(t, box.DeleteAt(1))
	assert.Len(t, box.Messages, 1)
}

func TestAuthenticate(t *testing.T) {
	box := New("get@test", 42)
	assert.True(t, box.Authenticate(42))
	assert.False(t, box.Authenticate(41))
}

func TestCloneIsIndependent(t *testing.T) {
	box := New("get@test", 42)
	box.Append(Message{Subject: "original"})

	clone := box.Clone()
	clone.Append(Message{Subject: "added-to-clone"})

	assert.Len(t, box.Messages, 1)
	assert.Len(t, clone.Messages, 2)
}

func TestDumpLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "12345.dat")

	boxes := map[uint64]*Mailbox{
		1: New("get@test", 42),
		2: New("snd@test", 99),
	}
	boxes[1].Append(Message{To: "get@test", From: "snd@test", Subject: "hi", Date: 100})

	require.NoError(t, Dump(path, boxes))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "get@test", loaded[1].Owner)
	assert.Equal(t, uint64(42), loaded[1].PasswordHash)
	require.Len(t, loaded[1].Messages, 1)
	assert.Equal(t, "hi", loaded[1].Messages[0].Subject)
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	loaded, err := Load(filepath.Join(t.TempDir(), "missing.dat"))
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
