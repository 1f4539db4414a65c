package ws

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radiuschat/internal/invite"
	"radiuschat/internal/room"
)

// fakeConn records pushed frames in place of a websocket.
type fakeConn struct {
	mu     sync.Mutex
	peers  []PeersFrame
	frames [][]byte
	fail   bool
	closed bool
}

func (f *fakeConn) Push(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("send failed")
	}
	f.frames = append(f.frames, append([]byte(nil), data...))
	return nil
}

func (f *fakeConn) PushJSON(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("send failed")
	}
	if p, ok := v.(PeersFrame); ok {
		f.peers = append(f.peers, p)
	}
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func join(t *testing.T, d *room.Directory, roomKey, pub string) (*room.Member, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	m := &room.Member{Pub: pub, JoinedAt: time.Now(), Conn: conn}
	_, err := d.TryJoin(roomKey, m)
	require.NoError(t, err)
	return m, conn
}

func TestAnnounceRosterExcludesRecipient(t *testing.T) {
	d := room.NewDirectory(25, 15*time.Minute)
	b := NewBroadcaster(d, invite.NewRegistry(d))

	_, connA := join(t, d, "9q8yyk8", "pub-a")
	_, connB := join(t, d, "9q8yyk8", "pub-b")
	_, connC := join(t, d, "9q8yyk8", "pub-c")

	b.AnnounceRoster("9q8yyk8")

	require.Len(t, connA.peers, 1)
	assert.ElementsMatch(t, []string{"pub-b", "pub-c"}, connA.peers[0].Pubs)
	assert.ElementsMatch(t, []string{"pub-a", "pub-c"}, connB.peers[0].Pubs)
	assert.ElementsMatch(t, []string{"pub-a", "pub-b"}, connC.peers[0].Pubs)

	info := connA.peers[0].RoomInfo
	assert.Equal(t, 3, info.CurrentUsers)
	assert.Equal(t, 25, info.MaxUsers)
	assert.Equal(t, "9q8yyk8", info.RoomHash)
	assert.Equal(t, RoomTypeAutomatic, info.RoomType)
	assert.Nil(t, info.InviteRadius)
}

func TestAnnounceRosterInviteRoom(t *testing.T) {
	d := room.NewDirectory(25, 15*time.Minute)
	reg := invite.NewRegistry(d)
	b := NewBroadcaster(d, reg)

	inv, err := reg.Create(37.7749, -122.4194, 80, time.Hour)
	require.NoError(t, err)
	roomKey := invite.RoomKey(inv.Token)

	_, conn := join(t, d, roomKey, "pub-a")

	b.AnnounceRoster(roomKey)

	require.Len(t, conn.peers, 1)
	info := conn.peers[0].RoomInfo
	assert.Equal(t, RoomTypeInvite, info.RoomType)
	require.NotNil(t, info.InviteRadius)
	assert.Equal(t, 80.0, *info.InviteRadius)
	assert.Len(t, info.RoomHash, 8)
}

func TestAnnounceRosterEvictsFailedSend(t *testing.T) {
	d := room.NewDirectory(25, 15*time.Minute)
	b := NewBroadcaster(d, invite.NewRegistry(d))

	_, connA := join(t, d, "cell", "pub-a")
	dead, deadConn := join(t, d, "cell", "pub-dead")
	deadConn.fail = true

	b.AnnounceRoster("cell")

	// The dead member is gone, its conn closed, and the healthy member
	// was still announced to.
	assert.True(t, deadConn.closed)
	require.Len(t, connA.peers, 1)
	members, _ := d.Snapshot("cell")
	for _, m := range members {
		assert.NotEqual(t, dead.SessionID, m.SessionID)
	}
}

func TestRelayExcludesSender(t *testing.T) {
	d := room.NewDirectory(25, 15*time.Minute)
	b := NewBroadcaster(d, invite.NewRegistry(d))

	sender, senderConn := join(t, d, "cell", "pub-a")
	_, connB := join(t, d, "cell", "pub-b")
	_, connC := join(t, d, "cell", "pub-c")

	assert.True(t, b.Relay("cell", sender.SessionID, 1, []byte("hello")))

	assert.Empty(t, senderConn.frames)
	require.Len(t, connB.frames, 1)
	assert.Equal(t, []byte("hello"), connB.frames[0])
	require.Len(t, connC.frames, 1)
	assert.Equal(t, []byte("hello"), connC.frames[0])
}

func TestRelayEvictsFailedSend(t *testing.T) {
	d := room.NewDirectory(25, 15*time.Minute)
	b := NewBroadcaster(d, invite.NewRegistry(d))

	sender, _ := join(t, d, "cell", "pub-a")
	_, deadConn := join(t, d, "cell", "pub-dead")
	deadConn.fail = true
	_, connC := join(t, d, "cell", "pub-c")

	assert.True(t, b.Relay("cell", sender.SessionID, 1, []byte("x")))

	assert.True(t, deadConn.closed)
	members, _ := d.Snapshot("cell")
	assert.Len(t, members, 2)
	// Delivery to the remaining peer was not aborted.
	assert.Len(t, connC.frames, 1)
}

func TestRelayReportsDroppedRoom(t *testing.T) {
	d := room.NewDirectory(25, 15*time.Minute)
	b := NewBroadcaster(d, invite.NewRegistry(d))

	sender, _ := join(t, d, "invite_tok", "pub-a")
	d.Drop("invite_tok")

	assert.False(t, b.Relay("invite_tok", sender.SessionID, 1, []byte("x")))
}
