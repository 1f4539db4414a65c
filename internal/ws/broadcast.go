package ws

import (
	"strings"

	"go.uber.org/zap"

	"radiuschat/internal/invite"
	"radiuschat/internal/room"
)

// Broadcaster fans frames out to a room. Every send takes a directory
// snapshot first and does the I/O outside the lock; a member whose send
// fails is evicted and the loop carries on for the rest.
type Broadcaster struct {
	directory *room.Directory
	invites   *invite.Registry
}

func NewBroadcaster(directory *room.Directory, invites *invite.Registry) *Broadcaster {
	return &Broadcaster{directory: directory, invites: invites}
}

// AnnounceRoster pushes a peers frame to every member, listing the
// public keys of all members except the recipient.
func (b *Broadcaster) AnnounceRoster(roomKey string) {
	members, _ := b.directory.Snapshot(roomKey)
	if len(members) == 0 {
		return
	}

	info := RoomInfo{
		CurrentUsers: len(members),
		MaxUsers:     b.directory.MaxRoomSize(),
		RoomHash:     truncateKey(roomKey),
		RoomType:     RoomTypeAutomatic,
	}
	if token, ok := strings.CutPrefix(roomKey, invite.RoomKeyPrefix); ok {
		info.RoomType = RoomTypeInvite
		if inv, err := b.invites.Lookup(token); err == nil {
			radius := inv.Radius
			info.InviteRadius = &radius
		}
	}

	for _, m := range members {
		pubs := make([]string, 0, len(members)-1)
		for _, other := range members {
			if other.SessionID != m.SessionID {
				pubs = append(pubs, other.Pub)
			}
		}
		frame := PeersFrame{Type: "peers", Pubs: pubs, RoomInfo: info}
		if err := m.Conn.PushJSON(frame); err != nil {
			b.evict(roomKey, m, err)
		}
	}
}

// Relay forwards a payload verbatim to every member except the sender,
// preserving the text/binary frame type. Returns false when the room no
// longer exists — an expired invite's room can be dropped out from
// under its members, and the sender's session must treat that as a
// forced close.
func (b *Broadcaster) Relay(roomKey, senderSessionID string, messageType int, payload []byte) bool {
	members, ok := b.directory.Snapshot(roomKey)
	if !ok {
		return false
	}
	for _, m := range members {
		if m.SessionID == senderSessionID {
			continue
		}
		if err := m.Conn.Push(messageType, payload); err != nil {
			b.evict(roomKey, m, err)
		}
	}
	return true
}

func (b *Broadcaster) evict(roomKey string, m *room.Member, cause error) {
	b.directory.Leave(roomKey, m.SessionID)
	_ = m.Conn.Close()
	zap.L().Debug("ws.evict",
		zap.String("room", truncateKey(roomKey)),
		zap.String("session", m.SessionID),
		zap.Error(cause),
	)
}

// truncateKey shortens a room key for logs and diagnostics.
func truncateKey(roomKey string) string {
	if len(roomKey) > 8 {
		return roomKey[:8]
	}
	return roomKey
}
