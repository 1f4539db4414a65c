// Package room owns the shared table of rooms and their connected
// members. All mutation goes through the Directory; nothing else holds
// membership state.
package room

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrRoomFull = errors.New("room full")

// Pusher is the outbound half of a member's connection. The directory
// never writes to it; it only hands it back in snapshots.
type Pusher interface {
	Push(messageType int, data []byte) error
	PushJSON(v any) error
	Close() error
}

// Member is one connected client inside a room. SessionID is assigned
// by TryJoin; JoinedAt is set once at registration and doubles as the
// last-activity proxy for TTL sweeps.
type Member struct {
	SessionID string
	Pub       string
	JoinedAt  time.Time
	Conn      Pusher
}

// Stat is a diagnostic room summary.
type Stat struct {
	Key     string
	Members int
}

// Directory is the process-wide room table.
type Directory struct {
	maxRoomSize int
	ttl         time.Duration

	mu    sync.Mutex
	rooms map[string]map[string]*Member // roomKey -> sessionID -> member
}

func NewDirectory(maxRoomSize int, ttl time.Duration) *Directory {
	return &Directory{
		maxRoomSize: maxRoomSize,
		ttl:         ttl,
		rooms:       make(map[string]map[string]*Member),
	}
}

func (d *Directory) MaxRoomSize() int { return d.maxRoomSize }

// TryJoin registers m under a fresh session ID. The capacity check and
// the insert happen under one lock acquisition, so two concurrent joins
// can never both squeeze into the last slot. Returns the occupancy after
// the join, or the current occupancy alongside ErrRoomFull.
func (d *Directory) TryJoin(roomKey string, m *Member) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	members, ok := d.rooms[roomKey]
	if !ok {
		members = make(map[string]*Member)
		d.rooms[roomKey] = members
	}
	if len(members) >= d.maxRoomSize {
		return len(members), ErrRoomFull
	}

	m.SessionID = uuid.NewString()
	members[m.SessionID] = m
	return len(members), nil
}

// Leave removes the member if present. Idempotent: a failed-send
// eviction and a normal disconnect may both remove the same session.
func (d *Directory) Leave(roomKey, sessionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if members, ok := d.rooms[roomKey]; ok {
		delete(members, sessionID)
	}
}

// Snapshot returns a copy of the current roster and whether the room
// still exists. The distinction matters to relaying sessions: an empty
// roster is a quiet room, a missing one means the room was dropped out
// from under its members. The roster may change between snapshot and
// use; callers already treat delivery as best-effort.
func (d *Directory) Snapshot(roomKey string) ([]*Member, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	members, ok := d.rooms[roomKey]
	out := make([]*Member, 0, len(members))
	for _, m := range members {
		out = append(out, m)
	}
	return out, ok
}

// Drop removes a room unconditionally, discarding any members still
// registered there. Used when an invite expires out from under its room.
func (d *Directory) Drop(roomKey string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.rooms, roomKey)
}

// SweepExpired deletes every room whose members have all been around
// longer than the room TTL. One fresh member keeps a room alive; empty
// rooms are always reaped.
func (d *Directory) SweepExpired(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key, members := range d.rooms {
		expired := true
		for _, m := range members {
			if now.Sub(m.JoinedAt) <= d.ttl {
				expired = false
				break
			}
		}
		if expired {
			delete(d.rooms, key)
		}
	}
}

// AllRooms enumerates rooms for diagnostics.
func (d *Directory) AllRooms() []Stat {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Stat, 0, len(d.rooms))
	for key, members := range d.rooms {
		out = append(out, Stat{Key: key, Members: len(members)})
	}
	return out
}
