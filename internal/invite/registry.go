// Package invite owns the table of outstanding location-bound join
// tokens.
package invite

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"
	"time"
)

const (
	// RoomKeyPrefix marks room keys derived from an invite token
	// rather than a geocell.
	RoomKeyPrefix = "invite_"

	DefaultRadiusMeters = 120.0
	DefaultTTL          = 48 * time.Hour

	tokenBytes = 9 // 72 bits of entropy, 12 base64url chars
)

var ErrNotFound = errors.New("invite not found or expired")

// Invite is a time-limited token bound to a meeting point.
type Invite struct {
	Token     string
	Lat       float64
	Lon       float64
	Radius    float64 // meters
	CreatedAt time.Time
	TTL       time.Duration
}

func (i *Invite) ExpiresAt() time.Time { return i.CreatedAt.Add(i.TTL) }

func (i *Invite) ExpiredAt(now time.Time) bool { return now.After(i.ExpiresAt()) }

// RoomKey derives the room key for an invite token.
func RoomKey(token string) string { return RoomKeyPrefix + token }

// RoomDropper removes a room and discards whoever is still in it. The
// room directory implements it; the indirection keeps this package free
// of a directory dependency.
type RoomDropper interface {
	Drop(roomKey string)
}

// Registry is the process-wide invite table.
type Registry struct {
	rooms RoomDropper

	mu      sync.Mutex
	invites map[string]*Invite
}

func NewRegistry(rooms RoomDropper) *Registry {
	return &Registry{
		rooms:   rooms,
		invites: make(map[string]*Invite),
	}
}

// Create mints a new invite. radius <= 0 and ttl < 0 fall back to the
// defaults; ttl == 0 is honored as already-expired (useful for tests
// and one-shot links).
func (r *Registry) Create(lat, lon, radius float64, ttl time.Duration) (*Invite, error) {
	if radius <= 0 {
		radius = DefaultRadiusMeters
	}
	if ttl < 0 {
		ttl = DefaultTTL
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var token string
	for {
		t, err := newToken()
		if err != nil {
			return nil, err
		}
		if _, taken := r.invites[t]; !taken {
			token = t
			break
		}
	}

	inv := &Invite{
		Token:     token,
		Lat:       lat,
		Lon:       lon,
		Radius:    radius,
		CreatedAt: time.Now(),
		TTL:       ttl,
	}
	r.invites[token] = inv
	return inv, nil
}

// Lookup returns the invite if it exists and is unexpired as of now.
func (r *Registry) Lookup(token string) (*Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inv, ok := r.invites[token]
	if !ok || inv.ExpiredAt(time.Now()) {
		return nil, ErrNotFound
	}
	return inv, nil
}

// SweepExpired deletes every expired invite and drops its room,
// discarding any members still registered there.
func (r *Registry) SweepExpired(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for token, inv := range r.invites {
		if inv.ExpiredAt(now) {
			delete(r.invites, token)
			r.rooms.Drop(RoomKey(token))
		}
	}
}

// Count returns the number of live invites, for diagnostics.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.invites)
}

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
