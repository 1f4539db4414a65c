package ws

// Handshake is the one structured frame a client sends, before the
// relay goes payload-opaque.
type Handshake struct {
	Pub         string   `json:"pub"`
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
	InviteToken string   `json:"inviteToken,omitempty"`
}

// ──────────────────────────── Server frames ──────────────────────────

const (
	RoomTypeAutomatic = "automatic"
	RoomTypeInvite    = "invite"
)

type RoomInfo struct {
	CurrentUsers int      `json:"current_users"`
	MaxUsers     int      `json:"max_users"`
	RoomHash     string   `json:"room_hash"` // truncated, for debugging
	RoomType     string   `json:"room_type"`
	InviteRadius *float64 `json:"invite_radius,omitempty"`
}

// PeersFrame lists every other member's public key; the recipient's own
// key is never included.
type PeersFrame struct {
	Type     string   `json:"type"` // "peers"
	Pubs     []string `json:"pubs"`
	RoomInfo RoomInfo `json:"room_info"`
}

type RoomFullFrame struct {
	Type         string `json:"type"` // "room_full"
	Message      string `json:"message"`
	CurrentUsers int    `json:"current_users"`
	MaxUsers     int    `json:"max_users"`
}

// ErrorFrame carries protocol and invite failures. Distance and
// RequiredRadius are set for "location_error" only.
type ErrorFrame struct {
	Type           string   `json:"type"` // "error" or "location_error"
	Message        string   `json:"message"`
	Distance       *float64 `json:"distance,omitempty"`
	RequiredRadius *float64 `json:"required_radius,omitempty"`
}
