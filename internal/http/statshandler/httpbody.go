package statshandler

type ServerStats struct {
	TotalRooms     int `json:"total_rooms"`
	TotalUsers     int `json:"total_users"`
	ActiveInvites  int `json:"active_invites"`
	MaxRoomSize    int `json:"max_room_size"`
	RoomTTLMinutes int `json:"room_ttl_minutes"`
} // @name ServerStats

type UserStats struct {
	UserID         string  `json:"user_id"`         // truncated public key
	ConnectedSince float64 `json:"connected_since"` // seconds
} // @name UserStats

type RoomStats struct {
	RoomHash           string      `json:"room_hash"`
	UserCount          int         `json:"user_count"`
	IsFull             bool        `json:"is_full"`
	CapacityPercentage float64     `json:"capacity_percentage"`
	Users              []UserStats `json:"users"`
} // @name RoomStats

type StatsResponse struct {
	ServerStats ServerStats `json:"server_stats"`
	Rooms       []RoomStats `json:"rooms"`
} // @name StatsResponse
