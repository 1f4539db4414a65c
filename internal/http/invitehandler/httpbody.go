package invitehandler

import "time"

// Lat/Lon are pointers so the equator and the prime meridian survive
// "required".
type CreateInviteBody struct {
	Lat     *float64 `json:"lat"      binding:"required,gte=-90,lte=90"  example:"37.7749"`
	Lon     *float64 `json:"lon"      binding:"required,gte=-180,lte=180" example:"-122.4194"`
	Radius  float64  `json:"radius"   binding:"omitempty,gt=0"            example:"120"`
	TTLDays *float64 `json:"ttl_days" binding:"omitempty,gte=0"           example:"2"`
} // @name CreateInviteRequest

type CreateInviteResponse struct {
	Link      string    `json:"link"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
} // @name CreateInviteResponse

type ErrorResponse struct {
	Error string `json:"error"`
} // @name ErrorResponse
