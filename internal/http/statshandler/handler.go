package statshandler

import (
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"radiuschat/internal/invite"
	"radiuschat/internal/room"
)

type Handler struct {
	directory *room.Directory
	invites   *invite.Registry
	roomTTL   time.Duration
}

func New(directory *room.Directory, invites *invite.Registry, roomTTL time.Duration) *Handler {
	return &Handler{directory: directory, invites: invites, roomTTL: roomTTL}
}

func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/admin/stats", h.stats)
}

// stats returns a best-effort snapshot of rooms, occupancy and
// anonymized member ages, busiest room first. Expired state is swept
// before counting.
func (h *Handler) stats(ginCtx *gin.Context) {
	now := time.Now()
	h.directory.SweepExpired(now)
	h.invites.SweepExpired(now)

	maxSize := h.directory.MaxRoomSize()
	totalUsers := 0

	all := h.directory.AllRooms()
	rooms := make([]RoomStats, 0, len(all))
	for _, stat := range all {
		members, _ := h.directory.Snapshot(stat.Key)
		users := make([]UserStats, 0, len(members))
		for _, m := range members {
			users = append(users, UserStats{
				UserID:         anonymize(m.Pub),
				ConnectedSince: now.Sub(m.JoinedAt).Seconds(),
			})
		}
		totalUsers += len(members)
		rooms = append(rooms, RoomStats{
			RoomHash:           stat.Key,
			UserCount:          len(members),
			IsFull:             len(members) >= maxSize,
			CapacityPercentage: math.Round(float64(len(members))/float64(maxSize)*1000) / 10,
			Users:              users,
		})
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].UserCount > rooms[j].UserCount })

	ginCtx.JSON(http.StatusOK, StatsResponse{
		ServerStats: ServerStats{
			TotalRooms:     len(rooms),
			TotalUsers:     totalUsers,
			ActiveInvites:  h.invites.Count(),
			MaxRoomSize:    maxSize,
			RoomTTLMinutes: int(h.roomTTL.Minutes()),
		},
		Rooms: rooms,
	})
}

func anonymize(pub string) string {
	if len(pub) > 20 {
		return pub[:20] + "..."
	}
	return pub
}
