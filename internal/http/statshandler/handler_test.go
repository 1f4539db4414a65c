package statshandler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radiuschat/internal/invite"
	"radiuschat/internal/room"
)

type nopConn struct{}

func (nopConn) Push(int, []byte) error { return nil }
func (nopConn) PushJSON(any) error     { return nil }
func (nopConn) Close() error           { return nil }

func TestStats(t *testing.T) {
	gin.SetMode(gin.TestMode)

	directory := room.NewDirectory(2, 15*time.Minute)
	registry := invite.NewRegistry(directory)
	h := New(directory, registry, 15*time.Minute)

	longPub := strings.Repeat("k", 44)
	for _, pub := range []string{longPub, "short-pub"} {
		_, err := directory.TryJoin("9q8yyk8", &room.Member{Pub: pub, JoinedAt: time.Now(), Conn: nopConn{}})
		require.NoError(t, err)
	}
	_, err := directory.TryJoin("u4pruyd", &room.Member{Pub: "solo", JoinedAt: time.Now(), Conn: nopConn{}})
	require.NoError(t, err)

	_, err = registry.Create(37.7749, -122.4194, 0, time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	engine := gin.New()
	h.Register(engine)
	req, err := http.NewRequest(http.MethodGet, "/admin/stats", nil)
	require.NoError(t, err)
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, 2, resp.ServerStats.TotalRooms)
	assert.Equal(t, 3, resp.ServerStats.TotalUsers)
	assert.Equal(t, 1, resp.ServerStats.ActiveInvites)
	assert.Equal(t, 2, resp.ServerStats.MaxRoomSize)
	assert.Equal(t, 15, resp.ServerStats.RoomTTLMinutes)

	// Busiest room first, full flag and rounded capacity.
	require.Len(t, resp.Rooms, 2)
	assert.Equal(t, "9q8yyk8", resp.Rooms[0].RoomHash)
	assert.True(t, resp.Rooms[0].IsFull)
	assert.Equal(t, 100.0, resp.Rooms[0].CapacityPercentage)
	assert.Equal(t, 50.0, resp.Rooms[1].CapacityPercentage)

	// Public keys are anonymized, short ones passed through.
	ids := []string{resp.Rooms[0].Users[0].UserID, resp.Rooms[0].Users[1].UserID}
	assert.Contains(t, ids, longPub[:20]+"...")
	assert.Contains(t, ids, "short-pub")
}
