package ws

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"radiuschat/internal/geo"
	"radiuschat/internal/invite"
	"radiuschat/internal/room"
)

const (
	writeWait      = 10 * time.Second
	handshakeWait  = 15 * time.Second
	maxMessageSize = 1 << 20
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WsServer drives one session per websocket: handshake, room
// assignment, relay, teardown.
type WsServer struct {
	directory *room.Directory
	invites   *invite.Registry
	caster    *Broadcaster
}

func NewWsServer(directory *room.Directory, invites *invite.Registry) *WsServer {
	return &WsServer{
		directory: directory,
		invites:   invites,
		caster:    NewBroadcaster(directory, invites),
	}
}

// ---------------------------------------------------------------------------
//  Public: Gin entry-point
// ---------------------------------------------------------------------------

func (s *WsServer) Handle(ginCtx *gin.Context) {
	rawConn, err := upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		zap.L().Warn("ws.upgrade", zap.Error(err))
		return
	}
	rawConn.SetReadLimit(maxMessageSize)

	go s.session(&clientConn{rawConn: rawConn})
}

// ---------------------------------------------------------------------------
//  Session state machine
// ---------------------------------------------------------------------------

func (s *WsServer) session(conn *clientConn) {
	defer conn.Close()

	hs, err := s.readHandshake(conn)
	if err != nil {
		// Protocol error: tear down without touching the directory.
		_ = conn.PushJSON(ErrorFrame{Type: "error", Message: "malformed handshake"})
		zap.L().Debug("ws.handshake", zap.Error(err))
		return
	}

	roomKey, ok := s.assignRoom(conn, hs)
	if !ok {
		return
	}

	member := &room.Member{Pub: hs.Pub, JoinedAt: time.Now(), Conn: conn}
	occupancy, err := s.directory.TryJoin(roomKey, member)
	if errors.Is(err, room.ErrRoomFull) {
		max := s.directory.MaxRoomSize()
		_ = conn.PushJSON(RoomFullFrame{
			Type: "room_full",
			Message: fmt.Sprintf(
				"This location has reached the maximum capacity of %d users. Please try again later.", max),
			CurrentUsers: occupancy,
			MaxUsers:     max,
		})
		return
	}

	zap.L().Info("ws.join",
		zap.String("room", truncateKey(roomKey)),
		zap.Int("occupancy", occupancy),
	)

	// Runs exactly once, whatever ends the relay loop.
	defer func() {
		s.directory.Leave(roomKey, member.SessionID)
		s.caster.AnnounceRoster(roomKey)
		now := time.Now()
		s.directory.SweepExpired(now)
		s.invites.SweepExpired(now)
		zap.L().Info("ws.leave", zap.String("room", truncateKey(roomKey)))
	}()

	s.caster.AnnounceRoster(roomKey)

	for {
		messageType, payload, err := conn.rawConn.ReadMessage()
		if err != nil {
			return // channel closed or errored
		}
		if !s.caster.Relay(roomKey, member.SessionID, messageType, payload) {
			// The room was dropped out from under us (expired
			// invite). Implicit forced close for the orphan.
			zap.L().Debug("ws.orphaned", zap.String("room", truncateKey(roomKey)))
			return
		}
	}
}

// readHandshake reads the single structured frame. After it succeeds
// the connection has no read deadline: idle members are only ever
// removed by the room TTL sweep.
func (s *WsServer) readHandshake(conn *clientConn) (*Handshake, error) {
	_ = conn.rawConn.SetReadDeadline(time.Now().Add(handshakeWait))

	var hs Handshake
	if err := conn.rawConn.ReadJSON(&hs); err != nil {
		return nil, err
	}
	if hs.Pub == "" || hs.Lat == nil || hs.Lon == nil {
		return nil, errors.New("missing required handshake fields")
	}
	if !geo.ValidCoords(*hs.Lat, *hs.Lon) {
		return nil, errors.New("coordinates out of range")
	}

	_ = conn.rawConn.SetReadDeadline(time.Time{})
	return &hs, nil
}

// assignRoom resolves the room key, sending the rejection frame itself
// when the invite path fails.
func (s *WsServer) assignRoom(conn *clientConn, hs *Handshake) (string, bool) {
	lat, lon := *hs.Lat, *hs.Lon

	if hs.InviteToken == "" {
		return geo.Cell(lat, lon), true
	}

	s.invites.SweepExpired(time.Now())
	inv, err := s.invites.Lookup(hs.InviteToken)
	if err != nil {
		_ = conn.PushJSON(ErrorFrame{Type: "error", Message: "This invite link is invalid or has expired."})
		return "", false
	}

	distance := geo.DistanceMeters(lat, lon, inv.Lat, inv.Lon)
	if distance > inv.Radius {
		radius := inv.Radius
		_ = conn.PushJSON(ErrorFrame{
			Type: "location_error",
			Message: fmt.Sprintf(
				"You are %.0f m from the meeting point; this invite only works within %.0f m.",
				distance, radius),
			Distance:       &distance,
			RequiredRadius: &radius,
		})
		return "", false
	}

	return invite.RoomKey(inv.Token), true
}
