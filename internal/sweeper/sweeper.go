// Package sweeper runs the periodic garbage collection of idle rooms
// and expired invites.
package sweeper

import (
	"context"
	"time"

	"go.uber.org/zap"

	"radiuschat/internal/invite"
	"radiuschat/internal/room"
)

// Run launches the sweep loop; it stops when ctx is cancelled. Sessions
// also sweep on teardown, so the ticker only bounds how long an
// entirely idle process keeps dead state around.
func Run(ctx context.Context, directory *room.Directory, registry *invite.Registry, interval time.Duration) {
	tk := time.NewTicker(interval)
	go func() {
		defer tk.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tk.C:
				now := time.Now()
				directory.SweepExpired(now)
				registry.SweepExpired(now)
				zap.L().Debug("sweeper.tick", zap.Int("rooms", len(directory.AllRooms())))
			}
		}
	}()
}
