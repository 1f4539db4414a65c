package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"radiuschat/internal/config"
	"radiuschat/internal/http/http_server"
	"radiuschat/internal/http/invitehandler"
	"radiuschat/internal/http/statshandler"
	"radiuschat/internal/invite"
	"radiuschat/internal/middleware"
	"radiuschat/internal/redis/redis_client"
	"radiuschat/internal/room"
	"radiuschat/internal/sweeper"
	"radiuschat/internal/ws"
)

var (
	Log, _ = zap.NewDevelopment()
)

func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	Log.Debug("Configuration loaded successfully", zap.Any("config", cfg))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. In-memory room directory and invite registry
	roomTTL := time.Duration(cfg.RoomTTLMinutes) * time.Minute
	directory := room.NewDirectory(cfg.MaxRoomSize, roomTTL)
	registry := invite.NewRegistry(directory)

	// 4. Optional Redis-backed invite rate limiting
	var rateLimiter gin.HandlerFunc
	if cfg.RedisHost != "" {
		redisClient, err := redis_client.NewRedisClient(cfg.RedisHost, int(cfg.RedisPort))
		if err != nil {
			Log.Fatal("Failed to create Redis client", zap.Error(err))
		}
		defer redisClient.Close()
		rateLimiter = middleware.RateLimit(redisClient, cfg.InviteRateLimit)
	}

	// 5. Background: periodic room/invite TTL sweeper
	sweeper.Run(ctx, directory, registry,
		time.Duration(cfg.SweepIntervalSeconds)*time.Second)

	// 6. WebSocket relay
	wsSrv := ws.NewWsServer(directory, registry)

	// 7. HTTP handlers
	inviteHandler := invitehandler.New(registry, cfg.PublicBaseURL,
		cfg.InviteRadiusMeters,
		time.Duration(cfg.InviteTTLDays*24*float64(time.Hour)),
	)
	statsHandler := statshandler.New(directory, registry, roomTTL)

	// 8. HTTP + WS server
	httpServer := http_server.NewHttpServer(ctx, cfg.HttpServerPort,
		wsSrv, inviteHandler, statsHandler, rateLimiter)
	if err := httpServer.Start(); err != nil {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}
}
