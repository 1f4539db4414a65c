package http_server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"radiuschat/internal/http/invitehandler"
	"radiuschat/internal/http/statshandler"
	"radiuschat/internal/ws"
)

type httpServer struct {
	listenPort    uint16
	srv           http.Server
	ln            net.Listener
	wsSrv         *ws.WsServer
	inviteHandler *invitehandler.Handler
	statsHandler  *statshandler.Handler
	rateLimiter   gin.HandlerFunc // nil when Redis is not configured
	ctx           context.Context
}

func NewHttpServer(
	ctx context.Context,
	listenPort uint16,
	wsSrv *ws.WsServer,
	inviteHandler *invitehandler.Handler,
	statsHandler *statshandler.Handler,
	rateLimiter gin.HandlerFunc,
) *httpServer {
	return &httpServer{
		listenPort:    listenPort,
		wsSrv:         wsSrv,
		inviteHandler: inviteHandler,
		statsHandler:  statsHandler,
		rateLimiter:   rateLimiter,
		ctx:           ctx,
	}
}

func (h *httpServer) Start() error {
	var err error
	listenAddr := fmt.Sprintf(":%d", h.listenPort)
	h.ln, err = net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}

	routerEngine := gin.New()
	routerEngine.Use(ginzap.Ginzap(zap.L(), time.RFC3339, true))
	routerEngine.Use(ginzap.RecoveryWithZap(zap.L(), true))

	// Static files for the web UI
	routerEngine.StaticFile("", "public/index.html")
	routerEngine.Static("/js", "public/js")

	// websocket endpoint
	routerEngine.GET("/ws", h.wsSrv.Handle)

	// invite creation, rate limited when Redis is available
	inviteRoutes := routerEngine.Group("")
	if h.rateLimiter != nil {
		inviteRoutes.Use(h.rateLimiter)
	}
	h.inviteHandler.Register(inviteRoutes)

	// diagnostics
	h.statsHandler.Register(routerEngine)

	h.srv = http.Server{
		Handler: routerEngine,
	}

	return h.srv.Serve(h.ln)
}

// Dispose gracefully shuts the HTTP server down.
// It waits up to 10 s for in-flight requests to finish.
func (h *httpServer) Dispose() error {
	ctx, cancel := context.WithTimeout(h.ctx, 10*time.Second)
	defer cancel()

	if err := h.srv.Shutdown(ctx); err != nil {
		zap.L().Error("http_dispose", zap.Error(err))
		return err // e.g. active conns didn't finish in time
	}

	if ctx.Err() == context.DeadlineExceeded {
		zap.L().Error("http_dispose", zap.Error(errors.New("shutdown timed out")))
		log.Println("shutdown timeout (10 s)")
	}

	return nil
}
