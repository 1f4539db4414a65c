package invitehandler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"radiuschat/internal/invite"
)

type Handler struct {
	registry      *invite.Registry
	baseURL       string
	defaultRadius float64
	defaultTTL    time.Duration
}

func New(registry *invite.Registry, baseURL string, defaultRadius float64, defaultTTL time.Duration) *Handler {
	return &Handler{
		registry:      registry,
		baseURL:       baseURL,
		defaultRadius: defaultRadius,
		defaultTTL:    defaultTTL,
	}
}

func (h *Handler) Register(r gin.IRoutes) {
	r.POST("/invites", h.create)
}

// create mints a location-bound invite and returns the join link.
func (h *Handler) create(ginCtx *gin.Context) {
	var body CreateInviteBody
	if err := ginCtx.ShouldBindJSON(&body); err != nil {
		ginCtx.JSON(http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
		return
	}

	radius := body.Radius
	if radius == 0 {
		radius = h.defaultRadius
	}
	ttl := h.defaultTTL
	if body.TTLDays != nil {
		ttl = time.Duration(*body.TTLDays * 24 * float64(time.Hour))
	}

	inv, err := h.registry.Create(*body.Lat, *body.Lon, radius, ttl)
	if err != nil {
		ginCtx.JSON(http.StatusInternalServerError, &ErrorResponse{Error: err.Error()})
		return
	}

	ginCtx.JSON(http.StatusCreated, CreateInviteResponse{
		Link:      fmt.Sprintf("%s/?invite=%s", h.baseURL, inv.Token),
		Token:     inv.Token,
		ExpiresAt: inv.ExpiresAt(),
	})
}
