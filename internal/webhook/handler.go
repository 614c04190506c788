package webhook

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	errx "github.com/vngglass/orderchat/internal/core/error"
	"github.com/vngglass/orderchat/internal/zalo"
	logx "github.com/vngglass/orderchat/pkg/logger"
)

// Handler exposes the webhook pipeline over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the routes on the router.
func (h *Handler) Register(r gin.IRouter) {
	grp := r.Group("/api/zalo-order")
	grp.POST("/webhook", h.HandleWebhook)
	grp.GET("/health", h.HandleHealth)
}

// HandleWebhook processes one channel delivery.
// POST /api/zalo-order/webhook
//
// The channel expects a quick 200 and redelivers on anything else, so only
// an unreadable payload gets a 4xx; processing errors answer 200 with an
// error status to keep redeliveries from piling up on a poisoned message.
func (h *Handler) HandleWebhook(c *gin.Context) {
	var evt zalo.WebhookEvent
	if err := c.ShouldBindJSON(&evt); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid payload"})
		return
	}

	outcome, err := h.service.HandleEvent(c.Request.Context(), &evt)
	if err != nil {
		logx.Error().Err(err).Str("event", evt.EventName).Msg("webhook processing failed")
		msg := errx.SystemErrorMessage
		var appErr *errx.AppError
		if errors.As(err, &appErr) {
			msg = appErr.Message
		}
		c.JSON(http.StatusOK, gin.H{"status": "error", "message": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": outcome.Status})
}

// HandleHealth reports liveness.
// GET /api/zalo-order/health
func (h *Handler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
