package websocket

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/alumnidesk/internal/pkg/apperrors"
)

// TopicAuthorizer decides whether the admin may subscribe to topic. adminID
// is empty for guest sessions.
type TopicAuthorizer func(ctx context.Context, adminID, topic string) error

// Handler for WebSocket connections
type Handler struct {
	hub       *Hub
	authorize TopicAuthorizer
	logger    zerolog.Logger
}

// NewHandler creates a new WebSocket handler. authorize may be nil.
func NewHandler(hub *Hub, authorize TopicAuthorizer, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:       hub,
		authorize: authorize,
		logger:    logger,
	}
}

// HandleConnection godoc
// @Summary Subscribe to workflow progress
// @Description Upgrades to a WebSocket that streams progress of an ingestion commit (topic ingestion:{sessionId}) or a background job (topic job:{jobId}). The latest message of the topic is replayed on connect.
// @Tags websocket
// @Security BearerAuth
// @Param topic query string true "Topic to subscribe to"
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 400 {object} dto.ErrorResponse "Unknown topic"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Topic not found"
// @Router /ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	topic := c.Query("topic")
	if !ValidTopic(topic) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "topic must be ingestion:{sessionId} or job:{jobId}",
		})
		return
	}

	if h.authorize != nil {
		if err := h.authorize(c.Request.Context(), c.GetString("adminID"), topic); err != nil {
			status := http.StatusInternalServerError
			if apperrors.Is(err, apperrors.ErrSessionNotFound) || apperrors.Is(err, apperrors.ErrResourceNotFound) {
				status = http.StatusNotFound
			} else {
				h.logger.Error().Err(err).Str("topic", topic).Msg("Failed to authorize WebSocket topic")
			}
			c.JSON(status, gin.H{"error": "topic not found"})
			return
		}
	}

	subscriber := c.GetString("subject")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("topic", topic).
			Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:        h.hub,
		conn:       conn,
		send:       make(chan []byte, 64),
		subscriber: subscriber,
		topic:      topic,
		logger:     h.logger,
	}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}
