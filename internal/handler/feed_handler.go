package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/admitra/admitra-backend/internal/config"
	"github.com/admitra/admitra-backend/internal/middleware"
	ws "github.com/admitra/admitra-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// FeedHandler streams live scan verdicts for a session over WebSocket.
type FeedHandler struct {
	rdb      *redis.Client
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(rdb *redis.Client, log zerolog.Logger, allowedOrigins []string) *FeedHandler {
	return &FeedHandler{
		rdb:      rdb,
		log:      log.With().Str("component", "feed_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// SessionScanFeed godoc
// WS /ws/v1/sessions/:session_id/feed
// Upgrades to WebSocket and relays every scan verdict for the session as it
// happens. Fed by the Redis PubSub channel the scan service publishes to.
func (h *FeedHandler) SessionScanFeed(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	feedLog := h.log.With().
		Int("staff_id", claims.UserID).
		Str("session_id", sessionID.String()).
		Logger()

	feedLog.Info().Msg("Feed subscriber connected")

	ctx := c.Request.Context()
	sub := h.rdb.Subscribe(ctx, config.CacheKey.ScanFeedChannel(sessionID.String()))
	defer sub.Close()

	// Reader goroutine: we never expect client messages, but reading is the
	// only way to notice the peer closing the socket.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			feedLog.Debug().Msg("Feed subscriber disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				ws.WriteError(conn, "feed closed")
				return
			}
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				feedLog.Debug().Err(err).Msg("Feed write failed")
				return
			}
		}
	}
}
