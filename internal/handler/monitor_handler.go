package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/coursekit/coursekit-backend/internal/middleware"
	"github.com/coursekit/coursekit-backend/internal/monitor"
	"github.com/coursekit/coursekit-backend/internal/response"
	"github.com/coursekit/coursekit-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	monitorWriteWait  = 10 * time.Second
	monitorPingPeriod = 30 * time.Second
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allow-list permits all origins (development mode).
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

// MonitorHandler streams attempt-progress events to instructors over
// WebSocket. Events originate from the write path and fan out through
// Redis PubSub, so any server instance can serve the stream.
type MonitorHandler struct {
	tests    *service.TestService
	events   *monitor.Publisher
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(tests *service.TestService, events *monitor.Publisher, log zerolog.Logger, allowedOrigins []string) *MonitorHandler {
	return &MonitorHandler{
		tests:    tests,
		events:   events,
		log:      log.With().Str("component", "monitor_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// StreamTestMonitor godoc
// WS /ws/v1/tests/:test_id/monitor
// Upgrades to WebSocket and relays ATTEMPT_STARTED / RESPONSE_RECORDED /
// ATTEMPT_SUBMITTED / ATTEMPT_GRADED events for the test.
func (h *MonitorHandler) StreamTestMonitor(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	testID, ok := parseID(c, "test_id")
	if !ok {
		return
	}

	// Authorship check before the upgrade; after it we can only close.
	if _, err := h.tests.Get(c.Request.Context(), testID, claims.UserID, claims.Role); err != nil {
		failDomain(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	sub := h.events.Subscribe(c.Request.Context(), testID)
	defer sub.Close()

	wsLog := h.log.With().
		Str("test_id", testID.String()).
		Str("user_id", claims.UserID.String()).
		Logger()
	wsLog.Info().Msg("monitor stream opened")

	// Reader goroutine: we never expect client messages, but reading is
	// the only way to notice the peer going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(monitorPingPeriod)
	defer ping.Stop()

	ch := sub.Channel()
	for {
		select {
		case msg, open := <-ch:
			if !open {
				wsLog.Warn().Msg("monitor subscription closed")
				return
			}
			conn.SetWriteDeadline(time.Now().Add(monitorWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				wsLog.Debug().Err(err).Msg("monitor stream write failed")
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(monitorWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			wsLog.Info().Msg("monitor stream closed by client")
			return
		}
	}
}
