package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"quiz-service/internal/app"
	"quiz-service/internal/domain"
	"quiz-service/internal/logger"
)

// WSHandler streams leaderboard snapshots for one quiz over a websocket.
type WSHandler struct {
	attempts *app.AttemptService
	log      *logger.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(attempts *app.AttemptService, log *logger.Logger) *WSHandler {
	return &WSHandler{
		attempts: attempts,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type string `json:"type"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeLeaderboard upgrades the request and pushes a snapshot after every
// graded attempt on the quiz named by ?quizId=. Clients may send
// {"type":"ping"} and receive a "pong".
func (h *WSHandler) ServeLeaderboard(c *gin.Context) {
	quizID, err := strconv.ParseInt(c.Query("quizId"), 10, 64)
	if err != nil || quizID <= 0 {
		respondError(c, http.StatusBadRequest, "missing or invalid quizId")
		return
	}

	// Subscribing before the upgrade lets an unknown quiz fail as a plain 404.
	updates, cancel, err := h.attempts.Subscribe(c.Request.Context(), quizID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "quiz_id", quizID, "error", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Only the writer goroutine touches conn for writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write failed", "quiz_id", quizID, "error", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case lb, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- leaderboardMessage(lb):
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		var reply outboundMessage[any]
		switch inbound.Type {
		case "ping":
			reply = outboundMessage[any]{Type: "pong", Payload: struct{}{}}
		default:
			reply = outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
		select {
		case send <- reply:
		case <-writerDone:
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func leaderboardMessage(lb domain.Leaderboard) outboundMessage[any] {
	return outboundMessage[any]{Type: "leaderboard", Payload: lb}
}
