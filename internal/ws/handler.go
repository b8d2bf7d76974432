package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"empathy-engine/backend/ai"
	"empathy-engine/backend/internal/emotion"
	"empathy-engine/backend/internal/service"
	"empathy-engine/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 64 * 1024 // 64KB
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
	HandshakeTimeout: 10 * time.Second,
	ReadBufferSize:   1024,
	WriteBufferSize:  1024,
}

// InboundMessage is one message sent by the client for live analysis
type InboundMessage struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// OutboundMessage carries the classification result back to the client
type OutboundMessage struct {
	Type    string      `json:"type"`
	Content interface{} `json:"content"`
}

// Handler serves the live analysis socket. Each connection keeps its own
// running history so later messages are classified with conversational
// context, mirroring the batch pipeline.
type Handler struct {
	classifier *service.ClassifierService
	log        *logger.Logger
}

func NewHandler(classifier *service.ClassifierService, log *logger.Logger) *Handler {
	return &Handler{classifier: classifier, log: log}
}

// Serve upgrades the connection and classifies messages as they arrive
func (h *Handler) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade failed", "error", err.Error())
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	var writeMu sync.Mutex
	done := make(chan struct{})
	defer close(done)

	go h.pingLoop(conn, &writeMu, done)

	var history []ai.HistoryEntry
	seq := 0

	for {
		var inbound InboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("WebSocket read failed", "error", err.Error())
			}
			return
		}

		if inbound.Text == "" {
			h.send(conn, &writeMu, OutboundMessage{Type: "error", Content: "text is required"})
			continue
		}

		probs := h.classifier.Classify(c.Request.Context(), inbound.Text, history)
		entropy := emotion.Entropy(probs)
		seq++

		analyzed := emotion.AnalyzedMessage{
			ID:         seq,
			Speaker:    inbound.Speaker,
			Text:       inbound.Text,
			TS:         time.Now().UTC().Format(time.RFC3339),
			Probs:      probs,
			Dominant:   probs.Dominant(),
			Entropy:    emotion.Round3(entropy),
			Confidence: emotion.ConfidenceFromEntropy(entropy),
		}

		history = append(history, ai.HistoryEntry{Speaker: inbound.Speaker, Text: inbound.Text})

		h.send(conn, &writeMu, OutboundMessage{Type: "analysis", Content: analyzed})
	}
}

func (h *Handler) send(conn *websocket.Conn, mu *sync.Mutex, msg OutboundMessage) {
	mu.Lock()
	defer mu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		h.log.Warn("WebSocket write failed", "error", err.Error())
	}
}

func (h *Handler) pingLoop(conn *websocket.Conn, mu *sync.Mutex, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mu.Lock()
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			mu.Unlock()
			if err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
