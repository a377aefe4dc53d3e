package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/seenimoa/fxdash/internal/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// Message types pushed to stream clients.
const (
	MsgQuotes     = "quotes"
	MsgSubscribed = "subscribed"
	MsgPong       = "pong"
	MsgError      = "error"
)

// WSMessage is the envelope for every frame the server sends.
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// wsCommand is a frame sent by the client:
//
//	{"type":"subscribe","currencies":["USD","EUR"]}
//	{"type":"ping"}
type wsCommand struct {
	Type       string   `json:"type"`
	Currencies []string `json:"currencies,omitempty"`
}

// handleQuoteStream upgrades to a WebSocket and pushes the latest quotes of
// the selected currencies immediately and then every stream interval. The
// selection comes from ?currencies= and can be replaced by a subscribe
// command.
func (s *Server) handleQuoteStream(w http.ResponseWriter, r *http.Request) {
	codes, err := s.svc.ResolveCurrencies(parseCurrencies(r.URL.Query().Get("currencies")))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	log := s.log.WithFields(logger.Fields{
		"request_id": RequestIDFromContext(r.Context()),
		"stream":     "quotes",
	})
	log.WithField("currencies", codes).Debug("stream opened")

	commands := make(chan wsCommand, 16)
	go wsReadPump(conn, commands, log)

	s.wsWriteLoop(r.Context(), conn, codes, commands, log)
	log.Debug("stream closed")
}

// wsReadPump decodes client commands until the connection fails, then
// closes commands. It never writes to conn.
func wsReadPump(conn *websocket.Conn, commands chan<- wsCommand, log *logger.Entry) {
	defer close(commands)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("websocket read error")
			}
			return
		}

		var cmd wsCommand
		if err := json.Unmarshal(message, &cmd); err != nil {
			continue
		}
		select {
		case commands <- cmd:
		default:
			// client is flooding; drop
		}
	}
}

// wsWriteLoop owns every write to conn.
func (s *Server) wsWriteLoop(ctx context.Context, conn *websocket.Conn, codes []string, commands <-chan wsCommand, log *logger.Entry) {
	interval := s.cfg.API.StreamInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	push := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		push.Stop()
		ping.Stop()
	}()

	send := func(msg WSMessage) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			log.WithError(err).Debug("websocket write failed")
			return false
		}
		return true
	}
	pushQuotes := func() bool {
		qctx, cancel := context.WithTimeout(ctx, s.cfg.Fetch.Timeout+writeWait)
		defer cancel()
		quotes, err := s.svc.Quotes(qctx, codes)
		if err != nil {
			return send(WSMessage{Type: MsgError, Data: err.Error()})
		}
		return send(WSMessage{Type: MsgQuotes, Data: quotes})
	}

	if !pushQuotes() {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return

		case cmd, ok := <-commands:
			if !ok {
				return
			}
			switch cmd.Type {
			case "subscribe":
				resolved, err := s.svc.ResolveCurrencies(cmd.Currencies)
				if err != nil {
					if !send(WSMessage{Type: MsgError, Data: err.Error()}) {
						return
					}
					continue
				}
				codes = resolved
				if !send(WSMessage{Type: MsgSubscribed, Data: codes}) || !pushQuotes() {
					return
				}
			case "ping":
				if !send(WSMessage{Type: MsgPong}) {
					return
				}
			}

		case <-push.C:
			if !pushQuotes() {
				return
			}

		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
