package server

import (
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebSocketHandler upgrades the request and runs a game session over it.
// Each frame travels as one binary message.
func (s *Server) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("[WebSocketHandler] upgrade failed")
		return
	}

	s.wg.Add(1)
	defer s.wg.Done()
	s.Handle(newWSStream(conn))
}

// wsStream presents a websocket as a byte stream so the frame codec can run
// over it unchanged.
type wsStream struct {
	conn   *websocket.Conn
	reader io.Reader
}

func newWSStream(conn *websocket.Conn) *wsStream {
	return &wsStream{conn: conn}
}

func (ws *wsStream) Read(p []byte) (int, error) {
	for {
		if ws.reader == nil {
			kind, r, err := ws.conn.NextReader()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
					return 0, io.EOF
				}
				return 0, err
			}
			if kind != websocket.BinaryMessage && kind != websocket.TextMessage {
				continue
			}
			ws.reader = r
		}

		n, err := ws.reader.Read(p)
		if errors.Is(err, io.EOF) {
			ws.reader = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

// Write sends p as one binary message. Sessions write whole frames.
func (ws *wsStream) Write(p []byte) (int, error) {
	if err := ws.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close may race with a Send, so the close frame goes out as a control
// message, which gorilla allows concurrently with other writes.
func (ws *wsStream) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = ws.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return ws.conn.Close()
}

func (ws *wsStream) SetWriteDeadline(t time.Time) error {
	return ws.conn.SetWriteDeadline(t)
}

func (ws *wsStream) RemoteAddr() net.Addr {
	return ws.conn.RemoteAddr()
}
