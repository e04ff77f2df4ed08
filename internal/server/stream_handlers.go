package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/docshot/docshot/internal/pipeline"
)

const (
	streamReadDeadline = 60 * time.Second
	streamPingInterval = 30 * time.Second
	streamWriteWait    = 10 * time.Second
)

// Upgrader with reasonable defaults. Origins are filtered by the CORS
// policy on the REST routes; the stream accepts any origin.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// streamConnWriter is the write side of a stream connection.
type streamConnWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// StreamCommand is a JSON text message from the client. Binary messages
// carry encoded frames and need no envelope.
type StreamCommand struct {
	Type string `json:"type"` // "reset"
}

// StreamResponse is a JSON message to the client.
type StreamResponse struct {
	Type   string                `json:"type"` // "frame_result", "reset_ack", "error"
	Result *pipeline.FrameResult `json:"result,omitempty"`
	Error  string                `json:"error,omitempty"`
}

// streamHandler upgrades the connection and feeds incoming frames into a
// dedicated session, so the multi-frame estimate ripens per connection.
func (s *Server) streamHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	sess, err := s.newSession()
	if err != nil {
		slog.Error("stream session init failed", "error", err)
		s.sendStreamError(conn, "session init failed")
		return
	}
	defer func() { _ = sess.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()
	slog.Info("stream connected", "remote_addr", r.RemoteAddr)

	s.serveStream(r.Context(), conn, sess)
}

// serveStream runs the read loop with keepalive pings and read deadlines.
func (s *Server) serveStream(ctx context.Context, conn *websocket.Conn, sess frameSession) {
	_ = conn.SetReadDeadline(time.Now().Add(streamReadDeadline))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(streamReadDeadline))
		return nil
	})

	go func() {
		ticker := time.NewTicker(streamPingInterval)
		defer ticker.Stop()
		for range ticker.C {
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(streamWriteWait)); err != nil {
				return
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Error("stream read error", "error", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(streamReadDeadline))
		websocketMessagesTotal.WithLabelValues("received").Inc()

		switch messageType {
		case websocket.BinaryMessage:
			s.handleStreamFrame(ctx, conn, sess, data)
		case websocket.TextMessage:
			s.handleStreamCommand(conn, sess, data)
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// handleStreamFrame decodes one binary frame and reports the detection.
func (s *Server) handleStreamFrame(ctx context.Context, conn streamConnWriter, sess frameSession, data []byte) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		s.sendStreamError(conn, "invalid frame encoding")
		return
	}

	start := time.Now()
	fr, err := sess.Feed(ctx, img)
	if err != nil {
		detectionsTotal.WithLabelValues("none", "error").Inc()
		s.sendStreamError(conn, "analysis failed: "+err.Error())
		return
	}
	recordDetection("websocket", fr, time.Since(start))

	s.sendStreamResponse(conn, StreamResponse{Type: "frame_result", Result: fr})
}

// handleStreamCommand handles JSON control messages.
func (s *Server) handleStreamCommand(conn streamConnWriter, sess frameSession, data []byte) {
	var cmd StreamCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		s.sendStreamError(conn, "invalid command")
		return
	}
	switch cmd.Type {
	case "reset":
		sess.Reset()
		s.sendStreamResponse(conn, StreamResponse{Type: "reset_ack"})
	default:
		s.sendStreamError(conn, "unsupported command: "+cmd.Type)
	}
}

func (s *Server) sendStreamResponse(conn streamConnWriter, response StreamResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		slog.Error("marshaling stream response", "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("sending stream message", "error", err)
		return
	}
	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

func (s *Server) sendStreamError(conn streamConnWriter, message string) {
	s.sendStreamResponse(conn, StreamResponse{Type: "error", Error: message})
}
