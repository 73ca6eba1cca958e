/*
Package transport provides the persistent duplex connection to the platform's
lobby event stream.

It dials the backend over WebSocket and runs the read/write pumps: the read
pump delivers raw inbound frames on a bounded channel for the event adapter,
and the write pump maintains the heartbeat. Reconnect and backoff policy is
deliberately out of scope; the consumer observes Done and decides.
*/
package transport

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"lobbysync/internal/pkg/logx"
)

const (
	// handshakeTimeout bounds the initial WebSocket dial.
	handshakeTimeout = 10 * time.Second

	// writeWait is the timeout for writing a frame to the connection.
	writeWait = 10 * time.Second

	// pongWait is the maximum time to wait for the server's Pong before the
	// connection is considered dead.
	pongWait = 60 * time.Second

	// pingPeriod is the heartbeat frequency; it must be below pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize is the maximum allowed inbound frame size in bytes.
	maxMessageSize = 32768

	// frameBuffer bounds the inbound frame channel. A full buffer blocks the
	// read pump, which backpressures the server through TCP.
	frameBuffer = 256
)

// WSStream is an active WebSocket connection to the lobby event stream.
type WSStream struct {
	conn *websocket.Conn

	// frames carries raw inbound frames; closed when the read pump exits.
	frames chan []byte

	// done is closed when the connection terminates for any reason.
	done chan struct{}

	// quit asks the write pump to send the close frame and tear down.
	quit      chan struct{}
	closeOnce sync.Once

	logger zerolog.Logger
}

// Dial connects to the event stream, authenticating with the bearer token
// when one is set, and starts the read/write pumps.
func Dial(ctx context.Context, streamURL, bearerToken string) (*WSStream, error) {
	header := http.Header{}
	if bearerToken != "" {
		header.Set("Authorization", "Bearer "+bearerToken)
	}

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, streamURL, header)
	if err != nil {
		return nil, err
	}

	stream := &WSStream{
		conn:   conn,
		frames: make(chan []byte, frameBuffer),
		done:   make(chan struct{}),
		quit:   make(chan struct{}),
		logger: logx.Component("event_stream").With().Str("stream_url", streamURL).Logger(),
	}

	go stream.readPump()
	go stream.writePump()

	stream.logger.Info().Msg("Event stream connected.")
	return stream, nil
}

// Frames returns the inbound frame channel. It closes when the connection ends.
func (s *WSStream) Frames() <-chan []byte {
	return s.frames
}

// Done is closed when the connection has terminated.
func (s *WSStream) Done() <-chan struct{} {
	return s.done
}

// Close initiates a graceful shutdown: the write pump sends the close frame
// and the pumps tear the connection down. Safe to call more than once.
func (s *WSStream) Close() error {
	s.closeOnce.Do(func() {
		close(s.quit)
	})
	return nil
}

// readPump reads inbound frames until the connection fails or closes,
// handling the heartbeat Pong deadline. It owns closing the frames channel.
func (s *WSStream) readPump() {
	defer func() {
		close(s.frames)
		close(s.done)

		if err := s.conn.Close(); err != nil {
			s.logger.Debug().Err(err).Msg("Connection close error in read pump.")
		}
	}()

	s.conn.SetReadLimit(maxMessageSize)

	if err := s.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to set read deadline.")
		return
	}

	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn().Err(err).Msg("Event stream read failed.")
			} else {
				s.logger.Info().Msg("Event stream closed.")
			}
			return
		}

		s.frames <- frame
	}
}

// writePump maintains the heartbeat and performs the graceful close
// handshake. It is the only goroutine writing to the connection.
func (s *WSStream) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				s.logger.Error().Err(err).Msg("Failed to set write deadline on ping.")
				return
			}
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.logger.Warn().Err(err).Msg("Heartbeat ping failed.")
				return
			}

		case <-s.quit:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			closeMessage := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			if err := s.conn.WriteMessage(websocket.CloseMessage, closeMessage); err != nil {
				s.logger.Debug().Err(err).Msg("Failed to send close frame.")
			}
			// The server's close reply unblocks the read pump, which closes
			// the connection. Force it after the write deadline regardless.
			time.AfterFunc(writeWait, func() { _ = s.conn.Close() })
			return

		case <-s.done:
			return
		}
	}
}
