package server

import (
	"bytes"
	"errors"
	"io"
	"net"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/ircserv/internal/proto"
)

// sendQueueLen bounds how many serialized replies may be pending per
// connection before it is treated as a slow consumer and dropped.
const sendQueueLen = 256

// inboundLine is one complete frame received from a connection, terminator
// included.
type inboundLine struct {
	connID int
	raw    string
}

// conn is one accepted socket with its outbound queue. The hub goroutine is
// the only writer to send; closing send tells the write pump to flush what
// remains and close the socket.
type conn struct {
	id   int
	sock net.Conn
	send chan []byte
	log  zerolog.Logger
}

// readPump accumulates received bytes and extracts complete CRLF-terminated
// frames in arrival order. A connection that accumulates more than a full
// frame with no terminator in sight is disconnected immediately with no
// reply (flood protection). Announces its exit on unregister unless the hub
// has already stopped.
func (c *conn) readPump(inbound chan<- inboundLine, unregister chan<- int, done <-chan struct{}) {
	defer func() {
		select {
		case unregister <- c.id:
		case <-done:
		}
	}()

	terminator := []byte(proto.Terminator)
	buf := make([]byte, 0, 2*proto.MaxLineLen)
	chunk := make([]byte, proto.MaxLineLen)

	for {
		n, err := c.sock.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			for {
				i := bytes.Index(buf, terminator)
				if i < 0 {
					break
				}
				frame := string(buf[:i+len(terminator)])
				buf = buf[i+len(terminator):]
				select {
				case inbound <- inboundLine{connID: c.id, raw: frame}:
				case <-done:
					return
				}
			}
			if len(buf) > proto.MaxPayloadLen {
				c.log.Warn().Int("buffered", len(buf)).Msg("frame limit exceeded without terminator, disconnecting")
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				c.log.Warn().Err(err).Msg("read failed")
			}
			return
		}
	}
}

// writePump drains the outbound queue onto the socket and closes it once the
// queue is closed and fully flushed, so a client always receives its final
// reply before teardown.
func (c *conn) writePump() {
	defer c.sock.Close()

	for b := range c.send {
		if _, err := c.sock.Write(b); err != nil {
			if !errors.Is(err, net.ErrClosed) {
				c.log.Warn().Err(err).Msg("write failed")
			}
			return
		}
	}
}
