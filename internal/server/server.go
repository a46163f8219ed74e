// Package server owns the TCP listener and every accepted connection,
// bridging raw byte streams to the command router. A single hub goroutine has
// exclusive access to the server state: per-connection read pumps frame the
// input and feed it to the hub in arrival order, the hub routes each message
// and fans the replies out to per-connection write queues.
package server

import (
	"context"
	"errors"
	"net"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/ircserv/internal/proto"
	"github.com/vovakirdan/ircserv/internal/router"
	"github.com/vovakirdan/ircserv/internal/state"
)

// RouteFunc processes one incoming message against the shared state,
// appending replies. Both the core router and the bot wrapper satisfy it.
type RouteFunc func(msg proto.Message, st *state.State, r *router.Responses)

// Server accepts connections and runs the hub loop.
type Server struct {
	addr       string
	maxClients int
	st         *state.State
	route      RouteFunc
	log        *zerolog.Logger

	ln         net.Listener
	conns      map[int]*conn
	nextID     int
	accepted   chan net.Conn
	inbound    chan inboundLine
	unregister chan int
	fatal      chan error
	ready      chan struct{}
	done       chan struct{}
}

// New builds a server; Run must be called to start it.
func New(addr string, maxClients int, st *state.State, route RouteFunc, logger *zerolog.Logger) *Server {
	return &Server{
		addr:       addr,
		maxClients: maxClients,
		st:         st,
		route:      route,
		log:        logger,
		conns:      make(map[int]*conn),
		accepted:   make(chan net.Conn),
		inbound:    make(chan inboundLine),
		unregister: make(chan int),
		fatal:      make(chan error, 1),
		ready:      make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Ready is closed once the listener is bound; Addr is valid after that.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound listener address.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Run binds the listener and services the hub loop until the context is
// cancelled or the listener fails. On cancellation every open connection is
// notified and closed before the listener shuts down.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.ln = ln
	close(s.ready)
	defer ln.Close()
	// releases pump goroutines still trying to reach the hub after it stops
	defer close(s.done)

	s.log.Info().Str("addr", ln.Addr().String()).Msg("listening")
	go s.acceptLoop(ctx)

	for {
		select {
		case <-ctx.Done():
			s.drainAll()
			return nil
		case err := <-s.fatal:
			s.drainAll()
			return err
		case sock := <-s.accepted:
			s.addConn(sock)
		case id := <-s.unregister:
			s.dropConn(id)
		case in := <-s.inbound:
			s.handleLine(in)
		}
	}
}

func (s *Server) acceptLoop(ctx context.Context) {
	for {
		sock, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			s.fatal <- err
			return
		}
		select {
		case s.accepted <- sock:
		case <-ctx.Done():
			sock.Close()
			return
		}
	}
}

// addConn registers an accepted socket and starts its pumps. The connection
// set is bounded; sockets over the limit are closed outright.
func (s *Server) addConn(sock net.Conn) {
	if len(s.conns) >= s.maxClients {
		s.log.Warn().Str("addr", sock.RemoteAddr().String()).Msg("too many clients")
		sock.Close()
		return
	}

	s.nextID++
	c := &conn{
		id:   s.nextID,
		sock: sock,
		send: make(chan []byte, sendQueueLen),
	}
	c.log = s.log.With().
		Int("fd", c.id).
		Str("conn_id", uuid.NewString()).
		Str("addr", sock.RemoteAddr().String()).
		Logger()
	s.conns[c.id] = c

	c.log.Info().Int("clients", len(s.conns)).Msg("client connected")
	go c.readPump(s.inbound, s.unregister, s.done)
	go c.writePump()
}

// handleLine parses one frame and routes it. Frames from connections already
// torn down are dropped.
func (s *Server) handleLine(in inboundLine) {
	if _, ok := s.conns[in.connID]; !ok {
		return
	}
	msg := proto.Parse(in.connID, in.raw)

	var responses router.Responses
	s.route(msg, s.st, &responses)
	s.dispatch(responses)
}

// dispatch serializes each outgoing message onto its destination queue.
// Messages addressed to synthetic clients have no socket and are skipped; an
// ERROR message schedules its destination for teardown after the queue
// drains.
func (s *Server) dispatch(responses router.Responses) {
	for _, out := range responses {
		if out.ConnID < 0 {
			continue
		}
		c, ok := s.conns[out.ConnID]
		if !ok {
			continue
		}
		select {
		case c.send <- []byte(out.Assemble()):
		default:
			c.log.Warn().Msg("send queue full, dropping client")
			s.dropConn(c.id)
			continue
		}
		if out.ShouldDisconnect() {
			s.finishConn(c)
		}
	}
}

// finishConn retires a connection gracefully: the queue is closed so the
// write pump flushes everything (the final ERROR included) before closing
// the socket. The router has already removed the client from server state.
func (s *Server) finishConn(c *conn) {
	delete(s.conns, c.id)
	close(c.send)
	c.log.Info().Int("clients", len(s.conns)).Msg("client disconnecting")
}

// dropConn tears a connection down after a peer disconnect, read error or
// flood. The departure is routed as a synthetic QUIT so channel co-members
// are notified; replies addressed to the dead connection are discarded.
func (s *Server) dropConn(id int) {
	c, ok := s.conns[id]
	if !ok {
		return
	}
	delete(s.conns, id)
	close(c.send)
	c.sock.Close()

	var responses router.Responses
	s.route(proto.Parse(id, "QUIT :Disconnected"+proto.Terminator), s.st, &responses)
	s.dispatch(responses)

	c.log.Info().Int("clients", len(s.conns)).Msg("client disconnected")
}

// drainAll notifies and closes every open connection; used on shutdown and
// fatal errors.
func (s *Server) drainAll() {
	s.log.Info().Int("clients", len(s.conns)).Msg("closing all connections")
	for id, c := range s.conns {
		delete(s.conns, id)
		select {
		case c.send <- []byte(proto.Message{Verb: "ERROR", Params: []string{"Server shutting down"}}.Assemble()):
		default:
		}
		close(c.send)
	}
}
