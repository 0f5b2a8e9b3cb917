// Package nimbletest runs an in-memory NimbleDB server for tests.
package nimbletest

import (
	"encoding/binary"
	"errors"
	"net"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Eugene-Usachev/go-expect/internal/constants"
	"github.com/Eugene-Usachev/go-expect/internal/reader"
	"github.com/Eugene-Usachev/go-expect/internal/scheme"
)

type space struct {
	name   string
	engine constants.SpaceEngineType
	scheme scheme.Scheme
	data   map[string][]byte
}

// Server serves NimbleDB requests on a loopback listener.
type Server struct {
	listener net.Listener
	log      *logrus.Entry

	m      sync.Mutex
	spaces []*space
	conns  map[net.Conn]struct{}
	wg     sync.WaitGroup
}

// Start listens on a random loopback port and serves until Close.
func Start() (*Server, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	s := &Server{
		listener: l,
		log:      logrus.WithField("component", "nimbletest"),
		conns:    make(map[net.Conn]struct{}),
	}
	s.wg.Add(1)
	go s.accept()
	return s, nil
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Close stops listening and drops every connection.
func (s *Server) Close() {
	_ = s.listener.Close()
	s.DropConnections()
	s.wg.Wait()
}

// DropConnections closes every open connection without stopping the server.
func (s *Server) DropConnections() {
	s.m.Lock()
	defer s.m.Unlock()
	for conn := range s.conns {
		_ = conn.Close()
	}
}

func (s *Server) accept() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				s.log.WithError(err).Warn("Accept failed")
			}
			return
		}
		s.m.Lock()
		s.conns[conn] = struct{}{}
		s.m.Unlock()

		s.wg.Add(1)
		go s.serve(conn)
	}
}

func (s *Server) serve(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.m.Lock()
		delete(s.conns, conn)
		s.m.Unlock()
		_ = conn.Close()
	}()

	r := reader.NewBufReader()
	r.SetReader(conn)
	var out []byte
	for {
		if failure := r.ReadRequest(); failure.HoldsError() {
			s.log.WithField("error", failure.Get()).Debug("Connection done")
			return
		}
		out = out[:0]
		for r.Remaining() > 0 {
			msg := r.ReadMessage()
			if msg.HoldsError() {
				s.log.WithField("error", msg.Fail().Get()).Debug("Bad message")
				return
			}
			out = reader.AppendMessage(out, s.handle(msg.Success()))
		}
		if _, err := conn.Write(out); err != nil {
			return
		}
	}
}

func (s *Server) handle(msg []byte) []byte {
	if len(msg) == 0 {
		return []byte{constants.BadRequest}
	}
	s.m.Lock()
	defer s.m.Unlock()

	action, args := msg[0], msg[1:]
	switch action {
	case constants.Ping:
		return []byte{constants.Done}
	case constants.CreateSpaceCache:
		return s.createSpace(constants.Cache, args)
	case constants.CreateSpaceInMemory:
		return s.createSpace(constants.InMemory, args)
	case constants.CreateSpaceOnDisk:
		return s.createSpace(constants.OnDisk, args)
	case constants.GetSpacesNames:
		out := []byte{constants.Done}
		for _, sp := range s.spaces {
			out = binary.LittleEndian.AppendUint16(out, uint16(len(sp.name)))
			out = append(out, sp.name...)
		}
		return out
	}

	if len(args) < 2 {
		return []byte{constants.BadRequest}
	}
	id := binary.LittleEndian.Uint16(args)
	if int(id) >= len(s.spaces) {
		return []byte{constants.SpaceNotFound}
	}
	sp, args := s.spaces[id], args[2:]

	switch action {
	case constants.Get:
		value, ok := sp.data[string(args)]
		if !ok {
			return []byte{constants.NotFound}
		}
		return append([]byte{constants.Done}, value...)
	case constants.Delete:
		if _, ok := sp.data[string(args)]; !ok {
			return []byte{constants.NotFound}
		}
		delete(sp.data, string(args))
		return []byte{constants.Done}
	case constants.Insert, constants.Set:
		if len(args) < 2 {
			return []byte{constants.BadRequest}
		}
		keyLength := int(binary.LittleEndian.Uint16(args))
		if len(args) < 2+keyLength {
			return []byte{constants.BadRequest}
		}
		key, value := string(args[2:2+keyLength]), args[2+keyLength:]
		if _, exists := sp.data[key]; exists && action == constants.Insert {
			return []byte{constants.BadRequest}
		}
		sp.data[key] = append([]byte{}, value...)
		return []byte{constants.Done}
	}
	return []byte{constants.BadRequest}
}

// createSpace parses u16 name length + name + optional JSON scheme.
func (s *Server) createSpace(engine constants.SpaceEngineType, args []byte) []byte {
	if len(args) < 2 {
		return []byte{constants.BadRequest}
	}
	nameLength := int(binary.LittleEndian.Uint16(args))
	if len(args) < 2+nameLength {
		return []byte{constants.BadRequest}
	}
	sp := &space{
		name:   string(args[2 : 2+nameLength]),
		engine: engine,
		data:   make(map[string][]byte),
	}
	if raw := args[2+nameLength:]; len(raw) > 0 {
		parsed := scheme.Parse(raw)
		if parsed.HoldsError() {
			s.log.WithField("error", parsed.Fail().Get()).Debug("Bad scheme")
			return []byte{constants.BadRequest}
		}
		sp.scheme = parsed.Success()
	}
	for _, existing := range s.spaces {
		if existing.name == sp.name {
			return []byte{constants.BadRequest}
		}
	}
	s.spaces = append(s.spaces, sp)
	return binary.LittleEndian.AppendUint16([]byte{constants.Done}, uint16(len(s.spaces)-1))
}

// Scheme returns the scheme the named space was created with.
func (s *Server) Scheme(name string) (scheme.Scheme, bool) {
	s.m.Lock()
	defer s.m.Unlock()
	for _, sp := range s.spaces {
		if sp.name == name {
			return sp.scheme, true
		}
	}
	return scheme.Scheme{}, false
}
