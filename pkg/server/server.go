package server

import (
	"fmt"
	"hash/fnv"
	"log"
	"net"
	"sync"

	"github.com/attorneyonline/tsugo/pkg/game"
	"github.com/attorneyonline/tsugo/pkg/protocol"
)

// Server owns the listeners and the per-connection goroutines.
type Server struct {
	Game    *game.Server
	Engine  *protocol.Engine
	Metrics *Metrics

	mu     sync.Mutex
	ln     net.Listener
	closed bool
	wg     sync.WaitGroup
}

// New builds a server around loaded game state.
func New(g *game.Server, e *protocol.Engine) *Server {
	return &Server{Game: g, Engine: e}
}

// ListenAndServe accepts TCP clients until Shutdown. It blocks.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.Game.Config.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	log.Printf("listening on %s", addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

// Shutdown stops the listener and disconnects every client.
func (s *Server) Shutdown() {
	s.mu.Lock()
	s.closed = true
	ln := s.ln
	s.mu.Unlock()
	if ln != nil {
		ln.Close()
	}
	for _, cl := range s.Game.Clients.All() {
		cl.Disconnect()
	}
	s.wg.Wait()
}

func (s *Server) handleConn(nc net.Conn) {
	defer s.wg.Done()

	host, _, err := net.SplitHostPort(nc.RemoteAddr().String())
	if err != nil {
		host = nc.RemoteAddr().String()
	}
	d := NewDescriptor(0, nc)
	cl, ok := s.Game.Clients.New(IPID(host), d, s.Game)
	if !ok {
		log.Printf("refusing %s: server full", host)
		d.SendCommand("BD", "This server is full.")
		d.Close()
		return
	}
	d.ID = cl.ID
	if s.Metrics != nil {
		s.Metrics.ConnectionOpened("tcp")
	}
	log.Printf("[%d] accepted %s", cl.ID, host)

	pc := protocol.NewConn(s.Engine, cl)
	defer func() {
		pc.Close()
		s.Game.Clients.Remove(cl.ID)
		d.Close()
		log.Printf("[%d] disconnected", cl.ID)
	}()

	buf := make([]byte, 1024)
	for {
		n, err := nc.Read(buf)
		if n > 0 {
			if ferr := pc.Feed(buf[:n]); ferr != nil {
				log.Printf("[%d] dropping connection: %v", cl.ID, ferr)
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// IPID derives the stable pseudonymous identifier bans and logs key on,
// so raw addresses never reach moderators.
func IPID(host string) string {
	h := fnv.New32a()
	h.Write([]byte(host))
	return fmt.Sprintf("%08x", h.Sum32())
}
