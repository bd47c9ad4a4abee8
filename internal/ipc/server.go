package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/kward/duskmon/internal/logger"
)

// Server listens on the loopback control socket and dispatches
// requests to its handler.
type Server struct {
	mu       sync.Mutex
	listener net.Listener
	handler  Handler
	wg       sync.WaitGroup
	cancel   context.CancelFunc
	running  bool
}

// NewServer creates a control server around a handler.
func NewServer(handler Handler) *Server {
	return &Server{handler: handler}
}

// Start binds the loopback port and begins accepting connections. A
// bind failure usually means another instance is already running.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", Port))
	if err != nil {
		return fmt.Errorf("failed to bind control port %d: %w", Port, err)
	}
	s.listener = listener
	s.running = true

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go s.acceptConnections(ctx)

	logger.Info("control socket listening", "addr", listener.Addr().String())
	return nil
}

// Stop closes the listener and waits for in-flight connections.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	if s.cancel != nil {
		s.cancel()
	}
	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	logger.Info("control socket stopped")
}

func (s *Server) acceptConnections(ctx context.Context) {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				logger.Warn("control accept failed", "error", err)
				continue
			}
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(30 * time.Second))

	scanner := bufio.NewScanner(conn)
	encoder := json.NewEncoder(conn)
	for scanner.Scan() {
		var req Request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			encoder.Encode(Fail(fmt.Errorf("malformed request: %w", err)))
			return
		}
		resp := s.handler.Handle(req)
		if err := encoder.Encode(resp); err != nil {
			logger.Warn("control response write failed", "error", err)
			return
		}
	}
}
