// Package gateway accepts TCP connections and serves each one as a session.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/metrics"
)

type Server struct {
	addr        string
	handler     Handler
	authorizer  Authorizer
	maxSessions int
	logger      logrus.FieldLogger

	mu       sync.Mutex
	sessions map[string]*Session
	wg       sync.WaitGroup
}

func NewServer(addr string, handler Handler, authorizer Authorizer) *Server {
	if authorizer == nil {
		authorizer = NoopAuthorizer{}
	}
	return &Server{addr: addr, handler: handler, authorizer: authorizer, sessions: make(map[string]*Session)}
}

func (s *Server) SetLogger(logger logrus.FieldLogger) {
	s.logger = logger
}

func (s *Server) SetMaxSessions(max int) {
	s.maxSessions = max
}

// Start listens on the configured address and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections from listener until ctx is cancelled, then waits
// for open sessions to finish.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()
	defer s.wg.Wait()

	s.logInfo("gateway_listening", logrus.Fields{"addr": listener.Addr().String()})

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logError("accept_failed", err)
			return err
		}
		remote := conn.RemoteAddr().String()

		if s.maxSessions > 0 && s.SessionCount() >= s.maxSessions {
			s.logWarn("session_limit_reached", logrus.Fields{"remote": remote, "limit": s.maxSessions})
			_ = conn.Close()
			continue
		}

		if err := s.authorizer.Allow(ctx, remote); err != nil {
			s.logWarn("session_denied", logrus.Fields{"remote": remote, "error": err.Error()})
			_ = conn.Close()
			continue
		}

		session := &Session{
			ID:         uuid.NewString(),
			RemoteAddr: remote,
			StartedAt:  time.Now(),
		}
		s.register(session)

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.unregister(session.ID)
			defer conn.Close()

			// Unblock the session's reads on shutdown.
			stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
			defer stop()

			s.logInfo("session_start", logrus.Fields{"id": session.ID, "remote": remote})
			if err := s.handler.ServeSession(ctx, session, conn); err != nil && ctx.Err() == nil {
				s.logWarn("session_failed", logrus.Fields{"id": session.ID, "error": err.Error()})
			}
			s.logInfo("session_end", logrus.Fields{"id": session.ID, "remote": remote})
		}()
	}
}

func (s *Server) register(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	metrics.ActiveSessions.Inc()
}

func (s *Server) unregister(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; ok {
		delete(s.sessions, id)
		metrics.ActiveSessions.Dec()
	}
}

func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// ListSessions returns the open sessions, oldest first.
func (s *Server) ListSessions() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out
}

func (s *Server) Addr() string {
	return s.addr
}

func (s *Server) String() string {
	return fmt.Sprintf("gateway(%s)", s.addr)
}

func (s *Server) logInfo(msg string, fields logrus.Fields) {
	if s.logger != nil {
		s.logger.WithFields(fields).Info(msg)
	}
}

func (s *Server) logWarn(msg string, fields logrus.Fields) {
	if s.logger != nil {
		s.logger.WithFields(fields).Warn(msg)
	}
}

func (s *Server) logError(msg string, err error) {
	if s.logger != nil {
		s.logger.WithError(err).Error(msg)
	}
}
