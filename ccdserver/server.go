// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

package ccdserver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/tel84/instruments/lib/netutil"
	"github.com/tel84/instruments/protocol"
)

// DefaultListenAddr is where the instrument has always listened.
const DefaultListenAddr = "127.0.0.1:8888"

// Server accepts protocol connections for one shared Instrument.
type Server struct {
	// ListenAddr is the TCP address to listen on (e.g. "127.0.0.1:8888").
	ListenAddr string

	// Instrument receives every command from every connection.
	Instrument Instrument

	// MaxLineLength bounds a request line. A longer line is discarded
	// and answered with Comando Invalido. Defaults to
	// netutil.DefaultMaxLineLength.
	MaxLineLength int

	// Logger receives structured log output. If nil, slog.Default() is
	// used. Per-connection and per-command events are logged at Debug;
	// lifecycle events at Info.
	Logger *slog.Logger

	dispatcher  *Dispatcher
	listener    net.Listener
	cancel      context.CancelFunc
	done        chan struct{}
	connections sync.WaitGroup
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Start binds the listener and begins accepting connections in the
// background. It returns once the listener is bound, or an error if
// binding fails. The server runs until Stop is called or ctx is
// cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s.ListenAddr == "" {
		return fmt.Errorf("ccdserver: ListenAddr is required")
	}
	if s.Instrument == nil {
		return fmt.Errorf("ccdserver: Instrument is required")
	}

	listener, err := net.Listen("tcp", s.ListenAddr)
	if err != nil {
		return fmt.Errorf("ccdserver: failed to listen on %s: %w", s.ListenAddr, err)
	}

	s.listener = listener
	s.dispatcher = &Dispatcher{Instrument: s.Instrument, Logger: s.logger()}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		s.acceptLoop(ctx)
	}()

	s.logger().Info("instrument server listening", "listen_addr", listener.Addr().String())
	return nil
}

// Addr returns the listener's address, useful when binding to port 0.
// Returns nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop closes the listener and every open connection, then waits for
// all connection handlers to return. Running exposures are not
// affected.
func (s *Server) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.listener != nil {
		s.listener.Close()
	}
	if s.done != nil {
		<-s.done
	}
}

// Wait blocks until the server has stopped.
func (s *Server) Wait() {
	if s.done != nil {
		<-s.done
	}
}

// acceptLoop accepts connections until the context is cancelled, then
// waits for in-flight handlers so that closing done means quiescence.
func (s *Server) acceptLoop(ctx context.Context) {
	// Cancelling ctx (directly, not through Stop) must still unblock
	// Accept.
	stopListener := context.AfterFunc(ctx, func() { s.listener.Close() })
	defer stopListener()

	var connectionCount int64
	for {
		connection, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				s.connections.Wait()
				return
			default:
				s.logger().Error("accept failed", "error", err)
				continue
			}
		}

		connectionCount++
		connectionID := connectionCount
		s.connections.Add(1)
		go func() {
			defer s.connections.Done()
			s.handleConnection(ctx, connection, connectionID)
		}()
	}
}

// handleConnection runs the read-dispatch-write loop for one peer.
func (s *Server) handleConnection(ctx context.Context, connection net.Conn, connectionID int64) {
	defer connection.Close()
	stopClose := context.AfterFunc(ctx, func() { connection.Close() })
	defer stopClose()

	logger := s.logger().With("connection_id", connectionID)
	logger.Debug("connection accepted", "remote_addr", connection.RemoteAddr())

	reader := netutil.NewLineReader(connection, s.MaxLineLength)
	writer := bufio.NewWriter(connection)

	for {
		line, err := reader.ReadLine()
		var response string
		switch {
		case err == nil:
			response = s.dispatcher.Handle(line)
			logger.Debug("command handled", "command", line, "response", response)
		case errors.Is(err, netutil.ErrLineTooLong):
			response = protocol.ResponseInvalidCommand
			logger.Debug("oversized line rejected")
		default:
			if !netutil.IsExpectedCloseError(err) {
				logger.Debug("read failed", "error", err)
			}
			logger.Debug("connection closed")
			return
		}

		writer.WriteString(response)
		writer.WriteByte('\n')
		if err := writer.Flush(); err != nil {
			if !netutil.IsExpectedCloseError(err) {
				logger.Debug("write failed", "error", err)
			}
			return
		}
	}
}
