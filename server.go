// Copyright 2025 Edgeo SCADA
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package modbus

import (
	"context"
	"encoding/binary"
	"io"
	"log/slog"
	"net"
	"runtime/debug"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Listener accepts Modbus TCP connections and dispatches each frame
// through an Engine. It has no connection-count cap: every accepted
// connection gets its own goroutine for the life of the listener (§4.5
// "no explicit cap").
type Listener struct {
	engine       *Engine
	configuredID UnitID
	opts         *serverOptions

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	closed   bool
	wg       sync.WaitGroup
	metrics  *Metrics
}

// NewListener creates a Listener that dispatches accepted connections to engine.
func NewListener(engine *Engine, configuredID UnitID, opts ...ServerOption) *Listener {
	options := defaultServerOptions()
	for _, opt := range opts {
		opt(options)
	}

	return &Listener{
		engine:       engine,
		configuredID: configuredID,
		opts:         options,
		conns:        make(map[net.Conn]struct{}),
		metrics:      NewMetrics(),
	}
}

// Metrics returns the listener's request and connection metrics.
func (l *Listener) Metrics() *Metrics {
	return l.metrics
}

// listenConfig binds with SO_REUSEADDR set, so a restarted simulator can
// rebind a port still draining TIME_WAIT connections from a prior run.
var listenConfig = net.ListenConfig{
	Control: func(_, _ string, c syscall.RawConn) error {
		var sockErr error
		err := c.Control(func(fd uintptr) {
			sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		})
		if err != nil {
			return err
		}
		return sockErr
	},
}

// ListenAndServe binds addr and serves until the context is canceled or
// Close is called.
func (l *Listener) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := listenConfig.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() {
		l.Close()
		ln.Close()
	})
	defer stop()
	return l.Serve(ln)
}

// Serve accepts connections from ln until Close is called.
func (l *Listener) Serve(ln net.Listener) error {
	l.mu.Lock()
	l.listener = ln
	l.mu.Unlock()
	l.opts.logger.Info("listener started", slog.String("addr", ln.Addr().String()))

	for {
		conn, err := ln.Accept()
		if err != nil {
			l.mu.Lock()
			closed := l.closed
			l.mu.Unlock()
			if closed {
				return nil
			}
			l.opts.logger.Error("accept error", slog.String("error", err.Error()))
			continue
		}

		l.mu.Lock()
		l.conns[conn] = struct{}{}
		l.mu.Unlock()
		l.metrics.ActiveConns.Add(1)
		l.metrics.ConnectionsOpen.Add(1)

		if tcpConn, ok := conn.(*net.TCPConn); ok {
			tcpConn.SetKeepAlive(true)
			tcpConn.SetKeepAlivePeriod(30 * time.Second)
			tcpConn.SetNoDelay(true)
		}

		l.wg.Add(1)
		go l.handleConn(conn)
	}
}

// Close stops accepting connections, closes every open connection, and
// waits for their handler goroutines to return.
func (l *Listener) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	var err error
	if l.listener != nil {
		err = l.listener.Close()
	}
	for conn := range l.conns {
		conn.Close()
	}
	l.mu.Unlock()

	l.wg.Wait()
	l.opts.logger.Info("listener stopped")
	return err
}

// Addr returns the listener's bound address, or nil before Serve runs.
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.listener != nil {
		return l.listener.Addr()
	}
	return nil
}

// ActiveConnections returns the number of currently open connections.
func (l *Listener) ActiveConnections() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.conns)
}

func (l *Listener) handleConn(conn net.Conn) {
	defer func() {
		if r := recover(); r != nil {
			l.opts.logger.Error("panic in connection handler",
				slog.String("remote", conn.RemoteAddr().String()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}

		l.wg.Done()
		conn.Close()
		l.mu.Lock()
		delete(l.conns, conn)
		l.mu.Unlock()
		l.metrics.ActiveConns.Add(-1)
	}()

	l.opts.logger.Debug("connection accepted", slog.String("remote", conn.RemoteAddr().String()))

	for {
		l.mu.Lock()
		closed := l.closed
		l.mu.Unlock()
		if closed {
			return
		}

		if l.opts.readTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(l.opts.readTimeout))
		}

		buf, err := readRawFrame(conn)
		if err != nil {
			if err != io.EOF {
				if netErr, ok := err.(net.Error); !ok || !netErr.Timeout() {
					l.opts.logger.Debug("frame read error",
						slog.String("remote", conn.RemoteAddr().String()),
						slog.String("error", err.Error()))
				}
			}
			return
		}

		l.metrics.RequestsTotal.Add(1)
		resp := l.engine.Handle(buf, l.configuredID)
		if resp == nil {
			// Silently dropped frame (bad protocol ID, foreign unit ID,
			// or too short to carry a function code): keep the
			// connection open and wait for the next frame.
			continue
		}

		if l.opts.readTimeout > 0 {
			conn.SetWriteDeadline(time.Now().Add(l.opts.readTimeout))
		}

		if _, err := conn.Write(resp); err != nil {
			l.metrics.RequestsErrors.Add(1)
			l.opts.logger.Debug("write error",
				slog.String("remote", conn.RemoteAddr().String()),
				slog.String("error", err.Error()))
			return
		}

		if pdu := resp[MBAPHeaderSize:]; IsExceptionResponse(pdu) {
			if protoErr := ParseExceptionResponse(pdu); protoErr != nil {
				l.opts.logger.Debug("exception response sent",
					slog.String("remote", conn.RemoteAddr().String()),
					slog.String("function", protoErr.FunctionCode.String()),
					slog.String("exception", protoErr.ExceptionCode.String()))
			}
		}

		l.metrics.RequestsSuccess.Add(1)
	}
}

// readRawFrame reads one complete MBAP header plus its declared PDU from
// r, buffering across short reads (§4.5 enhancement) so a frame split
// across TCP segments is never misread as two frames or a drop. The
// header's length field is trusted for framing purposes even when the
// frame will ultimately be dropped by the engine: that keeps the byte
// stream in sync for the next frame on the same connection.
func readRawFrame(r io.Reader) ([]byte, error) {
	header := make([]byte, MBAPHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint16(header[4:6])
	pduLen := int(length) - 1
	if pduLen < 0 || pduLen > 253 {
		return nil, ErrInvalidFrame
	}

	buf := make([]byte, MBAPHeaderSize+pduLen)
	copy(buf, header)
	if pduLen > 0 {
		if _, err := io.ReadFull(r, buf[MBAPHeaderSize:]); err != nil {
			return nil, err
		}
	}
	return buf, nil
}
