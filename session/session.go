/*
 * MIT License
 *
 * Copyright (c) 2026 wasmgate contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package session

import (
	"context"
	"errors"

	"golang.org/x/sys/unix"

	liblog "github.com/sabouaram/wasmgate/logger"
	"github.com/sabouaram/wasmgate/route"
	"github.com/sabouaram/wasmgate/wasmhost"
)

// maxReadBuf is the fixed request-line read buffer (spec.md §5's
// back-pressure rule): a request that doesn't complete within this
// many bytes is rejected as oversized.
const maxReadBuf = 8192

var errStopExecuting = errors.New("session: stopped before instantiation completed")

// Deps are the collaborators a Session needs, shared across every
// session the gateway ever creates.
type Deps struct {
	Routes    *route.Table
	Loader    Loader
	NewDriver func() Driver
	Log       liblog.Logger
}

// Session is the per-connection state machine (spec.md §3/§4.4).
type Session struct {
	id       string
	clientFd int
	deps     Deps

	tag Tag

	readBuf [maxReadBuf]byte
	readLen int

	method string
	path   string

	ctx          context.Context
	host         *wasmhost.Host
	driver       Driver
	instance     wasmhost.Instance
	instantiated bool

	awaitingWrite bool
	writeBuf      []byte
	writeOff      int

	backendID       int32
	tcpPtr          uint32
	tcpCap          uint32
	tcpWriteBuf     []byte
	tcpWriteWritten int

	clientReadable  bool
	clientWritable  bool
	backendReadable bool
	backendWritable bool
	backendErr      bool

	closeReason CloseReason
}

// New creates a session for a freshly accepted, already non-blocking
// client socket.
func New(id string, clientFd int, deps Deps) *Session {
	return &Session{
		id:       id,
		clientFd: clientFd,
		deps:     deps,
		tag:      WaitingForRequest,
		ctx:      context.Background(),
	}
}

// ID returns the session's identifier, used for log correlation.
func (s *Session) ID() string { return s.id }

// ClientFD returns the client socket's file descriptor, for reactor
// epoll registration.
func (s *Session) ClientFD() int { return s.clientFd }

// Tag reports the current state-machine tag.
func (s *Session) Tag() Tag { return s.tag }

// BackendID reports the backend id this session is currently waiting
// on, valid only while Tag is WaitingForBackendConnect, TcpRead, or
// TcpWrite.
func (s *Session) BackendID() int32 { return s.backendID }

// AddBackend is called by the reactor once it has performed the
// non-blocking connect and allocated a slab slot for it (spec.md
// §4.4's ConnectBackend handshake). id becomes the backend id exposed
// to bytecode.
func (s *Session) AddBackend(fd int, id int) {
	s.host.Conns.Set(id, fd)
	s.backendID = int32(id)
}

// ClientEvent records readiness on the client socket and reports
// whether the session now has work to do.
func (s *Session) ClientEvent(readable, writable, hup, errFlag bool) bool {
	if readable || hup || errFlag {
		s.clientReadable = true
	}
	if writable {
		s.clientWritable = true
	}
	return s.hasWork()
}

// BackendEvent records readiness on the backend socket identified by
// id, if it is the one this session is currently waiting on.
func (s *Session) BackendEvent(id int, readable, writable, hup, errFlag bool) bool {
	if int32(id) != s.backendID {
		return false
	}
	if readable {
		s.backendReadable = true
	}
	if writable {
		s.backendWritable = true
	}
	if hup || errFlag {
		s.backendErr = true
	}
	return s.hasWork()
}

func (s *Session) hasWork() bool {
	switch s.tag {
	case WaitingForRequest:
		return s.clientReadable
	case Executing:
		if s.awaitingWrite {
			return s.clientWritable
		}
		return false
	case WaitingForBackendConnect:
		return s.backendWritable || s.backendErr
	case TcpWrite:
		return s.backendWritable
	case TcpRead:
		return s.backendReadable
	default:
		return false
	}
}

// Close releases every resource the session owns: its backend sockets
// (spec.md Invariant 5), its client socket, and logs the terminal
// result recovered from original_source/src/vm.rs's per-request
// result logging (see SPEC_FULL.md §6 EXPANSION).
func (s *Session) Close() {
	if s.host != nil {
		s.host.Conns.CloseAll()
	}
	if s.instance != nil {
		_ = s.instance.Close(s.ctx)
	}
	_ = unix.Close(s.clientFd)
	s.logClose()
}

func (s *Session) logClose() {
	if s.deps.Log == nil {
		return
	}

	entry := s.deps.Log.Entry().
		FieldAdd("session", s.id).
		FieldAdd("method", s.method).
		FieldAdd("path", s.path).
		FieldAdd("reason", s.closeReason.String())

	if s.host != nil {
		if status, ok := s.host.Response.Status(); ok {
			entry = entry.FieldAdd("status", status)
		}
	}

	entry.Debug("invocation result")
}

func isEAGAIN(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK)
}
