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

package reactor

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	liblog "github.com/sabouaram/wasmgate/logger"
	"github.com/sabouaram/wasmgate/route"
	"github.com/sabouaram/wasmgate/session"
	"github.com/sabouaram/wasmgate/vm"
)

// maxEvents bounds one epoll_wait batch.
const maxEvents = 256

// loopTimeoutMs is how long epoll_wait blocks when nothing is
// pending; -1 would block forever, but a finite timeout lets Run
// notice ctx cancellation promptly.
const loopTimeoutMs = 500

// Deps are the collaborators every session the reactor creates shares.
type Deps struct {
	Routes   *route.Table
	Loader   session.Loader
	Log      liblog.Logger
	MaxConns int

	// NewDriver builds the interpreter driver for one session's module
	// invocation. Defaults to vm.New; overridable in tests so a
	// deterministic scripted driver can stand in for a real wazero
	// invocation goroutine.
	NewDriver func() session.Driver
}

// conn is the reactor's bookkeeping for one accepted client: the
// session state machine plus the backend fds it currently owns, so
// they can be deregistered on close.
type conn struct {
	session       *session.Session
	clientFd      int32
	nextBackendID int32
	backendFds    []int32
}

// target resolves one fd, seen in an epoll event, back to the
// conn that owns it and whether it is the client side or a
// numbered backend (spec.md §9's token-space-unification note: this
// reactor keys everything by raw fd, which is already a unique
// per-process token space spanning clients and backends alike).
type target struct {
	c         *conn
	isClient  bool
	backendID int32
}

// Reactor is the single-threaded epoll event loop (spec.md §4.5 / C1).
type Reactor struct {
	deps Deps

	p          *poller
	listenFd   int
	listenAddr string

	byFD  map[int32]*target
	count int
}

// New binds addr and prepares a Reactor; call Run to start serving.
func New(addr string, deps Deps) (*Reactor, error) {
	p, err := newPoller()
	if err != nil {
		return nil, err
	}

	lfd, boundAddr, err := listenFD(addr)
	if err != nil {
		p.close()
		return nil, err
	}
	if err := p.add(lfd); err != nil {
		p.close()
		unix.Close(lfd)
		return nil, err
	}

	if deps.NewDriver == nil {
		deps.NewDriver = func() session.Driver { return vm.New() }
	}

	return &Reactor{
		deps:       deps,
		p:          p,
		listenFd:   lfd,
		listenAddr: boundAddr,
		byFD:       make(map[int32]*target),
	}, nil
}

// Addr returns the concrete address the reactor bound to, resolving
// an ephemeral ":0" port to the one actually assigned.
func (r *Reactor) Addr() string {
	return r.listenAddr
}

// Close releases the poller and listening socket. It does not close
// any in-flight session; callers that want a graceful drain should
// stop Run first.
func (r *Reactor) Close() {
	unix.Close(r.listenFd)
	r.p.close()
}

// Run drives the event loop until ctx is cancelled.
func (r *Reactor) Run(ctx context.Context) error {
	buf := make([]unix.EpollEvent, maxEvents)

	for {
		if ctx.Err() != nil {
			return nil
		}

		events, err := r.p.wait(buf, loopTimeoutMs)
		if err != nil {
			return err
		}

		for _, ev := range events {
			if int(ev.fd) == r.listenFd {
				r.acceptReady()
				continue
			}
			r.dispatch(ev)
		}
	}
}

func (r *Reactor) acceptReady() {
	_ = acceptAll(r.listenFd, func(fd int) {
		if r.deps.MaxConns > 0 && r.count >= r.deps.MaxConns {
			unix.Close(fd)
			return
		}

		if err := r.p.add(fd); err != nil {
			unix.Close(fd)
			return
		}

		id := uuid.NewString()
		sess := session.New(id, fd, session.Deps{
			Routes:    r.deps.Routes,
			Loader:    r.deps.Loader,
			NewDriver: r.deps.NewDriver,
			Log:       r.deps.Log,
		})

		c := &conn{session: sess, clientFd: int32(fd)}
		r.byFD[int32(fd)] = &target{c: c, isClient: true}
		r.count++
	})
}

func (r *Reactor) dispatch(ev event) {
	t, ok := r.byFD[ev.fd]
	if !ok {
		return
	}

	if t.isClient {
		work := t.c.session.ClientEvent(ev.readable, ev.writable, ev.hup, ev.errFlag)
		r.drive(t.c, work)
		return
	}

	if t.c.session.Tag() == session.WaitingForBackendConnect {
		connected, err := backendConnectOutcome(int(ev.fd))
		work := t.c.session.BackendEvent(int(t.backendID), false, connected, false, err != nil)
		r.drive(t.c, work)
		return
	}

	work := t.c.session.BackendEvent(int(t.backendID), ev.readable, ev.writable, ev.hup, ev.errFlag)
	r.drive(t.c, work)
}

func (r *Reactor) drive(c *conn, hasWork bool) {
	if !hasWork {
		return
	}

	out := c.session.Execute()
	switch out.Result {
	case session.Close:
		r.closeConn(c)
	case session.ConnectBackend:
		r.connectBackend(c, out.Addr)
	}
}

func (r *Reactor) connectBackend(c *conn, addr string) {
	fd, err := dialBackendNonBlocking(addr)
	if err != nil {
		r.failBackendConnect(c)
		return
	}

	if err := r.p.add(fd); err != nil {
		unix.Close(fd)
		r.failBackendConnect(c)
		return
	}

	id := c.nextBackendID
	c.nextBackendID++
	c.backendFds = append(c.backendFds, int32(fd))
	r.byFD[int32(fd)] = &target{c: c, isClient: false, backendID: id}

	c.session.AddBackend(fd, int(id))
}

// failBackendConnect mirrors a connect that resolved to an error
// before a fd could even be registered with the poller: the handler
// still observes -1, exactly as it would from a SO_ERROR-bearing
// EPOLLERR on a fd that did make it into epoll (spec.md §8's S6).
func (r *Reactor) failBackendConnect(c *conn) {
	id := c.nextBackendID
	c.nextBackendID++
	c.session.AddBackend(-1, int(id))
	work := c.session.BackendEvent(int(id), false, false, false, true)
	r.drive(c, work)
}

func (r *Reactor) closeConn(c *conn) {
	for _, fd := range c.backendFds {
		r.p.remove(int(fd))
		delete(r.byFD, fd)
	}
	r.p.remove(int(c.clientFd))
	delete(r.byFD, c.clientFd)
	r.count--

	c.session.Close()
}
