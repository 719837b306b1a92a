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

// Package reactor is the single-threaded, edge-triggered event loop
// (spec.md §4.5): one goroutine, one epoll instance, a unified
// client/backend fd token space, and nothing else touching any session
// concurrently. There is no goroutine-per-connection here on purpose —
// net.Listener/net.Conn hide their readiness behind the runtime's own
// netpoller, which would make the suspend/resume protocol in vm and
// session impossible to drive explicitly.
package reactor

import (
	"golang.org/x/sys/unix"
)

// event is a decoded epoll_wait result for a single fd.
type event struct {
	fd       int32
	readable bool
	writable bool
	hup      bool
	errFlag  bool
}

// poller wraps one epoll instance, edge-triggered throughout.
type poller struct {
	epfd int
}

func newPoller() (*poller, error) {
	fd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, err
	}
	return &poller{epfd: fd}, nil
}

func (p *poller) close() error {
	return unix.Close(p.epfd)
}

// add registers fd for read and write readiness, edge-triggered.
func (p *poller) add(fd int) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{
		Events: unix.EPOLLIN | unix.EPOLLOUT | unix.EPOLLRDHUP | unix.EPOLLET,
		Fd:     int32(fd),
	})
}

func (p *poller) remove(fd int) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

// wait blocks (timeoutMs < 0 means forever) and decodes ready fds into
// events, reusing buf across calls.
func (p *poller) wait(buf []unix.EpollEvent, timeoutMs int) ([]event, error) {
	n, err := unix.EpollWait(p.epfd, buf, timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, err
	}

	out := make([]event, 0, n)
	for i := 0; i < n; i++ {
		e := buf[i]
		out = append(out, event{
			fd:       e.Fd,
			readable: e.Events&unix.EPOLLIN != 0,
			writable: e.Events&unix.EPOLLOUT != 0,
			hup:      e.Events&(unix.EPOLLHUP|unix.EPOLLRDHUP) != 0,
			errFlag:  e.Events&unix.EPOLLERR != 0,
		})
	}
	return out, nil
}
