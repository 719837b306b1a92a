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

package wasmhost

import "golang.org/x/sys/unix"

// Connections is the stable-index container from spec.md §3's Host
// state: a backend id never moves once assigned and is never reused
// while the session lives, even if the slot's socket is later closed.
//
// Sockets are held as raw file descriptors, not net.Conn: the reactor
// drives them directly with golang.org/x/sys/unix so that reads and
// writes never block the single event-loop goroutine, which rules out
// net.Conn's runtime-integrated (and here, unwanted) netpoller.
type Connections struct {
	fds []int
}

const noFD = -1

// NewConnections returns an empty slab.
func NewConnections() *Connections {
	return &Connections{}
}

// Set records fd at id, growing the slab if necessary. id is assigned
// by the reactor (spec.md §4.4's ConnectBackend handshake), not by
// Connections itself.
func (c *Connections) Set(id int, fd int) {
	for len(c.fds) <= id {
		c.fds = append(c.fds, noFD)
	}
	c.fds[id] = fd
}

// Get returns the file descriptor at id, if any.
func (c *Connections) Get(id int) (int, bool) {
	if id < 0 || id >= len(c.fds) || c.fds[id] == noFD {
		return 0, false
	}
	return c.fds[id], true
}

// CloseAll closes every live socket in the slab (spec.md Invariant 5:
// every backend socket is closed when its owning session is dropped).
func (c *Connections) CloseAll() {
	for i, fd := range c.fds {
		if fd != noFD {
			_ = unix.Close(fd)
			c.fds[i] = noFD
		}
	}
}
