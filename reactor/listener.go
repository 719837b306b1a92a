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
	"net"

	"golang.org/x/sys/unix"
)

// listenFD binds addr and returns a non-blocking listening socket fd
// plus the concrete address it bound to (useful when addr's port is
// 0), handing the *net.TCPListener's fd off to raw syscalls (spec.md
// §4.5's reactor owns the socket directly; net.Listener.Accept is
// never called once this returns).
func listenFD(addr string) (int, string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return 0, "", err
	}
	defer ln.Close()

	tcpLn, ok := ln.(*net.TCPListener)
	if !ok {
		return 0, "", unix.EINVAL
	}

	boundAddr := tcpLn.Addr().String()

	file, err := tcpLn.File()
	if err != nil {
		return 0, "", err
	}
	// File() dup's the descriptor; the dup survives ln.Close() above.
	fd := int(file.Fd())

	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return 0, "", err
	}

	return fd, boundAddr, nil
}

// acceptAll drains every pending connection on the listening socket,
// setting each accepted fd non-blocking before handing it to accept.
func acceptAll(listenFd int, accept func(fd int)) error {
	for {
		nfd, _, err := unix.Accept4(listenFd, unix.SOCK_NONBLOCK)
		if err != nil {
			if isEAGAIN(err) {
				return nil
			}
			return err
		}
		accept(nfd)
	}
}

func isEAGAIN(err error) bool {
	return err == unix.EAGAIN || err == unix.EWOULDBLOCK
}
