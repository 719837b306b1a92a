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
	"strconv"

	"golang.org/x/sys/unix"
)

// dialBackendNonBlocking resolves addr (host:port) and starts a
// non-blocking TCP connect, returning the new socket's fd immediately
// regardless of whether the connect has completed yet — spec.md
// §4.4's ConnectBackend handshake waits for EPOLLOUT/EPOLLERR on this
// fd to learn the outcome, it never blocks in connect(2) itself.
func dialBackendNonBlocking(addr string) (int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, err
	}

	ip, err := resolveIPv4(host)
	if err != nil {
		return 0, err
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		return 0, err
	}

	sa := &unix.SockaddrInet4{Port: port}
	copy(sa.Addr[:], ip)

	err = unix.Connect(fd, sa)
	if err != nil && err != unix.EINPROGRESS {
		unix.Close(fd)
		return 0, err
	}

	return fd, nil
}

func resolveIPv4(host string) ([]byte, error) {
	ip := net.ParseIP(host)
	if ip == nil {
		ips, err := net.LookupIP(host)
		if err != nil {
			return nil, err
		}
		for _, candidate := range ips {
			if v4 := candidate.To4(); v4 != nil {
				return v4, nil
			}
		}
		return nil, unix.EHOSTUNREACH
	}
	v4 := ip.To4()
	if v4 == nil {
		return nil, unix.EAFNOSUPPORT
	}
	return v4, nil
}

// backendConnectOutcome inspects SO_ERROR on a backend fd once epoll
// reports it writable or erroring, distinguishing "connected cleanly"
// from "refused/unreachable" (spec.md §8's S6).
func backendConnectOutcome(fd int) (connected bool, err error) {
	soErr, getErr := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if getErr != nil {
		return false, getErr
	}
	if soErr != 0 {
		return false, unix.Errno(soErr)
	}
	return true, nil
}
