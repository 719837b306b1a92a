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
	"strconv"

	"golang.org/x/sys/unix"

	"github.com/sabouaram/wasmgate/httpparse"
	"github.com/sabouaram/wasmgate/vm"
	"github.com/sabouaram/wasmgate/wasmhost"
)

// setErrorResponse replaces whatever the handler had prepared with a
// plain-text error response, deriving Content-length from body itself
// so the header can never drift from what Bytes() actually renders
// (unlike a hand-counted literal).
func setErrorResponse(host *wasmhost.Host, status uint16, reason string, body []byte) {
	host.Response = wasmhost.NewResponse()
	host.Response.SetStatusLine(status, reason)
	host.Response.AddHeader("Content-length", strconv.Itoa(len(body)))
	host.Response.SetBody(body)
}

// Execute drives the state machine forward as far as it can go
// without another reactor event (spec.md §4.4's re-entry rule: loop
// while a step returns Continue, stop on WouldBlock/Close/ConnectBackend).
func (s *Session) Execute() Outcome {
	for {
		var out Outcome

		switch s.tag {
		case WaitingForRequest:
			out = s.stepWaitingForRequest()
		case Executing:
			out = s.stepExecuting()
		case WaitingForBackendConnect:
			out = s.stepWaitingForBackendConnect()
		case TcpWrite:
			out = s.stepTcpWrite()
		case TcpRead:
			out = s.stepTcpRead()
		case Done:
			return Outcome{Result: Close}
		}

		if out.Result != Continue {
			return out
		}
	}
}

func (s *Session) stepWaitingForRequest() Outcome {
	if !s.clientReadable {
		return Outcome{Result: WouldBlock}
	}

	for s.readLen < len(s.readBuf) {
		n, err := unix.Read(s.clientFd, s.readBuf[s.readLen:])
		if err != nil {
			if isEAGAIN(err) {
				s.clientReadable = false
				break
			}
			s.closeReason = CloseIOError
			s.tag = Done
			return Outcome{Result: Close}
		}
		if n == 0 {
			s.clientReadable = false
			break
		}
		s.readLen += n
	}

	res := httpparse.Parse(s.readBuf[:s.readLen])
	switch res.Status {
	case httpparse.Partial:
		if s.readLen >= len(s.readBuf) {
			s.closeReason = CloseOversizedRequest
			s.tag = Done
			return Outcome{Result: Close}
		}
		if !s.clientReadable {
			return Outcome{Result: WouldBlock}
		}
		return Outcome{Result: Continue}
	case httpparse.Error:
		s.closeReason = CloseParseError
		s.tag = Done
		return Outcome{Result: Close}
	default: // httpparse.Complete
		s.method = res.Request.Method
		s.path = res.Request.Path
		remaining := copy(s.readBuf[:], s.readBuf[res.Consumed:s.readLen])
		s.readLen = remaining
		s.clientReadable = false
		s.tag = Executing
		return Outcome{Result: Continue}
	}
}

func (s *Session) stepExecuting() Outcome {
	if s.awaitingWrite {
		return s.stepWriteResponse()
	}

	if !s.instantiated {
		s.instantiated = true
		if err := s.instantiate(); err != nil {
			return Outcome{Result: Continue}
		}
	}

	out := s.driver.Resume()
	switch {
	case out.Fatal != nil:
		s.closeReason = CloseFatalTrap
		setErrorResponse(s.host, 500, "Internal Server Error", []byte("bytecode trap"))
		s.awaitingWrite = true
		return Outcome{Result: Continue}

	case out.Returned:
		if !s.host.Response.Complete() {
			s.closeReason = CloseIncompleteResponse
			setErrorResponse(s.host, 500, "Internal Server Error", []byte("incomplete response"))
		} else {
			s.closeReason = CloseNormal
		}
		s.awaitingWrite = true
		return Outcome{Result: Continue}

	case out.Yield != nil:
		return s.handleYield(out.Yield)
	}

	return Outcome{Result: WouldBlock}
}

func (s *Session) handleYield(y *vm.Yield) Outcome {
	switch y.Kind {
	case vm.YieldConnecting:
		s.tag = WaitingForBackendConnect
		return Outcome{Result: ConnectBackend, Addr: y.Addr}

	case vm.YieldTcpWrite:
		s.backendID = y.Fd
		s.tcpWriteBuf = y.Buf
		s.tcpWriteWritten = 0
		s.tag = TcpWrite
		return Outcome{Result: WouldBlock}

	case vm.YieldTcpRead:
		s.backendID = y.Fd
		s.tcpPtr = y.Ptr
		s.tcpCap = y.Cap
		s.tag = TcpRead
		return Outcome{Result: WouldBlock}

	default:
		return Outcome{Result: WouldBlock}
	}
}

func (s *Session) instantiate() error {
	entry, ok := s.deps.Routes.Lookup(s.method, s.path)
	if !ok {
		s.closeReason = CloseRouteMiss
		s.host = wasmhost.New(nil, nil, nil)
		setErrorResponse(s.host, 404, "Not Found", []byte("Route not found\n"))
		s.awaitingWrite = true
		return errStopExecuting
	}

	driver := s.deps.NewDriver()
	host := wasmhost.New(driver, entry.Env, s.logHostCall)
	ctx := wasmhost.WithHost(s.ctx, host)

	instance, err := s.deps.Loader.Instantiate(ctx, entry.FilePath)
	if err != nil {
		s.closeReason = CloseInstantiateFailed
		setErrorResponse(host, 500, "Internal Server Error", []byte("module instantiation failed"))
		s.host = host
		s.awaitingWrite = true
		return errStopExecuting
	}
	host.Instance = instance

	fn := instance.ExportedFunction(entry.Function)
	if fn == nil {
		s.closeReason = CloseFunctionMissing
		setErrorResponse(host, 404, "Not Found", []byte("Function not found\n"))
		s.host = host
		s.awaitingWrite = true
		return errStopExecuting
	}

	s.ctx = ctx
	s.host = host
	s.driver = driver
	s.instance = instance

	driver.Start(func() (uint64, error) {
		results, callErr := fn.Call(ctx)
		if callErr != nil {
			return 0, callErr
		}
		if len(results) == 0 {
			return 0, nil
		}
		return results[0], nil
	})

	return nil
}

func (s *Session) logHostCall(msg string) {
	if s.deps.Log == nil {
		return
	}
	s.deps.Log.Entry().FieldAdd("session", s.id).FieldAdd("route", s.path).Info(msg)
}

func (s *Session) stepWaitingForBackendConnect() Outcome {
	if !s.backendWritable && !s.backendErr {
		return Outcome{Result: WouldBlock}
	}

	id := int64(-1)
	if s.backendWritable && !s.backendErr {
		id = int64(s.backendID)
	}
	s.backendWritable = false
	s.backendErr = false

	s.driver.AddFunctionResult(id)
	s.tag = Executing
	return Outcome{Result: Continue}
}

func (s *Session) stepTcpWrite() Outcome {
	if !s.backendWritable {
		return Outcome{Result: WouldBlock}
	}

	fd, ok := s.host.Conns.Get(int(s.backendID))
	if !ok {
		s.driver.AddFunctionResult(-1)
		s.tag = Executing
		return Outcome{Result: Continue}
	}

	for s.tcpWriteWritten < len(s.tcpWriteBuf) {
		n, err := unix.Write(fd, s.tcpWriteBuf[s.tcpWriteWritten:])
		if err != nil {
			if isEAGAIN(err) {
				s.backendWritable = false
				return Outcome{Result: WouldBlock}
			}
			s.driver.AddFunctionResult(-1)
			s.tag = Executing
			return Outcome{Result: Continue}
		}
		if n == 0 {
			break
		}
		s.tcpWriteWritten += n
	}

	s.backendWritable = false
	written := s.tcpWriteWritten
	s.tcpWriteBuf = nil
	s.tcpWriteWritten = 0
	s.driver.AddFunctionResult(int64(written))
	s.tag = Executing
	return Outcome{Result: Continue}
}

func (s *Session) stepTcpRead() Outcome {
	if !s.backendReadable {
		return Outcome{Result: WouldBlock}
	}

	fd, ok := s.host.Conns.Get(int(s.backendID))
	if !ok {
		s.driver.AddFunctionResult(-1)
		s.tag = Executing
		return Outcome{Result: Continue}
	}

	buf := make([]byte, s.tcpCap)
	total := 0
	for total < len(buf) {
		n, err := unix.Read(fd, buf[total:])
		if err != nil {
			if isEAGAIN(err) {
				break
			}
			s.driver.AddFunctionResult(-1)
			s.tag = Executing
			return Outcome{Result: Continue}
		}
		if n == 0 {
			break
		}
		total += n
	}
	s.backendReadable = false

	if total > 0 {
		if !s.instance.Memory().Write(s.tcpPtr, buf[:total]) {
			s.driver.AddFunctionResult(-1)
			s.tag = Executing
			return Outcome{Result: Continue}
		}
	}

	s.driver.AddFunctionResult(int64(total))
	s.tag = Executing
	return Outcome{Result: Continue}
}

func (s *Session) stepWriteResponse() Outcome {
	if s.writeBuf == nil {
		s.writeBuf = s.host.Response.Bytes()
		s.writeOff = 0
	}
	if !s.clientWritable {
		return Outcome{Result: WouldBlock}
	}

	for s.writeOff < len(s.writeBuf) {
		n, err := unix.Write(s.clientFd, s.writeBuf[s.writeOff:])
		if err != nil {
			if isEAGAIN(err) {
				s.clientWritable = false
				return Outcome{Result: WouldBlock}
			}
			s.closeReason = CloseIOError
			s.tag = Done
			return Outcome{Result: Close}
		}
		if n == 0 {
			break
		}
		s.writeOff += n
	}

	s.tag = Done
	return Outcome{Result: Close}
}
