package hidport

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"
)

// TraceLogger records raw reports crossing a Port.
type TraceLogger interface {
	Log(fromDevice bool, data []byte)
}

type traceLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewTraceLogger returns a TraceLogger writing one line per report to w.
// A nil writer yields a no-op logger.
func NewTraceLogger(w io.Writer) TraceLogger {
	return &traceLogger{w: w}
}

// Log emits one line with timestamp, direction and hex dump.
// fromDevice=true means device->host, false means host->device.
func (t *traceLogger) Log(fromDevice bool, data []byte) {
	if t.w == nil || len(data) == 0 {
		return
	}

	dir := "H->D"
	if fromDevice {
		dir = "D->H"
	}

	var hexbuf bytes.Buffer
	const hexdigits = "0123456789abcdef"
	for i, b := range data {
		if i > 0 {
			hexbuf.WriteByte(' ')
		}
		hexbuf.WriteByte(hexdigits[b>>4])
		hexbuf.WriteByte(hexdigits[b&0x0f])
	}

	line := fmt.Sprintf("%s %s report: %d bytes, hex: %s\n",
		time.Now().Format("2006/01/02 15:04:05"),
		dir,
		len(data),
		hexbuf.String())

	t.mu.Lock()
	_, _ = t.w.Write([]byte(line))
	t.mu.Unlock()
}

// Trace wraps port so every transfer is mirrored to l. A nil logger
// returns port unchanged.
func Trace(port Port, l TraceLogger) Port {
	if l == nil {
		return port
	}
	return &tracedPort{inner: port, l: l}
}

type tracedPort struct {
	inner Port
	l     TraceLogger
}

func (p *tracedPort) Read(b []byte) (int, error) {
	n, err := p.inner.Read(b)
	if n > 0 {
		p.l.Log(true, b[:n])
	}
	return n, err
}

func (p *tracedPort) ReadWithTimeout(b []byte, timeout time.Duration) (int, error) {
	n, err := p.inner.ReadWithTimeout(b, timeout)
	if n > 0 {
		p.l.Log(true, b[:n])
	}
	return n, err
}

func (p *tracedPort) Write(b []byte) (int, error) {
	n, err := p.inner.Write(b)
	if n > 0 {
		p.l.Log(false, b[:n])
	}
	return n, err
}

func (p *tracedPort) Close() error { return p.inner.Close() }
