package procon

import (
	"encoding/binary"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joyhid/procon/hidport"
)

// FakePort scripts the device side of the subcommand protocol. Flash read
// subcommands queue their reply automatically, a disconnect subcommand
// drops the link, and poller tests feed input reports through Stream.
//
// Exported so the black-box tests in package procon_test can drive it.
type FakePort struct {
	mu       sync.Mutex
	writes   [][]byte
	pending  [][]byte
	readErr  error
	writeErr error
	closed   int
	dropped  bool

	Flash   map[uint32][]byte
	DropAck bool // reply with the ack bit clear
	BadEcho bool // corrupt the echoed subcommand id
	mute    bool // swallow subcommands without replying

	Stream chan []byte
}

func NewFakePort() *FakePort {
	return &FakePort{
		Flash: map[uint32][]byte{
			AddrColors:        {0x32, 0x32, 0x32, 0xFF, 0xD0, 0x00},
			AddrUserCalMarker: {0xFF, 0xFF},
			AddrFactoryIMUCal: CalBlock(
				[3]int16{0, 0, 0}, [3]int16{AccelCoeffDivisor, AccelCoeffDivisor, AccelCoeffDivisor},
				[3]int16{0, 0, 0}, [3]int16{GyroCoeffDivisor, GyroCoeffDivisor, GyroCoeffDivisor},
			),
			AddrStickCal: {1, 2, 3, 4, 5, 6, 7, 8, 9},
		},
		Stream: make(chan []byte, 16),
	}
}

func (p *FakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	p.writes = append(p.writes, append([]byte(nil), b...))
	if len(b) < 12 || b[0] != reportOutput {
		return len(b), nil
	}
	if b[10] == subcmdDisconnect && !p.dropped {
		// The controller drops the link; later reads fail.
		p.dropped = true
		close(p.Stream)
		return len(b), nil
	}
	if len(b) < 16 || b[10] != subcmdSPIFlashRead || p.mute {
		return len(b), nil
	}

	addr := binary.LittleEndian.Uint32(b[11:15])
	size := int(b[15])
	reply := make([]byte, inputReportLen)
	reply[0] = reportSubcmdReply
	reply[13] = 0x90
	reply[14] = subcmdSPIFlashRead
	if p.DropAck {
		reply[13] = 0x00
	}
	if p.BadEcho {
		reply[14] = 0xEE
	}
	copy(reply[15:19], b[11:15])
	reply[19] = byte(size)
	if data, ok := p.Flash[addr]; ok {
		copy(reply[20:], data[:min(size, len(data))])
	}
	p.pending = append(p.pending, reply)
	return len(b), nil
}

func (p *FakePort) ReadWithTimeout(b []byte, timeout time.Duration) (int, error) {
	p.mu.Lock()
	if p.readErr != nil {
		err := p.readErr
		p.mu.Unlock()
		return 0, err
	}
	if len(p.pending) > 0 {
		r := p.pending[0]
		p.pending = p.pending[1:]
		p.mu.Unlock()
		return copy(b, r), nil
	}
	p.mu.Unlock()

	select {
	case r, ok := <-p.Stream:
		if !ok {
			return 0, io.EOF
		}
		return copy(b, r), nil
	case <-time.After(timeout):
		return 0, hidport.ErrReadTimeout
	}
}

func (p *FakePort) Read(b []byte) (int, error) {
	return p.ReadWithTimeout(b, time.Second)
}

func (p *FakePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed++
	return nil
}

// Queue serves a report ahead of any auto-generated replies still pending.
func (p *FakePort) Queue(report []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append([][]byte{report}, p.pending...)
}

func (p *FakePort) SetReadErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readErr = err
}

func (p *FakePort) SetWriteErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writeErr = err
}

func (p *FakePort) SetMute(mute bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mute = mute
}

func (p *FakePort) WrittenFrames() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]byte, len(p.writes))
	copy(out, p.writes)
	return out
}

func (p *FakePort) ClosedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// CalBlock packs a 24-byte IMU calibration image the way it sits in flash.
func CalBlock(accelOffsets, accelRaw, gyroOffsets, gyroRaw [3]int16) []byte {
	out := make([]byte, 0, imuCalLen)
	app := func(vals [3]int16) {
		for _, v := range vals {
			out = append(out, byte(uint16(v)), byte(uint16(v)>>8))
		}
	}
	app(accelOffsets)
	app(accelRaw)
	app(gyroOffsets)
	app(gyroRaw)
	return out
}

// InputReport builds a 49-byte full input report, optionally mutated.
func InputReport(mut func(r []byte)) []byte {
	r := make([]byte, inputReportLen)
	r[0] = reportFullInput
	if mut != nil {
		mut(r)
	}
	return r
}

func NewTestController(t *testing.T, port *FakePort) *ProController {
	t.Helper()
	c, err := New(port, &Options{
		ReplyTimeout: 200 * time.Millisecond,
		PollInterval: 5 * time.Millisecond,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return c
}
