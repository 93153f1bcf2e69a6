// Package procon drives a Nintendo Switch Pro Controller over hidraw-style
// HID I/O: the 0x01 output report subcommand protocol, calibration from
// SPI flash, and the 0x30 full input report stream.
package procon

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"sync"
	"time"

	"github.com/joyhid/procon/hidport"
)

// Hook runs on the poller goroutine after every accepted input report, in
// registration order. Hooks must return quickly and must not call Close or
// Disconnect.
type Hook func(*ProController)

// Options tune a session. The zero value is usable.
type Options struct {
	// Serial selects a specific controller when several are attached.
	Serial string

	// ReplyTimeout bounds the wait for a subcommand reply.
	// Default 500ms.
	ReplyTimeout time.Duration

	// PollInterval bounds a single poller read and with it the latency of
	// noticing Close. Default 100ms.
	PollInterval time.Duration

	// Logger receives debug logs. Default slog.Default().
	Logger *slog.Logger
}

// ProController is an open Pro Controller session.
type ProController struct {
	port   hidport.Port
	logger *slog.Logger

	replyTimeout time.Duration
	pollInterval time.Duration

	// sendMu serializes the output path and owns the packet counter.
	sendMu sync.Mutex
	packet byte

	mu          sync.Mutex
	cal         imuCalibration
	bodyColor   color.RGBA
	buttonColor color.RGBA
	stickCal    []byte
	report      [inputReportLen]byte
	hooks       []Hook
	started     bool
	stopped     bool
	closed      bool
	pollErr     error

	stop chan struct{}
	done chan struct{}
}

// Open connects to a controller by vendor and product id, runs the setup
// sequence and starts the poller. VendorNintendo and ProductProCon are the
// ids a Pro Controller enumerates with.
func Open(vendorID, productID uint16, opts *Options) (*ProController, error) {
	var serial string
	if opts != nil {
		serial = opts.Serial
	}
	port, err := hidport.Open(vendorID, productID, serial)
	if err != nil {
		return nil, err
	}
	c, err := New(port, opts)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	c.Start()
	return c, nil
}

// New runs the setup sequence over an already-open port without starting
// the poller. Until Start, the session has exclusive port access and
// ReadFlash is permitted. The caller keeps ownership of port if New fails.
func New(port hidport.Port, opts *Options) (*ProController, error) {
	c := &ProController{
		port:         port,
		logger:       slog.Default(),
		replyTimeout: defaultReplyTimeout,
		pollInterval: defaultPollInterval,
		cal:          neutralCalibration(),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	if opts != nil {
		if opts.ReplyTimeout > 0 {
			c.replyTimeout = opts.ReplyTimeout
		}
		if opts.PollInterval > 0 {
			c.pollInterval = opts.PollInterval
		}
		if opts.Logger != nil {
			c.logger = opts.Logger
		}
	}
	if err := c.setup(); err != nil {
		return nil, err
	}
	return c, nil
}

// setup mirrors the controller bring-up order: colors, IMU calibration,
// stick calibration, IMU on, full report mode. It runs synchronously; the
// poller only starts once the controller streams 0x30 reports.
func (c *ProController) setup() error {
	if err := c.loadColors(); err != nil {
		return err
	}
	if err := c.loadIMUCalibration(); err != nil {
		return err
	}
	if err := c.loadStickCalibration(); err != nil {
		return err
	}
	if err := c.sendCommand(subcmdEnableIMU, 0x01); err != nil {
		return fmt.Errorf("enable imu: %w", err)
	}
	time.Sleep(imuWakeDelay)
	if err := c.sendCommand(subcmdSetReportMode, reportFullInput); err != nil {
		return fmt.Errorf("set report mode: %w", err)
	}
	c.logger.Debug("controller setup complete")
	return nil
}

func (c *ProController) loadColors() error {
	data, err := c.readFlash(AddrColors, colorsLen)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.bodyColor = rgb(data[0:3])
	c.buttonColor = rgb(data[3:6])
	c.mu.Unlock()
	c.logger.Debug("controller colors", "body", fmt.Sprintf("%x", data[0:3]), "buttons", fmt.Sprintf("%x", data[3:6]))
	return nil
}

// loadIMUCalibration checks the user calibration marker and reads the user
// block when it is present, the factory block otherwise.
func (c *ProController) loadIMUCalibration() error {
	marker, err := c.readFlash(AddrUserCalMarker, markerLen)
	if err != nil {
		return err
	}
	source, addr := "factory", AddrFactoryIMUCal
	if marker[0] == userCalMarker0 && marker[1] == userCalMarker1 {
		source, addr = "user", AddrUserIMUCal
	}
	data, err := c.readFlash(addr, imuCalLen)
	if err != nil {
		return err
	}
	accelOffsets, accelCoeffs, gyroOffsets, gyroCoeffs := decodeIMUCalibration(data)
	c.SetAccelCalibration(accelOffsets, accelCoeffs)
	c.SetGyroCalibration(gyroOffsets, gyroCoeffs)
	c.logger.Debug("imu calibration loaded", "source", source)
	return nil
}

// loadStickCalibration fetches the stick block. It is retained for
// inspection but not applied; stick values stay raw 12-bit counts.
func (c *ProController) loadStickCalibration() error {
	data, err := c.readFlash(AddrStickCal, stickCalLen)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.stickCal = data
	c.mu.Unlock()
	return nil
}

// Start launches the background poller, once. From here on the poller owns
// the read side of the port and ReadFlash returns ErrBusy.
func (c *ProController) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started || c.stopped || c.closed {
		return
	}
	c.started = true
	go c.poll()
}

// poll reads input reports until Close or a port fault. Only reports with
// leading byte 0x30 are kept; anything else, including stray subcommand
// replies, is discarded. A read failure is recorded as the sticky fault
// and stops the loop; there are no retries.
func (c *ProController) poll() {
	defer close(c.done)
	buf := make([]byte, inputReportLen)
	for {
		select {
		case <-c.stop:
			return
		default:
		}

		n, err := c.port.ReadWithTimeout(buf, c.pollInterval)
		if err != nil {
			if errors.Is(err, hidport.ErrReadTimeout) {
				continue
			}
			select {
			case <-c.stop:
				// Teardown in flight; the failed read is our own doing.
				return
			default:
			}
			c.mu.Lock()
			c.pollErr = err
			c.mu.Unlock()
			c.logger.Error("input poller stopped", "err", err)
			return
		}
		if buf[0] != reportFullInput || n < inputReportLen {
			continue
		}

		c.mu.Lock()
		copy(c.report[:], buf[:n])
		hooks := append([]Hook(nil), c.hooks...)
		c.mu.Unlock()
		for _, h := range hooks {
			h(c)
		}
	}
}

// State decodes the latest accepted input report under the current
// calibration. Before the first report it returns the zero snapshot.
func (c *ProController) State() State {
	c.mu.Lock()
	report := c.report
	cal := c.cal
	c.mu.Unlock()
	return decodeState(&report, cal)
}

// RegisterHook appends fn to the hook chain. Hooks run on the poller
// goroutine after every accepted report, in registration order.
func (c *ProController) RegisterHook(fn Hook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, fn)
}

// SetPlayerLamp sets the four player leds to the low four bits of pattern.
func (c *ProController) SetPlayerLamp(pattern byte) error {
	return c.sendCommand(subcmdSetPlayerLamp, pattern&0x0F)
}

// Disconnect asks the controller to drop the connection, then closes the
// session. Useful for Bluetooth; over USB the controller simply re-pairs.
// The poller is stopped before the subcommand is written so the link going
// down is not recorded as a poller fault.
func (c *ProController) Disconnect() error {
	c.stopPoller()
	err := c.sendCommand(subcmdDisconnect, 0x00)
	if cerr := c.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// Close stops the poller and closes the port. Safe to call more than once
// and from any goroutine except a hook.
func (c *ProController) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.stopPoller()
	return c.port.Close()
}

// stopPoller signals the poller and waits for it to exit. Returns once the
// done channel is closed, whoever closed it. Must not be called from a
// hook.
func (c *ProController) stopPoller() {
	c.mu.Lock()
	if !c.stopped {
		c.stopped = true
		if !c.started {
			close(c.done)
		}
		close(c.stop)
	}
	c.mu.Unlock()
	<-c.done
}

// Done is closed once the poller can no longer run: after it exits on
// fault, or when the session is closed.
func (c *ProController) Done() <-chan struct{} { return c.done }

// Err reports the fault that stopped the poller, if any.
func (c *ProController) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pollErr
}

// BodyColor returns the shell color read from flash during setup. Alpha is
// 255 once the color is known.
func (c *ProController) BodyColor() color.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bodyColor
}

// ButtonColor returns the button color read from flash during setup.
func (c *ProController) ButtonColor() color.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buttonColor
}

// StickCalibration returns a copy of the raw 9-byte stick calibration
// block. It is exposed for inspection only; the decoder does not use it.
func (c *ProController) StickCalibration() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.stickCal...)
}

func (c *ProController) polling() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}

func (c *ProController) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func rgb(b []byte) color.RGBA {
	return color.RGBA{R: b[0], G: b[1], B: b[2], A: 0xFF}
}
