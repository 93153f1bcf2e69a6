package cmd

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/joyhid/procon/hidport"
	"github.com/joyhid/procon/procon"
)

// DeviceConfig selects and tunes the controller connection. It is embedded
// by every command that talks to hardware.
type DeviceConfig struct {
	Vendor       string        `help:"HID vendor id, hex or decimal" default:"0x057e" env:"PROCON_VENDOR"`
	Product      string        `help:"HID product id, hex or decimal" default:"0x2009" env:"PROCON_PRODUCT"`
	Serial       string        `help:"Match a specific controller serial" env:"PROCON_SERIAL"`
	ReplyTimeout time.Duration `help:"Subcommand reply timeout" default:"500ms" env:"PROCON_REPLY_TIMEOUT"`
	PollInterval time.Duration `help:"Upper bound on a single poll read" default:"100ms" env:"PROCON_POLL_INTERVAL"`
}

func (d *DeviceConfig) ids() (uint16, uint16, error) {
	vid, err := parseID(d.Vendor)
	if err != nil {
		return 0, 0, err
	}
	pid, err := parseID(d.Product)
	if err != nil {
		return 0, 0, err
	}
	return vid, pid, nil
}

func parseID(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("bad device id %q: %w", s, err)
	}
	return uint16(v), nil
}

// open dials the controller, mirroring traffic to the tracer when one is
// configured. With start=false the poller stays off and the session keeps
// exclusive flash access.
func (d *DeviceConfig) open(logger *slog.Logger, tracer hidport.TraceLogger, start bool) (*procon.ProController, error) {
	vid, pid, err := d.ids()
	if err != nil {
		return nil, err
	}
	port, err := hidport.Open(vid, pid, d.Serial)
	if err != nil {
		return nil, err
	}
	c, err := procon.New(hidport.Trace(port, tracer), &procon.Options{
		ReplyTimeout: d.ReplyTimeout,
		PollInterval: d.PollInterval,
		Logger:       logger,
	})
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	logger.Debug("controller connected", "vendor", fmt.Sprintf("%04x", vid), "product", fmt.Sprintf("%04x", pid))
	if start {
		c.Start()
	}
	return c, nil
}
