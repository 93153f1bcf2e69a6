package cmd

import (
	"fmt"
	"log/slog"

	"github.com/joyhid/procon/hidport"
)

// Lamp sets the player led pattern.
type Lamp struct {
	Device  DeviceConfig `embed:""`
	Pattern uint8        `arg:"" help:"Player lamp bit pattern (0-15)"`
}

// Run is called by Kong when the lamp command is executed.
func (l *Lamp) Run(logger *slog.Logger, tracer hidport.TraceLogger) error {
	if l.Pattern > 0x0F {
		return fmt.Errorf("pattern %d out of range (0-15)", l.Pattern)
	}

	c, err := l.Device.open(logger, tracer, false)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	if err := c.SetPlayerLamp(l.Pattern); err != nil {
		return err
	}
	logger.Info("player lamp set", "pattern", fmt.Sprintf("%04b", l.Pattern))
	return nil
}
