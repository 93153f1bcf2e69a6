package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/joyhid/procon/hidport"
	"github.com/joyhid/procon/procon"
)

// Watch continuously prints the decoded controller state, the tool form of
// polling get-status in a loop.
type Watch struct {
	Device   DeviceConfig  `embed:""`
	Interval time.Duration `help:"Refresh interval" default:"250ms" env:"PROCON_WATCH_INTERVAL"`
	IMU      bool          `help:"Include accelerometer and gyroscope values" default:"true" negatable:""`
}

// Run is called by Kong when the watch command is executed.
func (w *Watch) Run(logger *slog.Logger, tracer hidport.TraceLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := w.Device.open(logger, tracer, true)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	logger.Info("watching controller", "interval", w.Interval)

	// In-place redraw only when stdout is a terminal; plain lines keep
	// piped output parseable.
	interactive := term.IsTerminal(int(os.Stdout.Fd()))

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if interactive {
				fmt.Println()
			}
			return nil
		case <-c.Done():
			if err := c.Err(); err != nil {
				return fmt.Errorf("input poller stopped: %w", err)
			}
			return nil
		case <-ticker.C:
			line := formatState(c.State(), w.IMU)
			if interactive {
				fmt.Printf("\r\x1b[K%s", line)
			} else {
				fmt.Println(line)
			}
		}
	}
}

func formatState(s procon.State, imu bool) string {
	var b strings.Builder

	charge := " "
	if s.Battery.Charging {
		charge = "+"
	}
	fmt.Fprintf(&b, "bat %d/7%s", s.Battery.Level, charge)

	pressed := pressedButtons(s.Buttons)
	fmt.Fprintf(&b, " | btn %-24s", strings.Join(pressed, " "))
	fmt.Fprintf(&b, " | L %4d,%4d R %4d,%4d",
		s.LeftStick.Horizontal, s.LeftStick.Vertical,
		s.RightStick.Horizontal, s.RightStick.Vertical)

	if imu {
		fmt.Fprintf(&b, " | acc %+8.1f %+8.1f %+8.1f gyro %+8.1f %+8.1f %+8.1f",
			s.Accel.X, s.Accel.Y, s.Accel.Z,
			s.Gyro.X, s.Gyro.Y, s.Gyro.Z)
	}
	return b.String()
}

func pressedButtons(b procon.Buttons) []string {
	named := []struct {
		name string
		on   bool
	}{
		{"y", b.Y}, {"x", b.X}, {"b", b.B}, {"a", b.A},
		{"r", b.R}, {"zr", b.ZR},
		{"minus", b.Minus}, {"plus", b.Plus},
		{"r-stick", b.RStick}, {"l-stick", b.LStick},
		{"home", b.Home}, {"capture", b.Capture},
		{"down", b.Down}, {"up", b.Up}, {"right", b.Right}, {"left", b.Left},
		{"l", b.L}, {"zl", b.ZL},
	}
	var out []string
	for _, n := range named {
		if n.on {
			out = append(out, n.name)
		}
	}
	return out
}
