package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/joyhid/procon/hidport"
	"github.com/joyhid/procon/procon"
)

// Status prints one decoded state snapshot as JSON.
type Status struct {
	Device DeviceConfig  `embed:""`
	Wait   time.Duration `help:"How long to wait for the first input report" default:"1s"`
}

// Run is called by Kong when the status command is executed.
func (s *Status) Run(logger *slog.Logger, tracer hidport.TraceLogger) error {
	c, err := s.Device.open(logger, tracer, false)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	first := make(chan struct{})
	var once sync.Once
	c.RegisterHook(func(*procon.ProController) {
		once.Do(func() { close(first) })
	})
	c.Start()

	select {
	case <-first:
	case <-c.Done():
		if err := c.Err(); err != nil {
			return fmt.Errorf("input poller stopped: %w", err)
		}
	case <-time.After(s.Wait):
		logger.Warn("no input report arrived; snapshot may be empty", "waited", s.Wait)
	}

	data, err := json.MarshalIndent(c.State(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
