//go:build !linux

package cmd

import (
	"errors"
	"log/slog"
)

// Udev installs a udev rule so unprivileged users can open the
// controller's hidraw node. Needs root.
type Udev struct {
	Remove bool `help:"Remove the rule instead of installing it"`
}

func (u *Udev) Run(logger *slog.Logger) error {
	return errors.New("udev rules are only used on Linux")
}
