//go:build linux

package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/joyhid/procon/procon"
)

const rulesPath = "/etc/udev/rules.d/70-procon.rules"

// Udev installs a udev rule so unprivileged users can open the
// controller's hidraw node. Needs root.
type Udev struct {
	Remove bool `help:"Remove the rule instead of installing it"`
}

func (u *Udev) Run(logger *slog.Logger) error {
	if u.Remove {
		return removeRule(logger)
	}
	return installRule(logger)
}

func installRule(logger *slog.Logger) error {
	if err := os.WriteFile(rulesPath, []byte(udevRuleContent()), 0o644); err != nil {
		return err
	}

	steps := [][]string{
		{"control", "--reload-rules"},
		{"trigger", "--subsystem-match=hidraw"},
	}

	for _, args := range steps {
		if err := runUdevadm(args...); err != nil {
			return err
		}
	}

	logger.Info("udev rule installed", "path", rulesPath)
	return nil
}

func removeRule(logger *slog.Logger) error {
	var errs []error

	if err := os.Remove(rulesPath); err != nil && !os.IsNotExist(err) {
		errs = append(errs, err)
	}

	if err := runUdevadm("control", "--reload-rules"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	logger.Info("udev rule removed", "path", rulesPath)
	return nil
}

// udevRuleContent matches the Pro Controller's hidraw node over USB
// (idVendor/idProduct) and over Bluetooth (the HID device name carries
// the ids instead).
func udevRuleContent() string {
	return fmt.Sprintf(`# Nintendo Switch Pro Controller
KERNEL=="hidraw*", ATTRS{idVendor}=="%04x", ATTRS{idProduct}=="%04x", MODE="0660", TAG+="uaccess"
KERNEL=="hidraw*", KERNELS=="*%04X:%04X*", MODE="0660", TAG+="uaccess"
`, procon.VendorNintendo, procon.ProductProCon, procon.VendorNintendo, procon.ProductProCon)
}

func runUdevadm(args ...string) error {
	cmd := exec.Command("udevadm", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("udevadm %s failed: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}
	return nil
}
