// Package config defines the root CLI grammar for proconctl.
package config

import (
	"github.com/joyhid/procon/internal/cmd"
)

// LogConfig groups the logging flags shared by every command.
type LogConfig struct {
	Level   string `help:"Log level (trace, debug, info, warn, error)" default:"info" env:"PROCON_LOG_LEVEL"`
	File    string `help:"Write logs to this file instead of the console" env:"PROCON_LOG_FILE"`
	RawFile string `help:"Write raw HID traffic hex dumps to this file" env:"PROCON_LOG_RAW_FILE"`
}

// CLI is the kong grammar for proconctl.
type CLI struct {
	Config string    `help:"Path to a config file (json, yaml or toml)" env:"PROCON_CONFIG"`
	Log    LogConfig `embed:"" prefix:"log."`

	Watch     cmd.Watch         `cmd:"" help:"Continuously print the controller state"`
	Status    cmd.Status        `cmd:"" help:"Print one state snapshot as JSON"`
	Lamp      cmd.Lamp          `cmd:"" help:"Set the player lamp pattern"`
	Flash     cmd.Flash         `cmd:"" help:"Dump a region of SPI flash"`
	List      cmd.List          `cmd:"" help:"List matching HID devices"`
	Udev      cmd.Udev          `cmd:"" help:"Install the udev rule for unprivileged controller access (Linux)"`
	ConfigCmd cmd.ConfigCommand `cmd:"" name:"config" help:"Configuration helpers"`
}
