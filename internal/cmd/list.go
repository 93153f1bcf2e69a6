package cmd

import (
	"fmt"
	"log/slog"

	"github.com/joyhid/procon/hidport"
)

// List enumerates attached HID devices matching the filter.
type List struct {
	Vendor  string `help:"Filter by vendor id, hex or decimal" default:"0x057e"`
	Product string `help:"Filter by product id, hex or decimal" default:"0x2009"`
	All     bool   `help:"List every HID device instead of Pro Controllers"`
}

// Run is called by Kong when the list command is executed.
func (l *List) Run(logger *slog.Logger) error {
	var vid, pid uint16
	if !l.All {
		var err error
		if vid, err = parseID(l.Vendor); err != nil {
			return err
		}
		if pid, err = parseID(l.Product); err != nil {
			return err
		}
	}

	infos, err := hidport.List(vid, pid)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		logger.Info("no matching devices")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("%04x:%04x  serial=%-20s  %s\n", info.VendorID, info.ProductID, info.Serial, info.Product)
	}
	return nil
}
