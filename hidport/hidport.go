// Package hidport is the HID transport behind the procon driver.
//
// The driver consumes the Port interface, so protocol logic runs the same
// against real hardware and against scripted fakes in tests. Open returns
// the hidapi-backed implementation.
package hidport

import (
	"errors"
	"fmt"
	"time"

	"github.com/sstallion/go-hid"
)

// ErrReadTimeout is returned by ReadWithTimeout when the window closes
// before a report arrives.
var ErrReadTimeout = errors.New("hidport: read timed out")

// Port is the device capability the driver needs: raw report exchange plus
// teardown.
type Port interface {
	Read(p []byte) (int, error)
	ReadWithTimeout(p []byte, timeout time.Duration) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// OpenError describes a failed attempt to open a device, keeping the
// identifiers the caller asked for.
type OpenError struct {
	VendorID  uint16
	ProductID uint16
	Serial    string
	Err       error
}

func (e *OpenError) Error() string {
	if e.Serial != "" {
		return fmt.Sprintf("hidport: open %04x:%04x serial %q: %v", e.VendorID, e.ProductID, e.Serial, e.Err)
	}
	return fmt.Sprintf("hidport: open %04x:%04x: %v", e.VendorID, e.ProductID, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// Device is a Port backed by a hidapi handle.
type Device struct {
	dev *hid.Device
}

// Open connects to the first device matching vendor and product id, or to
// the one with the given serial when serial is non-empty.
func Open(vendorID, productID uint16, serial string) (*Device, error) {
	fail := func(err error) (*Device, error) {
		return nil, &OpenError{VendorID: vendorID, ProductID: productID, Serial: serial, Err: err}
	}
	if err := hid.Init(); err != nil {
		return fail(err)
	}
	var (
		dev *hid.Device
		err error
	)
	if serial == "" {
		dev, err = hid.OpenFirst(vendorID, productID)
	} else {
		dev, err = hid.Open(vendorID, productID, serial)
	}
	if err != nil {
		return fail(err)
	}
	return &Device{dev: dev}, nil
}

func (d *Device) Read(p []byte) (int, error) { return d.dev.Read(p) }

// ReadWithTimeout reads one report. hidapi signals an expired window as a
// zero-length read; that is mapped to ErrReadTimeout so callers get a
// checkable error instead of an empty result.
func (d *Device) ReadWithTimeout(p []byte, timeout time.Duration) (int, error) {
	n, err := d.dev.ReadWithTimeout(p, timeout)
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, ErrReadTimeout
	}
	return n, nil
}

func (d *Device) Write(p []byte) (int, error) { return d.dev.Write(p) }

func (d *Device) Close() error { return d.dev.Close() }

// DeviceInfo describes one enumerated HID device.
type DeviceInfo struct {
	Path      string
	VendorID  uint16
	ProductID uint16
	Serial    string
	Product   string
	Interface int
}

// List enumerates attached HID devices matching vendor and product id.
// A zero id matches anything.
func List(vendorID, productID uint16) ([]DeviceInfo, error) {
	if err := hid.Init(); err != nil {
		return nil, err
	}
	var found []DeviceInfo
	err := hid.Enumerate(vendorID, productID, func(info *hid.DeviceInfo) error {
		found = append(found, DeviceInfo{
			Path:      info.Path,
			VendorID:  info.VendorID,
			ProductID: info.ProductID,
			Serial:    info.SerialNbr,
			Product:   info.ProductStr,
			Interface: info.InterfaceNbr,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}
