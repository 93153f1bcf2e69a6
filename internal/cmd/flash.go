package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/joyhid/procon/hidport"
	"github.com/joyhid/procon/procon"
)

// Flash dumps a region of the controller's SPI flash. It keeps the poller
// off so the session has exclusive read access for the duration.
type Flash struct {
	Device DeviceConfig `embed:""`
	Addr   string       `help:"Start address, hex or decimal" default:"0x6000"`
	Size   int          `help:"Number of bytes to read" default:"256"`
	Out    string       `help:"Write raw bytes to this file instead of hex dumping"`
}

// Run is called by Kong when the flash command is executed.
func (f *Flash) Run(logger *slog.Logger, tracer hidport.TraceLogger) error {
	addr, err := strconv.ParseUint(f.Addr, 0, 32)
	if err != nil {
		return fmt.Errorf("bad address %q: %w", f.Addr, err)
	}
	if f.Size <= 0 {
		return fmt.Errorf("size must be positive, got %d", f.Size)
	}

	c, err := f.Device.open(logger, tracer, false)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	// Reads are capped per subcommand reply; larger regions go chunk by
	// chunk.
	chunk := int(procon.MaxFlashChunk)
	data := make([]byte, 0, f.Size)
	for off := 0; off < f.Size; off += chunk {
		n := min(chunk, f.Size-off)
		part, err := c.ReadFlash(uint32(addr)+uint32(off), byte(n))
		if err != nil {
			return err
		}
		data = append(data, part...)
	}
	logger.Debug("flash read", "addr", f.Addr, "bytes", len(data))

	if f.Out != "" {
		if err := os.WriteFile(f.Out, data, 0o644); err != nil {
			return err
		}
		logger.Info("flash dumped", "addr", f.Addr, "bytes", len(data), "file", f.Out)
		return nil
	}
	dumpHex(os.Stdout, uint32(addr), data)
	return nil
}

// dumpHex prints 16-byte rows with the flash address in the left column.
func dumpHex(w io.Writer, base uint32, data []byte) {
	for off := 0; off < len(data); off += 16 {
		end := min(off+16, len(data))
		fmt.Fprintf(w, "%06x ", base+uint32(off))
		for i := off; i < end; i++ {
			fmt.Fprintf(w, " %02x", data[i])
		}
		fmt.Fprintln(w)
	}
}
