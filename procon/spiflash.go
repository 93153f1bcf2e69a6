package procon

import (
	"encoding/binary"
	"fmt"
)

// ReadFlash reads size bytes of SPI flash starting at addr.
//
// size must not exceed MaxFlashChunk, the most one subcommand reply can
// carry; a larger request is a programming error and panics before any
// device contact. While the poller is running the read side of the port
// belongs to it and ReadFlash returns ErrBusy; read flash before Start or
// on a session built with New.
func (c *ProController) ReadFlash(addr uint32, size byte) ([]byte, error) {
	if size > MaxFlashChunk {
		panic(fmt.Sprintf("procon: flash read of %d bytes exceeds the %d byte chunk limit", size, MaxFlashChunk))
	}
	if c.polling() {
		return nil, ErrBusy
	}
	return c.readFlash(addr, size)
}

// readFlash performs one flash read round-trip. The subcommand argument is
// the little-endian address followed by the size byte; the reply payload
// echoes 0x90 0x10 and carries the data from payload byte 7 on.
func (c *ProController) readFlash(addr uint32, size byte) ([]byte, error) {
	arg := make([]byte, 5)
	binary.LittleEndian.PutUint32(arg, addr)
	arg[4] = size

	ack, payload, err := c.sendSubcommand(subcmdSPIFlashRead, arg...)
	if err != nil {
		return nil, fmt.Errorf("flash read at %#06x: %w", addr, err)
	}
	if !ack {
		return nil, fmt.Errorf("flash read failed at %#06x: %w", addr, ErrNotAcknowledged)
	}
	// Length before echo: an acknowledged reply can still be too short to
	// carry the echo bytes, let alone the data.
	if len(payload) < 7+int(size) {
		return nil, fmt.Errorf("flash read at %#06x: truncated payload (%d bytes): %w", addr, len(payload), ErrUnexpectedReply)
	}
	if payload[0] != 0x90 || payload[1] != subcmdSPIFlashRead {
		return nil, fmt.Errorf("flash read at %#06x: echo %#02x %#02x: %w", addr, payload[0], payload[1], ErrUnexpectedReply)
	}
	return payload[7 : 7+int(size)], nil
}
