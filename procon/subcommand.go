package procon

import (
	"errors"
	"fmt"
	"time"

	"github.com/joyhid/procon/hidport"
)

// rumbleNeutral is the fixed no-op rumble block every output report
// carries between the packet number and the subcommand id.
var rumbleNeutral = [8]byte{0x00, 0x01, 0x40, 0x40, 0x00, 0x01, 0x40, 0x40}

// writeFrame builds and writes one output report:
// [0x01][packet number][rumble][subcommand][args...].
// The 4-bit packet number advances on every send, wrapping silently,
// whether or not the write succeeds. Callers must hold sendMu.
func (c *ProController) writeFrame(subcmd byte, args []byte) error {
	if c.isClosed() {
		return ErrClosed
	}

	frame := make([]byte, 0, 11+len(args))
	frame = append(frame, reportOutput, c.packet)
	c.packet = (c.packet + 1) & 0x0F
	frame = append(frame, rumbleNeutral[:]...)
	frame = append(frame, subcmd)
	frame = append(frame, args...)

	c.logger.Debug("subcommand out", "id", fmt.Sprintf("%#02x", subcmd), "packet", frame[1], "args", fmt.Sprintf("%x", args))
	if _, err := c.port.Write(frame); err != nil {
		return fmt.Errorf("write subcommand %#02x: %w", subcmd, err)
	}
	return nil
}

// sendCommand writes one frame without waiting for a reply. Used for the
// fire-and-forget subcommands: report mode, IMU enable, player lamp,
// disconnect.
func (c *ProController) sendCommand(subcmd byte, args ...byte) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	return c.writeFrame(subcmd, args)
}

// sendSubcommand writes one frame and waits for the matching subcommand
// reply. It returns the ack flag (bit 7 of the first payload byte) and the
// payload, which is the reply report from byte 13 on.
func (c *ProController) sendSubcommand(subcmd byte, args ...byte) (bool, []byte, error) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if err := c.writeFrame(subcmd, args); err != nil {
		return false, nil, err
	}
	reply, err := c.awaitReport(reportSubcmdReply)
	if err != nil {
		return false, nil, err
	}
	if len(reply) < 14 {
		return false, nil, fmt.Errorf("short reply (%d bytes): %w", len(reply), ErrUnexpectedReply)
	}
	payload := reply[13:]
	return payload[0]&0x80 != 0, payload, nil
}

// awaitReport reads until a report with the wanted leading byte arrives or
// the reply window closes. Reports with other ids are discarded; the
// controller keeps streaming input reports while a reply is pending.
// Callers must hold sendMu.
func (c *ProController) awaitReport(want byte) ([]byte, error) {
	deadline := time.Now().Add(c.replyTimeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("report %#02x: %w", want, ErrReplyTimeout)
		}
		buf := make([]byte, inputReportLen)
		n, err := c.port.ReadWithTimeout(buf, remaining)
		if err != nil {
			if errors.Is(err, hidport.ErrReadTimeout) {
				return nil, fmt.Errorf("report %#02x: %w", want, ErrReplyTimeout)
			}
			return nil, fmt.Errorf("read reply: %w", err)
		}
		if n > 0 && buf[0] == want {
			return buf[:n], nil
		}
	}
}
