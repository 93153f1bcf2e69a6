package procon

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameLayout(t *testing.T) {
	p := NewFakePort()
	c := NewTestController(t, p)
	defer func() { _ = c.Close() }()

	require.NoError(t, c.SetPlayerLamp(0x03))

	frames := p.WrittenFrames()
	frame := frames[len(frames)-1]
	require.Len(t, frame, 12)
	assert.Equal(t, reportOutput, frame[0])
	assert.Equal(t, rumbleNeutral[:], frame[2:10])
	assert.Equal(t, subcmdSetPlayerLamp, frame[10])
	assert.Equal(t, byte(0x03), frame[11])
}

func TestPacketCounterWrapsMod16(t *testing.T) {
	p := NewFakePort()
	c := NewTestController(t, p)
	defer func() { _ = c.Close() }()

	for i := 0; i < 20; i++ {
		require.NoError(t, c.SetPlayerLamp(0x01))
	}

	for i, frame := range p.WrittenFrames() {
		assert.Equal(t, byte(i&0x0F), frame[1], "frame %d", i)
	}
}

func TestPacketCounterAdvancesOnFailedWrite(t *testing.T) {
	p := NewFakePort()
	c := NewTestController(t, p)
	defer func() { _ = c.Close() }()

	before := len(p.WrittenFrames())

	p.SetWriteErr(errors.New("device unplugged"))
	require.Error(t, c.SetPlayerLamp(0x01))
	p.SetWriteErr(nil)
	require.NoError(t, c.SetPlayerLamp(0x01))

	frames := p.WrittenFrames()
	last := frames[len(frames)-1]
	// One packet number was consumed by the failed write.
	assert.Equal(t, byte((before+1)&0x0F), last[1])
}

func TestAwaitReplySkipsOtherReports(t *testing.T) {
	p := NewFakePort()
	c := NewTestController(t, p)
	defer func() { _ = c.Close() }()

	p.Flash[0x7000] = []byte{0xDE, 0xAD, 0xBE, 0xEF}
	p.Queue(InputReport(nil))

	data, err := c.ReadFlash(0x7000, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, data)
}

func TestReplyTimeout(t *testing.T) {
	p := NewFakePort()
	c := NewTestController(t, p)
	defer func() { _ = c.Close() }()

	p.SetMute(true)
	_, err := c.ReadFlash(0x6000, 4)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReplyTimeout)
}

func TestShortReplyRejected(t *testing.T) {
	p := NewFakePort()
	c := NewTestController(t, p)
	defer func() { _ = c.Close() }()

	p.SetMute(true)
	p.Queue([]byte{reportSubcmdReply, 0x00, 0x00})

	_, err := c.ReadFlash(0x6000, 4)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedReply)
}

func TestMinimalAckedReplyRejected(t *testing.T) {
	p := NewFakePort()
	c := NewTestController(t, p)
	defer func() { _ = c.Close() }()

	// 14 bytes is the shortest reply sendSubcommand accepts: a one-byte
	// payload carrying only the ack. It has no room for the echo or the
	// data and must come back as an error, not a crash.
	reply := make([]byte, 14)
	reply[0] = reportSubcmdReply
	reply[13] = 0x90
	p.SetMute(true)
	p.Queue(reply)

	_, err := c.ReadFlash(0x6000, 4)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedReply)
}

func TestSendAfterCloseFails(t *testing.T) {
	p := NewFakePort()
	c := NewTestController(t, p)
	require.NoError(t, c.Close())

	assert.ErrorIs(t, c.SetPlayerLamp(0x01), ErrClosed)
}
