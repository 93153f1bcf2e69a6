package procon

import "errors"

var (
	// ErrNotAcknowledged means the controller answered a subcommand with
	// the ack bit clear.
	ErrNotAcknowledged = errors.New("procon: subcommand not acknowledged")

	// ErrUnexpectedReply means a subcommand reply arrived without the
	// expected echo header.
	ErrUnexpectedReply = errors.New("procon: unexpected reply payload")

	// ErrReplyTimeout means no matching reply arrived inside the
	// configured window.
	ErrReplyTimeout = errors.New("procon: timed out waiting for reply")

	// ErrBusy means a flash read was attempted while the poller owns the
	// read side of the port.
	ErrBusy = errors.New("procon: poller owns the read side")

	// ErrClosed means the session has been closed.
	ErrClosed = errors.New("procon: controller closed")
)
