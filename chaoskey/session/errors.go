package session

import (
	"errors"
	"fmt"
)

var (
	// ErrProtocolViolation is an unexpected frame type, shape or order.
	ErrProtocolViolation = errors.New("session: protocol violation")
	// ErrLookupFailure means the fingerprint is absent from the receiver's
	// keystream.
	ErrLookupFailure = errors.New("session: keystream lookup failure")
	// ErrChannelFailure is a transport level I/O error.
	ErrChannelFailure = errors.New("session: channel failure")

	ErrSessionClosed = errors.New("session: closed")
)

// Kind names the class of err for metrics and logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return "completed"
	case errors.Is(err, ErrProtocolViolation):
		return "protocol_violation"
	case errors.Is(err, ErrLookupFailure):
		return "lookup_failure"
	case errors.Is(err, ErrChannelFailure):
		return "channel_failure"
	default:
		return "error"
	}
}

func violation(st State, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrProtocolViolation, st, fmt.Sprintf(format, args...))
}

func wrapViolation(st State, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrProtocolViolation, st, err)
}

func channelFailure(st State, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrChannelFailure, st, err)
}
