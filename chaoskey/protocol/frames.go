package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unicode/utf8"
)

const (
	ControlSize    = 1
	CoordinateSize = 8
	PublicKeySize  = 32
)

var (
	ErrUnexpectedFrame = errors.New("protocol: unexpected frame")
)

// Control builds a control frame.
func Control(c ControlCode) Frame {
	return Frame{Type: MessageTypeBinary, Payload: []byte{byte(c)}}
}

// Coordinate builds a coordinate frame. The value travels as little-endian
// IEEE 754, the native order of every platform the peers are built for.
func Coordinate(v float64) Frame {
	p := make([]byte, CoordinateSize)
	binary.LittleEndian.PutUint64(p, math.Float64bits(v))
	return Frame{Type: MessageTypeBinary, Payload: p}
}

// PublicKey builds a public key frame.
func PublicKey(k [PublicKeySize]byte) Frame {
	return Frame{Type: MessageTypeBinary, Payload: append([]byte(nil), k[:]...)}
}

// Text builds a UTF-8 text frame.
func Text(s string) Frame {
	return Frame{Type: MessageTypeText, Payload: []byte(s)}
}

// Byte builds a one byte binary frame (fingerprint bytes).
func Byte(b byte) Frame {
	return Frame{Type: MessageTypeBinary, Payload: []byte{b}}
}

// IsControl reports whether f has the shape of a control frame.
func IsControl(f Frame) bool {
	return f.Type == MessageTypeBinary && len(f.Payload) == ControlSize
}

// IsCoordinate reports whether f has the shape of a coordinate frame.
func IsCoordinate(f Frame) bool {
	return f.Type == MessageTypeBinary && len(f.Payload) == CoordinateSize
}

func AsControl(f Frame) (ControlCode, error) {
	if !IsControl(f) {
		return 0, fmt.Errorf("%w: want control, got %s", ErrUnexpectedFrame, f)
	}
	c := ControlCode(f.Payload[0])
	if !c.valid() {
		return 0, fmt.Errorf("%w: unknown control code %d", ErrUnexpectedFrame, f.Payload[0])
	}
	return c, nil
}

func AsCoordinate(f Frame) (float64, error) {
	if !IsCoordinate(f) {
		return 0, fmt.Errorf("%w: want coordinate, got %s", ErrUnexpectedFrame, f)
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(f.Payload)), nil
}

func AsPublicKey(f Frame) ([PublicKeySize]byte, error) {
	var k [PublicKeySize]byte
	if f.Type != MessageTypeBinary || len(f.Payload) != PublicKeySize {
		return k, fmt.Errorf("%w: want public key, got %s", ErrUnexpectedFrame, f)
	}
	copy(k[:], f.Payload)
	return k, nil
}

func AsText(f Frame) (string, error) {
	if f.Type != MessageTypeText {
		return "", fmt.Errorf("%w: want text, got %s", ErrUnexpectedFrame, f)
	}
	if !utf8.Valid(f.Payload) {
		return "", fmt.Errorf("%w: text frame is not UTF-8", ErrUnexpectedFrame)
	}
	return string(f.Payload), nil
}

func AsByte(f Frame) (byte, error) {
	if f.Type != MessageTypeBinary || len(f.Payload) != 1 {
		return 0, fmt.Errorf("%w: want single byte, got %s", ErrUnexpectedFrame, f)
	}
	return f.Payload[0], nil
}

// ExpectControl decodes f and checks it carries want.
func ExpectControl(f Frame, want ControlCode) error {
	c, err := AsControl(f)
	if err != nil {
		return err
	}
	if c != want {
		return fmt.Errorf("%w: want %s, got %s", ErrUnexpectedFrame, want, c)
	}
	return nil
}
