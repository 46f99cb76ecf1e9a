package keystream

import (
	"encoding/base64"
	"errors"
	"fmt"
)

const (
	// WindowSize is the length of the keystream segment used per message.
	WindowSize = 16
	// FingerprintSize is the leading part of a window sent with the ciphertext.
	FingerprintSize = 8
)

var (
	ErrWindowSize          = errors.New("keystream: window must be 16 bytes")
	ErrMalformedCiphertext = errors.New("keystream: malformed ciphertext")
)

// XOR returns data with window[i%len(window)] applied to every byte. It is its
// own inverse.
func XOR(data, window []byte) []byte {
	out := make([]byte, len(data))
	for i, c := range data {
		out[i] = c ^ window[i%len(window)]
	}
	return out
}

// Encipher enciphers msg and returns the base64 text sent on the wire.
func Encipher(msg, window []byte) (string, error) {
	if len(window) != WindowSize {
		return "", ErrWindowSize
	}
	return base64.StdEncoding.EncodeToString(XOR(msg, window)), nil
}

// Decipher reverses Encipher.
func Decipher(text string, window []byte) ([]byte, error) {
	if len(window) != WindowSize {
		return nil, ErrWindowSize
	}
	raw, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}
	return XOR(raw, window), nil
}

// Fingerprint returns the leading bytes of window.
func Fingerprint(window []byte) [FingerprintSize]byte {
	var fp [FingerprintSize]byte
	copy(fp[:], window)
	return fp
}
