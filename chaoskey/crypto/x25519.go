package crypto

import (
	"crypto/rand"
	"errors"
	"io"

	"golang.org/x/crypto/curve25519"
)

// PublicKeySize is the length of a public key frame.
const PublicKeySize = 32

// X25519KeyPair is the ephemeral key material of one session.
type X25519KeyPair struct {
	PublicKey  [PublicKeySize]byte
	PrivateKey [32]byte
}

var (
	ErrInvalidPublicKey = errors.New("crypto: invalid X25519 public key")
	ErrKeyPairWiped     = errors.New("crypto: key pair already used")
)

// GenerateX25519 generates a new ephemeral X25519 keypair.
func GenerateX25519() (X25519KeyPair, error) {
	var kp X25519KeyPair
	if _, err := io.ReadFull(rand.Reader, kp.PrivateKey[:]); err != nil {
		return X25519KeyPair{}, err
	}
	// Clamp private key per RFC 7748
	kp.PrivateKey[0] &= 248
	kp.PrivateKey[31] &= 127
	kp.PrivateKey[31] |= 64

	curve25519.ScalarBaseMult(&kp.PublicKey, &kp.PrivateKey)
	return kp, nil
}

// ECDH computes the raw X25519 shared secret.
func ECDH(privateKey, peerPublicKey [32]byte) ([]byte, error) {
	var zero [32]byte
	if peerPublicKey == zero {
		return nil, ErrInvalidPublicKey
	}
	if privateKey == zero {
		return nil, ErrKeyPairWiped
	}
	shared, err := curve25519.X25519(privateKey[:], peerPublicKey[:])
	if err != nil {
		// low-order points yield an all-zero output
		return nil, ErrInvalidPublicKey
	}
	return shared, nil
}

// Wipe zeroes the private key.
func (kp *X25519KeyPair) Wipe() {
	memzero(kp.PrivateKey[:])
}

func memzero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
