package encryption

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/box"
)

// EphemeralKeyPair is a generated NaCl box key pair, used as the ephemeral
// half of an AgreementMethod/DerivedKey ECDH exchange.
type EphemeralKeyPair struct {
	PublicKey [32]byte
	SecretKey [32]byte
}

// Zero overwrites the secret key (and, for completeness, the public key)
// with zero bytes once the pair is no longer needed.
func (p *EphemeralKeyPair) Zero() {
	if p == nil {
		return
	}
	for i := range p.SecretKey {
		p.SecretKey[i] = 0
	}
	for i := range p.PublicKey {
		p.PublicKey[i] = 0
	}
}

// EphemeralKeyCreator generates ephemeral NaCl box key pairs for
// AgreementMethod and DerivedKey handlers.
type EphemeralKeyCreator struct {
	randReader io.Reader
}

// NewEphemeralKeyCreator returns a creator backed by crypto/rand.Reader.
func NewEphemeralKeyCreator() *EphemeralKeyCreator {
	return &EphemeralKeyCreator{randReader: rand.Reader}
}

// NewEphemeralKeyCreatorWithReader returns a creator backed by reader,
// primarily for deterministic tests.
func NewEphemeralKeyCreatorWithReader(reader io.Reader) *EphemeralKeyCreator {
	if reader == nil {
		reader = rand.Reader
	}
	return &EphemeralKeyCreator{randReader: reader}
}

// GenerateKey generates a new ephemeral key pair.
func (c *EphemeralKeyCreator) GenerateKey() (*EphemeralKeyPair, error) {
	pub, priv, err := box.GenerateKey(c.randReader)
	if err != nil {
		return nil, fmt.Errorf("encryption: generate ephemeral key: %w", err)
	}
	return &EphemeralKeyPair{PublicKey: *pub, SecretKey: *priv}, nil
}

// DeriveSharedSecret computes the NaCl box shared secret between a local
// secret key and a peer's public key, the core ECDH step behind both
// DerivedKey and AgreementMethod key generation.
func DeriveSharedSecret(localSecret [32]byte, peerPublic [32]byte) []byte {
	var shared [32]byte
	box.Precompute(&shared, &peerPublic, &localSecret)
	return shared[:]
}
