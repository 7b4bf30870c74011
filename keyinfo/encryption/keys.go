// Package encryption adapts the Saltpack/NaCl crypto stack into a
// keyinfo.Engine: decrypting <EncryptedKey> ciphertext, sealing key octets
// into one, and producing keys via ECDH-based derivation/agreement.
package encryption

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/keybase/saltpack"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"
)

// BoxPublicKey wraps saltpack.BoxPublicKey for easier usage within this
// package.
type BoxPublicKey interface {
	saltpack.BoxPublicKey
}

// BoxSecretKey wraps saltpack.BoxSecretKey for easier usage within this
// package.
type BoxSecretKey interface {
	saltpack.BoxSecretKey
}

// KeyPair is a public/private NaCl box key pair, tagged with the raw
// public-key bytes as its identifier.
type KeyPair struct {
	PublicKey  saltpack.BoxPublicKey
	SecretKey  saltpack.BoxSecretKey
	Identifier []byte
}

// SimpleKeyring is a minimal saltpack.Keyring backed by an in-memory map of
// NaCl box keys, holding the recipient secret key(s) this module's
// EncryptedKey handler decrypts with and any public keys known for sender
// verification.
type SimpleKeyring struct {
	secretKeys map[string]saltpack.BoxSecretKey
	publicKeys map[string]saltpack.BoxPublicKey
}

// NewSimpleKeyring returns an empty SimpleKeyring.
func NewSimpleKeyring() *SimpleKeyring {
	return &SimpleKeyring{
		secretKeys: make(map[string]saltpack.BoxSecretKey),
		publicKeys: make(map[string]saltpack.BoxPublicKey),
	}
}

// AddKey adds a secret key (and its derived public key) to the keyring.
func (k *SimpleKeyring) AddKey(secretKey saltpack.BoxSecretKey) {
	if secretKey == nil {
		return
	}
	publicKey := secretKey.GetPublicKey()
	id := keyToString(publicKey.ToKID())
	k.secretKeys[id] = secretKey
	k.publicKeys[id] = publicKey
}

// AddPublicKey adds a public key for sender verification only.
func (k *SimpleKeyring) AddPublicKey(publicKey saltpack.BoxPublicKey) {
	if publicKey == nil {
		return
	}
	k.publicKeys[keyToString(publicKey.ToKID())] = publicKey
}

// AddKeyPair is a convenience wrapper around AddKey.
func (k *SimpleKeyring) AddKeyPair(pair *KeyPair) {
	if pair != nil && pair.SecretKey != nil {
		k.AddKey(pair.SecretKey)
	}
}

// LookupBoxSecretKey implements saltpack.Keyring.
func (k *SimpleKeyring) LookupBoxSecretKey(kids [][]byte) (int, saltpack.BoxSecretKey) {
	for i, kid := range kids {
		if sk, ok := k.secretKeys[keyToString(kid)]; ok {
			return i, sk
		}
	}
	return -1, nil
}

// LookupBoxPublicKey implements saltpack.Keyring.
func (k *SimpleKeyring) LookupBoxPublicKey(kid []byte) saltpack.BoxPublicKey {
	id := keyToString(kid)
	if pk, ok := k.publicKeys[id]; ok {
		return pk
	}
	if sk, ok := k.secretKeys[id]; ok {
		return sk.GetPublicKey()
	}
	return nil
}

// ImportBoxSecretKey implements saltpack.Keyring.
func (k *SimpleKeyring) ImportBoxSecretKey(keyBytes []byte) saltpack.BoxSecretKey {
	if len(keyBytes) != 32 {
		return nil
	}
	var arr [32]byte
	copy(arr[:], keyBytes)
	return &naclBoxSecretKey{key: arr}
}

// GetAllBoxSecretKeys implements saltpack.Keyring.
func (k *SimpleKeyring) GetAllBoxSecretKeys() []saltpack.BoxSecretKey {
	out := make([]saltpack.BoxSecretKey, 0, len(k.secretKeys))
	for _, sk := range k.secretKeys {
		out = append(out, sk)
	}
	return out
}

// ImportBoxEphemeralKey implements saltpack.Keyring.
func (k *SimpleKeyring) ImportBoxEphemeralKey(kid []byte) saltpack.BoxPublicKey {
	if len(kid) != 32 {
		return nil
	}
	var arr [32]byte
	copy(arr[:], kid)
	return &naclBoxPublicKey{key: arr}
}

// CreateEphemeralKey implements saltpack.EphemeralKeyCreator.
func (k *SimpleKeyring) CreateEphemeralKey() (saltpack.BoxSecretKey, error) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	pk := &naclBoxPublicKey{key: *pub}
	return &naclBoxSecretKey{key: *priv, publicKey: pk}, nil
}

// RecipientPublicKeys returns every public key registered on the keyring,
// for use as the receivers list to saltpack.EncryptArmor62Seal.
func (k *SimpleKeyring) RecipientPublicKeys() []saltpack.BoxPublicKey {
	out := make([]saltpack.BoxPublicKey, 0, len(k.publicKeys))
	for _, pk := range k.publicKeys {
		out = append(out, pk)
	}
	return out
}

type naclBoxPublicKey struct {
	key [32]byte
}

// NewPublicKey wraps 32 raw public-key bytes as a saltpack.BoxPublicKey.
func NewPublicKey(keyBytes []byte) (saltpack.BoxPublicKey, error) {
	if len(keyBytes) != 32 {
		return nil, fmt.Errorf("encryption: public key must be 32 bytes, got %d", len(keyBytes))
	}
	var arr [32]byte
	copy(arr[:], keyBytes)
	return &naclBoxPublicKey{key: arr}, nil
}

func (k *naclBoxPublicKey) ToKID() []byte { return k.key[:] }

func (k *naclBoxPublicKey) ToRawBoxKeyPointer() *saltpack.RawBoxKey {
	return (*saltpack.RawBoxKey)(&k.key)
}

func (k *naclBoxPublicKey) CreateEphemeralKey() (saltpack.BoxSecretKey, error) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &naclBoxSecretKey{key: *priv, publicKey: &naclBoxPublicKey{key: *pub}}, nil
}

func (k *naclBoxPublicKey) HideIdentity() bool { return false }

type naclBoxSecretKey struct {
	key       [32]byte
	publicKey *naclBoxPublicKey
}

// NewSecretKey wraps 32 raw secret-key bytes as a saltpack.BoxSecretKey,
// deriving the corresponding public key via curve25519 scalar
// multiplication.
func NewSecretKey(keyBytes []byte) (saltpack.BoxSecretKey, error) {
	if len(keyBytes) != 32 {
		return nil, fmt.Errorf("encryption: secret key must be 32 bytes, got %d", len(keyBytes))
	}
	var arr [32]byte
	copy(arr[:], keyBytes)
	var pub [32]byte
	curve25519.ScalarBaseMult(&pub, &arr)
	return &naclBoxSecretKey{key: arr, publicKey: &naclBoxPublicKey{key: pub}}, nil
}

func (k *naclBoxSecretKey) GetPublicKey() saltpack.BoxPublicKey {
	if k.publicKey == nil {
		var pub [32]byte
		curve25519.ScalarBaseMult(&pub, &k.key)
		k.publicKey = &naclBoxPublicKey{key: pub}
	}
	return k.publicKey
}

func (k *naclBoxSecretKey) ToRawBoxKeyPointer() *saltpack.RawBoxKey {
	return (*saltpack.RawBoxKey)(&k.key)
}

func (k *naclBoxSecretKey) Precompute(pub saltpack.BoxPublicKey) saltpack.BoxPrecomputedSharedKey {
	var shared [32]byte
	box.Precompute(&shared, (*[32]byte)(pub.ToRawBoxKeyPointer()), &k.key)
	return &naclBoxPrecomputedSharedKey{key: shared}
}

func (k *naclBoxSecretKey) Box(receiver saltpack.BoxPublicKey, nonce saltpack.Nonce, msg []byte) []byte {
	n := (*[24]byte)(&nonce)
	return box.Seal(nil, msg, n, (*[32]byte)(receiver.ToRawBoxKeyPointer()), &k.key)
}

func (k *naclBoxSecretKey) Unbox(sender saltpack.BoxPublicKey, nonce saltpack.Nonce, msg []byte) ([]byte, error) {
	n := (*[24]byte)(&nonce)
	out, ok := box.Open(nil, msg, n, (*[32]byte)(sender.ToRawBoxKeyPointer()), &k.key)
	if !ok {
		return nil, fmt.Errorf("encryption: unbox failed")
	}
	return out, nil
}

type naclBoxPrecomputedSharedKey struct {
	key [32]byte
}

func (k *naclBoxPrecomputedSharedKey) ToRawBoxKeyPointer() *saltpack.RawBoxKey {
	return (*saltpack.RawBoxKey)(&k.key)
}

func (k *naclBoxPrecomputedSharedKey) Unbox(nonce saltpack.Nonce, msg []byte) ([]byte, error) {
	n := (*[24]byte)(&nonce)
	out, ok := box.OpenAfterPrecomputation(nil, msg, n, (*[32]byte)(&k.key))
	if !ok {
		return nil, fmt.Errorf("encryption: unbox failed")
	}
	return out, nil
}

func (k *naclBoxPrecomputedSharedKey) Box(nonce saltpack.Nonce, msg []byte) []byte {
	n := (*[24]byte)(&nonce)
	return box.SealAfterPrecomputation(nil, msg, n, (*[32]byte)(&k.key))
}

// GenerateKeyPair generates a new random NaCl box key pair.
func GenerateKeyPair() (*KeyPair, error) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("encryption: generate key pair: %w", err)
	}
	pk := &naclBoxPublicKey{key: *pub}
	return &KeyPair{
		PublicKey:  pk,
		SecretKey:  &naclBoxSecretKey{key: *priv, publicKey: pk},
		Identifier: pub[:],
	}, nil
}

func keyToString(kid []byte) string { return hex.EncodeToString(kid) }
