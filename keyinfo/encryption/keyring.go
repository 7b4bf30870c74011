package encryption

import (
	"fmt"
	"sync"
	"time"

	"github.com/keybase/saltpack"
)

// SecretKeyLoader fetches the raw secret key material for a given key name
// (e.g. from a filesystem path, a secrets manager, or an environment
// variable), leaving KeyringLoader to handle caching.
type SecretKeyLoader func(name string) (saltpack.BoxSecretKey, error)

type cachedKey struct {
	secretKey saltpack.BoxSecretKey
	expiresAt time.Time
}

// KeyringLoader loads and TTL-caches recipient secret keys, handing back a
// ready-to-use saltpack.Keyring for each EncryptedKey decryption. Keys are
// loaded lazily on first use and re-fetched once their entry expires.
type KeyringLoader struct {
	mu    sync.RWMutex
	cache map[string]*cachedKey
	ttl   time.Duration
	load  SecretKeyLoader
}

// KeyringLoaderConfig configures a KeyringLoader.
type KeyringLoaderConfig struct {
	// TTL is how long a loaded key stays cached. Zero means 1 hour.
	TTL time.Duration
	// Load fetches a named secret key on a cache miss. Required.
	Load SecretKeyLoader
}

// NewKeyringLoader creates a KeyringLoader from config.
func NewKeyringLoader(config *KeyringLoaderConfig) (*KeyringLoader, error) {
	if config == nil || config.Load == nil {
		return nil, fmt.Errorf("encryption: KeyringLoaderConfig.Load is required")
	}
	ttl := config.TTL
	if ttl == 0 {
		ttl = time.Hour
	}
	return &KeyringLoader{
		cache: make(map[string]*cachedKey),
		ttl:   ttl,
		load:  config.Load,
	}, nil
}

// LoadSecretKey returns the secret key named name, loading and caching it on
// first use.
func (kl *KeyringLoader) LoadSecretKey(name string) (saltpack.BoxSecretKey, error) {
	if name == "" {
		return nil, fmt.Errorf("encryption: key name cannot be empty")
	}

	kl.mu.Lock()
	defer kl.mu.Unlock()

	if cached, ok := kl.cache[name]; ok {
		if time.Now().Before(cached.expiresAt) {
			return cached.secretKey, nil
		}
		delete(kl.cache, name)
	}

	secretKey, err := kl.load(name)
	if err != nil {
		return nil, fmt.Errorf("encryption: load secret key %q: %w", name, err)
	}
	if secretKey == nil {
		return nil, fmt.Errorf("encryption: loader returned nil secret key for %q", name)
	}

	kl.cache[name] = &cachedKey{secretKey: secretKey, expiresAt: time.Now().Add(kl.ttl)}
	return secretKey, nil
}

// LoadKeyring returns a saltpack.Keyring holding the secret key named name,
// loading and caching it on first use.
func (kl *KeyringLoader) LoadKeyring(name string) (saltpack.Keyring, error) {
	secretKey, err := kl.LoadSecretKey(name)
	if err != nil {
		return nil, err
	}
	keyring := NewSimpleKeyring()
	keyring.AddKey(secretKey)
	return keyring, nil
}

// LoadKeyringForNames merges the secret keys for every name in names into a
// single keyring, so saltpack.Dearmor62DecryptOpen can try each in turn.
func (kl *KeyringLoader) LoadKeyringForNames(names []string) (saltpack.Keyring, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("encryption: at least one key name is required")
	}
	keyring := NewSimpleKeyring()
	for _, name := range names {
		secretKey, err := kl.LoadSecretKey(name)
		if err != nil {
			return nil, err
		}
		keyring.AddKey(secretKey)
	}
	return keyring, nil
}

// Invalidate drops name's cached entry, forcing a reload on next use.
func (kl *KeyringLoader) Invalidate(name string) {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	delete(kl.cache, name)
}
