package encryption

import (
	"fmt"

	"github.com/keybase/saltpack"
)

// SenderKeyConfig selects the originator identity SaltpackEngine signs
// outgoing EncryptedKey ciphertext with.
type SenderKeyConfig struct {
	// SecretKey is the originator's secret key. Nil means an anonymous
	// sender, which saltpack.Seal and friends accept directly.
	SecretKey saltpack.BoxSecretKey
	// AllowAnonymous permits SecretKey to be nil. If false and SecretKey is
	// nil, resolveSenderKey reports an error instead of sending anonymously.
	AllowAnonymous bool
}

func resolveSenderKey(cfg SenderKeyConfig) (saltpack.BoxSecretKey, error) {
	if cfg.SecretKey != nil {
		if err := validateSecretKey(cfg.SecretKey); err != nil {
			return nil, fmt.Errorf("encryption: sender key: %w", err)
		}
		return cfg.SecretKey, nil
	}
	if !cfg.AllowAnonymous {
		return nil, fmt.Errorf("encryption: no sender key configured and anonymous sending is disabled")
	}
	return nil, nil
}

func validateSecretKey(key saltpack.BoxSecretKey) error {
	if key == nil {
		return fmt.Errorf("secret key is nil")
	}
	pub := key.GetPublicKey()
	if pub == nil {
		return fmt.Errorf("secret key did not yield a public key")
	}
	if len(pub.ToKID()) != 32 {
		return fmt.Errorf("secret key's public key has unexpected length %d", len(pub.ToKID()))
	}
	return nil
}
