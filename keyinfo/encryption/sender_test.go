package encryption

import "testing"

func TestResolveSenderKeyAnonymousAllowed(t *testing.T) {
	key, err := resolveSenderKey(SenderKeyConfig{AllowAnonymous: true})
	if err != nil {
		t.Fatal(err)
	}
	if key != nil {
		t.Fatal("expected a nil sender key for anonymous sending")
	}
}

func TestResolveSenderKeyAnonymousDisallowed(t *testing.T) {
	if _, err := resolveSenderKey(SenderKeyConfig{}); err == nil {
		t.Fatal("expected error when no sender key is configured and anonymous sending is disabled")
	}
}

func TestResolveSenderKeyReturnsConfiguredKey(t *testing.T) {
	pair, err := GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	key, err := resolveSenderKey(SenderKeyConfig{SecretKey: pair.SecretKey})
	if err != nil {
		t.Fatal(err)
	}
	if key != pair.SecretKey {
		t.Fatal("expected resolveSenderKey to return the configured secret key")
	}
}

func TestValidateSecretKeyRejectsNil(t *testing.T) {
	if err := validateSecretKey(nil); err == nil {
		t.Fatal("expected error for a nil secret key")
	}
}
