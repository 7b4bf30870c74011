package encryption

import (
	"encoding/base64"
	"testing"

	"github.com/beevik/etree"
	"github.com/keybase/saltpack"

	"github.com/xmlsecgo/keyinfo/xmlutil"
)

func newEncryptedKeyNode() (*etree.Document, *xmlutil.Element) {
	doc := etree.NewDocument()
	el := doc.CreateElement("EncryptedKey")
	return doc, xmlutil.Wrap(el)
}

func newLoaderForName(t *testing.T, name string, pair *KeyPair) *KeyringLoader {
	t.Helper()
	loader, err := NewKeyringLoader(&KeyringLoaderConfig{Load: func(n string) (saltpack.BoxSecretKey, error) {
		if n != name {
			t.Fatalf("unexpected key name requested: %q", n)
		}
		return pair.SecretKey, nil
	}})
	if err != nil {
		t.Fatal(err)
	}
	return loader
}

func TestSaltpackEngineBinaryEncryptThenDecryptToBufferRoundTrip(t *testing.T) {
	recipient, err := GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}

	writer := &SaltpackEngine{
		Keyring:        newLoaderForName(t, "recipient", recipient),
		RecipientNames: []string{"recipient"},
		Sender:         SenderKeyConfig{AllowAnonymous: true},
		Version:        saltpack.Version2(),
	}

	_, node := newEncryptedKeyNode()
	if err := writer.BinaryEncrypt(nil, node, []byte("the shared secret")); err != nil {
		t.Fatal(err)
	}

	cipherValue := node.Children()[0].Children()[0]
	if cipherValue.LocalName() != "CipherValue" || cipherValue.Text() == "" {
		t.Fatal("expected BinaryEncrypt to populate CipherData/CipherValue")
	}

	reader := &SaltpackEngine{
		Keyring:        newLoaderForName(t, "recipient", recipient),
		RecipientNames: []string{"recipient"},
	}
	plaintext, err := reader.DecryptToBuffer(nil, node)
	if err != nil {
		t.Fatal(err)
	}
	if string(plaintext) != "the shared secret" {
		t.Fatalf("unexpected decrypted plaintext %q", plaintext)
	}
}

func TestSaltpackEngineDecryptToBufferFailsForWrongRecipient(t *testing.T) {
	recipient, err := GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	other, err := GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}

	writer := &SaltpackEngine{
		Keyring:        newLoaderForName(t, "recipient", recipient),
		RecipientNames: []string{"recipient"},
		Sender:         SenderKeyConfig{AllowAnonymous: true},
		Version:        saltpack.Version2(),
	}
	_, node := newEncryptedKeyNode()
	if err := writer.BinaryEncrypt(nil, node, []byte("secret")); err != nil {
		t.Fatal(err)
	}

	reader := &SaltpackEngine{
		Keyring:        newLoaderForName(t, "other", other),
		RecipientNames: []string{"other"},
	}
	if _, err := reader.DecryptToBuffer(nil, node); err == nil {
		t.Fatal("expected decryption to fail for a key that wasn't a recipient")
	}
}

func TestSaltpackEngineDerivedKeyGenerateFromOriginatorKeyInfo(t *testing.T) {
	peer, err := GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}

	_, node := newEncryptedKeyNode()
	originatorKeyInfo := node.CreateChild("OriginatorKeyInfo", "")
	keyValue := originatorKeyInfo.CreateChild("KeyValue", "")
	keyValue.SetText(base64.StdEncoding.EncodeToString(peer.PublicKey.ToKID()))

	engine := &SaltpackEngine{Ephemeral: NewEphemeralKeyCreator()}
	key, err := engine.DerivedKeyGenerate(nil, node)
	if err != nil {
		t.Fatal(err)
	}
	if len(key.Value()) != 32 {
		t.Fatalf("expected a 32-byte shared secret, got %d bytes", len(key.Value()))
	}
}

func TestSaltpackEngineDerivedKeyGenerateMissingPeerKeyIsError(t *testing.T) {
	_, node := newEncryptedKeyNode()
	engine := &SaltpackEngine{Ephemeral: NewEphemeralKeyCreator()}
	if _, err := engine.DerivedKeyGenerate(nil, node); err == nil {
		t.Fatal("expected error when no peer public key is present")
	}
}

func TestSaltpackEngineAgreementMethodXMLWriteWritesOriginatorPublicKey(t *testing.T) {
	_, node := newEncryptedKeyNode()
	engine := &SaltpackEngine{Ephemeral: NewEphemeralKeyCreator()}
	if err := engine.AgreementMethodXMLWrite(nil, node); err != nil {
		t.Fatal(err)
	}

	children := node.Children()
	if len(children) != 1 || children[0].LocalName() != "OriginatorKeyInfo" {
		t.Fatalf("expected a single OriginatorKeyInfo child, got %v", children)
	}
	keyValueChildren := children[0].Children()
	if len(keyValueChildren) != 1 || keyValueChildren[0].LocalName() != "KeyValue" {
		t.Fatal("expected OriginatorKeyInfo to contain a KeyValue child")
	}
	raw, err := base64.StdEncoding.DecodeString(keyValueChildren[0].Text())
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) != 32 {
		t.Fatalf("expected a 32-byte public key, got %d bytes", len(raw))
	}
}

func TestSaltpackEngineAgreementMethodGenerateSameAsDerivedKey(t *testing.T) {
	peer, err := GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	_, node := newEncryptedKeyNode()
	originatorKeyInfo := node.CreateChild("OriginatorKeyInfo", "")
	keyValue := originatorKeyInfo.CreateChild("KeyValue", "")
	keyValue.SetText(base64.StdEncoding.EncodeToString(peer.PublicKey.ToKID()))

	engine := &SaltpackEngine{Ephemeral: NewEphemeralKeyCreator()}
	key, err := engine.AgreementMethodGenerate(nil, node)
	if err != nil {
		t.Fatal(err)
	}
	if len(key.Value()) != 32 {
		t.Fatalf("expected a 32-byte shared secret, got %d bytes", len(key.Value()))
	}
}

func TestSaltpackEngineBinaryEncryptRequiresRecipients(t *testing.T) {
	_, node := newEncryptedKeyNode()
	engine := &SaltpackEngine{Ephemeral: NewEphemeralKeyCreator()}
	if err := engine.BinaryEncrypt(nil, node, []byte("secret")); err == nil {
		t.Fatal("expected error when no recipient names are configured")
	}
}

func TestSaltpackEngineBinaryEncryptRejectsEmptyPlaintext(t *testing.T) {
	_, node := newEncryptedKeyNode()
	engine := &SaltpackEngine{RecipientNames: []string{"alice"}}
	if err := engine.BinaryEncrypt(nil, node, nil); err == nil {
		t.Fatal("expected error for empty plaintext")
	}
}

func TestSaltpackEngineDecryptToBufferRequiresCipherData(t *testing.T) {
	_, node := newEncryptedKeyNode()
	engine := &SaltpackEngine{}
	if _, err := engine.DecryptToBuffer(nil, node); err == nil {
		t.Fatal("expected error when CipherData is missing")
	}
}
