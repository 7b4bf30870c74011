package encryption

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/keybase/saltpack"

	"github.com/xmlsecgo/keyinfo"
)

// SaltpackEngine is the concrete keyinfo.Engine: it decrypts <EncryptedKey>
// ciphertext and seals key octets into one with Saltpack, and derives keys
// for <xenc11:DerivedKey>/<xenc:AgreementMethod> via NaCl box ECDH.
type SaltpackEngine struct {
	Keyring        *KeyringLoader
	RecipientNames []string
	Sender         SenderKeyConfig
	Version        saltpack.Version
	Ephemeral      *EphemeralKeyCreator
}

// NewSaltpackEngine returns a SaltpackEngine configured to decrypt as any of
// recipientNames and, if sender.SecretKey is set, to sign what it seals.
func NewSaltpackEngine(keyring *KeyringLoader, recipientNames []string, sender SenderKeyConfig) *SaltpackEngine {
	return &SaltpackEngine{
		Keyring:        keyring,
		RecipientNames: recipientNames,
		Sender:         sender,
		Version:        saltpack.Version2(),
		Ephemeral:      NewEphemeralKeyCreator(),
	}
}

// DecryptToBuffer implements keyinfo.Engine. It reads the base64 octets out
// of encryptedKeyNode's CipherData/CipherValue child, dearmors and opens
// them against the engine's recipient keyring, and returns the plaintext
// key octets.
func (e *SaltpackEngine) DecryptToBuffer(ctx *keyinfo.Context, encryptedKeyNode keyinfo.XMLNode) ([]byte, error) {
	cipherValue, err := findCipherValue(encryptedKeyNode)
	if err != nil {
		return nil, err
	}

	armored := strings.TrimSpace(cipherValue.Text())
	if armored == "" {
		return nil, fmt.Errorf("encryption: CipherValue is empty")
	}

	keyring, err := e.Keyring.LoadKeyringForNames(e.RecipientNames)
	if err != nil {
		return nil, fmt.Errorf("encryption: build recipient keyring: %w", err)
	}

	_, plaintext, _, err := saltpack.Dearmor62DecryptOpen(saltpack.CheckKnownMajorVersion, armored, keyring)
	if err != nil {
		return nil, fmt.Errorf("encryption: decrypt EncryptedKey: %w", err)
	}
	return plaintext, nil
}

// BinaryEncrypt implements keyinfo.Engine. It seals plaintext for the
// configured recipients and writes the armored result as
// encryptedKeyNode's CipherData/CipherValue text.
func (e *SaltpackEngine) BinaryEncrypt(ctx *keyinfo.Context, encryptedKeyNode keyinfo.XMLNode, plaintext []byte) error {
	if len(plaintext) == 0 {
		return fmt.Errorf("encryption: plaintext cannot be empty")
	}

	receivers, err := e.recipientPublicKeys()
	if err != nil {
		return err
	}

	sender, err := resolveSenderKey(e.Sender)
	if err != nil {
		return err
	}

	armored, err := saltpack.EncryptArmor62Seal(e.Version, plaintext, sender, receivers, "")
	if err != nil {
		return fmt.Errorf("encryption: seal EncryptedKey: %w", err)
	}

	cipherData := ensureChild(encryptedKeyNode, "CipherData", encryptedKeyNode.NamespaceURI())
	cipherValue := ensureChild(cipherData, "CipherValue", encryptedKeyNode.NamespaceURI())
	cipherValue.SetText(armored)
	return nil
}

// DerivedKeyGenerate implements keyinfo.Engine. It reads the peer's public
// key octets from node's OriginatorKeyInfo/KeyValue child and combines them
// with a freshly generated local
// ephemeral key to derive a shared-secret key.
func (e *SaltpackEngine) DerivedKeyGenerate(ctx *keyinfo.Context, node keyinfo.XMLNode) (*keyinfo.Key, error) {
	peerPub, err := findPeerPublicKey(node)
	if err != nil {
		return nil, err
	}

	pair, err := e.Ephemeral.GenerateKey()
	if err != nil {
		return nil, err
	}
	defer pair.Zero()

	shared := DeriveSharedSecret(pair.SecretKey, peerPub)

	key := keyinfo.NewKey()
	key.SetValue("derived-key", keyinfo.KeyUsageAny, shared)
	return key, nil
}

// AgreementMethodGenerate implements keyinfo.Engine. Same ECDH derivation as
// DerivedKeyGenerate, modeling AgreementMethod's key-agreement semantics.
func (e *SaltpackEngine) AgreementMethodGenerate(ctx *keyinfo.Context, node keyinfo.XMLNode) (*keyinfo.Key, error) {
	return e.DerivedKeyGenerate(ctx, node)
}

// AgreementMethodXMLWrite implements keyinfo.Engine. It generates a fresh
// ephemeral key pair and writes the public half into node's
// OriginatorKeyInfo/KeyValue child, base64-encoded, so a peer can complete
// the exchange.
func (e *SaltpackEngine) AgreementMethodXMLWrite(ctx *keyinfo.Context, node keyinfo.XMLNode) error {
	pair, err := e.Ephemeral.GenerateKey()
	if err != nil {
		return err
	}
	defer pair.Zero()

	originatorKeyInfo := ensureChild(node, "OriginatorKeyInfo", node.NamespaceURI())
	keyValue := ensureChild(originatorKeyInfo, "KeyValue", node.NamespaceURI())
	keyValue.SetText(base64.StdEncoding.EncodeToString(pair.PublicKey[:]))
	return nil
}

func (e *SaltpackEngine) recipientPublicKeys() ([]saltpack.BoxPublicKey, error) {
	if len(e.RecipientNames) == 0 {
		return nil, fmt.Errorf("encryption: at least one recipient name is required")
	}
	out := make([]saltpack.BoxPublicKey, 0, len(e.RecipientNames))
	for _, name := range e.RecipientNames {
		sk, err := e.Keyring.LoadSecretKey(name)
		if err != nil {
			return nil, fmt.Errorf("encryption: resolve recipient %q: %w", name, err)
		}
		out = append(out, sk.GetPublicKey())
	}
	return out, nil
}

func findCipherValue(node keyinfo.XMLNode) (keyinfo.XMLNode, error) {
	cipherData := findChild(node, "CipherData")
	if cipherData == nil {
		return nil, fmt.Errorf("encryption: EncryptedKey has no CipherData child")
	}
	cipherValue := findChild(cipherData, "CipherValue")
	if cipherValue == nil {
		return nil, fmt.Errorf("encryption: CipherData has no CipherValue child")
	}
	return cipherValue, nil
}

func findPeerPublicKey(node keyinfo.XMLNode) ([32]byte, error) {
	var zero [32]byte

	var keyValue keyinfo.XMLNode
	if originatorKeyInfo := findChild(node, "OriginatorKeyInfo"); originatorKeyInfo != nil {
		keyValue = findChild(originatorKeyInfo, "KeyValue")
	}
	if keyValue == nil {
		keyValue = findChild(node, "OriginatorPublicKey")
	}
	if keyValue == nil {
		return zero, fmt.Errorf("encryption: no peer public key found (expected OriginatorKeyInfo/KeyValue)")
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(keyValue.Text()))
	if err != nil {
		return zero, fmt.Errorf("encryption: decode peer public key: %w", err)
	}
	if len(raw) != 32 {
		return zero, fmt.Errorf("encryption: peer public key must be 32 bytes, got %d", len(raw))
	}
	var out [32]byte
	copy(out[:], raw)
	return out, nil
}

func findChild(node keyinfo.XMLNode, localName string) keyinfo.XMLNode {
	for _, c := range node.Children() {
		if c.LocalName() == localName {
			return c
		}
	}
	return nil
}

func ensureChild(node keyinfo.XMLNode, localName, namespace string) keyinfo.XMLNode {
	if c := findChild(node, localName); c != nil {
		return c
	}
	return node.CreateChild(localName, namespace)
}
