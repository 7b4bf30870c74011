package encryption

import (
	"encoding/hex"
	"fmt"

	"github.com/keybase/saltpack"
)

// MessageInfo summarizes a saltpack.MessageKeyInfo: which recipient key
// decrypted the message and, if known, who sent it.
type MessageInfo struct {
	ReceiverKID       []byte
	SenderKID         []byte
	IsAnonymousSender bool
}

// ParseMessageKeyInfo extracts MessageInfo from the saltpack.MessageKeyInfo
// returned by Dearmor62DecryptOpen, for diagnostic reporting of an
// EncryptedKey decryption.
func ParseMessageKeyInfo(info *saltpack.MessageKeyInfo) (*MessageInfo, error) {
	if info == nil {
		return nil, fmt.Errorf("encryption: MessageKeyInfo is nil")
	}
	if info.ReceiverKey == nil {
		return nil, fmt.Errorf("encryption: MessageKeyInfo.ReceiverKey is nil")
	}
	receiverPub := info.ReceiverKey.GetPublicKey()
	if receiverPub == nil {
		return nil, fmt.Errorf("encryption: could not derive receiver public key")
	}

	out := &MessageInfo{
		ReceiverKID:       receiverPub.ToKID(),
		IsAnonymousSender: info.SenderIsAnon,
	}
	if !info.SenderIsAnon && info.SenderKey != nil {
		out.SenderKID = info.SenderKey.ToKID()
	}
	return out, nil
}

// String renders a MessageInfo for logs.
func (m *MessageInfo) String() string {
	if m == nil {
		return "<nil>"
	}
	if m.IsAnonymousSender {
		return fmt.Sprintf("receiver=%s sender=<anonymous>", hex.EncodeToString(m.ReceiverKID))
	}
	return fmt.Sprintf("receiver=%s sender=%s", hex.EncodeToString(m.ReceiverKID), hex.EncodeToString(m.SenderKID))
}
