// Package keydata provides one illustrative inner key-material handler,
// RawKeyValue: a base64-text symmetric octet string. The core deliberately
// stays agnostic of any specific key format; this package exists so
// KeyValue/RetrievalMethod dispatch can be exercised end to end without
// standing up X.509/PGP/SPKI decoding.
package keydata

import (
	"encoding/base64"
	"strings"

	"gocloud.dev/gcerrors"

	"github.com/xmlsecgo/keyinfo"
)

// Name is this handler's registry name and HandlerID tag.
const Name = "RawKeyValue"

// Namespace is the namespace RawKeyValue elements are matched in, the same
// ds namespace handlers.KeyValue lives in.
const Namespace = "http://www.w3.org/2000/09/xmldsig#"

// Handler reads/writes a <RawKeyValue>base64</RawKeyValue> element and
// accepts the same octets directly when fetched as a RetrievalMethod
// binary result.
type Handler struct{}

var descriptor = &keyinfo.Descriptor{
	Name:              Name,
	Usage:             keyinfo.UsageKeyValueChild | keyinfo.UsageKeyValueNodeWrite | keyinfo.UsageRetrievalMethodXMLResult | keyinfo.UsageRetrievalMethodBinResult,
	Href:              "http://www.w3.org/2001/04/xmlenc#RawKeyValue",
	DataNodeLocalName: "RawKeyValue",
	DataNodeNamespace: Namespace,
}

func (Handler) Descriptor() *keyinfo.Descriptor { return descriptor }

func (Handler) XMLRead(ctx *keyinfo.Context, node keyinfo.XMLNode, key *keyinfo.Key) error {
	const op = "RawKeyValue.XMLRead"
	raw, err := decode(node.Text())
	if err != nil {
		return &keyinfo.Error{Op: op, Message: "invalid base64 content", Code: gcerrors.InvalidArgument, Err: err}
	}
	if len(raw) == 0 {
		return &keyinfo.Error{Op: op, Message: "RawKeyValue content is empty", Code: gcerrors.InvalidArgument}
	}
	key.SetValue(keyinfo.HandlerID(Name), keyinfo.KeyUsageAny, raw)
	return nil
}

func (Handler) XMLWrite(ctx *keyinfo.Context, node keyinfo.XMLNode, key *keyinfo.Key) error {
	if !key.IsValid() {
		return nil
	}
	node.SetText(base64.StdEncoding.EncodeToString(key.Value()))
	return nil
}

// BinRead implements keyinfo.BinReader for RetrievalMethod binary results
// and EncryptedKey plaintexts: the raw octets are the key value verbatim.
func (Handler) BinRead(ctx *keyinfo.Context, data []byte, key *keyinfo.Key) error {
	const op = "RawKeyValue.BinRead"
	if len(data) == 0 {
		return &keyinfo.Error{Op: op, Message: "binary result is empty", Code: gcerrors.InvalidArgument}
	}
	key.SetValue(keyinfo.HandlerID(Name), keyinfo.KeyUsageAny, data)
	return nil
}

// BinWrite implements keyinfo.BinWriter for EncryptedKey write: the key
// value is sealed verbatim as plaintext.
func (Handler) BinWrite(ctx *keyinfo.Context, key *keyinfo.Key) ([]byte, error) {
	const op = "RawKeyValue.BinWrite"
	if !key.IsValid() {
		return nil, &keyinfo.Error{Op: op, Message: "key has no value to serialize", Code: gcerrors.InvalidArgument}
	}
	return append([]byte(nil), key.Value()...), nil
}

func decode(text string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(strings.TrimSpace(text))
}

func init() { keyinfo.Register(Handler{}) }
