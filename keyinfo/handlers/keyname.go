package handlers

import (
	"gocloud.dev/gcerrors"

	"github.com/xmlsecgo/keyinfo"
)

// keyNameHandler resolves and writes <KeyName> elements.
type keyNameHandler struct{}

var keyNameDescriptor = &keyinfo.Descriptor{
	Name:              "KeyName",
	Usage:             keyinfo.UsageKeyInfoChild,
	DataNodeLocalName: "KeyName",
	DataNodeNamespace: NamespaceDSig,
}

func (keyNameHandler) Descriptor() *keyinfo.Descriptor { return keyNameDescriptor }

// XMLRead extracts the child's trimmed text, consults the keys manager when
// the key has no value yet, and enforces that a pre-existing key name
// agrees with this one.
func (keyNameHandler) XMLRead(ctx *keyinfo.Context, node keyinfo.XMLNode, key *keyinfo.Key) error {
	const op = "KeyName.XMLRead"

	name := node.Text()
	if name == "" {
		return newError(op, gcerrors.InvalidArgument, "KeyName content is empty")
	}

	if !key.IsValid() && ctx.KeysManager != nil {
		found, ok, err := ctx.KeysManager.FindKey(ctx, name, &ctx.KeyReq)
		if err != nil {
			return wrapError(op, gcerrors.Unknown, "keys manager lookup failed", err)
		}
		if ok {
			key.Empty()
			key.CopyFrom(found)
			key.SetName(name)
		}
	}

	if existing := key.Name(); existing != "" && existing != name {
		return newError(op, gcerrors.InvalidArgument, "invalid key data: KeyName does not match existing key name")
	}
	if key.Name() == "" {
		key.SetName(name)
	}
	return nil
}

// XMLWrite is a no-op if the key has no name or the template node already
// carries content; otherwise it serializes the name as the node's text.
func (keyNameHandler) XMLWrite(ctx *keyinfo.Context, node keyinfo.XMLNode, key *keyinfo.Key) error {
	if key.Name() == "" {
		return nil
	}
	if !node.IsEmpty() {
		return nil
	}
	node.SetText(key.Name())
	return nil
}

func init() { keyinfo.Register(keyNameHandler{}) }
