package handlers

import (
	"gocloud.dev/gcerrors"

	"github.com/xmlsecgo/keyinfo"
)

// keyValueHandler dispatches <KeyValue> to its single inner key-value handler.
type keyValueHandler struct{}

var keyValueDescriptor = &keyinfo.Descriptor{
	Name:              "KeyValue",
	Usage:             keyinfo.UsageKeyInfoChild,
	DataNodeLocalName: "KeyValue",
	DataNodeNamespace: NamespaceDSig,
}

func (keyValueHandler) Descriptor() *keyinfo.Descriptor { return keyValueDescriptor }

// XMLRead expects zero-or-one element child; a second child is always an
// error. An unresolvable child is ignored unless
// FlagKeyValueStopOnUnknownChild is set.
func (keyValueHandler) XMLRead(ctx *keyinfo.Context, node keyinfo.XMLNode, key *keyinfo.Key) error {
	const op = "KeyValue.XMLRead"

	children := node.Children()
	if len(children) == 0 {
		return nil
	}
	if len(children) > 1 {
		return newError(op, gcerrors.InvalidArgument, "KeyValue has more than one element child")
	}

	child := children[0]
	h := ctx.FindByNode(child.LocalName(), child.NamespaceURI(), keyinfo.UsageKeyValueChild)
	if h == nil {
		if ctx.Flags&keyinfo.FlagKeyValueStopOnUnknownChild != 0 {
			return newError(op, gcerrors.InvalidArgument, "unknown KeyValue child "+child.LocalName())
		}
		return nil
	}
	if err := h.XMLRead(ctx, child, key); err != nil {
		return wrapError(op, keyinfo.ErrorCode(err), "inner handler failed", err)
	}
	return nil
}

// XMLWrite emits exactly one child, named by the key's handler's
// descriptor, when the key is valid, the handler supports KeyValue write,
// the allow-list (if any) permits it, and the requirement matches.
func (keyValueHandler) XMLWrite(ctx *keyinfo.Context, node keyinfo.XMLNode, key *keyinfo.Key) error {
	if !key.IsValid() {
		return nil
	}
	h := ctx.Registry.FindByName(string(key.HandlerID()))
	if h == nil {
		return nil
	}
	d := h.Descriptor()
	if d.Usage&keyinfo.UsageKeyValueNodeWrite == 0 {
		return nil
	}
	if len(ctx.EnabledKeyData) > 0 && !contains(ctx.EnabledKeyData, d.Name) {
		return nil
	}
	if !ctx.KeyReq.Matches(key) {
		return nil
	}

	node.ClearChildren()
	child := node.CreateChild(d.DataNodeLocalName, d.DataNodeNamespace)
	return h.XMLWrite(ctx, child, key)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func init() { keyinfo.Register(keyValueHandler{}) }
