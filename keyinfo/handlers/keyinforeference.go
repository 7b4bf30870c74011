package handlers

import (
	"gocloud.dev/gcerrors"

	"github.com/xmlsecgo/keyinfo"
)

// keyInfoReferenceHandler is the KeyInfoReference handler: mirrors
// RetrievalMethod but simpler, with a mandatory URI, no Transforms, and a
// result that must be (or be rooted at) a <KeyInfo> element.
type keyInfoReferenceHandler struct{}

var keyInfoReferenceDescriptor = &keyinfo.Descriptor{
	Name:              "KeyInfoReference",
	Usage:             keyinfo.UsageKeyInfoChild,
	DataNodeLocalName: "KeyInfoReference",
	DataNodeNamespace: NamespaceDSig11,
}

func (keyInfoReferenceHandler) Descriptor() *keyinfo.Descriptor { return keyInfoReferenceDescriptor }

func (keyInfoReferenceHandler) XMLRead(ctx *keyinfo.Context, node keyinfo.XMLNode, key *keyinfo.Key) error {
	const op = "KeyInfoReference.XMLRead"

	if err := ctx.EnterKeyInfoReference(op); err != nil {
		return err
	}

	uri, ok := node.Attr("URI")
	if !ok || uri == "" {
		return newError(op, gcerrors.InvalidArgument, "KeyInfoReference has no URI attribute")
	}
	if len(node.Children()) > 0 {
		return newError(op, gcerrors.InvalidArgument, "KeyInfoReference must not have child elements")
	}

	tctx := ctx.KeyInfoRefTransformCtx
	if tctx == nil {
		return newError(op, gcerrors.FailedPrecondition, "no key info reference transform context configured")
	}
	tctx.Reset()
	if err := tctx.SetURI(uri); err != nil {
		return wrapError(op, gcerrors.InvalidArgument, "invalid KeyInfoReference URI", err)
	}
	if err := tctx.Execute(node.DocumentRoot()); err != nil {
		return wrapError(op, gcerrors.Unknown, "execute transform pipeline", err)
	}

	result := tctx.Result()
	if len(result) == 0 {
		return newError(op, gcerrors.InvalidArgument, "KeyInfoReference result buffer is empty")
	}
	if ctx.Parser == nil {
		return newError(op, gcerrors.FailedPrecondition, "no XML parser configured")
	}
	root, err := ctx.Parser.ParseDocument(result)
	if err != nil {
		return wrapError(op, gcerrors.InvalidArgument, "recover-parse KeyInfoReference result", err)
	}
	if root.LocalName() != "KeyInfo" {
		return newError(op, gcerrors.InvalidArgument, "invalid node: KeyInfoReference result is not a KeyInfo")
	}

	if err := keyinfo.NodeRead(root, key, ctx); err != nil {
		return wrapError(op, keyinfo.ErrorCode(err), "nested KeyInfo read failed", err)
	}

	ctx.ExitKeyInfoReference()
	return nil
}

// XMLWrite is a deliberate no-op, mirroring RetrievalMethod: nothing
// regenerates the referenced document from a Key.
func (keyInfoReferenceHandler) XMLWrite(ctx *keyinfo.Context, node keyinfo.XMLNode, key *keyinfo.Key) error {
	return nil
}

func init() { keyinfo.Register(keyInfoReferenceHandler{}) }
