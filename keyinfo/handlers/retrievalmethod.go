package handlers

import (
	"gocloud.dev/gcerrors"

	"github.com/xmlsecgo/keyinfo"
)

// retrievalMethodHandler is the RetrievalMethod handler,
// the most intricate of the set: it runs a mini state machine per
// invocation (resolve declared Type, reset+configure the transform
// sub-context, execute it, then dispatch the result as XML or binary).
type retrievalMethodHandler struct{}

var retrievalMethodDescriptor = &keyinfo.Descriptor{
	Name:              "RetrievalMethod",
	Usage:             keyinfo.UsageKeyInfoChild,
	DataNodeLocalName: "RetrievalMethod",
	DataNodeNamespace: NamespaceDSig,
}

func (retrievalMethodHandler) Descriptor() *keyinfo.Descriptor { return retrievalMethodDescriptor }

// XMLRead dereferences the RetrievalMethod's URI, runs any Transforms
// chain, and dispatches the result to the handler named by Type. An
// unresolvable Type with the corresponding stop flag clear returns success
// without ever running the transform pipeline, rather than falling through
// to infer the type from the fetched document. This is a deliberately
// preserved quirk, not an oversight.
func (retrievalMethodHandler) XMLRead(ctx *keyinfo.Context, node keyinfo.XMLNode, key *keyinfo.Key) error {
	const op = "RetrievalMethod.XMLRead"

	if err := ctx.EnterRetrievalMethod(op); err != nil {
		return err
	}

	typeAttr, hasType := node.Attr("Type")
	var expected keyinfo.Handler
	if hasType && typeAttr != "" {
		expected = ctx.FindByHref(typeAttr, keyinfo.UsageRetrievalMethodXMLResult|keyinfo.UsageRetrievalMethodBinResult)
	}
	if expected == nil {
		if ctx.Flags&keyinfo.FlagRetrMethodStopOnUnknownHref != 0 {
			return newError(op, gcerrors.InvalidArgument, "unresolvable RetrievalMethod Type")
		}
		ctx.ExitRetrievalMethod()
		return nil
	}

	uri, ok := node.Attr("URI")
	if !ok || uri == "" {
		return newError(op, gcerrors.InvalidArgument, "RetrievalMethod has no URI attribute")
	}

	var transformsNode keyinfo.XMLNode
	for _, child := range node.Children() {
		if child.LocalName() != "Transforms" {
			return newError(op, gcerrors.InvalidArgument, "unexpected RetrievalMethod child "+child.LocalName())
		}
		if transformsNode != nil {
			return newError(op, gcerrors.InvalidArgument, "RetrievalMethod has more than one Transforms child")
		}
		transformsNode = child
	}

	tctx := ctx.RetrievalTransformCtx
	if tctx == nil {
		return newError(op, gcerrors.FailedPrecondition, "no retrieval transform context configured")
	}
	tctx.Reset()
	if err := tctx.SetURI(uri); err != nil {
		return wrapError(op, gcerrors.InvalidArgument, "invalid RetrievalMethod URI", err)
	}
	if transformsNode != nil {
		if err := tctx.ReadTransformsNode(transformsNode); err != nil {
			return wrapError(op, gcerrors.Unknown, "build transform chain", err)
		}
	}
	if err := tctx.Execute(node.DocumentRoot()); err != nil {
		return wrapError(op, gcerrors.Unknown, "execute transform pipeline", err)
	}

	result := tctx.Result()
	if len(result) == 0 {
		return newError(op, gcerrors.InvalidArgument, "RetrievalMethod result buffer is empty")
	}

	if expected.Descriptor().Usage&keyinfo.UsageRetrievalMethodXMLResult != 0 {
		if err := readXMLResult(ctx, op, expected, result, key); err != nil {
			return err
		}
	} else {
		br, ok := expected.(keyinfo.BinReader)
		if !ok {
			return newError(op, gcerrors.Internal, "expected handler does not support binary read")
		}
		if err := br.BinRead(ctx, result, key); err != nil {
			return wrapError(op, keyinfo.ErrorCode(err), "bin_read failed", err)
		}
	}

	ctx.ExitRetrievalMethod()
	return nil
}

func readXMLResult(ctx *keyinfo.Context, op string, expected keyinfo.Handler, result []byte, key *keyinfo.Key) error {
	if ctx.Parser == nil {
		return newError(op, gcerrors.FailedPrecondition, "no XML parser configured")
	}
	root, err := ctx.Parser.ParseDocument(result)
	if err != nil {
		return wrapError(op, gcerrors.InvalidArgument, "recover-parse RetrievalMethod result", err)
	}

	resolved := ctx.FindByNode(root.LocalName(), root.NamespaceURI(), keyinfo.UsageRetrievalMethodXMLResult)
	if resolved == nil {
		if ctx.Flags&keyinfo.FlagKeyValueStopOnUnknownChild != 0 {
			return newError(op, gcerrors.InvalidArgument, "unknown RetrievalMethod result root "+root.LocalName())
		}
		return nil
	}
	if resolved.Descriptor().Name != expected.Descriptor().Name && ctx.Flags&keyinfo.FlagRetrMethodStopOnMismatchHref != 0 {
		return newError(op, gcerrors.InvalidArgument, "RetrievalMethod result type does not match declared Type")
	}
	if err := resolved.XMLRead(ctx, root, key); err != nil {
		return wrapError(op, keyinfo.ErrorCode(err), "xml_read on retrieved root failed", err)
	}
	return nil
}

// XMLWrite is a deliberate no-op: the standard does not define how to
// regenerate a RetrievalMethod's referenced content from a Key.
func (retrievalMethodHandler) XMLWrite(ctx *keyinfo.Context, node keyinfo.XMLNode, key *keyinfo.Key) error {
	return nil
}

func init() { keyinfo.Register(retrievalMethodHandler{}) }
