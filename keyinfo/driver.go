package keyinfo

import (
	"fmt"

	"gocloud.dev/gcerrors"
)

// NodeRead (C3) walks node's children in document order, dispatching each
// to its registered handler and mutating key in place. Before each
// iteration, if FlagDontStopOnKeyFound is clear and key already satisfies
// ctx.KeyReq, the loop stops and reports success without visiting the
// remaining children.
func NodeRead(node XMLNode, key *Key, ctx *Context) error {
	const op = "NodeRead"
	if ctx.Mode != ModeRead {
		return newError(op, gcerrors.FailedPrecondition, "context is not in read mode")
	}

	for _, child := range node.Children() {
		if ctx.Flags&FlagDontStopOnKeyFound == 0 && key.Matches(&ctx.KeyReq) {
			return nil
		}

		h := ctx.FindByNode(child.LocalName(), child.NamespaceURI(), UsageKeyInfoChild)
		if h == nil {
			if ctx.Flags&FlagStopOnUnknownChild != 0 {
				err := newError(op, gcerrors.InvalidArgument,
					fmt.Sprintf("unknown KeyInfo child {%s}%s", child.NamespaceURI(), child.LocalName()))
				ctx.Sink.Report(op, child.LocalName(), err)
				return err
			}
			continue
		}

		if err := h.XMLRead(ctx, child, key); err != nil {
			wrapped := wrapError(op, ErrorCode(err), "handler "+h.Descriptor().Name+" failed", err)
			ctx.Sink.Report(op, h.Descriptor().Name, wrapped)
			return wrapped
		}
	}
	return nil
}

// NodeWrite (C3) walks node's template children in document order and lets
// each registered handler write into its own child. There is no early
// termination on write.
func NodeWrite(node XMLNode, key *Key, ctx *Context) error {
	const op = "NodeWrite"
	if ctx.Mode != ModeWrite {
		return newError(op, gcerrors.FailedPrecondition, "context is not in write mode")
	}

	for _, child := range node.Children() {
		h := ctx.FindByNode(child.LocalName(), child.NamespaceURI(), UsageKeyInfoChild)
		if h == nil {
			if ctx.Flags&FlagStopOnUnknownChild != 0 {
				err := newError(op, gcerrors.InvalidArgument,
					fmt.Sprintf("unknown KeyInfo child {%s}%s", child.NamespaceURI(), child.LocalName()))
				ctx.Sink.Report(op, child.LocalName(), err)
				return err
			}
			continue
		}

		if err := h.XMLWrite(ctx, child, key); err != nil {
			wrapped := wrapError(op, ErrorCode(err), "handler "+h.Descriptor().Name+" failed", err)
			ctx.Sink.Report(op, h.Descriptor().Name, wrapped)
			return wrapped
		}
	}
	return nil
}
