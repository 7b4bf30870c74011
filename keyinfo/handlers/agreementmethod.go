package handlers

import (
	"gocloud.dev/gcerrors"

	"github.com/xmlsecgo/keyinfo"
)

// agreementMethodHandler generates a key from a xenc:AgreementMethod element.
type agreementMethodHandler struct{}

var agreementMethodDescriptor = &keyinfo.Descriptor{
	Name:              "AgreementMethod",
	Usage:             keyinfo.UsageKeyInfoChild | keyinfo.UsageRetrievalMethodXMLResult,
	DataNodeLocalName: "AgreementMethod",
	DataNodeNamespace: NamespaceEnc,
}

func (agreementMethodHandler) Descriptor() *keyinfo.Descriptor { return agreementMethodDescriptor }

func (agreementMethodHandler) XMLRead(ctx *keyinfo.Context, node keyinfo.XMLNode, key *keyinfo.Key) error {
	return generateAndAdopt(ctx, "AgreementMethod.XMLRead", node, key, func(c *keyinfo.Context, n keyinfo.XMLNode) (*keyinfo.Key, error) {
		return c.Engine.AgreementMethodGenerate(c, n)
	})
}

// XMLWrite re-enters the encryption engine's AgreementMethodXmlWrite after
// preference propagation, bounded by the same encrypted-key level counter
// as the read side.
func (agreementMethodHandler) XMLWrite(ctx *keyinfo.Context, node keyinfo.XMLNode, key *keyinfo.Key) error {
	const op = "AgreementMethod.XMLWrite"

	if err := ctx.EnterEncryptedKey(op); err != nil {
		return err
	}
	if ctx.Engine == nil {
		return newError(op, gcerrors.FailedPrecondition, "no encryption engine configured")
	}
	if err := ensureAndSyncEncCtx(ctx, op); err != nil {
		return err
	}

	if err := ctx.Engine.AgreementMethodXMLWrite(ctx, node); err != nil {
		return wrapError(op, gcerrors.Unknown, "agreement method write failed", err)
	}

	ctx.ExitEncryptedKey()
	return nil
}

func init() { keyinfo.Register(agreementMethodHandler{}) }
