package handlers

import (
	"gocloud.dev/gcerrors"

	"github.com/xmlsecgo/keyinfo"
)

// derivedKeyHandler generates a key from an xenc11:DerivedKey element.
type derivedKeyHandler struct{}

var derivedKeyDescriptor = &keyinfo.Descriptor{
	Name:              "DerivedKey",
	Usage:             keyinfo.UsageKeyInfoChild | keyinfo.UsageRetrievalMethodXMLResult,
	DataNodeLocalName: "DerivedKey",
	DataNodeNamespace: NamespaceEnc11,
}

func (derivedKeyHandler) Descriptor() *keyinfo.Descriptor { return derivedKeyDescriptor }

func (derivedKeyHandler) XMLRead(ctx *keyinfo.Context, node keyinfo.XMLNode, key *keyinfo.Key) error {
	return generateAndAdopt(ctx, "DerivedKey.XMLRead", node, key, func(c *keyinfo.Context, n keyinfo.XMLNode) (*keyinfo.Key, error) {
		return c.Engine.DerivedKeyGenerate(c, n)
	})
}

// XMLWrite is a no-op: the template child is assumed complete, same as
// KeyInfoReference/RetrievalMethod's write no-ops.
func (derivedKeyHandler) XMLWrite(ctx *keyinfo.Context, node keyinfo.XMLNode, key *keyinfo.Key) error {
	return nil
}

func init() { keyinfo.Register(derivedKeyHandler{}) }

// generateAndAdopt is shared by DerivedKey and AgreementMethod read: bound
// the encrypted-key recursion counter, ensure+sync the encryption
// sub-context, call gen, and on success adopt the fresh key only if it
// satisfies ctx.KeyReq. Discarding a non-matching fresh key is not an
// error, since a sibling element may still satisfy the requirement.
func generateAndAdopt(ctx *keyinfo.Context, op string, node keyinfo.XMLNode, key *keyinfo.Key, gen func(*keyinfo.Context, keyinfo.XMLNode) (*keyinfo.Key, error)) error {
	if err := ctx.EnterEncryptedKey(op); err != nil {
		return err
	}
	if ctx.Engine == nil {
		return newError(op, gcerrors.FailedPrecondition, "no encryption engine configured")
	}
	if err := ensureAndSyncEncCtx(ctx, op); err != nil {
		return err
	}

	fresh, err := gen(ctx, node)
	if err != nil || fresh == nil {
		if ctx.Flags&keyinfo.FlagEncKeyDontStopOnFailedDecryption != 0 {
			if err == nil {
				err = newError(op, gcerrors.Unknown, "key generation produced no key")
			}
			return wrapError(op, gcerrors.Unknown, "key generation failed", err)
		}
		ctx.ExitEncryptedKey()
		return nil
	}

	if ctx.KeyReq.Matches(fresh) {
		key.CopyFrom(fresh)
	}
	ctx.ExitEncryptedKey()
	return nil
}
