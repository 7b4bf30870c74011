package handlers

import (
	"gocloud.dev/gcerrors"

	"github.com/xmlsecgo/keyinfo"
)

// encryptedKeyHandler decrypts and re-encrypts <EncryptedKey> elements.
type encryptedKeyHandler struct{}

var encryptedKeyDescriptor = &keyinfo.Descriptor{
	Name:              "EncryptedKey",
	Usage:             keyinfo.UsageKeyInfoChild,
	DataNodeLocalName: "EncryptedKey",
	DataNodeNamespace: NamespaceEnc,
}

func (encryptedKeyHandler) Descriptor() *keyinfo.Descriptor { return encryptedKeyDescriptor }

// XMLRead decrypts node via ctx.Engine, then hands the plaintext octets to
// the handler identified by ctx.KeyReq.HandlerID. A failed decryption is
// swallowed into success-with-no-key (letting a sibling EncryptedKey meant
// for a different recipient get a turn) unless
// FlagEncKeyDontStopOnFailedDecryption upgrades it to fatal.
func (encryptedKeyHandler) XMLRead(ctx *keyinfo.Context, node keyinfo.XMLNode, key *keyinfo.Key) error {
	const op = "EncryptedKey.XMLRead"

	if err := ctx.EnterEncryptedKey(op); err != nil {
		return err
	}
	if ctx.Engine == nil {
		return newError(op, gcerrors.FailedPrecondition, "no encryption engine configured")
	}
	if err := ensureAndSyncEncCtx(ctx, op); err != nil {
		return err
	}

	plaintext, err := ctx.Engine.DecryptToBuffer(ctx, node)
	if err != nil {
		if ctx.Flags&keyinfo.FlagEncKeyDontStopOnFailedDecryption != 0 {
			return wrapError(op, gcerrors.Unknown, "decryption failed", err)
		}
		ctx.ExitEncryptedKey()
		return nil
	}
	defer keyinfo.ZeroBytes(plaintext)

	if len(plaintext) == 0 {
		ctx.ExitEncryptedKey()
		return nil
	}

	h := ctx.Registry.FindByName(string(ctx.KeyReq.HandlerID))
	if h == nil {
		return newError(op, gcerrors.InvalidArgument, "no handler registered for requested key id")
	}
	br, ok := h.(keyinfo.BinReader)
	if !ok {
		return newError(op, gcerrors.InvalidArgument, "requested handler does not support binary read")
	}
	if err := br.BinRead(ctx, plaintext, key); err != nil {
		return wrapError(op, keyinfo.ErrorCode(err), "bin_read failed", err)
	}

	ctx.ExitEncryptedKey()
	return nil
}

// XMLWrite serializes the key via its handler's BinWrite (using a
// throwaway child context requiring "any type"), then seals the plaintext
// with ctx.Engine.BinaryEncrypt. The plaintext buffer is zeroed on every
// exit path.
func (encryptedKeyHandler) XMLWrite(ctx *keyinfo.Context, node keyinfo.XMLNode, key *keyinfo.Key) error {
	const op = "EncryptedKey.XMLWrite"

	if !key.IsValid() {
		return nil
	}
	if ctx.Engine == nil {
		return newError(op, gcerrors.FailedPrecondition, "no encryption engine configured")
	}

	h := ctx.Registry.FindByName(string(key.HandlerID()))
	if h == nil {
		return newError(op, gcerrors.InvalidArgument, "no handler registered for key")
	}
	bw, ok := h.(keyinfo.BinWriter)
	if !ok {
		return newError(op, gcerrors.InvalidArgument, "key's handler does not support binary write")
	}

	child := keyinfo.NewContext(ctx.KeysManager)
	child.Mode = keyinfo.ModeWrite
	keyinfo.CopyUserPrefs(child, ctx)
	child.KeyReq = keyinfo.KeyRequirement{}

	plaintext, err := bw.BinWrite(child, key)
	if err != nil {
		return wrapError(op, keyinfo.ErrorCode(err), "bin_write failed", err)
	}
	defer keyinfo.ZeroBytes(plaintext)

	if err := ensureAndSyncEncCtx(ctx, op); err != nil {
		return err
	}
	if err := ctx.Engine.BinaryEncrypt(ctx, node, plaintext); err != nil {
		return wrapError(op, gcerrors.Unknown, "binary encrypt failed", err)
	}
	return nil
}

// ensureAndSyncEncCtx creates ctx.EncCtx on first use and otherwise resets
// its two inner sub-contexts, then copies user preferences into both
// (EncryptedKey needs both populated regardless of ctx.Mode, unlike
// Context.EnsureEncCtx's single-side default).
func ensureAndSyncEncCtx(ctx *keyinfo.Context, op string) error {
	if ctx.EncCtx == nil {
		if err := ctx.EnsureEncCtx(); err != nil {
			return wrapError(op, gcerrors.Internal, "create encryption context", err)
		}
	} else {
		ctx.EncCtx.ReadCtx.Reset()
		ctx.EncCtx.WriteCtx.Reset()
	}
	keyinfo.CopyUserPrefs(ctx.EncCtx.ReadCtx, ctx)
	keyinfo.CopyUserPrefs(ctx.EncCtx.WriteCtx, ctx)
	return nil
}

func init() { keyinfo.Register(encryptedKeyHandler{}) }
