package keyinfo

import (
	"time"

	"gocloud.dev/gcerrors"
)

// Mode fixes whether a Context is driving a read or a write pass. It never
// changes for the lifetime of one pass.
type Mode int

const (
	ModeRead Mode = iota
	ModeWrite
)

// EncKeyInfoCtx is the lazily-created encryption sub-context. It has a
// natural cyclic relationship with its owning Context: the owner creates
// it, and it in turn holds two fresh, independent KeyInfo sub-contexts (not
// back-pointers to the owner) used when an EncryptedKey/DerivedKey's
// ciphertext itself contains a nested KeyInfo.
type EncKeyInfoCtx struct {
	Engine   Engine
	ReadCtx  *Context
	WriteCtx *Context
}

// Context (C1) holds everything one KeyInfo read or write pass needs:
// mode, policy flags, recursion counters and their bounds, references to
// the registry/keys-manager/transform sub-contexts/encryption engine, and
// the current key requirement. A Context must not be shared between
// goroutines; two distinct Contexts are independent.
type Context struct {
	Mode   Mode
	Flags  Flags
	Flags2 Flags2

	KeysManager    KeysManager
	Registry       *Registry
	Parser         XMLParser
	EnabledKeyData []string // allow-list of handler names; empty means "use Registry unfiltered"

	RetrievalTransformCtx  TransformContext
	KeyInfoRefTransformCtx TransformContext

	curRetrievalMethodLevel  int
	MaxRetrievalMethodLevel  int
	curKeyInfoReferenceLevel int
	MaxKeyInfoReferenceLevel int
	curEncryptedKeyLevel     int
	MaxEncryptedKeyLevel     int

	Engine Engine
	EncCtx *EncKeyInfoCtx

	KeyReq KeyRequirement

	Base64LineSize         int
	CertsVerificationDepth int
	CertsVerificationTime  time.Time

	Operation string
	UserData  interface{}

	Sink ErrorSink
}

// NewContext returns a freshly initialized Context in read mode with the
// default registry, default recursion bounds (1), and a
// CertsVerificationDepth of 9, mirroring the defaults of the context this
// type is ported from.
func NewContext(km KeysManager) *Context {
	return &Context{
		Mode:                     ModeRead,
		Registry:                 DefaultRegistry(),
		KeysManager:              km,
		MaxRetrievalMethodLevel:  1,
		MaxKeyInfoReferenceLevel: 1,
		MaxEncryptedKeyLevel:     1,
		CertsVerificationDepth:   9,
		Sink:                     NopErrorSink,
	}
}

// CurRetrievalMethodLevel reports the current RetrievalMethod recursion
// depth.
func (c *Context) CurRetrievalMethodLevel() int { return c.curRetrievalMethodLevel }

// CurKeyInfoReferenceLevel reports the current KeyInfoReference recursion
// depth.
func (c *Context) CurKeyInfoReferenceLevel() int { return c.curKeyInfoReferenceLevel }

// CurEncryptedKeyLevel reports the current EncryptedKey/DerivedKey/
// AgreementMethod recursion depth.
func (c *Context) CurEncryptedKeyLevel() int { return c.curEncryptedKeyLevel }

// EnterRetrievalMethod checks cur < max and increments on success. Callers
// must call ExitRetrievalMethod on (and only on) success. An error path
// leaves the counter incremented; the Context must be Reset or discarded
// before reuse.
func (c *Context) EnterRetrievalMethod(op string) error {
	if c.curRetrievalMethodLevel >= c.MaxRetrievalMethodLevel {
		return newError(op, gcerrors.ResourceExhausted, "max retrieval method recursion level exceeded")
	}
	c.curRetrievalMethodLevel++
	return nil
}

// ExitRetrievalMethod decrements the RetrievalMethod recursion counter on a
// successful exit.
func (c *Context) ExitRetrievalMethod() { c.curRetrievalMethodLevel-- }

// EnterKeyInfoReference checks cur < max and increments on success.
func (c *Context) EnterKeyInfoReference(op string) error {
	if c.curKeyInfoReferenceLevel >= c.MaxKeyInfoReferenceLevel {
		return newError(op, gcerrors.ResourceExhausted, "max key info reference recursion level exceeded")
	}
	c.curKeyInfoReferenceLevel++
	return nil
}

// ExitKeyInfoReference decrements the KeyInfoReference recursion counter on
// a successful exit.
func (c *Context) ExitKeyInfoReference() { c.curKeyInfoReferenceLevel-- }

// EnterEncryptedKey checks cur < max and increments on success. Shared by
// EncryptedKey, DerivedKey, and AgreementMethod.
func (c *Context) EnterEncryptedKey(op string) error {
	if c.curEncryptedKeyLevel >= c.MaxEncryptedKeyLevel {
		return newError(op, gcerrors.ResourceExhausted, "max encrypted key recursion level exceeded")
	}
	c.curEncryptedKeyLevel++
	return nil
}

// ExitEncryptedKey decrements the EncryptedKey recursion counter on a
// successful exit.
func (c *Context) ExitEncryptedKey() { c.curEncryptedKeyLevel-- }

// FindByNode is the Registry lookup façade (C2): it consults EnabledKeyData
// when non-empty (authoritative, never merged with the global registry) or
// c.Registry otherwise.
func (c *Context) FindByNode(localName, namespace string, usage DispatchUsage) Handler {
	if len(c.EnabledKeyData) > 0 {
		for _, name := range c.EnabledKeyData {
			h := c.Registry.FindByName(name)
			if h == nil {
				continue
			}
			d := h.Descriptor()
			if d.Usage&usage != 0 && d.DataNodeLocalName == localName && d.DataNodeNamespace == namespace {
				return h
			}
		}
		return nil
	}
	return c.Registry.FindByNode(localName, namespace, usage)
}

// FindByHref is the href-keyed counterpart of FindByNode.
func (c *Context) FindByHref(href string, usage DispatchUsage) Handler {
	if len(c.EnabledKeyData) > 0 {
		for _, name := range c.EnabledKeyData {
			h := c.Registry.FindByName(name)
			if h == nil {
				continue
			}
			d := h.Descriptor()
			if d.Usage&usage != 0 && d.Href == href {
				return h
			}
		}
		return nil
	}
	return c.Registry.FindByHref(href, usage)
}

// CopyUserPrefs propagates only configuration from src into dst, never
// transient counters or results: user data, flags, keys manager, registry,
// base64 line size, a deep copy of the enabled-key-data allow-list, the
// three recursion bounds, the transform sub-contexts' own user
// preferences, the engine, the error sink, and certificate-verification
// settings. If both sides already have an EncCtx, the nested mode is
// forced to "encrypted-key" on dst.
func CopyUserPrefs(dst, src *Context) {
	dst.UserData = src.UserData
	dst.Flags = src.Flags
	dst.Flags2 = src.Flags2
	dst.KeysManager = src.KeysManager
	dst.Registry = src.Registry
	dst.Parser = src.Parser
	dst.Base64LineSize = src.Base64LineSize
	dst.EnabledKeyData = append([]string(nil), src.EnabledKeyData...)
	dst.MaxRetrievalMethodLevel = src.MaxRetrievalMethodLevel
	dst.MaxKeyInfoReferenceLevel = src.MaxKeyInfoReferenceLevel
	dst.MaxEncryptedKeyLevel = src.MaxEncryptedKeyLevel
	dst.Engine = src.Engine
	dst.Sink = src.Sink
	dst.CertsVerificationDepth = src.CertsVerificationDepth
	dst.CertsVerificationTime = src.CertsVerificationTime

	if src.RetrievalTransformCtx != nil && dst.RetrievalTransformCtx != nil {
		src.RetrievalTransformCtx.CopyUserPrefs(dst.RetrievalTransformCtx)
	}
	if src.KeyInfoRefTransformCtx != nil && dst.KeyInfoRefTransformCtx != nil {
		src.KeyInfoRefTransformCtx.CopyUserPrefs(dst.KeyInfoRefTransformCtx)
	}

	if dst.EncCtx != nil && src.EncCtx != nil {
		dst.Operation = "encrypted-key"
	}
}

// EnsureEncCtx lazily creates EncCtx in "encrypted-key" mode. It populates
// whichever of the two inner sub-contexts matches the parent's current mode
// via CopyUserPrefs, and sets Operation to "encrypted-key" on both; the
// parent's own Operation is not copied into them. It is an error to call
// this when EncCtx already exists.
func (c *Context) EnsureEncCtx() error {
	const op = "Context.EnsureEncCtx"
	if c.EncCtx != nil {
		return newError(op, gcerrors.FailedPrecondition, "encryption context already exists")
	}
	if c.Engine == nil {
		return newError(op, gcerrors.FailedPrecondition, "no encryption engine configured on this context")
	}

	readCtx := NewContext(c.KeysManager)
	readCtx.Mode = ModeRead
	writeCtx := NewContext(c.KeysManager)
	writeCtx.Mode = ModeWrite

	switch c.Mode {
	case ModeRead:
		CopyUserPrefs(readCtx, c)
		readCtx.Mode = ModeRead
	case ModeWrite:
		CopyUserPrefs(writeCtx, c)
		writeCtx.Mode = ModeWrite
	}
	readCtx.Operation = "encrypted-key"
	writeCtx.Operation = "encrypted-key"

	c.EncCtx = &EncKeyInfoCtx{Engine: c.Engine, ReadCtx: readCtx, WriteCtx: writeCtx}
	return nil
}

// Reset clears transient state (recursion counters, transform results,
// operation, inner encryption context state) but keeps all
// user-configured settings. Recursion counters are decremented only on
// success (see EnterRetrievalMethod et al.); an error path leaves them
// incremented, so callers must Reset (or discard) the Context before
// reusing it for another pass.
func (c *Context) Reset() {
	c.curRetrievalMethodLevel = 0
	c.curKeyInfoReferenceLevel = 0
	c.curEncryptedKeyLevel = 0
	c.Operation = ""
	if c.RetrievalTransformCtx != nil {
		c.RetrievalTransformCtx.Reset()
	}
	if c.KeyInfoRefTransformCtx != nil {
		c.KeyInfoRefTransformCtx.Reset()
	}
	if c.EncCtx != nil {
		c.EncCtx.ReadCtx.Reset()
		c.EncCtx.WriteCtx.Reset()
	}
}

// Finalize releases the Context's owned sub-contexts. After Finalize the
// Context must not be reused.
func (c *Context) Finalize() {
	c.Reset()
	c.EncCtx = nil
}
