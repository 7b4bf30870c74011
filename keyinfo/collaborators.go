package keyinfo

// KeysManager is an external store that resolves a textual key identifier
// (a KeyName's content) to a Key. It is treated as thread-unsafe from the
// core's perspective: the caller guarantees exclusive access for the
// duration of a pass.
type KeysManager interface {
	FindKey(ctx *Context, name string, req *KeyRequirement) (*Key, bool, error)
}

// TransformContext is the transform pipeline's contract: reset, point it at
// a URI, optionally feed it a <Transforms> node to build a transform chain,
// execute against the owning document, and collect the result. Two
// independent instances live on a Context (RetrievalMethod's and
// KeyInfoReference's) and are reset on each use.
type TransformContext interface {
	Reset()
	SetURI(uri string) error
	ReadTransformsNode(node XMLNode) error
	Execute(ownerDoc XMLNode) error
	Result() []byte
	CopyUserPrefs(dst TransformContext)
}

// XMLParser is the XML tree library's document-construction contract: given
// raw octets fetched by RetrievalMethod or KeyInfoReference, recover-parse
// them into a navigable root XMLNode. "Recover" mirrors the source this
// package is ported from, which tolerates malformed trailing content rather
// than rejecting the whole buffer.
type XMLParser interface {
	ParseDocument(data []byte) (XMLNode, error)
}

// Engine is the encryption engine's contract: decrypting an <EncryptedKey>
// to raw octets, serializing raw octets into one, and producing a key via
// key derivation or key agreement.
type Engine interface {
	DecryptToBuffer(ctx *Context, encryptedKeyNode XMLNode) ([]byte, error)
	BinaryEncrypt(ctx *Context, encryptedKeyNode XMLNode, plaintext []byte) error
	DerivedKeyGenerate(ctx *Context, node XMLNode) (*Key, error)
	AgreementMethodGenerate(ctx *Context, node XMLNode) (*Key, error)
	AgreementMethodXMLWrite(ctx *Context, node XMLNode) error
}
