// Package handlers implements the per-element KeyInfo child handlers:
// KeyName, KeyValue, RetrievalMethod, KeyInfoReference, EncryptedKey,
// DerivedKey, and AgreementMethod. Each registers itself with
// keyinfo.DefaultRegistry from an init function, the way a real key-data
// handler package would.
package handlers

// XML namespaces the handlers in this package are registered under,
// matched case-sensitively the way the driver matches every other child.
const (
	NamespaceDSig   = "http://www.w3.org/2000/09/xmldsig#"
	NamespaceDSig11 = "http://www.w3.org/2009/xmldsig11#"
	NamespaceEnc    = "http://www.w3.org/2001/04/xmlenc#"
	NamespaceEnc11  = "http://www.w3.org/2009/xmlenc11#"
)
