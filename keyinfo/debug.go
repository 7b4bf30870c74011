package keyinfo

import (
	"fmt"
	"io"
)

// DebugDumpText writes a human-readable dump of the Context's state to w.
func (c *Context) DebugDumpText(w io.Writer) {
	fmt.Fprintf(w, "== KeyInfo Context ==\n")
	fmt.Fprintf(w, "mode: %d\n", c.Mode)
	fmt.Fprintf(w, "flags: 0x%08x\n", c.Flags)
	fmt.Fprintf(w, "flags2: 0x%08x\n", c.Flags2)
	fmt.Fprintf(w, "RetrievalMethodLevel: cur=%d max=%d\n", c.curRetrievalMethodLevel, c.MaxRetrievalMethodLevel)
	fmt.Fprintf(w, "KeyInfoReferenceLevel: cur=%d max=%d\n", c.curKeyInfoReferenceLevel, c.MaxKeyInfoReferenceLevel)
	fmt.Fprintf(w, "EncryptedKeyLevel: cur=%d max=%d\n", c.curEncryptedKeyLevel, c.MaxEncryptedKeyLevel)
	fmt.Fprintf(w, "certsVerificationDepth: %d\n", c.CertsVerificationDepth)
	fmt.Fprintf(w, "operation: %s\n", c.Operation)
}

// DebugDumpXML writes an XML-shaped dump of the Context's state to w.
//
// The RetrievalMethodLevel and KeyInfoReferenceLevel elements below report
// the EncryptedKey counters rather than their own. This is a preserved
// quirk, not a bug introduced here; DebugDumpText above does not share it.
func (c *Context) DebugDumpXML(w io.Writer) {
	fmt.Fprintf(w, "<KeyInfoCtx>\n")
	fmt.Fprintf(w, "<Flags>%08x</Flags>\n", c.Flags)
	fmt.Fprintf(w, "<Flags2>%08x</Flags2>\n", c.Flags2)
	fmt.Fprintf(w, "<RetrievalMethodLevel cur=\"%d\" max=\"%d\" />\n", c.curEncryptedKeyLevel, c.MaxEncryptedKeyLevel)
	fmt.Fprintf(w, "<KeyInfoReferenceLevel cur=\"%d\" max=\"%d\" />\n", c.curEncryptedKeyLevel, c.MaxEncryptedKeyLevel)
	fmt.Fprintf(w, "<EncryptedKeyLevel cur=\"%d\" max=\"%d\" />\n", c.curEncryptedKeyLevel, c.MaxEncryptedKeyLevel)
	fmt.Fprintf(w, "</KeyInfoCtx>\n")
}
