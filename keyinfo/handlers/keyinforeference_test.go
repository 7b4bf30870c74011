package handlers

import (
	"testing"

	"github.com/beevik/etree"

	"github.com/xmlsecgo/keyinfo"
	"github.com/xmlsecgo/keyinfo/xmlutil"
)

func TestKeyInfoReferenceResolvesNestedKeyInfo(t *testing.T) {
	doc := etree.NewDocument()
	root := doc.CreateElement("Document")

	nested := root.CreateElement("KeyInfo")
	nested.CreateAttr("ID", "ki1")
	name := nested.CreateElement("KeyName")
	name.CreateAttr("xmlns", NamespaceDSig)
	name.SetText("alice")

	ref := root.CreateElement("KeyInfoReference")
	ref.CreateAttr("xmlns", NamespaceDSig11)
	ref.CreateAttr("URI", "#ki1")

	ctx := newRetrievalMethodContext()
	key := keyinfo.NewKey()
	if err := (keyInfoReferenceHandler{}).XMLRead(ctx, xmlutil.Wrap(ref), key); err != nil {
		t.Fatal(err)
	}
	if key.Name() != "alice" {
		t.Fatalf("expected nested KeyInfo read to resolve KeyName, got name=%q", key.Name())
	}
	if ctx.CurKeyInfoReferenceLevel() != 0 {
		t.Fatalf("successful read must decrement the recursion counter back to 0, got %d", ctx.CurKeyInfoReferenceLevel())
	}
}

func TestKeyInfoReferenceNonKeyInfoRootIsError(t *testing.T) {
	doc := etree.NewDocument()
	root := doc.CreateElement("Document")

	notKeyInfo := root.CreateElement("SomethingElse")
	notKeyInfo.CreateAttr("ID", "x1")

	ref := root.CreateElement("KeyInfoReference")
	ref.CreateAttr("xmlns", NamespaceDSig11)
	ref.CreateAttr("URI", "#x1")

	ctx := newRetrievalMethodContext()
	if err := (keyInfoReferenceHandler{}).XMLRead(ctx, xmlutil.Wrap(ref), keyinfo.NewKey()); err == nil {
		t.Fatal("expected error when the fetched root is not a KeyInfo")
	}
}

func TestKeyInfoReferenceMustNotHaveChildren(t *testing.T) {
	doc := etree.NewDocument()
	ref := doc.CreateElement("KeyInfoReference")
	ref.CreateAttr("xmlns", NamespaceDSig11)
	ref.CreateAttr("URI", "#x1")
	ref.CreateElement("Unexpected")

	ctx := newRetrievalMethodContext()
	if err := (keyInfoReferenceHandler{}).XMLRead(ctx, xmlutil.Wrap(ref), keyinfo.NewKey()); err == nil {
		t.Fatal("expected error for a KeyInfoReference carrying child elements")
	}
}

func TestKeyInfoReferenceMissingURIIsError(t *testing.T) {
	doc := etree.NewDocument()
	ref := doc.CreateElement("KeyInfoReference")
	ref.CreateAttr("xmlns", NamespaceDSig11)

	ctx := newRetrievalMethodContext()
	if err := (keyInfoReferenceHandler{}).XMLRead(ctx, xmlutil.Wrap(ref), keyinfo.NewKey()); err == nil {
		t.Fatal("expected error for a missing URI attribute")
	}
}

func TestKeyInfoReferenceDepthBoundExceeded(t *testing.T) {
	doc := etree.NewDocument()
	root := doc.CreateElement("Document")
	nested := root.CreateElement("KeyInfo")
	nested.CreateAttr("ID", "ki1")

	ref := root.CreateElement("KeyInfoReference")
	ref.CreateAttr("xmlns", NamespaceDSig11)
	ref.CreateAttr("URI", "#ki1")

	ctx := newRetrievalMethodContext()
	ctx.MaxKeyInfoReferenceLevel = 0

	if err := (keyInfoReferenceHandler{}).XMLRead(ctx, xmlutil.Wrap(ref), keyinfo.NewKey()); err == nil {
		t.Fatal("expected depth-bound error with MaxKeyInfoReferenceLevel=0")
	}
}

func TestKeyInfoReferenceXMLWriteIsNoop(t *testing.T) {
	doc := etree.NewDocument()
	ref := doc.CreateElement("KeyInfoReference")
	node := xmlutil.Wrap(ref)
	key := keyinfo.NewKey()
	key.SetValue("RawKeyValue", keyinfo.KeyUsageAny, []byte("x"))

	if err := (keyInfoReferenceHandler{}).XMLWrite(keyinfo.NewContext(nil), node, key); err != nil {
		t.Fatal(err)
	}
	if len(node.Children()) != 0 {
		t.Fatal("KeyInfoReference.XMLWrite must be a no-op")
	}
}
