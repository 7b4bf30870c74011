package xmlutil

import (
	"testing"

	"github.com/beevik/etree"
)

func TestElementBasics(t *testing.T) {
	doc := etree.NewDocument()
	el := doc.CreateElement("KeyName")
	el.CreateAttr("xmlns", "urn:test")
	el.CreateAttr("ID", "k1")
	el.SetText("  alice  ")

	w := Wrap(el)
	if w.LocalName() != "KeyName" {
		t.Fatalf("unexpected local name %q", w.LocalName())
	}
	if w.NamespaceURI() != "urn:test" {
		t.Fatalf("unexpected namespace %q", w.NamespaceURI())
	}
	if v, ok := w.Attr("ID"); !ok || v != "k1" {
		t.Fatalf("unexpected ID attr %q ok=%v", v, ok)
	}
	if _, ok := w.Attr("Missing"); ok {
		t.Fatal("expected ok=false for a missing attribute")
	}
	if w.Text() != "alice" {
		t.Fatalf("expected trimmed text, got %q", w.Text())
	}
}

func TestElementChildrenAndCreateChild(t *testing.T) {
	doc := etree.NewDocument()
	el := doc.CreateElement("KeyInfo")
	w := Wrap(el)

	if !w.IsEmpty() {
		t.Fatal("freshly created element should be empty")
	}

	child := w.CreateChild("KeyName", "urn:test")
	if child.LocalName() != "KeyName" || child.NamespaceURI() != "urn:test" {
		t.Fatalf("unexpected created child: %s/%s", child.NamespaceURI(), child.LocalName())
	}
	if w.IsEmpty() {
		t.Fatal("element with a child must not be empty")
	}
	if len(w.Children()) != 1 {
		t.Fatalf("expected 1 child, got %d", len(w.Children()))
	}
}

func TestElementClearChildren(t *testing.T) {
	doc := etree.NewDocument()
	el := doc.CreateElement("KeyValue")
	w := Wrap(el)
	w.CreateChild("A", "urn:test")
	w.CreateChild("B", "urn:test")
	if len(w.Children()) != 2 {
		t.Fatalf("expected 2 children before clear, got %d", len(w.Children()))
	}

	w.ClearChildren()
	if len(w.Children()) != 0 {
		t.Fatalf("expected 0 children after ClearChildren, got %d", len(w.Children()))
	}
}

func TestElementFindByID(t *testing.T) {
	doc := etree.NewDocument()
	root := doc.CreateElement("Document")
	outer := root.CreateElement("Outer")
	inner := outer.CreateElement("Inner")
	inner.CreateAttr("Id", "target")

	w := Wrap(root)
	found, ok := w.FindByID("target")
	if !ok {
		t.Fatal("expected to find the element tagged Id=target")
	}
	if found.LocalName() != "Inner" {
		t.Fatalf("expected Inner, got %s", found.LocalName())
	}

	if _, ok := w.FindByID("does-not-exist"); ok {
		t.Fatal("expected no match for a nonexistent id")
	}
}

func TestElementDocumentRoot(t *testing.T) {
	doc := etree.NewDocument()
	root := doc.CreateElement("Document")
	child := root.CreateElement("Child")
	grandchild := child.CreateElement("Grandchild")

	w := Wrap(grandchild)
	got := w.DocumentRoot()
	if got.LocalName() != "Document" {
		t.Fatalf("expected Document as the root, got %s", got.LocalName())
	}
}

func TestRecoverParse(t *testing.T) {
	root, err := RecoverParse([]byte(`<Root xmlns="urn:test"><Child>text</Child></Root>`))
	if err != nil {
		t.Fatal(err)
	}
	if root.LocalName() != "Root" {
		t.Fatalf("expected Root, got %s", root.LocalName())
	}
	if len(root.Children()) != 1 {
		t.Fatalf("expected 1 child, got %d", len(root.Children()))
	}
}

func TestRecoverParseInvalidXML(t *testing.T) {
	if _, err := RecoverParse([]byte("not xml at all <<<")); err == nil {
		t.Fatal("expected an error for malformed XML")
	}
}

func TestDocumentParserDelegatesToRecoverParse(t *testing.T) {
	root, err := (DocumentParser{}).ParseDocument([]byte(`<Root/>`))
	if err != nil {
		t.Fatal(err)
	}
	if root.LocalName() != "Root" {
		t.Fatalf("expected Root, got %s", root.LocalName())
	}
}

func TestSerializeElementRoundTrips(t *testing.T) {
	doc := etree.NewDocument()
	root := doc.CreateElement("Document")
	target := root.CreateElement("Target")
	target.CreateAttr("ID", "t1")
	target.SetText("payload")

	data, err := SerializeElement(Wrap(target))
	if err != nil {
		t.Fatal(err)
	}

	reparsed, err := RecoverParse(data)
	if err != nil {
		t.Fatal(err)
	}
	if reparsed.LocalName() != "Target" {
		t.Fatalf("expected Target, got %s", reparsed.LocalName())
	}
	if reparsed.Text() != "payload" {
		t.Fatalf("expected payload, got %q", reparsed.Text())
	}

	// Serializing must not detach the original element from its tree.
	if len(Wrap(root).Children()) != 1 {
		t.Fatal("SerializeElement must copy the target out, not mutate the original tree")
	}
}
