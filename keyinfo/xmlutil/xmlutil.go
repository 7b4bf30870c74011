// Package xmlutil adapts github.com/beevik/etree to the keyinfo.XMLNode
// contract. It is the concrete stand-in for "the underlying XML tree
// library" the core driver and handlers only ever see through that
// interface.
package xmlutil

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"

	"github.com/xmlsecgo/keyinfo"
)

// Element wraps an *etree.Element to satisfy keyinfo.XMLNode.
type Element struct {
	el *etree.Element
}

// Wrap returns an Element wrapping el.
func Wrap(el *etree.Element) *Element {
	return &Element{el: el}
}

// Underlying returns the wrapped *etree.Element, for callers (within this
// module) that need etree-specific operations such as serialization.
func (e *Element) Underlying() *etree.Element { return e.el }

func (e *Element) LocalName() string { return e.el.Tag }

func (e *Element) NamespaceURI() string { return e.el.NamespaceURI() }

func (e *Element) Attr(name string) (string, bool) {
	a := e.el.SelectAttr(name)
	if a == nil {
		return "", false
	}
	return a.Value, true
}

func (e *Element) Text() string { return strings.TrimSpace(e.el.Text()) }

func (e *Element) SetText(s string) { e.el.SetText(s) }

func (e *Element) Children() []keyinfo.XMLNode {
	kids := e.el.ChildElements()
	out := make([]keyinfo.XMLNode, len(kids))
	for i, k := range kids {
		out[i] = Wrap(k)
	}
	return out
}

func (e *Element) CreateChild(localName, namespace string) keyinfo.XMLNode {
	child := e.el.CreateElement(localName)
	if namespace != "" {
		child.CreateAttr("xmlns", namespace)
	}
	return Wrap(child)
}

func (e *Element) ClearChildren() {
	for _, c := range e.el.ChildElements() {
		e.el.RemoveChild(c)
	}
}

func (e *Element) IsEmpty() bool {
	return len(e.el.ChildElements()) == 0 && strings.TrimSpace(e.el.Text()) == ""
}

func (e *Element) DocumentRoot() keyinfo.XMLNode {
	cur := e.el
	for cur.Parent() != nil {
		cur = cur.Parent()
	}
	return Wrap(cur)
}

var idAttrNames = []string{"ID", "Id", "id"}

func (e *Element) FindByID(id string) (keyinfo.XMLNode, bool) {
	var found *etree.Element
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		if found != nil {
			return
		}
		for _, name := range idAttrNames {
			if a := el.SelectAttr(name); a != nil && a.Value == id {
				found = el
				return
			}
		}
		for _, c := range el.ChildElements() {
			walk(c)
			if found != nil {
				return
			}
		}
	}
	walk(e.el)
	if found == nil {
		return nil, false
	}
	return Wrap(found), true
}

// RecoverParse parses data as XML into a document root, tolerating
// non-UTF-8 encodings via a charset-aware reader the way a recovering,
// error-tolerant parser would. It is used to re-parse the octets fetched
// by RetrievalMethod and KeyInfoReference.
func RecoverParse(data []byte) (keyinfo.XMLNode, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("xmlutil: parse: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("xmlutil: document has no root element")
	}
	return Wrap(root), nil
}

// DocumentParser implements keyinfo.XMLParser over RecoverParse, the
// stand-in this package provides for "the underlying XML tree library"'s
// recover-parse contract.
type DocumentParser struct{}

func (DocumentParser) ParseDocument(data []byte) (keyinfo.XMLNode, error) {
	return RecoverParse(data)
}

// SerializeElement renders node (which must be backed by this package) as a
// standalone XML document, copying it out of its current tree first so the
// original is left untouched.
func SerializeElement(node keyinfo.XMLNode) ([]byte, error) {
	e, ok := node.(*Element)
	if !ok {
		return nil, fmt.Errorf("xmlutil: unsupported node implementation %T", node)
	}
	doc := etree.NewDocument()
	cp := e.el.Copy()
	// The copy has no ancestors, so carry over an inherited default
	// namespace declaration.
	if cp.Space == "" && cp.SelectAttr("xmlns") == nil {
		if ns := e.el.NamespaceURI(); ns != "" {
			cp.CreateAttr("xmlns", ns)
		}
	}
	doc.SetRoot(cp)
	return doc.WriteToBytes()
}
