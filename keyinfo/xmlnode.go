package keyinfo

// XMLNode is the core's view of one element in the underlying XML tree
// library. The core never imports an XML package directly; it is handed
// nodes that satisfy this interface (xmlutil.Element, backed by
// github.com/beevik/etree, is this module's concrete implementation).
type XMLNode interface {
	// LocalName is the element's tag name without namespace prefix.
	LocalName() string
	// NamespaceURI is the element's resolved namespace URI, or "".
	NamespaceURI() string
	// Attr returns the named attribute's value and whether it was present.
	Attr(name string) (string, bool)
	// Text returns the element's trimmed text content.
	Text() string
	// SetText replaces the element's text content, XML-escaped on output.
	SetText(text string)
	// Children returns the element's child elements in document order,
	// skipping non-element nodes (comments, text, processing instructions).
	Children() []XMLNode
	// CreateChild appends a new child element in the given namespace and
	// returns it.
	CreateChild(localName, namespace string) XMLNode
	// ClearChildren removes every child element, used by handlers (e.g.
	// KeyValue's write path) that replace a template node's contents
	// wholesale before writing their own child.
	ClearChildren()
	// IsEmpty reports whether the element has neither children nor text.
	IsEmpty() bool
	// DocumentRoot returns the root element of the document this node
	// belongs to (used to resolve same-document URI fragments).
	DocumentRoot() XMLNode
	// FindByID searches the node's own subtree for a descendant whose
	// ID/Id/id attribute equals id.
	FindByID(id string) (XMLNode, bool)
}
