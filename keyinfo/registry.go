package keyinfo

import "sync"

// DispatchUsage is the usage-bit a Registry lookup is performed against. A
// handler is only matched when its Descriptor's Usage intersects the
// requested bit.
type DispatchUsage uint32

const (
	// UsageKeyInfoChild: handler may appear directly as a <KeyInfo> child.
	UsageKeyInfoChild DispatchUsage = 1 << iota
	// UsageRetrievalMethodXMLResult: handler may be the root of a document
	// fetched by <RetrievalMethod>.
	UsageRetrievalMethodXMLResult
	// UsageRetrievalMethodBinResult: handler may consume the raw octets
	// fetched by <RetrievalMethod> directly, without XML re-parsing.
	UsageRetrievalMethodBinResult
	// UsageKeyValueChild: handler may appear as the single inner child of
	// <KeyValue>.
	UsageKeyValueChild
	// UsageKeyValueNodeWrite: handler may be written as a <KeyValue> child.
	UsageKeyValueNodeWrite
)

// Descriptor is a handler's static, read-only identifying metadata.
type Descriptor struct {
	Name              string
	Usage             DispatchUsage
	Href              string
	DataNodeLocalName string
	DataNodeNamespace string
}

// Handler is the capability set a registered key-data class implements. Not
// every handler implements every method; BinReader/BinWriter are separate,
// optional interfaces a Handler may additionally satisfy.
type Handler interface {
	Descriptor() *Descriptor
	XMLRead(ctx *Context, node XMLNode, key *Key) error
	XMLWrite(ctx *Context, node XMLNode, key *Key) error
}

// BinReader is implemented by handlers that can consume a raw octet buffer
// directly (RetrievalMethod binary results, EncryptedKey plaintexts).
type BinReader interface {
	BinRead(ctx *Context, data []byte, key *Key) error
}

// BinWriter is implemented by handlers that can serialize a key to a raw
// octet buffer (EncryptedKey plaintext production on write).
type BinWriter interface {
	BinWrite(ctx *Context, key *Key) ([]byte, error)
}

// Registry is a flat, ordered list of handler descriptors, matched by
// (localname, namespace, usage-bit) or (href-URI, usage-bit). The first
// registered handler satisfying a lookup wins. A Registry is read-only
// after system initialization from the core's perspective; Register exists
// for that initialization step.
type Registry struct {
	mu       sync.RWMutex
	handlers []Handler
	byName   map[string]Handler
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Handler)}
}

// Register appends h to the registry. Registration order is significant:
// it is the tie-break order for FindByNode/FindByHref.
func (r *Registry) Register(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = append(r.handlers, h)
	r.byName[h.Descriptor().Name] = h
}

// FindByName looks a handler up by its descriptor name.
func (r *Registry) FindByName(name string) Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

// FindByNode resolves a handler whose Descriptor matches (localName,
// namespace) and whose Usage intersects usage. Matching is case-sensitive
// on local name; namespace match is by exact URI string.
func (r *Registry) FindByNode(localName, namespace string, usage DispatchUsage) Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, h := range r.handlers {
		d := h.Descriptor()
		if d.Usage&usage == 0 {
			continue
		}
		if d.DataNodeLocalName == localName && d.DataNodeNamespace == namespace {
			return h
		}
	}
	return nil
}

// FindByHref resolves a handler whose Descriptor's Href equals href and
// whose Usage intersects usage.
func (r *Registry) FindByHref(href string, usage DispatchUsage) Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, h := range r.handlers {
		d := h.Descriptor()
		if d.Usage&usage == 0 {
			continue
		}
		if d.Href != "" && d.Href == href {
			return h
		}
	}
	return nil
}

var defaultRegistry = NewRegistry()

// DefaultRegistry is the process-wide registry consulted when a Context has
// no non-empty EnabledKeyData allow-list.
func DefaultRegistry() *Registry { return defaultRegistry }

// Register adds h to the default registry. Key-data handler packages call
// this from an init function.
func Register(h Handler) { defaultRegistry.Register(h) }
