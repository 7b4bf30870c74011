package keyinfo

// ZeroBytes overwrites b with zero bytes in place. Handlers that pass
// decrypted key plaintext around (EncryptedKey, DerivedKey, AgreementMethod)
// call this on every exit path before releasing the buffer.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// HandlerID identifies a registered key-data handler, e.g. "KeyName",
// "RSAKeyValue", "X509Data". The zero value means "unknown / unset".
type HandlerID string

// KeyUsageBit describes what a key may be used for, and doubles as the
// key-type bitmask in a KeyRequirement.
type KeyUsageBit uint32

const (
	KeyUsageSign KeyUsageBit = 1 << iota
	KeyUsageVerify
	KeyUsageEncrypt
	KeyUsageDecrypt

	KeyUsageAny = KeyUsageSign | KeyUsageVerify | KeyUsageEncrypt | KeyUsageDecrypt
)

// Key is an opaque holder for at most one piece of cryptographic material,
// tagged by the handler that produced it, plus an optional name and
// auxiliary data (e.g. a certificate). It is owned by the caller: handlers
// mutate it in place but never retain a reference to it.
type Key struct {
	handlerID HandlerID
	value     []byte
	name      string
	aux       []byte
	usage     KeyUsageBit
}

// NewKey returns an empty Key.
func NewKey() *Key {
	return &Key{}
}

// IsValid reports whether the key carries material.
func (k *Key) IsValid() bool {
	return k != nil && len(k.value) > 0
}

// Empty clears the key back to its zero state.
func (k *Key) Empty() {
	k.handlerID = HandlerID("")
	k.value = nil
	k.name = ""
	k.aux = nil
	k.usage = 0
}

// Name returns the key's identifier string, if any.
func (k *Key) Name() string { return k.name }

// SetName sets the key's identifier string.
func (k *Key) SetName(name string) { k.name = name }

// Value returns the raw key material. The returned slice must not be
// retained past the lifetime of the Key.
func (k *Key) Value() []byte { return k.value }

// HandlerID reports which handler produced the current value.
func (k *Key) HandlerID() HandlerID { return k.handlerID }

// Usage reports the usage bits the key was loaded with.
func (k *Key) Usage() KeyUsageBit { return k.usage }

// SetValue installs raw key material tagged by the handler that produced it.
func (k *Key) SetValue(id HandlerID, usage KeyUsageBit, value []byte) {
	k.handlerID = id
	k.usage = usage
	k.value = append([]byte(nil), value...)
}

// SetAux attaches auxiliary data (e.g. a certificate) alongside the value.
func (k *Key) SetAux(aux []byte) { k.aux = append([]byte(nil), aux...) }

// Aux returns any auxiliary data attached to the key.
func (k *Key) Aux() []byte { return k.aux }

// CopyFrom replaces the receiver's contents with a copy of other's.
func (k *Key) CopyFrom(other *Key) {
	if other == nil {
		k.Empty()
		return
	}
	k.handlerID = other.handlerID
	k.usage = other.usage
	k.value = append([]byte(nil), other.value...)
	k.name = other.name
	k.aux = append([]byte(nil), other.aux...)
}

// Matches reports whether the key satisfies req. A nil requirement matches
// any valid key.
func (k *Key) Matches(req *KeyRequirement) bool {
	if !k.IsValid() {
		return false
	}
	if req == nil {
		return true
	}
	return req.Matches(k)
}

// KeyRequirement describes what the caller needs from a resolved key: an
// expected handler, a key-type bitmask, a minimum size, and an expected
// usage. The zero value matches any valid key.
type KeyRequirement struct {
	HandlerID HandlerID
	KeyType   KeyUsageBit
	MinSize   int
	Usage     KeyUsageBit
}

// Matches reports whether k satisfies the requirement.
func (r *KeyRequirement) Matches(k *Key) bool {
	if r == nil {
		return k.IsValid()
	}
	if !k.IsValid() {
		return false
	}
	if r.HandlerID != "" && r.HandlerID != k.handlerID {
		return false
	}
	if r.KeyType != 0 && r.KeyType&k.usage == 0 {
		return false
	}
	if r.MinSize > 0 && len(k.value) < r.MinSize {
		return false
	}
	if r.Usage != 0 && r.Usage&k.usage == 0 {
		return false
	}
	return true
}
