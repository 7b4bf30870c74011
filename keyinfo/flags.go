package keyinfo

// Flags is a bitset of policy toggles controlling lax-vs-strict behavior at
// the decision points documented per-flag below. Kept as a single
// enum-backed bitset rather than inlined booleans, matching the flag-matrix
// design of the source this package is ported from.
type Flags uint32

const (
	// FlagDontStopOnKeyFound disables the read loop's early termination once
	// a valid key matching the current requirement exists.
	FlagDontStopOnKeyFound Flags = 1 << iota
	// FlagStopOnUnknownChild makes an unresolvable <KeyInfo> child a hard
	// error instead of being silently skipped.
	FlagStopOnUnknownChild
	// FlagKeyValueStopOnUnknownChild makes an unresolvable <KeyValue> child,
	// or an unresolvable root of a RetrievalMethod XML result, a hard error.
	FlagKeyValueStopOnUnknownChild
	// FlagRetrMethodStopOnUnknownHref makes an unresolvable RetrievalMethod
	// Type attribute a hard error instead of a success that skips the element
	// without fetching anything.
	FlagRetrMethodStopOnUnknownHref
	// FlagRetrMethodStopOnMismatchHref makes a RetrievalMethod whose fetched
	// data resolves to a handler different from its declared Type a hard
	// error.
	FlagRetrMethodStopOnMismatchHref
	// FlagEncKeyDontStopOnFailedDecryption makes a failed EncryptedKey,
	// DerivedKey, or AgreementMethod fatal. When clear, the failure is
	// swallowed so a sibling element gets a chance to produce the key.
	FlagEncKeyDontStopOnFailedDecryption
)

// Flags2 is a second bitset word, present in the original context layout
// for forward compatibility. No bits are defined yet.
type Flags2 uint32
