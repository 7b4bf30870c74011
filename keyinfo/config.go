package keyinfo

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ContextOptions is the URL-configurable subset of Context: the flag bits
// plus the three recursion bounds. ApplyTo copies these onto a live
// Context without touching anything else (mirroring CopyUserPrefs's
// configuration-only scope).
type ContextOptions struct {
	Flags                    Flags
	MaxRetrievalMethodLevel  int
	MaxKeyInfoReferenceLevel int
	MaxEncryptedKeyLevel     int
	EnabledKeyData           []string
}

// ApplyTo copies o onto ctx.
func (o *ContextOptions) ApplyTo(ctx *Context) {
	ctx.Flags = o.Flags
	if o.MaxRetrievalMethodLevel > 0 {
		ctx.MaxRetrievalMethodLevel = o.MaxRetrievalMethodLevel
	}
	if o.MaxKeyInfoReferenceLevel > 0 {
		ctx.MaxKeyInfoReferenceLevel = o.MaxKeyInfoReferenceLevel
	}
	if o.MaxEncryptedKeyLevel > 0 {
		ctx.MaxEncryptedKeyLevel = o.MaxEncryptedKeyLevel
	}
	ctx.EnabledKeyData = append([]string(nil), o.EnabledKeyData...)
}

var flagsByQueryName = map[string]Flags{
	"dont_stop_on_key_found":             FlagDontStopOnKeyFound,
	"stop_on_unknown_child":              FlagStopOnUnknownChild,
	"keyvalue_stop_on_unknown_child":     FlagKeyValueStopOnUnknownChild,
	"retrmethod_stop_on_unknown_href":    FlagRetrMethodStopOnUnknownHref,
	"retrmethod_stop_on_mismatch_href":   FlagRetrMethodStopOnMismatchHref,
	"enckey_dont_stop_on_failed_decrypt": FlagEncKeyDontStopOnFailedDecryption,
}

// ParseFlagsURL parses a "keyinfo://" query string into ContextOptions, the
// same way the provider this package is adapted from parses a
// "keybase://user1,user2?format=...&cache_ttl=..." scheme URL: a fixed
// scheme, with every policy toggle and recursion bound expressed as a
// query parameter.
//
// Recognized query parameters: one per Flags constant (see
// flagsByQueryName), each a "1"/"0" or any value strconv.ParseBool accepts;
// max_retrieval_level, max_keyinfo_ref_level, max_encrypted_key_level
// (non-negative integers; ApplyTo ignores a 0); and enabled_key_data, a
// comma-separated handler name list.
func ParseFlagsURL(rawURL string) (*ContextOptions, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("keyinfo: URL cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("keyinfo: invalid URL: %w", err)
	}
	if u.Scheme != "keyinfo" {
		return nil, fmt.Errorf("keyinfo: invalid URL scheme: expected %q, got %q", "keyinfo", u.Scheme)
	}

	opts := &ContextOptions{}
	query := u.Query()

	for name, bit := range flagsByQueryName {
		v := query.Get(name)
		if v == "" {
			continue
		}
		on, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("keyinfo: invalid %s parameter: %w", name, err)
		}
		if on {
			opts.Flags |= bit
		}
	}

	for name, dst := range map[string]*int{
		"max_retrieval_level":     &opts.MaxRetrievalMethodLevel,
		"max_keyinfo_ref_level":   &opts.MaxKeyInfoReferenceLevel,
		"max_encrypted_key_level": &opts.MaxEncryptedKeyLevel,
	} {
		v := query.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("keyinfo: invalid %s parameter: %w", name, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("keyinfo: %s must be non-negative, got %d", name, n)
		}
		*dst = n
	}

	if enabled := query.Get("enabled_key_data"); enabled != "" {
		var names []string
		for _, n := range strings.Split(enabled, ",") {
			n = strings.TrimSpace(n)
			if n != "" {
				names = append(names, n)
			}
		}
		opts.EnabledKeyData = names
	}

	return opts, nil
}
