package keyinfo

import "testing"

func TestKeyIsValidAndEmpty(t *testing.T) {
	k := NewKey()
	if k.IsValid() {
		t.Fatal("fresh key should not be valid")
	}
	k.SetValue("RSA", KeyUsageVerify, []byte("material"))
	if !k.IsValid() {
		t.Fatal("key with value should be valid")
	}
	k.Empty()
	if k.IsValid() {
		t.Fatal("Empty() should clear validity")
	}
	if k.Name() != "" || k.HandlerID() != "" || len(k.Value()) != 0 {
		t.Fatal("Empty() should clear all fields")
	}
}

func TestKeyCopyFrom(t *testing.T) {
	src := NewKey()
	src.SetValue("RSA", KeyUsageSign, []byte("secret"))
	src.SetName("alice")
	src.SetAux([]byte("cert"))

	dst := NewKey()
	dst.CopyFrom(src)

	if dst.Name() != "alice" || string(dst.Value()) != "secret" || string(dst.Aux()) != "cert" {
		t.Fatalf("CopyFrom did not copy all fields: %+v", dst)
	}

	// Mutating src's backing arrays must not affect dst (CopyFrom copies).
	src.value[0] = 'X'
	if dst.Value()[0] == 'X' {
		t.Fatal("CopyFrom must not alias src's value slice")
	}
}

func TestKeyCopyFromNil(t *testing.T) {
	dst := NewKey()
	dst.SetValue("RSA", KeyUsageSign, []byte("secret"))
	dst.CopyFrom(nil)
	if dst.IsValid() {
		t.Fatal("CopyFrom(nil) should empty the key")
	}
}

func TestKeyRequirementMatches(t *testing.T) {
	k := NewKey()
	k.SetValue("RSA", KeyUsageVerify, []byte("0123456789"))

	cases := []struct {
		name string
		req  *KeyRequirement
		want bool
	}{
		{"nil requirement matches any valid key", nil, true},
		{"zero requirement matches any valid key", &KeyRequirement{}, true},
		{"matching handler id", &KeyRequirement{HandlerID: "RSA"}, true},
		{"mismatched handler id", &KeyRequirement{HandlerID: "ECDSA"}, false},
		{"matching usage bit", &KeyRequirement{Usage: KeyUsageVerify}, true},
		{"non-overlapping usage bit", &KeyRequirement{Usage: KeyUsageDecrypt}, false},
		{"min size satisfied", &KeyRequirement{MinSize: 5}, true},
		{"min size not satisfied", &KeyRequirement{MinSize: 100}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := k.Matches(c.req); got != c.want {
				t.Errorf("Matches() = %v, want %v", got, c.want)
			}
		})
	}

	empty := NewKey()
	if empty.Matches(nil) {
		t.Fatal("an empty key must never match, even a nil requirement")
	}
}

func TestZeroBytes(t *testing.T) {
	b := []byte("sensitive material")
	ZeroBytes(b)
	for i, c := range b {
		if c != 0 {
			t.Fatalf("byte %d not zeroed: %v", i, b)
		}
	}
}
