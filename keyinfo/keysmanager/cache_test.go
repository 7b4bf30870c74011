package keysmanager

import (
	"testing"
	"time"

	"github.com/xmlsecgo/keyinfo"
)

func TestCacheGetMissReturnsNil(t *testing.T) {
	c := NewCache(time.Minute)
	if c.Get("alice") != nil {
		t.Fatal("expected nil on a cache miss")
	}
}

func TestCacheSetAndGetReturnsACopy(t *testing.T) {
	c := NewCache(time.Minute)
	key := keyinfo.NewKey()
	key.SetValue("RawKeyValue", keyinfo.KeyUsageVerify, []byte("material"))
	c.Set("alice", key)

	got := c.Get("alice")
	if got == nil || string(got.Value()) != "material" {
		t.Fatalf("expected cached key, got %v", got)
	}

	// Mutating the original after Set, or the returned copy after Get, must
	// not affect what's stored.
	key.SetValue("RawKeyValue", keyinfo.KeyUsageVerify, []byte("mutated"))
	got2 := c.Get("alice")
	if string(got2.Value()) != "material" {
		t.Fatal("Set must store a defensive copy, not alias the caller's Key")
	}
}

func TestCacheEntryExpires(t *testing.T) {
	c := NewCache(time.Nanosecond)
	key := keyinfo.NewKey()
	key.SetValue("RawKeyValue", keyinfo.KeyUsageVerify, []byte("material"))
	c.Set("alice", key)

	time.Sleep(time.Millisecond)
	if c.Get("alice") != nil {
		t.Fatal("expected expired entry to be treated as a miss")
	}
}

func TestCacheDelete(t *testing.T) {
	c := NewCache(time.Minute)
	key := keyinfo.NewKey()
	key.SetValue("RawKeyValue", keyinfo.KeyUsageVerify, []byte("material"))
	c.Set("alice", key)
	c.Delete("alice")
	if c.Get("alice") != nil {
		t.Fatal("expected deleted entry to be gone")
	}
}

func TestCachePruneExpired(t *testing.T) {
	c := NewCache(time.Nanosecond)
	key := keyinfo.NewKey()
	key.SetValue("RawKeyValue", keyinfo.KeyUsageVerify, []byte("material"))
	c.Set("alice", key)
	time.Sleep(time.Millisecond)

	c.PruneExpired()
	c.mu.RLock()
	_, stillThere := c.entries["alice"]
	c.mu.RUnlock()
	if stillThere {
		t.Fatal("PruneExpired must remove expired entries from the backing map")
	}
}

func TestNewCacheDefaultsNonPositiveTTL(t *testing.T) {
	c := NewCache(0)
	if c.ttl != DefaultCacheTTL {
		t.Fatalf("expected DefaultCacheTTL, got %v", c.ttl)
	}
	c = NewCache(-time.Second)
	if c.ttl != DefaultCacheTTL {
		t.Fatalf("expected DefaultCacheTTL for a negative ttl, got %v", c.ttl)
	}
}
