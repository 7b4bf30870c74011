package keysmanager

import (
	"testing"

	"github.com/xmlsecgo/keyinfo"
)

func TestNewManagerRequiresHandlerID(t *testing.T) {
	if _, err := NewManager(&ManagerConfig{OfflineMode: true}); err == nil {
		t.Fatal("expected error when HandlerID is empty")
	}
}

func TestNewManagerRequiresClientUnlessOffline(t *testing.T) {
	if _, err := NewManager(&ManagerConfig{HandlerID: "RawKeyValue"}); err == nil {
		t.Fatal("expected error when neither Client nor OfflineMode is set")
	}
	if _, err := NewManager(&ManagerConfig{HandlerID: "RawKeyValue", OfflineMode: true}); err != nil {
		t.Fatalf("OfflineMode without a Client should be accepted, got %v", err)
	}
}

func TestNewManagerRequiresConfig(t *testing.T) {
	if _, err := NewManager(nil); err == nil {
		t.Fatal("expected error for a nil config")
	}
}

func TestManagerPrimeAndFindKeyOffline(t *testing.T) {
	m, err := NewManager(&ManagerConfig{HandlerID: "RawKeyValue", OfflineMode: true})
	if err != nil {
		t.Fatal(err)
	}
	m.Prime("alice", []byte("alice's key"), keyinfo.KeyUsageVerify)

	key, ok, err := m.FindKey(nil, "alice", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected alice's primed key to be found")
	}
	if string(key.Value()) != "alice's key" {
		t.Fatalf("unexpected key value %q", key.Value())
	}
	if key.HandlerID() != "RawKeyValue" {
		t.Fatalf("expected HandlerID RawKeyValue, got %q", key.HandlerID())
	}
}

func TestManagerOfflineModeMissDoesNotCallClient(t *testing.T) {
	m, err := NewManager(&ManagerConfig{HandlerID: "RawKeyValue", OfflineMode: true})
	if err != nil {
		t.Fatal(err)
	}
	key, ok, err := m.FindKey(nil, "bob", nil)
	if err != nil {
		t.Fatal(err)
	}
	if ok || key != nil {
		t.Fatal("expected a clean miss in offline mode with no primed key")
	}
}

func TestManagerFindKeyRejectsEmptyName(t *testing.T) {
	m, err := NewManager(&ManagerConfig{HandlerID: "RawKeyValue", OfflineMode: true})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := m.FindKey(nil, "", nil); err == nil {
		t.Fatal("expected error for an empty key name")
	}
}
