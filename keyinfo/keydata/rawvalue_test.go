package keydata

import (
	"encoding/base64"
	"testing"

	"github.com/beevik/etree"

	"github.com/xmlsecgo/keyinfo"
	"github.com/xmlsecgo/keyinfo/xmlutil"
)

func newRawValueElement(text string) keyinfo.XMLNode {
	doc := etree.NewDocument()
	el := doc.CreateElement("RawKeyValue")
	el.CreateAttr("xmlns", Namespace)
	el.SetText(text)
	return xmlutil.Wrap(el)
}

func TestHandlerXMLReadDecodesBase64(t *testing.T) {
	text := base64.StdEncoding.EncodeToString([]byte("hello key"))
	key := keyinfo.NewKey()
	if err := (Handler{}).XMLRead(keyinfo.NewContext(nil), newRawValueElement(text), key); err != nil {
		t.Fatal(err)
	}
	if string(key.Value()) != "hello key" {
		t.Fatalf("expected decoded value, got %q", key.Value())
	}
	if key.HandlerID() != keyinfo.HandlerID(Name) {
		t.Fatalf("expected HandlerID %q, got %q", Name, key.HandlerID())
	}
}

func TestHandlerXMLReadInvalidBase64IsError(t *testing.T) {
	if err := (Handler{}).XMLRead(keyinfo.NewContext(nil), newRawValueElement("not-valid-base64!!"), keyinfo.NewKey()); err == nil {
		t.Fatal("expected error for invalid base64 content")
	}
}

func TestHandlerXMLReadEmptyContentIsError(t *testing.T) {
	empty := base64.StdEncoding.EncodeToString(nil)
	if err := (Handler{}).XMLRead(keyinfo.NewContext(nil), newRawValueElement(empty), keyinfo.NewKey()); err == nil {
		t.Fatal("expected error for empty decoded content")
	}
}

func TestHandlerXMLWriteEncodesValue(t *testing.T) {
	doc := etree.NewDocument()
	el := doc.CreateElement("RawKeyValue")
	node := xmlutil.Wrap(el)

	key := keyinfo.NewKey()
	key.SetValue(keyinfo.HandlerID(Name), keyinfo.KeyUsageAny, []byte("round trip"))

	if err := (Handler{}).XMLWrite(keyinfo.NewContext(nil), node, key); err != nil {
		t.Fatal(err)
	}
	decoded, err := base64.StdEncoding.DecodeString(node.Text())
	if err != nil {
		t.Fatal(err)
	}
	if string(decoded) != "round trip" {
		t.Fatalf("unexpected round-trip value %q", decoded)
	}
}

func TestHandlerXMLWriteNoopForInvalidKey(t *testing.T) {
	doc := etree.NewDocument()
	el := doc.CreateElement("RawKeyValue")
	node := xmlutil.Wrap(el)
	if err := (Handler{}).XMLWrite(keyinfo.NewContext(nil), node, keyinfo.NewKey()); err != nil {
		t.Fatal(err)
	}
	if node.Text() != "" {
		t.Fatal("an invalid key must produce no write")
	}
}

func TestHandlerBinReadAndBinWriteRoundTrip(t *testing.T) {
	key := keyinfo.NewKey()
	if err := (Handler{}).BinRead(keyinfo.NewContext(nil), []byte("bin material"), key); err != nil {
		t.Fatal(err)
	}
	if string(key.Value()) != "bin material" {
		t.Fatalf("unexpected BinRead result %q", key.Value())
	}

	out, err := (Handler{}).BinWrite(keyinfo.NewContext(nil), key)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "bin material" {
		t.Fatalf("unexpected BinWrite result %q", out)
	}
}

func TestHandlerBinReadEmptyIsError(t *testing.T) {
	if err := (Handler{}).BinRead(keyinfo.NewContext(nil), nil, keyinfo.NewKey()); err == nil {
		t.Fatal("expected error for empty binary result")
	}
}

func TestHandlerBinWriteRequiresValidKey(t *testing.T) {
	if _, err := (Handler{}).BinWrite(keyinfo.NewContext(nil), keyinfo.NewKey()); err == nil {
		t.Fatal("expected error for an invalid key")
	}
}
