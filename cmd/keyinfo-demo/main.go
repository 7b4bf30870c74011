package main

import (
	"encoding/base64"
	"fmt"
	"log"

	"github.com/beevik/etree"

	"github.com/xmlsecgo/keyinfo"
	"github.com/xmlsecgo/keyinfo/handlers"
	"github.com/xmlsecgo/keyinfo/keydata"
	"github.com/xmlsecgo/keyinfo/keysmanager"
	"github.com/xmlsecgo/keyinfo/transform"
	"github.com/xmlsecgo/keyinfo/xmlutil"
)

func main() {
	fmt.Println("=== KeyInfo Processor Demo ===")
	fmt.Println()

	fmt.Println("Example 1: KeyName resolved via an offline keys manager")
	runKeyNameExample()

	fmt.Println("\nExample 2: RetrievalMethod following a same-document fragment")
	runRetrievalMethodExample()

	fmt.Println("\nExample 3: Depth-bound safety")
	runDepthBoundExample()

	fmt.Println("\n=== Demo Complete ===")
}

func runKeyNameExample() {
	manager, err := keysmanager.NewManager(&keysmanager.ManagerConfig{
		HandlerID:   "RawKeyValue",
		OfflineMode: true,
	})
	if err != nil {
		log.Fatalf("create keys manager: %v", err)
	}
	manager.Prime("alice", []byte("alice's signing key material"), keyinfo.KeyUsageVerify)

	doc := etree.NewDocument()
	root := doc.CreateElement("KeyInfo")
	root.CreateAttr("xmlns", handlers.NamespaceDSig)
	nameEl := root.CreateElement("KeyName")
	nameEl.SetText("  alice  ")

	ctx := keyinfo.NewContext(manager)
	ctx.Mode = keyinfo.ModeRead
	key := keyinfo.NewKey()

	if err := keyinfo.NodeRead(xmlutil.Wrap(root), key, ctx); err != nil {
		log.Fatalf("KeyInfo read failed: %v", err)
	}
	fmt.Printf("  resolved name=%q value=%q\n", key.Name(), string(key.Value()))
}

func runRetrievalMethodExample() {
	doc := etree.NewDocument()
	root := doc.CreateElement("Document")
	root.CreateAttr("xmlns", keydata.Namespace)

	keyData := root.CreateElement("RawKeyValue")
	keyData.CreateAttr("ID", "k1")
	keyData.SetText(base64.StdEncoding.EncodeToString([]byte("retrieved symmetric key")))

	keyInfo := root.CreateElement("KeyInfo")
	rm := keyInfo.CreateElement("RetrievalMethod")
	rm.CreateAttr("URI", "#k1")
	rm.CreateAttr("Type", "http://www.w3.org/2001/04/xmlenc#RawKeyValue")

	ctx := keyinfo.NewContext(nil)
	ctx.Mode = keyinfo.ModeRead
	ctx.Parser = xmlutil.DocumentParser{}
	ctx.RetrievalTransformCtx = transform.NewDefaultContext()
	ctx.KeyInfoRefTransformCtx = transform.NewDefaultContext()

	key := keyinfo.NewKey()
	if err := keyinfo.NodeRead(xmlutil.Wrap(keyInfo), key, ctx); err != nil {
		log.Fatalf("KeyInfo read failed: %v", err)
	}
	fmt.Printf("  RetrievalMethod resolved value=%q, recursion level on exit=%d\n",
		string(key.Value()), ctx.CurRetrievalMethodLevel())
}

func runDepthBoundExample() {
	doc := etree.NewDocument()
	root := doc.CreateElement("Document")
	root.CreateAttr("xmlns", keydata.Namespace)

	keyData := root.CreateElement("RawKeyValue")
	keyData.CreateAttr("ID", "inner")
	keyData.SetText(base64.StdEncoding.EncodeToString([]byte("never reached")))

	middleKeyInfo := root.CreateElement("KeyInfo")
	middleKeyInfo.CreateAttr("ID", "middle")
	innerRM := middleKeyInfo.CreateElement("RetrievalMethod")
	innerRM.CreateAttr("URI", "#inner")
	innerRM.CreateAttr("Type", "http://www.w3.org/2001/04/xmlenc#RawKeyValue")

	keyInfo := root.CreateElement("KeyInfo")
	ref := keyInfo.CreateElement("KeyInfoReference")
	ref.CreateAttr("xmlns", handlers.NamespaceDSig11)
	ref.CreateAttr("URI", "#middle")

	ctx := keyinfo.NewContext(nil)
	ctx.Mode = keyinfo.ModeRead
	ctx.Parser = xmlutil.DocumentParser{}
	ctx.RetrievalTransformCtx = transform.NewDefaultContext()
	ctx.KeyInfoRefTransformCtx = transform.NewDefaultContext()
	ctx.MaxKeyInfoReferenceLevel = 0

	key := keyinfo.NewKey()
	err := keyinfo.NodeRead(xmlutil.Wrap(keyInfo), key, ctx)
	fmt.Printf("  KeyInfoReference with MaxKeyInfoReferenceLevel=0 fails closed: err=%v\n", err)
}
