// Package transform provides a minimal keyinfo.TransformContext: same
// -document URI-fragment dereference plus a small named transform chain.
// It exists to exercise RetrievalMethod end-to-end; it is not a general
// XML canonicalization/transform engine, which is explicitly out of scope.
package transform

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/xmlsecgo/keyinfo"
	"github.com/xmlsecgo/keyinfo/xmlutil"
)

// DefaultContext is a minimal keyinfo.TransformContext implementation.
type DefaultContext struct {
	uri        string
	transforms []string
	result     []byte
}

// NewDefaultContext returns a fresh, reset DefaultContext.
func NewDefaultContext() *DefaultContext { return &DefaultContext{} }

func (c *DefaultContext) Reset() {
	c.uri = ""
	c.transforms = nil
	c.result = nil
}

func (c *DefaultContext) SetURI(uri string) error {
	if uri == "" {
		return fmt.Errorf("transform: URI must not be empty")
	}
	c.uri = uri
	return nil
}

// ReadTransformsNode builds the transform chain from a <Transforms>
// element's <Transform Algorithm="..."/> children. Only a base64-decode
// transform is recognized; anything else is treated as identity, matching
// this package's minimal scope.
func (c *DefaultContext) ReadTransformsNode(node keyinfo.XMLNode) error {
	for _, child := range node.Children() {
		if child.LocalName() != "Transform" {
			continue
		}
		alg, _ := child.Attr("Algorithm")
		if strings.Contains(alg, "base64") {
			c.transforms = append(c.transforms, "base64")
		} else {
			c.transforms = append(c.transforms, "identity")
		}
	}
	return nil
}

// Execute resolves the configured URI against ownerDoc (only same-document
// fragment URIs, "#id", are supported) and runs the transform chain over
// the serialized target element. A base64 transform applied directly to
// the target decodes the element's text content.
func (c *DefaultContext) Execute(ownerDoc keyinfo.XMLNode) error {
	if !strings.HasPrefix(c.uri, "#") {
		return fmt.Errorf("transform: unsupported URI %q (only same-document fragments are supported)", c.uri)
	}
	id := strings.TrimPrefix(c.uri, "#")
	target, ok := ownerDoc.FindByID(id)
	if !ok {
		return fmt.Errorf("transform: fragment %q not found in document", c.uri)
	}

	data, err := xmlutil.SerializeElement(target)
	if err != nil {
		return fmt.Errorf("transform: serialize target: %w", err)
	}

	fromNode := true
	for _, t := range c.transforms {
		switch t {
		case "base64":
			input := data
			if fromNode {
				input = []byte(target.Text())
			}
			decoded, err := decodeBase64Loose(input)
			if err != nil {
				return fmt.Errorf("transform: base64 decode: %w", err)
			}
			data = decoded
			fromNode = false
		case "identity":
			// no-op
		}
	}

	if len(data) == 0 {
		return fmt.Errorf("transform: result buffer is empty")
	}
	c.result = data
	return nil
}

func (c *DefaultContext) Result() []byte { return c.result }

// CopyUserPrefs is a no-op: this minimal implementation carries no
// user-configurable preferences beyond the per-invocation URI/chain, which
// Reset already clears between uses.
func (c *DefaultContext) CopyUserPrefs(dst keyinfo.TransformContext) {}

func decodeBase64Loose(data []byte) ([]byte, error) {
	var b strings.Builder
	for _, r := range string(data) {
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			continue
		}
		b.WriteRune(r)
	}
	return base64.StdEncoding.DecodeString(b.String())
}
