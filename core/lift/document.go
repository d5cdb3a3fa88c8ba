package lift

import (
	"bytes"
	"encoding/xml"
	"io"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/openlexica/liftcurator/core/errors"
)

// Document is a parsed LIFT XML document held as a raw node tree. It backs
// the XPath query surface and the formatter; the model-level parser in this
// package consumes the same tree through ParseDocument.
type Document struct {
	root *xmlquery.Node
}

// Node is one XML node of a Document.
type Node struct {
	node *xmlquery.Node
}

// LoadDocument parses raw XML into a queryable Document. Only
// well-formedness is checked here; LIFT structure is the parser's concern.
func LoadDocument(data []byte) (*Document, error) {
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &errors.ParseError{Format: "XML", Message: "malformed XML", Err: err}
	}
	return &Document{root: root}, nil
}

// Root returns the document's root element, or nil for an empty document.
func (d *Document) Root() *Node {
	if n := firstElement(d.root); n != nil {
		return &Node{node: n}
	}
	return nil
}

// XPath executes an XPath query against the document. Queries should use
// local-name() matching when the document's namespace convention is unknown,
// e.g. //*[local-name()='entry'].
func (d *Document) XPath(expr string) ([]*Node, error) {
	if _, err := xpath.Compile(expr); err != nil {
		return nil, errors.Wrapf(err, "invalid xpath %q", expr)
	}
	nodes, err := xmlquery.QueryAll(d.root, expr)
	if err != nil {
		return nil, errors.Wrap(err, "xpath query failed")
	}
	result := make([]*Node, len(nodes))
	for i, n := range nodes {
		result[i] = &Node{node: n}
	}
	return result, nil
}

// XPathFirst executes an XPath query and returns the first match, or nil.
func (d *Document) XPathFirst(expr string) (*Node, error) {
	if _, err := xpath.Compile(expr); err != nil {
		return nil, errors.Wrapf(err, "invalid xpath %q", expr)
	}
	node, err := xmlquery.Query(d.root, expr)
	if err != nil {
		return nil, errors.Wrap(err, "xpath query failed")
	}
	if node == nil {
		return nil, nil
	}
	return &Node{node: node}, nil
}

// Name returns the element's local name.
func (n *Node) Name() string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.Data
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.SelectAttr(name)
}

// InnerText returns the concatenated text content of the node and its
// descendants.
func (n *Node) InnerText() string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.InnerText()
}

// OuterXML returns the node serialized back to XML text.
func (n *Node) OuterXML() string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.OutputXML(true)
}

// CheckWellFormed checks that data is well-formed XML and reports every
// token error found. Entity expansion is disabled: LIFT documents have no
// business declaring entities, and this keeps XXE out.
func CheckWellFormed(data []byte) error {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Entity = map[string]string{}
	for {
		_, err := decoder.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &errors.ParseError{Format: "XML", Message: "not well-formed", Err: err}
		}
	}
}
