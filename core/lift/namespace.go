package lift

import (
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/openlexica/liftcurator/core/errors"
)

// LIFT namespace constants. Output always binds the prefix on the root
// element; input may use any prefix or none at all.
const (
	// Namespace is the LIFT namespace URI declared on serialized documents.
	Namespace = "http://code.google.com/p/lift-standard"

	// NSPrefix is the element prefix used for serialized output.
	NSPrefix = "lift"

	// Version is the LIFT schema version this engine reads and writes.
	Version = "0.13"
)

// Mode is the namespace convention a document was detected to use.
type Mode int

const (
	// ModeBare matches elements with no namespace prefix (hand-authored
	// corpora and FieldWorks exports).
	ModeBare Mode = iota

	// ModeNamespaced matches elements carrying a namespace prefix.
	ModeNamespaced
)

func (m Mode) String() string {
	if m == ModeNamespaced {
		return "namespaced"
	}
	return "bare"
}

// resolver supplies the element-lookup strategy for one parse invocation.
// The mode is detected once per document and threaded explicitly into every
// lookup; it is never re-probed per element and never stored globally.
type resolver struct {
	mode Mode

	// permissive enables local-name-only matching. Set when the document
	// mixes conventions and the resolver cannot commit to one mode.
	permissive bool
}

// detectMode probes the document's anchor elements and commits to a mode.
// The root lift element (or a fragment's entry element) is probed first; if
// the first entry below it disagrees about prefixing, the document is
// recorded as bare/ambiguous and lookups fall back to local-name matching.
func detectMode(root *xmlquery.Node) (resolver, *errors.AmbiguousNamespaceError) {
	rootPrefixed := root.Prefix != ""

	anchor := firstDescendantNamed(root, "entry")
	if anchor == nil || root.Data == "entry" {
		// Single-entry fragment or an empty lexicon: the root is the only
		// evidence available.
		if rootPrefixed {
			return resolver{mode: ModeNamespaced}, nil
		}
		return resolver{mode: ModeBare}, nil
	}

	anchorPrefixed := anchor.Prefix != ""
	if rootPrefixed != anchorPrefixed {
		return resolver{mode: ModeBare, permissive: true},
			&errors.AmbiguousNamespaceError{Anchor: anchor.Data}
	}
	if rootPrefixed {
		return resolver{mode: ModeNamespaced}, nil
	}
	return resolver{mode: ModeBare}, nil
}

// matches reports whether n is an element with the given local name under
// the resolver's mode.
func (r resolver) matches(n *xmlquery.Node, local string) bool {
	if n.Type != xmlquery.ElementNode || n.Data != local {
		return false
	}
	if r.permissive {
		return true
	}
	if r.mode == ModeNamespaced {
		return n.Prefix != ""
	}
	return n.Prefix == ""
}

// child returns the first direct child element named local, or nil. Lookup
// is restricted to immediate children on purpose: a relation living inside a
// sense must never be captured at entry scope.
func (r resolver) child(n *xmlquery.Node, local string) *xmlquery.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if r.matches(c, local) {
			return c
		}
	}
	return nil
}

// children returns all direct child elements named local, in document order.
func (r resolver) children(n *xmlquery.Node, local string) []*xmlquery.Node {
	var out []*xmlquery.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if r.matches(c, local) {
			out = append(out, c)
		}
	}
	return out
}

// childAnyMode is the permissive retry used only for required elements: it
// matches on local name alone, ignoring the committed mode. Optional
// elements never get this retry; their absence under the committed mode is
// simply absence.
func childAnyMode(n *xmlquery.Node, local string) *xmlquery.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == local {
			return c
		}
	}
	return nil
}

// firstDescendantNamed finds the first descendant element with the given
// local name, in document order, regardless of prefix.
func firstDescendantNamed(n *xmlquery.Node, local string) *xmlquery.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			if c.Data == local {
				return c
			}
			if found := firstDescendantNamed(c, local); found != nil {
				return found
			}
		}
	}
	return nil
}

// firstElement returns the first element child of a parsed document node,
// skipping the XML declaration, comments, and whitespace.
func firstElement(doc *xmlquery.Node) *xmlquery.Node {
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			return c
		}
	}
	return nil
}

// attr returns the named attribute value with surrounding whitespace kept
// intact (entry ids may contain interior spaces, but stray newlines from
// pretty-printed sources are not part of the value).
func attr(n *xmlquery.Node, name string) string {
	return strings.Trim(n.SelectAttr(name), "\r\n\t")
}
