package lift

import (
	"bytes"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/openlexica/liftcurator/core/encoding"
)

// FormatOptions controls XML pretty-printing.
type FormatOptions struct {
	Indent string // Indentation string (e.g., "  " or "\t")
}

// Format pretty-prints XML data without interpreting it as LIFT: element
// names, prefixes, and attribute values pass through untouched, so a bare
// document stays bare. Use Serialize for write-side normalization.
func Format(data []byte, opts FormatOptions) ([]byte, error) {
	if opts.Indent == "" {
		opts.Indent = "  "
	}
	doc, err := LoadDocument(data)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	formatNode(&buf, doc.root, 0, opts.Indent)
	return buf.Bytes(), nil
}

// formatNode recursively formats an XML node.
func formatNode(w *bytes.Buffer, n *xmlquery.Node, depth int, indent string) {
	switch n.Type {
	case xmlquery.DocumentNode:
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			formatNode(w, child, depth, indent)
		}

	case xmlquery.DeclarationNode:
		w.WriteString("<?xml")
		for _, a := range n.Attr {
			w.WriteString(" ")
			w.WriteString(a.Name.Local)
			w.WriteString("=\"")
			w.WriteString(encoding.EscapeXMLAttr(a.Value))
			w.WriteString("\"")
		}
		w.WriteString("?>\n")

	case xmlquery.ElementNode:
		writeFormatIndent(w, depth, indent)
		w.WriteString("<")
		w.WriteString(qualifiedName(n))
		for _, a := range n.Attr {
			w.WriteString(" ")
			if a.Name.Space != "" {
				w.WriteString("xmlns:")
				w.WriteString(a.Name.Local)
			} else {
				w.WriteString(a.Name.Local)
			}
			w.WriteString("=\"")
			w.WriteString(encoding.EscapeXMLAttr(a.Value))
			w.WriteString("\"")
		}

		hasElementChildren := false
		hasContent := false
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			switch child.Type {
			case xmlquery.ElementNode:
				hasElementChildren = true
				hasContent = true
			case xmlquery.TextNode:
				if strings.TrimSpace(child.Data) != "" {
					hasContent = true
				}
			}
		}
		if !hasContent {
			w.WriteString("/>\n")
			return
		}

		w.WriteString(">")
		if hasElementChildren {
			w.WriteString("\n")
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			switch child.Type {
			case xmlquery.ElementNode:
				formatNode(w, child, depth+1, indent)
			case xmlquery.TextNode:
				text := strings.TrimSpace(child.Data)
				if text == "" {
					continue
				}
				if hasElementChildren {
					writeFormatIndent(w, depth+1, indent)
				}
				w.WriteString(encoding.EscapeXMLText(text))
				if hasElementChildren {
					w.WriteString("\n")
				}
			case xmlquery.CharDataNode:
				w.WriteString("<![CDATA[")
				w.WriteString(child.Data)
				w.WriteString("]]>")
			}
		}
		if hasElementChildren {
			writeFormatIndent(w, depth, indent)
		}
		w.WriteString("</")
		w.WriteString(qualifiedName(n))
		w.WriteString(">\n")

	case xmlquery.CommentNode:
		writeFormatIndent(w, depth, indent)
		w.WriteString("<!--")
		w.WriteString(n.Data)
		w.WriteString("-->\n")
	}
}

func qualifiedName(n *xmlquery.Node) string {
	if n.Prefix != "" {
		return n.Prefix + ":" + n.Data
	}
	return n.Data
}

func writeFormatIndent(w *bytes.Buffer, depth int, indent string) {
	for i := 0; i < depth; i++ {
		w.WriteString(indent)
	}
}
