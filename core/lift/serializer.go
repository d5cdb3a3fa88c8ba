package lift

import (
	"bytes"
	"sort"
	"strconv"
	"time"

	"github.com/openlexica/liftcurator/core/encoding"
	"github.com/openlexica/liftcurator/core/errors"
	"github.com/openlexica/liftcurator/core/model"
	"github.com/openlexica/liftcurator/core/multitext"
)

// SerializeOptions controls serialization.
type SerializeOptions struct {
	// Now, when non-zero, is stamped into every entry's dateModified: an
	// entry regenerated as part of an edit carries the edit time. When zero,
	// dateModified is carried through unchanged. dateCreated and guid are
	// always carried through.
	Now time.Time

	// Indent is the indentation unit. Defaults to two spaces.
	Indent string
}

func (o SerializeOptions) withDefaults() SerializeOptions {
	if o.Indent == "" {
		o.Indent = "  "
	}
	return o
}

// Serialize emits one well-formed LIFT document for the given entries.
// Output is always namespace-prefixed regardless of how the source document
// was written (write-side normalization). Immediately before emission every
// sibling list is renumbered from its current list order, and no empty
// optional element is ever emitted.
func Serialize(entries []*model.Entry, opts SerializeOptions) ([]byte, error) {
	opts = opts.withDefaults()
	w := &xmlWriter{indent: opts.Indent}
	w.buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	w.open("lift", kv{"version", Version}, kv{"xmlns:" + NSPrefix, Namespace})
	for _, e := range entries {
		if err := writeEntry(w, e, opts); err != nil {
			return nil, err
		}
	}
	w.close("lift")
	return w.buf.Bytes(), nil
}

// SerializeEntry emits a single-entry fragment with the namespace bound on
// the entry element itself.
func SerializeEntry(e *model.Entry, opts SerializeOptions) ([]byte, error) {
	opts = opts.withDefaults()
	w := &xmlWriter{indent: opts.Indent}
	if err := writeEntryWithNS(w, e, opts, true); err != nil {
		return nil, err
	}
	return w.buf.Bytes(), nil
}

func writeEntry(w *xmlWriter, e *model.Entry, opts SerializeOptions) error {
	return writeEntryWithNS(w, e, opts, false)
}

func writeEntryWithNS(w *xmlWriter, e *model.Entry, opts SerializeOptions, bindNS bool) error {
	if e.ID == "" {
		return errors.NewStructural("", "id", "entry has no id")
	}
	if e.LexicalUnit.IsEmpty() {
		return errors.NewStructural(e.ID, "lexical-unit", "entry has no lexical-unit")
	}

	modified := e.DateModified
	if !opts.Now.IsZero() {
		modified = opts.Now.UTC().Format(time.RFC3339)
	}
	attrs := []kv{
		{"id", e.ID},
		{"guid", e.GUID},
		{"dateCreated", e.DateCreated},
		{"dateModified", modified},
	}
	if bindNS {
		attrs = append(attrs, kv{"xmlns:" + NSPrefix, Namespace})
	}
	w.open("entry", attrs...)

	writeForms(w, "lexical-unit", e.LexicalUnit)
	writeForms(w, "citation", e.CitationForm)
	for _, pr := range e.Pronunciations {
		writePronunciation(w, pr)
	}
	for _, v := range e.Variants {
		if v.Forms.IsEmpty() && len(v.Traits) == 0 {
			continue
		}
		w.open("variant")
		writeFormChildren(w, v.Forms)
		writeTraits(w, v.Traits)
		w.close("variant")
	}

	// Renormalize sense orders from current list position before emitting;
	// stale stored values are discarded.
	model.RenumberTree(e.Senses)
	for _, s := range e.Senses {
		writeSense(w, "sense", s)
	}

	writeNotes(w, e.Notes)
	writeRelations(w, e.Relations)
	for _, et := range e.Etymologies {
		writeEtymology(w, et)
	}
	writeAnnotations(w, e.Annotations)
	writeReversals(w, e.Reversals)
	writeTraits(w, e.Traits)
	w.close("entry")
	return nil
}

// writeSense emits one sense (or subsense) element, recursing into subsenses
// with no depth cap; emission is the structural mirror of parseSense.
func writeSense(w *xmlWriter, name string, s *model.Sense) {
	w.open(name, kv{"id", s.ID}, kv{"order", strconv.Itoa(s.Order)})
	if s.GrammaticalInfo != "" {
		w.selfClose("grammatical-info", kv{"value", s.GrammaticalInfo})
	}
	writeGlosses(w, s.Glosses)
	writeForms(w, "definition", s.Definitions)
	for _, ex := range s.Examples {
		writeExample(w, ex)
	}
	writeNotes(w, s.Notes)
	writeRelations(w, s.Relations)
	writeReversals(w, s.Reversals)
	writeAnnotations(w, s.Annotations)
	for _, ill := range s.Illustrations {
		if ill.Href == "" {
			continue
		}
		if ill.Label.IsEmpty() {
			w.selfClose("illustration", kv{"href", ill.Href})
			continue
		}
		w.open("illustration", kv{"href", ill.Href})
		writeForms(w, "label", ill.Label)
		w.close("illustration")
	}
	writeTraits(w, s.Traits)
	for _, sub := range s.Subsenses {
		writeSense(w, "subsense", sub)
	}
	w.close(name)
}

func writeExample(w *xmlWriter, ex *model.Example) {
	if ex.Forms.IsEmpty() && len(ex.Translations) == 0 && ex.Note.IsEmpty() && ex.Source == "" {
		return
	}
	w.open("example", kv{"source", ex.Source})
	writeFormChildren(w, ex.Forms)
	for _, tr := range ex.Translations {
		if tr.Forms.IsEmpty() {
			continue
		}
		w.open("translation", kv{"type", tr.Type})
		writeFormChildren(w, tr.Forms)
		w.close("translation")
	}
	writeForms(w, "note", ex.Note)
	w.close("example")
}

func writeEtymology(w *xmlWriter, et *model.Etymology) {
	w.open("etymology", kv{"type", et.Type}, kv{"source", et.Source})
	writeFormChildren(w, et.Form)
	writeGlosses(w, et.Gloss)
	writeField(w, "comment", et.Comment)
	writeCustomFields(w, et.CustomFields)
	w.close("etymology")
}

func writePronunciation(w *xmlWriter, pr *model.Pronunciation) {
	if pr.Forms.IsEmpty() && pr.Media == "" && pr.CVPattern.IsEmpty() &&
		pr.Tone.IsEmpty() && len(pr.CustomFields) == 0 {
		return
	}
	w.open("pronunciation")
	writeFormChildren(w, pr.Forms)
	if pr.Media != "" {
		w.selfClose("media", kv{"href", pr.Media})
	}
	writeField(w, "cv-pattern", pr.CVPattern)
	writeField(w, "tone", pr.Tone)
	writeCustomFields(w, pr.CustomFields)
	w.close("pronunciation")
}

func writeNotes(w *xmlWriter, notes []*model.Note) {
	for _, n := range notes {
		if n.Content.IsEmpty() {
			continue
		}
		w.open("note", kv{"type", n.Type})
		writeFormChildren(w, n.Content)
		w.close("note")
	}
}

// writeRelations renumbers the ordered relations 0..k-1 in list order before
// emitting; relations that never carried an order attribute stay unordered.
func writeRelations(w *xmlWriter, rels []*model.Relation) {
	next := 0
	for _, r := range rels {
		if r.Type == "" && r.Ref == "" {
			continue
		}
		attrs := []kv{{"type", r.Type}, {"ref", r.Ref}}
		if r.Order != model.OrderUnset {
			attrs = append(attrs, kv{"order", strconv.Itoa(next)})
			next++
		}
		w.selfClose("relation", attrs...)
	}
}

func writeAnnotations(w *xmlWriter, anns []*model.Annotation) {
	for _, a := range anns {
		if a.Name == "" {
			continue
		}
		attrs := []kv{{"name", a.Name}, {"value", a.Value}, {"who", a.Who}, {"when", a.When}}
		if a.Content.IsEmpty() {
			w.selfClose("annotation", attrs...)
			continue
		}
		w.open("annotation", attrs...)
		writeFormChildren(w, a.Content)
		w.close("annotation")
	}
}

func writeReversals(w *xmlWriter, revs []*model.Reversal) {
	for _, r := range revs {
		if r.Forms.IsEmpty() {
			continue
		}
		w.open("reversal", kv{"type", r.Type})
		writeFormChildren(w, r.Forms)
		w.close("reversal")
	}
}

func writeTraits(w *xmlWriter, traits []model.Trait) {
	for _, tr := range traits {
		if tr.Name == "" {
			continue
		}
		w.selfClose("trait", kv{"name", tr.Name}, kv{"value", tr.Value})
	}
}

func writeField(w *xmlWriter, ftype string, t *multitext.Text) {
	if t.IsEmpty() {
		return
	}
	w.open("field", kv{"type", ftype})
	writeFormChildren(w, t)
	w.close("field")
}

// writeCustomFields emits the generic field bag in sorted key order so that
// output is deterministic.
func writeCustomFields(w *xmlWriter, fields map[string]*multitext.Text) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeField(w, k, fields[k])
	}
}

// writeForms wraps the multitext in a named element, omitting the element
// entirely when the multitext is empty.
func writeForms(w *xmlWriter, name string, t *multitext.Text) {
	if t.IsEmpty() {
		return
	}
	w.open(name)
	writeFormChildren(w, t)
	w.close(name)
}

func writeFormChildren(w *xmlWriter, t *multitext.Text) {
	if t.IsEmpty() {
		return
	}
	for _, f := range t.Entries() {
		w.open("form", kv{"lang", f.Lang})
		w.textElem("text", f.Text)
		w.close("form")
	}
}

func writeGlosses(w *xmlWriter, t *multitext.Text) {
	if t.IsEmpty() {
		return
	}
	for _, f := range t.Entries() {
		w.open("gloss", kv{"lang", f.Lang})
		w.textElem("text", f.Text)
		w.close("gloss")
	}
}

// kv is one attribute. Attributes with empty values are omitted.
type kv struct {
	k, v string
}

// xmlWriter emits indented, namespace-prefixed LIFT XML into a buffer.
type xmlWriter struct {
	buf    bytes.Buffer
	indent string
	depth  int
}

func (w *xmlWriter) writeIndent() {
	for i := 0; i < w.depth; i++ {
		w.buf.WriteString(w.indent)
	}
}

func (w *xmlWriter) writeAttrs(attrs []kv) {
	for _, a := range attrs {
		if a.v == "" {
			continue
		}
		w.buf.WriteString(" ")
		w.buf.WriteString(a.k)
		w.buf.WriteString(`="`)
		w.buf.WriteString(encoding.EscapeXMLAttr(a.v))
		w.buf.WriteString(`"`)
	}
}

func (w *xmlWriter) open(name string, attrs ...kv) {
	w.writeIndent()
	w.buf.WriteString("<" + NSPrefix + ":" + name)
	w.writeAttrs(attrs)
	w.buf.WriteString(">\n")
	w.depth++
}

func (w *xmlWriter) close(name string) {
	w.depth--
	w.writeIndent()
	w.buf.WriteString("</" + NSPrefix + ":" + name + ">\n")
}

func (w *xmlWriter) selfClose(name string, attrs ...kv) {
	w.writeIndent()
	w.buf.WriteString("<" + NSPrefix + ":" + name)
	w.writeAttrs(attrs)
	w.buf.WriteString("/>\n")
}

func (w *xmlWriter) textElem(name, text string) {
	w.writeIndent()
	w.buf.WriteString("<" + NSPrefix + ":" + name + ">")
	w.buf.WriteString(encoding.EscapeXMLText(text))
	w.buf.WriteString("</" + NSPrefix + ":" + name + ">\n")
}
