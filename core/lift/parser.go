package lift

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/google/uuid"

	"github.com/openlexica/liftcurator/core/errors"
	"github.com/openlexica/liftcurator/core/model"
	"github.com/openlexica/liftcurator/core/multitext"
)

// Options controls parsing. The zero value is ready to use: timestamps
// default through time.Now and guids through uuid.NewString. Tests inject
// both to keep parses reproducible.
type Options struct {
	// Now supplies defaulted dateCreated/dateModified values for entries
	// that lack them.
	Now func() time.Time

	// NewGUID mints guids for entries (and ids for senses) that lack them.
	NewGUID func() string
}

func (o Options) withDefaults() Options {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewGUID == nil {
		o.NewGUID = uuid.NewString
	}
	return o
}

// Warning is a non-fatal condition surfaced during a parse.
type Warning struct {
	// EntryID names the affected entry, when the condition is entry-scoped.
	EntryID string `json:"entry_id,omitempty"`

	// Message describes the condition.
	Message string `json:"message"`
}

// Failure records one entry that could not be parsed. Other entries in the
// same document are unaffected.
type Failure struct {
	// EntryID names the offending entry, when determinable.
	EntryID string `json:"entry_id,omitempty"`

	// Err is the structural error that made the entry unusable.
	Err error `json:"-"`

	// Message is Err's text, carried for JSON reports.
	Message string `json:"message"`
}

// Result is the outcome of parsing one document.
type Result struct {
	// Entries holds the successfully parsed entries in document order.
	Entries []*model.Entry `json:"entries"`

	// Mode is the namespace convention the document was detected to use.
	Mode Mode `json:"-"`

	// Warnings holds non-fatal conditions (ambiguous namespaces, advisory
	// order attributes that disagreed with document order).
	Warnings []Warning `json:"warnings,omitempty"`

	// Failures holds per-entry structural errors. A failed entry never
	// aborts the rest of the document.
	Failures []Failure `json:"failures,omitempty"`
}

type parser struct {
	res  resolver
	opts Options
	warn func(entryID, message string)
}

// ParseDocument parses a complete LIFT document into entries. Malformed XML
// or a missing lift root is an error; a structurally invalid entry is
// isolated into Result.Failures and parsing continues with the next entry.
func ParseDocument(data []byte) (*Result, error) {
	return ParseDocumentOpts(data, Options{})
}

// ParseDocumentOpts is ParseDocument with explicit Options.
func ParseDocumentOpts(data []byte, opts Options) (*Result, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &errors.ParseError{Format: "LIFT", Message: "malformed XML", Err: err}
	}
	root := firstElement(doc)
	if root == nil {
		return nil, errors.NewParse("LIFT", "", "document has no root element")
	}
	if root.Data != "lift" && root.Data != "entry" {
		return nil, errors.NewParse("LIFT", "", "root element is <"+root.Data+">, expected <lift>")
	}

	res, ambiguous := detectMode(root)
	result := &Result{Mode: res.mode}
	if ambiguous != nil {
		result.Warnings = append(result.Warnings, Warning{Message: ambiguous.Error()})
	}

	p := &parser{
		res:  res,
		opts: opts.withDefaults(),
		warn: func(entryID, message string) {
			result.Warnings = append(result.Warnings, Warning{EntryID: entryID, Message: message})
		},
	}

	entryNodes := res.children(root, "entry")
	if root.Data == "entry" {
		entryNodes = []*xmlquery.Node{root}
	}
	for _, n := range entryNodes {
		entry, err := p.parseEntry(n)
		if err != nil {
			result.Failures = append(result.Failures, Failure{
				EntryID: attr(n, "id"),
				Err:     err,
				Message: err.Error(),
			})
			continue
		}
		result.Entries = append(result.Entries, entry)
	}
	return result, nil
}

// ParseEntry parses a single-entry fragment. Unlike ParseDocument, a
// structural error in the entry is returned directly: there is nothing else
// to fail soft to.
func ParseEntry(data []byte) (*model.Entry, error) {
	return ParseEntryOpts(data, Options{})
}

// ParseEntryOpts is ParseEntry with explicit Options.
func ParseEntryOpts(data []byte, opts Options) (*model.Entry, error) {
	result, err := ParseDocumentOpts(data, opts)
	if err != nil {
		return nil, err
	}
	if len(result.Failures) > 0 {
		return nil, result.Failures[0].Err
	}
	if len(result.Entries) == 0 {
		return nil, errors.NewParse("LIFT", "", "fragment contains no entry")
	}
	return result.Entries[0], nil
}

func (p *parser) parseEntry(n *xmlquery.Node) (*model.Entry, error) {
	id := attr(n, "id")
	if id == "" {
		return nil, errors.NewStructural("", "id", "attribute absent or empty")
	}

	e := &model.Entry{
		ID:           id,
		GUID:         attr(n, "guid"),
		DateCreated:  attr(n, "dateCreated"),
		DateModified: attr(n, "dateModified"),
	}
	if e.GUID == "" {
		e.GUID = p.opts.NewGUID()
	}
	now := ""
	if e.DateCreated == "" || e.DateModified == "" {
		now = p.opts.Now().UTC().Format(time.RFC3339)
	}
	if e.DateCreated == "" {
		e.DateCreated = now
	}
	if e.DateModified == "" {
		e.DateModified = now
	}

	// lexical-unit is the one required child. The committed mode gets a
	// permissive retry before the entry is rejected.
	lu := p.res.child(n, "lexical-unit")
	if lu == nil {
		if lu = childAnyMode(n, "lexical-unit"); lu != nil {
			p.warn(id, "lexical-unit found only under local-name matching")
		}
	}
	if lu == nil {
		return nil, errors.NewStructural(id, "lexical-unit", "element absent")
	}
	e.LexicalUnit = p.parseForms(lu)
	if e.LexicalUnit.IsEmpty() {
		return nil, errors.NewStructural(id, "lexical-unit", "no non-empty form")
	}

	if c := p.res.child(n, "citation"); c != nil {
		e.CitationForm = nonEmpty(p.parseForms(c))
	}
	for i, sn := range p.res.children(n, "sense") {
		e.Senses = append(e.Senses, p.parseSense(sn, id, i))
	}
	for _, vn := range p.res.children(n, "variant") {
		e.Variants = append(e.Variants, &model.Variant{
			Forms:  nonEmpty(p.parseForms(vn)),
			Traits: p.parseTraits(vn),
		})
	}
	e.Relations = p.parseRelations(n)
	for _, en := range p.res.children(n, "etymology") {
		e.Etymologies = append(e.Etymologies, p.parseEtymology(en))
	}
	for _, pn := range p.res.children(n, "pronunciation") {
		e.Pronunciations = append(e.Pronunciations, p.parsePronunciation(pn))
	}
	e.Notes = p.parseNotes(n)
	e.Annotations = p.parseAnnotations(n)
	e.Reversals = p.parseReversals(n)
	e.Traits = p.parseTraits(n)
	return e, nil
}

// parseSense parses one sense element, recursing into subsenses with the
// identical algorithm. pos is the element's document-order position among
// its siblings; document order is authoritative and any stored order
// attribute is advisory only.
func (p *parser) parseSense(n *xmlquery.Node, entryID string, pos int) *model.Sense {
	s := &model.Sense{
		ID:    attr(n, "id"),
		Order: pos,
	}
	if s.ID == "" {
		s.ID = p.opts.NewGUID()
	}
	if raw := attr(n, "order"); raw != "" {
		if stored, err := strconv.Atoi(raw); err != nil || stored != pos {
			p.warn(entryID, "sense "+s.ID+": order attribute disagrees with document position; document order kept")
		}
	}

	s.Glosses = nonEmpty(p.parseGlosses(n))
	if d := p.res.child(n, "definition"); d != nil {
		s.Definitions = nonEmpty(p.parseForms(d))
	}
	if gi := p.res.child(n, "grammatical-info"); gi != nil {
		s.GrammaticalInfo = attr(gi, "value")
	}
	for _, en := range p.res.children(n, "example") {
		s.Examples = append(s.Examples, p.parseExample(en))
	}
	s.Notes = p.parseNotes(n)
	s.Relations = p.parseRelations(n)
	s.Reversals = p.parseReversals(n)
	s.Annotations = p.parseAnnotations(n)
	for _, in := range p.res.children(n, "illustration") {
		href := attr(in, "href")
		if href == "" {
			continue
		}
		ill := &model.Illustration{Href: href}
		if ln := p.res.child(in, "label"); ln != nil {
			ill.Label = nonEmpty(p.parseForms(ln))
		}
		s.Illustrations = append(s.Illustrations, ill)
	}
	s.Traits = p.parseTraits(n)
	for i, sub := range p.res.children(n, "subsense") {
		s.Subsenses = append(s.Subsenses, p.parseSense(sub, entryID, i))
	}
	return s
}

func (p *parser) parseExample(n *xmlquery.Node) *model.Example {
	ex := &model.Example{
		Forms:  nonEmpty(p.parseForms(n)),
		Source: attr(n, "source"),
	}
	for _, tn := range p.res.children(n, "translation") {
		ex.Translations = append(ex.Translations, &model.Translation{
			Type:  attr(tn, "type"),
			Forms: nonEmpty(p.parseForms(tn)),
		})
	}
	if nn := p.res.child(n, "note"); nn != nil {
		ex.Note = nonEmpty(p.parseForms(nn))
	}
	return ex
}

// parseEtymology extracts the named comment field and routes every other
// field element into the generic custom-fields bag.
func (p *parser) parseEtymology(n *xmlquery.Node) *model.Etymology {
	et := &model.Etymology{
		Type:   attr(n, "type"),
		Source: attr(n, "source"),
	}
	et.Form = nonEmpty(p.parseForms(n))
	et.Gloss = nonEmpty(p.parseGlosses(n))
	for _, fn := range p.res.children(n, "field") {
		ftype := attr(fn, "type")
		if ftype == "" {
			continue
		}
		text := nonEmpty(p.parseForms(fn))
		if text == nil {
			continue
		}
		if ftype == "comment" {
			et.Comment = text
			continue
		}
		if et.CustomFields == nil {
			et.CustomFields = make(map[string]*multitext.Text)
		}
		et.CustomFields[ftype] = text
	}
	return et
}

// parsePronunciation mirrors parseEtymology's named/generic field split for
// cv-pattern and tone.
func (p *parser) parsePronunciation(n *xmlquery.Node) *model.Pronunciation {
	pr := &model.Pronunciation{
		Forms: nonEmpty(p.parseForms(n)),
	}
	if mn := p.res.child(n, "media"); mn != nil {
		pr.Media = attr(mn, "href")
	}
	for _, fn := range p.res.children(n, "field") {
		ftype := attr(fn, "type")
		text := nonEmpty(p.parseForms(fn))
		if text == nil {
			continue
		}
		switch ftype {
		case "cv-pattern":
			pr.CVPattern = text
		case "tone":
			pr.Tone = text
		case "":
		default:
			if pr.CustomFields == nil {
				pr.CustomFields = make(map[string]*multitext.Text)
			}
			pr.CustomFields[ftype] = text
		}
	}
	return pr
}

// parseRelations collects direct-child relations only. Restricting the
// lookup to immediate children is what keeps entry-scoped and sense-scoped
// relations distinct.
func (p *parser) parseRelations(n *xmlquery.Node) []*model.Relation {
	var out []*model.Relation
	for _, rn := range p.res.children(n, "relation") {
		rel := &model.Relation{
			Type:  attr(rn, "type"),
			Ref:   attr(rn, "ref"),
			Order: model.OrderUnset,
		}
		if raw := attr(rn, "order"); raw != "" {
			if v, err := strconv.Atoi(raw); err == nil {
				rel.Order = v
			}
		}
		out = append(out, rel)
	}
	return out
}

func (p *parser) parseNotes(n *xmlquery.Node) []*model.Note {
	var out []*model.Note
	for _, nn := range p.res.children(n, "note") {
		out = append(out, &model.Note{
			Type:    attr(nn, "type"),
			Content: nonEmpty(p.parseForms(nn)),
		})
	}
	return out
}

// parseAnnotations tolerates minimal annotations: name alone is enough, and
// <annotation name="flagged"/> yields a record with only Name set. An
// annotation without a name has no identity and is skipped.
func (p *parser) parseAnnotations(n *xmlquery.Node) []*model.Annotation {
	var out []*model.Annotation
	for _, an := range p.res.children(n, "annotation") {
		name := attr(an, "name")
		if name == "" {
			continue
		}
		out = append(out, &model.Annotation{
			Name:    name,
			Value:   attr(an, "value"),
			Who:     attr(an, "who"),
			When:    attr(an, "when"),
			Content: nonEmpty(p.parseForms(an)),
		})
	}
	return out
}

func (p *parser) parseReversals(n *xmlquery.Node) []*model.Reversal {
	var out []*model.Reversal
	for _, rn := range p.res.children(n, "reversal") {
		out = append(out, &model.Reversal{
			Type:  attr(rn, "type"),
			Forms: nonEmpty(p.parseForms(rn)),
		})
	}
	return out
}

func (p *parser) parseTraits(n *xmlquery.Node) []model.Trait {
	var out []model.Trait
	for _, tn := range p.res.children(n, "trait") {
		name := attr(tn, "name")
		if name == "" {
			continue
		}
		out = append(out, model.Trait{Name: name, Value: attr(tn, "value")})
	}
	return out
}

// parseForms gathers the form children of n into one multitext. Empty texts
// are dropped by Set, so a form with no content leaves no entry behind.
func (p *parser) parseForms(n *xmlquery.Node) *multitext.Text {
	t := &multitext.Text{}
	for _, fn := range p.res.children(n, "form") {
		t.Set(attr(fn, "lang"), p.formText(fn))
	}
	return t
}

// parseGlosses gathers gloss children, which carry one language each.
func (p *parser) parseGlosses(n *xmlquery.Node) *multitext.Text {
	t := &multitext.Text{}
	for _, gn := range p.res.children(n, "gloss") {
		t.Set(attr(gn, "lang"), p.formText(gn))
	}
	return t
}

// formText extracts the text of a form-like element: the text child when
// present, the element's own text content otherwise.
func (p *parser) formText(n *xmlquery.Node) string {
	if tn := p.res.child(n, "text"); tn != nil {
		return strings.TrimSpace(tn.InnerText())
	}
	return strings.TrimSpace(n.InnerText())
}

// nonEmpty collapses an empty multitext to nil so that "absent" has exactly
// one representation in the model.
func nonEmpty(t *multitext.Text) *multitext.Text {
	if t.IsEmpty() {
		return nil
	}
	return t
}
