package model

// types.go - Consolidated LIFT model type definitions
// This file contains all in-memory lexicon types used throughout liftcurator.
// The parser, serializer, store, and query layers all share these types rather
// than defining their own.

import (
	"github.com/openlexica/liftcurator/core/multitext"
)

// OrderUnset marks a Relation whose source document carried no order
// attribute. Relations with OrderUnset are never renumbered.
const OrderUnset = -1

// Entry is the top-level lexicographic unit: a headword plus all of its
// senses and metadata. Entry ids are unique within a collection (enforced by
// the external store, not here) and may contain spaces.
type Entry struct {
	// ID is the entry identifier (e.g., "cat_1", "run away_2").
	ID string `json:"id"`

	// GUID is the globally unique identifier carried through round-trips.
	GUID string `json:"guid,omitempty"`

	// LexicalUnit is the headword. Required: an entry without a non-empty
	// lexical-unit is structurally invalid.
	LexicalUnit *multitext.Text `json:"lexical_unit"`

	// CitationForm is the form used when citing the entry (optional).
	CitationForm *multitext.Text `json:"citation_form,omitempty"`

	// DateCreated is the ISO-8601 creation timestamp.
	DateCreated string `json:"date_created,omitempty"`

	// DateModified is the ISO-8601 last-modification timestamp.
	DateModified string `json:"date_modified,omitempty"`

	// Senses are the entry's senses in document order.
	Senses []*Sense `json:"senses,omitempty"`

	// Variants are alternate forms of the headword.
	Variants []*Variant `json:"variants,omitempty"`

	// Relations are entry-scoped lexical relations. A relation nested inside
	// a sense belongs to that sense only and never appears here.
	Relations []*Relation `json:"relations,omitempty"`

	// Etymologies describe the origin of the word.
	Etymologies []*Etymology `json:"etymologies,omitempty"`

	// Pronunciations hold phonetic forms and optional audio references.
	Pronunciations []*Pronunciation `json:"pronunciations,omitempty"`

	// Notes are typed free-text notes.
	Notes []*Note `json:"notes,omitempty"`

	// Annotations carry editorial-workflow metadata.
	Annotations []*Annotation `json:"annotations,omitempty"`

	// Reversals are entry-level reversal index forms.
	Reversals []*Reversal `json:"reversals,omitempty"`

	// Traits are name/value constraints, stored verbatim for the external
	// validation engine to inspect.
	Traits []Trait `json:"traits,omitempty"`
}

// Sense is one meaning of an entry. Senses nest recursively: Subsenses holds
// child senses at unlimited depth, processed by direct recursion everywhere.
type Sense struct {
	// ID is the sense identifier, unique among siblings.
	ID string `json:"id"`

	// Order is the 0-based position among siblings. It is recomputed on every
	// structural change and renormalized again at serialization time.
	Order int `json:"order"`

	// Glosses are brief translations of the sense.
	Glosses *multitext.Text `json:"glosses,omitempty"`

	// Definitions are full definitions of the sense.
	Definitions *multitext.Text `json:"definitions,omitempty"`

	// GrammaticalInfo is the part-of-speech value, stored verbatim.
	GrammaticalInfo string `json:"grammatical_info,omitempty"`

	// Examples illustrate the sense in use.
	Examples []*Example `json:"examples,omitempty"`

	// Notes are typed free-text notes.
	Notes []*Note `json:"notes,omitempty"`

	// Relations are sense-scoped lexical relations.
	Relations []*Relation `json:"relations,omitempty"`

	// Reversals are reversal index forms for this sense.
	Reversals []*Reversal `json:"reversals,omitempty"`

	// Annotations carry editorial-workflow metadata.
	Annotations []*Annotation `json:"annotations,omitempty"`

	// Illustrations reference image files for this sense.
	Illustrations []*Illustration `json:"illustrations,omitempty"`

	// Subsenses are child senses in the same shape, recursively.
	Subsenses []*Sense `json:"subsenses,omitempty"`

	// Traits are name/value constraints, stored verbatim.
	Traits []Trait `json:"traits,omitempty"`
}

// Example is a usage example attached to a sense.
type Example struct {
	// Forms is the example text.
	Forms *multitext.Text `json:"forms,omitempty"`

	// Translations are typed translations of the example.
	Translations []*Translation `json:"translations,omitempty"`

	// Note is a free-text note on the example.
	Note *multitext.Text `json:"note,omitempty"`

	// Source names where the example was collected.
	Source string `json:"source,omitempty"`
}

// Translation is one typed translation of an example.
type Translation struct {
	// Type distinguishes translations (e.g., "Free translation").
	Type string `json:"type,omitempty"`

	// Forms is the translated text.
	Forms *multitext.Text `json:"forms,omitempty"`
}

// Etymology describes the origin of a word. The comment field is first-class;
// any other <field> child lands in CustomFields, keyed by its type attribute.
type Etymology struct {
	// Type is the etymology type (e.g., "borrowed", "proto").
	Type string `json:"type,omitempty"`

	// Source names the source language or form.
	Source string `json:"source,omitempty"`

	// Form is the etymon form.
	Form *multitext.Text `json:"form,omitempty"`

	// Gloss is the etymon gloss.
	Gloss *multitext.Text `json:"gloss,omitempty"`

	// Comment is the first-class comment field.
	Comment *multitext.Text `json:"comment,omitempty"`

	// CustomFields holds any other field elements, keyed by field type.
	CustomFields map[string]*multitext.Text `json:"custom_fields,omitempty"`
}

// Pronunciation holds a phonetic form for an entry. As with Etymology,
// cv-pattern and tone are first-class while other fields are generic.
type Pronunciation struct {
	// Forms is the phonetic text, keyed by phonetic language tags
	// (e.g., "seh-fonipa").
	Forms *multitext.Text `json:"forms,omitempty"`

	// Media is an audio file reference (optional).
	Media string `json:"media,omitempty"`

	// CVPattern is the consonant-vowel pattern field.
	CVPattern *multitext.Text `json:"cv_pattern,omitempty"`

	// Tone is the tone field.
	Tone *multitext.Text `json:"tone,omitempty"`

	// CustomFields holds any other field elements, keyed by field type.
	CustomFields map[string]*multitext.Text `json:"custom_fields,omitempty"`
}

// Relation is a lexical relation to another entry or sense. Entry-scoped and
// sense-scoped relations are distinct: each lives only where it was parsed.
type Relation struct {
	// Type is the relation type (e.g., "synonym", "antonym"), stored verbatim.
	Type string `json:"type"`

	// Ref is the id of the target entry or sense.
	Ref string `json:"ref"`

	// Order is the 0-based position among ordered relations, or OrderUnset
	// when the source carried no order attribute.
	Order int `json:"order,omitempty"`
}

// Annotation is editorial-workflow metadata attachable to an entry or sense.
// Only Name is required; <annotation name="flagged"/> is a valid minimal
// annotation.
type Annotation struct {
	// Name identifies the annotation (required).
	Name string `json:"name"`

	// Value is the annotation value (optional).
	Value string `json:"value,omitempty"`

	// Who identifies the annotator (optional).
	Who string `json:"who,omitempty"`

	// When is the ISO-8601 annotation timestamp (optional).
	When string `json:"when,omitempty"`

	// Content is optional multilingual annotation content.
	Content *multitext.Text `json:"content,omitempty"`
}

// Illustration references an image file attached to a sense.
type Illustration struct {
	// Href is the image file reference (required).
	Href string `json:"href"`

	// Label is an optional caption.
	Label *multitext.Text `json:"label,omitempty"`
}

// Note is a typed free-text note.
type Note struct {
	// Type distinguishes notes (e.g., "usage", "source"); empty for the
	// default note.
	Type string `json:"type,omitempty"`

	// Content is the note text.
	Content *multitext.Text `json:"content,omitempty"`
}

// Variant is an alternate form of the headword.
type Variant struct {
	// Forms is the variant form text.
	Forms *multitext.Text `json:"forms,omitempty"`

	// Traits constrain where the variant applies (e.g., dialect).
	Traits []Trait `json:"traits,omitempty"`
}

// Reversal is a reversal index form: the gateway from a translation language
// back to the entry.
type Reversal struct {
	// Type names the reversal index (usually a language code).
	Type string `json:"type,omitempty"`

	// Forms is the reversal text.
	Forms *multitext.Text `json:"forms,omitempty"`
}

// Trait is a name/value constraint pair. Values are stored verbatim; checking
// them against controlled vocabularies belongs to the external validation
// engine.
type Trait struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
