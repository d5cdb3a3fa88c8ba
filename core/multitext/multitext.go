// Package multitext provides the multilingual text primitive used throughout
// the LIFT model: an ordered mapping from language code to text.
//
// A Text never stores an empty string for a language. Setting a language to
// "" removes the language entry instead, so an "empty" Text and an absent
// Text are the same observable state (IsEmpty reports true for both).
package multitext

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Form is one language entry of a Text.
type Form struct {
	Lang string `json:"lang"`
	Text string `json:"text"`
}

// Text is an ordered language -> text mapping. Language keys are unique;
// insertion order is preserved for re-emission but carries no meaning.
// The zero value is an empty Text ready to use.
type Text struct {
	langs []string
	texts map[string]string
}

// New creates a Text from alternating lang, text pairs.
// New("en", "cat", "fr", "chat") is a two-language Text.
// Panics if given an odd number of arguments; this is a construction bug.
func New(pairs ...string) *Text {
	if len(pairs)%2 != 0 {
		panic(fmt.Sprintf("multitext.New: odd argument count %d", len(pairs)))
	}
	t := &Text{}
	for i := 0; i < len(pairs); i += 2 {
		t.Set(pairs[i], pairs[i+1])
	}
	return t
}

// Get returns the text for lang and whether the language is present.
func (t *Text) Get(lang string) (string, bool) {
	if t == nil || t.texts == nil {
		return "", false
	}
	s, ok := t.texts[lang]
	return s, ok
}

// Set stores text under lang. Setting an empty text removes the language
// entry rather than storing an empty shell.
func (t *Text) Set(lang, text string) {
	if lang == "" {
		return
	}
	if text == "" {
		t.Delete(lang)
		return
	}
	if t.texts == nil {
		t.texts = make(map[string]string)
	}
	if _, ok := t.texts[lang]; !ok {
		t.langs = append(t.langs, lang)
	}
	t.texts[lang] = text
}

// Delete removes the language entry for lang, if present.
func (t *Text) Delete(lang string) {
	if t == nil || t.texts == nil {
		return
	}
	if _, ok := t.texts[lang]; !ok {
		return
	}
	delete(t.texts, lang)
	for i, l := range t.langs {
		if l == lang {
			t.langs = append(t.langs[:i], t.langs[i+1:]...)
			break
		}
	}
}

// IsEmpty reports whether the Text has no language entries.
// A nil Text is empty.
func (t *Text) IsEmpty() bool {
	return t == nil || len(t.langs) == 0
}

// Len returns the number of language entries.
func (t *Text) Len() int {
	if t == nil {
		return 0
	}
	return len(t.langs)
}

// Entries returns the language entries in insertion order.
func (t *Text) Entries() []Form {
	if t.IsEmpty() {
		return nil
	}
	forms := make([]Form, 0, len(t.langs))
	for _, lang := range t.langs {
		forms = append(forms, Form{Lang: lang, Text: t.texts[lang]})
	}
	return forms
}

// Langs returns the language codes in insertion order.
func (t *Text) Langs() []string {
	if t.IsEmpty() {
		return nil
	}
	out := make([]string, len(t.langs))
	copy(out, t.langs)
	return out
}

// Map returns the flat lang -> text form used at external boundaries
// ({"en": "cat"}, never {"en": {"text": "cat"}}).
func (t *Text) Map() map[string]string {
	if t.IsEmpty() {
		return map[string]string{}
	}
	m := make(map[string]string, len(t.langs))
	for _, lang := range t.langs {
		m[lang] = t.texts[lang]
	}
	return m
}

// Clone returns an independent copy of the Text.
func (t *Text) Clone() *Text {
	if t.IsEmpty() {
		return &Text{}
	}
	c := &Text{}
	for _, lang := range t.langs {
		c.Set(lang, t.texts[lang])
	}
	return c
}

// Equal reports whether two Texts hold the same language entries,
// ignoring insertion order.
func (t *Text) Equal(other *Text) bool {
	if t.Len() != other.Len() {
		return false
	}
	if t.IsEmpty() {
		return true
	}
	for _, lang := range t.langs {
		ov, ok := other.Get(lang)
		if !ok || ov != t.texts[lang] {
			return false
		}
	}
	return true
}

// String returns a deterministic debug representation (sorted by lang).
func (t *Text) String() string {
	if t.IsEmpty() {
		return "{}"
	}
	langs := t.Langs()
	sort.Strings(langs)
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, lang := range langs {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%s: %q", lang, t.texts[lang])
	}
	buf.WriteByte('}')
	return buf.String()
}

// MarshalJSON emits the flat external shape, preserving insertion order.
func (t *Text) MarshalJSON() ([]byte, error) {
	if t.IsEmpty() {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, lang := range t.langs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(lang)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(t.texts[lang])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts the flat external shape. Empty strings are dropped,
// matching Set semantics. Key order follows the JSON document.
func (t *Text) UnmarshalJSON(data []byte) error {
	t.langs = nil
	t.texts = nil

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("multitext: expected object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		lang, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("multitext: expected string key, got %v", keyTok)
		}
		var text string
		if err := dec.Decode(&text); err != nil {
			return fmt.Errorf("multitext: value for %q: %w", lang, err)
		}
		t.Set(lang, text)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
